package usecase

import (
	"fmt"
	"strings"
	"time"

	"github.com/naka-gawa/top-issues/internal/domain"
)

// Section is one dashboard section: a category title and its ranked items.
type Section struct {
	Title string
	Items []domain.ScoredItem
}

// DefaultHeader opens the dashboard issue body.
const DefaultHeader = "The most popular open issues and pull requests, ranked by their reactions."

// RenderDashboard turns the ranked category sections into the markdown
// body of the dashboard issue. It is a pure function: the caller supplies
// the footer, including any timestamp, so two calls with identical
// arguments produce byte-identical output.
//
// Sections are emitted in the given order; empty sections are skipped.
// When every section is empty a single fallback section is emitted
// instead. Numbering restarts at 1 per section and follows the rank order
// already established by Rank; nothing is re-sorted or truncated here.
func RenderDashboard(sections []Section, header, footer string, showScore bool) string {
	var b strings.Builder
	b.WriteString(header)

	rendered := 0
	for _, section := range sections {
		if len(section.Items) == 0 {
			continue
		}
		rendered++
		b.WriteString("\n\n## ")
		b.WriteString(section.Title)
		b.WriteString("\n\n")
		for i, item := range section.Items {
			if showScore {
				fmt.Fprintf(&b, "%d. #%d :+1:`%d`\n", i+1, item.Number, item.Score)
			} else {
				fmt.Fprintf(&b, "%d. #%d\n", i+1, item.Number)
			}
		}
	}

	if rendered == 0 {
		b.WriteString("\n\n## Top issues\n\nNo top issues found.\n")
	}

	if footer != "" {
		b.WriteString("\n")
		b.WriteString(footer)
		b.WriteString("\n")
	}
	return b.String()
}

// Footer builds the conventional last-updated footer for the given time.
func Footer(now time.Time) string {
	return fmt.Sprintf("*Last updated: %s*", now.UTC().Format(time.RFC1123))
}

// Package domain contains the core data structures and domain logic for the application.
package domain

// ItemKind distinguishes issues from pull requests.
type ItemKind int

const (
	KindIssue ItemKind = iota
	KindPullRequest
)

func (k ItemKind) String() string {
	switch k {
	case KindIssue:
		return "issue"
	case KindPullRequest:
		return "pull request"
	default:
		return "unknown"
	}
}

// Item is the normalized representation of an open issue or pull request,
// taken from a single point-in-time snapshot. It is the core domain entity
// of this application.
type Item struct {
	Number            int      `json:"number"`
	Title             string   `json:"title"`
	PositiveReactions int      `json:"positive_reactions"`
	NegativeReactions int      `json:"negative_reactions"`
	Labels            []string `json:"labels"`
}

// HasLabel reports whether the item currently carries the given label.
func (i Item) HasLabel(name string) bool {
	for _, label := range i.Labels {
		if label == name {
			return true
		}
	}
	return false
}

// ScoredItem is an Item with its popularity score for the current run.
// It is derived on every run and never persisted.
type ScoredItem struct {
	Item
	Score int `json:"score"`
}

// Category is a named ranking and labeling configuration. Built-in
// categories (issues, bugs, features, pull requests) and user-defined
// custom categories are all represented by the same record; there are no
// separately-coded category branches.
type Category struct {
	// Name is the section title shown on the dashboard.
	Name string
	Kind ItemKind
	// SourceLabel narrows the candidate pool to items carrying it.
	// Empty means all open items of the category's kind.
	SourceLabel string
	// TopLabel marks the items currently ranked in this category.
	TopLabel      string
	TopLabelColor string
	TopLabelDesc  string
}

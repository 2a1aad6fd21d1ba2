package usecase

import (
	"context"
	"fmt"
	"log"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/naka-gawa/top-issues/internal/config"
	"github.com/naka-gawa/top-issues/internal/domain"
	"github.com/naka-gawa/top-issues/internal/gateway"
)

// Runner is the use case orchestrating a full run:
// fetch snapshot, rank each category, reconcile labels, publish dashboard.
type Runner struct {
	gw     gateway.GitHub
	cfg    *config.Config
	logger *log.Logger
	now    func() time.Time
}

// NewRunner creates a new Runner instance.
func NewRunner(gw gateway.GitHub, cfg *config.Config, logger *log.Logger) *Runner {
	return &Runner{
		gw:     gw,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// CategoryReport records what a single category's reconciliation decided
// and which mutations were carried out (or, in dry-run mode, would be).
type CategoryReport struct {
	Name      string `json:"name"`
	Ranked    []int  `json:"ranked"`
	Labeled   []int  `json:"labeled"`
	Unlabeled []int  `json:"unlabeled"`
}

// Report is the result of a run, printed as JSON by the CLI.
// Per-item mutation failures land in Errors; they never fail the run.
type Report struct {
	Categories         []CategoryReport `json:"categories"`
	DashboardPublished bool             `json:"dashboard_published"`
	DryRun             bool             `json:"dry_run"`
	Errors             []string         `json:"errors,omitempty"`
}

// Run executes the full pipeline. It returns an error only for fatal
// conditions: a snapshot fetch failure aborts before any mutation.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	report := &Report{DryRun: r.cfg.DryRun}

	categories := r.cfg.Categories()
	if len(categories) == 0 || (!r.cfg.Label && !r.cfg.Dashboard) {
		r.logger.Println("Nothing to do: no categories enabled or no output mode enabled.")
		return report, nil
	}

	issues, pulls, err := r.fetchSnapshot(ctx, categories)
	if err != nil {
		return nil, err
	}

	// Every ranking decision below is made against this one snapshot,
	// before any label mutation takes place.
	sections := make([]Section, 0, len(categories))
	for _, category := range categories {
		ranked := r.processCategory(ctx, category, issues, pulls, report)
		sections = append(sections, Section{Title: category.Name, Items: ranked})
	}

	if r.cfg.Dashboard {
		r.publishDashboard(ctx, sections, report)
	}

	r.logger.Println("Run complete.")
	return report, nil
}

// fetchSnapshot fetches the open issues and pull requests concurrently.
// Kinds no enabled category consumes are skipped.
func (r *Runner) fetchSnapshot(ctx context.Context, categories []domain.Category) (issues, pulls []domain.Item, err error) {
	needIssues, needPulls := false, false
	for _, category := range categories {
		switch category.Kind {
		case domain.KindPullRequest:
			needPulls = true
		default:
			needIssues = true
		}
	}

	eg, egCtx := errgroup.WithContext(ctx)
	if needIssues {
		eg.Go(func() error {
			var err error
			issues, err = r.gw.FetchOpenItems(egCtx, domain.KindIssue)
			return err
		})
	}
	if needPulls {
		eg.Go(func() error {
			var err error
			pulls, err = r.gw.FetchOpenItems(egCtx, domain.KindPullRequest)
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, nil, fmt.Errorf("failed to fetch snapshot: %w", err)
	}
	return issues, pulls, nil
}

// processCategory ranks one category against the snapshot, reconciles the
// category's top label and returns the ranked items for the dashboard.
func (r *Runner) processCategory(ctx context.Context, category domain.Category, issues, pulls []domain.Item, report *Report) []domain.ScoredItem {
	source := issues
	if category.Kind == domain.KindPullRequest {
		source = pulls
	}
	pool := source
	if category.SourceLabel != "" {
		pool = filterByLabel(source, category.SourceLabel)
	}

	ranked := Rank(pool, r.cfg.TopListSize, r.cfg.SubtractNegative, r.cfg.DashboardLabel.Name, r.cfg.Filter)
	r.logger.Printf("Category %q: %d of %d candidates ranked.", category.Name, len(ranked), len(pool))

	cr := CategoryReport{Name: category.Name}
	for _, item := range ranked {
		cr.Ranked = append(cr.Ranked, item.Number)
	}

	if r.cfg.Label {
		r.ensureLabel(ctx, category.TopLabel, category.TopLabelColor, category.TopLabelDesc, report)

		for _, item := range ranked {
			if item.HasLabel(category.TopLabel) {
				continue
			}
			if r.cfg.DryRun {
				r.logger.Printf("[dry-run] would add label %q to #%d", category.TopLabel, item.Number)
			} else if err := r.gw.AddLabel(ctx, item.Number, category.TopLabel); err != nil {
				r.reportError(report, err)
				continue
			}
			cr.Labeled = append(cr.Labeled, item.Number)
		}

		for _, item := range ItemsToUnlabel(filterByLabel(source, category.TopLabel), ranked) {
			if r.cfg.DryRun {
				r.logger.Printf("[dry-run] would remove label %q from #%d", category.TopLabel, item.Number)
			} else if err := r.gw.RemoveLabel(ctx, item.Number, category.TopLabel); err != nil {
				r.reportError(report, err)
				continue
			}
			cr.Unlabeled = append(cr.Unlabeled, item.Number)
		}
	}

	report.Categories = append(report.Categories, cr)
	return ranked
}

// publishDashboard renders the dashboard from the already-computed
// sections and publishes it. This is the last mutation of the run, so the
// rankings above were all evaluated against the pre-mutation label set.
func (r *Runner) publishDashboard(ctx context.Context, sections []Section, report *Report) {
	footer := ""
	if !r.cfg.HideDashboardFooter {
		footer = Footer(r.now())
	}
	body := RenderDashboard(sections, DefaultHeader, footer, r.cfg.DashboardShowScore)

	if r.cfg.DryRun {
		r.logger.Printf("[dry-run] would publish dashboard %q:\n%s", r.cfg.DashboardTitle, body)
		return
	}

	r.ensureLabel(ctx, r.cfg.DashboardLabel.Name, r.cfg.DashboardLabel.Color, r.cfg.DashboardLabel.Description, report)
	if err := r.gw.PublishDashboard(ctx, r.cfg.DashboardTitle, body, r.cfg.DashboardLabel.Name); err != nil {
		r.reportError(report, err)
		return
	}
	report.DashboardPublished = true
}

func (r *Runner) ensureLabel(ctx context.Context, name, color, description string, report *Report) {
	if r.cfg.DryRun {
		r.logger.Printf("[dry-run] would ensure label %q exists", name)
		return
	}
	if err := r.gw.EnsureLabel(ctx, name, color, description); err != nil {
		r.reportError(report, err)
	}
}

// reportError records a per-item recoverable failure without aborting.
func (r *Runner) reportError(report *Report, err error) {
	r.logger.Printf("Mutation failed: %v", err)
	report.Errors = append(report.Errors, err.Error())
}

func filterByLabel(items []domain.Item, label string) []domain.Item {
	filtered := make([]domain.Item, 0, len(items))
	for _, item := range items {
		if item.HasLabel(label) {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

// Package gateway provides a gateway to the GitHub API,
// abstracting away the underlying REST and GraphQL clients.
package gateway

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/shurcooL/githubv4"
	"golang.org/x/oauth2"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"

	"github.com/naka-gawa/top-issues/internal/domain"
)

// GitHub defines the behavior of a gateway for reading and mutating the
// state of a repository on GitHub.
type GitHub interface {
	// FetchOpenItems returns the full set of open items of the given kind,
	// newest created first, with reaction counts and label names populated.
	FetchOpenItems(ctx context.Context, kind domain.ItemKind) ([]domain.Item, error)
	AddLabel(ctx context.Context, number int, label string) error
	RemoveLabel(ctx context.Context, number int, label string) error
	// EnsureLabel creates the label definition if absent and updates the
	// color/description if they diverge.
	EnsureLabel(ctx context.Context, name, color, description string) error
	// PublishDashboard locates the dashboard issue by label first and by
	// title second, then updates it in place or creates it fresh.
	PublishDashboard(ctx context.Context, title, body, label string) error
}

// GitHubGateway is the concrete implementation of the GitHub interface.
// The snapshot fetch goes through the GraphQL API, which can return
// per-content reaction counts in one query; all mutations go through REST.
type GitHubGateway struct {
	restClient    *github.Client
	graphqlClient *githubv4.Client
	owner         string
	repo          string
	logger        *log.Logger
}

// itemNode is the shared GraphQL projection of an issue or pull request.
// The aliased reaction fields give us the thumbs-up/thumbs-down totals
// without fetching individual reactions.
type itemNode struct {
	Number   int
	Title    string
	Positive struct {
		TotalCount int
	} `graphql:"positive: reactions(content: THUMBS_UP)"`
	Negative struct {
		TotalCount int
	} `graphql:"negative: reactions(content: THUMBS_DOWN)"`
	Labels struct {
		Nodes []struct {
			Name string
		}
	} `graphql:"labels(first: 50)"`
}

type pageInfo struct {
	HasNextPage bool
	EndCursor   githubv4.String
}

// openIssuesQuery pages through the repository's open issues,
// newest created first.
type openIssuesQuery struct {
	Repository struct {
		Issues struct {
			PageInfo pageInfo
			Nodes    []itemNode
		} `graphql:"issues(states: OPEN, first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// openPullRequestsQuery is the pull request counterpart of openIssuesQuery.
type openPullRequestsQuery struct {
	Repository struct {
		PullRequests struct {
			PageInfo pageInfo
			Nodes    []itemNode
		} `graphql:"pullRequests(states: OPEN, first: 100, after: $cursor, orderBy: {field: CREATED_AT, direction: DESC})"`
	} `graphql:"repository(owner: $owner, name: $name)"`
}

// NewGitHubGateway is a constructor that creates a new instance of GitHubGateway.
func NewGitHubGateway(token, owner, repo string, logger *log.Logger) (GitHub, error) {
	rateLimitWaiter, err := github_ratelimit.NewRateLimitWaiter(nil, github_ratelimit.WithSingleSleepLimit(1*time.Hour, nil))
	if err != nil {
		return nil, fmt.Errorf("failed to create rate limit waiter: %w", err)
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})
	httpClient := &http.Client{
		Transport: &oauth2.Transport{
			Base:   rateLimitWaiter,
			Source: ts,
		},
	}
	return &GitHubGateway{
		restClient:    github.NewClient(httpClient),
		graphqlClient: githubv4.NewClient(httpClient),
		owner:         owner,
		repo:          repo,
		logger:        logger,
	}, nil
}

func (g *GitHubGateway) FetchOpenItems(ctx context.Context, kind domain.ItemKind) ([]domain.Item, error) {
	g.logger.Printf("Fetching open %ss via GraphQL...", kind)
	variables := map[string]interface{}{
		"owner":  githubv4.String(g.owner),
		"name":   githubv4.String(g.repo),
		"cursor": (*githubv4.String)(nil),
	}

	var items []domain.Item
	for {
		var nodes []itemNode
		var page pageInfo
		switch kind {
		case domain.KindPullRequest:
			var q openPullRequestsQuery
			if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
				return nil, fmt.Errorf("failed to fetch open pull requests: %w", err)
			}
			nodes, page = q.Repository.PullRequests.Nodes, q.Repository.PullRequests.PageInfo
		default:
			var q openIssuesQuery
			if err := g.graphqlClient.Query(ctx, &q, variables); err != nil {
				return nil, fmt.Errorf("failed to fetch open issues: %w", err)
			}
			nodes, page = q.Repository.Issues.Nodes, q.Repository.Issues.PageInfo
		}

		for _, node := range nodes {
			items = append(items, toItem(node))
		}
		if !page.HasNextPage {
			break
		}
		variables["cursor"] = githubv4.NewString(page.EndCursor)
		g.logger.Printf("  Fetching next page of %ss...", kind)
	}
	g.logger.Printf("Completed fetching %d open %ss.", len(items), kind)
	return items, nil
}

func toItem(node itemNode) domain.Item {
	labels := make([]string, 0, len(node.Labels.Nodes))
	for _, label := range node.Labels.Nodes {
		labels = append(labels, label.Name)
	}
	return domain.Item{
		Number:            node.Number,
		Title:             node.Title,
		PositiveReactions: node.Positive.TotalCount,
		NegativeReactions: node.Negative.TotalCount,
		Labels:            labels,
	}
}

func (g *GitHubGateway) AddLabel(ctx context.Context, number int, label string) error {
	g.logger.Printf("Adding label %q to #%d...", label, number)
	_, _, err := g.restClient.Issues.AddLabelsToIssue(ctx, g.owner, g.repo, number, []string{label})
	if err != nil {
		return &domain.MutationError{Op: domain.OpAddLabel, Number: number, Label: label, Err: err}
	}
	return nil
}

func (g *GitHubGateway) RemoveLabel(ctx context.Context, number int, label string) error {
	g.logger.Printf("Removing label %q from #%d...", label, number)
	resp, err := g.restClient.Issues.RemoveLabelForIssue(ctx, g.owner, g.repo, number, label)
	if err != nil {
		// The label is already gone; removal is idempotent.
		if resp != nil && resp.StatusCode == http.StatusNotFound {
			return nil
		}
		return &domain.MutationError{Op: domain.OpRemoveLabel, Number: number, Label: label, Err: err}
	}
	return nil
}

func (g *GitHubGateway) EnsureLabel(ctx context.Context, name, color, description string) error {
	existing, resp, err := g.restClient.Issues.GetLabel(ctx, g.owner, g.repo, name)
	if err != nil {
		if resp == nil || resp.StatusCode != http.StatusNotFound {
			return &domain.MutationError{Op: domain.OpEnsureLabel, Label: name, Err: err}
		}
		g.logger.Printf("Creating label %q...", name)
		_, _, err = g.restClient.Issues.CreateLabel(ctx, g.owner, g.repo, &github.Label{
			Name:        github.String(name),
			Color:       github.String(color),
			Description: github.String(description),
		})
		if err != nil {
			return &domain.MutationError{Op: domain.OpEnsureLabel, Label: name, Err: err}
		}
		return nil
	}

	if existing.GetColor() == color && existing.GetDescription() == description {
		return nil
	}
	g.logger.Printf("Updating definition of label %q...", name)
	_, _, err = g.restClient.Issues.EditLabel(ctx, g.owner, g.repo, name, &github.Label{
		Name:        github.String(name),
		Color:       github.String(color),
		Description: github.String(description),
	})
	if err != nil {
		return &domain.MutationError{Op: domain.OpEnsureLabel, Label: name, Err: err}
	}
	return nil
}

func (g *GitHubGateway) PublishDashboard(ctx context.Context, title, body, label string) error {
	number, err := g.findDashboard(ctx, title, label)
	if err != nil {
		return &domain.MutationError{Op: domain.OpPublishDashboard, Label: label, Err: err}
	}

	if number > 0 {
		g.logger.Printf("Updating dashboard issue #%d...", number)
		_, _, err = g.restClient.Issues.Edit(ctx, g.owner, g.repo, number, &github.IssueRequest{
			Title: github.String(title),
			Body:  github.String(body),
		})
		if err != nil {
			return &domain.MutationError{Op: domain.OpPublishDashboard, Number: number, Label: label, Err: err}
		}
		return nil
	}

	g.logger.Println("Creating dashboard issue...")
	_, _, err = g.restClient.Issues.Create(ctx, g.owner, g.repo, &github.IssueRequest{
		Title:  github.String(title),
		Body:   github.String(body),
		Labels: &[]string{label},
	})
	if err != nil {
		return &domain.MutationError{Op: domain.OpPublishDashboard, Label: label, Err: err}
	}
	return nil
}

// findDashboard returns the number of the existing open dashboard issue,
// or 0 if none exists. The dashboard label wins over a title match.
func (g *GitHubGateway) findDashboard(ctx context.Context, title, label string) (int, error) {
	byLabel := &github.IssueListByRepoOptions{
		State:       "open",
		Labels:      []string{label},
		ListOptions: github.ListOptions{PerPage: 100},
	}
	issues, _, err := g.restClient.Issues.ListByRepo(ctx, g.owner, g.repo, byLabel)
	if err != nil {
		return 0, fmt.Errorf("failed to list issues by dashboard label: %w", err)
	}
	if len(issues) > 0 {
		return issues[0].GetNumber(), nil
	}

	byTitle := &github.IssueListByRepoOptions{
		State:       "open",
		ListOptions: github.ListOptions{PerPage: 100},
	}
	for {
		issues, resp, err := g.restClient.Issues.ListByRepo(ctx, g.owner, g.repo, byTitle)
		if err != nil {
			return 0, fmt.Errorf("failed to list issues by title: %w", err)
		}
		for _, issue := range issues {
			if issue.GetTitle() == title {
				return issue.GetNumber(), nil
			}
		}
		if resp.NextPage == 0 {
			return 0, nil
		}
		byTitle.Page = resp.NextPage
	}
}

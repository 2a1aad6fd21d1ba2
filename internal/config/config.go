// Package config loads the run configuration from the environment into an
// explicit Config struct, so tests can construct arbitrary configurations
// without touching the process environment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/naka-gawa/top-issues/internal/domain"
)

// envPrefix is prepended (with an underscore) to every configuration key,
// e.g. TOP_ISSUES_TOP_LIST_SIZE. GITHUB_TOKEN and GITHUB_REPOSITORY are
// read unprefixed, following the conventions of CI environments.
const envPrefix = "TOP_ISSUES"

// LabelSpec describes a label definition on the hosting platform.
type LabelSpec struct {
	Name        string
	Color       string
	Description string
}

// CustomCategory is a user-defined ranking category, supplied as an entry
// of the JSON array in TOP_ISSUES_CUSTOM_CATEGORIES.
type CustomCategory struct {
	Name                string `json:"name"`
	SourceLabel         string `json:"source_label"`
	TopLabel            string `json:"top_label"`
	TopLabelColor       string `json:"top_label_color"`
	TopLabelDescription string `json:"top_label_description"`
}

// Config is the full configuration of a single run.
type Config struct {
	Token string
	Owner string
	Repo  string

	TopListSize      int
	SubtractNegative bool
	DryRun           bool

	// Output modes: labeling of ranked items and/or dashboard publishing.
	Label     bool
	Dashboard bool

	// Built-in category toggles.
	Issues       bool
	Bugs         bool
	Features     bool
	PullRequests bool

	BugSourceLabel     string
	FeatureSourceLabel string

	IssueTop       LabelSpec
	BugTop         LabelSpec
	FeatureTop     LabelSpec
	PullRequestTop LabelSpec

	DashboardTitle      string
	DashboardLabel      LabelSpec
	DashboardShowScore  bool
	HideDashboardFooter bool

	// Filter lists item numbers that must never be ranked.
	Filter []int
	Custom []CustomCategory
}

// Load reads the configuration from the environment. A local .env file is
// honored when present, so the tool can be run outside CI without exporting
// a dozen variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	setDefaults(v)

	cfg := &Config{Token: os.Getenv("GITHUB_TOKEN")}
	if cfg.Token == "" {
		return nil, fmt.Errorf("GITHUB_TOKEN environment variable is not set")
	}

	repository := os.Getenv("GITHUB_REPOSITORY")
	owner, repo, ok := strings.Cut(repository, "/")
	if !ok || owner == "" || repo == "" {
		return nil, fmt.Errorf("GITHUB_REPOSITORY must be of the form owner/repo, got %q", repository)
	}
	cfg.Owner, cfg.Repo = owner, repo

	var err error
	if cfg.TopListSize, err = getInt(v, "top_list_size"); err != nil {
		return nil, err
	}
	if cfg.SubtractNegative, err = getBool(v, "subtract_negative"); err != nil {
		return nil, err
	}
	if cfg.DryRun, err = getBool(v, "dry_run"); err != nil {
		return nil, err
	}
	if cfg.Label, err = getBool(v, "label"); err != nil {
		return nil, err
	}
	if cfg.Dashboard, err = getBool(v, "dashboard"); err != nil {
		return nil, err
	}
	if cfg.DashboardShowScore, err = getBool(v, "dashboard_show_score"); err != nil {
		return nil, err
	}
	if cfg.HideDashboardFooter, err = getBool(v, "hide_dashboard_footer"); err != nil {
		return nil, err
	}
	if cfg.Issues, err = getBool(v, "issues"); err != nil {
		return nil, err
	}
	if cfg.Bugs, err = getBool(v, "bugs"); err != nil {
		return nil, err
	}
	if cfg.Features, err = getBool(v, "features"); err != nil {
		return nil, err
	}
	if cfg.PullRequests, err = getBool(v, "pull_requests"); err != nil {
		return nil, err
	}

	cfg.BugSourceLabel = v.GetString("bug_label")
	cfg.FeatureSourceLabel = v.GetString("feature_label")

	cfg.IssueTop = labelSpec(v, "issue_top_label")
	cfg.BugTop = labelSpec(v, "bug_top_label")
	cfg.FeatureTop = labelSpec(v, "feature_top_label")
	cfg.PullRequestTop = labelSpec(v, "pull_request_top_label")

	cfg.DashboardTitle = v.GetString("dashboard_title")
	cfg.DashboardLabel = labelSpec(v, "dashboard_label")

	if cfg.Filter, err = parseFilter(v.GetString("filter")); err != nil {
		return nil, err
	}
	if cfg.Custom, err = parseCustomCategories(v.GetString("custom_categories")); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Categories assembles the enabled ranking categories, in the fixed
// dashboard order: issues, bugs, features, pull requests, then custom
// categories in configuration order.
func (c *Config) Categories() []domain.Category {
	categories := make([]domain.Category, 0, 4+len(c.Custom))
	if c.Issues {
		categories = append(categories, domain.Category{
			Name:          "Top issues",
			Kind:          domain.KindIssue,
			TopLabel:      c.IssueTop.Name,
			TopLabelColor: c.IssueTop.Color,
			TopLabelDesc:  c.IssueTop.Description,
		})
	}
	if c.Bugs {
		categories = append(categories, domain.Category{
			Name:          "Top bugs",
			Kind:          domain.KindIssue,
			SourceLabel:   c.BugSourceLabel,
			TopLabel:      c.BugTop.Name,
			TopLabelColor: c.BugTop.Color,
			TopLabelDesc:  c.BugTop.Description,
		})
	}
	if c.Features {
		categories = append(categories, domain.Category{
			Name:          "Top feature requests",
			Kind:          domain.KindIssue,
			SourceLabel:   c.FeatureSourceLabel,
			TopLabel:      c.FeatureTop.Name,
			TopLabelColor: c.FeatureTop.Color,
			TopLabelDesc:  c.FeatureTop.Description,
		})
	}
	if c.PullRequests {
		categories = append(categories, domain.Category{
			Name:          "Top pull requests",
			Kind:          domain.KindPullRequest,
			TopLabel:      c.PullRequestTop.Name,
			TopLabelColor: c.PullRequestTop.Color,
			TopLabelDesc:  c.PullRequestTop.Description,
		})
	}
	for _, cc := range c.Custom {
		categories = append(categories, domain.Category{
			Name:          cc.Name,
			Kind:          domain.KindIssue,
			SourceLabel:   cc.SourceLabel,
			TopLabel:      cc.TopLabel,
			TopLabelColor: cc.TopLabelColor,
			TopLabelDesc:  cc.TopLabelDescription,
		})
	}
	return categories
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("top_list_size", "10")
	v.SetDefault("subtract_negative", "true")
	v.SetDefault("dry_run", "false")
	v.SetDefault("label", "true")
	v.SetDefault("dashboard", "true")
	v.SetDefault("dashboard_show_score", "false")
	v.SetDefault("hide_dashboard_footer", "false")
	v.SetDefault("dashboard_title", "Top Issues Dashboard")
	v.SetDefault("dashboard_label", "top-issues-dashboard")
	v.SetDefault("dashboard_label_color", "6A2DE2")
	v.SetDefault("dashboard_label_description", "The top issues dashboard.")
	v.SetDefault("issues", "true")
	v.SetDefault("bugs", "true")
	v.SetDefault("features", "true")
	v.SetDefault("pull_requests", "false")
	v.SetDefault("bug_label", "bug")
	v.SetDefault("feature_label", "enhancement")
	v.SetDefault("issue_top_label", "top issue")
	v.SetDefault("issue_top_label_color", "027E9D")
	v.SetDefault("issue_top_label_description", "Issue with the most positive reactions.")
	v.SetDefault("bug_top_label", "top bug")
	v.SetDefault("bug_top_label_color", "B60205")
	v.SetDefault("bug_top_label_description", "Bug with the most positive reactions.")
	v.SetDefault("feature_top_label", "top feature")
	v.SetDefault("feature_top_label_color", "0E8A16")
	v.SetDefault("feature_top_label_description", "Feature request with the most positive reactions.")
	v.SetDefault("pull_request_top_label", "top pull request")
	v.SetDefault("pull_request_top_label_color", "41A285")
	v.SetDefault("pull_request_top_label_description", "Pull request with the most positive reactions.")
	v.SetDefault("filter", "")
	v.SetDefault("custom_categories", "")
}

// labelSpec reads the <key>, <key>_color and <key>_description triple.
func labelSpec(v *viper.Viper, key string) LabelSpec {
	return LabelSpec{
		Name:        v.GetString(key),
		Color:       v.GetString(key + "_color"),
		Description: v.GetString(key + "_description"),
	}
}

// getBool and getInt go through GetString so that malformed values are
// reported as errors instead of silently becoming zero values.
func getBool(v *viper.Viper, key string) (bool, error) {
	raw := v.GetString(key)
	val, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("invalid boolean for %s_%s: %q", envPrefix, strings.ToUpper(key), raw)
	}
	return val, nil
}

func getInt(v *viper.Viper, key string) (int, error) {
	raw := v.GetString(key)
	val, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid integer for %s_%s: %q", envPrefix, strings.ToUpper(key), raw)
	}
	return val, nil
}

// parseFilter parses a comma-separated list of item numbers.
func parseFilter(raw string) ([]int, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	parts := strings.Split(raw, ",")
	numbers := make([]int, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid item number in %s_FILTER: %q", envPrefix, part)
		}
		numbers = append(numbers, n)
	}
	return numbers, nil
}

func parseCustomCategories(raw string) ([]CustomCategory, error) {
	if strings.TrimSpace(raw) == "" {
		return nil, nil
	}
	var categories []CustomCategory
	if err := json.Unmarshal([]byte(raw), &categories); err != nil {
		return nil, fmt.Errorf("invalid JSON in %s_CUSTOM_CATEGORIES: %w", envPrefix, err)
	}
	for i, cc := range categories {
		if cc.Name == "" || cc.SourceLabel == "" || cc.TopLabel == "" {
			return nil, fmt.Errorf("custom category %d must set name, source_label and top_label", i)
		}
		if categories[i].TopLabelColor == "" {
			categories[i].TopLabelColor = "EEEEEE"
		}
	}
	return categories, nil
}

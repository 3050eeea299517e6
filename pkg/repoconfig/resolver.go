package repoconfig

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/hashicorp/go-version"

	"github.com/lif2/checkov/pkg/category"
	"github.com/lif2/checkov/pkg/logme"
	"github.com/lif2/checkov/pkg/prettyprint"
	"github.com/lif2/checkov/pkg/severity"
)

// supportedConfig is the range of run-config payload versions this resolver
// understands. Payloads without an apiVersion are accepted as-is.
var supportedConfig = version.MustConstraints(version.NewConstraint(">= 1.0, < 3.0"))

// CategoryConfig is the resolved soft/hard fail thresholds for one code
// category. soft <= hard is expected but not enforced here.
type CategoryConfig struct {
	Category          category.CodeCategory
	SoftFailThreshold *severity.Severity
	HardFailThreshold *severity.Severity
}

// IsGlobalSoftFail reports whether the category can never hard-fail the run.
func (c *CategoryConfig) IsGlobalSoftFail() bool {
	return c.HardFailThreshold.Level == severity.Off.Level
}

// SkipCheckThreshold returns the highest severity strictly below the
// soft-fail threshold. Findings at or below it are skipped silently rather
// than reported.
func (c *CategoryConfig) SkipCheckThreshold() *severity.Severity {
	if s := severity.HighestBelow(c.SoftFailThreshold.Level); s != nil {
		return s
	}
	return severity.None
}

// Options configures a Resolver for one scan run.
type Options struct {
	// RepoID is the run's configured repository id, used for exact-match
	// tie-breaking between conflicting enforcement rules.
	RepoID string
	// Matcher decides whether a platform repository id refers to this run's
	// repository. Defaults to NewWildcardMatcher(RepoID).
	Matcher RepoMatcher
	// Configured reports whether the platform integration is set up.
	Configured bool
	// SkipDownload disables all platform downloads for the run.
	SkipDownload bool
}

// Resolver computes the scan settings for a repository from a fetched run
// configuration. Resolve runs once before scanning; afterwards the resolver
// is read-only. A failure at any point disables the feature for the run and
// never blocks the scan.
type Resolver struct {
	repoID       string
	matches      RepoMatcher
	configured   bool
	skipDownload bool

	failed          bool
	skipPaths       map[string]struct{}
	rule            *EnforcementRule
	categoryConfigs map[category.CodeCategory]*CategoryConfig
}

func NewResolver(opts Options) *Resolver {
	matcher := opts.Matcher
	if matcher == nil {
		matcher = NewWildcardMatcher(opts.RepoID)
	}
	return &Resolver{
		repoID:          opts.RepoID,
		matches:         matcher,
		configured:      opts.Configured,
		skipDownload:    opts.SkipDownload,
		skipPaths:       make(map[string]struct{}),
		categoryConfigs: make(map[category.CodeCategory]*CategoryConfig),
	}
}

// IsApplicable reports whether the resolved settings should be consulted:
// the integration is configured, downloads are not disabled, and no prior
// failure was recorded.
func (r *Resolver) IsApplicable() bool {
	return r.configured && !r.skipDownload && !r.failed
}

// Resolve populates the resolver from the fetched payload. Best effort: any
// problem marks the feature failed and the scan proceeds without platform
// settings.
func (r *Resolver) Resolve(cfg *RunConfig) {
	if cfg.Empty() {
		logme.Debugln("In the pre-scan for repo config settings, but nothing was fetched from the platform")
		r.failed = true
		return
	}
	if err := r.resolve(cfg); err != nil {
		r.failed = true
		logme.Debugln("Scanning without applying scan configs from the platform:", err)
	}
}

func (r *Resolver) resolve(cfg *RunConfig) error {
	if err := checkAPIVersion(cfg.APIVersion); err != nil {
		return err
	}

	// A repo can have two conflicting configurations: one registered for the
	// VCS integration id (org/repo) and one for the CLI upload id
	// (customer_org/repo). Exclusion paths from all matching sections are
	// combined; for enforcement rules the conflict is warned about and
	// tie-broken below.
	r.setExclusionPaths(cfg.VCSConfig)
	return r.setEnforcementRule(cfg.EnforcementRules)
}

func checkAPIVersion(raw string) error {
	if raw == "" {
		return nil
	}
	v, err := version.NewVersion(raw)
	if err != nil {
		return fmt.Errorf("invalid run config apiVersion %q: %w", raw, err)
	}
	if !supportedConfig.Check(v) {
		return fmt.Errorf("unsupported run config apiVersion %s", raw)
	}
	return nil
}

func (r *Resolver) setExclusionPaths(vcsConfig VCSConfig) {
	for _, section := range vcsConfig.ScannedFiles.Sections {
		if !r.anyRepoMatches(section.Repos) {
			continue
		}
		logme.DebugFln("Found path exclusion config section for repo: %v", section.Repos)
		for _, p := range section.Rule.ExcludePaths {
			r.skipPaths[p] = struct{}{}
		}
	}

	logme.DebugFln("Skipping the following paths based on platform settings: %v", r.SkipPaths())
}

func (r *Resolver) anyRepoMatches(repos []string) bool {
	for _, repo := range repos {
		if r.matches(repo) {
			return true
		}
	}
	return false
}

func (r *Resolver) setEnforcementRule(enforcementRules EnforcementRules) error {
	var defaultRule *EnforcementRule
	var matchedRules []*EnforcementRule

	for i := range enforcementRules.Rules {
		rule := &enforcementRules.Rules[i]
		if rule.MainRule {
			if defaultRule == nil {
				defaultRule = rule
			}
			continue
		}
		for _, repo := range rule.Repositories {
			if r.matches(repo.AccountName) {
				matchedRules = append(matchedRules, rule)
				break
			}
		}
	}

	if defaultRule == nil {
		return fmt.Errorf("run config has no default enforcement rule")
	}

	switch len(matchedRules) {
	case 0:
		logme.Debugln("Did not find any enforcement rules for the specified repo; using the default rule")
		r.rule = defaultRule
	case 1:
		logme.Debugln("Found exactly one matching enforcement rule for the specified repo")
		r.rule = matchedRules[0]
	default:
		r.rule = r.tieBreakEnforcementRules(matchedRules)
	}

	logme.Debugln("Selected the following enforcement rule:")
	logme.Debugln(prettyprint.Sprint(r.rule))

	return r.setCategoryConfigs(r.rule)
}

// tieBreakEnforcementRules picks one of several conflicting matching rules.
// A rule whose repository id exactly equals the run's repo id wins; if
// several do, or none do, the first in payload order is taken. The conflict
// is expected (VCS vs CLI repo ids) and only warned about.
func (r *Resolver) tieBreakEnforcementRules(matchedRules []*EnforcementRule) *EnforcementRule {
	logme.WarnFln(
		"Found %d enforcement rules for the specified repo. This likely means that one rule was created "+
			"for the VCS repo, and another rule for the CLI repo. You should update the configurations in "+
			"the platform to ensure that the following repos are all in the same rule group:",
		len(matchedRules),
	)

	var exactMatchRule *EnforcementRule
	for _, rule := range matchedRules {
		for _, repo := range rule.Repositories {
			if !r.matches(repo.AccountName) {
				continue
			}
			logme.WarnFln("- %s", repo.AccountName)
			if repo.AccountName != r.repoID {
				continue
			}
			if exactMatchRule != nil {
				logme.Debugln("Found multiple rules that exactly match the repo id - likely the same name across multiple VCSes. Using the first one.")
			} else {
				exactMatchRule = rule
			}
		}
	}

	if exactMatchRule == nil {
		logme.Debugln("Did not find any rules with a repo name that exactly matched the repo id; taking the first one.")
		return matchedRules[0]
	}
	return exactMatchRule
}

func (r *Resolver) setCategoryConfigs(rule *EnforcementRule) error {
	for _, cat := range category.All {
		thresholds, ok := rule.CodeCategories[string(cat)]
		if !ok {
			continue
		}
		softFail := severity.Get(thresholds.SoftFailThreshold)
		if softFail == nil {
			return fmt.Errorf("unknown soft fail threshold %q for category %s", thresholds.SoftFailThreshold, cat)
		}
		hardFail := severity.Get(thresholds.HardFailThreshold)
		if hardFail == nil {
			return fmt.Errorf("unknown hard fail threshold %q for category %s", thresholds.HardFailThreshold, cat)
		}
		r.categoryConfigs[cat] = &CategoryConfig{
			Category:          cat,
			SoftFailThreshold: softFail,
			HardFailThreshold: hardFail,
		}
	}
	return nil
}

// SkipPaths returns the excluded paths accumulated from every matching
// section, sorted.
func (r *Resolver) SkipPaths() []string {
	paths := make([]string, 0, len(r.skipPaths))
	for p := range r.skipPaths {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// IsPathExcluded reports whether a file path is covered by one of the
// excluded paths. Entries are treated as doublestar glob patterns and as
// directory prefixes.
func (r *Resolver) IsPathExcluded(path string) bool {
	path = filepath.ToSlash(path)
	for skip := range r.skipPaths {
		skip = filepath.ToSlash(skip)
		if path == skip || strings.HasPrefix(path, skip+"/") {
			return true
		}
		if ok, err := doublestar.Match(skip, path); err == nil && ok {
			return true
		}
	}
	return false
}

// EnforcementRule returns the selected rule, or nil before Resolve or after
// a failed resolve.
func (r *Resolver) EnforcementRule() *EnforcementRule {
	return r.rule
}

// CategoryConfig returns the resolved thresholds for a category, or nil if
// the selected rule does not configure it.
func (r *Resolver) CategoryConfig(cat category.CodeCategory) *CategoryConfig {
	return r.categoryConfigs[cat]
}

// SkipCheckThreshold returns the skip threshold for a category. Categories
// without a resolved config never skip anything (NONE).
func (r *Resolver) SkipCheckThreshold(cat category.CodeCategory) *severity.Severity {
	cfg := r.categoryConfigs[cat]
	if cfg == nil {
		return severity.None
	}
	return cfg.SkipCheckThreshold()
}

// IsGlobalSoftFail reports whether the category's hard-fail threshold is the
// OFF sentinel. False for categories without a resolved config.
func (r *Resolver) IsGlobalSoftFail(cat category.CodeCategory) bool {
	cfg := r.categoryConfigs[cat]
	if cfg == nil {
		return false
	}
	return cfg.IsGlobalSoftFail()
}

package repoconfig

import (
	"strings"

	"github.com/danwakefield/fnmatch"
)

// RepoMatcher reports whether a repository identifier from the platform
// configuration refers to the repository being scanned.
type RepoMatcher func(candidate string) bool

// NewWildcardMatcher returns the default matcher for the given run
// repository id. A candidate matches on exact equality, on a shell-style
// wildcard pattern, or when it is a CLI-upload id carrying the platform org
// as a prefix on the owner segment (e.g. "acme_owner/repo" for the VCS repo
// "owner/repo").
func NewWildcardMatcher(repoID string) RepoMatcher {
	return func(candidate string) bool {
		if candidate == "" || repoID == "" {
			return false
		}
		if candidate == repoID {
			return true
		}
		if fnmatch.Match(candidate, repoID, fnmatch.FNM_NOESCAPE) {
			return true
		}
		if i := strings.Index(candidate, "_"); i >= 0 && candidate[i+1:] == repoID {
			return true
		}
		return false
	}
}

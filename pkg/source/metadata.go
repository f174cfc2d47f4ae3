package source

import (
	"context"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/pkg"
)

// lookupFunc returns candidate upstream URLs for a package, best first.
type lookupFunc func(ctx context.Context, name string) ([]string, error)

// resolveAll looks up every name and classifies the candidates. A failed
// lookup is logged and the package skipped; it does not fail the snapshot.
func resolveAll(ctx context.Context, logger zerolog.Logger, c Classifier, names []string, lookup lookupFunc) []pkg.Package {
	var pkgs []pkg.Package
	for _, name := range names {
		urls, err := lookup(ctx, name)
		if err != nil {
			logger.Warn().Err(err).Msgf("failed to query metadata for %s", name)
			continue
		}
		if p, ok := classifyFirst(c, name, urls...); ok {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// appendUnique appends the names not already in seen.
func appendUnique(dst []string, seen map[string]bool, names ...string) []string {
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		dst = append(dst, n)
	}
	return dst
}

// normalizeRepoURL turns the repository notations used in package metadata
// into browsable https URLs.
func normalizeRepoURL(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "git+")

	for prefix, host := range map[string]string{
		"github:":    "github.com",
		"gitlab:":    "gitlab.com",
		"bitbucket:": "bitbucket.org",
	} {
		if strings.HasPrefix(s, prefix) {
			return "https://" + host + "/" + strings.TrimPrefix(s, prefix)
		}
	}

	switch {
	case strings.HasPrefix(s, "git://"):
		return "https://" + strings.TrimPrefix(s, "git://")
	case strings.HasPrefix(s, "ssh://git@"):
		return "https://" + strings.TrimPrefix(s, "ssh://git@")
	case strings.HasPrefix(s, "git@"):
		// scp-like syntax: git@host:owner/repo
		return "https://" + strings.Replace(strings.TrimPrefix(s, "git@"), ":", "/", 1)
	case !strings.Contains(s, ":") && strings.Count(s, "/") == 1 && !strings.HasPrefix(s, "/") && !strings.HasPrefix(s, "."):
		// npm shorthand for GitHub: owner/repo
		return "https://github.com/" + s
	}
	return s
}

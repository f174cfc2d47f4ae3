package pkg

// Package is a discovered upstream repository, bound to the target that can
// star it. Values are produced by the target registry when a source's URL is
// matched and are not modified afterwards.
type Package struct {
	// Name is the display name reported by the source. Not unique.
	Name string
	// Identifier is the target-specific key used to star the repository
	// (e.g. "owner/repo"). Aggregation deduplicates on it.
	Identifier string
	// Target is the name of the target responsible for this package.
	Target string
}

// New returns a Package for the given name, identifier and target.
func New(name, identifier, target string) Package {
	return Package{Name: name, Identifier: identifier, Target: target}
}

func (p Package) String() string {
	return p.Name
}

// Dedup returns packages with repeated identifiers removed, keeping the first
// occurrence of each identifier and preserving order.
func Dedup(packages []Package) []Package {
	seen := make(map[string]bool, len(packages))
	out := make([]Package, 0, len(packages))
	for _, p := range packages {
		if seen[p.Identifier] {
			continue
		}
		seen[p.Identifier] = true
		out = append(out, p)
	}
	return out
}

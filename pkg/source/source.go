// Package source enumerates packages from system package managers and
// project manifests and aggregates them into one deduplicated list.
package source

import (
	"context"
	"strings"

	"github.com/starsync/stars/pkg/pkg"
)

// Source is a named provider of packages.
type Source interface {
	// Name is the unique registry key of the source.
	Name() string
	// Kind reports whether the source reads machine state or manifests.
	Kind() Kind
	// Available is a side-effect-free capability probe, evaluated once at
	// registration.
	Available() bool
	// Snapshot lists the source's packages. files holds the contents of the
	// source's required files (empty for global sources). URLs are turned
	// into packages through c.
	Snapshot(ctx context.Context, files Files, c Classifier) ([]pkg.Package, error)
}

// Classifier resolves a discovered URL to a package. It is satisfied by
// *target.Registry.
type Classifier interface {
	TryParse(name, rawURL string) (pkg.Package, bool)
}

// Files maps a required file name to its contents.
type Files map[string][]byte

// Kind is either global, or local with the manifest files it requires.
type Kind struct {
	files []string
}

// Global is the kind of sources that enumerate system-wide software.
func Global() Kind {
	return Kind{}
}

// Local is the kind of sources that read the given files from the working
// directory.
func Local(files ...string) Kind {
	return Kind{files: files}
}

// IsLocal reports whether the kind requires manifest files.
func (k Kind) IsLocal() bool {
	return len(k.files) > 0
}

// Files returns the required file names.
func (k Kind) Files() []string {
	return append([]string(nil), k.files...)
}

func (k Kind) String() string {
	if !k.IsLocal() {
		return "global"
	}
	return "local (" + strings.Join(k.files, ", ") + ")"
}

// classifyFirst returns the package for the first URL c accepts.
func classifyFirst(c Classifier, name string, urls ...string) (pkg.Package, bool) {
	for _, u := range urls {
		if u == "" {
			continue
		}
		if p, ok := c.TryParse(name, u); ok {
			return p, true
		}
	}
	return pkg.Package{}, false
}

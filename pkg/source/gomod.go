package source

import (
	"context"
	"fmt"

	"golang.org/x/mod/modfile"

	"github.com/starsync/stars/pkg/pkg"
)

const GoModManifest = "go.mod"

// GoMod stars the direct requirements of go.mod. Module paths are already
// repository URLs for the hosts targets understand, so no network lookup is
// needed.
type GoMod struct{}

var _ Source = GoMod{}

func (GoMod) Name() string    { return "gomod" }
func (GoMod) Kind() Kind      { return Local(GoModManifest) }
func (GoMod) Available() bool { return true }

func (GoMod) Snapshot(_ context.Context, files Files, c Classifier) ([]pkg.Package, error) {
	f, err := modfile.ParseLax(GoModManifest, files[GoModManifest], nil)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", GoModManifest, err)
	}

	var pkgs []pkg.Package
	for _, r := range f.Require {
		if r.Indirect {
			continue
		}
		if p, ok := c.TryParse(r.Mod.Path, "https://"+r.Mod.Path); ok {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs, nil
}

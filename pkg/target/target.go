// Package target defines repository-hosting integrations and the registry
// that classifies URLs and stars packages through them.
package target

import (
	"context"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/prompt"
	"github.com/starsync/stars/pkg/store"
)

// Target is a repository-hosting platform that can star repositories.
type Target interface {
	// Name is the unique registry key of the target.
	Name() string
	// Init prepares the target for starring, possibly prompting for and
	// persisting credentials. It is called at most once per run, the first
	// time a package for this target is starred. Returning false marks the
	// target failed for the rest of the run.
	Init(ctx context.Context, env Env) bool
	// Match reports whether u belongs to this target and extracts the
	// target-specific identifier. It must not perform I/O.
	Match(u *url.URL) (identifier string, ok bool)
	// Star stars the package's repository.
	Star(ctx context.Context, p pkg.Package) error
}

// Presentation is the status display a target must pause while it owns the
// terminal.
type Presentation interface {
	Suspend()
	Resume()
}

// Env is what a target may use during Init.
type Env struct {
	Store        store.Store
	Presentation Presentation
	Prompter     prompt.Prompter
	Logger       zerolog.Logger
}

// Interactive runs f with the presentation suspended.
func (e Env) Interactive(f func() error) error {
	if e.Presentation != nil {
		e.Presentation.Suspend()
		defer e.Presentation.Resume()
	}
	return f()
}

type nopPresentation struct{}

func (nopPresentation) Suspend() {}
func (nopPresentation) Resume()  {}

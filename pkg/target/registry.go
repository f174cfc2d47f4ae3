package target

import (
	"context"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/prompt"
	"github.com/starsync/stars/pkg/store"
)

// State is the lifecycle state of a registered target.
type State int

const (
	StateUninitialized State = iota
	StateInitialized
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateInitialized:
		return "initialized"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result is the outcome of starring one package.
type Result int

const (
	// ResultStarred means the target's star action succeeded.
	ResultStarred Result = iota
	// ResultFailed means the star action returned an error.
	ResultFailed
	// ResultSkipped means nothing was attempted: the target is missing or
	// failed to initialize.
	ResultSkipped
)

type entry struct {
	target Target
	state  State
}

// Registry owns the registered targets in registration order. It is not
// safe for concurrent use.
type Registry struct {
	entries []*entry
	index   map[string]*entry

	store        store.Store
	presentation Presentation
	prompter     prompt.Prompter
	logger       zerolog.Logger
}

// Option configures a Registry.
type Option func(*Registry)

// WithPresentation sets the display suspended while targets prompt.
func WithPresentation(p Presentation) Option {
	return func(r *Registry) { r.presentation = p }
}

// WithPrompter sets the prompter handed to targets during Init.
func WithPrompter(p prompt.Prompter) Option {
	return func(r *Registry) { r.prompter = p }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// NewRegistry creates an empty registry. st is handed to targets when they
// initialize.
func NewRegistry(st store.Store, opts ...Option) *Registry {
	r := &Registry{
		index:        make(map[string]*entry),
		store:        st,
		presentation: nopPresentation{},
		prompter:     prompt.Terminal{},
		logger:       zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds t. Registering two targets with the same name is a
// programming error and panics.
func (r *Registry) Register(t Target) {
	name := t.Name()
	if _, ok := r.index[name]; ok {
		panic(fmt.Sprintf("target collision: %s", name))
	}
	e := &entry{target: t, state: StateUninitialized}
	r.entries = append(r.entries, e)
	r.index[name] = e
}

// Deregister removes the target called name and reports whether it existed.
func (r *Registry) Deregister(name string) bool {
	if _, ok := r.index[name]; !ok {
		return false
	}
	delete(r.index, name)
	for i, e := range r.entries {
		if e.target.Name() == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the registered target names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for _, e := range r.entries {
		names = append(names, e.target.Name())
	}
	return names
}

// State returns the lifecycle state of the target called name.
func (r *Registry) State(name string) (State, bool) {
	e, ok := r.index[name]
	if !ok {
		return 0, false
	}
	return e.state, true
}

// TryParse classifies rawURL. Targets are tried in registration order and
// the first match wins, so targets should claim disjoint URL spaces.
// Unparseable and unmatched URLs report false; neither is an error.
func (r *Registry) TryParse(name, rawURL string) (pkg.Package, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return pkg.Package{}, false
	}

	for _, e := range r.entries {
		if id, ok := e.target.Match(u); ok {
			return pkg.New(name, id, e.target.Name()), true
		}
	}
	return pkg.Package{}, false
}

// Star stars p through its target, initializing the target on first use.
// Failures are logged and reported through the Result; they never abort
// the caller's run.
func (r *Registry) Star(ctx context.Context, p pkg.Package) Result {
	e, ok := r.index[p.Target]
	if !ok {
		r.logger.Error().Str("target", p.Target).Str("package", p.Name).Msg("no such target found")
		return ResultSkipped
	}

	if e.state == StateUninitialized {
		if e.target.Init(ctx, r.env()) {
			e.state = StateInitialized
		} else {
			e.state = StateFailed
		}
	}

	switch e.state {
	case StateInitialized:
		if err := e.target.Star(ctx, p); err != nil {
			r.logger.Error().Err(err).Str("target", p.Target).Msgf("error while starring %s", p)
			return ResultFailed
		}
		r.logger.Debug().Str("target", p.Target).Str("identifier", p.Identifier).Msgf("starred %s", p)
		return ResultStarred
	default:
		r.logger.Warn().Str("target", p.Target).Msgf("target %s not loaded, skipped %s", p.Target, p)
		return ResultSkipped
	}
}

func (r *Registry) env() Env {
	return Env{
		Store:        r.store,
		Presentation: r.presentation,
		Prompter:     r.prompter,
		Logger:       r.logger,
	}
}

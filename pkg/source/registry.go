package source

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/pkg"
)

// Status receives the name of the source currently being snapshotted.
type Status interface {
	SetMessage(msg string)
}

type entry struct {
	source    Source
	available bool
}

// Registry owns the registered sources in registration order. It is not
// safe for concurrent use.
type Registry struct {
	entries []*entry
	index   map[string]*entry

	workDir string
	logger  zerolog.Logger
	status  Status
}

type Option func(*Registry)

// WithWorkDir sets the directory local sources read manifests from. The
// default is the process working directory.
func WithWorkDir(dir string) Option {
	return func(r *Registry) { r.workDir = dir }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.logger = l }
}

// WithStatus reports progress while aggregating.
func WithStatus(s Status) Option {
	return func(r *Registry) { r.status = s }
}

func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		index:  make(map[string]*entry),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Register adds s. Available is evaluated once here; an unavailable source
// is remembered by name but never snapshotted. Registering two sources with
// the same name is a programming error and panics.
func (r *Registry) Register(s Source) {
	name := s.Name()
	if _, ok := r.index[name]; ok {
		panic(fmt.Sprintf("source collision: %s", name))
	}
	e := &entry{source: s, available: s.Available()}
	if !e.available {
		r.logger.Debug().Str("source", name).Msg("source unavailable")
	}
	r.entries = append(r.entries, e)
	r.index[name] = e
}

// Deregister removes the source called name and reports whether it existed.
func (r *Registry) Deregister(name string) bool {
	if _, ok := r.index[name]; !ok {
		return false
	}
	delete(r.index, name)
	for i, e := range r.entries {
		if e.source.Name() == name {
			r.entries = append(r.entries[:i], r.entries[i+1:]...)
			break
		}
	}
	return true
}

// Names returns the names of the available sources in registration order.
func (r *Registry) Names() []string {
	var names []string
	for _, e := range r.entries {
		if e.available {
			names = append(names, e.source.Name())
		}
	}
	return names
}

// Info describes a registered source.
type Info struct {
	Name      string
	Kind      Kind
	Available bool
}

// List describes every registered source, available or not.
func (r *Registry) List() []Info {
	infos := make([]Info, 0, len(r.entries))
	for _, e := range r.entries {
		infos = append(infos, Info{Name: e.source.Name(), Kind: e.source.Kind(), Available: e.available})
	}
	return infos
}

// Aggregate runs the eligible sources and returns their packages,
// deduplicated by identifier with the first occurrence kept.
//
// If any local source's manifest is present in the working directory only
// local sources run, and only those whose files are all present. Otherwise
// only global sources run. A failing source is logged and contributes
// nothing.
func (r *Registry) Aggregate(ctx context.Context, c Classifier) []pkg.Package {
	found := r.readManifests()
	local := len(found) > 0
	if local {
		r.logger.Debug().Int("files", len(found)).Msg("manifests found, running local sources")
	} else {
		r.logger.Debug().Msg("no manifests found, running global sources")
	}

	var all []pkg.Package
	for _, e := range r.entries {
		if !e.available {
			continue
		}
		src := e.source
		kind := src.Kind()
		if kind.IsLocal() != local {
			continue
		}

		files := Files{}
		if local {
			complete := true
			for _, f := range kind.files {
				data, ok := found[f]
				if !ok {
					complete = false
					break
				}
				files[f] = data
			}
			if !complete {
				r.logger.Debug().Str("source", src.Name()).Msg("required files missing, skipped")
				continue
			}
		}

		if r.status != nil {
			r.status.SetMessage(src.Name())
		}
		pkgs, err := src.Snapshot(ctx, files, c)
		if err != nil {
			r.logger.Warn().Err(err).Str("source", src.Name()).Msgf("source %s failed, skipped", src.Name())
			continue
		}
		r.logger.Debug().Str("source", src.Name()).Int("packages", len(pkgs)).Msg("snapshot complete")
		all = append(all, pkgs...)
	}

	return pkg.Dedup(all)
}

// readManifests reads every local source's required files that exist.
func (r *Registry) readManifests() Files {
	found := Files{}
	for _, e := range r.entries {
		if !e.available || !e.source.Kind().IsLocal() {
			continue
		}
		for _, f := range e.source.Kind().files {
			if _, ok := found[f]; ok {
				continue
			}
			data, err := os.ReadFile(filepath.Join(r.workDir, f))
			if err != nil {
				if !errors.Is(err, fs.ErrNotExist) {
					r.logger.Warn().Err(err).Str("file", f).Msg("unable to read manifest")
				}
				continue
			}
			found[f] = data
		}
	}
	return found
}

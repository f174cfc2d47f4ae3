package cmd

import (
	"io"
	"os"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/starsync/stars/pkg/config"
	"github.com/starsync/stars/pkg/logging"
	"github.com/starsync/stars/pkg/prompt"
	"github.com/starsync/stars/pkg/source"
	"github.com/starsync/stars/pkg/store"
	"github.com/starsync/stars/pkg/target"
	"github.com/starsync/stars/pkg/target/github"
	"github.com/starsync/stars/pkg/target/gitlab"
	"github.com/starsync/stars/pkg/transport"
)

// app holds the services shared by one invocation. They are created once
// from the resolved config and passed to everything that needs them.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	progress *logging.Progress
	store    store.Store
	client   *transport.Client
	exec     source.Runner
	prompter prompt.Prompter
	workDir  string
}

func newApp(cfg *config.Config, errOut io.Writer) (*app, error) {
	st, err := store.Default(cfg.IgnoreSaved)
	if err != nil {
		return nil, err
	}

	interactive := isTerminal(errOut)
	progress := logging.NewProgress(errOut, interactive && !cfg.Quiet)
	logger := logging.New(logging.Config{
		Level:   cfg.LogLevel,
		Verbose: cfg.Verbose,
		Quiet:   cfg.Quiet,
		NoColor: !interactive,
		Output:  progress,
	})

	return &app{
		cfg:      cfg,
		logger:   logger,
		progress: progress,
		store:    st,
		client:   transport.New(),
		exec:     source.System{},
		prompter: prompt.Terminal{},
		workDir:  ".",
	}, nil
}

// registries builds the source and target registries and applies --disable
// to both, since sources and targets share one name space.
func (a *app) registries() (*source.Registry, *target.Registry) {
	sources := a.sources()
	targets := a.targets()

	for _, name := range a.cfg.Disable {
		removedSource := sources.Deregister(name)
		removedTarget := targets.Deregister(name)
		if !removedSource && !removedTarget {
			a.logger.Warn().Msgf("cannot disable %s: no such source or target", name)
		}
	}
	return sources, targets
}

func (a *app) sources() *source.Registry {
	r := source.NewRegistry(
		source.WithWorkDir(a.workDir),
		source.WithLogger(a.logger),
		source.WithStatus(a.progress),
	)

	r.Register(source.NewHomebrew(a.exec))
	r.Register(source.NewPacman(a.exec))
	r.Register(source.NewDpkg(a.exec))
	r.Register(source.NewYum(a.exec))
	r.Register(source.NewPortage(a.exec, a.logger))
	r.Register(source.NewCargo(a.client, a.logger))
	r.Register(source.NewCargoGlobal(a.exec, a.client, a.logger))
	r.Register(source.NewZypper(a.exec))
	r.Register(source.NewNPM(a.client, a.logger))
	r.Register(source.NewPip(a.client, a.logger))
	r.Register(source.GoMod{})
	r.Register(source.NewPub(a.client, a.logger))

	return r
}

func (a *app) targets() *target.Registry {
	r := target.NewRegistry(a.store,
		target.WithPresentation(a.progress),
		target.WithPrompter(a.prompter),
		target.WithLogger(a.logger),
	)

	r.Register(github.New(a.client, github.WithCredentials(a.cfg.GitHub.Username, a.cfg.GitHub.Token)))
	r.Register(gitlab.New(a.client, gitlab.WithToken(a.cfg.GitLab.Token)))

	return r
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

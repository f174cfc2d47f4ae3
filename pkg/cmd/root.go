package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/starsync/stars/pkg/config"
	"github.com/starsync/stars/pkg/runner"
)

// rootOptions carries state from flag parsing to the subcommands.
type rootOptions struct {
	configFile string

	// cfg holds the resolved configuration, available to all subcommands
	// after PersistentPreRunE completes.
	cfg *config.Config
}

func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:   "stars",
		Short: "Star your upstream",
		Long: `stars finds the packages you depend on and stars their upstream repositories.

Inside a project with a supported manifest (Cargo.toml, package.json,
pyproject.toml, go.mod, pubspec.yaml) only the project's dependencies are
starred. Elsewhere every package installed through a supported system
package manager is starred.`,
		Args: cobra.NoArgs,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cmd.Flags(), opts.configFile)
			if err != nil {
				return err
			}
			opts.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStars(cmd, opts)
		},
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.BoolP("dry-run", "d", false, "do not actually star upstream repositories")
	flags.BoolP("quiet", "q", false, "suppress all output")
	flags.StringSlice("disable", nil, "disable sources or targets by name (e.g. homebrew,gitlab)")
	flags.Bool("ignore-saved", false, "ignore saved credentials")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.BoolP("verbose", "v", false, "enable debug logging")
	flags.StringVar(&opts.configFile, "config", "", "config file (default is <user config dir>/stars/config.toml)")

	root.AddCommand(newListCmd(opts))
	root.AddCommand(newConfigCmd(opts))
	root.AddCommand(newLogoutCmd(opts))

	return root
}

func runStars(cmd *cobra.Command, opts *rootOptions) error {
	a, err := newApp(opts.cfg, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	sources, targets := a.registries()

	r := &runner.Runner{
		Sources: sources,
		Targets: targets,
		Status:  a.progress,
		Logger:  a.logger,
		DryRun:  opts.cfg.DryRun,
	}
	r.Run(cmd.Context())
	return nil
}

func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

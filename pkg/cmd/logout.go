package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/starsync/stars/pkg/target/github"
	"github.com/starsync/stars/pkg/target/gitlab"
)

// credentialKeys maps target names to the store keys their credentials are
// saved under.
var credentialKeys = map[string]string{
	github.Name: github.CredentialKey,
	gitlab.Name: gitlab.TokenKey,
}

func newLogoutCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout [target...]",
		Short: "Forget saved credentials",
		Long:  "Removes the saved credentials of the given targets, or of every target when none is given.",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}

			names := args
			if len(names) == 0 {
				names = []string{github.Name, gitlab.Name}
			}
			for _, name := range names {
				key, ok := credentialKeys[name]
				if !ok {
					return fmt.Errorf("unknown target %q", name)
				}
				if err := a.store.Delete(key); err != nil {
					return fmt.Errorf("forgetting %s credentials: %w", name, err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Forgot %s credentials\n", name)
			}
			return nil
		},
	}
}

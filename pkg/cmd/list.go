package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
)

var headerStyle = lipgloss.NewStyle().Bold(true)

type moduleInfo struct {
	Name      string   `json:"name"`
	Type      string   `json:"type"`
	Kind      string   `json:"kind"`
	Files     []string `json:"files,omitempty"`
	Available bool     `json:"available"`
	Disabled  bool     `json:"disabled"`
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List sources and targets",
		Long:  "Lists every known source and target with its name, usable with --disable.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp(opts.cfg, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			return printModules(cmd.OutOrStdout(), format, listModules(a))
		},
	}

	cmd.Flags().StringVarP(&format, "output", "o", "table", "output format (table, json)")
	return cmd
}

// listModules describes every registered source and target. Disabled ones
// are listed and flagged rather than removed.
func listModules(a *app) []moduleInfo {
	var modules []moduleInfo
	for _, s := range a.sources().List() {
		kind := "global"
		if s.Kind.IsLocal() {
			kind = "local"
		}
		modules = append(modules, moduleInfo{
			Name:      s.Name,
			Type:      "source",
			Kind:      kind,
			Files:     s.Kind.Files(),
			Available: s.Available,
			Disabled:  a.cfg.Disabled(s.Name),
		})
	}
	for _, name := range a.targets().Names() {
		modules = append(modules, moduleInfo{
			Name:      name,
			Type:      "target",
			Kind:      "-",
			Available: true,
			Disabled:  a.cfg.Disabled(name),
		})
	}
	return modules
}

func printModules(w io.Writer, format string, modules []moduleInfo) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(modules)
	case "table", "":
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, headerStyle.Render("NAME")+"\t"+headerStyle.Render("TYPE")+"\t"+
		headerStyle.Render("KIND")+"\t"+headerStyle.Render("FILES")+"\t"+headerStyle.Render("AVAILABLE")+"\t"+
		headerStyle.Render("DISABLED"))
	for _, m := range modules {
		files := strings.Join(m.Files, ",")
		if files == "" {
			files = "-"
		}
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%t\t%t\n", m.Name, m.Type, m.Kind, files, m.Available, m.Disabled)
	}
	return tw.Flush()
}

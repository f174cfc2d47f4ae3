package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/transport"
)

const (
	CargoManifest      = "Cargo.toml"
	DefaultCratesIOURL = "https://crates.io"
)

// cratesIO looks up crate metadata on crates.io.
type cratesIO struct {
	client  *transport.Client
	baseURL string
}

func (r cratesIO) lookup(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Crate struct {
			Homepage   string `json:"homepage"`
			Repository string `json:"repository"`
		} `json:"crate"`
	}
	endpoint := fmt.Sprintf("%s/api/v1/crates/%s", r.baseURL, url.PathEscape(name))
	if err := r.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return []string{resp.Crate.Homepage, resp.Crate.Repository}, nil
}

// Cargo stars the dependencies declared in Cargo.toml.
type Cargo struct {
	crates cratesIO
	logger zerolog.Logger
}

var _ Source = &Cargo{}

func NewCargo(client *transport.Client, logger zerolog.Logger) *Cargo {
	return &Cargo{crates: cratesIO{client: client, baseURL: DefaultCratesIOURL}, logger: logger}
}

func (s *Cargo) Name() string    { return "cargo" }
func (s *Cargo) Kind() Kind      { return Local(CargoManifest) }
func (s *Cargo) Available() bool { return true }

func (s *Cargo) Snapshot(ctx context.Context, files Files, c Classifier) ([]pkg.Package, error) {
	deps, err := parseCargoManifest(files[CargoManifest])
	if err != nil {
		return nil, err
	}

	var (
		pkgs   []pkg.Package
		lookup []string
	)
	for _, d := range deps {
		if d.git != "" {
			if p, ok := c.TryParse(d.name, d.git); ok {
				pkgs = append(pkgs, p)
			}
			continue
		}
		lookup = append(lookup, d.name)
	}
	return append(pkgs, resolveAll(ctx, s.logger, c, lookup, s.crates.lookup)...), nil
}

type cargoDep struct {
	name string
	git  string
}

type cargoDeps map[string]any

type cargoManifest struct {
	Dependencies      cargoDeps `toml:"dependencies"`
	DevDependencies   cargoDeps `toml:"dev-dependencies"`
	BuildDependencies cargoDeps `toml:"build-dependencies"`
	Workspace         struct {
		Dependencies cargoDeps `toml:"dependencies"`
	} `toml:"workspace"`
}

// parseCargoManifest returns the crates.io and git dependencies of a
// manifest, honoring `package = "..."` renames. Path dependencies are
// skipped.
func parseCargoManifest(data []byte) ([]cargoDep, error) {
	var m cargoManifest
	if err := toml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", CargoManifest, err)
	}

	seen := map[string]bool{}
	var deps []cargoDep
	for _, table := range []cargoDeps{m.Dependencies, m.DevDependencies, m.BuildDependencies, m.Workspace.Dependencies} {
		for _, key := range sortedKeys(table) {
			d := cargoDep{name: key}
			if spec, ok := table[key].(map[string]any); ok {
				if _, isPath := spec["path"]; isPath {
					if _, hasVersion := spec["version"]; !hasVersion {
						continue
					}
				}
				if renamed, ok := spec["package"].(string); ok && renamed != "" {
					d.name = renamed
				}
				if git, ok := spec["git"].(string); ok {
					d.git = git
				}
			}
			if seen[d.name] {
				continue
			}
			seen[d.name] = true
			deps = append(deps, d)
		}
	}
	return deps, nil
}

// CargoGlobal stars crates installed with `cargo install`.
type CargoGlobal struct {
	runner Runner
	crates cratesIO
	logger zerolog.Logger
}

var _ Source = &CargoGlobal{}

func NewCargoGlobal(r Runner, client *transport.Client, logger zerolog.Logger) *CargoGlobal {
	return &CargoGlobal{
		runner: r,
		crates: cratesIO{client: client, baseURL: DefaultCratesIOURL},
		logger: logger,
	}
}

func (s *CargoGlobal) Name() string    { return "cargo-global" }
func (s *CargoGlobal) Kind() Kind      { return Global() }
func (s *CargoGlobal) Available() bool { return installed(s.runner, "cargo") }

func (s *CargoGlobal) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "cargo", "install", "--list")
	if err != nil {
		return nil, err
	}
	return resolveAll(ctx, s.logger, c, parseCargoInstallList(out), s.crates.lookup), nil
}

// parseCargoInstallList extracts crate names from lines like
// "ripgrep v14.1.0:"; the indented binary lines are ignored.
func parseCargoInstallList(out []byte) []string {
	var names []string
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if line == "" || line[0] == ' ' || line[0] == '\t' {
			continue
		}
		if fields := strings.Fields(line); len(fields) > 0 {
			names = append(names, strings.TrimSuffix(fields[0], ":"))
		}
	}
	return names
}

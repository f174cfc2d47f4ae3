package source

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"

	"github.com/rs/zerolog"
	"sigs.k8s.io/yaml"

	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/transport"
)

const (
	PubManifest      = "pubspec.yaml"
	DefaultPubDevURL = "https://pub.dev"
)

// Pub stars the dependencies declared in a Dart or Flutter pubspec.yaml.
type Pub struct {
	client  *transport.Client
	baseURL string
	logger  zerolog.Logger
}

var _ Source = &Pub{}

func NewPub(client *transport.Client, logger zerolog.Logger) *Pub {
	return &Pub{client: client, baseURL: DefaultPubDevURL, logger: logger}
}

func (s *Pub) Name() string    { return "pub" }
func (s *Pub) Kind() Kind      { return Local(PubManifest) }
func (s *Pub) Available() bool { return true }

// pubDep is a dependency value: a version string, null, or a map with one
// of hosted, git, path or sdk.
type pubDep struct {
	SDK  string          `json:"sdk"`
	Path string          `json:"path"`
	Git  json.RawMessage `json:"git"`
}

func (s *Pub) Snapshot(ctx context.Context, files Files, c Classifier) ([]pkg.Package, error) {
	var spec struct {
		Dependencies    map[string]json.RawMessage `json:"dependencies"`
		DevDependencies map[string]json.RawMessage `json:"dev_dependencies"`
	}
	if err := yaml.Unmarshal(files[PubManifest], &spec); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PubManifest, err)
	}

	var (
		pkgs   []pkg.Package
		lookup []string
		seen   = map[string]bool{}
	)
	for _, deps := range []map[string]json.RawMessage{spec.Dependencies, spec.DevDependencies} {
		for _, name := range sortedKeys(deps) {
			if seen[name] {
				continue
			}
			seen[name] = true

			var dep pubDep
			// version strings and null fail to decode into the struct and are hosted
			_ = json.Unmarshal(deps[name], &dep)
			switch {
			case dep.SDK != "" || dep.Path != "":
				continue
			case len(dep.Git) > 0:
				if p, ok := c.TryParse(name, normalizeRepoURL(pubGitURL(dep.Git))); ok {
					pkgs = append(pkgs, p)
				}
				continue
			}
			lookup = append(lookup, name)
		}
	}

	return append(pkgs, resolveAll(ctx, s.logger, c, lookup, s.lookup)...), nil
}

// pubGitURL accepts both `git: <url>` and `git: {url: <url>}`.
func pubGitURL(raw json.RawMessage) string {
	var u string
	if err := json.Unmarshal(raw, &u); err == nil {
		return u
	}
	var obj struct {
		URL string `json:"url"`
	}
	_ = json.Unmarshal(raw, &obj)
	return obj.URL
}

func (s *Pub) lookup(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Latest struct {
			Pubspec struct {
				Repository string `json:"repository"`
				Homepage   string `json:"homepage"`
			} `json:"pubspec"`
		} `json:"latest"`
	}
	endpoint := fmt.Sprintf("%s/api/packages/%s", s.baseURL, url.PathEscape(name))
	if err := s.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}
	return []string{resp.Latest.Pubspec.Repository, resp.Latest.Pubspec.Homepage}, nil
}

package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/transport"
)

const (
	NPMManifest           = "package.json"
	DefaultNPMRegistryURL = "https://registry.npmjs.org"
)

// NPM stars the dependencies declared in package.json.
type NPM struct {
	client  *transport.Client
	baseURL string
	logger  zerolog.Logger
}

var _ Source = &NPM{}

func NewNPM(client *transport.Client, logger zerolog.Logger) *NPM {
	return &NPM{client: client, baseURL: DefaultNPMRegistryURL, logger: logger}
}

func (s *NPM) Name() string    { return "npm" }
func (s *NPM) Kind() Kind      { return Local(NPMManifest) }
func (s *NPM) Available() bool { return true }

func (s *NPM) Snapshot(ctx context.Context, files Files, c Classifier) ([]pkg.Package, error) {
	var manifest struct {
		Dependencies         map[string]string `json:"dependencies"`
		DevDependencies      map[string]string `json:"devDependencies"`
		OptionalDependencies map[string]string `json:"optionalDependencies"`
	}
	if err := json.Unmarshal(files[NPMManifest], &manifest); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", NPMManifest, err)
	}

	var (
		pkgs   []pkg.Package
		lookup []string
		seen   = map[string]bool{}
	)
	for _, deps := range []map[string]string{manifest.Dependencies, manifest.DevDependencies, manifest.OptionalDependencies} {
		for _, name := range sortedKeys(deps) {
			if seen[name] {
				continue
			}
			seen[name] = true

			spec := deps[name]
			switch {
			case isLocalSpec(spec):
				continue
			case isRepoSpec(spec):
				if p, ok := c.TryParse(name, normalizeRepoURL(strings.SplitN(spec, "#", 2)[0])); ok {
					pkgs = append(pkgs, p)
				}
				continue
			}
			lookup = append(lookup, packageName(name, spec))
		}
	}

	return append(pkgs, resolveAll(ctx, s.logger, c, lookup, s.lookup)...), nil
}

func (s *NPM) lookup(ctx context.Context, name string) ([]string, error) {
	var doc struct {
		Repository json.RawMessage `json:"repository"`
		Homepage   string          `json:"homepage"`
	}
	// scoped names keep their "@" but escape the slash
	endpoint := s.baseURL + "/" + strings.Replace(name, "/", "%2F", 1)
	if err := s.client.GetJSON(ctx, endpoint, nil, &doc); err != nil {
		return nil, err
	}
	return []string{repositoryURL(doc.Repository), doc.Homepage}, nil
}

// repositoryURL accepts both the string and {"type", "url"} forms.
func repositoryURL(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return normalizeRepoURL(s)
	}
	var obj struct {
		URL string `json:"url"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil {
		return normalizeRepoURL(obj.URL)
	}
	return ""
}

// packageName resolves "npm:real-name@version" aliases.
func packageName(name, spec string) string {
	alias, ok := strings.CutPrefix(spec, "npm:")
	if !ok {
		return name
	}
	// if idx == 0 the alias is a scoped package without a version
	if idx := strings.LastIndex(alias, "@"); idx > 0 {
		alias = alias[:idx]
	}
	return alias
}

func isLocalSpec(spec string) bool {
	for _, prefix := range []string{"file:", "link:", "workspace:", "portal:", "./", "../", "/"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	return false
}

func isRepoSpec(spec string) bool {
	for _, prefix := range []string{"git+", "git://", "git@", "github:", "gitlab:", "bitbucket:"} {
		if strings.HasPrefix(spec, prefix) {
			return true
		}
	}
	// owner/repo shorthand
	return !strings.Contains(spec, ":") && strings.Count(spec, "/") == 1 && !strings.HasPrefix(spec, "@")
}

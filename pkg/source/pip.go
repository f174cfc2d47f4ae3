package source

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/transport"
)

const (
	PipManifest    = "pyproject.toml"
	DefaultPyPIURL = "https://pypi.org"
)

// requirementNameRE extracts the distribution name from a PEP 508
// requirement such as "requests[socks]>=2.31; python_version>'3.8'".
var requirementNameRE = regexp.MustCompile(`^\s*([A-Za-z0-9][A-Za-z0-9._-]*)`)

// projectURLOrder ranks the project_urls labels most likely to point at the
// source repository.
var projectURLOrder = []string{"source", "source code", "repository", "code", "github", "gitlab", "homepage"}

// Pip stars the dependencies declared in pyproject.toml, in either PEP 621
// or Poetry form.
type Pip struct {
	client  *transport.Client
	baseURL string
	logger  zerolog.Logger
}

var _ Source = &Pip{}

func NewPip(client *transport.Client, logger zerolog.Logger) *Pip {
	return &Pip{client: client, baseURL: DefaultPyPIURL, logger: logger}
}

func (s *Pip) Name() string    { return "pip" }
func (s *Pip) Kind() Kind      { return Local(PipManifest) }
func (s *Pip) Available() bool { return true }

func (s *Pip) Snapshot(ctx context.Context, files Files, c Classifier) ([]pkg.Package, error) {
	names, err := parsePyProject(files[PipManifest])
	if err != nil {
		return nil, err
	}
	return resolveAll(ctx, s.logger, c, names, s.lookup), nil
}

type poetryDeps map[string]any

type pyProject struct {
	Project struct {
		Dependencies         []string            `toml:"dependencies"`
		OptionalDependencies map[string][]string `toml:"optional-dependencies"`
	} `toml:"project"`
	DependencyGroups map[string][]any `toml:"dependency-groups"`
	Tool             struct {
		Poetry struct {
			Dependencies    poetryDeps `toml:"dependencies"`
			DevDependencies poetryDeps `toml:"dev-dependencies"`
			Group           map[string]struct {
				Dependencies poetryDeps `toml:"dependencies"`
			} `toml:"group"`
		} `toml:"poetry"`
	} `toml:"tool"`
}

func parsePyProject(data []byte) ([]string, error) {
	var p pyProject
	if err := toml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", PipManifest, err)
	}

	seen := map[string]bool{}
	var names []string
	addRequirements := func(reqs []string) {
		for _, r := range reqs {
			if m := requirementNameRE.FindStringSubmatch(r); m != nil {
				names = appendUnique(names, seen, normalizePyName(m[1]))
			}
		}
	}

	addRequirements(p.Project.Dependencies)
	for _, extra := range sortedKeys(p.Project.OptionalDependencies) {
		addRequirements(p.Project.OptionalDependencies[extra])
	}
	for _, group := range sortedKeys(p.DependencyGroups) {
		for _, item := range p.DependencyGroups[group] {
			// {include-group = "..."} tables are skipped
			if r, ok := item.(string); ok {
				addRequirements([]string{r})
			}
		}
	}

	poetry := p.Tool.Poetry
	tables := []poetryDeps{poetry.Dependencies, poetry.DevDependencies}
	for _, group := range sortedKeys(poetry.Group) {
		tables = append(tables, poetry.Group[group].Dependencies)
	}
	for _, deps := range tables {
		for _, name := range sortedKeys(deps) {
			if strings.EqualFold(name, "python") {
				continue
			}
			if spec, ok := deps[name].(map[string]any); ok {
				if _, isPath := spec["path"]; isPath {
					continue
				}
			}
			names = appendUnique(names, seen, normalizePyName(name))
		}
	}
	return names, nil
}

// normalizePyName applies the PEP 503 normalization.
func normalizePyName(name string) string {
	name = strings.ToLower(name)
	return strings.NewReplacer("_", "-", ".", "-").Replace(name)
}

func (s *Pip) lookup(ctx context.Context, name string) ([]string, error) {
	var resp struct {
		Info struct {
			ProjectURLs map[string]string `json:"project_urls"`
			HomePage    string            `json:"home_page"`
		} `json:"info"`
	}
	endpoint := fmt.Sprintf("%s/pypi/%s/json", s.baseURL, url.PathEscape(name))
	if err := s.client.GetJSON(ctx, endpoint, nil, &resp); err != nil {
		return nil, err
	}

	urls := make([]string, 0, len(resp.Info.ProjectURLs)+1)
	byLabel := make(map[string]string, len(resp.Info.ProjectURLs))
	for label, u := range resp.Info.ProjectURLs {
		byLabel[strings.ToLower(label)] = u
	}
	for _, label := range projectURLOrder {
		if u, ok := byLabel[label]; ok {
			urls = append(urls, u)
			delete(byLabel, label)
		}
	}
	for _, label := range sortedKeys(byLabel) {
		urls = append(urls, byLabel[label])
	}
	return append(urls, resp.Info.HomePage), nil
}

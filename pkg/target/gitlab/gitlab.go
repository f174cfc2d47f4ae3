package gitlab

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/target"
	"github.com/starsync/stars/pkg/transport"
)

const (
	Name          = "gitlab"
	DefaultAPIURL = "https://gitlab.com"
	// TokenKey is the store key holding the personal access token.
	TokenKey      = "gitlab_token"
)

// Target stars projects on gitlab.com with a personal access token.
type Target struct {
	client *transport.Client
	apiURL string

	configured string
	token      string
}

var _ target.Target = &Target{}

type Option func(*Target)

// WithAPIURL overrides the instance base URL.
func WithAPIURL(u string) Option {
	return func(t *Target) { t.apiURL = strings.TrimSuffix(u, "/") }
}

// WithToken supplies a token from configuration.
func WithToken(token string) Option {
	return func(t *Target) { t.configured = token }
}

func New(client *transport.Client, opts ...Option) *Target {
	t := &Target{client: client, apiURL: DefaultAPIURL}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Target) Name() string {
	return Name
}

func (t *Target) Init(_ context.Context, env target.Env) bool {
	if saved, ok := env.Store.ReadString(TokenKey); ok && saved != "" {
		t.token = saved
		return true
	}
	if t.configured != "" {
		t.token = t.configured
		return true
	}

	var token string
	err := env.Interactive(func() error {
		env.Logger.Info().Msg("Please enter your GitLab personal access token.")
		env.Logger.Info().Msg("Acquire one at https://gitlab.com/-/user_settings/personal_access_tokens.")
		env.Logger.Info().Msg("`api` scope is required.")
		env.Logger.Warn().Msg("Beware that star actions will be publicly visible.")

		var err error
		token, err = env.Prompter.Password("Please input your GitLab token")
		return err
	})
	if err != nil {
		env.Logger.Error().Err(err).Msg("failed to read GitLab token")
		return false
	}

	t.token = token
	if err := env.Store.Write(TokenKey, token); err != nil {
		env.Logger.Warn().Err(err).Msg("failed to save GitLab token")
	}
	return true
}

// Match accepts https://gitlab.com/<owner>/<repo>[...]. The identifier is
// the URL-encoded project path, as the projects API expects it.
func (t *Target) Match(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	if host != "gitlab.com" && host != "www.gitlab.com" {
		return "", false
	}

	segs := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 3)
	if len(segs) < 2 {
		return "", false
	}
	owner, repo := segs[0], strings.TrimSuffix(segs[1], ".git")
	if owner == "" || repo == "" || owner == "-" {
		return "", false
	}
	return url.PathEscape(owner + "/" + repo), true
}

func (t *Target) Star(ctx context.Context, p pkg.Package) error {
	if t.token == "" {
		return fmt.Errorf("gitlab target used before initialization")
	}
	endpoint := fmt.Sprintf("%s/api/v4/projects/%s/star", t.apiURL, p.Identifier)
	// 304 means the project is already starred.
	return t.client.Send(ctx, http.MethodPost, endpoint, transport.BearerAuth{Token: t.token}, http.StatusNotModified)
}

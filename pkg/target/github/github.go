package github

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
	Name          = "github"
	DefaultAPIURL = "https://api.github.com"
	// CredentialKey is the store key holding "username:token".
	CredentialKey = "github_credential"
)

// Target stars repositories on github.com using basic auth with a personal
// access token.
type Target struct {
	client *transport.Client
	apiURL string

	username string
	token    string

	credential string
}

var _ target.Target = &Target{}

// Option configures a Target.
type Option func(*Target)

// WithAPIURL overrides the API base URL.
func WithAPIURL(u string) Option {
	return func(t *Target) { t.apiURL = strings.TrimSuffix(u, "/") }
}

// WithCredentials supplies credentials from configuration, skipping the
// prompt when no credential has been saved.
func WithCredentials(username, token string) Option {
	return func(t *Target) {
		t.username = username
		t.token = token
	}
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
	if saved, ok := env.Store.ReadString(CredentialKey); ok && saved != "" {
		t.credential = saved
		return true
	}

	if t.username != "" && t.token != "" {
		t.credential = t.username + ":" + t.token
		return true
	}

	var username, token string
	err := env.Interactive(func() error {
		env.Logger.Info().Msg("Please enter your GitHub credentials.")
		env.Logger.Info().Msg("Acquire a personal access token at https://github.com/settings/tokens/new.")
		env.Logger.Info().Msg("`public_repo` scope is required.")
		env.Logger.Warn().Msg("Beware that star actions will be publicly visible.")
		env.Logger.Warn().Msg("To avoid polluting your timeline, consider using a dedicated account.")

		var err error
		if username, err = env.Prompter.Input("Please input your GitHub username"); err != nil {
			return err
		}
		token, err = env.Prompter.Password("Please input your GitHub token")
		return err
	})
	if err != nil {
		env.Logger.Error().Err(err).Msg("failed to read GitHub credentials")
		return false
	}

	t.credential = username + ":" + token
	if err := env.Store.Write(CredentialKey, t.credential); err != nil {
		env.Logger.Warn().Err(err).Msg("failed to save GitHub credentials")
	}
	return true
}

// Match accepts https://github.com/<owner>/<repo>[...] and returns
// "owner/repo" with any ".git" suffix removed.
func (t *Target) Match(u *url.URL) (string, bool) {
	host := strings.ToLower(u.Hostname())
	if host != "github.com" && host != "www.github.com" {
		return "", false
	}

	segs := strings.SplitN(strings.TrimPrefix(u.Path, "/"), "/", 3)
	if len(segs) < 2 {
		return "", false
	}
	owner, repo := segs[0], strings.TrimSuffix(segs[1], ".git")
	if owner == "" || repo == "" {
		return "", false
	}
	return owner + "/" + repo, true
}

func (t *Target) Star(ctx context.Context, p pkg.Package) error {
	if t.credential == "" {
		return fmt.Errorf("github target used before initialization")
	}
	endpoint := fmt.Sprintf("%s/user/starred/%s", t.apiURL, p.Identifier)
	return t.client.Send(ctx, http.MethodPut, endpoint, transport.BasicAuth{Credential: t.credential})
}

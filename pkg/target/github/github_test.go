package github

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starsync/stars/pkg/pkg"
	"github.com/starsync/stars/pkg/prompt"
	"github.com/starsync/stars/pkg/store"
	"github.com/starsync/stars/pkg/target"
	"github.com/starsync/stars/pkg/transport"
)

func TestMatch(t *testing.T) {
	tests := map[string]struct {
		url    string
		want   string
		wantOK bool
	}{
		"repo":            {url: "https://github.com/BurntSushi/ripgrep", want: "BurntSushi/ripgrep", wantOK: true},
		"www":             {url: "https://www.github.com/sharkdp/fd", want: "sharkdp/fd", wantOK: true},
		"git suffix":      {url: "https://github.com/sharkdp/bat.git", want: "sharkdp/bat", wantOK: true},
		"deep path":       {url: "https://github.com/golang/go/tree/master/src", want: "golang/go", wantOK: true},
		"upper case host": {url: "https://GitHub.com/a/b", want: "a/b", wantOK: true},
		"owner only":      {url: "https://github.com/BurntSushi"},
		"empty repo":      {url: "https://github.com/BurntSushi/"},
		"no path":         {url: "https://github.com"},
		"other host":      {url: "https://gitlab.com/a/b"},
		"pages subdomain": {url: "https://sharkdp.github.io/fd"},
	}

	tg := New(transport.New())
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			u, err := url.Parse(tc.url)
			require.NoError(t, err)
			got, ok := tg.Match(u)
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func newEnv(t *testing.T, answers ...string) (target.Env, store.Store, *prompt.Static) {
	t.Helper()
	st := store.Open(filepath.Join(t.TempDir(), store.DefaultFile), false)
	p := &prompt.Static{Answers: answers}
	return target.Env{Store: st, Prompter: p, Logger: zerolog.Nop()}, st, p
}

func TestInit(t *testing.T) {
	t.Run("saved credential", func(t *testing.T) {
		env, st, p := newEnv(t)
		require.NoError(t, st.Write(CredentialKey, "saved:tok"))

		tg := New(transport.New(), WithCredentials("cfg", "cfgtok"))
		require.True(t, tg.Init(context.Background(), env))
		assert.Equal(t, "saved:tok", tg.credential)
		assert.Empty(t, p.Asked)
	})

	t.Run("configured credential is not persisted", func(t *testing.T) {
		env, st, p := newEnv(t)

		tg := New(transport.New(), WithCredentials("octocat", "ghp_cfg"))
		require.True(t, tg.Init(context.Background(), env))
		assert.Equal(t, "octocat:ghp_cfg", tg.credential)
		assert.Empty(t, p.Asked)
		_, saved := st.Read(CredentialKey)
		assert.False(t, saved)
	})

	t.Run("prompted credential is persisted", func(t *testing.T) {
		env, st, p := newEnv(t, "octocat", "ghp_prompt")

		tg := New(transport.New())
		require.True(t, tg.Init(context.Background(), env))
		assert.Equal(t, "octocat:ghp_prompt", tg.credential)
		assert.Len(t, p.Asked, 2)

		saved, ok := store.Open(st.Path(), false).ReadString(CredentialKey)
		assert.True(t, ok)
		assert.Equal(t, "octocat:ghp_prompt", saved)
	})

	t.Run("aborted prompt fails", func(t *testing.T) {
		env, _, _ := newEnv(t)

		tg := New(transport.New())
		assert.False(t, tg.Init(context.Background(), env))
	})
}

func TestStar(t *testing.T) {
	var gotPath, gotAuth, gotMethod string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod, gotPath, gotAuth = r.Method, r.URL.Path, r.Header.Get("Authorization")
		if r.URL.Path == "/user/starred/missing/repo" {
			http.Error(w, `{"message":"Not Found"}`, http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	env, _, _ := newEnv(t)
	tg := New(transport.New(), WithAPIURL(srv.URL+"/"), WithCredentials("octocat", "ghp_x"))
	require.True(t, tg.Init(context.Background(), env))

	err := tg.Star(context.Background(), pkg.New("ripgrep", "BurntSushi/ripgrep", Name))
	require.NoError(t, err)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/user/starred/BurntSushi/ripgrep", gotPath)
	assert.Equal(t, "Basic "+base64.StdEncoding.EncodeToString([]byte("octocat:ghp_x")), gotAuth)

	err = tg.Star(context.Background(), pkg.New("missing", "missing/repo", Name))
	assert.ErrorIs(t, err, transport.ErrNotFound)
}

func TestStarBeforeInit(t *testing.T) {
	tg := New(transport.New())
	assert.Error(t, tg.Star(context.Background(), pkg.New("a", "a/b", Name)))
}

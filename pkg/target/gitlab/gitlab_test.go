package gitlab

import (
	"context"
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
		"project":     {url: "https://gitlab.com/inkscape/inkscape", want: "inkscape%2Finkscape", wantOK: true},
		"www":         {url: "https://www.gitlab.com/a/b", want: "a%2Fb", wantOK: true},
		"git suffix":  {url: "https://gitlab.com/a/b.git", want: "a%2Fb", wantOK: true},
		"deep path":   {url: "https://gitlab.com/a/b/-/issues", want: "a%2Fb", wantOK: true},
		"owner only":  {url: "https://gitlab.com/a"},
		"help page":   {url: "https://gitlab.com/-/snippets"},
		"other host":  {url: "https://github.com/a/b"},
		"self hosted": {url: "https://gitlab.gnome.org/GNOME/gtk"},
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
	tests := map[string]struct {
		saved      string
		configured string
		answers    []string
		wantOK     bool
		wantToken  string
		wantAsked  int
		wantStored string
	}{
		"saved wins over config": {
			saved: "glpat-saved", configured: "glpat-cfg",
			wantOK: true, wantToken: "glpat-saved", wantStored: "glpat-saved",
		},
		"config": {
			configured: "glpat-cfg",
			wantOK:     true, wantToken: "glpat-cfg",
		},
		"prompt": {
			answers: []string{"glpat-prompt"},
			wantOK:  true, wantToken: "glpat-prompt", wantAsked: 1, wantStored: "glpat-prompt",
		},
		"no terminal": {
			wantAsked: 1,
		},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			env, st, p := newEnv(t, tc.answers...)
			if tc.saved != "" {
				require.NoError(t, st.Write(TokenKey, tc.saved))
			}

			tg := New(transport.New(), WithToken(tc.configured))
			assert.Equal(t, tc.wantOK, tg.Init(context.Background(), env))
			assert.Equal(t, tc.wantToken, tg.token)
			assert.Len(t, p.Asked, tc.wantAsked)

			stored, _ := st.ReadString(TokenKey)
			assert.Equal(t, tc.wantStored, stored)
		})
	}
}

func TestStar(t *testing.T) {
	tests := map[string]struct {
		status  int
		wantErr error
	}{
		"created":         {status: http.StatusCreated},
		"already starred": {status: http.StatusNotModified},
		"bad token":       {status: http.StatusUnauthorized, wantErr: transport.ErrUnauthorized},
		"no project":      {status: http.StatusNotFound, wantErr: transport.ErrNotFound},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			var gotPath, gotAuth, gotMethod string
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				gotMethod, gotPath, gotAuth = r.Method, r.URL.EscapedPath(), r.Header.Get("Authorization")
				w.WriteHeader(tc.status)
			}))
			defer srv.Close()

			env, _, _ := newEnv(t)
			tg := New(transport.New(), WithAPIURL(srv.URL), WithToken("glpat-x"))
			require.True(t, tg.Init(context.Background(), env))

			err := tg.Star(context.Background(), pkg.New("inkscape", "inkscape%2Finkscape", Name))
			if tc.wantErr != nil {
				assert.ErrorIs(t, err, tc.wantErr)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, http.MethodPost, gotMethod)
			assert.Equal(t, "/api/v4/projects/inkscape%2Finkscape/star", gotPath)
			assert.Equal(t, "Bearer glpat-x", gotAuth)
		})
	}
}

package cmd

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starsync/stars/pkg/config"
	"github.com/starsync/stars/pkg/store"
	"github.com/starsync/stars/pkg/target/github"
)

// sandbox isolates a command run from the user's configuration, saved
// credentials and working directory.
func sandbox(t *testing.T) (workDir, configDir string) {
	t.Helper()
	base := t.TempDir()
	workDir = filepath.Join(base, "work")
	require.NoError(t, os.MkdirAll(workDir, 0o755))

	t.Setenv("XDG_CONFIG_HOME", filepath.Join(base, "config"))
	t.Setenv("HOME", base)
	for _, name := range []string{"GITHUB_USER", "GITHUB_TOKEN", "GITLAB_TOKEN", "STARS_DISABLE", "STARS_DRY_RUN"} {
		t.Setenv(name, "")
	}
	prevDir, wdErr := os.Getwd()
	require.NoError(t, wdErr)
	require.NoError(t, os.Chdir(workDir))
	t.Cleanup(func() { _ = os.Chdir(prevDir) })

	configDir, err := config.Dir()
	require.NoError(t, err)
	return workDir, configDir
}

func execute(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()
	var out, errOut bytes.Buffer
	root := NewRootCmd()
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)
	err = root.Execute()
	return out.String(), errOut.String(), err
}

func TestConfigRedactsTokens(t *testing.T) {
	sandbox(t)
	t.Setenv("STARS_GITHUB_USERNAME", "octocat")
	t.Setenv("STARS_GITHUB_TOKEN", "ghp_secret")

	out, _, err := execute(t, "config", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "octocat")
	assert.Contains(t, out, "<redacted>")
	assert.NotContains(t, out, "ghp_secret")
	assert.Contains(t, out, "dry_run = true")
}

func TestConfigFileMustExist(t *testing.T) {
	workDir, _ := sandbox(t)

	_, _, err := execute(t, "config", "--config", filepath.Join(workDir, "missing.toml"))
	assert.Error(t, err)
}

func TestList(t *testing.T) {
	sandbox(t)

	out, _, err := execute(t, "list", "-o", "json", "--disable", "gitlab")
	require.NoError(t, err)

	var modules []moduleInfo
	require.NoError(t, json.Unmarshal([]byte(out), &modules))

	byName := make(map[string]moduleInfo)
	for _, m := range modules {
		byName[m.Name] = m
	}
	for _, name := range []string{"homebrew", "pacman", "dpkg", "cargo", "npm", "pip", "gomod", "pub", "github", "gitlab"} {
		assert.Contains(t, byName, name)
	}

	assert.Equal(t, "source", byName["cargo"].Type)
	assert.Equal(t, "local", byName["cargo"].Kind)
	assert.Equal(t, []string{"Cargo.toml"}, byName["cargo"].Files)
	assert.Equal(t, "global", byName["homebrew"].Kind)
	assert.Equal(t, "target", byName["github"].Type)
	assert.True(t, byName["gitlab"].Disabled)
	assert.False(t, byName["github"].Disabled)
}

func TestListTable(t *testing.T) {
	sandbox(t)

	out, _, err := execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "NAME")
	assert.Contains(t, out, "Cargo.toml")
	assert.Contains(t, out, "github")
}

func TestListUnknownFormat(t *testing.T) {
	sandbox(t)

	_, _, err := execute(t, "list", "-o", "yaml")
	assert.ErrorContains(t, err, "unknown output format")
}

func TestDryRunInProject(t *testing.T) {
	workDir, _ := sandbox(t)
	gomod := "module example.com/app\n\ngo 1.22\n\nrequire (\n\tgithub.com/stretchr/testify v1.9.0\n\tgolang.org/x/term v0.20.0\n)\n"
	require.NoError(t, os.WriteFile(filepath.Join(workDir, "go.mod"), []byte(gomod), 0o644))

	_, logs, err := execute(t, "--dry-run", "--verbose")
	require.NoError(t, err)

	assert.Contains(t, logs, "found 1 packages")
	assert.Contains(t, logs, "dry-run: star")
	assert.Contains(t, logs, "stretchr/testify")
	assert.Contains(t, logs, "Done!")
}

func TestDisableUnknownWarns(t *testing.T) {
	sandbox(t)

	_, logs, err := execute(t, "--dry-run", "--disable", "homebrew,pacman,dpkg,yum,portage,cargo-global,zypper,nosuch")
	require.NoError(t, err)
	assert.Contains(t, logs, "cannot disable nosuch")
}

func TestLogout(t *testing.T) {
	_, configDir := sandbox(t)
	path := filepath.Join(configDir, store.DefaultFile)
	require.NoError(t, store.Open(path, false).Write(github.CredentialKey, "octocat:ghp_x"))

	out, _, err := execute(t, "logout", "github")
	require.NoError(t, err)
	assert.Contains(t, out, "Forgot github credentials")

	_, ok := store.Open(path, false).Read(github.CredentialKey)
	assert.False(t, ok)
}

func TestLogoutUnknownTarget(t *testing.T) {
	sandbox(t)

	_, _, err := execute(t, "logout", "bitbucket")
	assert.ErrorContains(t, err, `unknown target "bitbucket"`)
}

package source

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/starsync/stars/pkg/pkg"
)

// githubClassifier accepts https://github.com/<owner>/<repo> URLs.
type githubClassifier struct{}

func (githubClassifier) TryParse(name, rawURL string) (pkg.Package, bool) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() != "github.com" {
		return pkg.Package{}, false
	}
	segs := strings.Split(strings.Trim(u.Path, "/"), "/")
	if len(segs) < 2 || segs[0] == "" || segs[1] == "" {
		return pkg.Package{}, false
	}
	return pkg.New(name, segs[0]+"/"+strings.TrimSuffix(segs[1], ".git"), "github"), true
}

// fakeRunner serves canned command output keyed by the full command line.
type fakeRunner struct {
	paths   map[string]bool
	outputs map[string]string
	errs    map[string]error
	calls   []string
}

func (f *fakeRunner) LookPath(file string) (string, error) {
	if f.paths[file] {
		return "/usr/bin/" + file, nil
	}
	return "", fmt.Errorf("%s: executable file not found in $PATH", file)
}

func (f *fakeRunner) Output(_ context.Context, name string, args ...string) ([]byte, error) {
	line := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, line)
	if err, ok := f.errs[line]; ok {
		return nil, err
	}
	out, ok := f.outputs[line]
	if !ok {
		return nil, fmt.Errorf("unexpected command %q", line)
	}
	return []byte(out), nil
}

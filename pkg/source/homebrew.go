package source

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/starsync/stars/pkg/pkg"
)

// Homebrew lists installed formulae and casks.
type Homebrew struct {
	runner Runner
}

var _ Source = &Homebrew{}

func NewHomebrew(r Runner) *Homebrew {
	return &Homebrew{runner: r}
}

func (s *Homebrew) Name() string    { return "homebrew" }
func (s *Homebrew) Kind() Kind      { return Global() }
func (s *Homebrew) Available() bool { return installed(s.runner, "brew") }

func (s *Homebrew) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "brew", "info", "--json=v2", "--installed")
	if err != nil {
		return nil, err
	}
	return parseBrewInfo(out, c)
}

type brewInfo struct {
	Formulae []struct {
		Name     string `json:"name"`
		Homepage string `json:"homepage"`
		URLs     map[string]struct {
			URL string `json:"url"`
		} `json:"urls"`
	} `json:"formulae"`
	Casks []struct {
		Token    string `json:"token"`
		Homepage string `json:"homepage"`
		URL      string `json:"url"`
	} `json:"casks"`
}

func parseBrewInfo(data []byte, c Classifier) ([]pkg.Package, error) {
	var info brewInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing brew info: %w", err)
	}

	var pkgs []pkg.Package
	for _, f := range info.Formulae {
		urls := []string{f.Homepage}
		for _, kind := range releaseOrder(f.URLs) {
			urls = append(urls, f.URLs[kind].URL)
		}
		if p, ok := classifyFirst(c, f.Name, urls...); ok {
			pkgs = append(pkgs, p)
		}
	}
	for _, cask := range info.Casks {
		if p, ok := classifyFirst(c, cask.Token, cask.Homepage, cask.URL); ok {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs, nil
}

// releaseOrder puts "stable" first, then "head", then the rest by name.
func releaseOrder[V any](urls map[string]V) []string {
	rank := map[string]int{"stable": 0, "head": 1}
	keys := make([]string, 0, len(urls))
	for k := range urls {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ri, iok := rank[keys[i]]
		rj, jok := rank[keys[j]]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		}
		return keys[i] < keys[j]
	})
	return keys
}

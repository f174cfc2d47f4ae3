package source

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rs/zerolog"

	"github.com/starsync/stars/pkg/pkg"
)

var (
	homepageRE = regexp.MustCompile(`(?m)^HOMEPAGE="(.+)"$`)
	// versionRE matches the version component of a PF such as "gtk+-3.24.38-r1".
	versionRE = regexp.MustCompile(`-\d[.\d]*[a-z]?[^_-]*`)
)

// Portage walks the installed package database of Gentoo's portage.
type Portage struct {
	runner Runner
	logger zerolog.Logger
}

var _ Source = &Portage{}

func NewPortage(r Runner, logger zerolog.Logger) *Portage {
	return &Portage{runner: r, logger: logger}
}

func (s *Portage) Name() string    { return "portage" }
func (s *Portage) Kind() Kind      { return Global() }
func (s *Portage) Available() bool { return installed(s.runner, "portageq") }

func (s *Portage) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "portageq", "vdb_path")
	if err != nil {
		return nil, err
	}
	return s.walk(strings.TrimSpace(string(out)), c)
}

// walk reads <vdb>/<category>/<PF>/<PF>.ebuild for every installed atom.
func (s *Portage) walk(vdb string, c Classifier) ([]pkg.Package, error) {
	categories, err := os.ReadDir(vdb)
	if err != nil {
		return nil, fmt.Errorf("reading vdb %s: %w", vdb, err)
	}

	var pkgs []pkg.Package
	for _, category := range categories {
		if !category.IsDir() {
			continue
		}
		catDir := filepath.Join(vdb, category.Name())
		atoms, err := os.ReadDir(catDir)
		if err != nil {
			s.logger.Warn().Err(err).Msgf("unable to iterate through category %s", category.Name())
			continue
		}
		for _, atom := range atoms {
			if !atom.IsDir() {
				continue
			}
			pf := atom.Name()
			name := atomName(pf)
			data, err := os.ReadFile(filepath.Join(catDir, pf, pf+".ebuild"))
			if err != nil {
				s.logger.Warn().Err(err).Msgf("atom %s", name)
				continue
			}
			if p, ok := classifyFirst(c, name, homepages(data)...); ok {
				pkgs = append(pkgs, p)
			}
		}
	}
	return pkgs, nil
}

func homepages(ebuild []byte) []string {
	m := homepageRE.FindSubmatch(ebuild)
	if m == nil {
		return nil
	}
	return strings.Fields(string(m[1]))
}

// atomName strips the last version-like component from a PF, yielding PN.
func atomName(pf string) string {
	locs := versionRE.FindAllStringIndex(pf, -1)
	if len(locs) == 0 {
		return pf
	}
	return pf[:locs[len(locs)-1][0]]
}

package source

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/starsync/stars/pkg/pkg"
)

// Dpkg lists packages known to dpkg with their Homepage field.
type Dpkg struct {
	runner Runner
}

var _ Source = &Dpkg{}

func NewDpkg(r Runner) *Dpkg {
	return &Dpkg{runner: r}
}

func (s *Dpkg) Name() string    { return "dpkg" }
func (s *Dpkg) Kind() Kind      { return Global() }
func (s *Dpkg) Available() bool { return installed(s.runner, "dpkg-query") }

func (s *Dpkg) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "dpkg-query", "-f", "${source:Package}\t${Homepage}\n", "-W")
	if err != nil {
		return nil, err
	}
	return parseDpkgQuery(out, c)
}

func parseDpkgQuery(out []byte, c Classifier) ([]pkg.Package, error) {
	var pkgs []pkg.Package
	sc := bufio.NewScanner(bytes.NewReader(out))
	for sc.Scan() {
		name, homepage, ok := strings.Cut(sc.Text(), "\t")
		if !ok || homepage == "" {
			continue
		}
		if p, ok := c.TryParse(name, strings.TrimSpace(homepage)); ok {
			pkgs = append(pkgs, p)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading dpkg-query output: %w", err)
	}
	return pkgs, nil
}

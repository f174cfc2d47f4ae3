package source

import (
	"context"
	"regexp"
	"strings"

	"github.com/starsync/stars/pkg/pkg"
)

// infoBlockRE matches the Name and URL fields of one package in the
// key-colon-value reports printed by pacman, yum and zypper.
var infoBlockRE = regexp.MustCompile(`Name +: (.+)[\s\S]*?URL +: (.+)`)

func parseInfoBlocks(out []byte, c Classifier) []pkg.Package {
	var pkgs []pkg.Package
	for _, m := range infoBlockRE.FindAllSubmatch(out, -1) {
		name := strings.TrimSpace(string(m[1]))
		u := strings.TrimSpace(string(m[2]))
		if p, ok := c.TryParse(name, u); ok {
			pkgs = append(pkgs, p)
		}
	}
	return pkgs
}

// Pacman lists packages installed with pacman.
type Pacman struct {
	runner Runner
}

var _ Source = &Pacman{}

func NewPacman(r Runner) *Pacman {
	return &Pacman{runner: r}
}

func (s *Pacman) Name() string    { return "pacman" }
func (s *Pacman) Kind() Kind      { return Global() }
func (s *Pacman) Available() bool { return installed(s.runner, "pacman") }

func (s *Pacman) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "pacman", "-Qi")
	if err != nil {
		return nil, err
	}
	return parseInfoBlocks(out, c), nil
}

// Yum lists packages installed with yum.
type Yum struct {
	runner Runner
}

var _ Source = &Yum{}

func NewYum(r Runner) *Yum {
	return &Yum{runner: r}
}

func (s *Yum) Name() string    { return "yum" }
func (s *Yum) Kind() Kind      { return Global() }
func (s *Yum) Available() bool { return installed(s.runner, "yum") }

func (s *Yum) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "yum", "info", "installed")
	if err != nil {
		return nil, err
	}
	return parseInfoBlocks(out, c), nil
}

var zypperInstalledRE = regexp.MustCompile(`<solvable status="installed" name="([\w-]+)"`)

// Zypper lists packages installed with zypper. It searches for installed
// solvables, then asks for their details in one call.
type Zypper struct {
	runner Runner
}

var _ Source = &Zypper{}

func NewZypper(r Runner) *Zypper {
	return &Zypper{runner: r}
}

func (s *Zypper) Name() string    { return "zypper" }
func (s *Zypper) Kind() Kind      { return Global() }
func (s *Zypper) Available() bool { return installed(s.runner, "zypper") }

func (s *Zypper) Snapshot(ctx context.Context, _ Files, c Classifier) ([]pkg.Package, error) {
	out, err := s.runner.Output(ctx, "zypper", "-x", "search", "-i")
	if err != nil {
		return nil, err
	}

	args := []string{"info"}
	for _, m := range zypperInstalledRE.FindAllSubmatch(out, -1) {
		args = append(args, string(m[1]))
	}
	if len(args) == 1 {
		return nil, nil
	}

	out, err = s.runner.Output(ctx, "zypper", args...)
	if err != nil {
		return nil, err
	}
	return parseInfoBlocks(out, c), nil
}

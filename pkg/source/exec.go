package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Runner executes external programs on behalf of global sources.
type Runner interface {
	LookPath(file string) (string, error)
	Output(ctx context.Context, name string, args ...string) ([]byte, error)
}

// System runs programs found in PATH.
type System struct{}

var _ Runner = System{}

func (System) LookPath(file string) (string, error) {
	return exec.LookPath(file)
}

func (System) Output(ctx context.Context, name string, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	if err != nil {
		return nil, fmt.Errorf("running %s: %w", name, execError(err))
	}
	return out, nil
}

func installed(r Runner, binary string) bool {
	_, err := r.LookPath(binary)
	return err == nil
}

// execError extracts stderr from an *exec.ExitError when available.
func execError(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && len(exitErr.Stderr) > 0 {
		return fmt.Errorf("%w: %s", err, strings.TrimSpace(string(exitErr.Stderr)))
	}
	return err
}

package prompt

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"
)

// ErrNotInteractive is returned when a prompt is needed but stdin is not a
// terminal.
var ErrNotInteractive = errors.New("stdin is not a terminal")

// Prompter asks the user for values. Targets use it during initialization.
type Prompter interface {
	// Input asks for a visible value.
	Input(title string) (string, error)
	// Password asks for a hidden value.
	Password(title string) (string, error)
}

// Terminal prompts on the controlling terminal using huh forms.
type Terminal struct{}

var _ Prompter = Terminal{}

func (Terminal) Input(title string) (string, error) {
	return ask(title, huh.EchoModeNormal)
}

func (Terminal) Password(title string) (string, error) {
	return ask(title, huh.EchoModePassword)
}

func ask(title string, mode huh.EchoMode) (string, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", ErrNotInteractive
	}

	var value string
	err := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(title).
				EchoMode(mode).
				Validate(huh.ValidateNotEmpty()).
				Value(&value),
		),
	).Run()
	if err != nil {
		return "", fmt.Errorf("prompt failed: %w", err)
	}

	return value, nil
}

// Static answers prompts from fixed values, in order. It is used for
// non-interactive runs and tests.
type Static struct {
	Answers []string
	// Asked records every title passed to Input or Password.
	Asked []string
}

var _ Prompter = &Static{}

func (s *Static) Input(title string) (string, error) {
	return s.next(title)
}

func (s *Static) Password(title string) (string, error) {
	return s.next(title)
}

func (s *Static) next(title string) (string, error) {
	s.Asked = append(s.Asked, title)
	if len(s.Answers) == 0 {
		return "", ErrNotInteractive
	}
	v := s.Answers[0]
	s.Answers = s.Answers[1:]
	return v, nil
}

package logging

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

const clearLine = "\r\x1b[K"

var (
	prefixStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("6"))
	counterStyle = lipgloss.NewStyle().Faint(true)
)

// Progress renders a single status line ("prefix [n/total] message") below
// the log output. It is also an io.Writer: log lines written through it are
// printed above the status line, which is then redrawn.
//
// Suspend and Resume hide the status line while something else owns the
// terminal, such as an interactive credential prompt.
type Progress struct {
	mu sync.Mutex

	out         io.Writer
	interactive bool

	prefix    string
	message   string
	total     int
	current   int
	suspended bool
	drawn     bool
}

// NewProgress returns a Progress writing to out. The status line is only
// drawn when interactive is true; otherwise Progress is a plain writer.
func NewProgress(out io.Writer, interactive bool) *Progress {
	return &Progress{out: out, interactive: interactive}
}

// NewStderrProgress returns a Progress on stderr that draws only when stderr
// is a terminal.
func NewStderrProgress() *Progress {
	return NewProgress(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())))
}

// Discard returns a Progress that prints nothing.
func Discard() *Progress {
	return NewProgress(io.Discard, false)
}

func (p *Progress) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	n, err := p.out.Write(b)
	p.draw()
	return n, err
}

// SetPrefix sets the phase label and resets the counter to indeterminate.
func (p *Progress) SetPrefix(prefix string) {
	p.update(func() {
		p.prefix = prefix
		p.message = ""
		p.total = 0
		p.current = 0
	})
}

// SetMessage sets the text shown after the counter.
func (p *Progress) SetMessage(msg string) {
	p.update(func() { p.message = msg })
}

// SetTotal switches the status line to a determinate n/total counter.
func (p *Progress) SetTotal(total int) {
	p.update(func() {
		p.total = total
		p.current = 0
	})
}

// Inc advances the counter by one.
func (p *Progress) Inc() {
	p.update(func() { p.current++ })
}

// Finish removes the status line.
func (p *Progress) Finish() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	p.prefix = ""
	p.message = ""
	p.total = 0
	p.current = 0
}

// Suspend hides the status line until Resume is called.
func (p *Progress) Suspend() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	p.suspended = true
}

// Resume redraws the status line after Suspend.
func (p *Progress) Resume() {
	p.update(func() { p.suspended = false })
}

// Line returns the current status text without styling.
func (p *Progress) Line() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.line(false)
}

func (p *Progress) update(f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.clear()
	f()
	p.draw()
}

func (p *Progress) line(styled bool) string {
	prefix := p.prefix
	counter := ""
	if p.total > 0 {
		counter = fmt.Sprintf("[%d/%d]", p.current, p.total)
	}
	if styled {
		prefix = prefixStyle.Render(prefix)
		if counter != "" {
			counter = counterStyle.Render(counter)
		}
	}

	s := prefix
	for _, part := range []string{counter, p.message} {
		if part == "" {
			continue
		}
		if s != "" {
			s += " "
		}
		s += part
	}
	return s
}

func (p *Progress) clear() {
	if p.drawn {
		fmt.Fprint(p.out, clearLine)
		p.drawn = false
	}
}

func (p *Progress) draw() {
	if !p.interactive || p.suspended || p.prefix == "" {
		return
	}
	fmt.Fprint(p.out, p.line(true))
	p.drawn = true
}

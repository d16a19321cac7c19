package ops

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/morikuni/aec"
)

// UI prints the messages a user follows a run with.
type UI struct {
	Out     io.Writer
	NoColor bool

	mu sync.Mutex
}

// NewUI writes to w, using colors only when w is a terminal.
func NewUI(w io.Writer) *UI {
	ui := &UI{Out: w, NoColor: true}

	if f, ok := w.(*os.File); ok {
		ui.NoColor = !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd())
	}

	return ui
}

func (u *UI) out() io.Writer {
	if u.Out == nil {
		return os.Stdout
	}

	return u.Out
}

func (u *UI) paint(color aec.ANSI, s string) string {
	if u.NoColor {
		return s
	}

	return color.Apply(s)
}

func (u *UI) printf(format string, args ...interface{}) {
	u.mu.Lock()
	defer u.mu.Unlock()

	fmt.Fprintf(u.out(), format, args...)
}

// Step announces an important step.
func (u *UI) Step(format string, args ...interface{}) {
	u.printf("%s\n", u.paint(aec.YellowF, "* "+fmt.Sprintf(format, args...)))
}

func (u *UI) Info(format string, args ...interface{}) {
	u.printf(format+"\n", args...)
}

// Failed reports that stage failed for the package name.
func (u *UI) Failed(name, stage string, err error) {
	u.printf("%s\n", u.paint(aec.RedF, fmt.Sprintf("! %s: %s failed: %s", name, stage, err)))
}

// Prefixed returns a writer printing every line it receives after
// "name │ ". A line redrawn with carriage returns is printed once, with its
// last content.
func (u *UI) Prefixed(name string) io.Writer {
	return &prefixWriter{ui: u, prefix: name}
}

type prefixWriter struct {
	ui     *UI
	prefix string
	buf    bytes.Buffer
	last   string
}

func (p *prefixWriter) Write(b []byte) (int, error) {
	for _, c := range b {
		switch c {
		case '\n':
			p.flush()
		case '\r':
			if p.buf.Len() > 0 {
				p.last = p.buf.String()
				p.buf.Reset()
			}
		default:
			p.buf.WriteByte(c)
		}
	}

	return len(b), nil
}

func (p *prefixWriter) flush() {
	line := p.buf.String()
	if line == "" {
		line = p.last
	}

	p.buf.Reset()
	p.last = ""

	line = strings.TrimRight(line, " \t")
	if line == "" {
		return
	}

	p.ui.printf("%s │ %s\n", p.prefix, line)
}

// Close prints whatever partial line is left.
func (p *prefixWriter) Close() error {
	p.flush()
	return nil
}

type uiMarker struct{}

func WithUI(ctx context.Context, ui *UI) context.Context {
	return context.WithValue(ctx, uiMarker{}, ui)
}

func GetUI(ctx context.Context) *UI {
	v := ctx.Value(uiMarker{})
	if v == nil {
		return &UI{}
	}

	return v.(*UI)
}

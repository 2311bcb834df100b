package console

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"golang.org/x/term"

	"github.com/gzhole/faultcorpus/internal/fault"
)

var (
	faultColor = color.New(color.FgRed, color.Bold)
	cleanColor = color.New(color.FgGreen)
	passColor  = color.New(color.FgGreen, color.Bold)
	failColor  = color.New(color.FgRed, color.Bold)
	dimColor   = color.New(color.Faint)
)

// IsTerminal reports whether w is a terminal. Anything that is not an
// *os.File (buffers in tests, pipes wrapped by cobra) is not.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Printer renders fault reports, in color only when writing to a terminal.
type Printer struct {
	w     io.Writer
	color bool
}

func NewPrinter(w io.Writer) *Printer {
	return &Printer{w: w, color: IsTerminal(w) && !color.NoColor}
}

func (p *Printer) paint(c *color.Color, s string) string {
	if !p.color {
		return s
	}
	return c.Sprint(s)
}

// Fault reports the outcome of one fixture invocation.
func (p *Printer) Fault(fixture string, d *fault.Descriptor) {
	if d == nil {
		fmt.Fprintf(p.w, "%s %s: no fault\n", p.paint(cleanColor, "ok"), fixture)
		return
	}
	fmt.Fprintf(p.w, "%s %s: %s\n", p.paint(faultColor, "FAULT"), fixture, d.Summary())
	if d.Detail != "" {
		fmt.Fprintf(p.w, "      %s\n", p.paint(dimColor, d.Detail))
	}
}

// Result prints a PASS/FAIL line followed by indented failure reasons.
func (p *Printer) Result(pass bool, label string, failures []string) {
	if pass {
		fmt.Fprintf(p.w, "%s %s\n", p.paint(passColor, "PASS"), label)
		return
	}
	fmt.Fprintf(p.w, "%s %s\n", p.paint(failColor, "FAIL"), label)
	for _, f := range failures {
		fmt.Fprintf(p.w, "     %s\n", f)
	}
}

// Dim prints a faint line.
func (p *Printer) Dim(format string, args ...interface{}) {
	fmt.Fprintln(p.w, p.paint(dimColor, fmt.Sprintf(format, args...)))
}

package fixture

import (
	"fmt"
	"io"
	"strings"

	"github.com/gzhole/faultcorpus/internal/fault"
)

// Directive is one printf conversion found in a template.
type Directive struct {
	Text     string
	Offset   int
	Verb     byte // 0 when the template ends inside the directive
	Position int  // n of a positional "%n$" conversion, else 0
	Args     int  // variadic arguments read by this directive
	Writes   bool // %n stores through a pointer argument
}

const (
	printfFlags   = "-+ #0'"
	printfLengths = "hlLqjzZt"
	printfVerbs   = "diouxXeEfFgGaAcCsSpnm"
)

// ScanDirectives returns every conversion directive printf would
// interpret in s. "%%" is a literal percent sign and is skipped. A '%'
// followed by an unknown conversion is still reported, with the unknown
// byte as its verb and no arguments.
func ScanDirectives(s string) []Directive {
	var out []Directive
	for i := 0; i < len(s); i++ {
		if s[i] != '%' {
			continue
		}
		if i+1 < len(s) && s[i+1] == '%' {
			i++
			continue
		}
		d, end := scanDirective(s, i)
		out = append(out, d)
		i = end - 1
	}
	return out
}

// scanDirective parses the directive starting at s[start] == '%' and
// returns it with the index just past its last byte.
func scanDirective(s string, start int) (Directive, int) {
	d := Directive{Offset: start}
	i := start + 1

	if pos, next, ok := scanPosition(s, i); ok {
		d.Position = pos
		i = next
	}
	for i < len(s) && strings.IndexByte(printfFlags, s[i]) >= 0 {
		i++
	}
	// Width.
	i = scanStarOrDigits(s, i, &d)
	// Precision.
	if i < len(s) && s[i] == '.' {
		i = scanStarOrDigits(s, i+1, &d)
	}
	for i < len(s) && strings.IndexByte(printfLengths, s[i]) >= 0 {
		i++
	}

	if i >= len(s) {
		d.Text = s[start:]
		return d, len(s)
	}
	d.Verb = s[i]
	i++
	d.Text = s[start:i]

	switch {
	case d.Verb == 'm' || strings.IndexByte(printfVerbs, d.Verb) < 0:
		// %m prints errno and reads nothing; unknown verbs read nothing.
	case d.Position > 0:
		// Positional conversions address their argument directly.
	default:
		d.Args++
	}
	d.Writes = d.Verb == 'n'
	return d, i
}

// scanPosition recognizes "<digits>$" at s[i:].
func scanPosition(s string, i int) (int, int, bool) {
	n, j := 0, i
	for j < len(s) && s[j] >= '0' && s[j] <= '9' {
		n = n*10 + int(s[j]-'0')
		if n > 1<<20 {
			n = 1 << 20
		}
		j++
	}
	if j == i || j >= len(s) || s[j] != '$' {
		return 0, i, false
	}
	return n, j + 1, true
}

func scanStarOrDigits(s string, i int, d *Directive) int {
	if i < len(s) && s[i] == '*' {
		i++
		if pos, next, ok := scanPosition(s, i); ok {
			d.Position = max(d.Position, pos)
			return next
		}
		d.Args++
		return i
	}
	for i < len(s) && s[i] >= '0' && s[i] <= '9' {
		i++
	}
	return i
}

// ArgumentsRead is how many variadic arguments a printf call with these
// directives would fetch: sequential reads, or the highest positional
// index if that reaches further.
func ArgumentsRead(ds []Directive) int {
	seq, highest := 0, 0
	for _, d := range ds {
		seq += d.Args
		highest = max(highest, d.Position)
	}
	return max(seq, highest)
}

// FormatInjection passes input to the output routine as a template. The
// simulation writes input as opaque data (the correct behavior, see
// FormatLiteral) and reports every directive the unsafe call would have
// interpreted. Inputs without directives produce no descriptor.
//
// ObservedLength is the number of directives; Extent is the number of
// arguments the call would have read from a frame that holds none.
func FormatInjection(env *Env, input string) *fault.Descriptor {
	env = env.orDefault()
	FormatLiteral(env.Stdout, input)

	ds := ScanDirectives(input)
	if len(ds) == 0 {
		return nil
	}

	desc := &fault.Descriptor{
		Fixture:        IDFormatString,
		Category:       fault.FormatInjection,
		Threshold:      0,
		ObservedLength: uint64(len(ds)),
		Extent:         uint64(ArgumentsRead(ds)),
	}
	for _, d := range ds {
		desc.Directives = append(desc.Directives, d.Text)
		if d.Writes {
			desc.WritesMemory = true
		}
	}
	desc.Detail = fmt.Sprintf("%d directive(s) interpreted as control syntax, %d argument(s) read",
		len(ds), desc.Extent)
	if desc.WritesMemory {
		desc.Detail += ", memory written through %n"
	}
	return desc
}

// FormatLiteral prints input through a fixed "%s" template, treating it
// strictly as data.
func FormatLiteral(w io.Writer, input string) {
	fmt.Fprintf(w, "%s", input)
}

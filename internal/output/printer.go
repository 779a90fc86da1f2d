package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Placeholder is printed for any absent value
const Placeholder = "-"

// Printer writes terminal-safe text, sanitizing every string-like argument
type Printer struct {
	w       io.Writer
	heading *lipgloss.Style
}

// NewPrinter creates a printer. Headings are styled only when color is set;
// lipgloss itself falls back to plain text when w is not a terminal.
func NewPrinter(w io.Writer, color bool) *Printer {
	p := &Printer{w: w}
	if color {
		style := lipgloss.NewRenderer(w).NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
		p.heading = &style
	}
	return p
}

func (p *Printer) Printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, sanitizeArgs(args)...)
}

func (p *Printer) Println(args ...any) {
	fmt.Fprintln(p.w, sanitizeArgs(args)...)
}

// Heading prints a section title followed by a colon
func (p *Printer) Heading(title string) {
	text := SanitizeTerminal(title) + ":"
	if p.heading != nil {
		text = p.heading.Render(text)
	}
	fmt.Fprintln(p.w, text)
}

// Field prints "label: value" at the given indent level, using the
// placeholder for empty values
func (p *Printer) Field(indent int, label, value string) {
	if strings.TrimSpace(value) == "" {
		value = Placeholder
	}
	p.Printf("%s%s: %s\n", strings.Repeat("  ", indent), label, value)
}

func sanitizeArgs(args []any) []any {
	if len(args) == 0 {
		return nil
	}
	out := make([]any, len(args))
	for i, a := range args {
		switch v := a.(type) {
		case string:
			out[i] = SanitizeTerminal(v)
		case []byte:
			out[i] = SanitizeTerminal(string(v))
		case error:
			out[i] = SanitizeTerminal(v.Error())
		case fmt.Stringer:
			out[i] = SanitizeTerminal(v.String())
		default:
			out[i] = a
		}
	}
	return out
}

package output

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeTerminal(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "plain text", in: "hello world", want: "hello world"},
		{name: "keeps newline and tab", in: "a\tb\nc", want: "a\tb\nc"},
		{name: "escape sequence", in: "hi\x1b[31mred", want: `hi\x1b[31mred`},
		{name: "nul byte", in: "nul:\x00", want: `nul:\x00`},
		{name: "invalid utf-8", in: "bad:\xff", want: `bad:\xff`},
		{name: "c1 control", in: "x\u0085y", want: `x\x85y`},
		{name: "non-ascii text untouched", in: "Zürich 東京", want: "Zürich 東京"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SanitizeTerminal(tt.in))
		})
	}
}

func TestPrinter_SanitizesArguments(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	p.Printf("%s %v %d\n", "a\x07", errors.New("b\x1b"), 3)
	p.Field(1, "Empty", "  ")

	assert.Equal(t, "a\\x07 b\\x1b 3\n  Empty: -\n", buf.String())
}

func TestPrinter_HeadingWithoutTerminal(t *testing.T) {
	var buf bytes.Buffer
	NewPrinter(&buf, false).Heading("DNS")

	assert.Equal(t, "DNS:\n", buf.String())
}

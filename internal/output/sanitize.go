package output

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// SanitizeTerminal replaces control characters and invalid UTF-8 bytes with
// visible escapes so API-provided text cannot drive the terminal. Newlines
// and tabs are kept.
//   - "hi\x1b[31m" -> `hi\x1b[31m`
//   - "bad:\xff"   -> `bad:\xff`
func SanitizeTerminal(s string) string {
	if isClean(s) {
		return s
	}

	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		switch {
		case r == utf8.RuneError && size == 1:
			fmt.Fprintf(&b, `\x%02x`, s[i])
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case unicode.IsControl(r):
			b.WriteString(escapeRune(r))
		default:
			b.WriteString(s[i : i+size])
		}
		i += size
	}
	return b.String()
}

func isClean(s string) bool {
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			return false
		}
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return false
		}
		i += size
	}
	return true
}

func escapeRune(r rune) string {
	switch {
	case r <= 0xFF:
		return fmt.Sprintf(`\x%02x`, r)
	case r <= 0xFFFF:
		return fmt.Sprintf(`\u%04x`, r)
	default:
		return fmt.Sprintf(`\U%08x`, r)
	}
}

package security

import (
	"regexp"
	"strings"
	"unicode"
)

const (
	// MaxDisplayLength bounds a single rendered field on a terminal
	MaxDisplayLength = 256
)

// escapePatterns match terminal control sequences a payload could smuggle into a render
var escapePatterns = []*regexp.Regexp{
	// CSI sequences: ESC [ ... final byte
	regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]`),
	// OSC sequences: ESC ] ... BEL or ESC \
	regexp.MustCompile(`\x1b\][^\x07\x1b]*(\x07|\x1b\\)`),
	// Any other two-byte escape
	regexp.MustCompile(`\x1b[@-_]`),
}

// SanitizeDisplay makes an untrusted string safe to print on a terminal.
// Escape sequences are removed, remaining control characters are dropped,
// and the result is truncated to MaxDisplayLength runes.
func SanitizeDisplay(s string) string {
	if s == "" {
		return ""
	}

	for _, pattern := range escapePatterns {
		s = pattern.ReplaceAllString(s, "")
	}

	var b strings.Builder
	b.Grow(len(s))
	n := 0
	for _, r := range s {
		if !isDisplayRune(r) {
			continue
		}
		if n == MaxDisplayLength {
			b.WriteString("...")
			break
		}
		b.WriteRune(r)
		n++
	}

	return b.String()
}

// SanitizeLines applies SanitizeDisplay to every line
func SanitizeLines(lines []string) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = SanitizeDisplay(line)
	}
	return out
}

// isDisplayRune checks if a rune is safe to write to a terminal
func isDisplayRune(r rune) bool {
	return !unicode.IsControl(r) && r != '\u2028' && r != '\u2029'
}

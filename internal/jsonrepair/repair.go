// Package jsonrepair rewrites almost-JSON text whose string literals contain
// improperly escaped interior quotation marks, as delivered by the catalog
// content store. The repair is a two-state scan {outside-string,
// inside-string}: a quote met inside a string closes it only when the next
// significant character is a separator; otherwise it is escaped. Running the
// repair on already-repaired text is a no-op.
package jsonrepair

import "strings"

func isSeparator(c byte) bool {
	return c == ',' || c == ']' || c == '}'
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// Repair returns s with interior quotes escaped so the result parses as JSON.
func Repair(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 8)

	inString := false
	for i := 0; i < len(s); i++ {
		c := s[i]

		if inString && c == '\\' && i+1 < len(s) {
			// Already-escaped sequence: copy verbatim. This is what makes the
			// repair idempotent.
			b.WriteByte(c)
			b.WriteByte(s[i+1])
			i++
			continue
		}

		if c != '"' {
			b.WriteByte(c)
			continue
		}

		if !inString {
			inString = true
			b.WriteByte(c)
			continue
		}

		// Quote inside a string: look ahead past whitespace. A separator (or
		// end of input) means this quote legitimately closes the string.
		j := i + 1
		for j < len(s) && isSpace(s[j]) {
			j++
		}
		if j == len(s) || isSeparator(s[j]) {
			inString = false
			b.WriteByte(c)
		} else {
			b.WriteString(`\"`)
		}
	}

	return b.String()
}

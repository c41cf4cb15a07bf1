package command

import "strings"

// Line renders an argv for logging, quoting tokens that contain whitespace
// so the logged command can be pasted back into a shell for diagnosis.
func Line(argv []string) string {
	var b strings.Builder
	for i, tok := range argv {
		if i > 0 {
			b.WriteByte(' ')
		}
		if strings.ContainsAny(tok, " \t\n") {
			b.WriteByte('\'')
			b.WriteString(tok)
			b.WriteByte('\'')
		} else {
			b.WriteString(tok)
		}
	}
	return b.String()
}

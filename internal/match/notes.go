package match

import (
	"regexp"
	"strings"
)

// Percentage extraction from the free-text notes the model returns. The
// patterns are tried in priority order.
var (
	notesLeading  = regexp.MustCompile(`^(\d+%)\s*[-:]\s*(.+)$`)
	notesTrailing = regexp.MustCompile(`^(.+?)\s*\((\d+%)\)\s*$`)
	notesBare     = regexp.MustCompile(`^(\d+%)\s*$`)
	notesAnywhere = regexp.MustCompile(`\d+%`)
	notesScrub    = regexp.MustCompile(`\s*\d+%\s*[-:()]*\s*`)
)

// ParseNotes splits a notes string into its embedded confidence percentage
// and the remaining description. Accepted shapes, in priority order:
// "85% - text", "text (85%)", bare "85%", or a percentage anywhere in the
// string. Without any percentage the whole text is the description.
func ParseNotes(notes string) (percentage, description string) {
	trimmed := strings.TrimSpace(notes)
	if trimmed == "" {
		return "", ""
	}

	if m := notesLeading.FindStringSubmatch(trimmed); m != nil {
		return m[1], strings.TrimSpace(m[2])
	}
	if m := notesTrailing.FindStringSubmatch(trimmed); m != nil {
		return m[2], strings.TrimSpace(m[1])
	}
	if m := notesBare.FindStringSubmatch(trimmed); m != nil {
		return m[1], ""
	}
	if pct := notesAnywhere.FindString(trimmed); pct != "" {
		desc := strings.TrimSpace(notesScrub.ReplaceAllString(trimmed, " "))
		return pct, desc
	}
	return "", trimmed
}

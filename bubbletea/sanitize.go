package bubbletea

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// tabWidth is the column interval between tab stops.
const tabWidth = 8

// SanitizeLine prepares diff content for the terminal. Tabs become spaces
// up to the next 8-column stop, counted from startCol. Carriage returns
// left by CRLF files and other control characters are dropped, since they
// would move the cursor and break the layout.
func SanitizeLine(s string, startCol int) string {
	clean := true
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] == 0x7f {
			clean = false
			break
		}
	}
	if clean {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	col := startCol
	for _, r := range s {
		switch {
		case r == '\t':
			stop := (col/tabWidth + 1) * tabWidth
			sb.WriteString(strings.Repeat(" ", stop-col))
			col = stop
		case r < 0x20 || r == 0x7f:
		default:
			sb.WriteRune(r)
			col += lipgloss.Width(string(r))
		}
	}
	return sb.String()
}

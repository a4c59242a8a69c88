package outwriter

import (
	"os"

	"golang.org/x/term"
)

// getMaxStateWidth calculates the maximum width for the state column in
// table output based on terminal width.
func getMaxStateWidth() int {
	termWidth, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || termWidth <= 0 {
		// Fallback to conservative default if terminal size can't be detected
		termWidth = 80 // Conservative default for narrow terminals and CI
	}

	// Reserve space for the six numeric columns, the status column and
	// table borders, separators and padding.
	available := termWidth - 62
	if available < 12 {
		// Minimum reasonable state width
		return 12
	}
	if available > 24 {
		// "Northern Mariana Islands" is the longest name in the feed
		return 24
	}
	return available
}

// truncateState shortens a state name to fit the table column.
func truncateState(state string, width int) string {
	if len(state) <= width {
		return state
	}
	if width <= 3 {
		return state[:width]
	}
	return state[:width-3] + "..."
}

package ui

import (
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/mattn/go-isatty"
)

// DefaultTermWidth is the fallback terminal width when detection fails.
const DefaultTermWidth = 100

// Terminal describes where output goes and whether an operator is present.
type Terminal struct {
	Width int
	// IsTTY is true when stdout is a terminal.
	IsTTY bool
	// Interactive is true when both stdin and stderr are terminals, so
	// prompts can be shown and answered.
	Interactive bool
}

// DetectTerminal inspects the process's standard streams.
func DetectTerminal() Terminal {
	fd := os.Stdout.Fd()
	t := Terminal{
		Width: DefaultTermWidth,
		IsTTY: term.IsTerminal(fd),
	}
	if t.IsTTY {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			t.Width = w
		}
	}
	t.Interactive = isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stderr.Fd())
	return t
}

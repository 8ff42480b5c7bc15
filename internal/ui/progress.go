package ui

import (
	"fmt"
	"io"
	"sync"
)

// Progress is a single-line counter for batch work ("Ingesting (3/12) Alice").
// It only animates on a terminal; elsewhere it stays silent so logs and
// JSON output are not interleaved with carriage returns.
type Progress struct {
	w       io.Writer
	tty     bool
	message string
	total   int

	mu      sync.Mutex
	current int
	shown   bool
}

// NewProgress creates a progress line written to w.
func NewProgress(w io.Writer, tty bool, message string, total int) *Progress {
	return &Progress{w: w, tty: tty, message: message, total: total}
}

// Update shows item as the current step.
func (p *Progress) Update(current int, item string) {
	if !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.current = current
	p.shown = true
	fmt.Fprintf(p.w, "\r\033[K%s %s %s", p.message, Muted.Render(fmt.Sprintf("(%d/%d)", current, p.total)), item)
}

// Clear erases the line, e.g. before a prompt is printed.
func (p *Progress) Clear() {
	if !p.tty {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.shown {
		fmt.Fprint(p.w, "\r\033[K")
		p.shown = false
	}
}

// Done clears the line for good.
func (p *Progress) Done() {
	p.Clear()
}

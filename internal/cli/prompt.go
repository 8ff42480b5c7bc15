package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/resolver"
	"github.com/aidanlsb/fleetdb/internal/ui"
)

// promptCorrector asks the operator to fix names the catalog did not
// resolve. Input is read by one goroutine for the life of the run so that
// an abandoned prompt (timeout, cancellation) does not leave a second
// reader racing on stdin.
type promptCorrector struct {
	out      io.Writer
	lines    <-chan string
	progress *ui.Progress
	// abandoned is set when a prompt ends without an answer; a line typed
	// after that belongs to the old prompt and is dropped.
	abandoned bool
}

func newPromptCorrector(in io.Reader, out io.Writer, progress *ui.Progress) *promptCorrector {
	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	return &promptCorrector{out: out, lines: lines, progress: progress}
}

// Correct implements ingest.Corrector. An empty answer or end of input
// declines; a number picks one of the listed candidates; anything else is a
// replacement name.
func (p *promptCorrector) Correct(ctx context.Context, req ingest.Request) (ingest.Correction, error) {
	if p.progress != nil {
		p.progress.Clear()
	}
	if p.abandoned {
		p.drain()
		p.abandoned = false
	}
	p.printRequest(req)

	select {
	case <-ctx.Done():
		p.abandoned = true
		fmt.Fprintln(p.out)
		return ingest.Correction{}, ctx.Err()
	case line, ok := <-p.lines:
		if !ok {
			return ingest.Correction{}, ingest.ErrDeclined
		}
		return parseAnswer(line, req.Candidates)
	}
}

// drain discards lines already waiting on the reader.
func (p *promptCorrector) drain() {
	for {
		select {
		case _, ok := <-p.lines:
			if !ok {
				return
			}
		default:
			return
		}
	}
}

func (p *promptCorrector) printRequest(req ingest.Request) {
	what := "unresolved"
	if req.Outcome == resolver.Ambiguous {
		what = "ambiguous"
	}
	var inputs []string
	if req.Faction != "" {
		inputs = append(inputs, req.Faction)
	}
	if req.Cost != nil {
		inputs = append(inputs, fmt.Sprintf("%d pts", *req.Cost))
	}
	detail := ""
	if len(inputs) > 0 {
		detail = " " + ui.Hint("("+strings.Join(inputs, ", ")+")")
	}

	fmt.Fprintln(p.out, ui.Warningf("%s: %s %s %s%s", ui.Accent.Render(req.Player), what, req.Kind, strconv.Quote(req.Name), detail))
	for i, c := range req.Candidates {
		fmt.Fprintf(p.out, "  %d) %s\n", i+1, c)
	}
	if req.Attempt > 0 {
		fmt.Fprintln(p.out, ui.Hint(fmt.Sprintf("  correction %d", req.Attempt+1)))
	}
	if len(req.Candidates) > 0 {
		fmt.Fprint(p.out, "  Pick a number, type a corrected name, or press enter to skip: ")
	} else {
		fmt.Fprint(p.out, "  Type a corrected name, or press enter to skip: ")
	}
}

func parseAnswer(line string, candidates []resolver.Candidate) (ingest.Correction, error) {
	answer := strings.TrimSpace(line)
	if answer == "" {
		return ingest.Correction{}, ingest.ErrDeclined
	}
	if n, err := strconv.Atoi(answer); err == nil && len(candidates) > 0 {
		if n >= 1 && n <= len(candidates) {
			return ingest.Correction{ID: candidates[n-1].ID}, nil
		}
	}
	return ingest.Correction{Name: answer}, nil
}

package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/resolver"
)

func TestPromptCorrector(t *testing.T) {
	raiders := []resolver.Candidate{
		{ID: 7, Name: "Raider-I Class Corvette", Faction: "Galactic Empire", Cost: 44},
		{ID: 8, Name: "Raider-II Class Corvette", Faction: "Galactic Empire", Cost: 48},
	}
	ambiguous := ingest.Request{
		Player: "Alice", Kind: catalog.KindShip, Name: "Raider",
		Faction: "Galactic Empire", Outcome: resolver.Ambiguous, Candidates: raiders,
	}
	unresolved := ingest.Request{Player: "Bob", Kind: catalog.KindSquadron, Name: "X-Wing"}

	tests := []struct {
		name    string
		input   string
		req     ingest.Request
		want    ingest.Correction
		wantErr error
	}{
		{"pick candidate", "2\n", ambiguous, ingest.Correction{ID: 8}, nil},
		{"number out of range is a name", "3\n", ambiguous, ingest.Correction{Name: "3"}, nil},
		{"number without candidates is a name", "42\n", unresolved, ingest.Correction{Name: "42"}, nil},
		{"replacement name", "  X-wing Squadron \n", unresolved, ingest.Correction{Name: "X-wing Squadron"}, nil},
		{"empty declines", "\n", unresolved, ingest.Correction{}, ingest.ErrDeclined},
		{"eof declines", "", unresolved, ingest.Correction{}, ingest.ErrDeclined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			p := newPromptCorrector(strings.NewReader(tt.input), &out, nil)

			got, err := p.Correct(context.Background(), tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("correction = %+v, want %+v", got, tt.want)
			}
			if !strings.Contains(out.String(), tt.req.Player) || !strings.Contains(out.String(), `"`+tt.req.Name+`"`) {
				t.Errorf("prompt does not name the player and component:\n%s", out.String())
			}
		})
	}

	t.Run("lists candidates", func(t *testing.T) {
		var out bytes.Buffer
		p := newPromptCorrector(strings.NewReader("1\n"), &out, nil)
		if _, err := p.Correct(context.Background(), ambiguous); err != nil {
			t.Fatal(err)
		}
		for _, want := range []string{"ambiguous ship", "1) Raider-I Class Corvette", "2) Raider-II Class Corvette", "Pick a number"} {
			if !strings.Contains(out.String(), want) {
				t.Errorf("prompt missing %q:\n%s", want, out.String())
			}
		}
	})

	t.Run("deadline", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		p := newPromptCorrector(pr, io.Discard, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := p.Correct(ctx, unresolved); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want deadline exceeded", err)
		}
	})

	t.Run("late answer does not reach the next prompt", func(t *testing.T) {
		pr, pw := io.Pipe()
		defer pw.Close()
		// Once armed, the next prompt is answered as soon as it is shown.
		armed := false
		out := writerFunc(func(b []byte) {
			if armed && bytes.Contains(b, []byte("press enter")) {
				armed = false
				go io.WriteString(pw, "X-wing Squadron\n")
			}
		})
		p := newPromptCorrector(pr, out, nil)

		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()
		if _, err := p.Correct(ctx, ambiguous); !errors.Is(err, context.DeadlineExceeded) {
			t.Fatalf("err = %v, want deadline exceeded", err)
		}

		// The operator answers the expired prompt.
		if _, err := io.WriteString(pw, "1\n"); err != nil {
			t.Fatal(err)
		}
		time.Sleep(20 * time.Millisecond)

		armed = true
		got, err := p.Correct(context.Background(), unresolved)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "X-wing Squadron" {
			t.Errorf("correction = %+v, want the answer typed for this prompt", got)
		}
	})
}

type writerFunc func([]byte)

func (f writerFunc) Write(b []byte) (int, error) {
	f(b)
	return len(b), nil
}

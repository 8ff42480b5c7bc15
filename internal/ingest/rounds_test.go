package ingest_test

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/store"
	"github.com/aidanlsb/fleetdb/internal/testutil"
)

func TestCleanName(t *testing.T) {
	tests := map[string]string{
		"Smith, Pat":      "Smith Pat",
		"  Pat   Smith  ": "Pat Smith",
		"Pat,Smith,Jr":    "Pat Smith Jr",
		"":                "",
		"\tAlex\n Ng ,  ": "Alex Ng",
	}
	for in, want := range tests {
		if got := ingest.CleanName(in); got != want {
			t.Errorf("CleanName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestParseRounds(t *testing.T) {
	rounds := [][]ingest.Row{
		{
			{"Alice", "300", "8", "Bob", "170", "3"},
			{"Carol", "", "Bye", ""},
			{"Player", "Points", "TP", "Opponent", "Points", "TP"},
		},
		{
			{"Alice", "140", "8", "bye", "0", "0"},
			{"Smith, Pat", " 200 ", "6", "Carol", "180", "5"},
			{"lonely cell"},
		},
	}

	scores, skipped := ingest.ParseRounds(7, rounds)
	want := []store.Score{
		{EventID: 7, Round: 1, Player: "Alice", Points: 300, TournamentPoints: 8, Opponent: "Bob"},
		{EventID: 7, Round: 1, Player: "Bob", Points: 170, TournamentPoints: 3, Opponent: "Alice"},
		{EventID: 7, Round: 1, Player: "Carol", Points: ingest.ByePoints, TournamentPoints: ingest.ByeTournamentPoints},
		{EventID: 7, Round: 2, Player: "Alice", Points: 140, TournamentPoints: 8},
		{EventID: 7, Round: 2, Player: "Smith Pat", Points: 200, TournamentPoints: 6, Opponent: "Carol"},
		{EventID: 7, Round: 2, Player: "Carol", Points: 180, TournamentPoints: 5, Opponent: "Smith Pat"},
	}
	if !reflect.DeepEqual(scores, want) {
		t.Errorf("scores =\n%+v\nwant\n%+v", scores, want)
	}
	if skipped != 2 {
		t.Errorf("skipped = %d, want 2 (header row and short row)", skipped)
	}
}

func TestParseRoundsRejectsAmbiguousBye(t *testing.T) {
	scores, skipped := ingest.ParseRounds(1, [][]ingest.Row{{{"Alice", "Bob", "bye", "0"}}})
	if len(scores) != 0 || skipped != 1 {
		t.Errorf("scores = %+v, skipped = %d", scores, skipped)
	}
}

func TestIngestRounds(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	eventID := testutil.NewEvent(t, s, "https://example.test/e/rounds")
	sess := newSession(t, s, ingest.Options{})

	rounds := [][]ingest.Row{
		{{"Alice", "300", "8", "Bob", "170", "3"}},
		{{"Bob", "bye", "", ""}},
	}
	res, err := sess.IngestRounds(ctx, eventID, rounds)
	if err != nil {
		t.Fatalf("IngestRounds: %v", err)
	}
	if res.Inserted != 3 || res.Skipped != 0 {
		t.Errorf("result = %+v", res)
	}

	loaded, err := s.LoadScores(ctx, eventID)
	if err != nil {
		t.Fatal(err)
	}
	if !loaded[2].IsBye() || loaded[2].Player != "Bob" || loaded[2].Round != 2 {
		t.Errorf("bye row = %+v", loaded[2])
	}

	t.Run("second run leaves scores alone", func(t *testing.T) {
		_, err := sess.IngestRounds(ctx, eventID, rounds)
		if !errors.Is(err, ingest.ErrScoresExist) {
			t.Errorf("err = %v, want ErrScoresExist", err)
		}
		c, _ := s.Counts(ctx, eventID)
		if c.Scores != 3 || c.Rounds != 2 {
			t.Errorf("counts = %+v", c)
		}
	})
}

package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/draft"
	"github.com/aidanlsb/fleetdb/internal/ingest"
	"github.com/aidanlsb/fleetdb/internal/resolver"
	"github.com/aidanlsb/fleetdb/internal/store"
	"github.com/aidanlsb/fleetdb/internal/testutil"
)

func ptr[T any](v T) *T { return &v }

func newSession(t *testing.T, s *store.Store, opts ingest.Options) *ingest.Session {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	sess, err := ingest.NewSession(context.Background(), s, opts)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	t.Cleanup(func() { sess.Close() })
	return sess
}

func tarkinFleet() *draft.Fleet {
	return &draft.Fleet{
		Faction: "Galactic Empire",
		Ships: []draft.Ship{
			{Name: "Victory II", BaseCost: ptr(85), Upgrades: []draft.Upgrade{
				{Name: "Grand Moff Tarkin", Cost: ptr(38)},
				{Name: "Demolisher"},
			}},
			{Name: "Gladiator I", BaseCost: ptr(56), Upgrades: []draft.Upgrade{}},
		},
		Squadrons: []draft.Squadron{
			{Name: "TIE Fighter Squadron", Cost: ptr(8), Count: 4},
			{Name: "Howlrunner", Count: 1},
		},
	}
}

func fleetCount(t *testing.T, s *store.Store, eventID int64) int {
	t.Helper()
	c, err := s.Counts(context.Background(), eventID)
	if err != nil {
		t.Fatal(err)
	}
	return c.Fleets
}

func TestNewSessionRequiresCatalog(t *testing.T) {
	_, err := ingest.NewSession(context.Background(), testutil.NewEmptyStore(t), ingest.Options{})
	if !errors.Is(err, store.ErrCatalogEmpty) {
		t.Errorf("err = %v, want ErrCatalogEmpty", err)
	}
}

func TestIngestFleet(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	eventID := testutil.NewEvent(t, s, "https://example.test/e/1")
	sess := newSession(t, s, ingest.Options{})

	res, err := sess.IngestFleet(ctx, eventID, "Smith, Pat", tarkinFleet())
	if err != nil {
		t.Fatalf("IngestFleet: %v", err)
	}
	if res.Status != ingest.StatusInserted || res.Player != "Smith Pat" {
		t.Errorf("result = %+v", res)
	}
	if res.FactionID == nil || *res.FactionID != testutil.FactionEmpire {
		t.Errorf("faction = %v", res.FactionID)
	}
	if res.Commander != "Grand Moff Tarkin" {
		t.Errorf("commander = %q, want derived Grand Moff Tarkin", res.Commander)
	}
	if res.Ships != 2 || res.Upgrades != 2 || res.Squadrons != 2 {
		t.Errorf("component counts = %+v", res)
	}

	fleets, err := s.LoadFleets(ctx, eventID)
	if err != nil {
		t.Fatal(err)
	}
	if len(fleets) != 1 {
		t.Fatalf("fleets = %d", len(fleets))
	}
	f := fleets[0]
	if f.Ships[0].ShipID != testutil.ShipVictoryII || len(f.Ships[0].Upgrades) != 2 {
		t.Errorf("first ship = %+v", f.Ships[0])
	}
	if f.Squadrons[0].SquadronID != testutil.SquadronTIE || f.Squadrons[0].Count != 4 {
		t.Errorf("squadrons = %+v", f.Squadrons)
	}

	t.Run("second ingestion is a no-op", func(t *testing.T) {
		res, err := sess.IngestFleet(ctx, eventID, "Smith,  Pat", tarkinFleet())
		if err != nil {
			t.Fatal(err)
		}
		if res.Status != ingest.StatusSkipped {
			t.Errorf("status = %s, want skipped", res.Status)
		}
		if n := fleetCount(t, s, eventID); n != 1 {
			t.Errorf("fleets = %d, want 1", n)
		}
	})
}

func TestIngestFleetFactionFromFirstShip(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	eventID := testutil.NewEvent(t, s, "https://example.test/e/2")
	sess := newSession(t, s, ingest.Options{})

	res, err := sess.IngestFleet(ctx, eventID, "Alex", &draft.Fleet{
		Commander: "General Dodonna",
		Ships: []draft.Ship{
			{Name: "CR90 Corvette A", Upgrades: []draft.Upgrade{{Name: "ECM"}}},
		},
		Squadrons: []draft.Squadron{},
	})
	if err != nil {
		t.Fatalf("IngestFleet: %v", err)
	}
	if res.FactionID == nil || *res.FactionID != testutil.FactionRebels {
		t.Errorf("faction = %v, want rebels", res.FactionID)
	}
	if res.Commander != "General Dodonna" || res.Squadrons != 0 {
		t.Errorf("result = %+v", res)
	}
}

func TestMatchFaction(t *testing.T) {
	sess := newSession(t, testutil.NewStore(t), ingest.Options{})

	tests := []struct {
		declared string
		want     *int64
	}{
		{"Galactic Empire", ptr(testutil.FactionEmpire)},
		{"EMPIRE", ptr(testutil.FactionEmpire)},
		{"Empire - Tarkin gunline", ptr(testutil.FactionEmpire)},
		{"Rebel Alliance (rebels)", ptr(testutil.FactionRebels)},
		{"Separatist Alliance", nil},
		{"", nil},
	}
	for _, tt := range tests {
		t.Run(tt.declared, func(t *testing.T) {
			got := sess.MatchFaction(tt.declared)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("got %d, want nil", *got)
			case tt.want != nil && (got == nil || *got != *tt.want):
				t.Errorf("got %v, want %d", got, *tt.want)
			}
		})
	}
}

func TestIngestFleetUnresolvedWritesNothing(t *testing.T) {
	ctx := context.Background()
	s := testutil.NewStore(t)
	eventID := testutil.NewEvent(t, s, "https://example.test/e/3")
	sess := newSession(t, s, ingest.Options{})

	f := tarkinFleet()
	f.Squadrons = append(f.Squadrons, draft.Squadron{Name: "Mystery Squadron", Count: 1})

	_, err := sess.IngestFleet(ctx, eventID, "Pat", f)
	if !errors.Is(err, ingest.ErrUnresolved) {
		t.Fatalf("err = %v, want ErrUnresolved", err)
	}
	if !errors.Is(err, ingest.ErrDeclined) {
		t.Errorf("err = %v, want the declined cause", err)
	}
	var unresolved *ingest.UnresolvedError
	if !errors.As(err, &unresolved) || unresolved.Name != "Mystery Squadron" {
		t.Errorf("err = %#v", err)
	}
	if n := fleetCount(t, s, eventID); n != 0 {
		t.Errorf("fleets = %d, want 0", n)
	}
}

func TestCorrections(t *testing.T) {
	ctx := context.Background()

	t.Run("corrected name is memoized for the run", func(t *testing.T) {
		s := testutil.NewStore(t)
		eventID := testutil.NewEvent(t, s, "https://example.test/e/4")
		calls := 0
		sess := newSession(t, s, ingest.Options{
			Corrector: ingest.CorrectorFunc(func(_ context.Context, req ingest.Request) (ingest.Correction, error) {
				calls++
				if req.Name != "Vic 2" || req.Outcome != resolver.NeedsCorrection {
					t.Errorf("request = %+v", req)
				}
				return ingest.Correction{Name: "Victory II"}, nil
			}),
		})

		for _, player := range []string{"Alice", "Bob"} {
			res, err := sess.IngestFleet(ctx, eventID, player, &draft.Fleet{
				Faction:   "empire",
				Ships:     []draft.Ship{{Name: "Vic 2", Upgrades: []draft.Upgrade{}}},
				Squadrons: []draft.Squadron{},
			})
			if err != nil || res.Status != ingest.StatusInserted {
				t.Fatalf("%s: %+v, %v", player, res, err)
			}
		}
		if calls != 1 {
			t.Errorf("corrector calls = %d, want 1", calls)
		}
	})

	t.Run("ambiguous candidate picked by id", func(t *testing.T) {
		s := testutil.NewStore(t)
		eventID := testutil.NewEvent(t, s, "https://example.test/e/5")
		sess := newSession(t, s, ingest.Options{
			Corrector: ingest.CorrectorFunc(func(_ context.Context, req ingest.Request) (ingest.Correction, error) {
				if req.Outcome != resolver.Ambiguous || len(req.Candidates) != 2 {
					t.Fatalf("request = %+v", req)
				}
				return ingest.Correction{ID: req.Candidates[1].ID}, nil
			}),
		})

		_, err := sess.IngestFleet(ctx, eventID, "Carol", &draft.Fleet{
			Faction:   "empire",
			Ships:     []draft.Ship{{Name: "Raider", Upgrades: []draft.Upgrade{}}},
			Squadrons: []draft.Squadron{},
		})
		if err != nil {
			t.Fatal(err)
		}
		fleets, _ := s.LoadFleets(ctx, eventID)
		if fleets[0].Ships[0].ShipID != testutil.ShipRaiderII {
			t.Errorf("ship = %d, want Raider-II", fleets[0].Ships[0].ShipID)
		}
	})

	t.Run("gives up after max corrections", func(t *testing.T) {
		s := testutil.NewStore(t)
		eventID := testutil.NewEvent(t, s, "https://example.test/e/6")
		calls := 0
		sess := newSession(t, s, ingest.Options{
			MaxCorrections: 2,
			Corrector: ingest.CorrectorFunc(func(context.Context, ingest.Request) (ingest.Correction, error) {
				calls++
				return ingest.Correction{Name: "still not a ship"}, nil
			}),
		})

		_, err := sess.IngestFleet(ctx, eventID, "Dana", &draft.Fleet{
			Ships:     []draft.Ship{{Name: "Star Dreadnought", Upgrades: []draft.Upgrade{}}},
			Squadrons: []draft.Squadron{},
		})
		if !errors.Is(err, ingest.ErrUnresolved) {
			t.Fatalf("err = %v", err)
		}
		if calls != 2 {
			t.Errorf("calls = %d, want 2", calls)
		}
	})

	t.Run("correction timeout fails the fleet only", func(t *testing.T) {
		s := testutil.NewStore(t)
		eventID := testutil.NewEvent(t, s, "https://example.test/e/7")
		sess := newSession(t, s, ingest.Options{
			CorrectionTimeout: 10 * time.Millisecond,
			Corrector: ingest.CorrectorFunc(func(ctx context.Context, _ ingest.Request) (ingest.Correction, error) {
				<-ctx.Done()
				return ingest.Correction{}, ctx.Err()
			}),
		})

		_, err := sess.IngestFleet(ctx, eventID, "Eve", &draft.Fleet{
			Ships:     []draft.Ship{{Name: "Star Dreadnought", Upgrades: []draft.Upgrade{}}},
			Squadrons: []draft.Squadron{},
		})
		if !errors.Is(err, ingest.ErrUnresolved) || !errors.Is(err, context.DeadlineExceeded) {
			t.Errorf("err = %v", err)
		}
	})

	t.Run("cancellation aborts", func(t *testing.T) {
		s := testutil.NewStore(t)
		eventID := testutil.NewEvent(t, s, "https://example.test/e/8")
		cctx, cancel := context.WithCancel(ctx)
		sess := newSession(t, s, ingest.Options{
			Corrector: ingest.CorrectorFunc(func(ctx context.Context, _ ingest.Request) (ingest.Correction, error) {
				cancel()
				return ingest.Correction{}, ctx.Err()
			}),
		})

		_, err := sess.IngestFleet(cctx, eventID, "Finn", &draft.Fleet{
			Ships:     []draft.Ship{{Name: "Star Dreadnought", Upgrades: []draft.Upgrade{}}},
			Squadrons: []draft.Squadron{},
		})
		if !errors.Is(err, context.Canceled) || errors.Is(err, ingest.ErrUnresolved) {
			t.Errorf("err = %v, want bare context.Canceled", err)
		}
	})
}

func TestLookup(t *testing.T) {
	ctx := context.Background()
	sess := newSession(t, testutil.NewStore(t), ingest.Options{})

	t.Run("resolved", func(t *testing.T) {
		got, err := sess.Lookup(ctx, catalog.KindShip, "Raider", "empire", ptr(48))
		if err != nil {
			t.Fatal(err)
		}
		if got.Outcome != "resolved" || got.Tier != "name+faction+cost" {
			t.Errorf("lookup = %+v", got)
		}
		if len(got.Candidates) != 1 || got.Candidates[0].ID != testutil.ShipRaiderII {
			t.Errorf("candidates = %+v", got.Candidates)
		}
	})

	t.Run("ambiguous", func(t *testing.T) {
		got, err := sess.Lookup(ctx, catalog.KindShip, "Raider", "Galactic Empire", nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.Outcome != "ambiguous" || len(got.Candidates) != 2 {
			t.Fatalf("lookup = %+v", got)
		}
		if got.Candidates[0].ID != testutil.ShipRaiderI || got.Candidates[1].ID != testutil.ShipRaiderII {
			t.Errorf("candidates = %+v", got.Candidates)
		}
	})

	t.Run("unresolved", func(t *testing.T) {
		got, err := sess.Lookup(ctx, catalog.KindSquadron, "Executor", "", nil)
		if err != nil {
			t.Fatal(err)
		}
		if got.Outcome != "needs_correction" || len(got.Candidates) != 0 || len(got.Attempted) != 1 {
			t.Errorf("lookup = %+v", got)
		}
	})
}

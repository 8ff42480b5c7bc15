// Package testutil provides catalog fixtures, seeded stores and a CLI
// harness shared by fleetdb tests.
package testutil

import (
	"context"
	"testing"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// Catalog ids used by tests across packages.
const (
	FactionEmpire int64 = 1
	FactionRebels int64 = 2

	ShipVictoryII  int64 = 1
	ShipVictoryI   int64 = 2
	ShipCR90A      int64 = 3
	ShipCR90B      int64 = 4
	ShipGladiator  int64 = 5
	ShipAFMarkIIA  int64 = 6
	ShipRaiderI    int64 = 7
	ShipRaiderII   int64 = 8
	UpgradeTarkin  int64 = 1
	UpgradeDodonna int64 = 2
	UpgradeECM     int64 = 3
	UpgradeGunnery int64 = 4
	UpgradeDemo    int64 = 5

	SquadronTIE         int64 = 1
	SquadronInterceptor int64 = 2
	SquadronHowlrunner  int64 = 3
	SquadronXWing       int64 = 4
	SquadronLuke        int64 = 5
)

// CatalogYAML is a small catalog covering both factions, every size class,
// a commander per faction and a shared "Raider" alias that is ambiguous
// without a cost.
const CatalogYAML = `
factions:
  - {id: 1, name: Galactic Empire, alias: empire}
  - {id: 2, name: Rebel Alliance, alias: rebels}

ships:
  - {id: 1, names: [Victory II-class Star Destroyer, Victory II], faction: empire, cost: 85, size: Medium}
  - {id: 2, names: [Victory I-class Star Destroyer, Victory I], faction: empire, cost: 73, size: Medium}
  - {id: 3, names: [CR90 Corvette A], faction: rebels, cost: 44, size: Small}
  - {id: 4, names: [CR90 Corvette B], faction: rebels, cost: 39, size: Small}
  - {id: 5, names: [Gladiator I-class Star Destroyer, Gladiator I], faction: empire, cost: 56, size: Small}
  - {id: 6, names: [Assault Frigate Mark II A], faction: rebels, cost: 81, size: Large}
  - {id: 7, names: [Raider-I Class Corvette, Raider], faction: empire, cost: 44, size: Small}
  - {id: 8, names: [Raider-II Class Corvette, Raider], faction: empire, cost: 48, size: Small}

upgrades:
  - {id: 1, names: [Grand Moff Tarkin, Tarkin], factions: [empire], cost: 38, slot: commander}
  - {id: 2, names: [General Dodonna], factions: [rebels], cost: 20, slot: commander}
  - {id: 3, names: [Electronic Countermeasures, ECM], factions: [empire, rebels], cost: 7, slot: defensive retrofit}
  - {id: 4, names: [Gunnery Team], factions: [empire, rebels], cost: 7, slot: weapons team}
  - {id: 5, names: [Demolisher], factions: [empire], cost: 10, slot: title}

squadrons:
  - {id: 1, names: [TIE Fighter Squadron, TIE Fighter], faction: empire, cost: 8}
  - {id: 2, names: [TIE Interceptor Squadron], faction: empire, cost: 11}
  - {id: 3, names: [Howlrunner], faction: empire, cost: 16, unique: true}
  - {id: 4, names: [X-wing Squadron], faction: rebels, cost: 13}
  - {id: 5, names: [Luke Skywalker], faction: rebels, cost: 20, unique: true}
`

// Catalog parses CatalogYAML.
func Catalog(t testing.TB) *catalog.Catalog {
	t.Helper()
	cat, err := catalog.Parse([]byte(CatalogYAML))
	if err != nil {
		t.Fatalf("failed to parse fixture catalog: %v", err)
	}
	return cat
}

// NewStore opens an in-memory store seeded with the fixture catalog. The
// store is closed when the test ends.
func NewStore(t testing.TB) *store.Store {
	t.Helper()
	s := NewEmptyStore(t)
	if _, err := s.SeedCatalog(context.Background(), Catalog(t)); err != nil {
		t.Fatalf("failed to seed fixture catalog: %v", err)
	}
	return s
}

// NewEmptyStore opens an unseeded in-memory store.
func NewEmptyStore(t testing.TB) *store.Store {
	t.Helper()
	s, err := store.OpenInMemory()
	if err != nil {
		t.Fatalf("failed to open in-memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// NewEvent stores an event with the given url and returns its id.
func NewEvent(t testing.TB, s *store.Store, url string) int64 {
	t.Helper()
	ev, _, err := s.EnsureEvent(context.Background(), store.Event{Name: "Test Open", URL: url})
	if err != nil {
		t.Fatalf("failed to create event: %v", err)
	}
	return ev.ID
}

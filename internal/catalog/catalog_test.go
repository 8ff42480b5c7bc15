package catalog

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleYAML = `
factions:
  - name: Galactic Empire
    alias: empire
  - name: Rebel Alliance
    alias: rebels
ships:
  - names: [Victory II-class Star Destroyer]
    faction: empire
    cost: 85
    size: Medium
  - id: 10
    names: [CR90 Corvette A, CR90 Corellian Corvette A]
    faction: Rebel Alliance
    cost: 44
    size: Small
upgrades:
  - names: [Grand Moff Tarkin]
    factions: [empire]
    cost: 38
    slot: Commander
  - names: ["  Electronic Countermeasures "]
    cost: 7
    slot: defensive retrofit
squadrons:
  - names: [TIE Fighter Squadron]
    faction: empire
    cost: 8
  - names: [Luke Skywalker]
    faction: rebels
    cost: 20
    unique: true
`

func TestParse(t *testing.T) {
	cat, err := Parse([]byte(sampleYAML))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	t.Run("ids assigned in file order", func(t *testing.T) {
		if cat.Factions[0].ID != 1 || cat.Factions[1].ID != 2 {
			t.Errorf("faction ids = %d, %d", cat.Factions[0].ID, cat.Factions[1].ID)
		}
		if cat.Ships[1].ID != 10 {
			t.Errorf("explicit ship id lost: %d", cat.Ships[1].ID)
		}
		if cat.Ships[0].ID != 11 {
			t.Errorf("implicit ship id = %d, want 11", cat.Ships[0].ID)
		}
	})

	t.Run("names and slots normalized", func(t *testing.T) {
		if got := cat.Upgrades[1].Names[0]; got != "Electronic Countermeasures" {
			t.Errorf("upgrade name = %q", got)
		}
		if cat.Upgrades[0].Slot != SlotCommander {
			t.Errorf("slot = %q, want %q", cat.Upgrades[0].Slot, SlotCommander)
		}
	})

	t.Run("faction lookup by alias", func(t *testing.T) {
		id, ok := cat.FactionID("REBELS")
		if !ok || id != 2 {
			t.Errorf("FactionID(REBELS) = %d, %v", id, ok)
		}
		if _, ok := cat.FactionID("separatists"); ok {
			t.Error("unexpected match for unknown faction")
		}
	})

	if !cat.Squadrons[1].Unique {
		t.Error("expected Luke Skywalker to be unique")
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{
			name: "unknown faction",
			yaml: "factions: [{name: Empire}]\nships: [{names: [X], faction: Rebels, cost: 1, size: Small}]",
			want: "unknown faction",
		},
		{
			name: "bad size",
			yaml: "factions: [{name: Empire}]\nships: [{names: [X], faction: Empire, cost: 1, size: Tiny}]",
			want: "invalid size",
		},
		{
			name: "no names",
			yaml: "factions: [{name: Empire}]\nsquadrons: [{names: [], faction: Empire, cost: 1}]",
			want: "no names",
		},
		{
			name: "duplicate id",
			yaml: "factions: [{id: 1, name: A}, {id: 1, name: B}]",
			want: "duplicate faction id",
		},
		{
			name: "no factions",
			yaml: "ships: []",
			want: "no factions",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if !errors.Is(err, ErrInvalid) {
				t.Fatalf("err = %v, want ErrInvalid", err)
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want substring %q", err, tt.want)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	if err := os.WriteFile(path, []byte(sampleYAML), 0644); err != nil {
		t.Fatal(err)
	}
	cat, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(cat.Ships) != 2 || len(cat.Squadrons) != 2 {
		t.Errorf("unexpected counts: %d ships, %d squadrons", len(cat.Ships), len(cat.Squadrons))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestParseKind(t *testing.T) {
	for in, want := range map[string]Kind{"ship": KindShip, "Upgrades": KindUpgrade, " squadron ": KindSquadron} {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Errorf("ParseKind(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseKind("objective"); err == nil {
		t.Error("expected error for unknown kind")
	}
}

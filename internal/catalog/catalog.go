// Package catalog describes the static reference data (factions, ships,
// upgrades, squadrons) that fleet components are resolved against.
package catalog

import (
	"fmt"
	"strings"
)

// Kind identifies a catalog table that names can be resolved against.
type Kind int

const (
	KindShip Kind = iota
	KindUpgrade
	KindSquadron
)

// Kinds lists every resolvable kind in a stable order.
var Kinds = []Kind{KindShip, KindUpgrade, KindSquadron}

func (k Kind) String() string {
	switch k {
	case KindShip:
		return "ship"
	case KindUpgrade:
		return "upgrade"
	case KindSquadron:
		return "squadron"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ParseKind parses "ship", "upgrade" or "squadron" (plural accepted).
func ParseKind(s string) (Kind, error) {
	switch strings.TrimSuffix(strings.ToLower(strings.TrimSpace(s)), "s") {
	case "ship":
		return KindShip, nil
	case "upgrade":
		return KindUpgrade, nil
	case "squadron":
		return KindSquadron, nil
	}
	return 0, fmt.Errorf("unknown catalog kind %q (want ship, upgrade or squadron)", s)
}

// Size is a ship's base size class.
type Size string

const (
	SizeHuge   Size = "Huge"
	SizeLarge  Size = "Large"
	SizeMedium Size = "Medium"
	SizeSmall  Size = "Small"
)

// Sizes lists size classes from largest to smallest.
var Sizes = []Size{SizeHuge, SizeLarge, SizeMedium, SizeSmall}

// Valid reports whether s is one of the four size classes.
func (s Size) Valid() bool {
	switch s {
	case SizeHuge, SizeLarge, SizeMedium, SizeSmall:
		return true
	}
	return false
}

// SlotCommander is the upgrade slot that marks a fleet's commander.
const SlotCommander = "commander"

// Faction is a playable faction.
type Faction struct {
	ID    int64  `yaml:"id"`
	Name  string `yaml:"name"`
	Alias string `yaml:"alias"`
}

// Ship is a ship class. Names holds every display name the class has been
// published under, oldest first.
type Ship struct {
	ID      int64    `yaml:"id"`
	Names   []string `yaml:"names"`
	Faction string   `yaml:"faction"`
	Cost    int      `yaml:"cost"`
	Size    Size     `yaml:"size"`
}

// Upgrade is an upgrade card. An upgrade with no factions is not matched by
// faction-filtered lookups.
type Upgrade struct {
	ID       int64    `yaml:"id"`
	Names    []string `yaml:"names"`
	Factions []string `yaml:"factions"`
	Cost     int      `yaml:"cost"`
	Slot     string   `yaml:"slot"`
}

// Squadron is a squadron card.
type Squadron struct {
	ID      int64    `yaml:"id"`
	Names   []string `yaml:"names"`
	Faction string   `yaml:"faction"`
	Cost    int      `yaml:"cost"`
	Unique  bool     `yaml:"unique"`
}

// Catalog is the full set of reference data for one game.
type Catalog struct {
	Factions  []Faction  `yaml:"factions"`
	Ships     []Ship     `yaml:"ships"`
	Upgrades  []Upgrade  `yaml:"upgrades"`
	Squadrons []Squadron `yaml:"squadrons"`
}

// FactionID looks up a faction by name or alias, case-insensitively.
func (c *Catalog) FactionID(ref string) (int64, bool) {
	ref = strings.ToLower(strings.TrimSpace(ref))
	if ref == "" {
		return 0, false
	}
	for _, f := range c.Factions {
		if strings.ToLower(f.Name) == ref || (f.Alias != "" && strings.ToLower(f.Alias) == ref) {
			return f.ID, true
		}
	}
	return 0, false
}

package draft

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Fleet-builder exports look like:
//
//	Name: Tarkin Gunline
//	Faction: Galactic Empire
//	Commander: Grand Moff Tarkin
//
//	Victory II-class Star Destroyer (85)
//	• Grand Moff Tarkin (38)
//	= 123 Points
//
//	Squadrons:
//	• 2 x TIE Fighter Squadron (16)
//	= 16 Points
//
//	Total Points: 139
var (
	costSuffix   = regexp.MustCompile(`\s*\((\d+)\)\s*$`)
	blockTotal   = regexp.MustCompile(`^=\s*(\d+)`)
	squadronMult = regexp.MustCompile(`^(\d+)\s*x\s+(.+)$`)
	headerLine   = regexp.MustCompile(`^[A-Za-z][A-Za-z ]*:`)
)

// ParseBuilderText converts a fleet-builder export into a draft tree without
// an extraction round trip. Lines that fit no pattern (objectives, blank
// headers) are ignored. The result still goes through Validate.
func ParseBuilderText(listing string) (Tree, error) {
	tree := Tree{"squadrons": []any{}}
	var ships []any
	var squadrons []any

	var ship map[string]any
	inSquadrons := false

	closeShip := func() {
		if ship != nil {
			ships = append(ships, ship)
			ship = nil
		}
	}

	for _, raw := range strings.Split(listing, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		switch {
		case hasPrefixFold(line, "Name:"):
			continue
		case hasPrefixFold(line, "Faction:"):
			tree["faction"] = strings.TrimSpace(line[len("Faction:"):])
			continue
		case hasPrefixFold(line, "Commander:"):
			tree["commander"] = strings.TrimSpace(line[len("Commander:"):])
			continue
		case hasPrefixFold(line, "Total Points:"):
			continue
		case hasPrefixFold(line, "Squadrons:"):
			closeShip()
			inSquadrons = true
			continue
		}

		if m := blockTotal.FindStringSubmatch(line); m != nil {
			if ship != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					ship["total_cost"] = n
				}
			}
			closeShip()
			inSquadrons = false
			continue
		}

		if item, ok := bulletItem(line); ok {
			name, cost := splitCost(item)
			if name == "" {
				continue
			}
			switch {
			case inSquadrons:
				squadrons = append(squadrons, squadronEntry(name, cost))
			case ship != nil:
				up := map[string]any{"name": name}
				if cost != nil {
					up["cost"] = *cost
				}
				ship["upgrades"] = append(ship["upgrades"].([]any), up)
			}
			continue
		}

		// Unrecognised "Key: value" lines are metadata such as objectives.
		if headerLine.MatchString(line) && !costSuffix.MatchString(line) {
			continue
		}

		name, cost := splitCost(line)
		if cost == nil || inSquadrons {
			continue
		}
		closeShip()
		ship = map[string]any{"name": name, "base_cost": *cost, "upgrades": []any{}}
	}
	closeShip()

	if len(ships) == 0 {
		return nil, fmt.Errorf("%w: no ships found in fleet-builder listing", ErrMalformed)
	}
	tree["ships"] = ships
	if squadrons != nil {
		tree["squadrons"] = squadrons
	}
	return tree, nil
}

func hasPrefixFold(s, prefix string) bool {
	return len(s) >= len(prefix) && strings.EqualFold(s[:len(prefix)], prefix)
}

func bulletItem(line string) (string, bool) {
	for _, b := range []string{"•", "-", "*", "·"} {
		if strings.HasPrefix(line, b) {
			return strings.TrimSpace(strings.TrimPrefix(line, b)), true
		}
	}
	return "", false
}

func splitCost(s string) (string, *int) {
	m := costSuffix.FindStringSubmatchIndex(s)
	if m == nil {
		return strings.TrimSpace(s), nil
	}
	n, err := strconv.Atoi(s[m[2]:m[3]])
	if err != nil {
		return strings.TrimSpace(s[:m[0]]), nil
	}
	return strings.TrimSpace(s[:m[0]]), &n
}

// squadronEntry handles "2 x TIE Fighter Squadron (16)", where the printed
// cost covers every copy.
func squadronEntry(name string, cost *int) map[string]any {
	entry := map[string]any{"name": name, "count": 1}
	count := 1
	if m := squadronMult.FindStringSubmatch(name); m != nil {
		if n, err := strconv.Atoi(m[1]); err == nil && n > 0 {
			count = n
			entry["name"] = strings.TrimSpace(m[2])
			entry["count"] = n
		}
	}
	if cost != nil && *cost%count == 0 {
		entry["cost"] = *cost / count
	}
	return entry
}

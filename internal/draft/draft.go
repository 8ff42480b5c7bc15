// Package draft models the loosely structured fleet lists handed over by the
// text-extraction step, validates them and converts them to typed fleets.
//
// A draft arrives as an untyped tree (decoded JSON or YAML). Validation runs
// on the tree itself so that "key absent" and "key present but empty" stay
// distinguishable: a missing squadrons key is malformed, an empty squadrons
// list is a fleet without squadrons.
package draft

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrMalformed is wrapped by every validation failure.
var ErrMalformed = errors.New("malformed draft")

// Tree is an undecoded draft: the JSON object produced by the extractor.
type Tree = map[string]any

// Fleet is a validated draft.
type Fleet struct {
	Faction   string     `json:"faction,omitempty"`
	Commander string     `json:"commander,omitempty"`
	Ships     []Ship     `json:"ships"`
	Squadrons []Squadron `json:"squadrons"`
}

// Ship is one declared ship. Costs are whatever the list printed.
type Ship struct {
	Name      string    `json:"name"`
	BaseCost  *int      `json:"base_cost,omitempty"`
	TotalCost *int      `json:"total_cost,omitempty"`
	Upgrades  []Upgrade `json:"upgrades"`
}

// Upgrade is one upgrade fitted to a declared ship.
type Upgrade struct {
	Name string `json:"name"`
	Cost *int   `json:"cost,omitempty"`
}

// Squadron is one squadron line. Count is at least 1.
type Squadron struct {
	Name  string `json:"name"`
	Cost  *int   `json:"cost,omitempty"`
	Count int    `json:"count"`
}

// Parse decodes a JSON draft.
func Parse(data []byte) (Tree, error) {
	var tree Tree
	if err := json.Unmarshal(data, &tree); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if tree == nil {
		return nil, fmt.Errorf("%w: empty draft", ErrMalformed)
	}
	return tree, nil
}

func malformed(path, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", ErrMalformed, path, fmt.Sprintf(format, args...))
}

// Validate checks the required shape: a non-empty ships list, a squadrons
// key, a name and an upgrades key on every ship, and a name on every upgrade
// and squadron. Optional numeric fields are not checked; unreadable values
// are dropped by Decode.
func Validate(tree Tree) error {
	if tree == nil {
		return fmt.Errorf("%w: empty draft", ErrMalformed)
	}

	for _, key := range []string{"faction", "commander"} {
		if v, ok := tree[key]; ok && v != nil {
			if _, isString := v.(string); !isString {
				return malformed(key, "must be a string")
			}
		}
	}

	ships, err := list(tree, "ships", "ships")
	if err != nil {
		return err
	}
	if len(ships) == 0 {
		return malformed("ships", "no ships in fleet")
	}
	for i, raw := range ships {
		path := fmt.Sprintf("ships[%d]", i)
		ship, ok := raw.(map[string]any)
		if !ok {
			return malformed(path, "must be an object")
		}
		if err := requireName(ship, path); err != nil {
			return err
		}
		upgrades, err := list(ship, "upgrades", path+".upgrades")
		if err != nil {
			return err
		}
		for j, rawUp := range upgrades {
			upPath := fmt.Sprintf("%s.upgrades[%d]", path, j)
			up, ok := rawUp.(map[string]any)
			if !ok {
				return malformed(upPath, "must be an object")
			}
			if err := requireName(up, upPath); err != nil {
				return err
			}
		}
	}

	squadrons, err := list(tree, "squadrons", "squadrons")
	if err != nil {
		return err
	}
	for i, raw := range squadrons {
		path := fmt.Sprintf("squadrons[%d]", i)
		sq, ok := raw.(map[string]any)
		if !ok {
			return malformed(path, "must be an object")
		}
		if err := requireName(sq, path); err != nil {
			return err
		}
	}
	return nil
}

// list returns obj[key] as a list. The key must be present; null counts as
// an empty list.
func list(obj map[string]any, key, path string) ([]any, error) {
	v, ok := obj[key]
	if !ok {
		return nil, malformed(path, "missing")
	}
	if v == nil {
		return nil, nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil, malformed(path, "must be a list")
	}
	return items, nil
}

func requireName(obj map[string]any, path string) error {
	name, ok := obj["name"].(string)
	if !ok || strings.TrimSpace(name) == "" {
		return malformed(path, "missing name")
	}
	return nil
}

// Decode validates tree and converts it to a Fleet.
func Decode(tree Tree) (*Fleet, error) {
	if err := Validate(tree); err != nil {
		return nil, err
	}

	f := &Fleet{
		Faction:   str(tree["faction"]),
		Commander: str(tree["commander"]),
	}

	ships, _ := tree["ships"].([]any)
	for _, raw := range ships {
		obj := raw.(map[string]any)
		ship := Ship{
			Name:      str(obj["name"]),
			BaseCost:  intPtr(obj["base_cost"]),
			TotalCost: intPtr(obj["total_cost"]),
			Upgrades:  []Upgrade{},
		}
		upgrades, _ := obj["upgrades"].([]any)
		for _, rawUp := range upgrades {
			up := rawUp.(map[string]any)
			ship.Upgrades = append(ship.Upgrades, Upgrade{
				Name: str(up["name"]),
				Cost: intPtr(up["cost"]),
			})
		}
		f.Ships = append(f.Ships, ship)
	}

	f.Squadrons = []Squadron{}
	squadrons, _ := tree["squadrons"].([]any)
	for _, raw := range squadrons {
		obj := raw.(map[string]any)
		count := 1
		if n := intPtr(obj["count"]); n != nil && *n > 0 {
			count = *n
		}
		f.Squadrons = append(f.Squadrons, Squadron{
			Name:  str(obj["name"]),
			Cost:  intPtr(obj["cost"]),
			Count: count,
		})
	}
	return f, nil
}

func str(v any) string {
	s, _ := v.(string)
	return strings.TrimSpace(s)
}

// intPtr reads an optional integer. JSON numbers arrive as float64, YAML
// numbers as int; numeric strings are accepted. Anything else is absent.
func intPtr(v any) *int {
	var n int
	switch x := v.(type) {
	case int:
		n = x
	case int64:
		n = int(x)
	case uint64:
		n = int(x)
	case float64:
		if x != math.Trunc(x) {
			return nil
		}
		n = int(x)
	case json.Number:
		i, err := x.Int64()
		if err != nil {
			return nil
		}
		n = int(i)
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(x))
		if err != nil {
			return nil
		}
		n = i
	default:
		return nil
	}
	return &n
}

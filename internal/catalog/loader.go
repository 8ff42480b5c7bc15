package catalog

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalid is wrapped by every validation failure of a catalog file.
var ErrInvalid = errors.New("invalid catalog")

// Load reads and validates a catalog seed file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file %s: %w", path, err)
	}

	cat, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog file %s: %w", path, err)
	}
	return cat, nil
}

// Parse decodes a YAML catalog, assigns missing ids in file order and
// validates cross references.
func Parse(data []byte) (*Catalog, error) {
	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	cat.normalize()
	if err := cat.Validate(); err != nil {
		return nil, err
	}
	return &cat, nil
}

func (c *Catalog) normalize() {
	var next int64
	nextID := func(cur int64, hi *int64) int64 {
		if cur != 0 {
			return cur
		}
		*hi++
		return *hi
	}

	for _, f := range c.Factions {
		next = max(next, f.ID)
	}
	for i := range c.Factions {
		c.Factions[i].Name = strings.TrimSpace(c.Factions[i].Name)
		c.Factions[i].Alias = strings.TrimSpace(c.Factions[i].Alias)
		c.Factions[i].ID = nextID(c.Factions[i].ID, &next)
	}

	next = 0
	for _, s := range c.Ships {
		next = max(next, s.ID)
	}
	for i := range c.Ships {
		c.Ships[i].Names = trimNames(c.Ships[i].Names)
		c.Ships[i].ID = nextID(c.Ships[i].ID, &next)
	}

	next = 0
	for _, u := range c.Upgrades {
		next = max(next, u.ID)
	}
	for i := range c.Upgrades {
		c.Upgrades[i].Names = trimNames(c.Upgrades[i].Names)
		c.Upgrades[i].Slot = strings.ToLower(strings.TrimSpace(c.Upgrades[i].Slot))
		c.Upgrades[i].ID = nextID(c.Upgrades[i].ID, &next)
	}

	next = 0
	for _, q := range c.Squadrons {
		next = max(next, q.ID)
	}
	for i := range c.Squadrons {
		c.Squadrons[i].Names = trimNames(c.Squadrons[i].Names)
		c.Squadrons[i].ID = nextID(c.Squadrons[i].ID, &next)
	}
}

func trimNames(names []string) []string {
	out := names[:0]
	for _, n := range names {
		if n = strings.TrimSpace(n); n != "" {
			out = append(out, n)
		}
	}
	return out
}

// Validate checks ids, names, sizes and faction references.
func (c *Catalog) Validate() error {
	var problems []string
	addf := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if len(c.Factions) == 0 {
		addf("no factions defined")
	}

	seen := make(map[int64]bool)
	for _, f := range c.Factions {
		if f.Name == "" {
			addf("faction %d has no name", f.ID)
		}
		if seen[f.ID] {
			addf("duplicate faction id %d", f.ID)
		}
		seen[f.ID] = true
	}

	checkFaction := func(what string, id int64, ref string) {
		if _, ok := c.FactionID(ref); !ok {
			addf("%s %d references unknown faction %q", what, id, ref)
		}
	}

	seen = make(map[int64]bool)
	for _, s := range c.Ships {
		if len(s.Names) == 0 {
			addf("ship %d has no names", s.ID)
		}
		if seen[s.ID] {
			addf("duplicate ship id %d", s.ID)
		}
		seen[s.ID] = true
		if !s.Size.Valid() {
			addf("ship %d has invalid size %q", s.ID, s.Size)
		}
		if s.Cost < 0 {
			addf("ship %d has negative cost", s.ID)
		}
		checkFaction("ship", s.ID, s.Faction)
	}

	seen = make(map[int64]bool)
	for _, u := range c.Upgrades {
		if len(u.Names) == 0 {
			addf("upgrade %d has no names", u.ID)
		}
		if seen[u.ID] {
			addf("duplicate upgrade id %d", u.ID)
		}
		seen[u.ID] = true
		if u.Cost < 0 {
			addf("upgrade %d has negative cost", u.ID)
		}
		for _, f := range u.Factions {
			checkFaction("upgrade", u.ID, f)
		}
	}

	seen = make(map[int64]bool)
	for _, q := range c.Squadrons {
		if len(q.Names) == 0 {
			addf("squadron %d has no names", q.ID)
		}
		if seen[q.ID] {
			addf("duplicate squadron id %d", q.ID)
		}
		seen[q.ID] = true
		if q.Cost < 0 {
			addf("squadron %d has negative cost", q.ID)
		}
		checkFaction("squadron", q.ID, q.Faction)
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

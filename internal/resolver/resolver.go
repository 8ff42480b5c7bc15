// Package resolver maps free-text component names onto catalog ids through a
// fixed cascade of progressively less specific lookups.
package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/catalog"
)

// Tier is one step of the lookup cascade.
type Tier int

const (
	TierNameFactionCost Tier = iota
	TierNameFaction
	TierNameCost
	TierName
	TierFactionCost

	tierCount
)

// Tiers lists the cascade in the order it runs.
var Tiers = [tierCount]Tier{TierNameFactionCost, TierNameFaction, TierNameCost, TierName, TierFactionCost}

func (t Tier) String() string {
	switch t {
	case TierNameFactionCost:
		return "name+faction+cost"
	case TierNameFaction:
		return "name+faction"
	case TierNameCost:
		return "name+cost"
	case TierName:
		return "name"
	case TierFactionCost:
		return "faction+cost"
	default:
		return fmt.Sprintf("tier(%d)", int(t))
	}
}

func (t Tier) usesName() bool    { return t != TierFactionCost }
func (t Tier) usesFaction() bool { return t == TierNameFactionCost || t == TierNameFaction || t == TierFactionCost }
func (t Tier) usesCost() bool    { return t == TierNameFactionCost || t == TierNameCost || t == TierFactionCost }

// applies reports whether q carries every input the tier needs.
func (t Tier) applies(q Query) bool {
	if t.usesName() && q.name() == "" {
		return false
	}
	if t.usesFaction() && q.FactionID == nil {
		return false
	}
	if t.usesCost() && q.Cost == nil {
		return false
	}
	return true
}

func (t Tier) args(q Query) []any {
	var args []any
	if t.usesName() {
		args = append(args, q.name())
	}
	if t.usesFaction() {
		args = append(args, *q.FactionID)
	}
	if t.usesCost() {
		args = append(args, *q.Cost)
	}
	return args
}

// Query is one lookup request. FactionID and Cost are optional.
type Query struct {
	Kind      catalog.Kind
	Name      string
	FactionID *int64
	Cost      *int
}

func (q Query) name() string {
	return strings.TrimSpace(q.Name)
}

// Outcome classifies a resolution.
type Outcome int

const (
	// Resolved means exactly one catalog row matched.
	Resolved Outcome = iota
	// NeedsCorrection means no tier matched anything.
	NeedsCorrection
	// Ambiguous means no tier was unique but at least one matched several rows.
	Ambiguous
)

func (o Outcome) String() string {
	switch o {
	case Resolved:
		return "resolved"
	case NeedsCorrection:
		return "needs_correction"
	case Ambiguous:
		return "ambiguous"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the typed outcome of Resolve.
type Result struct {
	Outcome Outcome
	// ID is set when Outcome is Resolved.
	ID int64
	// Candidates holds the ids of the most specific ambiguous tier, ascending.
	Candidates []int64
	// Tier is the tier that resolved the query, or that produced Candidates.
	Tier Tier
	// Attempted lists every tier that ran, in order.
	Attempted []Tier
}

// Resolver runs the cascade against prepared catalog queries. It performs
// no I/O beyond those queries; correcting names is the caller's job.
type Resolver struct {
	lookups  [3][tierCount]*sql.Stmt
	describe [3]*sql.Stmt
	log      *zap.Logger
}

type kindTables struct {
	table   string
	names   string
	fk      string
	faction string
}

var tablesByKind = [3]kindTables{
	catalog.KindShip: {
		table:   "Ships",
		names:   "ShipNames",
		fk:      "ship_id",
		faction: "c.faction_id = ?",
	},
	catalog.KindUpgrade: {
		table:   "Upgrades",
		names:   "UpgradeNames",
		fk:      "upgrade_id",
		faction: "EXISTS (SELECT 1 FROM Upgrades_Factions AS uf WHERE uf.upgrade_id = c.id AND uf.faction_id = ?)",
	},
	catalog.KindSquadron: {
		table:   "Squadrons",
		names:   "SquadronNames",
		fk:      "squadron_id",
		faction: "c.faction_id = ?",
	},
}

// lookupSQL builds the statement for one {kind x tier} cell. Placeholders
// follow the order name, faction, cost to match Tier.args.
func lookupSQL(kt kindTables, t Tier) string {
	var b strings.Builder
	var conds []string

	if t.usesName() {
		fmt.Fprintf(&b, "SELECT DISTINCT c.id FROM %s AS c JOIN %s AS n ON n.%s = c.id", kt.table, kt.names, kt.fk)
		conds = append(conds, "n.name = ? COLLATE NOCASE")
	} else {
		fmt.Fprintf(&b, "SELECT c.id FROM %s AS c", kt.table)
	}
	if t.usesFaction() {
		conds = append(conds, kt.faction)
	}
	if t.usesCost() {
		conds = append(conds, "c.cost = ?")
	}
	b.WriteString(" WHERE ")
	b.WriteString(strings.Join(conds, " AND "))
	b.WriteString(" ORDER BY c.id")
	return b.String()
}

var describeSQL = [3]string{
	catalog.KindShip: `
		SELECT c.id, (SELECT MAX(name) FROM ShipNames WHERE ship_id = c.id), f.name, c.cost
		FROM Ships AS c JOIN Factions AS f ON f.id = c.faction_id
		WHERE c.id = ?`,
	catalog.KindUpgrade: `
		SELECT c.id, (SELECT MIN(name) FROM UpgradeNames WHERE upgrade_id = c.id),
			COALESCE((SELECT GROUP_CONCAT(f.name, ', ') FROM Upgrades_Factions AS uf
				JOIN Factions AS f ON f.id = uf.faction_id WHERE uf.upgrade_id = c.id), ''),
			c.cost
		FROM Upgrades AS c
		WHERE c.id = ?`,
	catalog.KindSquadron: `
		SELECT c.id, (SELECT MAX(name) FROM SquadronNames WHERE squadron_id = c.id), f.name, c.cost
		FROM Squadrons AS c JOIN Factions AS f ON f.id = c.faction_id
		WHERE c.id = ?`,
}

// New prepares every lookup statement up front.
func New(ctx context.Context, db *sql.DB, log *zap.Logger) (*Resolver, error) {
	if log == nil {
		log = zap.NewNop()
	}
	r := &Resolver{log: log}

	for _, kind := range catalog.Kinds {
		for _, tier := range Tiers {
			stmt, err := db.PrepareContext(ctx, lookupSQL(tablesByKind[kind], tier))
			if err != nil {
				r.Close()
				return nil, fmt.Errorf("prepare %s %s lookup: %w", kind, tier, err)
			}
			r.lookups[kind][tier] = stmt
		}
		stmt, err := db.PrepareContext(ctx, describeSQL[kind])
		if err != nil {
			r.Close()
			return nil, fmt.Errorf("prepare %s describe: %w", kind, err)
		}
		r.describe[kind] = stmt
	}
	return r, nil
}

// Close releases the prepared statements.
func (r *Resolver) Close() error {
	for _, row := range r.lookups {
		for _, stmt := range row {
			if stmt != nil {
				stmt.Close()
			}
		}
	}
	for _, stmt := range r.describe {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}

func validKind(k catalog.Kind) bool {
	return k >= catalog.KindShip && k <= catalog.KindSquadron
}

// Resolve runs the cascade for q. Tiers whose inputs are missing are
// skipped; the first tier with exactly one match wins. When no tier is
// unique, the candidates of the first tier that matched several rows are
// returned as Ambiguous, otherwise the result is NeedsCorrection.
func (r *Resolver) Resolve(ctx context.Context, q Query) Result {
	var res Result
	if !validKind(q.Kind) {
		r.log.Warn("unsupported catalog kind", zap.Stringer("kind", q.Kind))
		res.Outcome = NeedsCorrection
		return res
	}

	var ambiguous []int64
	ambiguousTier := TierName

	for _, tier := range Tiers {
		if !tier.applies(q) {
			continue
		}
		res.Attempted = append(res.Attempted, tier)

		ids, err := r.lookup(ctx, q.Kind, tier, q)
		if err != nil {
			// A failed query counts as no rows for this tier.
			r.log.Warn("catalog lookup failed",
				zap.Stringer("kind", q.Kind),
				zap.Stringer("tier", tier),
				zap.String("name", q.name()),
				zap.Error(err))
			continue
		}

		switch {
		case len(ids) == 1:
			res.Outcome = Resolved
			res.ID = ids[0]
			res.Tier = tier
			return res
		case len(ids) > 1 && ambiguous == nil:
			ambiguous = ids
			ambiguousTier = tier
		}
	}

	if ambiguous != nil {
		res.Outcome = Ambiguous
		res.Candidates = ambiguous
		res.Tier = ambiguousTier
		return res
	}
	res.Outcome = NeedsCorrection
	return res
}

func (r *Resolver) lookup(ctx context.Context, kind catalog.Kind, tier Tier, q Query) ([]int64, error) {
	rows, err := r.lookups[kind][tier].QueryContext(ctx, tier.args(q)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// Candidate is a catalog row shown to an operator choosing between matches.
type Candidate struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Faction string `json:"faction"`
	Cost    int    `json:"cost"`
}

func (c Candidate) String() string {
	if c.Faction == "" {
		return fmt.Sprintf("%s (%d)", c.Name, c.Cost)
	}
	return fmt.Sprintf("%s (%s, %d)", c.Name, c.Faction, c.Cost)
}

// Describe returns display details for ids, in the order given. Unknown ids
// are skipped.
func (r *Resolver) Describe(ctx context.Context, kind catalog.Kind, ids []int64) ([]Candidate, error) {
	if !validKind(kind) {
		return nil, fmt.Errorf("unsupported catalog kind %s", kind)
	}
	out := make([]Candidate, 0, len(ids))
	for _, id := range ids {
		var c Candidate
		err := r.describe[kind].QueryRowContext(ctx, id).Scan(&c.ID, &c.Name, &c.Faction, &c.Cost)
		if errors.Is(err, sql.ErrNoRows) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("describe %s %d: %w", kind, id, err)
		}
		out = append(out, c)
	}
	return out, nil
}

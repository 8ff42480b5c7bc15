package ingest

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/draft"
	"github.com/aidanlsb/fleetdb/internal/resolver"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// Status is the outcome of ingesting one fleet.
type Status string

const (
	StatusInserted   Status = "inserted"
	StatusSkipped    Status = "skipped"
	StatusMalformed  Status = "malformed"
	StatusUnresolved Status = "unresolved"
	StatusAmbiguous  Status = "ambiguous"
	StatusFailed     Status = "failed"
)

// FleetResult describes a fleet that was inserted or skipped.
type FleetResult struct {
	Status    Status `json:"status"`
	FleetID   int64  `json:"fleet_id,omitempty"`
	Player    string `json:"player"`
	FactionID *int64 `json:"faction_id,omitempty"`
	Commander string `json:"commander,omitempty"`
	Ships     int    `json:"ships"`
	Upgrades  int    `json:"upgrades"`
	Squadrons int    `json:"squadrons"`
}

// IngestFleet resolves every component of f and commits the fleet.
//
// A fleet already stored for (eventID, player) is skipped without touching
// the resolver. Every reference is resolved before the write transaction
// opens; if any component stays unresolved nothing is written and the
// returned error wraps ErrUnresolved or ErrAmbiguous. Commit failures wrap
// ErrTransaction.
func (s *Session) IngestFleet(ctx context.Context, eventID int64, player string, f *draft.Fleet) (FleetResult, error) {
	player = CleanName(player)
	result := FleetResult{Player: player}
	if player == "" {
		return result, fmt.Errorf("%w: fleet has no player name", draft.ErrMalformed)
	}

	exists, err := s.store.FleetExists(ctx, eventID, player)
	if err != nil {
		return result, fmt.Errorf("check existing fleet: %w", err)
	}
	if exists {
		s.log.Info("fleet already ingested", zap.Int64("event_id", eventID), zap.String("player", player))
		result.Status = StatusSkipped
		return result, nil
	}

	factionID := s.MatchFaction(f.Faction)
	rec := store.FleetRecord{
		EventID:   eventID,
		Player:    player,
		Commander: f.Commander,
		Ships:     make([]store.ShipRecord, len(f.Ships)),
	}

	for i, ship := range f.Ships {
		id, err := s.resolve(ctx, player, resolver.Query{
			Kind:      catalog.KindShip,
			Name:      ship.Name,
			FactionID: factionID,
			Cost:      ship.BaseCost,
		})
		if err != nil {
			return result, err
		}
		rec.Ships[i].ShipID = id

		// The first resolved ship settles the faction when the draft's
		// declaration matched nothing.
		if factionID == nil {
			fid, err := s.store.ShipFaction(ctx, id)
			if err != nil {
				return result, fmt.Errorf("ship faction: %w", err)
			}
			factionID = &fid
			s.log.Debug("faction taken from ship", zap.String("player", player), zap.Int64("faction_id", fid))
		}
	}

	var upgradeIDs []int64
	for i, ship := range f.Ships {
		for _, up := range ship.Upgrades {
			id, err := s.resolve(ctx, player, resolver.Query{
				Kind:      catalog.KindUpgrade,
				Name:      up.Name,
				FactionID: factionID,
				Cost:      up.Cost,
			})
			if err != nil {
				return result, err
			}
			rec.Ships[i].UpgradeIDs = append(rec.Ships[i].UpgradeIDs, id)
			upgradeIDs = append(upgradeIDs, id)
		}
	}

	for _, sq := range f.Squadrons {
		id, err := s.resolve(ctx, player, resolver.Query{
			Kind:      catalog.KindSquadron,
			Name:      sq.Name,
			FactionID: factionID,
			Cost:      sq.Cost,
		})
		if err != nil {
			return result, err
		}
		rec.Squadrons = append(rec.Squadrons, store.SquadronRecord{SquadronID: id, Count: sq.Count})
	}
	rec.FactionID = factionID

	if rec.Commander == "" && len(upgradeIDs) > 0 {
		names, err := s.store.CommanderNames(ctx, upgradeIDs)
		if err != nil {
			return result, fmt.Errorf("derive commander: %w", err)
		}
		if len(names) == 1 {
			rec.Commander = names[0]
		}
	}

	fleetID, err := s.store.InsertFleet(ctx, rec)
	if err != nil {
		return result, fmt.Errorf("%w: %s: %w", ErrTransaction, player, err)
	}

	s.log.Info("fleet ingested",
		zap.Int64("event_id", eventID),
		zap.String("player", player),
		zap.Int64("fleet_id", fleetID),
		zap.Int("ships", len(rec.Ships)),
		zap.Int("squadrons", len(rec.Squadrons)))

	result.Status = StatusInserted
	result.FleetID = fleetID
	result.FactionID = factionID
	result.Commander = rec.Commander
	result.Ships = len(rec.Ships)
	result.Upgrades = len(upgradeIDs)
	result.Squadrons = len(rec.Squadrons)
	return result, nil
}

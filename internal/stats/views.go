package stats

import (
	"context"
	"fmt"

	"github.com/aidanlsb/fleetdb/internal/store"
)

// Views holds every derived view for one event, or for all events.
type Views struct {
	Fleets    []FleetSummary    `json:"fleets"`
	Ships     []ShipSummary     `json:"ships"`
	Squadrons []SquadronSummary `json:"squadrons"`
	Players   []Performance     `json:"players"`
}

// Compute loads committed fleets and scores and derives all views. A zero
// eventID covers every event.
func Compute(ctx context.Context, st *store.Store, eventID int64) (*Views, error) {
	fleets, err := st.LoadFleets(ctx, eventID)
	if err != nil {
		return nil, err
	}
	scores, err := st.LoadScores(ctx, eventID)
	if err != nil {
		return nil, fmt.Errorf("load scores: %w", err)
	}

	players := PlayerPerformances(scores)
	return &Views{
		Fleets:    FleetSummaries(fleets, players),
		Ships:     ShipSummaries(fleets),
		Squadrons: SquadronSummaries(fleets),
		Players:   players,
	}, nil
}

// Standing is one line of an event's final standings.
type Standing struct {
	Rank int `json:"rank"`
	Performance
	Faction   string `json:"faction,omitempty"`
	Commander string `json:"commander,omitempty"`
	Bid       *int   `json:"bid,omitempty"`
}

// Standings ranks the players of one event by TP then MoV, attaching fleet
// details where the player's fleet was ingested. Players tied on both share
// a rank.
func (v *Views) Standings(eventID int64) []Standing {
	fleets := make(map[string]FleetSummary)
	for _, f := range v.Fleets {
		if f.EventID == eventID {
			fleets[f.Player] = f
		}
	}

	var out []Standing
	for _, p := range v.Players {
		if p.EventID != eventID {
			continue
		}
		s := Standing{Performance: p, Rank: len(out) + 1}
		if n := len(out); n > 0 && out[n-1].TP == p.TP && out[n-1].MoV == p.MoV {
			s.Rank = out[n-1].Rank
		}
		if f, ok := fleets[p.Player]; ok {
			bid := f.Bid
			s.Faction, s.Commander, s.Bid = f.Faction, f.Commander, &bid
		}
		out = append(out, s)
	}
	return out
}

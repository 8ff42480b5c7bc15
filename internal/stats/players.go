// Package stats derives read-only summaries from committed fleets and
// scores. Every function here is a pure function of its inputs; nothing is
// rounded, cached or written back.
package stats

import (
	"sort"

	"github.com/aidanlsb/fleetdb/internal/store"
)

// ByeMargin is the margin of victory credited for a bye.
const ByeMargin = 140

// Performance is one player's aggregate over one event.
type Performance struct {
	EventID int64   `json:"event_id"`
	Player  string  `json:"player"`
	Rounds  int     `json:"rounds"`
	Byes    int     `json:"byes"`
	TP      int     `json:"tp"`
	MoV     int     `json:"mov"`
	AvgTP   float64 `json:"avg_tp"`
	// Variance is the sample variance of per-round TP; nil below two rounds.
	Variance *float64 `json:"variance"`
	// SoS is the mean AvgTP of the player's distinct opponents; nil when
	// the player only had byes.
	SoS *float64 `json:"sos"`
}

type playerKey struct {
	event  int64
	player string
}

type roundKey struct {
	event  int64
	round  int
	player string
}

// PlayerPerformances computes TP, MoV, average TP, variance and strength of
// schedule per (event, player). Opponent points are read from the
// opponent's own row for the same round; a missing row counts as a zero
// margin. Results are ordered by event, then TP, MoV and name.
func PlayerPerformances(scores []store.Score) []Performance {
	points := make(map[roundKey]int, len(scores))
	for _, sc := range scores {
		points[roundKey{sc.EventID, sc.Round, sc.Player}] = sc.Points
	}

	// First pass: per-player totals.
	perf := make(map[playerKey]*Performance)
	perRound := make(map[playerKey][]int)
	// Distinct opponents in first-seen order, so the SoS sum is reproducible.
	opponents := make(map[playerKey][]string)
	seen := make(map[playerKey]map[string]bool)
	var order []playerKey

	for _, sc := range scores {
		key := playerKey{sc.EventID, sc.Player}
		p, ok := perf[key]
		if !ok {
			p = &Performance{EventID: sc.EventID, Player: sc.Player}
			perf[key] = p
			seen[key] = make(map[string]bool)
			order = append(order, key)
		}
		p.Rounds++
		p.TP += sc.TournamentPoints
		perRound[key] = append(perRound[key], sc.TournamentPoints)

		if sc.IsBye() {
			p.Byes++
			p.MoV += ByeMargin
			continue
		}
		if !seen[key][sc.Opponent] {
			seen[key][sc.Opponent] = true
			opponents[key] = append(opponents[key], sc.Opponent)
		}
		if opp, ok := points[roundKey{sc.EventID, sc.Round, sc.Opponent}]; ok && sc.Points > opp {
			p.MoV += sc.Points - opp
		}
	}

	for _, key := range order {
		p := perf[key]
		p.AvgTP = float64(p.TP) / float64(p.Rounds)
		p.Variance = sampleVariance(perRound[key], p.AvgTP)
	}

	// Second pass: strength of schedule from the opponents' own averages.
	for _, key := range order {
		var sum float64
		n := 0
		for _, opp := range opponents[key] {
			o, ok := perf[playerKey{key.event, opp}]
			if !ok {
				continue
			}
			sum += o.AvgTP
			n++
		}
		if n > 0 {
			sos := sum / float64(n)
			perf[key].SoS = &sos
		}
	}

	out := make([]Performance, 0, len(order))
	for _, key := range order {
		out = append(out, *perf[key])
	}
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.EventID != b.EventID {
			return a.EventID < b.EventID
		}
		if a.TP != b.TP {
			return a.TP > b.TP
		}
		if a.MoV != b.MoV {
			return a.MoV > b.MoV
		}
		return a.Player < b.Player
	})
	return out
}

func sampleVariance(values []int, mean float64) *float64 {
	if len(values) < 2 {
		return nil
	}
	var ss float64
	for _, v := range values {
		d := float64(v) - mean
		ss += d * d
	}
	v := ss / float64(len(values)-1)
	return &v
}

package ingest

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/draft"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// EventOptions selects which parts of a bundle to ingest.
type EventOptions struct {
	SkipFleets bool
	SkipScores bool
	// OnFleet, if set, is called before each fleet with its 1-based
	// position.
	OnFleet func(n, total int, player string)
}

// FleetOutcome is the per-fleet line of a Report.
type FleetOutcome struct {
	Player  string `json:"player"`
	Status  Status `json:"status"`
	FleetID int64  `json:"fleet_id,omitempty"`
	Error   string `json:"error,omitempty"`
	Archive string `json:"archive,omitempty"`
}

// Report summarises one IngestEvent run.
type Report struct {
	RunID        string         `json:"run_id"`
	Event        store.Event    `json:"event"`
	EventCreated bool           `json:"event_created"`
	Fleets       []FleetOutcome `json:"fleets"`
	Inserted     int            `json:"inserted"`
	Skipped      int            `json:"skipped"`
	Failed       int            `json:"failed"`
	Scores       RoundsResult   `json:"scores"`
	// ScoresExisted is set when the event already had scores.
	ScoresExisted bool `json:"scores_existed,omitempty"`
}

// IngestEvent ingests a bundle: it ensures the event row, then each fleet in
// order, then the rounds. A fleet that fails is recorded (and archived when
// its draft is at fault) and the batch moves on. Only cancellation or a
// store failure outside a fleet aborts the run; the partial report is
// returned alongside the error.
func (s *Session) IngestEvent(ctx context.Context, b *Bundle, opts EventOptions) (*Report, error) {
	rep := &Report{RunID: s.RunID, Fleets: []FleetOutcome{}}

	ev, created, err := s.store.EnsureEvent(ctx, b.Event.Store())
	if err != nil {
		return rep, fmt.Errorf("ensure event: %w", err)
	}
	rep.Event, rep.EventCreated = ev, created
	log := s.log.With(zap.Int64("event_id", ev.ID), zap.String("event", ev.Name))
	log.Info("event ready", zap.Bool("created", created), zap.Int("fleets", len(b.Fleets)), zap.Int("rounds", len(b.Rounds)))

	if !opts.SkipFleets {
		for i, entry := range b.Fleets {
			if err := ctx.Err(); err != nil {
				return rep, err
			}
			log.Info("ingesting fleet", zap.Int("n", i+1), zap.Int("of", len(b.Fleets)), zap.String("player", entry.Player))
			if opts.OnFleet != nil {
				opts.OnFleet(i+1, len(b.Fleets), entry.Player)
			}

			out, err := s.ingestEntry(ctx, ev, entry)
			if err != nil {
				return rep, err
			}
			rep.Fleets = append(rep.Fleets, out)
			switch out.Status {
			case StatusInserted:
				rep.Inserted++
			case StatusSkipped:
				rep.Skipped++
			default:
				rep.Failed++
			}
		}
	}

	if !opts.SkipScores && len(b.Rounds) > 0 {
		res, err := s.IngestRounds(ctx, ev.ID, b.Rounds)
		switch {
		case errors.Is(err, ErrScoresExist):
			log.Info("scores already ingested")
			rep.ScoresExisted = true
		case err != nil:
			return rep, err
		default:
			rep.Scores = res
		}
	}

	log.Info("event ingested",
		zap.Int("inserted", rep.Inserted),
		zap.Int("skipped", rep.Skipped),
		zap.Int("failed", rep.Failed),
		zap.Int("scores", rep.Scores.Inserted))
	return rep, nil
}

// ingestEntry handles one fleet. The returned error is non-nil only when the
// whole batch must stop.
func (s *Session) ingestEntry(ctx context.Context, ev store.Event, entry FleetEntry) (FleetOutcome, error) {
	out := FleetOutcome{Player: entry.Player}

	tree, err := entry.Tree()
	var fleet *draft.Fleet
	if err == nil {
		fleet, err = draft.Decode(tree)
	}
	if err == nil {
		var res FleetResult
		res, err = s.IngestFleet(ctx, ev.ID, entry.Player, fleet)
		if err == nil {
			out.Status = res.Status
			out.FleetID = res.FleetID
			return out, nil
		}
		if ctx.Err() != nil {
			return out, ctx.Err()
		}
	}

	switch {
	case errors.Is(err, ErrAmbiguous):
		out.Status = StatusAmbiguous
		out.Archive = s.archive(ev, entry, tree, err)
	case errors.Is(err, ErrUnresolved):
		out.Status = StatusUnresolved
		out.Archive = s.archive(ev, entry, tree, err)
	case errors.Is(err, draft.ErrMalformed):
		out.Status = StatusMalformed
		out.Archive = s.archive(ev, entry, tree, err)
	default:
		out.Status = StatusFailed
	}
	out.Error = err.Error()
	s.log.Warn("fleet not ingested",
		zap.Int64("event_id", ev.ID),
		zap.String("player", entry.Player),
		zap.String("status", string(out.Status)),
		zap.Error(err))
	return out, nil
}

// archive keeps a rejected draft for later repair. Archive failures are
// logged; they never fail the batch.
func (s *Session) archive(ev store.Event, entry FleetEntry, tree draft.Tree, reason error) string {
	if s.archiveDir == "" {
		return ""
	}
	raw := entry.Raw
	if raw == "" {
		raw = entry.Text
	}
	path, err := draft.Archive(s.archiveDir, draft.Archived{
		EventID: ev.ID,
		Event:   ev.Name,
		Player:  entry.Player,
		Reason:  reason.Error(),
		Draft:   tree,
		Raw:     raw,
	})
	if err != nil {
		s.log.Error("archive draft failed", zap.String("player", entry.Player), zap.Error(err))
		return ""
	}
	return path
}

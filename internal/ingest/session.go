// Package ingest turns draft fleets and round results into committed rows.
//
// A Session is the explicit context of one ingestion run: the store, the
// prepared resolver, the faction table, the operator corrector and the
// per-run memo of corrections. It is built by the caller and closed when the
// run ends; nothing is kept in package state.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/aidanlsb/fleetdb/internal/catalog"
	"github.com/aidanlsb/fleetdb/internal/resolver"
	"github.com/aidanlsb/fleetdb/internal/store"
)

var (
	// ErrUnresolved is wrapped by UnresolvedError.
	ErrUnresolved = errors.New("unresolved reference")
	// ErrAmbiguous is wrapped by AmbiguousError.
	ErrAmbiguous = errors.New("ambiguous reference")
	// ErrTransaction marks a fleet whose commit failed and was rolled back.
	ErrTransaction = errors.New("fleet transaction failed")
	// ErrDeclined is returned by a Corrector that will not supply a name.
	ErrDeclined = errors.New("correction declined")
	// ErrScoresExist is returned when an event already has score rows.
	ErrScoresExist = errors.New("event already has scores")
)

// Request describes a component the cascade could not pin down.
type Request struct {
	Player     string
	Kind       catalog.Kind
	Name       string
	Faction    string
	FactionID  *int64
	Cost       *int
	Outcome    resolver.Outcome
	Candidates []resolver.Candidate
	Attempted  []resolver.Tier
	// Attempt counts corrections already made for this component.
	Attempt int
}

// Correction is an operator's answer: a replacement name to run through the
// cascade again, or the id of one of the offered candidates.
type Correction struct {
	Name string
	ID   int64
}

// Corrector supplies corrections. Implementations may block on operator
// input; they must honour ctx cancellation and deadlines.
type Corrector interface {
	Correct(ctx context.Context, req Request) (Correction, error)
}

// CorrectorFunc adapts a function to Corrector.
type CorrectorFunc func(ctx context.Context, req Request) (Correction, error)

// Correct implements Corrector.
func (f CorrectorFunc) Correct(ctx context.Context, req Request) (Correction, error) {
	return f(ctx, req)
}

// Decline is a Corrector for unattended runs: every request is declined, so
// unresolved fleets are reported and archived instead of blocking.
var Decline Corrector = CorrectorFunc(func(context.Context, Request) (Correction, error) {
	return Correction{}, ErrDeclined
})

// UnresolvedError reports a component no tier matched.
type UnresolvedError struct {
	Kind      catalog.Kind
	Name      string
	FactionID *int64
	Cost      *int
	Attempted []resolver.Tier
	Cause     error
}

func (e *UnresolvedError) Error() string {
	return fmt.Sprintf("unresolved %s %q%s", e.Kind, e.Name, describeInputs(e.FactionID, e.Cost))
}

// Unwrap exposes ErrUnresolved and the corrector's error.
func (e *UnresolvedError) Unwrap() []error {
	return []error{ErrUnresolved, e.Cause}
}

// AmbiguousError reports a component that matched several catalog rows.
type AmbiguousError struct {
	Kind       catalog.Kind
	Name       string
	FactionID  *int64
	Cost       *int
	Candidates []resolver.Candidate
	Cause      error
}

func (e *AmbiguousError) Error() string {
	names := make([]string, len(e.Candidates))
	for i, c := range e.Candidates {
		names[i] = c.String()
	}
	return fmt.Sprintf("ambiguous %s %q%s: %s", e.Kind, e.Name, describeInputs(e.FactionID, e.Cost), strings.Join(names, "; "))
}

// Unwrap exposes ErrAmbiguous and the corrector's error.
func (e *AmbiguousError) Unwrap() []error {
	return []error{ErrAmbiguous, e.Cause}
}

func describeInputs(factionID *int64, cost *int) string {
	var parts []string
	if factionID != nil {
		parts = append(parts, fmt.Sprintf("faction %d", *factionID))
	}
	if cost != nil {
		parts = append(parts, fmt.Sprintf("cost %d", *cost))
	}
	if len(parts) == 0 {
		return ""
	}
	return " (" + strings.Join(parts, ", ") + ")"
}

// Options configures a Session.
type Options struct {
	// ArchiveDir receives drafts that could not be ingested.
	ArchiveDir string
	// MaxCorrections bounds corrections per component. Zero means 3.
	MaxCorrections int
	// CorrectionTimeout bounds each Corrector call. Zero waits indefinitely.
	CorrectionTimeout time.Duration
	// Corrector answers unresolved and ambiguous lookups. Nil means Decline.
	Corrector Corrector
	Logger    *zap.Logger
}

type memoKey struct {
	kind catalog.Kind
	name string
}

// Session is one ingestion run.
type Session struct {
	RunID string

	store     *store.Store
	resolver  *resolver.Resolver
	factions  []catalog.Faction
	corrector Corrector
	log       *zap.Logger

	archiveDir     string
	maxCorrections int
	timeout        time.Duration

	// corrections made by the operator, reused for the rest of the run
	memo map[memoKey]string
}

// NewSession prepares the resolver and loads the faction table.
func NewSession(ctx context.Context, st *store.Store, opts Options) (*Session, error) {
	if err := st.RequireCatalog(ctx); err != nil {
		return nil, err
	}

	runID := uuid.New().String()
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", runID))

	res, err := resolver.New(ctx, st.DB(), log)
	if err != nil {
		return nil, err
	}
	factions, err := st.Factions(ctx)
	if err != nil {
		res.Close()
		return nil, fmt.Errorf("load factions: %w", err)
	}

	s := &Session{
		RunID:          runID,
		store:          st,
		resolver:       res,
		factions:       factions,
		corrector:      opts.Corrector,
		log:            log,
		archiveDir:     opts.ArchiveDir,
		maxCorrections: opts.MaxCorrections,
		timeout:        opts.CorrectionTimeout,
		memo:           make(map[memoKey]string),
	}
	if s.corrector == nil {
		s.corrector = Decline
	}
	if s.maxCorrections <= 0 {
		s.maxCorrections = 3
	}
	return s, nil
}

// Close releases the resolver's statements. The store stays open.
func (s *Session) Close() error {
	return s.resolver.Close()
}

// MatchFaction maps a declared faction string to a faction id. The whole
// string is tried first, then each word, against names and aliases; the
// first hit wins.
func (s *Session) MatchFaction(declared string) *int64 {
	declared = strings.ToLower(strings.TrimSpace(declared))
	if declared == "" {
		return nil
	}

	probe := func(token string) *int64 {
		for _, f := range s.factions {
			if strings.ToLower(f.Name) == token || (f.Alias != "" && strings.ToLower(f.Alias) == token) {
				id := f.ID
				return &id
			}
		}
		return nil
	}

	if id := probe(declared); id != nil {
		return id
	}
	tokens := strings.FieldsFunc(declared, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if id := probe(tok); id != nil {
			return id
		}
	}
	return nil
}

func (s *Session) factionName(id *int64) string {
	if id == nil {
		return ""
	}
	for _, f := range s.factions {
		if f.ID == *id {
			return f.Name
		}
	}
	return ""
}

// resolve runs the cascade for q and, while it fails, asks the corrector for
// a better name. It gives up after maxCorrections corrections, when the
// corrector declines, or when ctx is cancelled.
func (s *Session) resolve(ctx context.Context, player string, q resolver.Query) (int64, error) {
	key := memoKey{kind: q.Kind, name: strings.ToLower(strings.TrimSpace(q.Name))}
	if corrected, ok := s.memo[key]; ok {
		q.Name = corrected
	}

	for attempt := 0; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		res := s.resolver.Resolve(ctx, q)
		if res.Outcome == resolver.Resolved {
			if attempt > 0 {
				s.memo[key] = q.Name
			}
			return res.ID, nil
		}

		var candidates []resolver.Candidate
		if res.Outcome == resolver.Ambiguous {
			var err error
			candidates, err = s.resolver.Describe(ctx, q.Kind, res.Candidates)
			if err != nil {
				s.log.Warn("describe candidates failed", zap.Error(err))
			}
		}

		fail := func(cause error) error {
			if res.Outcome == resolver.Ambiguous {
				return &AmbiguousError{Kind: q.Kind, Name: q.Name, FactionID: q.FactionID, Cost: q.Cost, Candidates: candidates, Cause: cause}
			}
			return &UnresolvedError{Kind: q.Kind, Name: q.Name, FactionID: q.FactionID, Cost: q.Cost, Attempted: res.Attempted, Cause: cause}
		}

		if attempt >= s.maxCorrections {
			return 0, fail(fmt.Errorf("gave up after %d corrections", attempt))
		}

		s.log.Info("correction needed",
			zap.String("player", player),
			zap.Stringer("kind", q.Kind),
			zap.String("name", q.Name),
			zap.Stringer("outcome", res.Outcome),
			zap.Int("candidates", len(res.Candidates)))

		corr, err := s.ask(ctx, Request{
			Player:     player,
			Kind:       q.Kind,
			Name:       q.Name,
			Faction:    s.factionName(q.FactionID),
			FactionID:  q.FactionID,
			Cost:       q.Cost,
			Outcome:    res.Outcome,
			Candidates: candidates,
			Attempted:  res.Attempted,
			Attempt:    attempt,
		})
		if err != nil {
			if ctx.Err() != nil {
				return 0, ctx.Err()
			}
			return 0, fail(err)
		}

		if corr.ID != 0 {
			if containsID(res.Candidates, corr.ID) {
				return corr.ID, nil
			}
			s.log.Warn("correction picked an id outside the candidates", zap.Int64("id", corr.ID))
			continue
		}
		name := strings.TrimSpace(corr.Name)
		if name == "" {
			return 0, fail(ErrDeclined)
		}
		q.Name = name
	}
}

func (s *Session) ask(ctx context.Context, req Request) (Correction, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	return s.corrector.Correct(ctx, req)
}

func containsID(ids []int64, id int64) bool {
	for _, v := range ids {
		if v == id {
			return true
		}
	}
	return false
}

// Lookup is the result of a dry-run resolution.
type Lookup struct {
	FactionID  *int64               `json:"faction_id,omitempty"`
	Outcome    string               `json:"outcome"`
	Tier       string               `json:"tier,omitempty"`
	Attempted  []string             `json:"attempted"`
	Candidates []resolver.Candidate `json:"candidates"`
}

// Lookup runs the cascade for one component without asking the corrector
// or writing anything. The declared faction is matched like a draft's.
func (s *Session) Lookup(ctx context.Context, kind catalog.Kind, name, faction string, cost *int) (Lookup, error) {
	q := resolver.Query{Kind: kind, Name: name, FactionID: s.MatchFaction(faction), Cost: cost}
	res := s.resolver.Resolve(ctx, q)

	out := Lookup{FactionID: q.FactionID, Outcome: res.Outcome.String(), Attempted: make([]string, len(res.Attempted))}
	for i, t := range res.Attempted {
		out.Attempted[i] = t.String()
	}

	ids := res.Candidates
	switch res.Outcome {
	case resolver.Resolved:
		out.Tier = res.Tier.String()
		ids = []int64{res.ID}
	case resolver.Ambiguous:
		out.Tier = res.Tier.String()
	}
	if len(ids) > 0 {
		cands, err := s.resolver.Describe(ctx, kind, ids)
		if err != nil {
			return out, err
		}
		out.Candidates = cands
	}
	return out, nil
}

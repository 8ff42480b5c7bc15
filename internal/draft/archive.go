package draft

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/aidanlsb/fleetdb/internal/atomicfile"
	"github.com/aidanlsb/fleetdb/internal/slugs"
)

// Archived is the record written for a draft that could not be ingested.
type Archived struct {
	EventID    int64     `json:"event_id,omitempty"`
	Event      string    `json:"event"`
	Player     string    `json:"player"`
	Reason     string    `json:"reason"`
	ArchivedAt time.Time `json:"archived_at"`
	Draft      Tree      `json:"draft,omitempty"`
	Raw        string    `json:"raw,omitempty"`
}

// Archive writes rec to <dir>/<id>-<event>/<player>.json, replacing any
// earlier archive for the same pair, and returns the path.
func Archive(dir string, rec Archived) (string, error) {
	if rec.ArchivedAt.IsZero() {
		rec.ArchivedAt = time.Now().UTC()
	}
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode archived draft: %w", err)
	}

	path := slugs.ArchivePath(dir, rec.EventID, rec.Event, rec.Player, ".json")
	if err := atomicfile.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("archive draft for %s: %w", rec.Player, err)
	}
	return path, nil
}

// Package slugs builds deterministic, filesystem-safe names from event and
// player labels.
//
// Player names come from scraped pages and may contain anything, including
// characters that are illegal in file names. Archive and export paths must be
// reproducible across runs so a re-run overwrites its own earlier output
// instead of piling up variants.
package slugs

import (
	"fmt"
	"path/filepath"
	"strings"
	"unicode"

	goslug "github.com/gosimple/slug"
)

// Component converts a label to a slug usable as a single path component.
//
// gosimple/slug drops characters it cannot transliterate; when nothing is left
// the label is reduced to letters and digits joined by dashes, and "unnamed"
// is used as the last resort.
func Component(label string) string {
	if s := goslug.Make(label); s != "" {
		return s
	}

	var b strings.Builder
	prevDash := false
	for _, r := range strings.ToLower(label) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevDash = false
		case !prevDash && b.Len() > 0:
			b.WriteRune('-')
			prevDash = true
		}
	}
	if s := strings.TrimSuffix(b.String(), "-"); s != "" {
		return s
	}
	return "unnamed"
}

// EventDir names the directory holding an event's archives and exports.
// Event names are not unique, so the stored id leads; id 0 means the event
// has no row yet and only the name is used.
func EventDir(id int64, name string) string {
	if id <= 0 {
		return Component(name)
	}
	return fmt.Sprintf("%d-%s", id, Component(name))
}

// ArchivePath returns <dir>/<event-dir>/<player-slug><ext>.
func ArchivePath(dir string, eventID int64, event, player, ext string) string {
	return filepath.Join(dir, EventDir(eventID, event), Component(player)+ext)
}

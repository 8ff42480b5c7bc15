package ingest

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aidanlsb/fleetdb/internal/dates"
	"github.com/aidanlsb/fleetdb/internal/draft"
	"github.com/aidanlsb/fleetdb/internal/store"
)

// ErrInvalidBundle is wrapped by bundle loading failures.
var ErrInvalidBundle = errors.New("invalid event bundle")

// Bundle is one event's worth of input: the event, its fleet drafts and its
// round result tables.
type Bundle struct {
	Event  EventInfo    `json:"event" yaml:"event"`
	Fleets []FleetEntry `json:"fleets" yaml:"fleets"`
	Rounds [][]Row      `json:"rounds" yaml:"rounds"`
}

// EventInfo identifies an event. URL is the identity; Name defaults to the
// last path segment of the URL.
type EventInfo struct {
	Name   string `json:"name" yaml:"name"`
	URL    string `json:"url" yaml:"url"`
	Date   string `json:"date,omitempty" yaml:"date,omitempty"`
	Region string `json:"region,omitempty" yaml:"region,omitempty"`
}

// FleetEntry is one player's list in one of three forms: an already decoded
// draft, a raw extraction reply, or a fleet-builder text export. The first
// present form wins.
type FleetEntry struct {
	Player string     `json:"player" yaml:"player"`
	Draft  draft.Tree `json:"draft,omitempty" yaml:"draft,omitempty"`
	Raw    string     `json:"raw,omitempty" yaml:"raw,omitempty"`
	Text   string     `json:"text,omitempty" yaml:"text,omitempty"`
}

// Tree returns the entry's undecoded draft.
func (e FleetEntry) Tree() (draft.Tree, error) {
	switch {
	case e.Draft != nil:
		return e.Draft, nil
	case strings.TrimSpace(e.Raw) != "":
		return draft.Extract(e.Raw)
	case strings.TrimSpace(e.Text) != "":
		return draft.ParseBuilderText(e.Text)
	}
	return nil, fmt.Errorf("%w: no draft, raw or text for %s", draft.ErrMalformed, e.Player)
}

// Store converts the event info for the store.
func (e EventInfo) Store() store.Event {
	return store.Event{Name: e.Name, URL: e.URL, Date: e.Date, Region: e.Region}
}

// LoadBundle reads a bundle from a .json, .yaml or .yml file.
func LoadBundle(filename string) (*Bundle, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		return ParseBundleYAML(data)
	default:
		return ParseBundleJSON(data)
	}
}

// ParseBundleJSON decodes and normalises a JSON bundle.
func ParseBundleJSON(data []byte) (*Bundle, error) {
	var b Bundle
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return &b, b.normalize()
}

// ParseBundleYAML decodes and normalises a YAML bundle.
func ParseBundleYAML(data []byte) (*Bundle, error) {
	var b Bundle
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBundle, err)
	}
	return &b, b.normalize()
}

func (b *Bundle) normalize() error {
	b.Event.URL = strings.TrimSpace(b.Event.URL)
	b.Event.Name = strings.TrimSpace(b.Event.Name)
	if b.Event.URL == "" {
		return fmt.Errorf("%w: event url is required", ErrInvalidBundle)
	}
	if b.Event.Name == "" {
		b.Event.Name = NameFromURL(b.Event.URL)
	}
	date, err := dates.NormalizeEventDate(b.Event.Date)
	if err != nil {
		return fmt.Errorf("%w: event date: %w", ErrInvalidBundle, err)
	}
	b.Event.Date = date
	for i := range b.Fleets {
		b.Fleets[i].Player = CleanName(b.Fleets[i].Player)
		if b.Fleets[i].Player == "" {
			return fmt.Errorf("%w: fleets[%d]: missing player", ErrInvalidBundle, i)
		}
	}
	return nil
}

// NameFromURL returns the last non-empty path segment of an event URL.
func NameFromURL(raw string) string {
	p := raw
	if u, err := url.Parse(raw); err == nil && u.Path != "" {
		p = u.Path
	}
	p = strings.TrimRight(p, "/")
	name := path.Base(p)
	if name == "." || name == "/" {
		return raw
	}
	if unescaped, err := url.PathUnescape(name); err == nil {
		name = unescaped
	}
	return name
}

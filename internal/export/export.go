// Package export materialises the summary views as flat files, one file per
// view, in CSV or Parquet. This is the only place derived floats are
// rounded: averages and strength of schedule to 2 decimals, variance to 3.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/aidanlsb/fleetdb/internal/atomicfile"
	"github.com/aidanlsb/fleetdb/internal/slugs"
	"github.com/aidanlsb/fleetdb/internal/stats"
)

// Format is an output file format.
type Format string

const (
	FormatCSV     Format = "csv"
	FormatParquet Format = "parquet"
)

// ParseFormat accepts "csv" or "parquet", case-insensitively.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatParquet:
		return f, nil
	case "":
		return FormatCSV, nil
	}
	return "", fmt.Errorf("unknown export format %q (want csv or parquet)", s)
}

// Options controls where and how views are written.
type Options struct {
	Dir    string
	Format Format
	// Label, when set, writes into a subdirectory of Dir named after the
	// event id and label.
	Label   string
	EventID int64
}

// File describes one written view.
type File struct {
	View string `json:"view"`
	Path string `json:"path"`
	Rows int    `json:"rows"`
}

// Views of the export, in write order.
const (
	ViewFleets    = "fleet_summary"
	ViewShips     = "ship_summary"
	ViewSquadrons = "squadron_summary"
	ViewPlayers   = "player_summary"
)

// Write writes every view in v. Each file is replaced atomically.
func Write(v *stats.Views, opts Options) ([]File, error) {
	format := opts.Format
	if format == "" {
		format = FormatCSV
	}
	dir := opts.Dir
	if opts.Label != "" {
		dir = filepath.Join(dir, slugs.EventDir(opts.EventID, opts.Label))
	}
	path := func(view string) string {
		return filepath.Join(dir, view+"."+string(format))
	}

	var files []File
	add := func(view string, n int, err error) error {
		if err != nil {
			return fmt.Errorf("export %s: %w", view, err)
		}
		files = append(files, File{View: view, Path: path(view), Rows: n})
		return nil
	}

	fleets := mapRows(v.Fleets, newFleetRow)
	if err := add(ViewFleets, len(fleets), writeTable(path(ViewFleets), format, fleetHeader, fleets)); err != nil {
		return files, err
	}
	ships := mapRows(v.Ships, newShipRow)
	if err := add(ViewShips, len(ships), writeTable(path(ViewShips), format, shipHeader, ships)); err != nil {
		return files, err
	}
	squadrons := mapRows(v.Squadrons, newSquadronRow)
	if err := add(ViewSquadrons, len(squadrons), writeTable(path(ViewSquadrons), format, squadronHeader, squadrons)); err != nil {
		return files, err
	}
	players := mapRows(v.Players, newPlayerRow)
	if err := add(ViewPlayers, len(players), writeTable(path(ViewPlayers), format, playerHeader, players)); err != nil {
		return files, err
	}
	return files, nil
}

type recorder interface {
	record() []string
}

func mapRows[S, T any](in []S, conv func(S) T) []T {
	out := make([]T, len(in))
	for i, s := range in {
		out[i] = conv(s)
	}
	return out
}

func writeTable[T recorder](path string, format Format, header []string, rows []T) error {
	return atomicfile.WriteWith(path, 0o644, func(w io.Writer) error {
		if format == FormatParquet {
			return writeParquet(w, rows)
		}
		return writeCSV(w, header, rows)
	})
}

func writeCSV[T recorder](w io.Writer, header []string, rows []T) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range rows {
		if err := cw.Write(r.record()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func writeParquet[T any](w io.Writer, rows []T) error {
	pw := parquet.NewGenericWriter[T](w)
	if len(rows) > 0 {
		if _, err := pw.Write(rows); err != nil {
			return err
		}
	}
	return pw.Close()
}

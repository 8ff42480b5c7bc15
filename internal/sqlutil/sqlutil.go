// Package sqlutil holds small helpers shared by the store's SQL code.
package sqlutil

import (
	"database/sql"
	"strings"
)

// Placeholders returns n comma-separated "?" placeholders.
//
// If n is zero, it returns "NULL", so `IN (NULL)` matches nothing.
func Placeholders(n int) string {
	if n <= 0 {
		return "NULL"
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// InClauseIDs returns placeholders and args for an `IN (...)` over ids.
func InClauseIDs(ids []int64) (placeholders string, args []any) {
	args = make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return Placeholders(len(ids)), args
}

// ScanRows scans all rows into a slice using the provided scanner.
func ScanRows[T any](rows *sql.Rows, scan func(*sql.Rows) (T, error)) ([]T, error) {
	defer rows.Close()

	var out []T
	for rows.Next() {
		item, err := scan(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// ScanIDs collects a single int64 column from rows.
func ScanIDs(rows *sql.Rows) ([]int64, error) {
	return ScanRows(rows, func(r *sql.Rows) (int64, error) {
		var id int64
		err := r.Scan(&id)
		return id, err
	})
}

// NullInt64 converts an optional value to a driver argument.
func NullInt64(v *int64) any {
	if v == nil {
		return nil
	}
	return *v
}

// NullString converts an empty string to NULL.
func NullString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

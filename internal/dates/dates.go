// Package dates normalises the event dates found in bundles and tournament
// pages to YYYY-MM-DD.
package dates

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout is the canonical stored date format.
const Layout = "2006-01-02"

var (
	dateRegex = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// IsValidDate checks if a string is a valid YYYY-MM-DD date.
func IsValidDate(s string) bool {
	if !dateRegex.MatchString(s) {
		return false
	}
	_, err := time.Parse(Layout, s)
	return err == nil
}

// ParseDate parses a YYYY-MM-DD date.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if !IsValidDate(s) {
		return time.Time{}, fmt.Errorf("invalid date: %q", s)
	}
	return time.Parse(Layout, s)
}

// ParseDatetime parses a datetime in one of the accepted formats:
// RFC3339, YYYY-MM-DDTHH:MM or YYYY-MM-DDTHH:MM:SS.
func ParseDatetime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("invalid datetime: empty")
	}

	formats := []string{
		time.RFC3339,
		"2006-01-02T15:04",
		"2006-01-02T15:04:05",
	}
	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime: %q", s)
}

// Written-out forms seen on event pages. Numeric day/month orders are not
// accepted because 04/05/2025 reads differently by region.
var longLayouts = []string{
	"January 2, 2006",
	"January 2 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"2 January 2006",
	"2 Jan 2006",
	"Monday, January 2, 2006",
}

// NormalizeEventDate returns s as YYYY-MM-DD. An empty string stays empty;
// a datetime keeps only its calendar date in its own offset.
func NormalizeEventDate(s string) (string, error) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return "", nil
	}
	if t, err := ParseDate(s); err == nil {
		return t.Format(Layout), nil
	}
	if t, err := ParseDatetime(s); err == nil {
		return t.Format(Layout), nil
	}
	for _, layout := range longLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(Layout), nil
		}
	}
	return "", fmt.Errorf("unrecognised date %q (use YYYY-MM-DD)", s)
}

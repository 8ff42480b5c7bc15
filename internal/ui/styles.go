// Package ui renders fleetdb output for terminals: status lines, tables,
// progress and markdown reports.
package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette
// - Default (white/black): primary text
// - Accent (soft purple unless configured): headings, player names, paths
// - Muted (gray): secondary info, hints, table rules
// - No colored success/error/warning; statuses use unicode symbols only

const defaultAccentColor = "#A78BFA"

var accentColor = defaultAccentColor

var (
	// Accent style for player names, paths and highlights
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor))

	// Muted style for secondary info and hints
	Muted = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C7086"))

	// Bold style for emphasis
	Bold = lipgloss.NewStyle().Bold(true)

	// AccentBold combines accent color with bold
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(defaultAccentColor)).Bold(true)
)

// ConfigureTheme applies the `[ui] accent` setting. "default" or an empty
// value keeps the built-in accent, "none"/"off" disables it, otherwise an
// ANSI code (0-255) or hex color is expected. Invalid values are ignored.
func ConfigureTheme(accent string) {
	value := strings.ToLower(strings.TrimSpace(accent))
	switch value {
	case "", "default":
		setAccent(defaultAccentColor)
		return
	case "none", "off":
		setAccent("")
		return
	}
	if color, ok := normalizeAccentColor(value); ok {
		setAccent(color)
	}
}

// AccentColor returns the active accent color, if any.
func AccentColor() (string, bool) {
	return accentColor, accentColor != ""
}

func setAccent(color string) {
	accentColor = color
	if color == "" {
		Accent = lipgloss.NewStyle()
		AccentBold = lipgloss.NewStyle().Bold(true)
		return
	}
	Accent = lipgloss.NewStyle().Foreground(lipgloss.Color(color))
	AccentBold = lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

func normalizeAccentColor(value string) (string, bool) {
	value = strings.ToLower(strings.TrimSpace(value))
	switch value {
	case "", "none", "off", "default":
		return "", false
	}

	if strings.HasPrefix(value, "#") {
		hex := value[1:]
		if len(hex) == 3 {
			hex = fmt.Sprintf("%c%c%c%c%c%c", hex[0], hex[0], hex[1], hex[1], hex[2], hex[2])
		}
		if len(hex) != 6 {
			return "", false
		}
		if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
			return "", false
		}
		return "#" + hex, true
	}

	n, err := strconv.Atoi(value)
	if err != nil || n < 0 || n > 255 {
		return "", false
	}
	return strconv.Itoa(n), true
}

package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

// MarkdownRenderMargin is the left margin used for terminal markdown rendering.
const MarkdownRenderMargin = 2

// RenderMarkdown renders a markdown report for the terminal.
func RenderMarkdown(content string, width int) (string, error) {
	if width <= 0 {
		width = DefaultTermWidth
	}

	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(reportStyle()),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		return "", err
	}

	rendered, err := r.Render(content)
	if err != nil {
		return "", err
	}

	// glamour adds trailing newlines; normalize to a single trailing newline.
	rendered = strings.TrimRight(rendered, "\n") + "\n"
	return rendered, nil
}

// reportStyle starts from glamour's plain ASCII style and restyles the parts
// an event report uses: headings, tables, rules and the italic empty-state
// lines.
func reportStyle() ansi.StyleConfig {
	style := styles.ASCIIStyleConfig
	muted := strPtr("8")
	var accent *string
	if color, ok := AccentColor(); ok {
		accent = strPtr(color)
	}

	style.Document.Margin = uintPtr(MarkdownRenderMargin)
	style.Heading = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{
		BlockSuffix: "\n",
		Color:       accent,
		Bold:        boolPtr(true),
	}}
	// The event name is the only H1; section headings stay unprefixed.
	style.H1 = ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Upper: boolPtr(true)}}
	style.H2 = ansi.StyleBlock{}
	style.Emph = ansi.StylePrimitive{Color: muted, Italic: boolPtr(true)}
	style.HorizontalRule = ansi.StylePrimitive{Color: muted, Format: "\n────────\n"}
	style.Table = ansi.StyleTable{
		CenterSeparator: strPtr("┼"),
		ColumnSeparator: strPtr("│"),
		RowSeparator:    strPtr("─"),
	}
	return style
}

func boolPtr(v bool) *bool { return &v }

func strPtr(v string) *string { return &v }

func uintPtr(v uint) *uint { return &v }

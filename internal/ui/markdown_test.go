package ui

import (
	"strings"
	"testing"
)

func TestRenderMarkdownNormalizesTrailingNewline(t *testing.T) {
	out, err := RenderMarkdown("# Heading", 80)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.HasSuffix(out, "\n") {
		t.Fatalf("expected rendered markdown to end with newline, got %q", out)
	}
	if strings.HasSuffix(out, "\n\n") {
		t.Fatalf("expected single trailing newline, got %q", out)
	}
}

func TestRenderMarkdownDefaultsWidthWhenNonPositive(t *testing.T) {
	out, err := RenderMarkdown("hello", 0)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	if !strings.Contains(out, "hello") {
		t.Fatalf("expected rendered output to contain text, got %q", out)
	}
}

func TestReportStyleFollowsAccent(t *testing.T) {
	t.Cleanup(func() { ConfigureTheme("") })

	ConfigureTheme("#ff0000")
	style := reportStyle()
	if style.Heading.Color == nil || *style.Heading.Color != "#ff0000" {
		t.Fatalf("expected heading color #ff0000, got %v", style.Heading.Color)
	}
	if style.Table.ColumnSeparator == nil || *style.Table.ColumnSeparator != "│" {
		t.Fatalf("expected a box-drawing table column separator")
	}
	if style.H1.Upper == nil || !*style.H1.Upper || style.H2.Prefix != "" {
		t.Fatalf("unexpected heading styles: h1=%+v h2=%+v", style.H1, style.H2)
	}
	if style.Emph.Italic == nil || !*style.Emph.Italic {
		t.Fatalf("expected italic empty-state lines")
	}

	ConfigureTheme("none")
	style = reportStyle()
	if style.Heading.Color != nil {
		t.Fatalf("expected no heading color with accent disabled, got %q", *style.Heading.Color)
	}
}

func TestRenderMarkdownTable(t *testing.T) {
	out, err := RenderMarkdown("| Player | TP |\n| --- | ---: |\n| Alice | 18 |\n", 80)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	for _, want := range []string{"Player", "Alice", "18"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered table missing %q:\n%s", want, out)
		}
	}
}

func TestRenderMarkdownReportSections(t *testing.T) {
	md := "# Spring Open\n\n## Squadrons\n\n- • TIE Fighter\n\n_No scores recorded._\n"
	out, err := RenderMarkdown(md, 80)
	if err != nil {
		t.Fatalf("RenderMarkdown() error = %v", err)
	}
	for _, want := range []string{"Squadrons", "TIE Fighter", "No scores recorded."} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered report missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "## ") {
		t.Errorf("section headings should not keep markdown prefixes:\n%s", out)
	}
}

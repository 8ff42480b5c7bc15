package slugs

import (
	"path/filepath"
	"testing"
)

func TestComponent(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Regional Open 2025", "regional-open-2025"},
		{"Jane  Doe", "jane-doe"},
		{"Pat Smith, Jr", "pat-smith-jr"},
		{"UPPER case", "upper-case"},
		{"!!!", "unnamed"},
		{"", "unnamed"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := Component(tt.in); got != tt.want {
				t.Fatalf("Component(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestArchivePathIsDeterministic(t *testing.T) {
	a := ArchivePath("raw", 7, "Spring Cup", "Jane Doe", ".json")
	b := ArchivePath("raw", 7, "Spring Cup", "Jane Doe", ".json")
	if a != b {
		t.Fatalf("paths differ: %q vs %q", a, b)
	}
	want := filepath.Join("raw", "7-spring-cup", "jane-doe.json")
	if a != want {
		t.Fatalf("ArchivePath = %q, want %q", a, want)
	}
}

func TestEventDir(t *testing.T) {
	tests := []struct {
		id   int64
		name string
		want string
	}{
		{1, "open", "1-open"},
		{2, "open", "2-open"},
		{12, "Spring Cup", "12-spring-cup"},
		{0, "Spring Cup", "spring-cup"},
	}

	for _, tt := range tests {
		if got := EventDir(tt.id, tt.name); got != tt.want {
			t.Errorf("EventDir(%d, %q) = %q, want %q", tt.id, tt.name, got, tt.want)
		}
	}
	if ArchivePath("raw", 1, "open", "Carol", ".json") == ArchivePath("raw", 2, "open", "Carol", ".json") {
		t.Error("events sharing a name share an archive path")
	}
}

package cli

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/aidanlsb/fleetdb/internal/export"
)

func TestCommandsAreDocumented(t *testing.T) {
	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		if cmd.Hidden || cmd.Name() == "help" || cmd.Name() == "completion" {
			return
		}
		if cmd.Short == "" {
			t.Errorf("command %q has no short description", cmd.CommandPath())
		}
		cmd.LocalFlags().VisitAll(func(flag *pflag.Flag) {
			if flag.Usage == "" {
				t.Errorf("flag --%s of %q has no usage text", flag.Name, cmd.CommandPath())
			}
		})
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(rootCmd)

	for _, path := range [][]string{
		{"catalog", "seed"}, {"catalog", "lookup"}, {"ingest"}, {"events"},
		{"stats"}, {"report"}, {"export"}, {"config", "init"}, {"version"},
	} {
		if cmd, _, err := rootCmd.Find(path); err != nil || cmd == rootCmd {
			t.Errorf("command %v not registered", path)
		}
	}
}

func TestFormatFlag(t *testing.T) {
	var f formatValue
	if err := f.Set("Parquet"); err != nil {
		t.Fatalf("Set(Parquet) error = %v", err)
	}
	if f.format != export.FormatParquet || f.String() != "parquet" {
		t.Errorf("format = %q", f.format)
	}
	if err := f.Set("xlsx"); err == nil {
		t.Error("expected error for xlsx")
	}
	if f.format != export.FormatParquet {
		t.Errorf("failed Set changed the value to %q", f.format)
	}
}

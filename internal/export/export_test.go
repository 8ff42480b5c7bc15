package export

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/parquet-go/parquet-go"

	"github.com/aidanlsb/fleetdb/internal/stats"
)

func f64(v float64) *float64 { return &v }

func sampleViews() *stats.Views {
	alice := stats.Performance{EventID: 1, Player: "Alice", Rounds: 3, TP: 20, MoV: 280, AvgTP: 20.0 / 3, Variance: f64(4.333333333), SoS: f64(5.756)}
	bob := stats.Performance{EventID: 1, Player: "Bob", Rounds: 1, TP: 3, AvgTP: 3}
	return &stats.Views{
		Fleets: []stats.FleetSummary{
			{FleetID: 1, EventID: 1, Player: "Alice", Faction: "Galactic Empire", Commander: "Grand Moff Tarkin",
				NumShips: 2, ShipsBaseCost: 300, UpgradesCost: 50, ShipsTotalCost: 350, SquadronsCost: 30, TotalCost: 380, Bid: 20,
				Performance: &alice},
			{FleetID: 2, EventID: 1, Player: "Carol, Jr", TotalCost: 410, Bid: -10},
		},
		Ships: []stats.ShipSummary{
			{EventID: 1, ShipID: 1, Name: "Victory II", Fleets: 1, Instances: 1, AvgUpgrades: 2.0 / 3, AvgBid: 20},
		},
		Squadrons: []stats.SquadronSummary{
			{EventID: 1, SquadronID: 3, Name: "Howlrunner", Unique: true, Fleets: 1, AvgCount: 1},
		},
		Players: []stats.Performance{alice, bob},
	}
}

func TestRounding(t *testing.T) {
	tests := []struct {
		in     float64
		round2 float64
		round3 float64
	}{
		{6.666666, 6.67, 6.667},
		{5.756, 5.76, 5.756},
		{0.0004, 0, 0},
		{-1.23456, -1.23, -1.235},
	}
	for _, tt := range tests {
		if got := Round2(tt.in); got != tt.round2 {
			t.Errorf("Round2(%v) = %v, want %v", tt.in, got, tt.round2)
		}
		if got := Round3(tt.in); got != tt.round3 {
			t.Errorf("Round3(%v) = %v, want %v", tt.in, got, tt.round3)
		}
	}
}

func TestParseFormat(t *testing.T) {
	for in, want := range map[string]Format{"csv": FormatCSV, "PARQUET": FormatParquet, "": FormatCSV} {
		got, err := ParseFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseFormat(%q) = %q, %v", in, got, err)
		}
	}
	if _, err := ParseFormat("xlsx"); err == nil {
		t.Error("expected error for xlsx")
	}
}

func readCSV(t *testing.T, path string) [][]string {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return records
}

func TestWriteCSV(t *testing.T) {
	dir := t.TempDir()
	files, err := Write(sampleViews(), Options{Dir: dir, Format: FormatCSV, Label: "Spring Open", EventID: 4})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("files = %+v", files)
	}
	if want := filepath.Join(dir, "4-spring-open", "fleet_summary.csv"); files[0].Path != want {
		t.Errorf("path = %q, want %q", files[0].Path, want)
	}

	fleets := readCSV(t, files[0].Path)
	if len(fleets) != 3 || len(fleets[0]) != len(fleetHeader) {
		t.Fatalf("fleet rows = %v", fleets)
	}
	col := func(name string) int {
		for i, h := range fleetHeader {
			if h == name {
				return i
			}
		}
		t.Fatalf("no column %s", name)
		return -1
	}
	alice, carol := fleets[1], fleets[2]
	if alice[col("bid")] != "20" || alice[col("avg_tp")] != "6.67" || alice[col("variance")] != "4.333" || alice[col("sos")] != "5.76" {
		t.Errorf("alice = %v", alice)
	}
	if carol[col("player")] != "Carol, Jr" || carol[col("bid")] != "-10" || carol[col("tp")] != "" {
		t.Errorf("carol = %v", carol)
	}

	players := readCSV(t, files[3].Path)
	if players[2][7] != "" || players[2][6] != "3" {
		t.Errorf("bob has one round, variance must be empty: %v", players[2])
	}

	ships := readCSV(t, files[1].Path)
	if ships[1][7] != "0.67" {
		t.Errorf("avg_upgrades = %q", ships[1][7])
	}
}

func TestWriteParquet(t *testing.T) {
	dir := t.TempDir()
	files, err := Write(sampleViews(), Options{Dir: dir, Format: FormatParquet})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if filepath.Ext(files[3].Path) != ".parquet" {
		t.Fatalf("path = %s", files[3].Path)
	}

	players, err := parquet.ReadFile[playerRow](files[3].Path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(players) != 2 {
		t.Fatalf("rows = %d", len(players))
	}
	if players[0].AvgTP != 6.67 || players[0].Variance == nil || *players[0].Variance != 4.333 {
		t.Errorf("alice = %+v", players[0])
	}
	if players[1].Variance != nil || players[1].SoS != nil {
		t.Errorf("bob = %+v", players[1])
	}

	fleets, err := parquet.ReadFile[fleetRow](files[0].Path)
	if err != nil {
		t.Fatal(err)
	}
	if fleets[1].Bid != -10 || fleets[1].TP != nil {
		t.Errorf("carol = %+v", fleets[1])
	}
}

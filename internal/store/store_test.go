package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/wscgames/scavbot/internal/game"
	"github.com/wscgames/scavbot/internal/rules"
)

func TestLoadMissingFileYieldsFreshState(t *testing.T) {
	f := NewFile(filepath.Join(t.TempDir(), "none.json"))
	st, err := f.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if st.Players == nil || len(st.Players) != 0 {
		t.Errorf("state = %+v, want empty", st)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	rs := rules.Canonical()
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	f := NewFile(path)

	st := NewState()
	p := game.NewPlayer("p1", "Ash", "0xabc", rs, now)
	p.Bunker[game.ScrapMetal] = 12
	p.Active[game.SCR] = 0.5
	p.Inventory.Consumables["radPill"] = 2
	p.Inventory.Misc = []game.MiscItem{{Name: game.KeyItemName}}
	st.Players["p1"] = p
	st.NFTCount = 3

	if err := f.SaveSnapshot(st); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}
	// The temp file must not linger after the rename.
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Errorf("temp file left behind: %v", err)
	}

	got, err := f.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	gp, ok := got.Players["p1"]
	if !ok {
		t.Fatal("player missing after round trip")
	}
	if gp.Name != "Ash" || gp.Bunker[game.ScrapMetal] != 12 || gp.Active[game.SCR] != 0.5 {
		t.Errorf("player = %+v", gp)
	}
	if gp.Inventory.Consumables["radPill"] != 2 || !gp.HasMisc(game.KeyItemName) {
		t.Errorf("inventory lost: %+v", gp.Inventory)
	}
	if got.NFTCount != 3 {
		t.Errorf("NFTCount = %d, want 3", got.NFTCount)
	}
}

func TestSaveOverwritesAtomically(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	f := NewFile(path)

	st := NewState()
	if err := f.SaveSnapshot(st); err != nil {
		t.Fatalf("first save: %v", err)
	}
	st.NFTCount = 7
	if err := f.SaveSnapshot(st); err != nil {
		t.Fatalf("second save: %v", err)
	}
	got, err := f.LoadSnapshot()
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if got.NFTCount != 7 {
		t.Errorf("NFTCount = %d, want 7", got.NFTCount)
	}
}

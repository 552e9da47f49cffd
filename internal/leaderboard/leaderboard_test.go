package leaderboard

import "testing"

func TestRecordIsMonotonic(t *testing.T) {
	m := NewMemory()
	m.Record("p1", "Ash", 5, 12)
	m.Record("p1", "Ash", 3, 20)

	e, ok := m.Get("p1")
	if !ok {
		t.Fatal("entry missing")
	}
	// The lower floor must not overwrite the stored best; the higher round
	// count must.
	if e.BestFloor != 5 {
		t.Errorf("BestFloor = %d, want 5", e.BestFloor)
	}
	if e.BestRounds != 20 {
		t.Errorf("BestRounds = %d, want 20", e.BestRounds)
	}
}

func TestRecordUpdatesName(t *testing.T) {
	m := NewMemory()
	m.Record("p1", "Old", 1, 1)
	m.Record("p1", "New", 0, 0)
	e, _ := m.Get("p1")
	if e.Name != "New" {
		t.Errorf("Name = %q, want New", e.Name)
	}
	if e.BestFloor != 1 {
		t.Errorf("zero record lowered best floor to %d", e.BestFloor)
	}
}

func TestTops(t *testing.T) {
	m := NewMemory()
	m.Record("p1", "Ash", 5, 40)
	m.Record("p2", "Bix", 9, 10)
	m.Record("p3", "Cud", 7, 25)

	byFloor := m.TopByFloor(2)
	if len(byFloor) != 2 || byFloor[0].Name != "Bix" || byFloor[1].Name != "Cud" {
		t.Errorf("TopByFloor(2) = %v", byFloor)
	}
	byRounds := m.TopByRounds(10)
	if len(byRounds) != 3 || byRounds[0].Name != "Ash" {
		t.Errorf("TopByRounds = %v", byRounds)
	}
}

func TestTopsTieBreakByName(t *testing.T) {
	m := NewMemory()
	m.Record("p2", "Zed", 4, 1)
	m.Record("p1", "Ann", 4, 1)
	top := m.TopByFloor(2)
	if top[0].Name != "Ann" || top[1].Name != "Zed" {
		t.Errorf("tied entries not name-ordered: %v", top)
	}
}

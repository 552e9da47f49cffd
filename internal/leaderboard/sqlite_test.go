package leaderboard

import (
	"path/filepath"
	"testing"
)

func openTestDB(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "bests.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLiteMonotonicUpsert(t *testing.T) {
	s := openTestDB(t)
	s.Record("p1", "Ash", 5, 12)
	s.Record("p1", "Ash", 3, 20)

	top := s.TopByFloor(1)
	if len(top) != 1 {
		t.Fatalf("TopByFloor(1) = %v", top)
	}
	if top[0].BestFloor != 5 || top[0].BestRounds != 20 {
		t.Errorf("entry = %+v, want floor 5 rounds 20", top[0])
	}
}

func TestSQLiteTops(t *testing.T) {
	s := openTestDB(t)
	s.Record("p1", "Ash", 5, 40)
	s.Record("p2", "Bix", 9, 10)
	s.Record("p3", "Cud", 7, 25)

	byFloor := s.TopByFloor(2)
	if len(byFloor) != 2 || byFloor[0].Name != "Bix" || byFloor[1].Name != "Cud" {
		t.Errorf("TopByFloor(2) = %v", byFloor)
	}
	byRounds := s.TopByRounds(1)
	if len(byRounds) != 1 || byRounds[0].Name != "Ash" {
		t.Errorf("TopByRounds(1) = %v", byRounds)
	}
}

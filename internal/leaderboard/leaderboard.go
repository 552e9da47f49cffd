// Package leaderboard tracks per-player bests. Updates are monotonic:
// an entry is only replaced when the new value is strictly greater.
package leaderboard

import (
	"sort"
	"sync"
)

// Entry is one player's recorded bests.
type Entry struct {
	PlayerID   string `json:"playerId"`
	Name       string `json:"name"`
	BestFloor  int    `json:"bestFloor"`
	BestRounds int    `json:"bestRounds"`
}

// Board is the leaderboard surface. Record never lowers a stored best.
type Board interface {
	Record(playerID, name string, floor, rounds int)
	TopByFloor(n int) []Entry
	TopByRounds(n int) []Entry
}

// Memory is the in-process board used by tests and as a write-through cache
// in front of the sqlite store.
type Memory struct {
	mu      sync.Mutex
	entries map[string]*Entry
}

// NewMemory returns an empty in-memory board.
func NewMemory() *Memory {
	return &Memory{entries: map[string]*Entry{}}
}

// Record applies the compare-and-replace-if-greater rule per metric.
func (m *Memory) Record(playerID, name string, floor, rounds int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[playerID]
	if !ok {
		e = &Entry{PlayerID: playerID}
		m.entries[playerID] = e
	}
	e.Name = name
	if floor > e.BestFloor {
		e.BestFloor = floor
	}
	if rounds > e.BestRounds {
		e.BestRounds = rounds
	}
}

// TopByFloor returns the n deepest runs, best first.
func (m *Memory) TopByFloor(n int) []Entry {
	return m.top(n, func(a, b Entry) bool { return a.BestFloor > b.BestFloor })
}

// TopByRounds returns the n longest-surviving runs, best first.
func (m *Memory) TopByRounds(n int) []Entry {
	return m.top(n, func(a, b Entry) bool { return a.BestRounds > b.BestRounds })
}

func (m *Memory) top(n int, less func(a, b Entry) bool) []Entry {
	m.mu.Lock()
	out := make([]Entry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, *e)
	}
	m.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		if less(out[i], out[j]) != less(out[j], out[i]) {
			return less(out[i], out[j])
		}
		return out[i].Name < out[j].Name
	})
	if len(out) > n {
		out = out[:n]
	}
	return out
}

// Get returns the entry for a player, if any.
func (m *Memory) Get(playerID string) (Entry, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if e, ok := m.entries[playerID]; ok {
		return *e, true
	}
	return Entry{}, false
}

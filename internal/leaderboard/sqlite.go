package leaderboard

import (
	"database/sql"
	"log"

	_ "modernc.org/sqlite"
)

// SQLite persists bests across restarts. Writes keep the monotonic rule in
// SQL so concurrent processes cannot lower a best.
type SQLite struct {
	db *sql.DB
}

// OpenSQLite opens (and migrates) the leaderboard database at path.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		return nil, err
	}
	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS bests (
		player_id   TEXT PRIMARY KEY,
		name        TEXT NOT NULL,
		best_floor  INTEGER NOT NULL DEFAULT 0,
		best_rounds INTEGER NOT NULL DEFAULT 0
	)`)
	if err != nil {
		return nil, err
	}
	return &SQLite{db: db}, nil
}

// Close releases the database handle.
func (s *SQLite) Close() error { return s.db.Close() }

// Record upserts with MAX so stored bests never decrease.
func (s *SQLite) Record(playerID, name string, floor, rounds int) {
	_, err := s.db.Exec(`INSERT INTO bests (player_id, name, best_floor, best_rounds)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(player_id) DO UPDATE SET
			name        = excluded.name,
			best_floor  = MAX(best_floor, excluded.best_floor),
			best_rounds = MAX(best_rounds, excluded.best_rounds)`,
		playerID, name, floor, rounds)
	if err != nil {
		log.Printf("leaderboard: record %s: %v", playerID, err)
	}
}

// TopByFloor returns the n deepest runs, best first.
func (s *SQLite) TopByFloor(n int) []Entry {
	return s.query(`SELECT player_id, name, best_floor, best_rounds FROM bests
		ORDER BY best_floor DESC, name ASC LIMIT ?`, n)
}

// TopByRounds returns the n longest-surviving runs, best first.
func (s *SQLite) TopByRounds(n int) []Entry {
	return s.query(`SELECT player_id, name, best_floor, best_rounds FROM bests
		ORDER BY best_rounds DESC, name ASC LIMIT ?`, n)
}

func (s *SQLite) query(q string, n int) []Entry {
	rows, err := s.db.Query(q, n)
	if err != nil {
		log.Printf("leaderboard: query: %v", err)
		return nil
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.PlayerID, &e.Name, &e.BestFloor, &e.BestRounds); err != nil {
			log.Printf("leaderboard: scan: %v", err)
			continue
		}
		out = append(out, e)
	}
	return out
}

package storage

import (
	"database/sql"
	"log"

	_ "github.com/mattn/go-sqlite3"
)

// LeaderboardCap bounds the persisted past-run list.
const LeaderboardCap = 10

// Store persists client-local state: display name, the current room code
// (reconnect identity), and a capped leaderboard of past solo runs. None of
// it is authoritative.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS profile (
		id INTEGER PRIMARY KEY CHECK (id = 1),
		name TEXT DEFAULT '',
		room_code TEXT DEFAULT ''
	);
	INSERT OR IGNORE INTO profile (id) VALUES (1);
	CREATE TABLE IF NOT EXISTS runs (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT,
		score INTEGER,
		duration_sec REAL,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// DisplayName returns the last-used display name.
func (s *Store) DisplayName() string {
	var name string
	err := s.db.QueryRow("SELECT name FROM profile WHERE id = 1").Scan(&name)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("storage: load name: %v", err)
		}
		return ""
	}
	return name
}

func (s *Store) SaveDisplayName(name string) {
	if _, err := s.db.Exec("UPDATE profile SET name = ? WHERE id = 1", name); err != nil {
		log.Printf("storage: save name: %v", err)
	}
}

// RoomCode returns the persisted reconnect identity, empty when none.
func (s *Store) RoomCode() string {
	var code string
	err := s.db.QueryRow("SELECT room_code FROM profile WHERE id = 1").Scan(&code)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("storage: load room code: %v", err)
		}
		return ""
	}
	return code
}

func (s *Store) SaveRoomCode(code string) {
	if _, err := s.db.Exec("UPDATE profile SET room_code = ? WHERE id = 1", code); err != nil {
		log.Printf("storage: save room code: %v", err)
	}
}

func (s *Store) ClearRoomCode() {
	s.SaveRoomCode("")
}

// Run is one past solo-run leaderboard entry.
type Run struct {
	Name        string
	Score       int
	DurationSec float64
}

// RecordRun appends a run and trims the table back to the cap, best score
// first.
func (s *Store) RecordRun(name string, score int, durationSec float64) {
	if _, err := s.db.Exec(
		"INSERT INTO runs (name, score, duration_sec) VALUES (?, ?, ?)",
		name, score, durationSec,
	); err != nil {
		log.Printf("storage: record run: %v", err)
		return
	}
	trim := `
	DELETE FROM runs WHERE id NOT IN (
		SELECT id FROM runs ORDER BY score DESC, created_at ASC LIMIT ?
	);
	`
	if _, err := s.db.Exec(trim, LeaderboardCap); err != nil {
		log.Printf("storage: trim runs: %v", err)
	}
}

// TopRuns returns up to n past runs, best score first.
func (s *Store) TopRuns(n int) []Run {
	rows, err := s.db.Query(
		"SELECT name, score, duration_sec FROM runs ORDER BY score DESC, created_at ASC LIMIT ?", n)
	if err != nil {
		log.Printf("storage: top runs: %v", err)
		return nil
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(&r.Name, &r.Score, &r.DurationSec); err != nil {
			log.Printf("storage: scan run: %v", err)
			continue
		}
		out = append(out, r)
	}
	return out
}

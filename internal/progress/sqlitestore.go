package progress

import (
	"database/sql"
	"errors"
	"log/slog"

	_ "modernc.org/sqlite"
)

// SQLiteStore persists the mirror in a single key-value table so positions
// and completion sets survive restarts of the harness.
type SQLiteStore struct {
	db *sql.DB
}

func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS mirror (key TEXT PRIMARY KEY, value TEXT NOT NULL)`); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) Get(key string) (string, bool) {
	var value string
	err := s.db.QueryRow(`SELECT value FROM mirror WHERE key = ?`, key).Scan(&value)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			slog.Warn("Unable to read mirror entry", "key", key, "err", err)
		}
		return "", false
	}

	return value, true
}

func (s *SQLiteStore) Set(key string, value string) error {
	_, err := s.db.Exec(
		`INSERT INTO mirror (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`,
		key, value,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

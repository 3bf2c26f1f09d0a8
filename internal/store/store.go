// Package store is the dashboard's own sqlite database. It holds only
// dashboard-local operational state (saved searches, search history, the
// audit log of exports and mutations); marketplace data is never persisted
// here.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"pitstop/internal/models"
)

type Store struct {
	DB *sql.DB
}

func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", path, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("store: pragma: %w", err)
	}
	s := &Store{DB: db}
	if err := s.migrate(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.DB.Close() }

func (s *Store) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS saved_searches (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			screen TEXT NOT NULL,
			search TEXT,
			filters TEXT,
			sort_by TEXT,
			sort_order TEXT,
			created_by TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS search_history (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			user_id TEXT,
			screen TEXT,
			search TEXT,
			filters TEXT,
			searched_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS audit_log (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			username TEXT,
			action TEXT NOT NULL,
			screen TEXT NOT NULL,
			record_id TEXT,
			summary TEXT,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
	}
	for _, stmt := range stmts {
		if _, err := s.DB.Exec(stmt); err != nil {
			return fmt.Errorf("store: migrate: %w", err)
		}
	}
	return nil
}

func (s *Store) SaveSearch(ss models.SavedSearch) error {
	_, err := s.DB.Exec(`INSERT INTO saved_searches
		(id, name, screen, search, filters, sort_by, sort_order, created_by, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		ss.ID, ss.Name, ss.Screen, ss.Search, ss.Filters, ss.SortBy, ss.SortOrder, ss.CreatedBy, ss.CreatedAt)
	return err
}

func (s *Store) ListSearches(user, screen string) ([]models.SavedSearch, error) {
	query := `SELECT id, name, screen, COALESCE(search,''), COALESCE(filters,''),
		COALESCE(sort_by,''), COALESCE(sort_order,''), COALESCE(created_by,''), created_at
		FROM saved_searches WHERE created_by = ?`
	args := []interface{}{user}
	if screen != "" {
		query += " AND screen = ?"
		args = append(args, screen)
	}
	query += " ORDER BY created_at DESC"

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.SavedSearch
	for rows.Next() {
		var ss models.SavedSearch
		if err := rows.Scan(&ss.ID, &ss.Name, &ss.Screen, &ss.Search, &ss.Filters,
			&ss.SortBy, &ss.SortOrder, &ss.CreatedBy, &ss.CreatedAt); err != nil {
			continue
		}
		out = append(out, ss)
	}
	return out, rows.Err()
}

func (s *Store) DeleteSearch(id, user string) error {
	res, err := s.DB.Exec("DELETE FROM saved_searches WHERE id = ? AND created_by = ?", id, user)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (s *Store) RecordSearch(user, screen, search, filters string) {
	// History is best-effort; a write failure never surfaces to the caller.
	s.DB.Exec("INSERT INTO search_history (user_id, screen, search, filters) VALUES (?, ?, ?, ?)",
		user, screen, search, filters)
}

type HistoryEntry struct {
	Screen     string    `json:"screen"`
	Search     string    `json:"search"`
	Filters    string    `json:"filters"`
	SearchedAt time.Time `json:"searched_at"`
}

func (s *Store) ListHistory(user, screen string, limit int) ([]HistoryEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	query := "SELECT screen, COALESCE(search,''), COALESCE(filters,''), searched_at FROM search_history WHERE user_id = ?"
	args := []interface{}{user}
	if screen != "" {
		query += " AND screen = ?"
		args = append(args, screen)
	}
	query += " ORDER BY searched_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.DB.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []HistoryEntry
	for rows.Next() {
		var e HistoryEntry
		if err := rows.Scan(&e.Screen, &e.Search, &e.Filters, &e.SearchedAt); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Package audit records who exported or mutated what, in the dashboard's
// local store. Writes are fire-and-forget; audit failures never block the
// action they describe.
package audit

import (
	"database/sql"
	"fmt"
	"log"
	"time"

	"pitstop/internal/ws"
)

const (
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
	ActionExport = "export"
	ActionAssign = "assign"
)

type Entry struct {
	ID        int64     `json:"id"`
	Username  string    `json:"username"`
	Action    string    `json:"action"`
	Screen    string    `json:"screen"`
	RecordID  string    `json:"record_id,omitempty"`
	Summary   string    `json:"summary,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Log writes one audit row and notifies connected dashboards.
func Log(db *sql.DB, hub *ws.Hub, username, action, screen, recordID, summary string) {
	if db == nil {
		return
	}
	_, err := db.Exec(`INSERT INTO audit_log (username, action, screen, record_id, summary)
		VALUES (?, ?, ?, ?, ?)`, username, action, screen, recordID, summary)
	if err != nil {
		log.Printf("audit: write failed: %v", err)
		return
	}
	if hub != nil {
		hub.Refresh("audit", action, recordID)
	}
}

// LogExport records a data export with its format and row count.
func LogExport(db *sql.DB, hub *ws.Hub, username, screen, format string, rowCount int) {
	Log(db, hub, username, ActionExport, screen, "",
		fmt.Sprintf("Exported %d %s rows as %s", rowCount, screen, format))
}

// List returns the most recent audit entries, newest first.
func List(db *sql.DB, limit int) ([]Entry, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := db.Query(`SELECT id, COALESCE(username,''), action, screen,
		COALESCE(record_id,''), COALESCE(summary,''), created_at
		FROM audit_log ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.Username, &e.Action, &e.Screen, &e.RecordID, &e.Summary, &e.CreatedAt); err != nil {
			continue
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

package sqlite

import "database/sql"

// migrations are applied in order on every open. Statements must be
// idempotent (IF NOT EXISTS) since there is no version table yet.
var migrations = []string{
	`CREATE TABLE IF NOT EXISTS focus_sessions (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		project_name TEXT NOT NULL,
		project_description TEXT,
		mode TEXT NOT NULL,
		duration_minutes INTEGER,
		start_time TEXT NOT NULL,
		start_time_epoch INTEGER NOT NULL,
		end_time TEXT,
		end_time_epoch INTEGER,
		distractions_blocked INTEGER NOT NULL DEFAULT 0,
		created_at TEXT NOT NULL,
		created_at_epoch INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_focus_sessions_created
		ON focus_sessions(created_at_epoch DESC)`,
	// Historical log of classification results. Write-only: the
	// classifier's in-process cache never reads this back.
	`CREATE TABLE IF NOT EXISTS page_analyses (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		url TEXT NOT NULL,
		project_description TEXT NOT NULL,
		relevance_score REAL NOT NULL,
		reasoning TEXT,
		created_at TEXT NOT NULL,
		created_at_epoch INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_page_analyses_url
		ON page_analyses(url)`,
}

// runMigrations applies the schema to db.
func runMigrations(db *sql.DB) error {
	for _, stmt := range migrations {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

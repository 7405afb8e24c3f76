package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/thebtf/autofocus/pkg/models"
)

const sessionColumns = `id, project_name, project_description, mode, duration_minutes,
	start_time, start_time_epoch, end_time, end_time_epoch,
	distractions_blocked, created_at, created_at_epoch`

// SessionStore provides focus-session database operations.
type SessionStore struct {
	store *Store
}

// NewSessionStore creates a new session store.
func NewSessionStore(store *Store) *SessionStore {
	return &SessionStore{store: store}
}

// Create inserts a new focus session with start_time set to now and
// returns the stored row.
func (s *SessionStore) Create(ctx context.Context, req models.CreateSessionRequest) (*models.FocusSession, error) {
	now := time.Now()

	const query = `
		INSERT INTO focus_sessions
		(project_name, project_description, mode, duration_minutes,
		 start_time, start_time_epoch, distractions_blocked, created_at, created_at_epoch)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	result, err := s.store.ExecContext(ctx, query,
		req.ProjectName, nullStringPtr(req.ProjectDescription), string(req.Mode),
		nullInt64Ptr(req.DurationMinutes),
		now.Format(time.RFC3339Nano), now.UnixMilli(),
		req.DistractionsBlocked,
		now.Format(time.RFC3339Nano), now.UnixMilli(),
	)
	if err != nil {
		return nil, err
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, err
	}
	return s.GetByID(ctx, id)
}

// GetByID retrieves a session by id. Returns (nil, nil) when no row exists.
func (s *SessionStore) GetByID(ctx context.Context, id int64) (*models.FocusSession, error) {
	const query = `SELECT ` + sessionColumns + ` FROM focus_sessions WHERE id = ? LIMIT 1`

	sess, err := scanSession(s.store.QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return sess, nil
}

// End sets end_time on an active session. Returns false when no session
// with id has a NULL end_time: either the id is unknown or the session
// was already ended. end_time is written once and never changed after.
func (s *SessionStore) End(ctx context.Context, id int64) (bool, error) {
	now := time.Now()

	const query = `
		UPDATE focus_sessions
		SET end_time = ?, end_time_epoch = ?
		WHERE id = ? AND end_time IS NULL
	`

	result, err := s.store.ExecContext(ctx, query,
		now.Format(time.RFC3339Nano), now.UnixMilli(), id)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

// SetDistractions overwrites the distractions counter. This is a
// last-write-wins replacement, not an increment, and it succeeds
// silently when the id does not exist.
func (s *SessionStore) SetDistractions(ctx context.Context, id int64, count int64) error {
	const query = `UPDATE focus_sessions SET distractions_blocked = ? WHERE id = ?`
	_, err := s.store.ExecContext(ctx, query, count, id)
	return err
}

// List returns sessions ordered by most recent creation first.
func (s *SessionStore) List(ctx context.Context, limit, offset int) ([]*models.FocusSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM focus_sessions
		ORDER BY created_at_epoch DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := s.store.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// ListSince returns sessions created at or after since, newest first.
// Used by the weekly analytics aggregation.
func (s *SessionStore) ListSince(ctx context.Context, since time.Time) ([]*models.FocusSession, error) {
	const query = `
		SELECT ` + sessionColumns + `
		FROM focus_sessions
		WHERE created_at_epoch >= ?
		ORDER BY created_at_epoch DESC, id DESC
	`

	rows, err := s.store.QueryContext(ctx, query, since.UnixMilli())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanSessionRows(rows)
}

// scanSession scans a single session from a row scanner.
func scanSession(scanner interface{ Scan(...interface{}) error }) (*models.FocusSession, error) {
	var (
		sess         models.FocusSession
		startText    string
		startEpoch   int64
		endText      sql.NullString
		endEpoch     sql.NullInt64
		createdText  string
		createdEpoch int64
		mode         string
	)

	if err := scanner.Scan(
		&sess.ID, &sess.ProjectName, &sess.ProjectDescription, &mode,
		&sess.DurationMinutes, &startText, &startEpoch, &endText, &endEpoch,
		&sess.DistractionsBlocked, &createdText, &createdEpoch,
	); err != nil {
		return nil, err
	}

	sess.Mode = models.Mode(mode)
	sess.StartTime = parseTimestamp(startText, startEpoch)
	sess.EndTime = nullTime(endText, endEpoch)
	sess.CreatedAt = parseTimestamp(createdText, createdEpoch)
	return &sess, nil
}

// scanSessionRows scans multiple sessions from rows.
func scanSessionRows(rows *sql.Rows) ([]*models.FocusSession, error) {
	var sessions []*models.FocusSession
	for rows.Next() {
		sess, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

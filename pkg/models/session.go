// Package models contains domain models for autofocus.
package models

import (
	"database/sql"
	"encoding/json"
	"time"
)

// Mode represents the operating mode of a focus session. The classifier
// treats modes as opaque; they only affect how the extension reacts to a
// relevance score.
type Mode string

const (
	ModeNudge     Mode = "nudge"
	ModeGuardrail Mode = "guardrail"
	ModeMonk      Mode = "monk"
)

// ValidMode reports whether m is one of the known operating modes.
func ValidMode(m Mode) bool {
	switch m {
	case ModeNudge, ModeGuardrail, ModeMonk:
		return true
	}
	return false
}

// FocusSession represents a user-declared focus period under a named project.
type FocusSession struct {
	ID                  int64          `db:"id" json:"id"`
	ProjectName         string         `db:"project_name" json:"project_name"`
	ProjectDescription  sql.NullString `db:"project_description" json:"project_description,omitempty"`
	Mode                Mode           `db:"mode" json:"mode"`
	DurationMinutes     sql.NullInt64  `db:"duration_minutes" json:"duration_minutes,omitempty"`
	StartTime           time.Time      `db:"start_time" json:"start_time"`
	EndTime             sql.NullTime   `db:"end_time" json:"end_time,omitempty"`
	DistractionsBlocked int64          `db:"distractions_blocked" json:"distractions_blocked"`
	CreatedAt           time.Time      `db:"created_at" json:"created_at"`
}

// sessionJSON is the wire shape for a FocusSession. sql.Null* columns
// marshal as plain nullable fields.
type sessionJSON struct {
	ID                  int64      `json:"id"`
	ProjectName         string     `json:"project_name"`
	ProjectDescription  *string    `json:"project_description"`
	Mode                Mode       `json:"mode"`
	DurationMinutes     *int64     `json:"duration_minutes"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time"`
	DistractionsBlocked int64      `json:"distractions_blocked"`
	CreatedAt           time.Time  `json:"created_at"`
}

// MarshalJSON flattens nullable columns into nullable JSON fields.
func (s FocusSession) MarshalJSON() ([]byte, error) {
	out := sessionJSON{
		ID:                  s.ID,
		ProjectName:         s.ProjectName,
		Mode:                s.Mode,
		StartTime:           s.StartTime,
		DistractionsBlocked: s.DistractionsBlocked,
		CreatedAt:           s.CreatedAt,
	}
	if s.ProjectDescription.Valid {
		out.ProjectDescription = &s.ProjectDescription.String
	}
	if s.DurationMinutes.Valid {
		out.DurationMinutes = &s.DurationMinutes.Int64
	}
	if s.EndTime.Valid {
		out.EndTime = &s.EndTime.Time
	}
	return json.Marshal(out)
}

// UnmarshalJSON is the inverse of MarshalJSON.
func (s *FocusSession) UnmarshalJSON(data []byte) error {
	var in sessionJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}
	*s = FocusSession{
		ID:                  in.ID,
		ProjectName:         in.ProjectName,
		Mode:                in.Mode,
		StartTime:           in.StartTime,
		DistractionsBlocked: in.DistractionsBlocked,
		CreatedAt:           in.CreatedAt,
	}
	if in.ProjectDescription != nil {
		s.ProjectDescription = sql.NullString{String: *in.ProjectDescription, Valid: true}
	}
	if in.DurationMinutes != nil {
		s.DurationMinutes = sql.NullInt64{Int64: *in.DurationMinutes, Valid: true}
	}
	if in.EndTime != nil {
		s.EndTime = sql.NullTime{Time: *in.EndTime, Valid: true}
	}
	return nil
}

// Duration returns the session length. Open sessions are measured against now.
func (s *FocusSession) Duration(now time.Time) time.Duration {
	end := now
	if s.EndTime.Valid {
		end = s.EndTime.Time
	}
	return end.Sub(s.StartTime)
}

// CreateSessionRequest is the body of POST /sessions/.
type CreateSessionRequest struct {
	ProjectName         string  `json:"project_name"`
	ProjectDescription  *string `json:"project_description"`
	Mode                Mode    `json:"mode"`
	DurationMinutes     *int64  `json:"duration_minutes"`
	DistractionsBlocked int64   `json:"distractions_blocked"`
}

// WeeklyAnalytics is the response of GET /analytics/weekly.
type WeeklyAnalytics struct {
	TotalSessions            int     `json:"total_sessions"`
	TotalFocusTimeMinutes    int     `json:"total_focus_time_minutes"`
	AverageSessionLengthMins float64 `json:"average_session_length_minutes"`
	TotalDistractionsBlocked int64   `json:"total_distractions_blocked"`
	SessionsThisWeek         int     `json:"sessions_this_week"`
	FocusTimeThisWeekMinutes int     `json:"focus_time_this_week_minutes"`
}

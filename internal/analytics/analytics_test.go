package analytics

import (
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/thebtf/autofocus/pkg/models"
)

func session(start time.Time, end *time.Time, distractions int64) *models.FocusSession {
	sess := &models.FocusSession{
		ProjectName:         "test",
		Mode:                models.ModeNudge,
		StartTime:           start,
		DistractionsBlocked: distractions,
		CreatedAt:           start,
	}
	if end != nil {
		sess.EndTime = sql.NullTime{Time: *end, Valid: true}
	}
	return sess
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name     string
		sessions []*models.FocusSession
		want     models.WeeklyAnalytics
	}{
		{
			name:     "no sessions yields zeroes, not NaN",
			sessions: nil,
			want: models.WeeklyAnalytics{
				TotalSessions:            0,
				TotalFocusTimeMinutes:    0,
				AverageSessionLengthMins: 0,
				TotalDistractionsBlocked: 0,
				SessionsThisWeek:         0,
				FocusTimeThisWeekMinutes: 0,
			},
		},
		{
			name: "single closed session",
			sessions: []*models.FocusSession{
				session(now.Add(-90*time.Minute), timePtr(now.Add(-30*time.Minute)), 4),
			},
			want: models.WeeklyAnalytics{
				TotalSessions:            1,
				TotalFocusTimeMinutes:    60,
				AverageSessionLengthMins: 60,
				TotalDistractionsBlocked: 4,
				SessionsThisWeek:         1,
				FocusTimeThisWeekMinutes: 60,
			},
		},
		{
			name: "open session measured against now",
			sessions: []*models.FocusSession{
				session(now.Add(-45*time.Minute), nil, 0),
			},
			want: models.WeeklyAnalytics{
				TotalSessions:            1,
				TotalFocusTimeMinutes:    45,
				AverageSessionLengthMins: 45,
				TotalDistractionsBlocked: 0,
				SessionsThisWeek:         1,
				FocusTimeThisWeekMinutes: 45,
			},
		},
		{
			name: "mixed sessions with fractional average",
			sessions: []*models.FocusSession{
				session(now.Add(-60*time.Minute), timePtr(now.Add(-30*time.Minute)), 2),
				session(now.Add(-100*time.Minute), timePtr(now.Add(-75*time.Minute)), 3),
				session(now.Add(-10*time.Minute), nil, 1),
			},
			want: models.WeeklyAnalytics{
				TotalSessions:            3,
				TotalFocusTimeMinutes:    65,
				AverageSessionLengthMins: 21.67,
				TotalDistractionsBlocked: 6,
				SessionsThisWeek:         3,
				FocusTimeThisWeekMinutes: 65,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(tt.sessions, now)
			assert.Equal(t, tt.want, got)
		})
	}
}

// TestSummarize_WeeklyConflation pins that the this-week fields always
// equal the totals: the caller's query already filters to the trailing
// 7 days, so every row counts as this week.
func TestSummarize_WeeklyConflation(t *testing.T) {
	now := time.Now()
	sessions := []*models.FocusSession{
		session(now.Add(-2*time.Hour), timePtr(now.Add(-1*time.Hour)), 5),
		session(now.Add(-30*time.Minute), nil, 2),
	}

	got := Summarize(sessions, now)

	assert.Equal(t, got.TotalSessions, got.SessionsThisWeek)
	assert.Equal(t, got.TotalFocusTimeMinutes, got.FocusTimeThisWeekMinutes)
}

func timePtr(t time.Time) *time.Time { return &t }

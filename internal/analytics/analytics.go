// Package analytics computes aggregate statistics over focus sessions.
package analytics

import (
	"math"
	"time"

	"github.com/thebtf/autofocus/pkg/models"
)

// Summarize aggregates a slice of sessions into the weekly analytics
// response. Callers pass the trailing-7-day query result; every row is
// counted both in the totals and in the this-week fields, so the two
// sets are identical by construction. Open sessions are measured
// against now.
func Summarize(sessions []*models.FocusSession, now time.Time) models.WeeklyAnalytics {
	var (
		totalFocusMinutes float64
		totalDistractions int64
	)

	for _, sess := range sessions {
		totalFocusMinutes += sess.Duration(now).Minutes()
		totalDistractions += sess.DistractionsBlocked
	}

	count := len(sessions)
	var average float64
	if count > 0 {
		average = round2(totalFocusMinutes / float64(count))
	}

	return models.WeeklyAnalytics{
		TotalSessions:            count,
		TotalFocusTimeMinutes:    int(totalFocusMinutes),
		AverageSessionLengthMins: average,
		TotalDistractionsBlocked: totalDistractions,
		SessionsThisWeek:         count,
		FocusTimeThisWeekMinutes: int(totalFocusMinutes),
	}
}

// round2 rounds to two decimal places.
func round2(f float64) float64 {
	return math.Round(f*100) / 100
}

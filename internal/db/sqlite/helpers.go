package sqlite

import (
	"database/sql"
	"time"
)

// nullString converts a string to sql.NullString.
func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// nullStringPtr converts an optional string to sql.NullString.
func nullStringPtr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullInt64Ptr converts an optional int64 to sql.NullInt64.
func nullInt64Ptr(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}

// parseTimestamp parses an RFC3339 timestamp column, falling back to the
// epoch column when the text is unparseable.
func parseTimestamp(text string, epochMillis int64) time.Time {
	if ts, err := time.Parse(time.RFC3339Nano, text); err == nil {
		return ts
	}
	return time.UnixMilli(epochMillis)
}

// nullTime converts a nullable RFC3339 column pair to sql.NullTime.
func nullTime(text sql.NullString, epoch sql.NullInt64) sql.NullTime {
	if !text.Valid {
		return sql.NullTime{}
	}
	var millis int64
	if epoch.Valid {
		millis = epoch.Int64
	}
	return sql.NullTime{Time: parseTimestamp(text.String, millis), Valid: true}
}

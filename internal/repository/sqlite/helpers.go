package sqlite

import (
	"database/sql"
	"fmt"
	"time"
)

// timeLayout keeps sub-second precision and sorts lexically in UTC
const timeLayout = "2006-01-02T15:04:05.000000Z07:00"

// ============================================================================
// Null Type Conversion Helpers
// ============================================================================

// nullToString safely converts sql.NullString to string
func nullToString(ns sql.NullString) string {
	if ns.Valid {
		return ns.String
	}
	return ""
}

// stringToNull safely converts string to sql.NullString
func stringToNull(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

// boolToInt converts bool to the 0/1 SQLite stores
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// ============================================================================
// Time Helpers
// ============================================================================

// formatTime renders t in UTC for storage
func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

// parseTime reads a value written by formatTime
func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("failed to parse stored time %q: %w", s, err)
	}
	return t, nil
}

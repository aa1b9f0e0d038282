package utils

import (
	"time"
)

// FormatTime formats time in ISO 8601 format
func FormatTime(t time.Time) string {
	return t.Format(time.RFC3339)
}

// ParseTime parses ISO 8601 formatted time string
func ParseTime(timeStr string) (time.Time, error) {
	return time.Parse(time.RFC3339, timeStr)
}

// ParseDate parses a date-only string as used for enrollment and birth dates
func ParseDate(dateStr string) (time.Time, error) {
	return time.Parse("2006-01-02", dateStr)
}

// IsValidDate reports whether a string is a well-formed calendar date
func IsValidDate(dateStr string) bool {
	_, err := ParseDate(dateStr)
	return err == nil
}

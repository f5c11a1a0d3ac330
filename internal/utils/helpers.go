package utils

import "time"

// ParseYMD parses a YYYY-MM-DD string. The layout carries no zone, so the
// result is midnight UTC.
func ParseYMD(s string) (time.Time, error) {
	return time.Parse("2006-01-02", s)
}

// FormatYMD renders a time as its date-only form in UTC.
func FormatYMD(t time.Time) string {
	return t.UTC().Format("2006-01-02")
}

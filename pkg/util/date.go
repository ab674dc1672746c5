package util

import (
    "strconv"
    "time"
)

// ParseTime tries RFC3339, RFC3339Nano, and unix seconds. Returns (t, true) if any worked.
func ParseTime(s string) (time.Time, bool) {
    if s == "" {
        return time.Time{}, false
    }
    if t, err := time.Parse(time.RFC3339, s); err == nil {
        return t, true
    }
    if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
        return t, true
    }
    if ts, err := strconv.ParseInt(s, 10, 64); err == nil && ts > 0 {
        return time.Unix(ts, 0), true
    }
    return time.Time{}, false
}

// ParseTimeDefault parses time or returns default if empty/invalid.
func ParseTimeDefault(s string, def time.Time) time.Time {
    if t, ok := ParseTime(s); ok {
        return t
    }
    return def
}

const dayLayout = "2006-01-02"

// ParseDay parses a calendar date like "2024-10-10". Returns (t, true) if it worked.
func ParseDay(s string) (time.Time, bool) {
    t, err := time.Parse(dayLayout, s)
    if err != nil {
        return time.Time{}, false
    }
    return t, true
}

// FormatDay renders a time as a calendar date.
func FormatDay(t time.Time) string {
    return t.Format(dayLayout)
}

// No extra helpers here; use strconv where needed.
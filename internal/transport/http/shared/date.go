package shared

import (
	"strings"
	"time"
)

// ParseDate accepts RFC3339 or YYYY-MM-DD.
func ParseDate(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	if parsed, err := time.Parse(time.RFC3339, value); err == nil {
		return parsed, nil
	}
	return time.Parse("2006-01-02", value)
}

// DayParam reads a YYYY-MM-DD query parameter, falling back to def when absent.
// The returned value is canonical.
func (v *Validator) DayParam(field, raw, def string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	parsed, ok := v.Date(field, raw)
	if !ok {
		return ""
	}
	return parsed.Format("2006-01-02")
}

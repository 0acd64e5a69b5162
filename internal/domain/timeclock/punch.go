package timeclock

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
	"time"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// Punch is one recorded clock event. Values are immutable once ingested.
type Punch struct {
	ID         string    `json:"id"`
	EmployeeID string    `json:"employeeId"`
	Kind       Kind      `json:"kind"`
	At         time.Time `json:"at"`
}

// Date is the calendar day of the punch in the location it was ingested with.
func (p Punch) Date() string {
	return p.At.Format(DateLayout)
}

func (p Punch) Clock() string {
	return p.At.Format(TimeLayout)
}

// Record is the loosely typed shape punches arrive in from storage, files or
// API payloads. At wins over Timestamp when both are present.
type Record struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Kind       string     `json:"kind"`
	At         *time.Time `json:"at,omitempty"`
	Timestamp  string     `json:"timestamp,omitempty"`
}

// UnmarshalJSON accepts any "at" value. Text that is not an RFC3339 instant is
// moved to Timestamp when that is empty, so ingestion skips the record instead
// of the whole batch failing to decode.
func (r *Record) UnmarshalJSON(data []byte) error {
	type plain Record
	var raw struct {
		plain
		At json.RawMessage `json:"at,omitempty"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*r = Record(raw.plain)
	r.At = nil

	text := strings.TrimSpace(string(raw.At))
	if text == "" || text == "null" {
		return nil
	}
	var value string
	if err := json.Unmarshal(raw.At, &value); err != nil {
		value = text
	}
	if at, err := time.Parse(time.RFC3339Nano, strings.TrimSpace(value)); err == nil {
		r.At = &at
		return nil
	}
	if strings.TrimSpace(r.Timestamp) == "" {
		r.Timestamp = value
	}
	return nil
}

// Skipped describes a record dropped during ingestion.
type Skipped struct {
	Record Record
	Err    error
}

var instantLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
}

var localLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04",
}

var clockLayouts = []string{
	"15:04:05",
	"15:04",
}

// ParseTimestamp turns a punch time into an instant in loc. A bare HH:MM[:SS]
// value is placed on today's date, so a shift crossing midnight cannot be
// represented that way.
func ParseTimestamp(raw string, loc *time.Location, today time.Time) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty value", ErrUnparseableTimestamp)
	}
	if loc == nil {
		loc = time.UTC
	}
	for _, layout := range instantLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.In(loc), nil
		}
	}
	for _, layout := range localLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			return parsed, nil
		}
	}
	for _, layout := range clockLayouts {
		if parsed, err := time.ParseInLocation(layout, value, loc); err == nil {
			day := today.In(loc)
			return time.Date(day.Year(), day.Month(), day.Day(), parsed.Hour(), parsed.Minute(), parsed.Second(), 0, loc), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrUnparseableTimestamp, value)
}

// NewPunch validates a single record.
func NewPunch(rec Record, loc *time.Location, today time.Time) (Punch, error) {
	kind, ok := ParseKind(rec.Kind)
	if !ok {
		return Punch{}, &UnknownKindError{Value: rec.Kind}
	}
	if loc == nil {
		loc = time.UTC
	}

	var at time.Time
	if rec.At != nil && !rec.At.IsZero() {
		at = rec.At.In(loc)
	} else {
		parsed, err := ParseTimestamp(rec.Timestamp, loc, today)
		if err != nil {
			return Punch{}, err
		}
		at = parsed
	}

	return Punch{
		ID:         rec.ID,
		EmployeeID: rec.EmployeeID,
		Kind:       kind,
		At:         at,
	}, nil
}

// Ingest converts records to punches, keeping input order. Records with an
// unknown kind or an unparseable time are returned in skipped instead of
// failing the batch.
func Ingest(records []Record, loc *time.Location, today time.Time) ([]Punch, []Skipped) {
	punches := make([]Punch, 0, len(records))
	var skipped []Skipped
	for _, rec := range records {
		punch, err := NewPunch(rec, loc, today)
		if err != nil {
			skipped = append(skipped, Skipped{Record: rec, Err: err})
			continue
		}
		punches = append(punches, punch)
	}
	return punches, skipped
}

// Chronological returns a copy ordered oldest first. Input may be in either
// chronological or reverse-chronological order, decided by comparing the first
// and last punch. When those share an instant the input is read as
// chronological, so callers holding a most-recent-first list of equal instants
// must reverse it themselves. Equal instants keep their input position.
func Chronological(punches []Punch) []Punch {
	out := slices.Clone(punches)
	if len(out) > 1 && out[0].At.After(out[len(out)-1].At) {
		slices.Reverse(out)
	}
	slices.SortStableFunc(out, func(a, b Punch) int {
		return a.At.Compare(b.At)
	})
	return out
}

// MostRecentFirst is the ordering used by the dashboard: index 0 is the latest punch.
func MostRecentFirst(punches []Punch) []Punch {
	out := Chronological(punches)
	slices.Reverse(out)
	return out
}

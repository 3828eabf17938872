package models

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// timestampLayouts are tried in order when parsing server timestamps.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Timestamp keeps the server's original string alongside its parsed time.
// Values the server sends in an unrecognized format stay usable: Raw is
// preserved and Valid is false.
type Timestamp struct {
	Raw   string
	Time  time.Time
	Valid bool
}

// ParseTimestamp parses s using the supported ISO-8601 layouts.
func ParseTimestamp(s string) Timestamp {
	ts := Timestamp{Raw: s}
	trimmed := strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			ts.Time = t
			ts.Valid = true
			break
		}
	}
	return ts
}

// String returns the raw server value.
func (t Timestamp) String() string {
	return t.Raw
}

// Compare orders timestamps chronologically when both parse, and by raw
// string otherwise. Parsed values sort before unparsed ones.
func (t Timestamp) Compare(other Timestamp) int {
	switch {
	case t.Valid && other.Valid:
		return t.Time.Compare(other.Time)
	case t.Valid:
		return -1
	case other.Valid:
		return 1
	default:
		return strings.Compare(t.Raw, other.Raw)
	}
}

// MarshalJSON writes the raw server string.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.Raw)
}

// UnmarshalJSON accepts only a JSON string.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}
	*t = ParseTimestamp(s)
	return nil
}

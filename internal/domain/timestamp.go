package domain

import (
	"encoding/json"
	"fmt"
	"time"
)

// Timestamp is a time.Time that decodes from either an RFC 3339 timestamp or
// a YYYY-MM-DD date. A bare date is midnight UTC.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", err)
	}

	if d, err := time.ParseInLocation(time.DateOnly, s, time.UTC); err == nil {
		ts.Time = d
		return nil
	}

	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("timestamp %q is neither RFC 3339 nor YYYY-MM-DD", s)
	}
	ts.Time = t
	return nil
}

// Ptr returns a pointer to the wrapped time, or nil for a nil Timestamp.
func (ts *Timestamp) Ptr() *time.Time {
	if ts == nil {
		return nil
	}
	t := ts.Time
	return &t
}

package api

import (
	"bytes"
	"encoding/json"
	"time"
)

// The backend emits Python isoformat timestamps, with or without an offset.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

// ParseTimestamp parses a backend timestamp. Naive timestamps are read as UTC.
// Returns the zero time for empty or unparseable input.
func ParseTimestamp(val string) time.Time {
	if val == "" {
		return time.Time{}
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, val); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Timestamp is a time.Time that decodes any backend timestamp format and null.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler. Unknown formats decode to the zero time.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if bytes.Equal(data, []byte("null")) {
		t.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	t.Time = ParseTimestamp(s)
	return nil
}

// MarshalJSON implements json.Marshaler. The zero time encodes as null.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	if t.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(t.Format(time.RFC3339Nano))
}

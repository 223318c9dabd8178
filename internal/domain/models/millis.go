// internal/domain/models/millis.go
package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// Millis is an epoch-millisecond timestamp as stored by the backend
// (creationDate, dateCreation). Zero means "not set".
type Millis int64

// MillisOf converts t to Millis.
func MillisOf(t time.Time) Millis {
	return Millis(t.UnixMilli())
}

// Time returns the timestamp as a UTC time.
func (m Millis) Time() time.Time {
	return time.UnixMilli(int64(m)).UTC()
}

// IsZero reports whether the timestamp is unset.
func (m Millis) IsZero() bool {
	return m == 0
}

// Date formats the timestamp as YYYY-MM-DD, or "N/A" when unset.
func (m Millis) Date() string {
	if m == 0 {
		return "N/A"
	}
	return m.Time().Format("2006-01-02")
}

// UnmarshalJSON accepts a number, a numeric string, or null.
func (m *Millis) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*m = 0
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			*m = 0
			return nil
		}
		data = []byte(s)
	}
	n, err := strconv.ParseFloat(string(data), 64)
	if err != nil {
		return fmt.Errorf("models: invalid timestamp %q", data)
	}
	*m = Millis(int64(n))
	return nil
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// DateTimeLayout is the wire format for every date on the API surface.
const DateTimeLayout = "2006-01-02 15:04:05"

// ParseDateTime parses s in DateTimeLayout in the server's local zone.
func ParseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation(DateTimeLayout, s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q must match %q", s, DateTimeLayout)
	}
	return t, nil
}

// FormatDateTime renders t in DateTimeLayout.
func FormatDateTime(t time.Time) string {
	return t.In(time.Local).Format(DateTimeLayout)
}

// DateTime is a time.Time that encodes as DateTimeLayout in JSON.
// The zero value encodes as null.
type DateTime struct {
	time.Time
}

// NewDateTime wraps t.
func NewDateTime(t time.Time) DateTime { return DateTime{Time: t} }

// DateTimePtr wraps t, returning nil for a nil t.
func DateTimePtr(t *time.Time) *DateTime {
	if t == nil {
		return nil
	}
	d := NewDateTime(*t)
	return &d
}

func (d DateTime) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(FormatDateTime(d.Time))
}

func (d *DateTime) UnmarshalJSON(b []byte) error {
	if bytes.Equal(b, []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	t, err := ParseDateTime(s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// Package dateval provides a value type that is either a calendar date
// (YYYY-MM-DD) or a date with time. The variant found in the source text is
// preserved: a date-only value is never promoted to a datetime on write.
package dateval

import (
	"encoding/json"
	"fmt"
	"time"

	"go.yaml.in/yaml/v3"
)

const (
	dateFormat     = "2006-01-02"
	dateTimeFormat = "2006-01-02T15:04"
)

// Additional datetime layouts accepted on input. Output always uses
// dateTimeFormat for datetime values.
var dateTimeInputFormats = []string{
	dateTimeFormat,
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
}

// Value represents a date-only or date-with-time value.
// The zero Value means "absent".
type Value struct {
	t       time.Time
	hasTime bool
}

// Date creates a date-only Value.
func Date(year int, month time.Month, day int) Value {
	return Value{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// At creates a date-with-time Value, truncated to minute precision.
func At(t time.Time) Value {
	return Value{t: t.Truncate(time.Minute), hasTime: true}
}

// Now returns the current moment as a date-with-time Value.
func Now() Value {
	return At(time.Now())
}

// Today returns the current day as a date-only Value.
func Today() Value {
	now := time.Now()
	return Date(now.Year(), now.Month(), now.Day())
}

// Parse parses a date or datetime string. The variant is determined by the
// input: YYYY-MM-DD yields a date-only value, anything longer a datetime.
func Parse(s string) (Value, error) {
	if t, err := time.Parse(dateFormat, s); err == nil {
		return Value{t: t}, nil
	}
	for _, layout := range dateTimeInputFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return Value{t: t.Truncate(time.Minute), hasTime: true}, nil
		}
	}
	return Value{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD or YYYY-MM-DDTHH:MM", s)
}

// IsZero reports whether the value is absent.
func (v Value) IsZero() bool {
	return v.t.IsZero()
}

// HasTime reports whether the value carries a time component.
func (v Value) HasTime() bool {
	return v.hasTime
}

// Time returns the underlying time. Date-only values are at midnight UTC.
func (v Value) Time() time.Time {
	return v.t
}

// CompareDate compares only the date components of two values, ignoring any
// time component. Returns -1, 0, or +1.
func (v Value) CompareDate(o Value) int {
	a := v.t.Format(dateFormat)
	b := o.t.Format(dateFormat)
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// String returns the variant-appropriate textual form.
func (v Value) String() string {
	if v.hasTime {
		return v.t.Format(dateTimeFormat)
	}
	return v.t.Format(dateFormat)
}

// MarshalYAML implements yaml.Marshaler.
func (v Value) MarshalYAML() (interface{}, error) {
	return v.String(), nil
}

// UnmarshalYAML implements yaml.v3 Unmarshaler. Null and empty nodes decode
// to the zero (absent) value.
func (v *Value) UnmarshalYAML(node *yaml.Node) error {
	if node.Tag == "!!null" || node.Value == "" {
		*v = Value{}
		return nil
	}
	parsed, err := Parse(node.Value)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// MarshalJSON implements json.Marshaler.
func (v Value) MarshalJSON() ([]byte, error) {
	if v.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(v.String())
}

// UnmarshalJSON implements json.Unmarshaler.
func (v *Value) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil {
		*v = Value{}
		return nil
	}
	parsed, err := Parse(*s)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

package model

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"strings"
)

// Range is a half-open numeric interval used for weight and height.
//
// It is stored as text in the form "[min,max)" and travels as JSON
// {"minimum": .., "maximum": ..}.
type Range struct {
	Minimum float64 `json:"minimum" yaml:"minimum"`
	Maximum float64 `json:"maximum" yaml:"maximum"`
}

// String renders r in its storage form.
func (r Range) String() string {
	return "[" + strconv.FormatFloat(r.Minimum, 'f', -1, 64) + "," +
		strconv.FormatFloat(r.Maximum, 'f', -1, 64) + ")"
}

// ParseRange is the inverse of String.
func ParseRange(s string) (Range, error) {
	s = strings.TrimSpace(s)
	if len(s) < 5 || s[0] != '[' || s[len(s)-1] != ')' {
		return Range{}, fmt.Errorf("model: malformed range %q", s)
	}

	lo, hi, ok := strings.Cut(s[1:len(s)-1], ",")
	if !ok {
		return Range{}, fmt.Errorf("model: malformed range %q", s)
	}

	minimum, err := strconv.ParseFloat(strings.TrimSpace(lo), 64)
	if err != nil {
		return Range{}, fmt.Errorf("model: range minimum %q: %w", lo, err)
	}
	maximum, err := strconv.ParseFloat(strings.TrimSpace(hi), 64)
	if err != nil {
		return Range{}, fmt.Errorf("model: range maximum %q: %w", hi, err)
	}
	if maximum < minimum {
		return Range{}, fmt.Errorf("model: range %q has maximum below minimum", s)
	}

	return Range{Minimum: minimum, Maximum: maximum}, nil
}

// Value implements driver.Valuer.
func (r Range) Value() (driver.Value, error) {
	return r.String(), nil
}

// Scan implements sql.Scanner.
func (r *Range) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*r = Range{}
		return nil
	default:
		return fmt.Errorf("model: cannot scan %T into Range", src)
	}

	parsed, err := ParseRange(s)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// HTML forms post numbers as strings. Number and Whole decode from a JSON
// number, a numeric string ("180", " 75.5 ") or an empty string, which is 0.
// null leaves the value untouched, like encoding/json does for float64.

// Number is a float attribute such as height or weight.
type Number float64

func (n *Number) UnmarshalJSON(b []byte) error {
	f, err := parseNumber(b)
	if err != nil {
		return err
	}
	if f != nil {
		*n = Number(*f)
	}
	return nil
}

// Whole is an integer attribute such as years of experience. "3.0" is
// accepted, "2.5" is not.
type Whole int

func (w *Whole) UnmarshalJSON(b []byte) error {
	f, err := parseNumber(b)
	if err != nil {
		return err
	}
	if f == nil {
		return nil
	}
	if *f != math.Trunc(*f) || math.Abs(*f) > math.MaxInt32 {
		return fmt.Errorf("model: %s is not a whole number", b)
	}
	*w = Whole(*f)
	return nil
}

// parseNumber returns nil for null.
func parseNumber(b []byte) (*float64, error) {
	b = bytes.TrimSpace(b)
	if bytes.Equal(b, []byte("null")) {
		return nil, nil
	}

	raw := string(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil, err
		}
		raw = strings.TrimSpace(s)
		if raw == "" {
			zero := 0.0
			return &zero, nil
		}
	}

	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil, fmt.Errorf("model: %q is not a number", raw)
	}
	return &f, nil
}

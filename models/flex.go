package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var ErrInvalidNumber = errors.New("invalid number")

// FlexFloat decodes from a JSON number or a numeric string. Form clients send
// numbers as strings; the stored value is always a number.
type FlexFloat float64

func (f *FlexFloat) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := ParseNumber(s)
		if err != nil {
			return err
		}
		*f = FlexFloat(v)
		return nil
	}
	var v float64
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("%w %s", ErrInvalidNumber, b)
	}
	*f = FlexFloat(v)
	return nil
}

// FlexBool decodes from a JSON bool or the strings "true"/"false".
type FlexBool bool

func (f *FlexBool) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		v, err := strconv.ParseBool(strings.TrimSpace(s))
		if err != nil {
			return fmt.Errorf("invalid boolean %q", s)
		}
		*f = FlexBool(v)
		return nil
	}
	var v bool
	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("invalid boolean %s", b)
	}
	*f = FlexBool(v)
	return nil
}

// ParseNumber parses a form value into a finite, non-negative number.
func ParseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("%w %q", ErrInvalidNumber, s)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("%w %q", ErrInvalidNumber, s)
	}
	return v, nil
}

// Valid reports whether f is finite and non-negative.
func (f FlexFloat) Valid() bool {
	v := float64(f)
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

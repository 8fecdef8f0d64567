// Package loose provides JSON scalar types that accept whatever the upstream
// page happens to send and never fail to decode.
//
// Scraped payloads are not under our control: the same field is a number on one
// page and a quoted number on the next. Decoding into these types keeps the rest
// of the document usable and reports the value as unset when it cannot be read.
package loose

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

var null = []byte("null")

// String holds a JSON string, or the display text of a JSON number or bool.
//
// Numbers render the way the history files have always carried them: integers
// keep their digits, other numbers use the shortest round-trip form with a
// trailing ".0" on whole values, so 1.50 reads "1.5" and 1e2 reads "100.0".
// Booleans render as "True" and "False".
type String struct {
	Value string
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (s *String) UnmarshalJSON(data []byte) error {
	*s = String{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return nil
	}

	switch data[0] {
	case '"':
		var v string
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = String{Value: v, Set: true}
	case '{', '[':
		// Containers have no scalar text.
	case 't', 'f':
		var v bool
		if err := json.Unmarshal(data, &v); err != nil {
			return nil
		}
		*s = String{Value: "False", Set: true}
		if v {
			s.Value = "True"
		}
	default:
		if text, ok := numberText(data); ok {
			*s = String{Value: text, Set: true}
		}
	}
	return nil
}

// numberText renders a JSON number literal. Integer literals keep their digits;
// any literal with a fraction or exponent is treated as a float64.
func numberText(data []byte) (string, bool) {
	text := string(data)
	if !strings.ContainsAny(text, ".eE") {
		if _, err := strconv.ParseInt(text, 10, 64); err != nil {
			var n json.Number
			if json.Unmarshal(data, &n) != nil {
				return "", false
			}
		}
		if text == "-0" {
			return "0", true
		}
		return text, true
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return "", false
	}
	return FormatFloat(v), true
}

// FormatFloat renders v with the fewest digits that round-trip. Exponents
// below -4 or from 16 up use scientific notation ("1e-05", "1e+16"); fixed
// notation always carries a fraction ("100.0").
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "inf"
	case math.IsInf(v, -1):
		return "-inf"
	case math.IsNaN(v):
		return "nan"
	}

	sci := strconv.FormatFloat(v, 'e', -1, 64)
	mant, expText, _ := strings.Cut(sci, "e")
	exp, _ := strconv.Atoi(expText)
	if exp < -4 || exp >= 16 {
		return fmt.Sprintf("%se%+03d", mant, exp)
	}

	fixed := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(fixed, ".") {
		fixed += ".0"
	}
	return fixed
}

// Or returns the value, or def when unset.
func (s String) Or(def string) string {
	if !s.Set {
		return def
	}
	return s.Value
}

// Float holds a JSON number or a quoted number.
type Float struct {
	Value float64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (f *Float) UnmarshalJSON(data []byte) error {
	*f = Float{}
	v, ok := parseNumber(data)
	if !ok {
		return nil
	}
	*f = Float{Value: v, Set: true}
	return nil
}

// Or returns the value, or def when unset.
func (f Float) Or(def float64) float64 {
	if !f.Set {
		return def
	}
	return f.Value
}

// Int holds a JSON number or quoted number truncated toward zero.
type Int struct {
	Value int64
	Set   bool
}

// UnmarshalJSON implements json.Unmarshaler.
func (i *Int) UnmarshalJSON(data []byte) error {
	*i = Int{}
	v, ok := parseNumber(data)
	if !ok || math.IsInf(v, 0) || v >= math.MaxInt64 || v <= math.MinInt64 {
		return nil
	}
	*i = Int{Value: int64(v), Set: true}
	return nil
}

// Or returns the value, or def when unset.
func (i Int) Or(def int64) int64 {
	if !i.Set {
		return def
	}
	return i.Value
}

func parseNumber(data []byte) (float64, bool) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, null) {
		return 0, false
	}

	text := string(data)
	if data[0] == '"' {
		if err := json.Unmarshal(data, &text); err != nil {
			return 0, false
		}
		text = strings.TrimSpace(text)
	}

	v, err := strconv.ParseFloat(text, 64)
	if err != nil || math.IsNaN(v) {
		return 0, false
	}
	return v, true
}

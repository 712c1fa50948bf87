package models

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
)

// Number is a float that also decodes from loosely formatted strings such
// as "~350 kcal" or "25g", which generative models emit for estimates.
type Number float64

// UnmarshalJSON implements json.Unmarshaler
func (n *Number) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	if data[0] != '"' {
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return err
		}
		*n = Number(f)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if f, ok := leadingNumber(s); ok {
		*n = Number(f)
	}
	return nil
}

// leadingNumber parses the first run of digits (with an optional decimal
// point) found in s.
func leadingNumber(s string) (float64, bool) {
	start := strings.IndexAny(s, "0123456789")
	if start == -1 {
		return 0, false
	}
	end := start
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	f, err := strconv.ParseFloat(strings.TrimSuffix(s[start:end], "."), 64)
	if err != nil {
		return 0, false
	}
	return f, true
}

// Text is a string that also accepts a bare JSON number, e.g. "prepTime": 15.
type Text string

// UnmarshalJSON implements json.Unmarshaler
func (t *Text) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*t = Text(s)
		return nil
	}
	*t = Text(string(data))
	return nil
}

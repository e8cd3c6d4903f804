package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexNumber holds a season or episode number exactly as TVMaze sent it.
// TVMaze mostly sends integers, occasionally strings such as "Special", and null
// for episodes without a number. The zero value is null.
type FlexNumber struct {
	text   string
	quoted bool
	valid  bool
}

// IntNumber returns the value TVMaze sends as the JSON integer n
func IntNumber(n int) FlexNumber {
	return FlexNumber{text: strconv.Itoa(n), valid: true}
}

// TextNumber returns the value TVMaze sends as the JSON string s
func TextNumber(s string) FlexNumber {
	return FlexNumber{text: s, quoted: true, valid: true}
}

// UnmarshalJSON implements json.Unmarshaler interface
func (f *FlexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return fmt.Errorf("empty JSON value for season/number field")
	}

	switch data[0] {
	case 'n':
		*f = FlexNumber{}
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = TextNumber(s)
	case '{', '[':
		return fmt.Errorf("unsupported JSON value %s for season/number field", data)
	default:
		// numbers and booleans keep their literal form
		*f = FlexNumber{text: string(data), valid: true}
	}
	return nil
}

// MarshalJSON writes the value back in the form it was received
func (f FlexNumber) MarshalJSON() ([]byte, error) {
	switch {
	case !f.valid:
		return []byte("null"), nil
	case f.quoted:
		return json.Marshal(f.text)
	}
	return []byte(f.text), nil
}

// IsNull reports whether TVMaze sent null or omitted the field
func (f FlexNumber) IsNull() bool {
	return !f.valid
}

// String returns the value as received, or an empty string for null
func (f FlexNumber) String() string {
	return f.text
}

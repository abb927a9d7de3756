// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ID is an identifier that may arrive as a JSON number or string.
// Compare ids with Key or Equal, never with ==.
type ID string

// ParseID normalizes a loosely typed value into an ID.
// Non-finite or fractional numbers and unsupported types yield the zero ID.
func ParseID(v any) ID {
	switch t := v.(type) {
	case nil:
		return ""
	case ID:
		return ID(strings.TrimSpace(string(t)))
	case string:
		return ID(strings.TrimSpace(t))
	case int:
		return ID(strconv.Itoa(t))
	case int64:
		return ID(strconv.FormatInt(t, 10))
	case json.Number:
		return ParseID(string(t))
	case float64:
		if math.IsNaN(t) || math.IsInf(t, 0) || t != math.Trunc(t) {
			return ""
		}
		if math.Abs(t) < 1<<63 {
			return ID(strconv.FormatInt(int64(t), 10))
		}
		return ID(strconv.FormatFloat(t, 'f', 0, 64))
	}
	return ""
}

// Key is the normalized comparison form. Empty means no id.
func (id ID) Key() string {
	return strings.TrimSpace(string(id))
}

// IsZero reports whether the id is absent.
func (id ID) IsZero() bool {
	return id.Key() == ""
}

// Equal compares two ids by their normalized key. Absent ids are never equal.
func (id ID) Equal(other ID) bool {
	k := id.Key()
	return k != "" && k == other.Key()
}

func (id ID) String() string {
	return id.Key()
}

// MarshalJSON writes the id as a string, or null when absent.
func (id ID) MarshalJSON() ([]byte, error) {
	if id.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(id.Key())
}

// UnmarshalJSON accepts strings, numbers and null.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ParseID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("invalid id %s: %w", data, err)
	}
	if _, err := n.Int64(); err != nil {
		f, ferr := n.Float64()
		if ferr != nil {
			return fmt.Errorf("invalid id %s: %w", data, err)
		}
		*id = ParseID(f)
		return nil
	}
	*id = ID(n.String())
	return nil
}

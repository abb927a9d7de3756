// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"math"
	"testing"
)

func TestParseID(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want ID
	}{
		{"string", " 42 ", "42"},
		{"int", 42, "42"},
		{"int64", int64(-7), "-7"},
		{"whole float", float64(42), "42"},
		{"fractional float", 4.5, ""},
		{"nan", math.NaN(), ""},
		{"infinity", math.Inf(1), ""},
		{"large float", 1e20, "100000000000000000000"},
		{"large negative float", -1e20, "-100000000000000000000"},
		{"json number", json.Number("9"), "9"},
		{"unsupported", true, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseID(tt.in); got != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, got)
			}
		})
	}
}

func TestIDUnmarshalLargeNumber(t *testing.T) {
	var id ID
	if err := json.Unmarshal([]byte("1e20"), &id); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if id != "100000000000000000000" {
		t.Errorf("Expected 100000000000000000000, got %q", id)
	}
	if !ID("5").Equal(ParseID(5.0)) {
		t.Error("Expected float and string ids to compare equal")
	}
}

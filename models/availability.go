// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Availability is a participant's answer for one option.
// None means nothing was chosen and is never stored remotely.
type Availability int

const (
	None Availability = iota
	Yes
	Maybe
	No
)

// availabilityCycle is the click order of the vote grid.
var availabilityCycle = [...]Availability{None, Yes, Maybe, No}

// Next returns the following state in the None → Yes → Maybe → No cycle.
func (a Availability) Next() Availability {
	for i, v := range availabilityCycle {
		if v == a {
			return availabilityCycle[(i+1)%len(availabilityCycle)]
		}
	}
	return Yes
}

// IsPositive reports whether the answer counts toward a submittable vote.
func (a Availability) IsPositive() bool {
	return a == Yes || a == Maybe
}

func (a Availability) String() string {
	switch a {
	case Yes:
		return "yes"
	case Maybe:
		return "maybe"
	case No:
		return "no"
	}
	return ""
}

// ParseAvailability converts a wire value. The empty string is None.
func ParseAvailability(s string) (Availability, error) {
	switch s {
	case "":
		return None, nil
	case "yes":
		return Yes, nil
	case "maybe":
		return Maybe, nil
	case "no":
		return No, nil
	}
	return None, fmt.Errorf("unknown availability %q", s)
}

func (a Availability) MarshalJSON() ([]byte, error) {
	if a == None {
		return []byte("null"), nil
	}
	return json.Marshal(a.String())
}

func (a *Availability) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*a = None
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := ParseAvailability(s)
	if err != nil {
		return err
	}
	*a = v
	return nil
}

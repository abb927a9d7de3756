// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Timezone is one entry of the fixed-offset picker.
type Timezone struct {
	Zone   string
	Offset string
	Cities []string
}

// Timezones is the picker catalog. The first entry is the default.
var Timezones = []Timezone{
	{Zone: "Europe/Moscow", Offset: "UTC+03:00", Cities: []string{"Moscow (GMT+3)"}},
}

// DefaultTimezone is the zone used when none is chosen.
var DefaultTimezone = Timezones[0].Zone

// fold lowercases s and strips diacritics.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

// FilterTimezones returns catalog entries whose zone or city contains query.
func FilterTimezones(query string) []Timezone {
	q := fold(strings.TrimSpace(query))
	if q == "" {
		return Timezones
	}
	var out []Timezone
	for _, tz := range Timezones {
		if strings.Contains(fold(tz.Zone), q) {
			out = append(out, tz)
			continue
		}
		for _, city := range tz.Cities {
			if strings.Contains(fold(city), q) {
				out = append(out, tz)
				break
			}
		}
	}
	return out
}

// TimezoneLabel returns the display label for zone.
func TimezoneLabel(zone string) string {
	for _, tz := range Timezones {
		if tz.Zone == zone && len(tz.Cities) > 0 {
			return tz.Cities[0]
		}
	}
	return zone
}

// SanitizeTimezone returns zone when it is in the catalog, else the default.
func SanitizeTimezone(zone string) string {
	for _, tz := range Timezones {
		if tz.Zone == zone {
			return zone
		}
	}
	return DefaultTimezone
}

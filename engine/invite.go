// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"net/url"
	"strings"
)

// InvitePrefix marks a start parameter as a poll invite.
const InvitePrefix = "poll:"

// SanitizeShareCode keeps ASCII letters and digits, upper-cased.
func SanitizeShareCode(code string) string {
	var b strings.Builder
	for _, r := range code {
		switch {
		case r >= '0' && r <= '9', r >= 'A' && r <= 'Z':
			b.WriteRune(r)
		case r >= 'a' && r <= 'z':
			b.WriteRune(r - 'a' + 'A')
		}
	}
	return b.String()
}

// SanitizeBotUsername strips a leading @ and anything outside [0-9a-z_].
func SanitizeBotUsername(name string) string {
	name = strings.TrimPrefix(strings.TrimSpace(name), "@")
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		if (r >= '0' && r <= '9') || (r >= 'a' && r <= 'z') || r == '_' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseInvite extracts the share code from a launch start parameter.
// The parameter may be URL-encoded and may carry the "poll:" prefix.
func ParseInvite(startParam string) string {
	raw := strings.TrimSpace(startParam)
	if raw == "" {
		return ""
	}
	if decoded, err := url.QueryUnescape(raw); err == nil {
		raw = decoded
	}
	if strings.HasPrefix(strings.ToLower(raw), InvitePrefix) {
		raw = raw[len(InvitePrefix):]
	}
	return SanitizeShareCode(raw)
}

// InviteLink returns the deep link that opens the mini-app on a poll.
// It is empty when either the bot or the code is missing.
func InviteLink(botUsername, shareCode string) string {
	bot := SanitizeBotUsername(botUsername)
	code := SanitizeShareCode(shareCode)
	if bot == "" || code == "" {
		return ""
	}
	return "https://t.me/" + bot + "?startapp=" + InvitePrefix + code
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/hibeautyss/tma-clean/models"
)

var (
	ErrMissingHash     = errors.New("init data has no hash")
	ErrInvalidInitData = errors.New("init data signature mismatch")
	ErrInitDataExpired = errors.New("init data expired")
)

// webAppKey is the HMAC key that derives the signing secret from a bot token.
const webAppKey = "WebAppData"

// shareCodeChars leaves out 0, 1, I and O.
const shareCodeChars = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// ShareCodeLength is the length of generated share codes.
const ShareCodeLength = 6

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateShareCode creates a random upper-case code of n characters.
func GenerateShareCode(n int) (string, error) {
	if n <= 0 {
		n = ShareCodeLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate share code: %w", err)
	}
	for i := range b {
		// 256 is a multiple of 32, so every character is equally likely.
		b[i] = shareCodeChars[int(b[i])%len(shareCodeChars)]
	}
	return string(b), nil
}

// InitData is the launch payload handed to the mini-app by the chat client.
type InitData struct {
	User       *models.User
	StartParam string
	QueryID    string
	AuthDate   time.Time
	Hash       string
}

// initUser mirrors the user JSON inside init data. The id is numeric on the
// wire.
type initUser struct {
	ID        json.Number `json:"id"`
	Username  string      `json:"username"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
}

// ParseInitData decodes raw init data without checking its signature.
func ParseInitData(raw string) (InitData, error) {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return InitData{}, fmt.Errorf("failed to parse init data: %w", err)
	}
	data := InitData{
		StartParam: values.Get("start_param"),
		QueryID:    values.Get("query_id"),
		Hash:       values.Get("hash"),
	}
	if s := values.Get("auth_date"); s != "" {
		sec, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return InitData{}, fmt.Errorf("invalid auth_date %q: %w", s, err)
		}
		data.AuthDate = time.Unix(sec, 0).UTC()
	}
	if s := values.Get("user"); s != "" {
		var u initUser
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		if err := dec.Decode(&u); err != nil {
			return InitData{}, fmt.Errorf("invalid init data user: %w", err)
		}
		data.User = &models.User{
			ID:        models.ParseID(string(u.ID)),
			Username:  u.Username,
			FirstName: u.FirstName,
			LastName:  u.LastName,
		}
	}
	return data, nil
}

// secretKey derives the signing key for botToken.
func secretKey(botToken string) []byte {
	h := hmac.New(sha256.New, []byte(webAppKey))
	h.Write([]byte(botToken))
	return h.Sum(nil)
}

// dataCheckString joins every field except hash as sorted key=value lines.
func dataCheckString(values url.Values) string {
	keys := make([]string, 0, len(values))
	for k := range values {
		if k != "hash" {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	lines := make([]string, 0, len(keys))
	for _, k := range keys {
		lines = append(lines, k+"="+values.Get(k))
	}
	return strings.Join(lines, "\n")
}

// Sign returns the hex hash the chat client would attach to values.
func Sign(values url.Values, botToken string) string {
	h := hmac.New(sha256.New, secretKey(botToken))
	h.Write([]byte(dataCheckString(values)))
	return hex.EncodeToString(h.Sum(nil))
}

// VerifyInitData checks the signature of raw against botToken and parses it.
// maxAge of zero skips the freshness check.
func VerifyInitData(raw, botToken string, maxAge time.Duration, now time.Time) (InitData, error) {
	values, err := url.ParseQuery(strings.TrimSpace(raw))
	if err != nil {
		return InitData{}, fmt.Errorf("failed to parse init data: %w", err)
	}
	hash := values.Get("hash")
	if hash == "" {
		return InitData{}, ErrMissingHash
	}
	expected := Sign(values, botToken)
	if !hmac.Equal([]byte(strings.ToLower(hash)), []byte(expected)) {
		return InitData{}, ErrInvalidInitData
	}
	data, err := ParseInitData(raw)
	if err != nil {
		return InitData{}, err
	}
	if maxAge > 0 && !data.AuthDate.IsZero() && now.Sub(data.AuthDate) > maxAge {
		return InitData{}, ErrInitDataExpired
	}
	return data, nil
}

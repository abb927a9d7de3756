// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"database/sql"
	"encoding/json"
	"io"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/hibeautyss/tma-clean/auth"
	"github.com/hibeautyss/tma-clean/cliparse"
	"github.com/hibeautyss/tma-clean/db"
)

// SetupTestDB opens a fresh in-memory SQLite database with the full schema.
// The connection is closed when the test ends.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(db.SQLite, ":memory:")
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		DatabaseURL:  ":memory:",
		DatabaseType: string(db.SQLite),
		CacheType:    "memory",
		UserID:       "1001",
		BotUsername:  "MeetBot",
		Timezone:     "Europe/Moscow",
		PersistDelay: 400 * time.Millisecond,
	}
}

// CreateTestPoll inserts a poll owned by creatorID and returns its ID and
// share code. status should be "live", "paused", or "finished".
func CreateTestPoll(t *testing.T, conn *sql.DB, creatorID, status string) (pollID, shareCode string) {
	t.Helper()

	pollID = uuid.NewString()
	shareCode, _ = auth.GenerateShareCode(auth.ShareCodeLength)
	_, err := conn.Exec(`
		INSERT INTO poll (id, share_code, title, description, timezone, specify_times, status, creator_id, creator_first_name, created_at)
		VALUES (?, ?, 'Test Poll', 'A test poll', 'UTC', TRUE, ?, ?, 'Tester', ?)
	`, pollID, shareCode, status, creatorID, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test poll: %v", err)
	}

	return pollID, shareCode
}

// AddTestOption adds an option to a poll and returns the option ID.
// Negative minutes store a whole-day option.
func AddTestOption(t *testing.T, conn *sql.DB, pollID, date string, start, end int) string {
	t.Helper()

	var startArg, endArg any
	if start >= 0 {
		startArg, endArg = start, end
	}
	optionID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO poll_option (id, poll_id, option_date, start_minute, end_minute)
		VALUES (?, ?, ?, ?, ?)
	`, optionID, pollID, date, startArg, endArg)
	if err != nil {
		t.Fatalf("Failed to create test option: %v", err)
	}

	return optionID
}

// SubmitTestVote stores a vote with answers ("yes", "maybe" or "no") keyed
// by option ID and returns the vote ID.
func SubmitTestVote(t *testing.T, conn *sql.DB, pollID, name string, answers map[string]string) string {
	t.Helper()

	voteID := uuid.NewString()
	_, err := conn.Exec(`
		INSERT INTO vote (id, poll_id, voter_name, created_at)
		VALUES (?, ?, ?, ?)
	`, voteID, pollID, name, time.Now().UTC())
	if err != nil {
		t.Fatalf("Failed to create test vote: %v", err)
	}

	for optionID, value := range answers {
		_, err := conn.Exec(`
			INSERT INTO vote_selection (vote_id, poll_option_id, availability)
			VALUES (?, ?, ?)
		`, voteID, optionID, value)
		if err != nil {
			t.Fatalf("Failed to create test selection: %v", err)
		}
	}

	return voteID
}

// CountRows returns the number of rows in table.
func CountRows(t *testing.T, conn *sql.DB, table string) int {
	t.Helper()

	var n int
	if err := conn.QueryRow(`SELECT COUNT(*) FROM ` + table).Scan(&n); err != nil {
		t.Fatalf("Failed to count %s: %v", table, err)
	}
	return n
}

// WriteJSON writes v as a JSON response with the given status code.
func WriteJSON(t *testing.T, w http.ResponseWriter, status int, v any) {
	t.Helper()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		t.Errorf("Failed to encode JSON response: %v", err)
	}
}

// DecodeJSON decodes a request body into v.
func DecodeJSON(t *testing.T, r io.Reader, v any) {
	t.Helper()
	if err := json.NewDecoder(r).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON body: %v", err)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth reads the host identity and generates identifiers.

# Init Data

The chat client launches the mini-app with a URL-encoded init data string
carrying the user, the auth date, an optional start parameter and a hash:

	data, err := auth.VerifyInitData(raw, botToken, 24*time.Hour, time.Now())
	if err != nil {
		return err
	}
	store := engine.New(remote, states, tracker, engine.Config{User: data.User})

The hash is HMAC-SHA256 over the sorted key=value lines of every other
field. Its key is itself HMAC-SHA256 of the bot token keyed with
"WebAppData". ParseInitData skips the check for local runs without a token.

# Share Codes

Share codes are short upper-case codes participants type to join:

	code, err := auth.GenerateShareCode(auth.ShareCodeLength)

The alphabet leaves out 0, 1, I and O.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth

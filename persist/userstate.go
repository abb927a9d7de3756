// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package persist

import (
	"context"
	"errors"
	"fmt"

	"github.com/hibeautyss/tma-clean/models"
)

const userStatePrefix = "planner-state:"

// UserStateKey returns the cache key for a user's state blob.
func UserStateKey(userID models.ID) string {
	if userID.IsZero() {
		return userStatePrefix + "guest"
	}
	return userStatePrefix + userID.Key()
}

// UserStates loads and saves per-user state blobs.
type UserStates struct {
	kv KV
}

// NewUserStates returns a UserStates backed by kv.
func NewUserStates(kv KV) *UserStates {
	return &UserStates{kv: kv}
}

// LoadUserState returns the saved blob, or nil when the user has none.
func (u *UserStates) LoadUserState(ctx context.Context, userID models.ID) ([]byte, error) {
	data, err := u.kv.Get(ctx, UserStateKey(userID))
	if errors.Is(err, ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load user state: %w", err)
	}
	return data, nil
}

// SaveUserState replaces the user's blob.
func (u *UserStates) SaveUserState(ctx context.Context, userID models.ID, state []byte) error {
	if err := u.kv.Set(ctx, UserStateKey(userID), state); err != nil {
		return fmt.Errorf("save user state: %w", err)
	}
	return nil
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/hibeautyss/tma-clean/api"
	"github.com/hibeautyss/tma-clean/auth"
	"github.com/hibeautyss/tma-clean/cliparse"
	"github.com/hibeautyss/tma-clean/db"
	"github.com/hibeautyss/tma-clean/engine"
	"github.com/hibeautyss/tma-clean/models"
	"github.com/hibeautyss/tma-clean/persist"
	"github.com/hibeautyss/tma-clean/remote"
	"github.com/hibeautyss/tma-clean/vote"
)

// initDataMaxAge is how old signed launch data may be.
const initDataMaxAge = 24 * time.Hour

// session is one engine instance wired to the configured backends.
type session struct {
	store      *engine.Store
	restore    engine.RestoreStatus
	startParam string
	closers    []func() error
}

// hostUser resolves the current user from signed init data or from the
// plain user flags. A nil user means guest.
func hostUser(cfg cliparse.Config, now time.Time) (*models.User, string, error) {
	if cfg.InitData != "" {
		data, err := auth.VerifyInitData(cfg.InitData, cfg.BotToken, initDataMaxAge, now)
		if err != nil {
			return nil, "", fmt.Errorf("invalid init data: %w", err)
		}
		return data.User, data.StartParam, nil
	}
	if cfg.UserID == "" {
		return nil, "", nil
	}
	return &models.User{ID: models.ParseID(cfg.UserID), FirstName: cfg.FirstName}, "", nil
}

func openRemote(cfg cliparse.Config) (engine.Remote, func() error, error) {
	if cfg.UsesAPI() {
		return api.New(cfg.APIURL, cfg.APIKey, nil), nil, nil
	}
	dialect, err := db.ParseDialect(cfg.DatabaseType)
	if err != nil {
		return nil, nil, err
	}
	conn, err := db.Open(dialect, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return remote.New(conn, dialect), conn.Close, nil
}

// openSession builds the store and runs the launch sequence. startParam
// overrides the start parameter carried by init data.
func openSession(ctx context.Context, cfg cliparse.Config, startParam string) (*session, error) {
	user, launchParam, err := hostUser(cfg, time.Now())
	if err != nil {
		return nil, err
	}
	if startParam == "" {
		startParam = launchParam
	}

	s := &session{startParam: startParam}
	rem, closeRemote, err := openRemote(cfg)
	if err != nil {
		return nil, err
	}
	if closeRemote != nil {
		s.closers = append(s.closers, closeRemote)
	}

	kv, err := persist.Open(ctx, persist.Options{
		Kind:      cfg.CacheType,
		Path:      cfg.CachePath,
		RedisAddr: cfg.RedisAddr,
	})
	if err != nil {
		s.close()
		return nil, err
	}
	s.closers = append(s.closers, kv.Close)

	s.store = engine.New(rem, persist.NewUserStates(kv), vote.NewTracker(kv), engine.Config{
		User:         user,
		BotUsername:  cfg.BotUsername,
		Timezone:     cfg.Timezone,
		PersistDelay: cfg.PersistDelay,
	})
	// Closers run in reverse, so the store flushes before the cache closes.
	s.closers = append(s.closers, s.store.Close)

	s.restore = s.store.Bootstrap(ctx, startParam)
	return s, nil
}

// close flushes state and releases backends in reverse order.
func (s *session) close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			slog.Warn("failed to close", "error", err)
		}
	}
	s.closers = nil
}

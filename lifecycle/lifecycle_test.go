// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/hibeautyss/tma-clean/apperr"
	"github.com/hibeautyss/tma-clean/models"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to models.Status
		want     bool
	}{
		{models.StatusLive, models.StatusPaused, true},
		{models.StatusLive, models.StatusFinished, true},
		{models.StatusPaused, models.StatusLive, true},
		{models.StatusPaused, models.StatusFinished, true},
		{models.StatusFinished, models.StatusLive, true},
		{models.StatusFinished, models.StatusPaused, false},
		{models.StatusLive, models.StatusLive, false},
		{"", models.StatusPaused, true},
	}

	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestTargets(t *testing.T) {
	got := Targets(models.StatusFinished)
	if !reflect.DeepEqual(got, []models.Status{models.StatusLive}) {
		t.Errorf("Expected [live], got %v", got)
	}
	got = Targets("")
	if !reflect.DeepEqual(got, []models.Status{models.StatusPaused, models.StatusFinished}) {
		t.Errorf("Expected unknown status to act as live, got %v", got)
	}
	got[0] = models.StatusFinished
	if Targets(models.StatusLive)[0] != models.StatusPaused {
		t.Error("Expected Targets to return a copy")
	}
}

func TestChangeGuards(t *testing.T) {
	ctl := NewController(nil)
	called := false
	apply := func(ctx context.Context) error {
		called = true
		return nil
	}

	tests := []struct {
		name    string
		req     Request
		changed bool
		err     error
	}{
		{"no poll", Request{Target: models.StatusFinished, CanManage: true}, false, apperr.ErrNoActivePoll},
		{"not creator", Request{PollID: "1", Current: models.StatusLive, Target: models.StatusFinished}, false, apperr.ErrNotPermitted},
		{"same status", Request{PollID: "1", Current: models.StatusLive, Target: models.StatusLive, CanManage: true}, false, nil},
		{"invalid", Request{PollID: "1", Current: models.StatusFinished, Target: models.StatusPaused, CanManage: true}, false, apperr.ErrInvalidTransition},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called = false
			changed, err := ctl.Change(context.Background(), tt.req, apply)
			if changed != tt.changed || !errors.Is(err, tt.err) {
				t.Errorf("Expected (%v, %v), got (%v, %v)", tt.changed, tt.err, changed, err)
			}
			if called {
				t.Error("Expected apply not to run")
			}
		})
	}
}

func TestChangeSingleFlight(t *testing.T) {
	gate := NewGate()
	ctl := NewController(gate)
	req := Request{PollID: "9", Current: models.StatusLive, Target: models.StatusFinished, CanManage: true}

	var nestedErr error
	changed, err := ctl.Change(context.Background(), req, func(ctx context.Context) error {
		if !ctl.IsWorking("9") {
			t.Error("Expected IsWorking during apply")
		}
		_, nestedErr = ctl.Change(ctx, req, func(context.Context) error { return nil })
		return nil
	})
	if !changed || err != nil {
		t.Fatalf("Expected change, got (%v, %v)", changed, err)
	}
	if !errors.Is(nestedErr, apperr.ErrBusy) {
		t.Errorf("Expected concurrent change to be busy, got %v", nestedErr)
	}
	if ctl.IsWorking("9") {
		t.Error("Expected in-flight mark cleared")
	}
}

func TestChangeFailureClearsFlag(t *testing.T) {
	ctl := NewController(nil)
	req := Request{PollID: "9", Current: models.StatusLive, Target: models.StatusPaused, CanManage: true}

	changed, err := ctl.Change(context.Background(), req, func(context.Context) error {
		return errors.New("network down")
	})
	if changed {
		t.Error("Expected no change on failure")
	}
	if !apperr.IsRemote(err) {
		t.Errorf("Expected RemoteError, got %v", err)
	}
	if ctl.IsWorking("9") {
		t.Error("Expected in-flight mark cleared after failure")
	}
}

func TestGateSharedWithVotes(t *testing.T) {
	gate := NewGate()
	ctl := NewController(gate)

	release, ok := gate.Acquire(models.ParseID(9), OpVote)
	if !ok {
		t.Fatal("Expected to acquire gate")
	}
	req := Request{PollID: "9", Current: models.StatusLive, Target: models.StatusFinished, CanManage: true}
	if _, err := ctl.Change(context.Background(), req, func(context.Context) error { return nil }); !errors.Is(err, apperr.ErrBusy) {
		t.Errorf("Expected status change to wait for vote, got %v", err)
	}
	if ctl.IsWorking("9") {
		t.Error("Expected IsWorking false while a vote holds the gate")
	}

	release()
	release()
	if _, ok := gate.Holder("9"); ok {
		t.Error("Expected gate released")
	}
	if _, ok := gate.Acquire("10", OpStatus); !ok {
		t.Error("Expected other polls to be independent")
	}
}

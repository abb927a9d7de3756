// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import (
	"context"

	"github.com/hibeautyss/tma-clean/models"
)

// Remote is the shared poll store.
//
// FetchPollDetail returns nil, nil when the reference does not resolve.
// Implementations compensate their own partial writes; the engine treats
// every error as "nothing happened".
type Remote interface {
	CreatePoll(ctx context.Context, req models.CreatePollRequest) (*models.Poll, error)
	UpdatePollDetails(ctx context.Context, req models.UpdateDetailsRequest) (*models.Poll, error)
	UpdatePollOptions(ctx context.Context, req models.UpdateOptionsRequest) error
	UpdatePollStatus(ctx context.Context, req models.UpdateStatusRequest) error
	FetchPollDetail(ctx context.Context, ref models.PollRef) (*models.Poll, error)
	SubmitVote(ctx context.Context, req models.SubmitVoteRequest) (*models.Vote, error)
}

// StateStore keeps the per-user state blob.
// LoadUserState returns nil, nil when nothing was saved.
type StateStore interface {
	LoadUserState(ctx context.Context, userID models.ID) ([]byte, error)
	SaveUserState(ctx context.Context, userID models.ID, state []byte) error
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package engine

import "github.com/hibeautyss/tma-clean/models"

// Permissions is what the current user may do with the open poll.
type Permissions struct {
	Relation         models.Relation
	CanManage        bool
	IsReadOnly       bool
	HasSubmittedVote bool
	IsFinished       bool
}

// DerivePermissions computes permissions for poll.
func DerivePermissions(poll *models.Poll, explicit models.Relation, currentUserID models.ID, hasSubmitted bool) Permissions {
	relation := models.DeriveRelation(explicit, poll, currentUserID)
	finished := poll != nil && models.NormalizeStatus(string(poll.Status)) == models.StatusFinished
	return Permissions{
		Relation:         relation,
		CanManage:        relation == models.RelationCreated,
		IsReadOnly:       finished || hasSubmitted,
		HasSubmittedVote: hasSubmitted,
		IsFinished:       finished,
	}
}

// LockedVotingMessage explains why voting is disabled.
func LockedVotingMessage(p Permissions) string {
	if p.IsFinished {
		return "This poll is finished."
	}
	return "You already submitted your availability for this poll."
}

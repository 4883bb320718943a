package application

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// FollowService maintains the follow graph. Each edge lives on two records and
// the store only serializes writes per record, so an edge change is a two-step
// protocol:
//
//  1. toggle the target in the caller's following (authoritative side);
//  2. mirror that state into the target's followers, re-reading the caller's
//     side inside the same write.
//
// If step 2 keeps failing, step 1 is undone and the mirror re-run. Whatever
// still cannot be confirmed is handed to the repair queue.
type FollowService struct {
	Users          repo.UserRepository
	Repairs        JobPublisher
	Retry          RetryPolicy
	SuggestedLimit int
	Logger         logrus.FieldLogger
}

func NewFollowService(users repo.UserRepository, repairs JobPublisher, retry RetryPolicy, suggestedLimit int, logger logrus.FieldLogger) *FollowService {
	return &FollowService{Users: users, Repairs: repairs, Retry: retry, SuggestedLimit: suggestedLimit, Logger: logger}
}

// FollowOrUnfollow toggles the caller -> target edge and reports whether the
// caller follows the target afterwards.
func (s *FollowService) FollowOrUnfollow(ctx context.Context, callerID, targetID string) (bool, error) {
	if callerID == targetID {
		return false, validationErr("you cannot follow yourself", nil)
	}
	if _, err := loadUser(ctx, s.Users, targetID); err != nil {
		return false, err
	}

	following, err := s.Users.ToggleFollowing(ctx, callerID, targetID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return false, authErr("account no longer exists")
		}
		return false, internalErr("failed to update follow state", err)
	}

	mirrorErr := s.Retry.do(ctx, func() error {
		_, err := s.Users.MirrorFollower(ctx, targetID, callerID)
		return err
	})
	if mirrorErr == nil {
		return following, nil
	}

	log := s.log().WithFields(logrus.Fields{"user_id": callerID, "target_id": targetID, "following": following})
	log.WithError(mirrorErr).Error("follow mirror failed, compensating")
	metricCompensations.Add(1)

	// The target disappeared after the existence check: drop the dangling edge.
	if errors.Is(mirrorErr, repo.ErrNotFound) {
		if err := s.Retry.do(ctx, func() error { return s.Users.SetFollowing(ctx, callerID, targetID, false) }); err != nil {
			log.WithError(err).Error("failed to drop edge to deleted user")
			s.enqueue(ctx, RepairJob{Kind: RepairPurge, PeerID: targetID})
		}
		return false, notFoundErr("user not found")
	}

	compErr := s.Retry.do(ctx, func() error { return s.Users.SetFollowing(ctx, callerID, targetID, !following) })
	if compErr == nil {
		// A failed mirror may still have been applied; re-derive once more.
		if _, err := s.Users.MirrorFollower(ctx, targetID, callerID); err == nil {
			return false, internalErr("failed to update follow state", mirrorErr)
		}
	} else {
		log.WithError(compErr).Error("follow compensation failed")
	}

	s.enqueue(ctx, RepairJob{Kind: RepairMirror, UserID: targetID, PeerID: callerID})
	return false, internalErr("failed to update follow state", mirrorErr)
}

// GetSuggestedUsers lists users the caller does not follow yet, newest first.
func (s *FollowService) GetSuggestedUsers(ctx context.Context, callerID string) ([]UserView, error) {
	limit := s.SuggestedLimit
	if limit <= 0 {
		limit = 10
	}
	users, err := s.Users.ListSuggested(ctx, callerID, limit)
	if err != nil {
		return nil, internalErr("failed to load suggestions", err)
	}
	return toViews(users), nil
}

func (s *FollowService) enqueue(ctx context.Context, job RepairJob) {
	enqueueRepair(ctx, s.Repairs, s.log(), job)
}

func (s *FollowService) log() logrus.FieldLogger {
	if s.Logger == nil {
		return logrus.StandardLogger()
	}
	return s.Logger
}

func enqueueRepair(ctx context.Context, pub JobPublisher, log logrus.FieldLogger, job RepairJob) {
	fields := logrus.Fields{"repair_kind": job.Kind, "user_id": job.UserID, "peer_id": job.PeerID}
	if pub == nil {
		metricRepairsFailed.Add(1)
		log.WithFields(fields).Error("no repair queue configured; follow graph needs manual repair")
		return
	}
	// The request context may already be cancelled; the job must still go out.
	if err := pub.PublishJSON(context.WithoutCancel(ctx), job); err != nil {
		metricRepairsFailed.Add(1)
		log.WithError(err).WithFields(fields).Error("failed to enqueue follow graph repair")
		return
	}
	metricRepairsQueued.Add(1)
	log.WithFields(fields).Warn("follow graph repair enqueued")
}

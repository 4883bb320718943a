package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	repo "github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// RepairService applies queued follow graph repairs. Every job is idempotent,
// so redelivery is harmless.
type RepairService struct {
	Users  repo.UserRepository
	Retry  RetryPolicy
	Logger logrus.FieldLogger
}

func NewRepairService(users repo.UserRepository, retry RetryPolicy, logger logrus.FieldLogger) *RepairService {
	return &RepairService{Users: users, Retry: retry, Logger: logger}
}

func (s *RepairService) Handle(ctx context.Context, job RepairJob) error {
	if job.PeerID == "" {
		return fmt.Errorf("repair job %q without peer_id", job.Kind)
	}

	var err error
	switch job.Kind {
	case RepairMirror:
		if job.UserID == "" {
			return errors.New("mirror repair job without user_id")
		}
		err = s.mirror(ctx, job.UserID, job.PeerID)
	case RepairPurge:
		err = purgeReferences(ctx, s.Users, s.Retry, job.PeerID)
	default:
		return fmt.Errorf("unknown repair kind %q", job.Kind)
	}
	if err != nil {
		return err
	}

	metricRepairsApplied.Add(1)
	if s.Logger != nil {
		s.Logger.WithFields(logrus.Fields{"repair_kind": job.Kind, "user_id": job.UserID, "peer_id": job.PeerID}).Info("follow graph repaired")
	}
	return nil
}

// mirror re-derives userID's followers entry for peerID. When userID is gone,
// the peer's edge to it is dropped instead.
func (s *RepairService) mirror(ctx context.Context, userID, peerID string) error {
	_, err := s.Users.MirrorFollower(ctx, userID, peerID)
	if !errors.Is(err, repo.ErrNotFound) {
		return err
	}
	err = s.Users.RemoveReferences(ctx, peerID, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil
	}
	return err
}

package application

import (
	"context"
	"errors"
	"expvar"
	"time"

	"github.com/oksasatya/go-social-graph/internal/domain/repository"
)

// JobPublisher enqueues a JSON job. helpers.RabbitPublisher satisfies it.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

type RepairKind string

const (
	// RepairMirror re-derives UserID's followers entry for PeerID from PeerID's following.
	RepairMirror RepairKind = "mirror"
	// RepairPurge removes PeerID from every follow set that still references it.
	RepairPurge RepairKind = "purge"
)

// RepairJob is published when a request could not leave the follow graph
// symmetric on its own.
type RepairJob struct {
	Kind   RepairKind `json:"kind"`
	UserID string     `json:"user_id,omitempty"`
	PeerID string     `json:"peer_id"`
}

var (
	metricCompensations  = expvar.NewInt("graph_compensations")
	metricRepairsQueued  = expvar.NewInt("graph_repairs_enqueued")
	metricRepairsFailed  = expvar.NewInt("graph_repairs_unqueued")
	metricRepairsApplied = expvar.NewInt("graph_repairs_applied")
)

// RetryPolicy bounds the retries of a single-record write.
type RetryPolicy struct {
	Attempts int
	Backoff  time.Duration
}

// do runs fn until it succeeds, attempts run out, ctx ends, or fn returns
// repository.ErrNotFound (retrying cannot bring a record back).
func (p RetryPolicy) do(ctx context.Context, fn func() error) error {
	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		if err = fn(); err == nil || errors.Is(err, repository.ErrNotFound) {
			return err
		}
		if i == attempts-1 || p.Backoff <= 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return err
		case <-time.After(p.Backoff * time.Duration(i+1)):
		}
	}
	return err
}

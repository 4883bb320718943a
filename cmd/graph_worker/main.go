package main

import (
	"context"
	"encoding/json"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/application"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-graph/pkg/helpers"
)

const retryHeader = "x-retry"

// graph_worker applies follow graph repairs published by the API when a
// request could not leave both sides of an edge consistent.
func main() {
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("config: %v", err)
	}
	logger := helpers.NewLogger(cfg.AppName+"-graph-worker", cfg.Env, cfg.LogLevel)
	if cfg.RabbitMQURL == "" || cfg.RabbitMQRepairQueue == "" {
		logger.Fatal("RabbitMQ not configured")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
		MaxConns:    int32(cfg.DBMaxConns),
		MinConns:    int32(cfg.DBMinConns),
		MaxConnLife: cfg.DBMaxConnLife,
		AppName:     cfg.AppName + "-graph-worker",
	})
	if err != nil {
		logger.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	repairs := application.NewRepairService(
		pginfra.NewUserRepository(pool),
		application.RetryPolicy{Attempts: cfg.GraphRetryAttempts, Backoff: cfg.GraphRetryBackoff},
		logger,
	)

	// Failed jobs go back to the tail of the same queue with a retry count.
	requeue, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQRepairQueue)
	if err != nil {
		logger.Fatalf("amqp publisher: %v", err)
	}
	defer requeue.Close()

	conn, err := amqp.Dial(cfg.RabbitMQURL)
	if err != nil {
		logger.Fatalf("amqp dial: %v", err)
	}
	defer func() { _ = conn.Close() }()
	ch, err := conn.Channel()
	if err != nil {
		logger.Fatalf("amqp channel: %v", err)
	}
	defer func() { _ = ch.Close() }()
	if err := ch.Qos(8, 0, false); err != nil {
		logger.Fatalf("qos: %v", err)
	}
	if err := helpers.DeclareQueue(ch, cfg.RabbitMQRepairQueue); err != nil {
		logger.Fatalf("queue declare: %v", err)
	}
	msgs, err := ch.Consume(cfg.RabbitMQRepairQueue, "", false, false, false, false, nil)
	if err != nil {
		logger.Fatalf("consume: %v", err)
	}

	w := &worker{repairs: repairs, requeue: requeue, maxRetries: cfg.GraphRepairMaxRedeliveries, backoff: cfg.GraphRetryBackoff, logger: logger}
	done := make(chan struct{})
	go func() {
		defer close(done)
		for msg := range msgs {
			w.handle(ctx, msg)
		}
	}()

	logger.WithField("queue", cfg.RabbitMQRepairQueue).Info("graph repair worker listening")
	<-ctx.Done()
	logger.Info("shutting down...")
	_ = ch.Cancel("", false)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
	}
}

type worker struct {
	repairs    *application.RepairService
	requeue    *helpers.RabbitPublisher
	maxRetries int
	backoff    time.Duration
	logger     *logrus.Logger
}

func (w *worker) handle(ctx context.Context, msg amqp.Delivery) {
	var job application.RepairJob
	if err := json.Unmarshal(msg.Body, &job); err != nil {
		w.logger.WithError(err).Warn("dropping malformed repair job")
		_ = msg.Nack(false, false)
		return
	}
	retries := retryCount(msg.Headers)
	log := w.logger.WithFields(logrus.Fields{"repair_kind": job.Kind, "user_id": job.UserID, "peer_id": job.PeerID, "retry": retries})

	// A repair must not be abandoned halfway because shutdown began.
	err := w.repairs.Handle(context.WithoutCancel(ctx), job)
	if err == nil {
		_ = msg.Ack(false)
		return
	}

	if retries >= w.maxRetries {
		log.WithError(err).Error("repair failed permanently; follow graph needs manual attention")
		_ = msg.Ack(false)
		return
	}

	// Linear backoff before requeueing.
	time.Sleep(w.backoff * time.Duration(retries+1))
	if perr := w.requeue.PublishJSONWithHeaders(context.WithoutCancel(ctx), job, amqp.Table{retryHeader: int32(retries + 1)}); perr != nil {
		log.WithError(perr).Error("failed to requeue repair; returning to broker")
		_ = msg.Nack(false, true)
		return
	}
	log.WithError(err).Warn("repair failed; requeued")
	_ = msg.Ack(false)
}

func retryCount(h amqp.Table) int {
	switch v := h[retryHeader].(type) {
	case int32:
		return int(v)
	case int64:
		return int(v)
	case int:
		return v
	}
	return 0
}

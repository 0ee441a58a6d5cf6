package outbox

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"trailer-rental/internal/infra/repository"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"

	"github.com/google/uuid"
)

var defaultBackoff = []time.Duration{
	5 * time.Second,
	30 * time.Second,
	2 * time.Minute,
	10 * time.Minute,
	time.Hour,
}

type Publisher interface {
	Publish(ctx context.Context, topic, key string, payload []byte, headers map[string]string) error
}

// JobStore is the slice of the notification repository the relay drives.
type JobStore interface {
	FetchDue(ctx context.Context, now time.Time, limit int) ([]repository.NotificationJob, error)
	MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) error
	MarkFailed(ctx context.Context, id uuid.UUID, lastError string, retryAt time.Time) error
}

// Transactor runs fn with a JobStore bound to one transaction, so the rows
// FetchDue locks stay locked until every job in the batch is marked.
type Transactor interface {
	InTx(ctx context.Context, fn func(ctx context.Context, store JobStore) error) error
}

// BatchReport summarizes one relay pass.
type BatchReport struct {
	Published int
	Failed    int
}

// Relay drains notification_jobs to the broker.
type Relay struct {
	tx        Transactor
	publisher Publisher
	clock     clock.Clock
	logger    *slog.Logger
	interval  time.Duration
	batch     int
	backoff   []time.Duration

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func NewRelay(tx Transactor, publisher Publisher, clk clock.Clock, cfg config.KafkaConfig, logger *slog.Logger) *Relay {
	interval := cfg.RelayInterval
	if interval <= 0 {
		interval = 5 * time.Second
	}
	batch := cfg.RelayBatch
	if batch <= 0 {
		batch = 50
	}
	return &Relay{
		tx:        tx,
		publisher: publisher,
		clock:     clk,
		logger:    logger.With(slog.String("component", "outbox")),
		interval:  interval,
		batch:     batch,
		backoff:   defaultBackoff,
	}
}

// Start runs the relay loop in the background until Stop.
func (r *Relay) Start() {
	ctx, cancel := context.WithCancel(context.Background())
	r.cancel = cancel
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		r.run(ctx)
	}()
}

func (r *Relay) Stop() {
	if r.cancel != nil {
		r.cancel()
	}
	r.wg.Wait()
}

func (r *Relay) run(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := r.ProcessOnce(ctx)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				r.logger.ErrorContext(ctx, "outbox relay pass failed", slog.String("error", err.Error()))
				continue
			}
			if report.Published > 0 || report.Failed > 0 {
				r.logger.InfoContext(ctx, "outbox relay pass",
					slog.Int("published", report.Published),
					slog.Int("failed", report.Failed))
			}
		}
	}
}

// ProcessOnce publishes one batch of due jobs. A failed publish reschedules
// the job with backoff; it does not fail the batch.
func (r *Relay) ProcessOnce(ctx context.Context) (BatchReport, error) {
	var report BatchReport
	err := r.tx.InTx(ctx, func(ctx context.Context, store JobStore) error {
		report = BatchReport{}
		now := r.clock.Now()
		jobs, err := store.FetchDue(ctx, now, r.batch)
		if err != nil {
			return err
		}
		for _, job := range jobs {
			if err := r.publisher.Publish(ctx, job.Topic, messageKey(job), job.Payload, map[string]string{
				"kind":   job.Kind,
				"job_id": job.ID.String(),
			}); err != nil {
				r.logger.WarnContext(ctx, "outbox publish failed",
					slog.String("job_id", job.ID.String()),
					slog.Int("attempts", job.Attempts+1),
					slog.String("error", err.Error()))
				if err := store.MarkFailed(ctx, job.ID, err.Error(), now.Add(r.nextRetry(job.Attempts))); err != nil {
					return err
				}
				report.Failed++
				continue
			}
			if err := store.MarkPublished(ctx, job.ID, now); err != nil {
				return err
			}
			report.Published++
		}
		return nil
	})
	if err != nil {
		return BatchReport{}, errs.Wrap(err, "relay notification jobs")
	}
	return report, nil
}

func (r *Relay) nextRetry(attempts int) time.Duration {
	if attempts < len(r.backoff) {
		return r.backoff[attempts]
	}
	return r.backoff[len(r.backoff)-1]
}

// messageKey keys by reservation so a confirmation and a later cancellation
// land on the same partition in order.
func messageKey(job repository.NotificationJob) string {
	var body struct {
		ReservationID string `json:"reservationId"`
	}
	if err := json.Unmarshal(job.Payload, &body); err == nil && body.ReservationID != "" {
		return body.ReservationID
	}
	return job.ID.String()
}

package repository

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/infra"
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/pkg/pgconv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const (
	createNotificationJobSQL = `
INSERT INTO notification_jobs (kind, topic, payload, run_at)
VALUES ($1, $2, $3, $4)`

	// SKIP LOCKED lets several relays drain the outbox without double publishing
	fetchDueNotificationJobsSQL = `
SELECT id, kind, topic, payload, attempts
FROM notification_jobs
WHERE published_at IS NULL AND run_at <= $1
ORDER BY run_at
LIMIT $2
FOR UPDATE SKIP LOCKED`

	markNotificationPublishedSQL = `UPDATE notification_jobs SET published_at = $2 WHERE id = $1`

	markNotificationFailedSQL = `
UPDATE notification_jobs
SET attempts = attempts + 1, last_error = $2, run_at = $3
WHERE id = $1`
)

// NotificationJob is an unpublished outbox row.
type NotificationJob struct {
	ID       uuid.UUID
	Kind     string
	Topic    string
	Payload  []byte
	Attempts int
}

type NotificationRepository struct {
	db     db.DBTX
	logger *slog.Logger
}

func NewNotificationRepository(dbtx db.DBTX, logger *slog.Logger) *NotificationRepository {
	return &NotificationRepository{
		db:     dbtx,
		logger: logger,
	}
}

func (r *NotificationRepository) CreateJob(ctx context.Context, kind, topic string, payload []byte, runAt time.Time) error {
	_, err := r.db.Exec(ctx, createNotificationJobSQL, kind, topic, payload, pgconv.TimeToPgtype(runAt))
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to create notification job", err)
	}
	return nil
}

// FetchDue locks up to limit due jobs until the surrounding transaction ends.
func (r *NotificationRepository) FetchDue(ctx context.Context, now time.Time, limit int) ([]NotificationJob, error) {
	rows, err := r.db.Query(ctx, fetchDueNotificationJobsSQL, pgconv.TimeToPgtype(now), limit)
	if err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to fetch notification jobs", err)
	}
	defer rows.Close()

	var jobs []NotificationJob
	for rows.Next() {
		var (
			job      NotificationJob
			attempts int32
		)
		if err := rows.Scan(&job.ID, &job.Kind, &job.Topic, &job.Payload, &attempts); err != nil {
			return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to scan notification job", err)
		}
		job.Attempts = int(attempts)
		jobs = append(jobs, job)
	}
	if err := rows.Err(); err != nil {
		return nil, infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to fetch notification jobs", err)
	}
	return jobs, nil
}

func (r *NotificationRepository) MarkPublished(ctx context.Context, id uuid.UUID, now time.Time) error {
	if _, err := r.db.Exec(ctx, markNotificationPublishedSQL, id, pgconv.TimeToPgtype(now)); err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to mark notification job published", err)
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id uuid.UUID, lastError string, retryAt time.Time) error {
	_, err := r.db.Exec(ctx, markNotificationFailedSQL, id, pgtype.Text{String: lastError, Valid: true}, pgconv.TimeToPgtype(retryAt))
	if err != nil {
		return infra.WrapRepoErr(r.logger, infra.KindDBFailure, "failed to mark notification job failed", err)
	}
	return nil
}

package lock

import (
	"context"
	"log/slog"
	"time"

	"trailer-rental/internal/pkg/errs"
)

// LoggingController records lock commands instead of talking to lock
// hardware.
type LoggingController struct {
	logger *slog.Logger
}

func NewLoggingController(logger *slog.Logger) *LoggingController {
	return &LoggingController{logger: logger.With(slog.String("component", "lock"))}
}

func (c *LoggingController) GrantAccess(ctx context.Context, lockID, code string, from, until time.Time) error {
	if lockID == "" {
		return errs.New("grant access: lock id is empty")
	}
	if !until.After(from) {
		return errs.Newf("grant access on %s: window ends before it starts", lockID)
	}
	c.logger.InfoContext(ctx, "lock access granted",
		slog.String("lock_id", lockID),
		slog.String("code", mask(code)),
		slog.Time("valid_from", from),
		slog.Time("valid_until", until))
	return nil
}

func (c *LoggingController) RevokeAccess(ctx context.Context, lockID, code string) error {
	if lockID == "" {
		return errs.New("revoke access: lock id is empty")
	}
	c.logger.InfoContext(ctx, "lock access revoked",
		slog.String("lock_id", lockID),
		slog.String("code", mask(code)))
	return nil
}

func mask(code string) string {
	if len(code) <= 1 {
		return "*"
	}
	return code[:1] + "***"
}

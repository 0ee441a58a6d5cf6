package payment

import (
	"context"

	"github.com/google/uuid"
)

// WebhookEvent is the closed set of processor notifications the reservation
// lifecycle reacts to. Adding a variant means adding a visitor method, so
// every EventHandler has to handle it before it compiles.
type WebhookEvent interface {
	Accept(ctx context.Context, h EventHandler) error
	EventID() string
	sealed()
}

type EventHandler interface {
	HandleAuthorizationSucceeded(ctx context.Context, e AuthorizationSucceeded) error
	HandleAuthorizationFailed(ctx context.Context, e AuthorizationFailed) error
}

type AuthorizationSucceeded struct {
	ID              string
	AuthorizationID string
	ReservationID   uuid.UUID
}

func (e AuthorizationSucceeded) Accept(ctx context.Context, h EventHandler) error {
	return h.HandleAuthorizationSucceeded(ctx, e)
}

func (e AuthorizationSucceeded) EventID() string { return e.ID }
func (AuthorizationSucceeded) sealed()           {}

type AuthorizationFailed struct {
	ID              string
	AuthorizationID string
	ReservationID   uuid.UUID
	FailureMessage  string
}

func (e AuthorizationFailed) Accept(ctx context.Context, h EventHandler) error {
	return h.HandleAuthorizationFailed(ctx, e)
}

func (e AuthorizationFailed) EventID() string { return e.ID }
func (AuthorizationFailed) sealed()           {}

package components

import (
	"trailer-rental/internal/handler"
	"trailer-rental/internal/handler/api"
	"trailer-rental/internal/handler/middleware"

	"go.uber.org/fx"
)

var HandlerModule = fx.Module("handler",
	fx.Provide(
		api.NewReservationHandler,
		api.NewTrailerHandler,
		api.NewProfileHandler,
		api.NewWebhookHandler,
		api.NewJobsHandler,
		middleware.NewAuthMiddleware,
		NewHandlers,
	),
	fx.Invoke(handler.NewRouter),
)

func NewHandlers(
	reservations *api.ReservationHandler,
	trailers *api.TrailerHandler,
	profile *api.ProfileHandler,
	webhook *api.WebhookHandler,
	jobs *api.JobsHandler,
) handler.Handlers {
	return handler.Handlers{
		Reservations: reservations,
		Trailers:     trailers,
		Profile:      profile,
		Webhook:      webhook,
		Jobs:         jobs,
	}
}

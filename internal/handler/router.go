package handler

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"trailer-rental/internal/domain/user"
	"trailer-rental/internal/handler/api"
	reqdto "trailer-rental/internal/handler/dto/request"
	"trailer-rental/internal/handler/middleware"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
)

type route struct {
	Method  string
	Path    string
	Handler gin.HandlerFunc
	Mw      []gin.HandlerFunc
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Reservations *api.ReservationHandler
	Trailers     *api.TrailerHandler
	Profile      *api.ProfileHandler
	Webhook      *api.WebhookHandler
	Jobs         *api.JobsHandler
}

func NewRouter(engine *gin.Engine, cfg config.Config, logger *slog.Logger, h Handlers, authMiddleware *middleware.AuthMiddleware) error {
	if err := reqdto.RegisterValidators(); err != nil {
		return errs.Wrap(err, "failed to register request validators")
	}
	setupMiddleware(engine, cfg, logger)
	setupRoutes(engine, cfg, h, authMiddleware)
	return nil
}

func setupMiddleware(engine *gin.Engine, cfg config.Config, logger *slog.Logger) {
	// Recovery must be first (outermost) to catch panics from all other middleware
	engine.Use(middleware.CustomRecovery(logger))
	engine.Use(middleware.NewCORSMiddleware(cfg.CORS, logger))
	engine.Use(middleware.LoggingMiddleware(logger, cfg.Log))
	engine.Use(middleware.ErrorHandler())
}

func setupRoutes(engine *gin.Engine, cfg config.Config, h Handlers, authMiddleware *middleware.AuthMiddleware) {
	engine.GET("/health", healthCheck)

	if gin.Mode() == gin.DebugMode {
		engine.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	apiGroup := engine.Group("/api")
	{
		trailers := apiGroup.Group("/trailers")
		addRoutes(trailers, []route{
			{Method: http.MethodGet, Path: "", Handler: h.Trailers.List},
			{Method: http.MethodGet, Path: "/:id", Handler: h.Trailers.Get},
			{Method: http.MethodGet, Path: "/:id/availability", Handler: h.Trailers.Availability},
		})

		// signed by the payment processor, not by a user token
		addRoutes(apiGroup, []route{
			{Method: http.MethodPost, Path: "/payments/webhook", Handler: h.Webhook.Handle},
		})

		me := apiGroup.Group("/me")
		me.Use(authMiddleware.RequireAuth())
		addRoutes(me, []route{
			{Method: http.MethodGet, Path: "", Handler: h.Profile.Me},
			{Method: http.MethodPut, Path: "", Handler: h.Profile.Update},
		})

		reservations := apiGroup.Group("/reservations")
		reservations.Use(authMiddleware.RequireAuth())
		{
			addRoutes(reservations, []route{
				{Method: http.MethodPost, Path: "", Handler: h.Reservations.Create},
				{Method: http.MethodGet, Path: "", Handler: h.Reservations.List},
				{Method: http.MethodGet, Path: "/:id", Handler: h.Reservations.Get},
				{Method: http.MethodPost, Path: "/:id/cancel", Handler: h.Reservations.Cancel},
				{Method: http.MethodPost, Path: "/:id/check-in", Handler: h.Reservations.CheckIn},
				{Method: http.MethodPost, Path: "/:id/check-out", Handler: h.Reservations.CheckOut},
				{Method: http.MethodPost, Path: "/:id/photos", Handler: h.Reservations.AddReturnPhoto},
			})
		}

		admin := apiGroup.Group("/admin")
		admin.Use(authMiddleware.RequireAuth())
		{
			adminOnly := []gin.HandlerFunc{authMiddleware.RequireRoleAtLeast(user.RoleAdmin)}
			addRoutes(admin, []route{
				{Method: http.MethodPost, Path: "/trailers", Handler: h.Trailers.Create, Mw: adminOnly},
				{Method: http.MethodPut, Path: "/trailers/:id/status", Handler: h.Trailers.SetStatus, Mw: adminOnly},
				{Method: http.MethodPost, Path: "/reservations/:id/cancel", Handler: h.Reservations.CancelByOperator, Mw: adminOnly},
			})
		}
	}

	jobs := engine.Group("/internal/jobs")
	jobs.Use(middleware.RequireJobsToken(cfg.Jobs.Token))
	addRoutes(jobs, []route{
		{Method: http.MethodPost, Path: "/auto-extend", Handler: h.Jobs.AutoExtend},
		{Method: http.MethodPost, Path: "/expire-pins", Handler: h.Jobs.ExpirePins},
	})
}

// @Summary Health check
// @Description Check if the service is healthy
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Router /health [get]
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"message": "Service is healthy",
	})
}

func addRoutes(g *gin.RouterGroup, rs []route) {
	for _, r := range rs {
		h := r.Handler
		if len(r.Mw) > 0 {
			h = chainHandlers(append(r.Mw, r.Handler)...)
		}
		switch r.Method {
		case http.MethodGet:
			g.GET(r.Path, h)
		case http.MethodPost:
			g.POST(r.Path, h)
		case http.MethodPut:
			g.PUT(r.Path, h)
		case http.MethodPatch:
			g.PATCH(r.Path, h)
		case http.MethodDelete:
			g.DELETE(r.Path, h)
		default:
			g.Any(r.Path, h)
		}
	}
}

func chainHandlers(hs ...gin.HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		for _, h := range hs {
			h(c)
			if c.IsAborted() {
				return
			}
		}
	}
}

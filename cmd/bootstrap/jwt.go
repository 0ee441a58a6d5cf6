package bootstrap

import (
	"time"

	"trailer-rental/internal/handler/middleware"
	"trailer-rental/internal/pkg/config"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/pkg/jwt"

	"go.uber.org/fx"
)

var JWTModule = fx.Module("jwt",
	fx.Provide(
		fx.Annotate(
			NewJWTService,
			fx.As(new(middleware.TokenValidator)),
		),
	),
)

func NewJWTService(cfg config.Config) (*jwt.Service, error) {
	duration, err := time.ParseDuration(cfg.JWT.Duration)
	if err != nil {
		return nil, errs.Wrap(err, "invalid JWT_DURATION")
	}
	return jwt.NewService(cfg.JWT.Secret, cfg.JWT.Issuer, duration), nil
}

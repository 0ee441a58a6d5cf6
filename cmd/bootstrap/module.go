package bootstrap

import (
	"trailer-rental/cmd/bootstrap/components"

	"go.uber.org/fx"
)

// CoreModule is everything the use cases need. The sweep runner starts only
// this.
var CoreModule = fx.Options(
	ConfigModule,
	LoggerModule,
	DBModule,
	components.PersistenceModule,
	components.GatewayModule,
	components.UseCaseModule,
)

var Module = fx.Options(
	CoreModule,
	JWTModule,
	components.OutboxModule,
	components.HandlerModule,
)

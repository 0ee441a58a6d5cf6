package components

import (
	"trailer-rental/internal/domain/pin"
	"trailer-rental/internal/pkg/clock"
	"trailer-rental/internal/usecase/commands"
	"trailer-rental/internal/usecase/queries"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseQueriesModule,
	usecaseCommandsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	pin.NewRandomCodeGenerator,
	commands.NewPinManager,
	commands.NewPaymentCoordinator,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewReservationCommands,
		commands.NewTrailerCommands,
		commands.NewProfileCommands,
		commands.NewPaymentCommands,
		commands.NewSweepCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewReservationQueries,
		queries.NewTrailerQueries,
		queries.NewProfileQueries,
	),
)

package components

import (
	"trailer-rental/internal/infra/db"
	"trailer-rental/internal/infra/readstore"
	"trailer-rental/internal/infra/uow"
	"trailer-rental/internal/usecase/queries"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	baseOption,
	readstoreModule,
	repositoryModule,
)

var baseOption = fx.Provide(
	NewDBTX,
)

var readstoreModule = fx.Module("persistence/readstore",
	fx.Provide(
		fx.Annotate(
			readstore.NewReservationReadStore,
			fx.As(new(queries.ReservationReadStore)),
		),
		fx.Annotate(
			readstore.NewTrailerReadStore,
			fx.As(new(queries.TrailerReadStore)),
		),
		fx.Annotate(
			readstore.NewProfileReadStore,
			fx.As(new(queries.ProfileReadStore)),
		),
	),
)

// Write repositories are built per transaction by the unit of work.
var repositoryModule = fx.Module("persistence/repository",
	fx.Provide(
		uow.NewPostgresUoW,
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

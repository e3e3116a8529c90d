package components

import (
	"harborline/internal/infra/db"
	"harborline/internal/infra/readstore"
	"harborline/internal/infra/uow"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/fx"
)

var PersistenceModule = fx.Module("persistence",
	fx.Provide(
		NewDBTX,
		// UnitOfWork owns write transactions; CommandReads is its
		// pooled read surface for pre-transaction lookups.
		uow.NewPostgresUoW,
		NewCommandReads,
		// Booking read store backs both the booking views and the
		// availability checks.
		fx.Annotate(
			readstore.NewBookingReadStore,
			fx.As(new(queries.BookingViewRepo)),
			fx.As(new(queries.AvailabilityRepo)),
		),
	),
)

func NewDBTX(pool *pgxpool.Pool) db.DBTX {
	return pool
}

func NewCommandReads(u shared.UnitOfWork) shared.CommandReads {
	return u.CommandReads()
}

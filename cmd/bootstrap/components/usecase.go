package components

import (
	"harborline/internal/domain/booking"
	"harborline/internal/pkg/clock"
	"harborline/internal/pkg/config"
	"harborline/internal/usecase"
	"harborline/internal/usecase/commands"
	"harborline/internal/usecase/queries"
	"harborline/internal/usecase/shared"

	"go.uber.org/fx"
)

var UseCaseModule = fx.Module("usecase",
	usecaseBaseOption,
	usecaseCommandsModule,
	usecaseQueriesModule,
	usecaseValidatorsModule,
)

var usecaseBaseOption = fx.Provide(
	clock.NewRealClock,
	booking.NewFactory,
)

var usecaseCommandsModule = fx.Module("usecase/commands",
	fx.Provide(
		commands.NewBookingCommands,
		commands.NewRatingCommands,
		NewSweepCommands,
	),
)

var usecaseQueriesModule = fx.Module("usecase/queries",
	fx.Provide(
		queries.NewBookingQueries,
		queries.NewAvailabilityQueries,
	),
)

var usecaseValidatorsModule = fx.Module("usecase/validators",
	fx.Provide(
		usecase.NewTokenValidator,
	),
)

func NewSweepCommands(u shared.UnitOfWork, publisher shared.EventPublisher, clk clock.Clock, cfg config.Config) commands.SweepCommands {
	return commands.NewSweepCommands(u, publisher, clk, cfg.Sweeper.RowDeadline)
}

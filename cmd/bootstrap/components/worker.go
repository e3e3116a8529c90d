package components

import (
	"context"

	"harborline/internal/pkg/config"
	"harborline/internal/usecase/commands"
	"harborline/internal/worker"

	"go.uber.org/fx"
)

var WorkerModule = fx.Module("worker",
	fx.Provide(
		NewSweeper,
	),
	fx.Invoke(runSweeper),
)

func NewSweeper(sweep commands.SweepCommands, cfg config.Config) *worker.Sweeper {
	return worker.NewSweeper(sweep, cfg.Sweeper)
}

func runSweeper(lc fx.Lifecycle, sweeper *worker.Sweeper) {
	lc.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			sweeper.Start()
			return nil
		},
		OnStop: func(_ context.Context) error {
			sweeper.Stop()
			return nil
		},
	})
}

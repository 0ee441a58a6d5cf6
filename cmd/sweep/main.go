// Command sweep runs one scheduled job and exits. It is meant for cron-style
// schedulers that cannot call the HTTP job endpoints.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"log/slog"
	"os"

	"trailer-rental/cmd/bootstrap"
	"trailer-rental/internal/pkg/errs"
	"trailer-rental/internal/usecase/commands"

	"go.uber.org/fx"
)

func runJob(ctx context.Context, job string, cmds commands.SweepCommands) (any, error) {
	switch job {
	case "auto-extend":
		return cmds.AutoExtend(ctx)
	case "expire-pins":
		return cmds.ExpirePins(ctx)
	default:
		return nil, errs.Newf("unknown job %q, want auto-extend or expire-pins", job)
	}
}

func main() {
	job := flag.String("job", "", "job to run: auto-extend or expire-pins")
	flag.Parse()

	var runErr error
	app := fx.New(
		bootstrap.CoreModule,
		fx.NopLogger,
		fx.Invoke(func(lc fx.Lifecycle, shutdowner fx.Shutdowner, cmds commands.SweepCommands, logger *slog.Logger) {
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						report, err := runJob(context.Background(), *job, cmds)
						if err != nil {
							runErr = err
						} else {
							out, _ := json.Marshal(report)
							logger.Info("job finished", "job", *job, "report", string(out))
						}
						_ = shutdowner.Shutdown()
					}()
					return nil
				},
			})
		}),
	)

	if err := app.Start(context.Background()); err != nil {
		slog.Error("sweep failed to start", "error", err)
		os.Exit(1)
	}
	<-app.Done()
	if err := app.Stop(context.Background()); err != nil {
		slog.Error("sweep failed to stop cleanly", "error", err)
	}
	if runErr != nil {
		slog.Error("job failed", "job", *job, "error", runErr)
		os.Exit(1)
	}
}

package reconcile

import (
	"context"
	"log"
	"time"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	enginesvc "signal_bot/internal/modules/engine/service"
	restsvc "signal_bot/internal/modules/mexc_rest/service"
	"signal_bot/internal/modules/reconcile/service"
)

func newBackstop(cfg *config.Config, tracker *enginesvc.Tracker, th *enginesvc.ThresholdDetector) *service.Backstop {
	return service.NewBackstop(tracker, th, cfg.ReconcilePeriod)
}

func newWarmup(cfg *config.Config, rest *restsvc.Client, disc *restsvc.Discovery, eng *enginesvc.Engine) *service.Warmup {
	return service.NewWarmup(rest, disc, eng, cfg.ReconcilePeriod)
}

func Module() fx.Option {
	return fx.Module("reconcile",
		fx.Provide(
			newBackstop,
			newWarmup,
		),
		fx.Invoke(func(lc fx.Lifecycle, b *service.Backstop, w *service.Warmup, ctx context.Context) {
			runCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go b.Run(runCtx)
					go func() {
						// первый прогрев сразу, не ждём тикер
						w.RunOnce(runCtx, time.Now())
						w.Run(runCtx)
					}()
					log.Printf("[RECONCILE] jobs started")
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					return nil
				},
			})
		}),
	)
}

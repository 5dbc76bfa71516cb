package mexcrest

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/mexc_rest/service"
	wssvc "signal_bot/internal/modules/mexc_ws/service"
)

func Module() fx.Option {
	return fx.Module("mexc_rest",
		fx.Provide(
			service.NewClient,
			service.NewDiscovery,
			// *service.Discovery -> wssvc.SymbolSource
			func(d *service.Discovery) wssvc.SymbolSource { return d },
		),
		fx.Invoke(func(lc fx.Lifecycle, cfg *config.Config, d *service.Discovery, resub service.Resubscriber, ctx context.Context) {
			runCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(startCtx context.Context) error {
					// первый Refresh до старта стрима: иначе подписываться не на что
					if _, err := d.Refresh(startCtx); err != nil {
						log.Printf("[DISCOVERY] initial refresh error: %v", err)
					}
					go d.Run(runCtx, cfg.DiscoveryPeriod, resub)
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

package mexcws

import (
	"context"
	"log"

	"go.uber.org/fx"

	enginesvc "signal_bot/internal/modules/engine/service"
	restsvc "signal_bot/internal/modules/mexc_rest/service"
	"signal_bot/internal/modules/mexc_ws/service"
)

func Module() fx.Option {
	return fx.Module("mexc_ws",
		fx.Provide(
			service.NewClient,
			// *enginesvc.Engine -> service.StreamSink
			func(e *enginesvc.Engine) service.StreamSink { return e },
			// *service.Client -> restsvc.Resubscriber
			func(c *service.Client) restsvc.Resubscriber { return c },
		),
		fx.Invoke(func(lc fx.Lifecycle, c *service.Client, ctx context.Context) {
			runCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					go func() {
						log.Printf("[WS] dispatcher loop started")
						c.Run(runCtx)
						log.Printf("[WS] dispatcher loop stopped")
					}()
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

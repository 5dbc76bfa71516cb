package telegram

import (
	"context"

	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/telegram_bot/service"
	"signal_bot/internal/modules/telegram_bot/service/pg"
)

func Module() fx.Option {
	return fx.Module("telegram",
		fx.Provide(
			pg.NewSubscriber,
			service.NewTelegram,
		),
		fx.Invoke(func(lc fx.Lifecycle, t *service.Telegram, alerts <-chan models.AlertEvent, ctx context.Context) {
			runCtx, cancel := context.WithCancel(ctx)
			lc.Append(fx.Hook{
				OnStart: func(_ context.Context) error {
					if err := t.Start(runCtx); err != nil {
						cancel()
						return err
					}
					go t.DispatchLoop(runCtx, alerts)
					return nil
				},
				OnStop: func(_ context.Context) error {
					cancel()
					t.Stop()
					return nil
				},
			})
		}),
	)
}

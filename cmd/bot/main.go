package main

import (
	"context"
	"log"

	"go.uber.org/fx"

	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/engine"
	"signal_bot/internal/modules/health"
	mexcrest "signal_bot/internal/modules/mexc_rest"
	mexcws "signal_bot/internal/modules/mexc_ws"
	"signal_bot/internal/modules/postgres"
	"signal_bot/internal/modules/reconcile"
	telegram "signal_bot/internal/modules/telegram_bot"
	"signal_bot/pkg/logger"
	"signal_bot/pkg/tracing"
)

func main() {
	if err := logger.Init(); err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	app := fx.New(
		fx.Provide(
			func() context.Context {
				return context.Background()
			},
		),
		config.Module(),
		postgres.Module(),
		engine.Module(),
		mexcrest.Module(),
		mexcws.Module(),
		reconcile.Module(),
		telegram.Module(),
		health.Module(),
		fx.Invoke(initTracing),
	)
	app.Run()
}

// initTracing — jaeger включается только при заданном хосте, иначе
// остаётся noop-трейсер.
func initTracing(lc fx.Lifecycle, cfg *config.Config) error {
	if cfg.Jaeger.Host == "" {
		return nil
	}
	_, closer, err := tracing.InitTracer(tracing.Config{
		Host: cfg.Jaeger.Host,
		Port: cfg.Jaeger.Port,
	})
	if err != nil {
		return err
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			closer()
			return nil
		},
	})
	return nil
}

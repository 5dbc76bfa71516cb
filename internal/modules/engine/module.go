package engine

import (
	"go.uber.org/fx"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	"signal_bot/internal/modules/engine/service"
)

func newAlertsChan(cfg *config.Config) chan models.AlertEvent {
	return make(chan models.AlertEvent, cfg.AlertQueueSize)
}
func asSendOnlyAlerts(ch chan models.AlertEvent) chan<- models.AlertEvent { return ch }
func asRecvOnlyAlerts(ch chan models.AlertEvent) <-chan models.AlertEvent { return ch }

func newIndicatorStore(cfg *config.Config) *service.IndicatorStore {
	return service.NewIndicatorStore(cfg.EMAPeriod)
}

func newThresholdDetector(cfg *config.Config) *service.ThresholdDetector {
	return service.NewThresholdDetector(service.ThresholdConfig{
		PumpPct:    cfg.PumpThresholdPct,
		DumpPct:    cfg.DumpThresholdPct,
		ExtremePct: cfg.ExtremeThresholdPct,
		RearmPct:   cfg.RearmIncrementPct,
		ResetBand:  cfg.ResetBandPct,
		ResetStall: cfg.ResetStall,
	})
}

func newProximityDetector(cfg *config.Config, ind *service.IndicatorStore) *service.ProximityDetector {
	return service.NewProximityDetector(service.ProximityConfig{
		ProximityPct: cfg.ProximityPct,
		TouchPct:     cfg.TouchPct,
		Cooldown:     cfg.EMACooldown,
		Timeframes:   cfg.Timeframes(),
	}, ind)
}

func newTracker(cfg *config.Config, th *service.ThresholdDetector) *service.Tracker {
	return service.NewTracker(cfg.MinVolume24h, th)
}

func Module() fx.Option {
	return fx.Module("engine",
		fx.Provide(
			newAlertsChan,
			asSendOnlyAlerts,
			asRecvOnlyAlerts,
			newIndicatorStore,
			newThresholdDetector,
			newProximityDetector,
			newTracker,
			service.NewEngine,
		),
	)
}

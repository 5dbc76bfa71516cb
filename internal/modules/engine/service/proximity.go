package service

import (
	"math"
	"sync"
	"time"

	"signal_bot/internal/models"
)

type ProximityConfig struct {
	ProximityPct float64 // ширина зоны вокруг EMA
	TouchPct     float64 // |distance| меньше — статус touching
	Cooldown     time.Duration
	Timeframes   []models.Timeframe
}

// ProximityDetector — близость цены к EMA-200 по таймфреймам.
// Кулдаун на (символ, таймфрейм) общий для стрима и батч-рескана:
// оба пути ходят через Evaluate.
type ProximityDetector struct {
	cfg        ProximityConfig
	indicators *IndicatorStore

	mu       sync.Mutex
	lastFire map[tfKey]time.Time
}

func NewProximityDetector(cfg ProximityConfig, indicators *IndicatorStore) *ProximityDetector {
	return &ProximityDetector{
		cfg:        cfg,
		indicators: indicators,
		lastFire:   make(map[tfKey]time.Time),
	}
}

func (d *ProximityDetector) Timeframes() []models.Timeframe { return d.cfg.Timeframes }

// Evaluate — ноль, одно или несколько событий: по событию на каждый
// таймфрейм, где цена в зоне и кулдаун истёк.
func (d *ProximityDetector) Evaluate(symbol string, price float64, now time.Time) []models.EmaProximityEvent {
	if price <= 0 {
		return nil
	}

	var out []models.EmaProximityEvent
	for _, tf := range d.cfg.Timeframes {
		ema, ok := d.indicators.GetEMA(symbol, tf)
		if !ok || ema <= 0 {
			continue // не прогрет — молча пропускаем
		}

		distancePct := (price - ema) / ema * 100
		if math.Abs(distancePct) > d.cfg.ProximityPct {
			continue
		}
		if !d.tryFire(tfKey{Symbol: symbol, Timeframe: tf}, now) {
			continue
		}

		status := models.ProximityAbove
		switch {
		case math.Abs(distancePct) <= d.cfg.TouchPct:
			status = models.ProximityTouching
		case distancePct < 0:
			status = models.ProximityBelow
		}

		out = append(out, models.EmaProximityEvent{
			Symbol:       symbol,
			Timeframe:    tf,
			EMA:          ema,
			CurrentPrice: price,
			DistancePct:  distancePct,
			Status:       status,
			At:           now,
		})
	}
	return out
}

// tryFire — compare-and-set по кулдауну.
func (d *ProximityDetector) tryFire(k tfKey, now time.Time) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if last, ok := d.lastFire[k]; ok && now.Sub(last) <= d.cfg.Cooldown {
		return false
	}
	d.lastFire[k] = now
	return true
}

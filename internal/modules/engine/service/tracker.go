package service

import (
	"sync"

	"signal_bot/internal/models"
)

// Tracker — последняя цена по символу плюс бутстрап референса.
type Tracker struct {
	minVolume float64
	threshold *ThresholdDetector

	mu   sync.RWMutex
	last map[string]models.PriceSample
}

func NewTracker(minVolume float64, threshold *ThresholdDetector) *Tracker {
	return &Tracker{
		minVolume: minVolume,
		threshold: threshold,
		last:      make(map[string]models.PriceSample),
	}
}

// OnTick обновляет LastPrice всегда; bootstrap=true на первом наблюдении
// символа (детекторы не запускаем — сравнивать ещё не с чем), detect=false
// для неликвида: ведём учёт, но тревог по нему нет.
func (t *Tracker) OnTick(s models.PriceSample) (bootstrap, detect bool) {
	t.mu.Lock()
	t.last[s.Symbol] = s
	t.mu.Unlock()

	if t.threshold.Bootstrap(s.Symbol, s.Price) {
		return true, false
	}
	if s.Volume24h < t.minVolume {
		return false, false
	}
	return false, true
}

// Liquid — проходит ли сэмпл фильтр ликвидности.
func (t *Tracker) Liquid(s models.PriceSample) bool {
	return s.Volume24h >= t.minVolume
}

func (t *Tracker) LastPrice(symbol string) (models.PriceSample, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	s, ok := t.last[symbol]
	return s, ok
}

// Snapshot — копия всех последних цен, для периодических джоб.
func (t *Tracker) Snapshot() []models.PriceSample {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]models.PriceSample, 0, len(t.last))
	for _, s := range t.last {
		out = append(out, s)
	}
	return out
}

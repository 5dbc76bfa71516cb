package service

import (
	"testing"

	"signal_bot/internal/models"
)

func sample(symbol string, price, vol float64) models.PriceSample {
	return models.PriceSample{Symbol: symbol, Price: price, Volume24h: vol, ObservedAt: t0}
}

func TestTrackerBootstrapAndDetect(t *testing.T) {
	tr := NewTracker(100_000, NewThresholdDetector(testThresholdCfg()))

	bootstrap, detect := tr.OnTick(sample("BTC_USDT", 100, 500_000))
	if !bootstrap || detect {
		t.Errorf("first tick: bootstrap=%v detect=%v, want true false", bootstrap, detect)
	}
	bootstrap, detect = tr.OnTick(sample("BTC_USDT", 101, 500_000))
	if bootstrap || !detect {
		t.Errorf("second tick: bootstrap=%v detect=%v, want false true", bootstrap, detect)
	}
}

func TestTrackerVolumeFilter(t *testing.T) {
	tr := NewTracker(100_000, NewThresholdDetector(testThresholdCfg()))
	tr.OnTick(sample("SHIB_USDT", 1, 99_999))

	// неликвид: LastPrice ведём, детектирование — нет
	if _, detect := tr.OnTick(sample("SHIB_USDT", 2, 99_999)); detect {
		t.Error("illiquid symbol passed to detectors")
	}
	if s, ok := tr.LastPrice("SHIB_USDT"); !ok || s.Price != 2 {
		t.Errorf("LastPrice = %+v %v, want price 2", s, ok)
	}
	// объём подрос — детектирование включается
	if _, detect := tr.OnTick(sample("SHIB_USDT", 3, 100_000)); !detect {
		t.Error("liquid tick not passed to detectors")
	}
}

func TestTrackerSnapshot(t *testing.T) {
	tr := NewTracker(0, NewThresholdDetector(testThresholdCfg()))
	tr.OnTick(sample("BTC_USDT", 100, 1))
	tr.OnTick(sample("ETH_USDT", 50, 1))
	tr.OnTick(sample("BTC_USDT", 110, 1))

	snap := tr.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("snapshot size = %d, want 2", len(snap))
	}
	prices := map[string]float64{}
	for _, s := range snap {
		prices[s.Symbol] = s.Price
	}
	if prices["BTC_USDT"] != 110 || prices["ETH_USDT"] != 50 {
		t.Errorf("snapshot prices = %v", prices)
	}
}

package service

import (
	"math"
	"testing"

	"signal_bot/internal/models"
)

func candleAt(i int, close float64) models.CandleClose {
	return models.CandleClose{
		Symbol:    "BTC_USDT",
		Timeframe: models.TFMin15,
		Close:     close,
		OpenTime:  int64(i+1) * 900_000,
	}
}

// refEMA — прямой расчёт: SMA по первым period, дальше фолд.
func refEMA(closes []float64, period int) float64 {
	var sum float64
	for _, c := range closes[:period] {
		sum += c
	}
	ema := sum / float64(period)
	k := 2.0 / (float64(period) + 1)
	for _, c := range closes[period:] {
		ema = c*k + ema*(1-k)
	}
	return ema
}

func TestIndicatorEMAMatchesReference(t *testing.T) {
	const period = 200
	s := NewIndicatorStore(period)

	closes := make([]float64, 250)
	for i := range closes {
		// детерминированная волна вокруг 100
		closes[i] = 100 + 10*math.Sin(float64(i)/7) + float64(i%5)
		if !s.OnCandleClose(candleAt(i, closes[i])) {
			t.Fatalf("candle %d rejected", i)
		}
	}

	got, ok := s.GetEMA("BTC_USDT", models.TFMin15)
	if !ok {
		t.Fatal("EMA not warmed after 250 candles")
	}
	// буфер держит только последние period закрытий, затравка скользит
	want := refEMA(closes[len(closes)-period:], period)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("EMA: got %.12f, want %.12f", got, want)
	}
}

func TestIndicatorNotWarmedBelowPeriod(t *testing.T) {
	s := NewIndicatorStore(200)
	for i := 0; i < 199; i++ {
		s.OnCandleClose(candleAt(i, 100))
	}
	if _, ok := s.GetEMA("BTC_USDT", models.TFMin15); ok {
		t.Error("EMA reported before period candles accumulated")
	}
	s.OnCandleClose(candleAt(199, 100))
	if ema, ok := s.GetEMA("BTC_USDT", models.TFMin15); !ok || math.Abs(ema-100) > 1e-9 {
		t.Errorf("after exactly period candles: ema=%.6f ok=%v, want 100 true", ema, ok)
	}
}

func TestIndicatorRejectsDuplicateAndOutOfOrder(t *testing.T) {
	s := NewIndicatorStore(3)
	for i, c := range []float64{10, 11, 12} {
		s.OnCandleClose(candleAt(i, c))
	}
	before, _ := s.GetEMA("BTC_USDT", models.TFMin15)

	if s.OnCandleClose(candleAt(2, 999)) {
		t.Error("duplicate openTime accepted")
	}
	if s.OnCandleClose(candleAt(0, 999)) {
		t.Error("out-of-order openTime accepted")
	}
	after, _ := s.GetEMA("BTC_USDT", models.TFMin15)
	if before != after {
		t.Errorf("EMA changed by rejected candles: %.6f -> %.6f", before, after)
	}
}

func TestIndicatorRejectsNonPositiveClose(t *testing.T) {
	s := NewIndicatorStore(3)
	if s.OnCandleClose(candleAt(0, 0)) {
		t.Error("zero close accepted")
	}
	if s.OnCandleClose(candleAt(1, -5)) {
		t.Error("negative close accepted")
	}
}

func TestIndicatorSeed(t *testing.T) {
	s := NewIndicatorStore(5)

	s.Seed("ETH_USDT", models.TFHour1, []float64{1, 2, 3})
	if _, ok := s.GetEMA("ETH_USDT", models.TFHour1); ok {
		t.Error("short seed warmed the buffer")
	}

	s.Seed("ETH_USDT", models.TFHour1, []float64{1, 2, 3, 4, 5, 6, 7})
	got, ok := s.GetEMA("ETH_USDT", models.TFHour1)
	if !ok {
		t.Fatal("seed with enough closes did not warm")
	}
	want := refEMA([]float64{3, 4, 5, 6, 7}, 5)
	if math.Abs(got-want) > 1e-9 {
		t.Errorf("seeded EMA: got %.9f, want %.9f", got, want)
	}

	// повторный более короткий прогрев — no-op
	s.Seed("ETH_USDT", models.TFHour1, []float64{100, 100, 100})
	if after, _ := s.GetEMA("ETH_USDT", models.TFHour1); after != got {
		t.Errorf("shorter re-seed changed EMA: %.9f -> %.9f", got, after)
	}
}

func TestIndicatorSeedKeepsOpenTimeFloor(t *testing.T) {
	s := NewIndicatorStore(3)
	s.OnCandleClose(candleAt(9, 50)) // lastOpenTime = 10*900000
	s.Seed("BTC_USDT", models.TFMin15, []float64{1, 2, 3})

	// свеча старше уже виденной по стриму всё ещё отбрасывается
	if s.OnCandleClose(candleAt(5, 60)) {
		t.Error("stale candle accepted after seed")
	}
	if !s.OnCandleClose(candleAt(10, 60)) {
		t.Error("fresh candle rejected after seed")
	}
}

func TestIndicatorWarmedAndUnwarmed(t *testing.T) {
	tfs := []models.Timeframe{models.TFMin15, models.TFHour1}
	s := NewIndicatorStore(2)
	s.Seed("BTC_USDT", models.TFMin15, []float64{1, 2})

	warmed := s.WarmedTimeframes("BTC_USDT", tfs)
	if len(warmed) != 1 || warmed[0] != models.TFMin15 {
		t.Errorf("warmed = %v, want [Min15]", warmed)
	}

	un := s.Unwarmed([]string{"BTC_USDT", "ETH_USDT"}, tfs)
	if len(un) != 3 {
		t.Fatalf("unwarmed pairs = %d, want 3: %v", len(un), un)
	}
	for _, k := range un {
		if k.Symbol == "BTC_USDT" && k.Timeframe == models.TFMin15 {
			t.Errorf("warmed pair reported as unwarmed: %v", k)
		}
	}
}

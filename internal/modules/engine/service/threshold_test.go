package service

import (
	"testing"
	"time"

	"signal_bot/internal/models"
)

func testThresholdCfg() ThresholdConfig {
	return ThresholdConfig{
		PumpPct:    3.0,
		DumpPct:    -3.0,
		ExtremePct: 10.0,
		RearmPct:   1.5,
		ResetBand:  1.5,
		ResetStall: 50 * time.Second,
	}
}

var t0 = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func bootstrapped(t *testing.T, ref float64) *ThresholdDetector {
	t.Helper()
	d := NewThresholdDetector(testThresholdCfg())
	if !d.Bootstrap("BTC_USDT", ref) {
		t.Fatal("first Bootstrap returned false")
	}
	return d
}

func TestThresholdBootstrap(t *testing.T) {
	d := NewThresholdDetector(testThresholdCfg())
	if !d.Bootstrap("BTC_USDT", 100) {
		t.Error("first observation must bootstrap")
	}
	if d.Bootstrap("BTC_USDT", 200) {
		t.Error("second Bootstrap must be a no-op")
	}
	if ref, ok := d.Reference("BTC_USDT"); !ok || ref != 100 {
		t.Errorf("reference = %.2f %v, want 100 true", ref, ok)
	}
}

func TestThresholdFireBoundary(t *testing.T) {
	cases := []struct {
		price    float64
		fire     bool
		severity models.Severity
	}{
		{102.99, false, ""},
		{103.00, true, models.SeverityModerate},
		{110.00, true, models.SeverityExtreme},
		{97.01, false, ""},
		{97.00, true, models.SeverityModerate},
		{90.00, true, models.SeverityExtreme},
	}
	for _, tc := range cases {
		d := bootstrapped(t, 100)
		ev := d.Evaluate("BTC_USDT", tc.price, t0)
		if (ev != nil) != tc.fire {
			t.Errorf("price %.2f: fired=%v, want %v", tc.price, ev != nil, tc.fire)
			continue
		}
		if ev != nil && ev.Severity != tc.severity {
			t.Errorf("price %.2f: severity=%s, want %s", tc.price, ev.Severity, tc.severity)
		}
	}
}

func TestThresholdEventFields(t *testing.T) {
	d := bootstrapped(t, 100)
	ev := d.Evaluate("BTC_USDT", 104, t0)
	if ev == nil {
		t.Fatal("expected event at +4%")
	}
	if ev.Symbol != "BTC_USDT" || ev.ReferencePrice != 100 || ev.CurrentPrice != 104 {
		t.Errorf("bad event fields: %+v", ev)
	}
	if ev.ChangePct < 3.99 || ev.ChangePct > 4.01 {
		t.Errorf("changePct = %.4f, want ~4", ev.ChangePct)
	}
}

func TestThresholdRearm(t *testing.T) {
	d := bootstrapped(t, 100)
	if d.Evaluate("BTC_USDT", 103, t0) == nil {
		t.Fatal("no event at +3%")
	}
	// +1.0 pp после тревоги — молчим
	if ev := d.Evaluate("BTC_USDT", 104, t0.Add(time.Second)); ev != nil {
		t.Errorf("re-fired below re-arm step: %+v", ev)
	}
	// +1.6 pp — новая тревога по той же ноге
	ev := d.Evaluate("BTC_USDT", 104.6, t0.Add(2*time.Second))
	if ev == nil {
		t.Fatal("no event after re-arm step")
	}
	if ev.ReferencePrice != 100 {
		t.Errorf("reference moved during re-arm: %.2f", ev.ReferencePrice)
	}
}

func TestThresholdReversionReset(t *testing.T) {
	d := bootstrapped(t, 100)
	if d.Evaluate("BTC_USDT", 103, t0) == nil {
		t.Fatal("no event at +3%")
	}
	// откат внутрь ResetBand — перебазирование на текущую цену
	if ev := d.Evaluate("BTC_USDT", 101.4, t0.Add(time.Second)); ev != nil {
		t.Errorf("event inside reset band: %+v", ev)
	}
	if ref, _ := d.Reference("BTC_USDT"); ref != 101.4 {
		t.Errorf("reference after reversion = %.2f, want 101.4", ref)
	}
	// движение меряется уже от новой базы
	ev := d.Evaluate("BTC_USDT", 104.5, t0.Add(2*time.Second))
	if ev == nil {
		t.Fatal("no event from new reference")
	}
	if ev.ReferencePrice != 101.4 {
		t.Errorf("event reference = %.2f, want 101.4", ev.ReferencePrice)
	}
}

func TestThresholdStallReset(t *testing.T) {
	d := bootstrapped(t, 100)
	// движение есть, но ниже порога; экскурсия перестаёт расти
	if ev := d.Evaluate("BTC_USDT", 102, t0); ev != nil {
		t.Fatalf("unexpected event at +2%%: %+v", ev)
	}
	// 60с без роста модуля движения — сброс
	if ev := d.Evaluate("BTC_USDT", 102, t0.Add(60*time.Second)); ev != nil {
		t.Errorf("event on stalled move: %+v", ev)
	}
	if ref, _ := d.Reference("BTC_USDT"); ref != 102 {
		t.Errorf("reference after stall = %.2f, want 102", ref)
	}
}

func TestThresholdNoStallWhileGrowing(t *testing.T) {
	d := bootstrapped(t, 100)
	now := t0
	// модуль движения растёт каждые 40с — стагнации нет
	for _, p := range []float64{101.6, 102.0, 102.4} {
		if ev := d.Evaluate("BTC_USDT", p, now); ev != nil {
			t.Fatalf("unexpected event at %.1f: %+v", p, ev)
		}
		now = now.Add(40 * time.Second)
	}
	ev := d.Evaluate("BTC_USDT", 103.5, now)
	if ev == nil {
		t.Fatal("threshold crossing lost: reference must not have reset")
	}
	if ev.ReferencePrice != 100 {
		t.Errorf("reference = %.2f, want 100", ev.ReferencePrice)
	}
}

func TestThresholdExtremeRebases(t *testing.T) {
	d := bootstrapped(t, 100)
	ev := d.Evaluate("BTC_USDT", 112, t0)
	if ev == nil || ev.Severity != models.SeverityExtreme {
		t.Fatalf("expected extreme event, got %+v", ev)
	}
	if ref, _ := d.Reference("BTC_USDT"); ref != 112 {
		t.Errorf("reference after extreme = %.2f, want 112", ref)
	}
	// следующая нога меряется от новой базы, без re-arm хвоста
	ev = d.Evaluate("BTC_USDT", 115.4, t0.Add(time.Second))
	if ev == nil {
		t.Fatalf("no event at +3%% from rebased reference")
	}
	if ev.Severity != models.SeverityModerate {
		t.Errorf("severity = %s, want moderate", ev.Severity)
	}
}

// Регрессия: умеренная тревога на 9.9%, потом 11.6% — extreme должен
// пройти re-arm (9.9+1.5 <= 11.6) и перебазировать.
func TestThresholdModerateThenExtreme(t *testing.T) {
	d := bootstrapped(t, 100)
	ev := d.Evaluate("BTC_USDT", 109.9, t0)
	if ev == nil || ev.Severity != models.SeverityModerate {
		t.Fatalf("first event: %+v, want moderate", ev)
	}
	ev = d.Evaluate("BTC_USDT", 111.6, t0.Add(time.Second))
	if ev == nil || ev.Severity != models.SeverityExtreme {
		t.Fatalf("second event: %+v, want extreme", ev)
	}
	if ref, _ := d.Reference("BTC_USDT"); ref != 111.6 {
		t.Errorf("reference = %.2f, want 111.6", ref)
	}
}

func TestThresholdUnknownSymbolAndBadPrice(t *testing.T) {
	d := NewThresholdDetector(testThresholdCfg())
	if ev := d.Evaluate("NOPE_USDT", 100, t0); ev != nil {
		t.Errorf("event without reference: %+v", ev)
	}
	d.Bootstrap("BTC_USDT", 100)
	if ev := d.Evaluate("BTC_USDT", 0, t0); ev != nil {
		t.Errorf("event on zero price: %+v", ev)
	}
}

func TestThresholdBackstopReset(t *testing.T) {
	d := bootstrapped(t, 100)
	if d.BackstopReset("NOPE_USDT", 50, t0, time.Hour) {
		t.Error("backstop reset on unknown symbol")
	}

	if d.Evaluate("BTC_USDT", 103, t0) == nil {
		t.Fatal("no event at +3%")
	}
	// недавняя тревога защищает референс
	if d.BackstopReset("BTC_USDT", 103, t0.Add(time.Minute), time.Hour) {
		t.Error("backstop overrode a fresh alert")
	}
	if ref, _ := d.Reference("BTC_USDT"); ref != 100 {
		t.Errorf("reference = %.2f, want 100", ref)
	}
	// тишина дольше maxQuiet — подтягиваем
	if !d.BackstopReset("BTC_USDT", 103, t0.Add(2*time.Hour), time.Hour) {
		t.Error("backstop skipped a quiet symbol")
	}
	if ref, _ := d.Reference("BTC_USDT"); ref != 103 {
		t.Errorf("reference = %.2f, want 103", ref)
	}
}

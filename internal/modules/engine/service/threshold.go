package service

import (
	"math"
	"sync"
	"time"

	"signal_bot/internal/models"
)

type ThresholdConfig struct {
	PumpPct    float64 // порог пампа, >0
	DumpPct    float64 // порог дампа, <0
	ExtremePct float64 // |изменение| для extreme
	RearmPct   float64 // шаг продления тревоги по той же ноге
	ResetBand  float64 // |изменение| меньше — возврат к базе
	ResetStall time.Duration
}

// excursion — накопленное движение от референса с момента последнего сброса.
type excursion struct {
	maxAbsPct      float64 // со знаком, наибольший по модулю
	lastAlertedPct *float64
	lastChangeAt   time.Time // когда модуль движения последний раз рос
	lastAlertAt    time.Time
}

// ThresholdDetector — pump/dump относительно подвижного референса.
// Референс и экскурсия меняются только под общим мьютексом: стрим,
// бэкстоп-джоба и бутстрап ходят через одни и те же методы.
type ThresholdDetector struct {
	cfg ThresholdConfig

	mu        sync.Mutex
	reference map[string]float64
	exc       map[string]*excursion
}

func NewThresholdDetector(cfg ThresholdConfig) *ThresholdDetector {
	return &ThresholdDetector{
		cfg:       cfg,
		reference: make(map[string]float64),
		exc:       make(map[string]*excursion),
	}
}

// Bootstrap — первая цена символа становится референсом.
// true = это было первое наблюдение, детекторы на этом тике не запускаем.
func (d *ThresholdDetector) Bootstrap(symbol string, price float64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.reference[symbol]; ok {
		return false
	}
	d.reference[symbol] = price
	d.exc[symbol] = &excursion{}
	return true
}

// Reference — текущий референс. Однажды появившись, не исчезает.
func (d *ThresholdDetector) Reference(symbol string) (float64, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	ref, ok := d.reference[symbol]
	return ref, ok
}

// Evaluate — один тик через политику сброса, порог и re-arm.
func (d *ThresholdDetector) Evaluate(symbol string, price float64, now time.Time) *models.PumpDumpEvent {
	if price <= 0 {
		return nil
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	ref, ok := d.reference[symbol]
	if !ok || ref <= 0 {
		return nil
	}
	ex := d.exc[symbol]
	if ex == nil {
		ex = &excursion{}
		d.exc[symbol] = ex
	}

	changePct := (price - ref) / ref * 100

	if math.Abs(changePct) > math.Abs(ex.maxAbsPct) {
		ex.maxAbsPct = changePct
		ex.lastChangeAt = now
	}

	// Сброс до проверки порога: цена вернулась к базе или движение заглохло.
	if math.Abs(changePct) < d.cfg.ResetBand ||
		(!ex.lastChangeAt.IsZero() && now.Sub(ex.lastChangeAt) > d.cfg.ResetStall) {
		d.resetLocked(symbol, price)
		return nil
	}

	if changePct < d.cfg.PumpPct && changePct > d.cfg.DumpPct {
		return nil
	}

	// Re-arm: по той же ноге стреляем снова только после продления на RearmPct.
	if ex.lastAlertedPct != nil &&
		math.Abs(changePct) < math.Abs(*ex.lastAlertedPct)+d.cfg.RearmPct {
		return nil
	}

	alerted := changePct
	ex.lastAlertedPct = &alerted
	ex.lastAlertAt = now

	ev := &models.PumpDumpEvent{
		Symbol:         symbol,
		ReferencePrice: ref,
		CurrentPrice:   price,
		ChangePct:      changePct,
		Severity:       models.SeverityModerate,
		At:             now,
	}
	if math.Abs(changePct) >= d.cfg.ExtremePct {
		ev.Severity = models.SeverityExtreme
		// extreme сразу перебазирует: следующее движение меряем от текущей цены
		d.resetLocked(symbol, price)
	}
	return ev
}

// BackstopReset — страховка от дрейфа: если по символу давно не было тревог,
// референс принудительно подтягивается к последней цене.
func (d *ThresholdDetector) BackstopReset(symbol string, price float64, now time.Time, maxQuiet time.Duration) bool {
	if price <= 0 {
		return false
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.reference[symbol]; !ok {
		return false
	}
	if ex := d.exc[symbol]; ex != nil && !ex.lastAlertAt.IsZero() && now.Sub(ex.lastAlertAt) < maxQuiet {
		return false
	}
	d.resetLocked(symbol, price)
	return true
}

func (d *ThresholdDetector) resetLocked(symbol string, price float64) {
	d.reference[symbol] = price
	d.exc[symbol] = &excursion{}
}

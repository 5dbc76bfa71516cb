package service

import (
	"log"

	"signal_bot/internal/models"
)

// Engine — единая точка входа стрима: тик → Tracker → ThresholdDetector →
// ProximityDetector, закрытая свеча → IndicatorStore. События уходят в
// канал fire-and-forget: доставка — забота получателя.
type Engine struct {
	tracker    *Tracker
	threshold  *ThresholdDetector
	proximity  *ProximityDetector
	indicators *IndicatorStore

	alerts chan<- models.AlertEvent
}

func NewEngine(
	tracker *Tracker,
	threshold *ThresholdDetector,
	proximity *ProximityDetector,
	indicators *IndicatorStore,
	alerts chan<- models.AlertEvent,
) *Engine {
	return &Engine{
		tracker:    tracker,
		threshold:  threshold,
		proximity:  proximity,
		indicators: indicators,
		alerts:     alerts,
	}
}

func (e *Engine) HandleTick(s models.PriceSample) {
	if s.Price <= 0 {
		return // битый тик отфильтрован ещё на парсинге, но делим только на положительное
	}

	bootstrap, detect := e.tracker.OnTick(s)
	if bootstrap || !detect {
		return
	}

	if ev := e.threshold.Evaluate(s.Symbol, s.Price, s.ObservedAt); ev != nil {
		e.Emit(*ev)
	}
	for _, ev := range e.proximity.Evaluate(s.Symbol, s.Price, s.ObservedAt) {
		e.Emit(ev)
	}
}

func (e *Engine) HandleCandle(c models.CandleClose) {
	e.indicators.OnCandleClose(c)
}

// Emit — неблокирующая отправка; переполненную очередь не ждём.
func (e *Engine) Emit(ev models.AlertEvent) {
	select {
	case e.alerts <- ev:
	default:
		log.Printf("[ENGINE] alert queue full, drop %T %s", ev, ev.AlertSymbol())
	}
}

func (e *Engine) Tracker() *Tracker             { return e.tracker }
func (e *Engine) Threshold() *ThresholdDetector { return e.threshold }
func (e *Engine) Proximity() *ProximityDetector { return e.proximity }
func (e *Engine) Indicators() *IndicatorStore   { return e.indicators }

package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/opentracing/opentracing-go"

	"signal_bot/internal/models"
	enginesvc "signal_bot/internal/modules/engine/service"
)

// HistorySource — исторические закрытия для прогрева (REST).
type HistorySource interface {
	FetchHistoricalCloses(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]float64, error)
}

// SymbolSource — вселенная символов для рескана.
type SymbolSource interface {
	Symbols() []string
}

// Warmup — батч-прогрев EMA из истории плюс полный рескан близости.
// Кулдауны у рескана те же, что у стрима: оба пути ходят через
// ProximityDetector, дублей из двух веток не бывает.
type Warmup struct {
	history HistorySource
	symbols SymbolSource
	engine  *enginesvc.Engine
	period  time.Duration

	// ограничитель параллелизма, чтобы не словить rate limit
	sem chan struct{}
}

func NewWarmup(history HistorySource, symbols SymbolSource, engine *enginesvc.Engine, period time.Duration) *Warmup {
	return &Warmup{
		history: history,
		symbols: symbols,
		engine:  engine,
		period:  period,
		sem:     make(chan struct{}, 8),
	}
}

// RunOnce — прогреть непрогретые пары и пересканировать близость по
// последним ценам всей вселенной.
func (w *Warmup) RunOnce(ctx context.Context, now time.Time) {
	span, ctx := opentracing.StartSpanFromContext(ctx, "reconcile.warmup")
	defer span.Finish()

	syms := w.symbols.Symbols()
	if len(syms) == 0 {
		return
	}

	ind := w.engine.Indicators()
	cold := ind.Unwarmed(syms, w.engine.Proximity().Timeframes())
	span.SetTag("cold_pairs", len(cold))

	var wg sync.WaitGroup
	for _, pair := range cold {
		select {
		case <-ctx.Done():
			wg.Wait()
			return
		default:
		}

		pair := pair
		wg.Add(1)
		go func() {
			defer wg.Done()
			w.sem <- struct{}{}
			defer func() { <-w.sem }()

			closes, err := w.history.FetchHistoricalCloses(ctx, pair.Symbol, pair.Timeframe, ind.Period())
			if err != nil {
				log.Printf("[RECONCILE] warmup %s %s: %v", pair.Symbol, pair.Timeframe, err)
				return
			}
			// короткая история -> пара остаётся непрогретой, это не ошибка
			ind.Seed(pair.Symbol, pair.Timeframe, closes)
		}()
	}
	wg.Wait()

	// рескан близости по последним ценам; стрим мог ещё не прогреть пару
	var fired int
	for _, sym := range syms {
		select {
		case <-ctx.Done():
			return
		default:
		}
		s, ok := w.engine.Tracker().LastPrice(sym)
		if !ok || !w.engine.Tracker().Liquid(s) {
			continue
		}
		for _, ev := range w.engine.Proximity().Evaluate(sym, s.Price, now) {
			w.engine.Emit(ev)
			fired++
		}
	}
	span.SetTag("fired", fired)
}

func (w *Warmup) Run(ctx context.Context) {
	t := time.NewTicker(w.period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			w.RunOnce(ctx, time.Now())
		}
	}
}

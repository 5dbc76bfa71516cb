package service

import (
	"context"
	"log"
	"time"

	"github.com/opentracing/opentracing-go"

	enginesvc "signal_bot/internal/modules/engine/service"
)

// Backstop — страховочный сброс референсов: символы без тревог за период
// подтягиваются к последней цене, чтобы референс не дрейфовал, если
// динамический сброс в детекторе так и не сработал.
type Backstop struct {
	tracker   *enginesvc.Tracker
	threshold *enginesvc.ThresholdDetector
	period    time.Duration
}

func NewBackstop(tracker *enginesvc.Tracker, threshold *enginesvc.ThresholdDetector, period time.Duration) *Backstop {
	return &Backstop{tracker: tracker, threshold: threshold, period: period}
}

// RunOnce — один проход. Сброс атомарен по символу: отмена посреди
// прохода оставляет уже сброшенные символы в согласованном состоянии,
// остальные доберёт следующий цикл.
func (b *Backstop) RunOnce(ctx context.Context, now time.Time) int {
	span, _ := opentracing.StartSpanFromContext(ctx, "reconcile.backstop")
	defer span.Finish()

	var reset int
	for _, s := range b.tracker.Snapshot() {
		select {
		case <-ctx.Done():
			return reset
		default:
		}
		if b.threshold.BackstopReset(s.Symbol, s.Price, now, b.period) {
			reset++
		}
	}
	span.SetTag("reset", reset)
	return reset
}

func (b *Backstop) Run(ctx context.Context) {
	t := time.NewTicker(b.period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n := b.RunOnce(ctx, time.Now())
			if n > 0 {
				log.Printf("[RECONCILE] backstop reset %d references", n)
			}
		}
	}
}

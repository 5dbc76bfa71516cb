package service

import (
	"context"
	"strings"
	"time"

	"signal_bot/internal/models"
)

const (
	batchMax   = 10
	batchFlush = 2 * time.Second
)

// DispatchLoop — читает события ядра и рассылает подписчикам.
// Группируем до batchMax событий в одно сообщение, чтобы не спамить
// отдельными тревогами при общем движении рынка.
func (t *Telegram) DispatchLoop(ctx context.Context, alerts <-chan models.AlertEvent) {
	var pending []string
	timer := time.NewTimer(batchFlush)
	if !timer.Stop() {
		<-timer.C
	}

	flush := func() {
		if len(pending) == 0 {
			return
		}
		t.Broadcast(strings.Join(pending, "\n\n"))
		pending = pending[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return

		case ev, ok := <-alerts:
			if !ok {
				flush()
				return
			}
			if txt := FormatAlert(ev); txt != "" {
				if len(pending) == 0 {
					timer.Reset(batchFlush)
				}
				pending = append(pending, txt)
			}
			if len(pending) >= batchMax {
				if !timer.Stop() {
					select {
					case <-timer.C:
					default:
					}
				}
				flush()
			}

		case <-timer.C:
			flush()
		}
	}
}

package service

import (
	"context"
	"log"
	"sync"
	"time"

	"signal_bot/internal/models"
)

// Resubscriber — стрим, которому надо переподписаться после изменения
// вселенной символов.
type Resubscriber interface {
	Resubscribe()
}

// Discovery держит известную вселенную символов. Символы только
// добавляются; пропавшие с биржи просто перестают получать апдейты.
type Discovery struct {
	client *Client
	alerts chan<- models.AlertEvent

	mu    sync.RWMutex
	known map[string]struct{}
	order []string
}

func NewDiscovery(client *Client, alerts chan<- models.AlertEvent) *Discovery {
	return &Discovery{
		client: client,
		alerts: alerts,
		known:  make(map[string]struct{}),
	}
}

// Symbols — снапшот вселенной в порядке обнаружения.
func (d *Discovery) Symbols() []string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// Refresh — один опрос списка контрактов. Возвращает новые символы.
// Первый вызов только наполняет вселенную, без событий о листингах.
func (d *Discovery) Refresh(ctx context.Context) ([]string, error) {
	syms, err := d.client.ListActiveSymbols(ctx)
	if err != nil {
		return nil, err
	}

	d.mu.Lock()
	first := len(d.known) == 0
	var added []string
	for _, sym := range syms {
		if _, ok := d.known[sym]; ok {
			continue
		}
		d.known[sym] = struct{}{}
		d.order = append(d.order, sym)
		added = append(added, sym)
	}
	d.mu.Unlock()

	if first {
		log.Printf("[DISCOVERY] initial universe: %d symbols", len(added))
		return nil, nil
	}

	for _, sym := range added {
		log.Printf("[DISCOVERY] new listing: %s", sym)
		select {
		case d.alerts <- models.NewListingEvent{Symbol: sym, At: time.Now()}:
		default:
		}
	}
	return added, nil
}

// Run — периодический опрос вселенной; при новых символах дёргаем
// переподписку стрима.
func (d *Discovery) Run(ctx context.Context, period time.Duration, resub Resubscriber) {
	t := time.NewTicker(period)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			added, err := d.Refresh(ctx)
			if err != nil {
				log.Printf("[DISCOVERY] refresh error: %v", err)
				continue
			}
			if len(added) > 0 && resub != nil {
				resub.Resubscribe()
			}
		}
	}
}

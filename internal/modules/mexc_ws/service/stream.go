package service

import (
	"context"
	"log"
	"time"

	"github.com/gorilla/websocket"

	"signal_bot/internal/models"
)

// readLoop — демультиплексор входящих кадров. Возврат = соединение умерло,
// реконнектом занимается Run.
func (c *Client) readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			select {
			case <-ctx.Done():
			default:
				log.Printf("[WS] read error: %v", err)
			}
			return
		}

		f := parseFrame(msg)
		switch f.kind {
		case frameTick:
			if f.tick.LastPrice <= 0 {
				continue // битый тик, до трекера не доходит
			}
			if c.state != nil {
				c.state.TouchTick(time.Now())
			}
			c.sink.HandleTick(models.PriceSample{
				Symbol:     f.tick.Symbol,
				Price:      f.tick.LastPrice,
				Volume24h:  f.tick.Amount24,
				ObservedAt: time.Now(),
			})

		case frameKline:
			if closed, ok := c.rollKline(f.kline); ok {
				c.sink.HandleCandle(closed)
			}

		case framePing:
			// keep-alive фида отвечаем сразу, вне очереди
			_ = c.writeJSON(conn, map[string]string{"method": "pong"})

		case framePong, frameUnknown:
			// мусор и pong дропаем молча
		}
	}
}

// rollKline — MEXC шлёт kline на каждом тике текущей свечи; закрытие
// узнаём по сдвигу openTime: предыдущий кадр и есть закрытая свеча.
func (c *Client) rollKline(k klineData) (models.CandleClose, bool) {
	key := klineKey{Symbol: k.Symbol, Interval: k.Interval}

	c.klMu.Lock()
	defer c.klMu.Unlock()

	prev, ok := c.lastKline[key]
	c.lastKline[key] = k
	if !ok || k.OpenTime <= prev.OpenTime {
		return models.CandleClose{}, false
	}

	return models.CandleClose{
		Symbol:    prev.Symbol,
		Timeframe: models.Timeframe(prev.Interval),
		Close:     prev.Close,
		OpenTime:  prev.OpenTime * 1000, // секунды фида -> ms
	}, true
}

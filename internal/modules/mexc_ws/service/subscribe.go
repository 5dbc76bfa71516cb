package service

import (
	"context"
	"log"

	"github.com/gorilla/websocket"
)

// subscribeAll — полный набор подписок: sub.ticker на символ плюс
// sub.kline на каждую пару (символ, таймфрейм). Отправка с паузой,
// чтобы не упереться в рейт-лимитер фида.
func (c *Client) subscribeAll(ctx context.Context, conn *websocket.Conn) error {
	syms := c.symbols.Symbols()
	if len(syms) == 0 {
		log.Printf("[WS] empty symbol universe, nothing to subscribe")
		return nil
	}

	tfs := c.cfg.Timeframes()
	log.Printf("[WS] subscribe: %d symbols x (ticker + %d kline)", len(syms), len(tfs))

	for _, sym := range syms {
		if err := c.writeJSON(conn, map[string]any{
			"method": "sub.ticker",
			"param":  map[string]string{"symbol": sym},
		}); err != nil {
			return err
		}
		if !sleepCtx(ctx, c.cfg.SubscribeDelay) {
			return ctx.Err()
		}

		for _, tf := range tfs {
			if err := c.writeJSON(conn, map[string]any{
				"method": "sub.kline",
				"param": map[string]string{
					"symbol":   sym,
					"interval": string(tf),
				},
			}); err != nil {
				return err
			}
			if !sleepCtx(ctx, c.cfg.SubscribeDelay) {
				return ctx.Err()
			}
		}
	}
	return nil
}

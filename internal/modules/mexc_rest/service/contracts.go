package service

import (
	"context"

	"signal_bot/internal/models"
)

// ListActiveSymbols — активные USDT-фьючерсы. Вселенная обновляется
// периодически, ядро добавления применяет идемпотентно.
func (c *Client) ListActiveSymbols(ctx context.Context) ([]string, error) {
	var contracts []models.Contract
	if err := c.getData(ctx, "/api/v1/contract/detail", &contracts); err != nil {
		return nil, err
	}

	out := make([]string, 0, len(contracts))
	for _, ct := range contracts {
		if ct.SettleCoin != "USDT" || ct.State != 0 || ct.Symbol == "" {
			continue
		}
		out = append(out, ct.Symbol)
	}
	return out, nil
}

package service

import (
	"context"
	"fmt"

	"signal_bot/internal/models"
)

// FetchHistoricalCloses — последние count закрытий, хронологически.
// Свежие листинги отдают меньше истории — это не ошибка, пара просто
// остаётся непрогретой до следующего цикла.
func (c *Client) FetchHistoricalCloses(ctx context.Context, symbol string, tf models.Timeframe, count int) ([]float64, error) {
	var data struct {
		Time  []int64   `json:"time"`
		Close []float64 `json:"close"`
	}
	path := fmt.Sprintf("/api/v1/contract/kline/%s?interval=%s", symbol, tf)
	if err := c.getData(ctx, path, &data); err != nil {
		return nil, err
	}

	closes := data.Close
	if len(closes) > 0 {
		// последняя свеча ещё не закрыта, её не берём
		closes = closes[:len(closes)-1]
	}
	if len(closes) > count {
		closes = closes[len(closes)-count:]
	}
	return closes, nil
}

package service

import (
	"context"
	"fmt"
	"time"

	"signal_bot/internal/models"
)

// Calendar — календарь листингов MEXC (отдельный публичный эндпоинт,
// не contract API).
func (c *Client) Calendar(ctx context.Context) ([]models.ListedCoin, error) {
	var resp struct {
		Data struct {
			NewCoins []struct {
				VcoinName     string `json:"vcoinName"`
				VcoinNameFull string `json:"vcoinNameFull"`
				FirstOpenTime int64  `json:"firstOpenTime"`
			} `json:"newCoins"`
		} `json:"data"`
	}
	url := fmt.Sprintf("%s?timestamp=%d", c.calendar, time.Now().UnixMilli())
	if err := c.getJSON(ctx, url, &resp); err != nil {
		return nil, err
	}

	out := make([]models.ListedCoin, 0, len(resp.Data.NewCoins))
	for _, nc := range resp.Data.NewCoins {
		if nc.VcoinName == "" || nc.FirstOpenTime == 0 {
			continue
		}
		out = append(out, models.ListedCoin{
			Symbol:        nc.VcoinName,
			FullName:      nc.VcoinNameFull,
			FirstOpenTime: time.UnixMilli(nc.FirstOpenTime),
		})
	}
	return out, nil
}

// UpcomingListings — листинги в ближайшие days дней.
func (c *Client) UpcomingListings(ctx context.Context, days int) ([]models.ListedCoin, error) {
	coins, err := c.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	until := now.AddDate(0, 0, days)

	var out []models.ListedCoin
	for _, coin := range coins {
		if coin.FirstOpenTime.After(now) && coin.FirstOpenTime.Before(until) {
			out = append(out, coin)
		}
	}
	return out, nil
}

// RecentListings — листинги за прошедшие days дней.
func (c *Client) RecentListings(ctx context.Context, days int) ([]models.ListedCoin, error) {
	coins, err := c.Calendar(ctx)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	since := now.AddDate(0, 0, -days)

	var out []models.ListedCoin
	for _, coin := range coins {
		if coin.FirstOpenTime.After(since) && coin.FirstOpenTime.Before(now) {
			out = append(out, coin)
		}
	}
	return out, nil
}

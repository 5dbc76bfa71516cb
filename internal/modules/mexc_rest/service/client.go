package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"

	"signal_bot/internal/modules/config"
)

const calendarURL = "https://www.mexc.com/api/operation/new_coin_calendar"

// Client — REST-часть MEXC futures: список контрактов, история свечей,
// календарь листингов. Всё только для discovery и прогрева, hot path
// сюда не ходит.
type Client struct {
	base     string
	calendar string
	http     *http.Client
}

func NewClient(cfg *config.Config) *Client {
	return &Client{
		base:     cfg.Mexc.RESTBase,
		calendar: calendarURL,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// apiEnvelope — стандартная обёртка contract-эндпоинтов.
type apiEnvelope struct {
	Success bool            `json:"success"`
	Code    int             `json:"code"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return errors.Wrap(err, "do request")
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		return errors.Errorf("http %d: %s", resp.StatusCode, url)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read body")
	}
	if err := sonic.Unmarshal(body, out); err != nil {
		return errors.Wrap(err, "unmarshal body")
	}
	return nil
}

// getData — обёртка contract API: success=false считаем ошибкой.
func (c *Client) getData(ctx context.Context, path string, out any) error {
	var env apiEnvelope
	if err := c.getJSON(ctx, c.base+path, &env); err != nil {
		return err
	}
	if !env.Success {
		return fmt.Errorf("mexc: success=false code=%d for %s", env.Code, path)
	}
	if err := sonic.Unmarshal(env.Data, out); err != nil {
		return errors.Wrap(err, "unmarshal data")
	}
	return nil
}

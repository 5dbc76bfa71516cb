package service

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/config"
	health "signal_bot/internal/modules/health/service"
)

// State — фазы жизни соединения с фидом.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateSubscribing  State = "subscribing"
	StateStreaming    State = "streaming"
)

// StreamSink — куда уходят разобранные события стрима.
type StreamSink interface {
	HandleTick(models.PriceSample)
	HandleCandle(models.CandleClose)
}

// SymbolSource — актуальная вселенная символов (discovery).
type SymbolSource interface {
	Symbols() []string
}

// Client — один persistent ws на весь фид: тикеры + kline по всем
// таймфреймам. Падение соединения — реконнект с экспоненциальным
// бэкоффом; состояние детекторов реконнект не трогает.
type Client struct {
	cfg     *config.Config
	sink    StreamSink
	symbols SymbolSource
	state   *health.State

	dial func(ctx context.Context, url string) (*websocket.Conn, error)

	mu      sync.Mutex
	conn    *websocket.Conn
	wsState State

	// закрытые свечи: последний kline-кадр на (символ, таймфрейм)
	klMu      sync.Mutex
	lastKline map[klineKey]klineData
}

type klineKey struct {
	Symbol   string
	Interval string
}

func NewClient(cfg *config.Config, sink StreamSink, symbols SymbolSource, state *health.State) *Client {
	dialer := &websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	return &Client{
		cfg:     cfg,
		sink:    sink,
		symbols: symbols,
		state:   state,
		dial: func(ctx context.Context, url string) (*websocket.Conn, error) {
			conn, _, err := dialer.DialContext(ctx, url, nil)
			return conn, err
		},
		wsState:   StateDisconnected,
		lastKline: make(map[klineKey]klineData),
	}
}

func (c *Client) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.wsState
}

func (c *Client) setState(s State) {
	c.mu.Lock()
	c.wsState = s
	c.mu.Unlock()
	if c.state != nil {
		c.state.SetWSConnected(s == StateStreaming)
		if s == StateStreaming {
			c.state.SetReady(true)
		}
	}
}

// Run — цикл реконнекта. Бэкофф 5s → x2 → 60s, сбрасывается после
// успешного выхода в Streaming.
func (c *Client) Run(ctx context.Context) {
	backoff := c.cfg.ReconnectInitial

	for {
		select {
		case <-ctx.Done():
			c.setState(StateDisconnected)
			return
		default:
		}

		c.setState(StateConnecting)
		conn, err := c.dial(ctx, c.cfg.Mexc.WSURL)
		if err != nil {
			log.Printf("[WS] dial error: %v", err)
			c.setState(StateDisconnected)
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.cfg.ReconnectMax)
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.mu.Unlock()

		c.setState(StateSubscribing)
		if err := c.subscribeAll(ctx, conn); err != nil {
			log.Printf("[WS] subscribe error: %v", err)
			_ = conn.Close()
			c.setState(StateDisconnected)
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.cfg.ReconnectMax)
			continue
		}

		c.setState(StateStreaming)
		backoff = c.cfg.ReconnectInitial

		stopPing := make(chan struct{})
		go c.keepAlive(ctx, conn, stopPing)
		// отмена контекста рвёт соединение, иначе readLoop
		// висит в ReadMessage до сетевой ошибки
		go func() {
			select {
			case <-ctx.Done():
				_ = conn.Close()
			case <-stopPing:
			}
		}()

		c.readLoop(ctx, conn) // до первой ошибки чтения
		close(stopPing)
		_ = conn.Close()
		c.setState(StateDisconnected)

		select {
		case <-ctx.Done():
			return
		default:
			if !sleepCtx(ctx, backoff) {
				return
			}
			backoff = nextBackoff(backoff, c.cfg.ReconnectMax)
		}
	}
}

// Resubscribe — принудительный реконнект: вселенная символов поменялась,
// полный набор подписок переотправится при следующем подключении.
func (c *Client) Resubscribe() {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn != nil {
		_ = conn.Close()
	}
}

// writeJSON — все записи в conn через один мьютекс: пишут пингер,
// эхо на ping и подписки.
func (c *Client) writeJSON(conn *websocket.Conn, v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return conn.WriteJSON(v)
}

// keepAlive — прикладной ping, иначе MEXC рвёт тихие соединения.
func (c *Client) keepAlive(ctx context.Context, conn *websocket.Conn, stop <-chan struct{}) {
	t := time.NewTicker(c.cfg.PingInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-stop:
			return
		case <-t.C:
			_ = c.writeJSON(conn, map[string]string{"method": "ping"})
		}
	}
}

func nextBackoff(cur, max time.Duration) time.Duration {
	cur *= 2
	if cur > max {
		return max
	}
	return cur
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

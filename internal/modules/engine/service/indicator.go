package service

import (
	"sync"

	"signal_bot/internal/models"
)

type tfKey struct {
	Symbol    string
	Timeframe models.Timeframe
}

// candleBuffer — цены закрытия, не больше capacity, старые вылетают.
type candleBuffer struct {
	closes       []float64
	lastOpenTime int64 // unix ms последней принятой свечи
	ema          float64
	warmed       bool
}

// IndicatorStore держит буферы закрытий и кэш EMA по (символ, таймфрейм).
type IndicatorStore struct {
	mu      sync.RWMutex
	period  int
	buffers map[tfKey]*candleBuffer
}

func NewIndicatorStore(period int) *IndicatorStore {
	if period <= 1 {
		period = 2
	}
	return &IndicatorStore{
		period:  period,
		buffers: make(map[tfKey]*candleBuffer),
	}
}

func (s *IndicatorStore) Period() int { return s.period }

// OnCandleClose — принять закрытую свечу. Дубликаты и свечи не по порядку
// (openTime <= последней принятой) молча отбрасываем.
func (s *IndicatorStore) OnCandleClose(c models.CandleClose) bool {
	if c.Close <= 0 {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := tfKey{Symbol: c.Symbol, Timeframe: c.Timeframe}
	b, ok := s.buffers[k]
	if !ok {
		b = &candleBuffer{closes: make([]float64, 0, s.period)}
		s.buffers[k] = b
	}
	if c.OpenTime <= b.lastOpenTime {
		return false
	}

	b.lastOpenTime = c.OpenTime
	b.closes = append(b.closes, c.Close)
	if len(b.closes) > s.period {
		// сдвиг вместо ресайза, буфер маленький
		copy(b.closes, b.closes[1:])
		b.closes = b.closes[:s.period]
	}
	s.recompute(b)
	return true
}

// Seed — прогрев историей из REST. Идемпотентен: уже прогретый или более
// полный буфер не трогаем; floor по openTime живых свечей сохраняется.
func (s *IndicatorStore) Seed(symbol string, tf models.Timeframe, closes []float64) {
	if len(closes) == 0 {
		return
	}
	if len(closes) > s.period {
		closes = closes[len(closes)-s.period:]
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	k := tfKey{Symbol: symbol, Timeframe: tf}
	b, ok := s.buffers[k]
	if !ok {
		b = &candleBuffer{}
		s.buffers[k] = b
	}
	if len(b.closes) >= len(closes) {
		return
	}

	b.closes = append(make([]float64, 0, s.period), closes...)
	s.recompute(b)
}

// GetEMA — nil-подобный второй результат пока буфер не набрал period значений.
func (s *IndicatorStore) GetEMA(symbol string, tf models.Timeframe) (float64, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.buffers[tfKey{Symbol: symbol, Timeframe: tf}]
	if !ok || !b.warmed {
		return 0, false
	}
	return b.ema, true
}

// WarmedTimeframes — таймфреймы символа с готовой EMA, в порядке want.
func (s *IndicatorStore) WarmedTimeframes(symbol string, want []models.Timeframe) []models.Timeframe {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Timeframe, 0, len(want))
	for _, tf := range want {
		if b, ok := s.buffers[tfKey{Symbol: symbol, Timeframe: tf}]; ok && b.warmed {
			out = append(out, tf)
		}
	}
	return out
}

// Unwarmed — пары (символ, таймфрейм) без готовой EMA.
func (s *IndicatorStore) Unwarmed(symbols []string, tfs []models.Timeframe) []tfKey {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []tfKey
	for _, sym := range symbols {
		for _, tf := range tfs {
			k := tfKey{Symbol: sym, Timeframe: tf}
			if b, ok := s.buffers[k]; !ok || !b.warmed {
				out = append(out, k)
			}
		}
	}
	return out
}

// recompute — SMA-затравка по первым period значениям, дальше обычный фолд
// ema = price*k + ema*(1-k), k = 2/(period+1). Вызывать под локом.
func (s *IndicatorStore) recompute(b *candleBuffer) {
	if len(b.closes) < s.period {
		b.warmed = false
		return
	}

	var sum float64
	for _, c := range b.closes[:s.period] {
		sum += c
	}
	ema := sum / float64(s.period)

	k := 2.0 / (float64(s.period) + 1)
	for _, c := range b.closes[s.period:] {
		ema = c*k + ema*(1-k)
	}

	b.ema = ema
	b.warmed = true
}

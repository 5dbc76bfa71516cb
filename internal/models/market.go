package models

import "time"

// Timeframe — интервалы свечей MEXC futures.
type Timeframe string

const (
	TFMin1  Timeframe = "Min1"
	TFMin15 Timeframe = "Min15"
	TFHour1 Timeframe = "Min60"
	TFHour4 Timeframe = "Hour4"
	TFDay1  Timeframe = "Day1"
)

func (tf Timeframe) Duration() time.Duration {
	switch tf {
	case TFMin1:
		return time.Minute
	case TFMin15:
		return 15 * time.Minute
	case TFHour1:
		return time.Hour
	case TFHour4:
		return 4 * time.Hour
	case TFDay1:
		return 24 * time.Hour
	}
	return 0
}

// PriceSample — последний тик по символу.
type PriceSample struct {
	Symbol     string
	Price      float64
	Volume24h  float64
	ObservedAt time.Time
}

// CandleClose — закрытая свеча из стрима или REST-прогрева.
type CandleClose struct {
	Symbol    string
	Timeframe Timeframe
	Close     float64
	OpenTime  int64 // unix ms начала свечи
}

type Contract struct {
	Symbol     string `json:"symbol"`
	SettleCoin string `json:"settleCoin"`
	State      int    `json:"state"`
}

// ListedCoin — запись из календаря листингов.
type ListedCoin struct {
	Symbol        string
	FullName      string
	FirstOpenTime time.Time
}

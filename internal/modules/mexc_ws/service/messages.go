package service

import (
	"encoding/json"

	"github.com/bytedance/sonic"
)

// Кадры MEXC contract ws. Всё, что не распозналось — frameUnknown,
// соединение из-за мусора не трогаем.
type frameKind int

const (
	frameUnknown frameKind = iota
	frameTick
	frameKline
	framePing
	framePong
)

type tickerData struct {
	Symbol    string  `json:"symbol"`
	LastPrice float64 `json:"lastPrice"`
	Amount24  float64 `json:"amount24"` // оборот за 24ч в quote
}

type klineData struct {
	Symbol   string  `json:"symbol"`
	Interval string  `json:"interval"`
	Open     float64 `json:"o"`
	Close    float64 `json:"c"`
	High     float64 `json:"h"`
	Low      float64 `json:"l"`
	Volume   float64 `json:"q"`
	OpenTime int64   `json:"t"` // unix seconds начала свечи
}

type frame struct {
	kind  frameKind
	tick  tickerData
	kline klineData
}

func parseFrame(msg []byte) frame {
	var in struct {
		Channel string          `json:"channel"`
		Method  string          `json:"method"`
		Data    json.RawMessage `json:"data"`
	}
	if err := sonic.Unmarshal(msg, &in); err != nil {
		return frame{kind: frameUnknown}
	}

	switch {
	case in.Channel == "push.ticker":
		var d tickerData
		if err := sonic.Unmarshal(in.Data, &d); err != nil || d.Symbol == "" {
			return frame{kind: frameUnknown}
		}
		return frame{kind: frameTick, tick: d}

	case in.Channel == "push.kline":
		var d klineData
		if err := sonic.Unmarshal(in.Data, &d); err != nil || d.Symbol == "" {
			return frame{kind: frameUnknown}
		}
		return frame{kind: frameKline, kline: d}

	case in.Channel == "pong":
		return frame{kind: framePong}

	case in.Channel == "ping" || in.Method == "ping":
		// сервер требует немедленный эхо-ответ
		return frame{kind: framePing}
	}

	return frame{kind: frameUnknown}
}

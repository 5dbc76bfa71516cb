package models

import "time"

type Severity string

const (
	SeverityModerate Severity = "moderate"
	SeverityExtreme  Severity = "extreme"
)

type ProximityStatus string

const (
	ProximityAbove    ProximityStatus = "above"
	ProximityBelow    ProximityStatus = "below"
	ProximityTouching ProximityStatus = "touching"
)

// AlertEvent — единственный выход движка. Доставка best-effort,
// движок не знает о получателях.
type AlertEvent interface {
	AlertSymbol() string
}

// PumpDumpEvent — пробой порога относительно референсной цены.
type PumpDumpEvent struct {
	Symbol         string
	ReferencePrice float64 // референс до сброса
	CurrentPrice   float64
	ChangePct      float64
	Severity       Severity
	At             time.Time
}

func (e PumpDumpEvent) AlertSymbol() string { return e.Symbol }

// EmaProximityEvent — цена рядом с EMA-200 на таймфрейме.
type EmaProximityEvent struct {
	Symbol       string
	Timeframe    Timeframe
	EMA          float64
	CurrentPrice float64
	DistancePct  float64
	Status       ProximityStatus
	At           time.Time
}

func (e EmaProximityEvent) AlertSymbol() string { return e.Symbol }

// NewListingEvent — символ появился в списке контрактов.
type NewListingEvent struct {
	Symbol string
	At     time.Time
}

func (e NewListingEvent) AlertSymbol() string { return e.Symbol }

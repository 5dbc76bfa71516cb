package service

import (
	"fmt"
	"strings"

	"signal_bot/internal/models"
)

// FormatAlert — markdown для одного события.
func FormatAlert(ev models.AlertEvent) string {
	switch e := ev.(type) {
	case models.PumpDumpEvent:
		return formatPumpDump(e)
	case models.EmaProximityEvent:
		return formatProximity(e)
	case models.NewListingEvent:
		return fmt.Sprintf("🆕 *НОВЫЙ ЛИСТИНГ:* `%s`", coinName(e.Symbol))
	}
	return ""
}

func formatPumpDump(e models.PumpDumpEvent) string {
	color := "🟢"
	icon := "🚀🚀🚀"
	if e.ChangePct < 0 {
		color = "🔴"
		icon = "💥💥💥"
	}
	if e.Severity == models.SeverityExtreme {
		icon = "⚡️" + icon
	}

	link := fmt.Sprintf("https://www.mexc.com/futures/%s?type=linear_swap", e.Symbol)
	return fmt.Sprintf(
		"┌%s [%s](%s) ⚡ %+.2f%% %s\n└ %.6g → %.6g",
		icon, coinName(e.Symbol), link, e.ChangePct, color,
		e.ReferencePrice, e.CurrentPrice,
	)
}

func formatProximity(e models.EmaProximityEvent) string {
	var status string
	switch e.Status {
	case models.ProximityTouching:
		status = "касание"
	case models.ProximityAbove:
		status = "сверху"
	case models.ProximityBelow:
		status = "снизу"
	}
	return fmt.Sprintf(
		"📐 `%s` %s EMA200 (%s): цена %.6g, EMA %.6g, %+.2f%%",
		coinName(e.Symbol), status, e.Timeframe, e.CurrentPrice, e.EMA, e.DistancePct,
	)
}

// FormatListings — блок для /timelist и /coinlist.
func FormatListings(title, mark string, coins []models.ListedCoin) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n\n", title)
	for _, c := range coins {
		fmt.Fprintf(&b, "%s `%s` (%s)\n   ⏰ %s\n\n",
			mark, c.Symbol, c.FullName, c.FirstOpenTime.Format("02/01/2006 15:04"))
	}
	return b.String()
}

func coinName(symbol string) string {
	return strings.TrimSuffix(symbol, "_USDT")
}

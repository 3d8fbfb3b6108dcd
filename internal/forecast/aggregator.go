package forecast

import (
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// MergeSalesEvents merges the platform order feed and the carrier
// consignment feed into one unified sales history. Dates are normalized to
// UTC calendar days and events with malformed SKUs or negative quantities
// are dropped. No deduplication is attempted across sources: there is no
// shared identity key between a Shopify line item and a GLS annotation, so
// a sale recorded in both feeds is counted twice. Callers decide whether to
// pass the carrier feed at all (ForecastConfig.IncludeCarrierReturns).
func MergeSalesEvents(platform, carrier []domain.SalesEvent) []domain.SalesEvent {
	merged := make([]domain.SalesEvent, 0, len(platform)+len(carrier))
	for _, src := range [][]domain.SalesEvent{platform, carrier} {
		for _, ev := range src {
			if !domain.ValidSKU(ev.SKU) || ev.Quantity < 0 {
				continue
			}
			ev.Date = truncateToDay(ev.Date)
			merged = append(merged, ev)
		}
	}
	return merged
}

func truncateToDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

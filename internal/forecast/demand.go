package forecast

import (
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// WeightedDailyDemand turns a unified sales history into a recency-weighted
// average daily demand per SKU.
//
// The window covers exactly windowDays calendar days ending at the latest
// observed event date. Every (day, SKU) cell inside the window is
// materialized, defaulting to zero: averaging only over observed days would
// overstate demand for SKUs that sell intermittently. Each day then gets a
// linear weight, 1 for the oldest day up to windowDays for the newest, and
// the estimate is sum(qty*weight)/sum(weight).
//
// An empty event list yields an empty map. A SKU with no sales inside the
// window but present in the input gets estimate 0 via the zero fill.
func WeightedDailyDemand(events []domain.SalesEvent, windowDays int) map[string]float64 {
	if len(events) == 0 || windowDays <= 0 {
		return map[string]float64{}
	}

	var end time.Time
	for _, ev := range events {
		d := truncateToDay(ev.Date)
		if d.After(end) {
			end = d
		}
	}
	start := end.AddDate(0, 0, -(windowDays - 1))

	// daily[sku][offset] = units sold on day start+offset
	daily := make(map[string][]int)
	for _, ev := range events {
		d := truncateToDay(ev.Date)
		if d.Before(start) || d.After(end) {
			continue
		}
		buckets, ok := daily[ev.SKU]
		if !ok {
			buckets = make([]int, windowDays)
			daily[ev.SKU] = buckets
		}
		offset := int(d.Sub(start).Hours() / 24)
		buckets[offset] += ev.Quantity
	}

	// Linear weights 1..windowDays; total is the same for every SKU because
	// the zero fill leaves no holes in the window.
	totalWeight := windowDays * (windowDays + 1) / 2

	estimates := make(map[string]float64, len(daily))
	for sku, buckets := range daily {
		weightedSum := 0
		for offset, qty := range buckets {
			weightedSum += qty * (offset + 1)
		}
		estimates[sku] = float64(weightedSum) / float64(totalWeight)
	}

	return estimates
}

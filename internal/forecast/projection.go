package forecast

import (
	"math"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// Projection is the net stock position of one SKU.
type Projection struct {
	OnHand         int
	Incoming       int
	TotalAvailable int
	Backordered    int
	NetAvailable   int
	DailyDemand    float64
	// DaysOfAutonomy is +Inf when DailyDemand is zero: a SKU with no recent
	// sales is never "running out" from a demand standpoint, even at zero
	// physical stock.
	DaysOfAutonomy float64
}

// ProjectStock combines the demand table with the three quantity tables into
// a per-SKU projection. The key set is the union of all four inputs; a SKU
// missing from the demand table projects with demand 0. Malformed SKUs are
// dropped here no matter which input they arrived through, so one bad
// inventory row cannot surface in any report table.
func ProjectStock(demand map[string]float64, onHand, incoming, backordered map[string]int) map[string]Projection {
	skus := make(map[string]struct{}, len(demand))
	for sku := range demand {
		if domain.ValidSKU(sku) {
			skus[sku] = struct{}{}
		}
	}
	for _, table := range []map[string]int{onHand, incoming, backordered} {
		for sku := range table {
			if domain.ValidSKU(sku) {
				skus[sku] = struct{}{}
			}
		}
	}

	projections := make(map[string]Projection, len(skus))
	for sku := range skus {
		p := Projection{
			OnHand:      onHand[sku],
			Incoming:    incoming[sku],
			Backordered: backordered[sku],
			DailyDemand: demand[sku],
		}
		p.TotalAvailable = p.OnHand + p.Incoming
		p.NetAvailable = p.TotalAvailable - p.Backordered
		if p.DailyDemand > 0 {
			p.DaysOfAutonomy = float64(p.NetAvailable) / p.DailyDemand
		} else {
			p.DaysOfAutonomy = math.Inf(1)
		}
		projections[sku] = p
	}

	return projections
}

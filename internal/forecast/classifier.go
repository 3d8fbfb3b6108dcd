package forecast

import (
	"math"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// ZeroDemandNeverReorders names the policy that a SKU with a zero demand
// estimate gets reorder quantity 0 no matter its tier. Combined with the
// infinite autonomy rule in ProjectStock this means a SKU with no recent
// sales can sit at zero physical stock without ever being flagged. Kept as
// an explicit constant so the policy can be revisited rather than staying
// an accident of the arithmetic.
const ZeroDemandNeverReorders = true

// reorderBatchSize is the granularity the supplier accepts orders in.
// Suggestions round up to this and never fall below it when nonzero.
const reorderBatchSize = 10

// Classifier buckets SKUs into urgency tiers and sizes reorder suggestions.
type Classifier struct {
	CriticalDays       int
	TargetStockoutDays int
	TransitDays        int
	// GrowthMultiplier scales the demand estimate when sizing an order,
	// for anticipating planned growth. 1 means no adjustment.
	GrowthMultiplier float64
}

// NewClassifier builds a classifier from the planning constants.
func NewClassifier(criticalDays, targetStockoutDays, transitDays int) Classifier {
	return Classifier{
		CriticalDays:       criticalDays,
		TargetStockoutDays: targetStockoutDays,
		TransitDays:        transitDays,
		GrowthMultiplier:   1,
	}
}

// AlarmDays is the reorder threshold: stock must cover the target window
// plus the supplier transit time.
func (c Classifier) AlarmDays() int {
	return c.TargetStockoutDays + c.TransitDays
}

// Tier classifies a days-of-autonomy figure. Both comparisons are strict:
// autonomy exactly at the critical threshold is ORDINARE, not CRITICO.
func (c Classifier) Tier(daysOfAutonomy float64) domain.UrgencyTier {
	if daysOfAutonomy < float64(c.CriticalDays) {
		return domain.TierCritical
	}
	if daysOfAutonomy < float64(c.AlarmDays()) {
		return domain.TierReorder
	}
	return domain.TierOK
}

// ReorderQuantity sizes the suggested supplier order for a projection.
// The shortfall is what the target window needs beyond the autonomy left
// after transit; the result rounds up to the batch size.
func (c Classifier) ReorderQuantity(p Projection) int {
	if ZeroDemandNeverReorders && p.DailyDemand <= 0 {
		return 0
	}

	growth := c.GrowthMultiplier
	if growth <= 0 {
		growth = 1
	}

	autonomyAfterTransit := p.DaysOfAutonomy - float64(c.TransitDays)
	shortfallDays := float64(c.TargetStockoutDays) - autonomyAfterTransit
	raw := math.Max(0, shortfallDays*p.DailyDemand*growth)
	if raw == 0 {
		return 0
	}
	return int(math.Ceil(raw/reorderBatchSize)) * reorderBatchSize
}

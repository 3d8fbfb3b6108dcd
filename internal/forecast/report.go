package forecast

import (
	"math"
	"sort"
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// autonomyDisplayCap stands in for infinity in rendered reports; JSON has
// no way to carry +Inf and the dashboard treats 999 as "no pressure".
const autonomyDisplayCap = 999

// Params are the planning constants for one report run.
type Params struct {
	AnalysisWindowDays int
	TargetStockoutDays int
	TransitDays        int
	CriticalDays       int
	GrowthMultiplier   float64
}

// Inputs are the already-fetched tables a report is computed from. The
// engine never reaches out to a network client itself; collaborators hand
// it consistent-as-of-fetch-time snapshots.
type Inputs struct {
	PlatformSales []domain.SalesEvent
	CarrierSales  []domain.SalesEvent
	OnHand        domain.StockLevels
	Incoming      domain.StockLevels
	Backordered   map[string]int
}

// Engine runs the full forecasting pass: merge sales history, estimate
// demand, project stock, classify urgency, and assemble the report.
type Engine struct {
	params     Params
	classifier Classifier
}

func NewEngine(params Params) *Engine {
	c := NewClassifier(params.CriticalDays, params.TargetStockoutDays, params.TransitDays)
	if params.GrowthMultiplier > 0 {
		c.GrowthMultiplier = params.GrowthMultiplier
	}
	return &Engine{params: params, classifier: c}
}

// BuildReport computes a stock report over the given inputs. Pure: the
// inputs are not mutated and the same inputs always produce the same report
// apart from the timestamp.
func (e *Engine) BuildReport(in Inputs) *domain.StockReport {
	events := MergeSalesEvents(in.PlatformSales, in.CarrierSales)
	demand := WeightedDailyDemand(events, e.params.AnalysisWindowDays)
	projections := ProjectStock(demand, in.OnHand.Quantities, in.Incoming.Quantities, in.Backordered)

	report := &domain.StockReport{
		Stock:       make([]domain.StockRecord, 0, len(projections)),
		Reorder:     make([]domain.ReorderSuggestion, 0),
		GeneratedAt: time.Now().UTC(),
	}

	for _, sku := range orderedSKUs(projections, in.OnHand.Order) {
		p := projections[sku]
		tier := e.classifier.Tier(p.DaysOfAutonomy)
		modelo, talla := domain.ParseSKU(sku)

		report.Stock = append(report.Stock, domain.StockRecord{
			SKU:            sku,
			Modelo:         modelo,
			Talla:          talla,
			OnHand:         p.OnHand,
			Incoming:       p.Incoming,
			TotalAvailable: p.TotalAvailable,
			Backordered:    p.Backordered,
			NetAvailable:   p.NetAvailable,
			DailyDemand:    round2(p.DailyDemand),
			DaysOfAutonomy: p.DaysOfAutonomy,
			AutonomyShown:  displayAutonomy(p.DaysOfAutonomy),
			Urgency:        tier,
		})

		report.Summary.TotalSKUs++
		report.Summary.TotalUnitsAvailable += p.TotalAvailable
		report.Summary.TotalOnHand += p.OnHand
		report.Summary.TotalIncoming += p.Incoming

		if tier == domain.TierOK {
			continue
		}
		if tier == domain.TierCritical {
			report.Summary.CriticalCount++
		} else {
			report.Summary.ReorderCount++
		}

		qty := e.classifier.ReorderQuantity(p)
		report.Reorder = append(report.Reorder, domain.ReorderSuggestion{
			SKU:            sku,
			Modelo:         modelo,
			Talla:          talla,
			Quantity:       qty,
			Urgency:        tier,
			DaysOfAutonomy: displayAutonomy(p.DaysOfAutonomy),
		})
		report.Summary.TotalReorderUnits += qty
	}

	// Most urgent first.
	sort.SliceStable(report.Reorder, func(i, j int) bool {
		return report.Reorder[i].DaysOfAutonomy < report.Reorder[j].DaysOfAutonomy
	})

	return report
}

// orderedSKUs returns the projection keys in warehouse sheet order, with
// SKUs unknown to the sheet appended alphabetically.
func orderedSKUs(projections map[string]Projection, sheetOrder []string) []string {
	ordered := make([]string, 0, len(projections))
	seen := make(map[string]bool, len(projections))
	for _, sku := range sheetOrder {
		if _, ok := projections[sku]; ok && !seen[sku] {
			ordered = append(ordered, sku)
			seen[sku] = true
		}
	}

	rest := make([]string, 0)
	for sku := range projections {
		if !seen[sku] {
			rest = append(rest, sku)
		}
	}
	sort.Strings(rest)

	return append(ordered, rest...)
}

func displayAutonomy(days float64) float64 {
	if math.IsInf(days, 1) || days > autonomyDisplayCap {
		return autonomyDisplayCap
	}
	return math.Round(days*10) / 10
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

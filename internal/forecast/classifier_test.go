package forecast

import (
	"math"
	"testing"

	"github.com/simonepenna/adibodyes/internal/domain"
)

func TestTierBoundaries(t *testing.T) {
	c := NewClassifier(21, 40, 21) // alarm = 61

	tests := []struct {
		name     string
		autonomy float64
		want     domain.UrgencyTier
	}{
		{"below critical", 20.9, domain.TierCritical},
		{"exactly critical is not critical", 21, domain.TierReorder},
		{"between thresholds", 45, domain.TierReorder},
		{"exactly alarm is ok", 61, domain.TierOK},
		{"above alarm", 100, domain.TierOK},
		{"infinite autonomy", math.Inf(1), domain.TierOK},
		{"negative stock", -3, domain.TierCritical},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Tier(tt.autonomy); got != tt.want {
				t.Fatalf("Tier(%v) = %s, want %s", tt.autonomy, got, tt.want)
			}
		})
	}
}

func TestReorderQuantityRounding(t *testing.T) {
	c := NewClassifier(21, 40, 21)

	tests := []struct {
		name string
		p    Projection
		want int
	}{
		{
			// shortfall 23 days * demand 1 = 23 -> 30
			name: "rounds up to next ten",
			p:    Projection{NetAvailable: 38, DailyDemand: 1, DaysOfAutonomy: 38},
			want: 30,
		},
		{
			// shortfall 1 day * demand 1 = 1 -> floor of 10, never truncated to 0
			name: "sub-batch requirement gets the batch floor",
			p:    Projection{NetAvailable: 60, DailyDemand: 1, DaysOfAutonomy: 60},
			want: 10,
		},
		{
			name: "covered stock needs nothing",
			p:    Projection{NetAvailable: 100, DailyDemand: 1, DaysOfAutonomy: 100},
			want: 0,
		},
		{
			name: "zero demand never reorders",
			p:    Projection{NetAvailable: 0, DailyDemand: 0, DaysOfAutonomy: math.Inf(1)},
			want: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.ReorderQuantity(tt.p); got != tt.want {
				t.Fatalf("ReorderQuantity() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestReorderQuantityScenario(t *testing.T) {
	// on_hand=50, incoming=0, backordered=5, demand=2.0, target=45,
	// transit=21, critical=21: net=45, autonomy=22.5 -> ORDINARE,
	// autonomy after transit 1.5, shortfall 43.5, raw 87 -> 90.
	c := NewClassifier(21, 45, 21)

	p := ProjectStock(
		map[string]float64{"SLIP.M.BL": 2.0},
		map[string]int{"SLIP.M.BL": 50},
		map[string]int{},
		map[string]int{"SLIP.M.BL": 5},
	)["SLIP.M.BL"]

	if p.NetAvailable != 45 {
		t.Fatalf("net available = %d, want 45", p.NetAvailable)
	}
	if math.Abs(p.DaysOfAutonomy-22.5) > 1e-9 {
		t.Fatalf("days of autonomy = %v, want 22.5", p.DaysOfAutonomy)
	}
	if tier := c.Tier(p.DaysOfAutonomy); tier != domain.TierReorder {
		t.Fatalf("tier = %s, want %s", tier, domain.TierReorder)
	}
	if qty := c.ReorderQuantity(p); qty != 90 {
		t.Fatalf("reorder quantity = %d, want 90", qty)
	}
}

func TestGrowthMultiplierScalesOrder(t *testing.T) {
	c := NewClassifier(21, 40, 21)
	c.GrowthMultiplier = 2

	// shortfall 23 * demand 1 * growth 2 = 46 -> 50
	p := Projection{NetAvailable: 38, DailyDemand: 1, DaysOfAutonomy: 38}
	if got := c.ReorderQuantity(p); got != 50 {
		t.Fatalf("ReorderQuantity() = %d, want 50", got)
	}
}

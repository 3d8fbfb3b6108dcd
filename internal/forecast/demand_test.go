package forecast

import (
	"math"
	"testing"
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

func day(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWeightedDailyDemandLinearWeights(t *testing.T) {
	// Daily quantities [2,0,0,3] over a 4-day window with weights [1,2,3,4]:
	// (2*1 + 0*2 + 0*3 + 3*4) / (1+2+3+4) = 14/10 = 1.4
	events := []domain.SalesEvent{
		{SKU: "SLIP.M.BL", Quantity: 2, Date: day("2026-03-01")},
		{SKU: "SLIP.M.BL", Quantity: 3, Date: day("2026-03-04")},
	}

	estimates := WeightedDailyDemand(events, 4)
	if got := estimates["SLIP.M.BL"]; math.Abs(got-1.4) > 1e-9 {
		t.Fatalf("weighted average = %v, want 1.4", got)
	}
}

func TestWeightedDailyDemandDensification(t *testing.T) {
	// A SKU selling on a single day must be averaged over the whole window,
	// not just the day it sold.
	events := []domain.SalesEvent{
		{SKU: "PER.L.BE", Quantity: 10, Date: day("2026-03-10")},
		{SKU: "SLIP.S.BE", Quantity: 1, Date: day("2026-03-01")},
	}

	estimates := WeightedDailyDemand(events, 10)

	// Window is 2026-03-01..2026-03-10; PER.L.BE sells 10 on the last day
	// (weight 10): 100/55.
	if got, want := estimates["PER.L.BE"], 100.0/55.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("PER.L.BE = %v, want %v", got, want)
	}
	// SLIP.S.BE sells 1 on the first day (weight 1): 1/55.
	if got, want := estimates["SLIP.S.BE"], 1.0/55.0; math.Abs(got-want) > 1e-9 {
		t.Errorf("SLIP.S.BE = %v, want %v", got, want)
	}
}

func TestWeightedDailyDemandWindowAnchoredAtLatestEvent(t *testing.T) {
	events := []domain.SalesEvent{
		{SKU: "SLIP.M.BL", Quantity: 100, Date: day("2026-01-01")}, // far outside window
		{SKU: "SLIP.M.BL", Quantity: 5, Date: day("2026-03-10")},
	}

	estimates := WeightedDailyDemand(events, 10)
	// Only the in-window sale counts: 5 on the newest day, weight 10, /55.
	if got, want := estimates["SLIP.M.BL"], 50.0/55.0; math.Abs(got-want) > 1e-9 {
		t.Fatalf("estimate = %v, want %v", got, want)
	}
}

func TestWeightedDailyDemandEmptyInput(t *testing.T) {
	estimates := WeightedDailyDemand(nil, 10)
	if len(estimates) != 0 {
		t.Fatalf("expected empty estimate table, got %v", estimates)
	}
}

func TestWeightedDailyDemandTimestampsCollapseToDays(t *testing.T) {
	// Two sales on the same calendar day at different times land in the
	// same bucket.
	base := time.Date(2026, 3, 4, 9, 30, 0, 0, time.UTC)
	events := []domain.SalesEvent{
		{SKU: "SLIP.M.BL", Quantity: 1, Date: base},
		{SKU: "SLIP.M.BL", Quantity: 1, Date: base.Add(8 * time.Hour)},
	}

	estimates := WeightedDailyDemand(events, 1)
	if got := estimates["SLIP.M.BL"]; math.Abs(got-2.0) > 1e-9 {
		t.Fatalf("estimate = %v, want 2", got)
	}
}

package forecast

import (
	"math"
	"testing"
)

func TestProjectStockIdentities(t *testing.T) {
	projections := ProjectStock(
		map[string]float64{"SLIP.M.BL": 1.5},
		map[string]int{"SLIP.M.BL": 10},
		map[string]int{"SLIP.M.BL": 20},
		map[string]int{"SLIP.M.BL": 40},
	)

	p := projections["SLIP.M.BL"]
	if p.TotalAvailable != 30 {
		t.Errorf("total available = %d, want on_hand+incoming = 30", p.TotalAvailable)
	}
	if p.NetAvailable != -10 {
		t.Errorf("net available = %d, want total-backordered = -10", p.NetAvailable)
	}
	if math.Abs(p.DaysOfAutonomy-(-10.0/1.5)) > 1e-9 {
		t.Errorf("days of autonomy = %v, want %v", p.DaysOfAutonomy, -10.0/1.5)
	}
}

func TestProjectStockZeroDemandIsInfiniteAutonomy(t *testing.T) {
	projections := ProjectStock(
		map[string]float64{},
		map[string]int{"SLIP.XS.BE": 0},
		nil,
		nil,
	)

	p := projections["SLIP.XS.BE"]
	if !math.IsInf(p.DaysOfAutonomy, 1) {
		t.Fatalf("days of autonomy = %v, want +Inf", p.DaysOfAutonomy)
	}
}

func TestProjectStockUnionsAllInputs(t *testing.T) {
	projections := ProjectStock(
		map[string]float64{"A.S.BE": 1},
		map[string]int{"B.M.BE": 5},
		map[string]int{"C.L.BE": 7},
		map[string]int{"D.XL.BE": 2},
	)

	for _, sku := range []string{"A.S.BE", "B.M.BE", "C.L.BE", "D.XL.BE"} {
		if _, ok := projections[sku]; !ok {
			t.Errorf("missing projection for %s", sku)
		}
	}
	if len(projections) != 4 {
		t.Fatalf("got %d projections, want 4", len(projections))
	}
}

func TestProjectStockDropsMalformedSKUsFromEveryInput(t *testing.T) {
	projections := ProjectStock(
		map[string]float64{"SLIPXL": 2},
		map[string]int{"SLIP..BE": 7},
		map[string]int{"X": 3},
		map[string]int{"SLIP.M.BL..": 1, "SLIP.M.BL": 1},
	)

	if len(projections) != 1 {
		t.Fatalf("got %d projections, want only the valid SKU: %v", len(projections), projections)
	}
	if _, ok := projections["SLIP.M.BL"]; !ok {
		t.Fatal("valid SKU missing from projections")
	}
}

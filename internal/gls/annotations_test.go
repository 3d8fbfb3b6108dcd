package gls

import (
	"testing"
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

func TestParseAnnotations(t *testing.T) {
	tests := []struct {
		name        string
		observation string
		want        map[string]int
	}{
		{
			name:        "quantities and default of one",
			observation: "SLIP.S.BLx2, SLIP.M.BL",
			want:        map[string]int{"SLIP.S.BL": 2, "SLIP.M.BL": 1},
		},
		{
			name:        "lowercase and stray spaces",
			observation: " slip.xs.be x3 ",
			want:        map[string]int{"SLIP.XS.BE": 3},
		},
		{
			name:        "size letters containing x are not a quantity",
			observation: "SLIP.XL.BE",
			want:        map[string]int{"SLIP.XL.BE": 1},
		},
		{
			name:        "repeated sku accumulates",
			observation: "SLIP.S.BLx1, SLIP.S.BLx2",
			want:        map[string]int{"SLIP.S.BL": 3},
		},
		{
			name:        "free text is ignored",
			observation: "LLAMAR ANTES DE ENTREGAR, SLIP.M.NEx2",
			want:        map[string]int{"SLIP.M.NE": 2},
		},
		{
			name:        "empty observation",
			observation: "",
			want:        map[string]int{},
		},
		{
			name:        "overlong token is dropped",
			observation: "SLIP.TALLAUNICA.BLANCOROTOx2",
			want:        map[string]int{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseAnnotations(tt.observation)
			if len(got) != len(tt.want) {
				t.Fatalf("got %v, want %v", got, tt.want)
			}
			for sku, qty := range tt.want {
				if got[sku] != qty {
					t.Errorf("sku %s: got %d, want %d", sku, got[sku], qty)
				}
			}
		})
	}
}

func TestReturnedSalesEvents(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	shipments := []domain.Shipment{
		{Date: day, Return: "CON RETORNO", Observation: "SLIP.S.BLx2"},
		{Date: day, Return: "SIN RETORNO", Observation: "SLIP.M.BLx5"},
		{Date: day, Return: "con retorno", Observation: "SLIP.L.NE"},
	}

	events := ReturnedSalesEvents(shipments)
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d: %v", len(events), events)
	}

	bySKU := make(map[string]int)
	for _, e := range events {
		bySKU[e.SKU] = e.Quantity
		if !e.Date.Equal(day) {
			t.Errorf("event %s not dated by shipment date: %v", e.SKU, e.Date)
		}
	}
	if bySKU["SLIP.S.BL"] != 2 || bySKU["SLIP.L.NE"] != 1 {
		t.Errorf("unexpected events: %v", bySKU)
	}
}

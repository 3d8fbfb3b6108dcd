package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/simonepenna/adibodyes/internal/cache"
	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
)

type fakeSalesSource struct {
	events      []domain.SalesEvent
	backordered map[string]int
	err         error
	calls       int
}

func (f *fakeSalesSource) FetchSalesEvents(_ context.Context, _ int) ([]domain.SalesEvent, error) {
	f.calls++
	return f.events, f.err
}

func (f *fakeSalesSource) FetchBackorders(_ context.Context, _ []string, _ int) (map[string]int, error) {
	return f.backordered, f.err
}

type fakeCarrier struct {
	shipments []domain.Shipment
	called    bool
}

func (f *fakeCarrier) SearchShipments(_ context.Context, _, _ time.Time) ([]domain.Shipment, error) {
	f.called = true
	return f.shipments, nil
}

type fakeLevels struct {
	bySheet map[string]domain.StockLevels
}

func (f *fakeLevels) ReadLevels(_ context.Context, sheetName string) (domain.StockLevels, error) {
	levels, ok := f.bySheet[sheetName]
	if !ok {
		return domain.StockLevels{}, errors.New("unknown sheet " + sheetName)
	}
	return levels, nil
}

func testForecastConfig() config.ForecastConfig {
	return config.ForecastConfig{
		AnalysisWindowDays: 10,
		TargetStockoutDays: 40,
		TransitDays:        21,
		CriticalDays:       21,
	}
}

func testSheetsConfig() config.SheetsConfig {
	return config.SheetsConfig{WarehouseSheet: "Magazzino", InboundSheet: "InArrivo"}
}

func newTestService(sales *fakeSalesSource, carrier *fakeCarrier, forecastCfg config.ForecastConfig) *StockService {
	levels := &fakeLevels{bySheet: map[string]domain.StockLevels{
		"Magazzino": {Quantities: map[string]int{"SLIP.S.BL": 40}, Order: []string{"SLIP.S.BL"}},
		"InArrivo":  {Quantities: map[string]int{"SLIP.S.BL": 10}, Order: []string{"SLIP.S.BL"}},
	}}
	return NewStockService(sales, carrier, levels, cache.NewNoopReportCache(), nil, forecastCfg, testSheetsConfig(), []string{"MANCA MODELLO"})
}

func TestGetReportBuildsFromAllSources(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	sales := &fakeSalesSource{
		events:      []domain.SalesEvent{{SKU: "SLIP.S.BL", Quantity: 2, Date: today}},
		backordered: map[string]int{"SLIP.S.BL": 5},
	}

	svc := newTestService(sales, &fakeCarrier{}, testForecastConfig())
	report, err := svc.GetReport(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}

	if len(report.Stock) != 1 {
		t.Fatalf("expected 1 stock record, got %d", len(report.Stock))
	}
	rec := report.Stock[0]
	if rec.TotalAvailable != 50 {
		t.Errorf("total available: got %d, want 50", rec.TotalAvailable)
	}
	if rec.NetAvailable != 45 {
		t.Errorf("net available: got %d, want 45", rec.NetAvailable)
	}
}

func TestGetReportSkipsCarrierWhenDisabled(t *testing.T) {
	sales := &fakeSalesSource{backordered: map[string]int{}}
	carrier := &fakeCarrier{}

	svc := newTestService(sales, carrier, testForecastConfig())
	if _, err := svc.GetReport(context.Background(), false); err != nil {
		t.Fatal(err)
	}
	if carrier.called {
		t.Error("carrier should not be queried when returns are excluded")
	}
}

func TestGetReportMergesCarrierReturns(t *testing.T) {
	today := time.Now().UTC().Truncate(24 * time.Hour)
	sales := &fakeSalesSource{backordered: map[string]int{}}
	carrier := &fakeCarrier{shipments: []domain.Shipment{
		{Date: today, Return: "CON RETORNO", Observation: "SLIP.S.BLx3"},
	}}

	cfg := testForecastConfig()
	cfg.IncludeCarrierReturns = true

	svc := newTestService(sales, carrier, cfg)
	report, err := svc.GetReport(context.Background(), false)
	if err != nil {
		t.Fatal(err)
	}
	if !carrier.called {
		t.Fatal("carrier should be queried when returns are included")
	}
	if report.Stock[0].DailyDemand <= 0 {
		t.Errorf("carrier returns should contribute to demand, got %v", report.Stock[0].DailyDemand)
	}
}

type blockingSnapshotStore struct {
	release chan struct{}
	saved   chan struct{}
}

func (f *blockingSnapshotStore) SaveReport(_ context.Context, _ *domain.StockReport) error {
	<-f.release
	close(f.saved)
	return nil
}

func TestGetReportDoesNotWaitForSnapshotPersist(t *testing.T) {
	sales := &fakeSalesSource{backordered: map[string]int{}}
	store := &blockingSnapshotStore{
		release: make(chan struct{}),
		saved:   make(chan struct{}),
	}

	levels := &fakeLevels{bySheet: map[string]domain.StockLevels{
		"Magazzino": {Quantities: map[string]int{"SLIP.S.BL": 40}, Order: []string{"SLIP.S.BL"}},
		"InArrivo":  {Quantities: map[string]int{}},
	}}
	svc := NewStockService(sales, &fakeCarrier{}, levels, cache.NewNoopReportCache(), store, testForecastConfig(), testSheetsConfig(), nil)

	done := make(chan struct{})
	go func() {
		if _, err := svc.GetReport(context.Background(), false); err != nil {
			t.Error(err)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("report response blocked on the history write")
	}

	close(store.release)
	select {
	case <-store.saved:
	case <-time.After(2 * time.Second):
		t.Fatal("snapshot was never persisted")
	}
}

func TestGetReportPropagatesSourceErrors(t *testing.T) {
	sales := &fakeSalesSource{err: errors.New("shop unreachable")}

	svc := newTestService(sales, &fakeCarrier{}, testForecastConfig())
	if _, err := svc.GetReport(context.Background(), false); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}

// internal/service/stock_service.go
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/simonepenna/adibodyes/internal/cache"
	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
	"github.com/simonepenna/adibodyes/internal/forecast"
	"github.com/simonepenna/adibodyes/internal/gls"
	"github.com/simonepenna/adibodyes/internal/sheets"
)

// SalesSource is the subset of the Shopify client the service depends on.
type SalesSource interface {
	FetchSalesEvents(ctx context.Context, daysBack int) ([]domain.SalesEvent, error)
	FetchBackorders(ctx context.Context, tags []string, daysBack int) (map[string]int, error)
}

// CarrierSource yields consignments from the carrier extranet.
type CarrierSource interface {
	SearchShipments(ctx context.Context, from, to time.Time) ([]domain.Shipment, error)
}

// SnapshotStore persists finished reports. Optional: the service works
// without one.
type SnapshotStore interface {
	SaveReport(ctx context.Context, report *domain.StockReport) error
}

// backorderLookbackDays bounds the tag scan; orders older than this are
// assumed resolved or written off.
const backorderLookbackDays = 90

// snapshotPersistTimeout bounds the background history write.
const snapshotPersistTimeout = 30 * time.Second

// StockService assembles the stock report: it fans out to every upstream
// system, feeds the forecast engine, and caches the result.
type StockService struct {
	shopify   SalesSource
	carrier   CarrierSource
	levels    sheets.LevelReader
	cache     cache.ReportCache
	snapshots SnapshotStore
	engine    *forecast.Engine
	cfg       config.ForecastConfig
	sheetsCfg config.SheetsConfig
	tags      []string
}

func NewStockService(
	shopify SalesSource,
	carrier CarrierSource,
	levels sheets.LevelReader,
	reportCache cache.ReportCache,
	snapshots SnapshotStore,
	forecastCfg config.ForecastConfig,
	sheetsCfg config.SheetsConfig,
	backorderTags []string,
) *StockService {
	return &StockService{
		shopify:   shopify,
		carrier:   carrier,
		levels:    levels,
		cache:     reportCache,
		snapshots: snapshots,
		engine: forecast.NewEngine(forecast.Params{
			AnalysisWindowDays: forecastCfg.AnalysisWindowDays,
			TargetStockoutDays: forecastCfg.TargetStockoutDays,
			TransitDays:        forecastCfg.TransitDays,
			CriticalDays:       forecastCfg.CriticalDays,
		}),
		cfg:       forecastCfg,
		sheetsCfg: sheetsCfg,
		tags:      backorderTags,
	}
}

// GetReport returns the current stock report, serving from cache when a
// fresh one exists. Set refresh to bypass the cache.
func (s *StockService) GetReport(ctx context.Context, refresh bool) (*domain.StockReport, error) {
	if !refresh {
		if report, ok, err := s.cache.Get(ctx); err != nil {
			log.Warn().Err(err).Msg("stock: cache read failed, rebuilding")
		} else if ok {
			return report, nil
		}
	}

	report, err := s.buildReport(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, report); err != nil {
		log.Warn().Err(err).Msg("stock: cache write failed")
	}
	if s.snapshots != nil {
		// Persisted off the request path; the caller gets the report whether
		// or not the history write lands.
		go func() {
			persistCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), snapshotPersistTimeout)
			defer cancel()
			if err := s.snapshots.SaveReport(persistCtx, report); err != nil {
				log.Warn().Err(err).Msg("stock: snapshot persist failed")
			}
		}()
	}

	return report, nil
}

func (s *StockService) buildReport(ctx context.Context) (*domain.StockReport, error) {
	start := time.Now()

	var (
		platformSales []domain.SalesEvent
		carrierSales  []domain.SalesEvent
		backordered   map[string]int
		onHand        domain.StockLevels
		incoming      domain.StockLevels
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		var err error
		platformSales, err = s.shopify.FetchSalesEvents(gctx, s.cfg.AnalysisWindowDays)
		if err != nil {
			return fmt.Errorf("fetch sales history: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		backordered, err = s.shopify.FetchBackorders(gctx, s.tags, backorderLookbackDays)
		if err != nil {
			return fmt.Errorf("fetch backorders: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		onHand, err = s.levels.ReadLevels(gctx, s.sheetsCfg.WarehouseSheet)
		if err != nil {
			return fmt.Errorf("read warehouse levels: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		var err error
		incoming, err = s.levels.ReadLevels(gctx, s.sheetsCfg.InboundSheet)
		if err != nil {
			return fmt.Errorf("read inbound levels: %w", err)
		}
		return nil
	})

	if s.cfg.IncludeCarrierReturns && s.carrier != nil {
		g.Go(func() error {
			to := time.Now()
			from := to.AddDate(0, 0, -s.cfg.AnalysisWindowDays)
			shipments, err := s.carrier.SearchShipments(gctx, from, to)
			if err != nil {
				return fmt.Errorf("fetch carrier shipments: %w", err)
			}
			carrierSales = gls.ReturnedSalesEvents(shipments)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report := s.engine.BuildReport(forecast.Inputs{
		PlatformSales: platformSales,
		CarrierSales:  carrierSales,
		OnHand:        onHand,
		Incoming:      incoming,
		Backordered:   backordered,
	})

	log.Info().
		Int("skus", report.Summary.TotalSKUs).
		Int("critical", report.Summary.CriticalCount).
		Int("reorder", report.Summary.ReorderCount).
		Dur("elapsed", time.Since(start)).
		Msg("stock: report built")

	return report, nil
}

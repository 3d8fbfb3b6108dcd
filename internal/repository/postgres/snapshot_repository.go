// internal/repository/postgres/snapshot_repository.go
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// SnapshotRepository persists the stock report produced by each run so the
// urgency of a SKU can be tracked over time.
type SnapshotRepository interface {
	EnsureSchema(ctx context.Context) error
	SaveReport(ctx context.Context, report *domain.StockReport) error
	ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error)
	GetByDate(ctx context.Context, day time.Time) ([]domain.StockRecord, error)
}

type snapshotRepository struct {
	db *DB
}

func NewSnapshotRepository(db *DB) SnapshotRepository {
	return &snapshotRepository{db: db}
}

// EnsureSchema creates the snapshot tables when they do not exist yet. The
// report CLI calls this so a fresh database works without manual setup.
func (r *snapshotRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS report_runs (
			id BIGSERIAL PRIMARY KEY,
			run_date DATE NOT NULL,
			sku_count INT NOT NULL,
			critical_count INT NOT NULL,
			reorder_count INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE TABLE IF NOT EXISTS stock_snapshots (
			id BIGSERIAL PRIMARY KEY,
			run_id BIGINT NOT NULL REFERENCES report_runs(id) ON DELETE CASCADE,
			sku TEXT NOT NULL,
			on_hand INT NOT NULL,
			incoming INT NOT NULL,
			total_available INT NOT NULL,
			backordered INT NOT NULL,
			net_stock INT NOT NULL,
			daily_demand DOUBLE PRECISION NOT NULL,
			days_of_autonomy DOUBLE PRECISION NOT NULL,
			urgency TEXT NOT NULL,
			reorder_qty INT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_stock_snapshots_sku ON stock_snapshots(sku);
	`
	if _, err := r.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("failed to create snapshot schema: %w", err)
	}
	return nil
}

func (r *snapshotRepository) SaveReport(ctx context.Context, report *domain.StockReport) error {
	reorderQty := make(map[string]int, len(report.Reorder))
	for _, s := range report.Reorder {
		reorderQty[s.SKU] = s.Quantity
	}

	return r.db.WithTx(ctx, func(tx *sql.Tx) error {
		runID, err := r.insertRun(ctx, tx, report)
		if err != nil {
			return fmt.Errorf("failed to insert report run: %w", err)
		}

		query := `
			INSERT INTO stock_snapshots (
				run_id, sku, on_hand, incoming, total_available, backordered,
				net_stock, daily_demand, days_of_autonomy, urgency,
				reorder_qty, created_at
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NOW())
		`

		stmt, err := tx.PrepareContext(ctx, query)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer stmt.Close()

		for _, rec := range report.Stock {
			_, err := stmt.ExecContext(
				ctx,
				runID,
				rec.SKU,
				rec.OnHand,
				rec.Incoming,
				rec.TotalAvailable,
				rec.Backordered,
				rec.NetAvailable,
				rec.DailyDemand,
				rec.AutonomyShown,
				rec.Urgency,
				reorderQty[rec.SKU],
			)
			if err != nil {
				return fmt.Errorf("failed to insert snapshot for %s: %w", rec.SKU, err)
			}
		}

		return nil
	})
}

func (r *snapshotRepository) insertRun(ctx context.Context, tx *sql.Tx, report *domain.StockReport) (int64, error) {
	var id int64
	query := `
		INSERT INTO report_runs (run_date, sku_count, critical_count, reorder_count, created_at)
		VALUES ($1, $2, $3, $4, NOW())
		RETURNING id
	`
	err := tx.QueryRowContext(
		ctx,
		query,
		report.GeneratedAt.UTC().Truncate(24*time.Hour),
		report.Summary.TotalSKUs,
		report.Summary.CriticalCount,
		report.Summary.ReorderCount,
	).Scan(&id)
	return id, err
}

func (r *snapshotRepository) ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error) {
	if limit <= 0 {
		limit = 30
	}

	query := `
		SELECT id, run_date, sku_count, critical_count, reorder_count, created_at
		FROM report_runs
		ORDER BY run_date DESC, id DESC
		LIMIT $1
	`

	var runs []domain.ReportRun
	if err := r.db.SelectContext(ctx, &runs, query, limit); err != nil {
		return nil, fmt.Errorf("failed to list report runs: %w", err)
	}
	return runs, nil
}

func (r *snapshotRepository) GetByDate(ctx context.Context, day time.Time) ([]domain.StockRecord, error) {
	query := `
		SELECT s.sku, s.on_hand, s.incoming, s.total_available, s.backordered,
		       s.net_stock, s.daily_demand, s.days_of_autonomy, s.urgency
		FROM stock_snapshots s
		JOIN report_runs r ON r.id = s.run_id
		WHERE r.run_date = $1
		ORDER BY s.id
	`

	rows, err := r.db.QueryxContext(ctx, query, day.UTC().Truncate(24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to query snapshots: %w", err)
	}
	defer rows.Close()

	var records []domain.StockRecord
	for rows.Next() {
		var rec domain.StockRecord
		if err := rows.Scan(
			&rec.SKU,
			&rec.OnHand,
			&rec.Incoming,
			&rec.TotalAvailable,
			&rec.Backordered,
			&rec.NetAvailable,
			&rec.DailyDemand,
			&rec.AutonomyShown,
			&rec.Urgency,
		); err != nil {
			return nil, fmt.Errorf("failed to scan snapshot row: %w", err)
		}
		rec.Modelo, rec.Talla = domain.ParseSKU(rec.SKU)
		records = append(records, rec)
	}
	return records, rows.Err()
}

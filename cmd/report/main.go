// cmd/report/main.go
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v2"

	"github.com/simonepenna/adibodyes/internal/cache"
	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
	"github.com/simonepenna/adibodyes/internal/gls"
	"github.com/simonepenna/adibodyes/internal/repository/postgres"
	"github.com/simonepenna/adibodyes/internal/service"
	"github.com/simonepenna/adibodyes/internal/sheets"
	"github.com/simonepenna/adibodyes/internal/shopify"
	"github.com/simonepenna/adibodyes/internal/storage"
	"github.com/simonepenna/adibodyes/pkg/logger"
)

func newDBURLFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:     "db-url",
		Usage:    "Database connection string",
		Required: true,
		EnvVars:  []string{"DATABASE_URL"},
	}
}

func newXLSXFlag() *cli.StringFlag {
	return &cli.StringFlag{
		Name:  "xlsx",
		Usage: "Read stock levels from a local workbook instead of Google Sheets",
	}
}

func main() {
	if err := godotenv.Load(".env"); err != nil {
		logger.Log.Debug().Err(err).Msg("no .env file loaded")
	}

	app := &cli.App{
		Name:  "report",
		Usage: "Build the stock report from the command line",
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "Build the report and print it as JSON",
				Flags: []cli.Flag{
					newXLSXFlag(),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the JSON report to a file instead of stdout",
					},
				},
				Action: runReport,
			},
			{
				Name:  "snapshot",
				Usage: "Build the report and persist it to the database",
				Flags: []cli.Flag{
					newDBURLFlag(),
					newXLSXFlag(),
				},
				Action: runSnapshot,
			},
			{
				Name:  "export",
				Usage: "Build the report and upload it as an XLSX workbook",
				Flags: []cli.Flag{
					newXLSXFlag(),
					&cli.StringFlag{
						Name:  "out",
						Usage: "Write the workbook to a local file instead of object storage",
					},
				},
				Action: runExport,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		logger.Log.Fatal().Err(err).Msg("report command failed")
	}
}

func buildReport(c *cli.Context) (*domain.StockReport, error) {
	cfg := config.Load()
	ctx := c.Context

	var levels sheets.LevelReader
	if path := c.String("xlsx"); path != "" {
		levels = sheets.NewXLSXReader(path)
	} else {
		svc, err := sheets.NewService(ctx, cfg.Sheets)
		if err != nil {
			return nil, fmt.Errorf("sheets service: %w", err)
		}
		levels = svc
	}

	var carrier service.CarrierSource
	if cfg.Forecast.IncludeCarrierReturns {
		client, err := gls.NewClient(cfg.GLS)
		if err != nil {
			return nil, fmt.Errorf("gls client: %w", err)
		}
		carrier = client
	}

	svc := service.NewStockService(
		shopify.NewClient(cfg.Shopify),
		carrier,
		levels,
		cache.NewNoopReportCache(),
		nil,
		cfg.Forecast,
		cfg.Sheets,
		cfg.Shopify.BackorderTags,
	)

	return svc.GetReport(ctx, true)
}

func runReport(c *cli.Context) error {
	report, err := buildReport(c)
	if err != nil {
		return err
	}

	payload, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}

	if out := c.String("out"); out != "" {
		if err := os.WriteFile(out, payload, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Log.Info().Str("file", out).Msg("report written")
		return nil
	}

	fmt.Println(string(payload))
	return nil
}

func runSnapshot(c *cli.Context) error {
	report, err := buildReport(c)
	if err != nil {
		return err
	}

	db, err := sqlx.ConnectContext(c.Context, "pgx", c.String("db-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	repo := postgres.NewSnapshotRepository(postgres.NewDBFromConn(db))
	if err := persistSnapshot(c.Context, repo, report); err != nil {
		return err
	}

	logger.Log.Info().
		Int("skus", report.Summary.TotalSKUs).
		Int("critical", report.Summary.CriticalCount).
		Msg("snapshot saved")
	return nil
}

// persistSnapshot prepares the schema before writing so the command works
// against a fresh database.
func persistSnapshot(ctx context.Context, repo postgres.SnapshotRepository, report *domain.StockReport) error {
	if err := repo.EnsureSchema(ctx); err != nil {
		return err
	}
	return repo.SaveReport(ctx, report)
}

func runExport(c *cli.Context) error {
	report, err := buildReport(c)
	if err != nil {
		return err
	}

	if out := c.String("out"); out != "" {
		data, err := storage.BuildWorkbook(report)
		if err != nil {
			return err
		}
		if err := os.WriteFile(out, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", out, err)
		}
		logger.Log.Info().Str("file", out).Msg("workbook written")
		return nil
	}

	cfg := config.Load()
	store, err := storage.NewS3Client(cfg.Storage)
	if err != nil {
		return fmt.Errorf("storage client: %w", err)
	}

	key, err := storage.NewExporter(store).Export(c.Context, report)
	if err != nil {
		return err
	}
	logger.Log.Info().Str("key", key).Msg("workbook exported")
	return nil
}

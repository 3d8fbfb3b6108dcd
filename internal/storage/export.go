// internal/storage/export.go
package storage

import (
	"bytes"
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/simonepenna/adibodyes/internal/domain"
)

const (
	stockSheetName   = "Stock"
	reorderSheetName = "Ordine Fornitore"
)

// Exporter renders a stock report into an XLSX workbook and archives it in
// object storage, one file per run date.
type Exporter struct {
	store ObjectStorage
}

func NewExporter(store ObjectStorage) *Exporter {
	return &Exporter{store: store}
}

// Export uploads the report workbook and returns its storage key.
func (e *Exporter) Export(ctx context.Context, report *domain.StockReport) (string, error) {
	data, err := BuildWorkbook(report)
	if err != nil {
		return "", err
	}

	key := fmt.Sprintf("reports/stock_%s.xlsx", report.GeneratedAt.Format("2006-01-02"))
	if err := e.store.UploadObject(ctx, key, data); err != nil {
		return "", fmt.Errorf("upload report: %w", err)
	}

	log.Info().Str("key", key).Int("bytes", len(data)).Msg("storage: report exported")
	return key, nil
}

// BuildWorkbook renders the report into an in-memory XLSX file with one
// sheet for the stock projection and one for the supplier order proposal.
func BuildWorkbook(report *domain.StockReport) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", stockSheetName); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	stockHeader := []interface{}{
		"SKU", "Modello", "Taglia", "Magazzino", "In Arrivo", "Totale",
		"Arretrati", "Netto", "Vendite/Giorno", "Autonomia (gg)", "Urgenza",
	}
	if err := f.SetSheetRow(stockSheetName, "A1", &stockHeader); err != nil {
		return nil, fmt.Errorf("write stock header: %w", err)
	}
	for i, rec := range report.Stock {
		row := []interface{}{
			rec.SKU, rec.Modelo, rec.Talla, rec.OnHand, rec.Incoming,
			rec.TotalAvailable, rec.Backordered, rec.NetAvailable,
			rec.DailyDemand, rec.AutonomyShown, string(rec.Urgency),
		}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(stockSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write stock row %d: %w", i+2, err)
		}
	}

	if _, err := f.NewSheet(reorderSheetName); err != nil {
		return nil, fmt.Errorf("create reorder sheet: %w", err)
	}
	reorderHeader := []interface{}{"SKU", "Modello", "Taglia", "Quantita", "Urgenza", "Autonomia (gg)"}
	if err := f.SetSheetRow(reorderSheetName, "A1", &reorderHeader); err != nil {
		return nil, fmt.Errorf("write reorder header: %w", err)
	}
	for i, s := range report.Reorder {
		row := []interface{}{s.SKU, s.Modelo, s.Talla, s.Quantity, string(s.Urgency), s.DaysOfAutonomy}
		cell := fmt.Sprintf("A%d", i+2)
		if err := f.SetSheetRow(reorderSheetName, cell, &row); err != nil {
			return nil, fmt.Errorf("write reorder row %d: %w", i+2, err)
		}
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		return nil, fmt.Errorf("serialize workbook: %w", err)
	}
	return buf.Bytes(), nil
}

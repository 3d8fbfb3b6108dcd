// internal/sheets/xlsx.go
package sheets

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/xuri/excelize/v2"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// XLSXReader reads stock levels from a local workbook instead of the live
// spreadsheet. Useful offline and in the report CLI, where the warehouse
// file may have been exported by hand.
type XLSXReader struct {
	path string
}

func NewXLSXReader(path string) *XLSXReader {
	return &XLSXReader{path: path}
}

func (r *XLSXReader) ReadLevels(_ context.Context, sheetName string) (domain.StockLevels, error) {
	f, err := excelize.OpenFile(r.path)
	if err != nil {
		return domain.StockLevels{}, fmt.Errorf("open workbook %s: %w", r.path, err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			log.Warn().Err(err).Str("file", r.path).Msg("xlsx: close failed")
		}
	}()

	rows, err := f.GetRows(sheetName)
	if err != nil {
		return domain.StockLevels{}, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}

	// GetRows yields strings; widen to the interface rows the parser takes
	// so both readers share one code path.
	raw := make([][]interface{}, len(rows))
	for i, row := range rows {
		cells := make([]interface{}, len(row))
		for j, cell := range row {
			cells[j] = cell
		}
		raw[i] = cells
	}

	return ParseRows(raw), nil
}

// internal/sheets/service.go
package sheets

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/simonepenna/adibodyes/internal/config"
	"github.com/simonepenna/adibodyes/internal/domain"
)

// Column layout of the warehouse spreadsheets: the SKU lives in the third
// column and the quantity in the fourth. The first two columns hold the
// model name and size for human readers.
const (
	levelsRange = "A:D"
	skuColumn   = 2
	qtyColumn   = 3
)

// LevelReader provides per-SKU quantities from a named sheet.
type LevelReader interface {
	ReadLevels(ctx context.Context, sheetName string) (domain.StockLevels, error)
}

// Service reads stock levels from a Google spreadsheet using a service
// account.
type Service struct {
	api           *sheets.Service
	spreadsheetID string
}

func NewService(ctx context.Context, cfg config.SheetsConfig) (*Service, error) {
	jwtCfg, err := google.JWTConfigFromJSON([]byte(cfg.CredentialsJSON), sheets.SpreadsheetsReadonlyScope)
	if err != nil {
		return nil, fmt.Errorf("sheets credentials: %w", err)
	}

	api, err := sheets.NewService(ctx, option.WithHTTPClient(jwtCfg.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Service{
		api:           api,
		spreadsheetID: cfg.SpreadsheetID,
	}, nil
}

// ReadLevels pulls the per-SKU quantities from one sheet, preserving the row
// order so reports come out in the same order the warehouse keeps them.
func (s *Service) ReadLevels(ctx context.Context, sheetName string) (domain.StockLevels, error) {
	readRange := fmt.Sprintf("%s!%s", sheetName, levelsRange)

	resp, err := s.api.Spreadsheets.Values.Get(s.spreadsheetID, readRange).Context(ctx).Do()
	if err != nil {
		return domain.StockLevels{}, fmt.Errorf("read sheet %s: %w", sheetName, err)
	}

	levels := ParseRows(resp.Values)
	log.Debug().Str("sheet", sheetName).Int("skus", len(levels.Order)).Msg("sheets: levels read")
	return levels, nil
}

// ParseRows turns raw sheet rows into stock levels. The header row, blank
// rows, rows with malformed SKUs, and the trailing TOTAL row are skipped; a
// row whose quantity cell is not a number counts as zero.
func ParseRows(rows [][]interface{}) domain.StockLevels {
	levels := domain.StockLevels{
		Quantities: make(map[string]int),
	}

	for i, row := range rows {
		if i == 0 {
			continue
		}
		if len(row) <= skuColumn {
			continue
		}
		sku := strings.ToUpper(strings.TrimSpace(cellString(row[skuColumn])))
		if sku == "" || strings.HasPrefix(sku, "TOTAL") {
			continue
		}
		if !domain.ValidSKU(sku) {
			log.Warn().Str("sku", sku).Int("row", i+1).Msg("sheets: malformed SKU dropped")
			continue
		}

		qty := 0
		if len(row) > qtyColumn {
			qty = cellInt(row[qtyColumn])
		}

		if _, seen := levels.Quantities[sku]; !seen {
			levels.Order = append(levels.Order, sku)
		}
		levels.Quantities[sku] += qty
	}

	return levels
}

func cellString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(v)
	}
}

func cellInt(v interface{}) int {
	switch t := v.(type) {
	case float64:
		return int(t)
	case int:
		return t
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0
		}
		return n
	default:
		return 0
	}
}

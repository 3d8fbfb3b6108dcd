// internal/api/handlers/stock_handler.go
package handlers

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// StockReporter builds the current stock report.
type StockReporter interface {
	GetReport(ctx context.Context, refresh bool) (*domain.StockReport, error)
}

// SnapshotReader serves persisted report history.
type SnapshotReader interface {
	ListRuns(ctx context.Context, limit int) ([]domain.ReportRun, error)
	GetByDate(ctx context.Context, day time.Time) ([]domain.StockRecord, error)
}

type StockHandler struct {
	reporter  StockReporter
	snapshots SnapshotReader
}

func NewStockHandler(reporter StockReporter, snapshots SnapshotReader) *StockHandler {
	return &StockHandler{reporter: reporter, snapshots: snapshots}
}

// GetReport returns the full stock report. ?refresh=true bypasses the cache.
func (h *StockHandler) GetReport(c *gin.Context) {
	report, ok := h.fetchReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, report)
}

// GetReorder returns only the supplier order proposal.
func (h *StockHandler) GetReorder(c *gin.Context) {
	report, ok := h.fetchReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"ordine_fornitore": report.Reorder,
		"timestamp":        report.GeneratedAt,
	})
}

// GetSummary returns the aggregate counters of the current report.
func (h *StockHandler) GetSummary(c *gin.Context) {
	report, ok := h.fetchReport(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"summary":   report.Summary,
		"timestamp": report.GeneratedAt,
	})
}

// GetHistory lists persisted report runs; with ?date=YYYY-MM-DD it returns
// that day's snapshot rows.
func (h *StockHandler) GetHistory(c *gin.Context) {
	if h.snapshots == nil {
		errorResponse(c, http.StatusNotImplemented, "report history is not enabled")
		return
	}

	if rawDate := c.Query("date"); rawDate != "" {
		day, err := time.Parse("2006-01-02", rawDate)
		if err != nil {
			errorResponse(c, http.StatusBadRequest, "date must be YYYY-MM-DD")
			return
		}
		records, err := h.snapshots.GetByDate(c.Request.Context(), day)
		if err != nil {
			log.Error().Err(err).Str("date", rawDate).Msg("snapshot lookup failed")
			errorResponse(c, http.StatusInternalServerError, "failed to load snapshot")
			return
		}
		c.JSON(http.StatusOK, gin.H{"date": rawDate, "stock": records})
		return
	}

	limit := 30
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}

	runs, err := h.snapshots.ListRuns(c.Request.Context(), limit)
	if err != nil {
		log.Error().Err(err).Msg("run listing failed")
		errorResponse(c, http.StatusInternalServerError, "failed to list report runs")
		return
	}
	c.JSON(http.StatusOK, gin.H{"runs": runs})
}

func (h *StockHandler) fetchReport(c *gin.Context) (*domain.StockReport, bool) {
	refresh := c.Query("refresh") == "true"

	report, err := h.reporter.GetReport(c.Request.Context(), refresh)
	if err != nil {
		log.Error().Err(err).Msg("report build failed")
		errorResponse(c, http.StatusBadGateway, "failed to build stock report: "+err.Error())
		return nil, false
	}
	return report, true
}

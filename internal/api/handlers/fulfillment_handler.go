// internal/api/handlers/fulfillment_handler.go
package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// OrderFulfiller ships an order and marks it fulfilled.
type OrderFulfiller interface {
	Fulfill(ctx context.Context, req domain.FulfillRequest) (domain.FulfillResult, error)
}

type FulfillmentHandler struct {
	service OrderFulfiller
}

func NewFulfillmentHandler(service OrderFulfiller) *FulfillmentHandler {
	return &FulfillmentHandler{service: service}
}

// FulfillOrder creates the carrier shipment and the platform fulfillment
// for one order.
func (h *FulfillmentHandler) FulfillOrder(c *gin.Context) {
	var req domain.FulfillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		errorResponse(c, http.StatusBadRequest, "invalid fulfillment request: "+err.Error())
		return
	}

	result, err := h.service.Fulfill(c.Request.Context(), req)
	if err != nil {
		log.Error().Err(err).Str("order", req.OrderName).Msg("fulfillment failed")
		errorResponse(c, http.StatusBadGateway, err.Error())
		return
	}

	status := http.StatusOK
	if !result.Success {
		// The shipment exists but the platform was not updated; the caller
		// must not retry blindly or a second label gets printed.
		status = http.StatusConflict
	}
	c.JSON(status, result)
}

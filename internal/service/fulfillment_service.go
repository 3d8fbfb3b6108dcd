// internal/service/fulfillment_service.go
package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/cache"
	"github.com/simonepenna/adibodyes/internal/domain"
)

// FulfillmentPlatform is the subset of the Shopify client the fulfillment
// flow depends on.
type FulfillmentPlatform interface {
	OpenFulfillmentOrder(ctx context.Context, orderID string) (string, error)
	CreateFulfillment(ctx context.Context, fulfillmentOrderID, trackingNumber string, notifyCustomer bool) error
}

// ShipmentCreator registers a consignment with the carrier.
type ShipmentCreator interface {
	CreateShipment(ctx context.Context, req domain.FulfillRequest) (string, error)
}

// FulfillmentService ships an order with GLS and marks it fulfilled on the
// platform, in that order. A shipment that exists only at the carrier is
// recoverable by hand; a fulfillment without a shipment is not.
type FulfillmentService struct {
	platform FulfillmentPlatform
	carrier  ShipmentCreator
	cache    cache.ReportCache
}

func NewFulfillmentService(platform FulfillmentPlatform, carrier ShipmentCreator, reportCache cache.ReportCache) *FulfillmentService {
	return &FulfillmentService{
		platform: platform,
		carrier:  carrier,
		cache:    reportCache,
	}
}

// Fulfill runs the whole flow for one order. Partial failures come back as a
// result with the tracking number set and Success false, so the operator
// knows a label already exists.
func (s *FulfillmentService) Fulfill(ctx context.Context, req domain.FulfillRequest) (domain.FulfillResult, error) {
	if req.OrderID == "" {
		return domain.FulfillResult{}, fmt.Errorf("orderId is required")
	}
	if len(req.Items) == 0 {
		return domain.FulfillResult{}, fmt.Errorf("order %s has no items to ship", req.OrderName)
	}

	fulfillmentOrderID, err := s.platform.OpenFulfillmentOrder(ctx, req.OrderID)
	if err != nil {
		return domain.FulfillResult{}, fmt.Errorf("order %s: %w", req.OrderName, err)
	}

	tracking, err := s.carrier.CreateShipment(ctx, req)
	if err != nil {
		return domain.FulfillResult{}, fmt.Errorf("order %s: %w", req.OrderName, err)
	}

	if err := s.platform.CreateFulfillment(ctx, fulfillmentOrderID, tracking, req.NotifyCustomer); err != nil {
		log.Error().Err(err).Str("order", req.OrderName).Str("tracking", tracking).
			Msg("fulfillment: shipment created but platform update failed")
		return domain.FulfillResult{
			Success:        false,
			TrackingNumber: tracking,
			Error:          fmt.Sprintf("shipment %s created but fulfillment failed: %v", tracking, err),
		}, nil
	}

	// The order just left the building, so any cached report overstates
	// stock until the next rebuild.
	if err := s.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("fulfillment: report cache invalidation failed")
	}

	log.Info().Str("order", req.OrderName).Str("tracking", tracking).Msg("fulfillment: order shipped")
	return domain.FulfillResult{
		Success:        true,
		TrackingNumber: tracking,
		Message:        fmt.Sprintf("order %s shipped with tracking %s", req.OrderName, tracking),
	}, nil
}

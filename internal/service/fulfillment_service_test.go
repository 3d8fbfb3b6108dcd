package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/simonepenna/adibodyes/internal/cache"
	"github.com/simonepenna/adibodyes/internal/domain"
)

type fakePlatform struct {
	fulfillmentOrderID string
	openErr            error
	createErr          error
	createdTracking    string
}

func (f *fakePlatform) OpenFulfillmentOrder(_ context.Context, _ string) (string, error) {
	return f.fulfillmentOrderID, f.openErr
}

func (f *fakePlatform) CreateFulfillment(_ context.Context, _, tracking string, _ bool) error {
	f.createdTracking = tracking
	return f.createErr
}

type fakeShipper struct {
	tracking string
	err      error
	called   bool
}

func (f *fakeShipper) CreateShipment(_ context.Context, _ domain.FulfillRequest) (string, error) {
	f.called = true
	return f.tracking, f.err
}

func shippableRequest() domain.FulfillRequest {
	return domain.FulfillRequest{
		OrderID:   "6001",
		OrderName: "#ES1001",
		Items:     []domain.FulfillItem{{SKU: "SLIP.S.BL", Quantity: 1}},
	}
}

func TestFulfillHappyPath(t *testing.T) {
	platform := &fakePlatform{fulfillmentOrderID: "gid://shopify/FulfillmentOrder/1"}
	shipper := &fakeShipper{tracking: "96123456789"}

	svc := NewFulfillmentService(platform, shipper, cache.NewNoopReportCache())
	result, err := svc.Fulfill(context.Background(), shippableRequest())
	if err != nil {
		t.Fatal(err)
	}
	if !result.Success {
		t.Fatalf("expected success, got %+v", result)
	}
	if result.TrackingNumber != "96123456789" {
		t.Errorf("tracking: got %q", result.TrackingNumber)
	}
	if platform.createdTracking != "96123456789" {
		t.Errorf("platform fulfillment tracking: got %q", platform.createdTracking)
	}
}

func TestFulfillNoShipmentWithoutOpenOrder(t *testing.T) {
	platform := &fakePlatform{openErr: errors.New("no OPEN fulfillment order")}
	shipper := &fakeShipper{tracking: "96123456789"}

	svc := NewFulfillmentService(platform, shipper, cache.NewNoopReportCache())
	if _, err := svc.Fulfill(context.Background(), shippableRequest()); err == nil {
		t.Fatal("expected error")
	}
	if shipper.called {
		t.Error("no shipment should be created when the platform has no open fulfillment order")
	}
}

func TestFulfillReportsPartialFailure(t *testing.T) {
	platform := &fakePlatform{
		fulfillmentOrderID: "gid://shopify/FulfillmentOrder/1",
		createErr:          errors.New("api down"),
	}
	shipper := &fakeShipper{tracking: "96123456789"}

	svc := NewFulfillmentService(platform, shipper, cache.NewNoopReportCache())
	result, err := svc.Fulfill(context.Background(), shippableRequest())
	if err != nil {
		t.Fatalf("partial failure should come back as a result, got error: %v", err)
	}
	if result.Success {
		t.Error("result should not be marked successful")
	}
	if result.TrackingNumber != "96123456789" {
		t.Errorf("tracking of the orphaned shipment must surface, got %q", result.TrackingNumber)
	}
	if !strings.Contains(result.Error, "96123456789") {
		t.Errorf("error message should mention the shipment: %q", result.Error)
	}
}

func TestFulfillValidatesRequest(t *testing.T) {
	svc := NewFulfillmentService(&fakePlatform{}, &fakeShipper{}, cache.NewNoopReportCache())

	if _, err := svc.Fulfill(context.Background(), domain.FulfillRequest{}); err == nil {
		t.Error("missing order id should be rejected")
	}

	req := shippableRequest()
	req.Items = nil
	if _, err := svc.Fulfill(context.Background(), req); err == nil {
		t.Error("empty item list should be rejected")
	}
}

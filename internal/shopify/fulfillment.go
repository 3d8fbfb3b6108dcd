// internal/shopify/fulfillment.go
package shopify

import (
	"context"
	"fmt"
	"strings"
)

const fulfillmentOrdersQuery = `
query getFulfillmentOrders($orderId: ID!) {
  order(id: $orderId) {
    id
    fulfillmentOrders(first: 10) {
      edges {
        node {
          id
          status
        }
      }
    }
  }
}`

const fulfillmentCreateMutation = `
mutation fulfillmentCreate($fulfillment: FulfillmentInput!) {
  fulfillmentCreateV2(fulfillment: $fulfillment) {
    fulfillment {
      id
      status
    }
    userErrors {
      field
      message
    }
  }
}`

// orderGID normalizes a numeric order ID or full GID into the GID form the
// GraphQL API expects.
func orderGID(orderID string) string {
	if strings.HasPrefix(orderID, "gid://") {
		return orderID
	}
	return "gid://shopify/Order/" + orderID
}

// OpenFulfillmentOrder finds the order's fulfillment order with status OPEN.
// Called before creating the carrier shipment so a non-fulfillable order
// fails fast without an orphaned shipment.
func (c *Client) OpenFulfillmentOrder(ctx context.Context, orderID string) (string, error) {
	var resp struct {
		Order *struct {
			ID                string `json:"id"`
			FulfillmentOrders struct {
				Edges []struct {
					Node struct {
						ID     string `json:"id"`
						Status string `json:"status"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"fulfillmentOrders"`
		} `json:"order"`
	}

	err := c.graphql(ctx, fulfillmentOrdersQuery, map[string]interface{}{
		"orderId": orderGID(orderID),
	}, &resp)
	if err != nil {
		return "", err
	}
	if resp.Order == nil {
		return "", fmt.Errorf("order %s not found", orderID)
	}

	statuses := make([]string, 0, len(resp.Order.FulfillmentOrders.Edges))
	for _, edge := range resp.Order.FulfillmentOrders.Edges {
		if edge.Node.Status == "OPEN" {
			return edge.Node.ID, nil
		}
		statuses = append(statuses, edge.Node.Status)
	}

	if len(statuses) == 0 {
		return "", fmt.Errorf("order %s has no fulfillment orders", orderID)
	}
	return "", fmt.Errorf("order %s has no OPEN fulfillment order (statuses: %s)",
		orderID, strings.Join(statuses, ", "))
}

// CreateFulfillment marks a fulfillment order fulfilled with the carrier
// tracking number attached.
func (c *Client) CreateFulfillment(ctx context.Context, fulfillmentOrderID, trackingNumber string, notifyCustomer bool) error {
	fulfillment := map[string]interface{}{
		"lineItemsByFulfillmentOrder": []map[string]interface{}{
			{"fulfillmentOrderId": fulfillmentOrderID},
		},
		"trackingInfo": map[string]interface{}{
			"company": "GLS",
			"number":  trackingNumber,
			"url":     "https://mygls.gls-spain.es/e/" + trackingNumber,
		},
		"notifyCustomer": notifyCustomer,
	}

	var resp struct {
		FulfillmentCreateV2 struct {
			Fulfillment *struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"fulfillment"`
			UserErrors []struct {
				Message string `json:"message"`
			} `json:"userErrors"`
		} `json:"fulfillmentCreateV2"`
	}

	err := c.graphql(ctx, fulfillmentCreateMutation, map[string]interface{}{
		"fulfillment": fulfillment,
	}, &resp)
	if err != nil {
		return err
	}

	if len(resp.FulfillmentCreateV2.UserErrors) > 0 {
		return fmt.Errorf("fulfillment rejected: %s", resp.FulfillmentCreateV2.UserErrors[0].Message)
	}
	if resp.FulfillmentCreateV2.Fulfillment == nil {
		return fmt.Errorf("fulfillment not created")
	}
	return nil
}

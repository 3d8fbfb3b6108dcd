// internal/shopify/orders.go
package shopify

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/simonepenna/adibodyes/internal/domain"
)

// FetchSalesEvents pulls orders created in the last daysBack days from the
// REST order export and flattens their line items into sales events, one
// per line item. Line items without a SKU are skipped here; SKU validity
// is the forecaster's concern.
func (c *Client) FetchSalesEvents(ctx context.Context, daysBack int) ([]domain.SalesEvent, error) {
	since := time.Now().UTC().AddDate(0, 0, -daysBack)

	query := url.Values{}
	query.Set("status", "any")
	query.Set("created_at_min", since.Format(time.RFC3339))
	query.Set("limit", "250")

	var payload struct {
		Orders []struct {
			CreatedAt time.Time `json:"created_at"`
			LineItems []struct {
				SKU             string `json:"sku"`
				CurrentQuantity int    `json:"current_quantity"`
			} `json:"line_items"`
		} `json:"orders"`
	}
	if err := c.restGet(ctx, "orders.json", query, &payload); err != nil {
		return nil, fmt.Errorf("fetch shopify orders: %w", err)
	}

	events := make([]domain.SalesEvent, 0, len(payload.Orders))
	for _, order := range payload.Orders {
		for _, item := range order.LineItems {
			if item.SKU == "" {
				continue
			}
			events = append(events, domain.SalesEvent{
				SKU:      item.SKU,
				Quantity: item.CurrentQuantity,
				Date:     order.CreatedAt,
			})
		}
	}

	return events, nil
}

const backorderQuery = `
query backorders($first: Int!, $after: String, $filter: String!) {
  orders(first: $first, after: $after, query: $filter) {
    pageInfo { hasNextPage endCursor }
    edges {
      node {
        tags
        lineItems(first: 100) {
          edges {
            node {
              sku
              quantity
            }
          }
        }
      }
    }
  }
}`

// FetchBackorders sums line-item quantities by SKU across orders created in
// the last daysBack days that carry any of the given backorder tags.
func (c *Client) FetchBackorders(ctx context.Context, tags []string, daysBack int) (map[string]int, error) {
	wanted := make(map[string]bool, len(tags))
	for _, t := range tags {
		wanted[strings.TrimSpace(t)] = true
	}

	since := time.Now().UTC().AddDate(0, 0, -daysBack).Format("2006-01-02")
	filter := fmt.Sprintf("created_at:>=%s", since)

	backorders := make(map[string]int)
	var after *string

	for {
		variables := map[string]interface{}{
			"first":  graphqlPageSize,
			"filter": filter,
		}
		if after != nil {
			variables["after"] = *after
		}

		var page struct {
			Orders struct {
				PageInfo struct {
					HasNextPage bool   `json:"hasNextPage"`
					EndCursor   string `json:"endCursor"`
				} `json:"pageInfo"`
				Edges []struct {
					Node struct {
						Tags      []string `json:"tags"`
						LineItems struct {
							Edges []struct {
								Node struct {
									SKU      string `json:"sku"`
									Quantity int    `json:"quantity"`
								} `json:"node"`
							} `json:"edges"`
						} `json:"lineItems"`
					} `json:"node"`
				} `json:"edges"`
			} `json:"orders"`
		}
		if err := c.graphql(ctx, backorderQuery, variables, &page); err != nil {
			return nil, fmt.Errorf("fetch backorders: %w", err)
		}

		for _, edge := range page.Orders.Edges {
			if !hasAnyTag(edge.Node.Tags, wanted) {
				continue
			}
			for _, li := range edge.Node.LineItems.Edges {
				if li.Node.SKU == "" {
					continue
				}
				backorders[li.Node.SKU] += li.Node.Quantity
			}
		}

		if !page.Orders.PageInfo.HasNextPage {
			break
		}
		cursor := page.Orders.PageInfo.EndCursor
		after = &cursor
	}

	return backorders, nil
}

func hasAnyTag(tags []string, wanted map[string]bool) bool {
	for _, t := range tags {
		if wanted[strings.TrimSpace(t)] {
			return true
		}
	}
	return false
}

// internal/shopify/client.go
package shopify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/simonepenna/adibodyes/internal/config"
)

const (
	graphqlPageSize = 250
	maxRetries      = 6
	backoffBase     = 1.5
)

// Client talks to the Shopify Admin API, both the REST order export and the
// GraphQL endpoint. GraphQL calls retry on THROTTLED with exponential
// backoff and jitter, matching Shopify's leaky-bucket rate limiting.
type Client struct {
	httpClient *http.Client
	shopDomain string
	apiVersion string
	token      string
}

func NewClient(cfg config.ShopifyConfig) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		shopDomain: cfg.ShopDomain,
		apiVersion: cfg.APIVersion,
		token:      cfg.AccessToken,
	}
}

// WithHTTPClient overrides the underlying HTTP client. Used by tests to
// point the client at a local server.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithBaseDomain overrides the shop domain (host[:port]), for tests.
func (c *Client) WithBaseDomain(domain string) *Client {
	c.shopDomain = domain
	return c
}

func (c *Client) restURL(path string, query url.Values) string {
	scheme := "https"
	if strings.Contains(c.shopDomain, "127.0.0.1") || strings.Contains(c.shopDomain, "localhost") {
		scheme = "http"
	}
	u := url.URL{
		Scheme:   scheme,
		Host:     c.shopDomain,
		Path:     fmt.Sprintf("/admin/api/%s/%s", c.apiVersion, path),
		RawQuery: query.Encode(),
	}
	return u.String()
}

func (c *Client) graphqlURL() string {
	return c.restURL("graphql.json", nil)
}

func (c *Client) restGet(ctx context.Context, path string, query url.Values, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.restURL(path, query), nil)
	if err != nil {
		return err
	}
	req.Header.Set("X-Shopify-Access-Token", c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("shopify request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("shopify %s returned %d: %s", path, resp.StatusCode, string(body))
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlError struct {
	Message    string `json:"message"`
	Extensions struct {
		Code string `json:"code"`
	} `json:"extensions"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors []graphqlError  `json:"errors"`
}

// graphql posts a query and decodes data into out, retrying while Shopify
// reports THROTTLED.
func (c *Client) graphql(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return err
	}

	for attempt := 0; attempt <= maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.graphqlURL(), bytes.NewReader(payload))
		if err != nil {
			return err
		}
		req.Header.Set("X-Shopify-Access-Token", c.token)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("shopify graphql request failed: %w", err)
		}

		var gqlResp graphqlResponse
		decodeErr := json.NewDecoder(resp.Body).Decode(&gqlResp)
		resp.Body.Close()
		if decodeErr != nil {
			return fmt.Errorf("shopify graphql decode failed: %w", decodeErr)
		}

		if throttled(gqlResp.Errors) {
			if attempt == maxRetries {
				return fmt.Errorf("shopify graphql throttled after %d attempts", attempt+1)
			}
			wait := backoffDelay(attempt)
			log.Warn().Dur("wait", wait).Int("attempt", attempt+1).Msg("shopify throttled, backing off")
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if len(gqlResp.Errors) > 0 {
			return fmt.Errorf("shopify graphql error: %s", gqlResp.Errors[0].Message)
		}

		return json.Unmarshal(gqlResp.Data, out)
	}

	return fmt.Errorf("shopify graphql: retries exhausted")
}

func throttled(errs []graphqlError) bool {
	for _, e := range errs {
		if e.Extensions.Code == "THROTTLED" || strings.Contains(e.Message, "Throttled") {
			return true
		}
	}
	return false
}

func backoffDelay(attempt int) time.Duration {
	base := backoffBase
	for i := 0; i < attempt; i++ {
		base *= backoffBase
	}
	jitter := rand.Float64() * 0.5
	return time.Duration((base + jitter) * float64(time.Second))
}

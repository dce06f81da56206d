// Package roblox provides an HTTP client for the Roblox platform public APIs
// used by the pass proxy: place-to-universe resolution and game-pass listing.
package roblox

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/bloxkit/passproxy/internal/domain/pass"
	"github.com/bloxkit/passproxy/internal/resilience"
)

// ErrUnresolvable is returned when upstream answered but no universe could be
// derived from the given place. Transport and decode failures are returned as
// distinct errors; callers treat all of them as "unresolvable", never fatal.
var ErrUnresolvable = errors.New("place could not be resolved to a universe")

// listingLimit is the maximum number of passes requested per listing call.
const listingLimit = 100

// Client talks to the Roblox platform APIs.
type Client struct {
	apisBaseURL  string
	gamesBaseURL string
	httpClient   *http.Client
	breaker      *resilience.Breaker
}

// NewClient creates a Roblox API client against the given base URLs.
func NewClient(apisBaseURL, gamesBaseURL string, timeout time.Duration) *Client {
	return &Client{
		apisBaseURL:  apisBaseURL,
		gamesBaseURL: gamesBaseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

// SetBreaker attaches a circuit breaker to all outgoing HTTP calls.
func (c *Client) SetBreaker(b *resilience.Breaker) {
	c.breaker = b
}

// ResolveUniverseID resolves a place identifier to its universe identifier.
// Any failure (transport, non-2xx, malformed body, absent universe) yields an
// error; the identifier itself is passed through opaquely.
func (c *Client) ResolveUniverseID(ctx context.Context, placeID string) (string, error) {
	path := fmt.Sprintf("/universes/v1/places/%s/universe", url.PathEscape(placeID))
	data, err := c.doRequest(ctx, c.apisBaseURL+path)
	if err != nil {
		return "", fmt.Errorf("resolve universe for place %s: %w", placeID, err)
	}

	var body struct {
		UniverseID json.Number `json:"universeId"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return "", fmt.Errorf("resolve universe for place %s: unmarshal: %w", placeID, err)
	}
	if body.UniverseID.String() == "" {
		return "", fmt.Errorf("place %s: %w", placeID, ErrUnresolvable)
	}
	return body.UniverseID.String(), nil
}

// ListGamePasses fetches up to 100 game passes for a universe in ascending
// order. A non-2xx upstream status is an error carrying the status code; a
// response without a data field is an empty listing, not an error.
func (c *Client) ListGamePasses(ctx context.Context, universeID string) ([]pass.GamePass, error) {
	path := fmt.Sprintf("/v1/games/%s/game-passes?limit=%d&sortOrder=Asc",
		url.PathEscape(universeID), listingLimit)
	data, err := c.doRequest(ctx, c.gamesBaseURL+path)
	if err != nil {
		return nil, fmt.Errorf("list game passes for universe %s: %w", universeID, err)
	}

	var listing pass.Listing
	if err := json.Unmarshal(data, &listing); err != nil {
		return nil, fmt.Errorf("list game passes for universe %s: unmarshal: %w", universeID, err)
	}
	if listing.Data == nil {
		return []pass.GamePass{}, nil
	}
	return listing.Data, nil
}

func (c *Client) doRequest(ctx context.Context, rawURL string) ([]byte, error) {
	var result []byte
	call := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return fmt.Errorf("http request: %w", err)
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			return fmt.Errorf("roblox API error %d: %s", resp.StatusCode, string(data))
		}

		result = data
		return nil
	}

	if c.breaker != nil {
		if err := c.breaker.Execute(call); err != nil {
			return nil, err
		}
		return result, nil
	}

	if err := call(); err != nil {
		return nil, err
	}
	return result, nil
}

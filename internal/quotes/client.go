package quotes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"folio-backend/internal/models"

	"github.com/shopspring/decimal"
)

var (
	// ErrRateLimited is a provider 429; retried on the rate-limit schedule.
	ErrRateLimited = errors.New("quote provider rate limited")
	// ErrUnavailable covers 5xx and network failures; retried with backoff.
	ErrUnavailable = errors.New("quote provider unavailable")
	// ErrBadQuote marks a response with a missing or non-positive price.
	ErrBadQuote = errors.New("quote missing or non-positive")
)

// Quote is the provider's current/previous-close pair.
type Quote struct {
	Current       decimal.Decimal `json:"current"`
	PreviousClose decimal.Decimal `json:"previous_close"`
}

// Candles carries parallel OHLCV arrays as returned by the candle endpoint.
type Candles struct {
	Open       []float64 `json:"o"`
	High       []float64 `json:"h"`
	Low        []float64 `json:"l"`
	Close      []float64 `json:"c"`
	Volume     []float64 `json:"v"`
	Timestamps []int64   `json:"t"`
	Status     string    `json:"s"`
}

// Client is a Finnhub-shaped quote provider client.
type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

// NewClient builds a client with a sane request timeout.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		HTTP:    &http.Client{Timeout: 10 * time.Second},
	}
}

// QuoteSymbol maps a holding to the provider's lookup symbol. Crypto is
// queried under the exchange pair convention; everything else plain.
func QuoteSymbol(assetType models.AssetType, symbol string) string {
	if assetType == models.AssetCrypto {
		return "BINANCE:" + symbol + "USDT"
	}
	return symbol
}

// Lookup fetches the current quote for a holding, applying the asset-type
// symbol routing.
func (c *Client) Lookup(ctx context.Context, assetType models.AssetType, symbol string) (*Quote, error) {
	return c.Quote(ctx, QuoteSymbol(assetType, symbol))
}

// Quote calls GET /quote?symbol=. A non-positive or missing current value is
// a failure (ErrBadQuote).
func (c *Client) Quote(ctx context.Context, symbol string) (*Quote, error) {
	var payload struct {
		Current       float64 `json:"c"`
		PreviousClose float64 `json:"pc"`
	}
	params := url.Values{}
	params.Set("symbol", symbol)
	if err := c.get(ctx, "/quote", params, &payload); err != nil {
		return nil, err
	}
	if payload.Current <= 0 {
		return nil, fmt.Errorf("%w: symbol %s", ErrBadQuote, symbol)
	}
	return &Quote{
		Current:       decimal.NewFromFloat(payload.Current),
		PreviousClose: decimal.NewFromFloat(payload.PreviousClose),
	}, nil
}

// CandleHistory calls the stock or crypto candle endpoint depending on asset
// type and returns the raw OHLCV arrays.
func (c *Client) CandleHistory(ctx context.Context, assetType models.AssetType, symbol, resolution string, from, to int64) (*Candles, error) {
	path := "/stock/candle"
	if assetType == models.AssetCrypto {
		path = "/crypto/candle"
	}
	params := url.Values{}
	params.Set("symbol", QuoteSymbol(assetType, symbol))
	params.Set("resolution", resolution)
	params.Set("from", strconv.FormatInt(from, 10))
	params.Set("to", strconv.FormatInt(to, 10))

	var out Candles
	if err := c.get(ctx, path, params, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) get(ctx context.Context, path string, params url.Values, out interface{}) error {
	if c.APIKey != "" {
		params.Set("token", c.APIKey)
	}
	endpoint := c.BaseURL + path + "?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return ErrRateLimited
	case resp.StatusCode >= 500:
		return fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		return fmt.Errorf("quote provider status %d", resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: decode: %v", ErrUnavailable, err)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

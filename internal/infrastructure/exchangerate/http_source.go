// Package exchangerate fetches USD-anchored rate tables from an upstream
// provider speaking the open.er-api.com "latest" format.
package exchangerate

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agencyhub/backend/internal/domain/exchange"
	"github.com/agencyhub/backend/internal/infrastructure/config"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// ErrUpstream is returned when the provider answers with an error payload
var ErrUpstream = errors.New("exchange rate provider error")

// maxBody caps how much of a provider response is read
const maxBody = 1 << 20

// latestResponse is the provider payload for GET /latest/{base}
type latestResponse struct {
	Result             string                     `json:"result"`
	ErrorType          string                     `json:"error-type,omitempty"`
	BaseCode           string                     `json:"base_code"`
	TimeLastUpdateUTC  string                     `json:"time_last_update_utc"`
	TimeLastUpdateUnix int64                      `json:"time_last_update_unix"`
	Rates              map[string]decimal.Decimal `json:"rates"`
}

// HTTPSource fetches snapshots from the configured provider
type HTTPSource struct {
	baseURL string
	apiKey  string
	client  *http.Client
	now     func() time.Time
}

// NewHTTPSource creates a source with the exchange section of the config
func NewHTTPSource(cfg config.ExchangeConfig) *HTTPSource {
	return &HTTPSource{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		client: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		now: time.Now,
	}
}

// FetchRates downloads the latest USD table
func (s *HTTPSource) FetchRates(ctx context.Context) (*exchange.Snapshot, error) {
	url := fmt.Sprintf("%s/latest/%s", s.baseURL, exchange.AnchorCurrency)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if s.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+s.apiKey)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch rates: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", ErrUpstream, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var payload latestResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxBody)).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode rates: %w", err)
	}
	if payload.Result != "" && payload.Result != "success" {
		return nil, fmt.Errorf("%w: %s", ErrUpstream, payload.ErrorType)
	}
	if !strings.EqualFold(payload.BaseCode, string(exchange.AnchorCurrency)) {
		return nil, fmt.Errorf("%w: unexpected base %q", ErrUpstream, payload.BaseCode)
	}
	if len(payload.Rates) == 0 {
		return nil, fmt.Errorf("%w: empty rate table", ErrUpstream)
	}

	return exchange.NewSnapshot(payload.Rates, payload.date(), s.now()), nil
}

// date returns the provider's update day as YYYY-MM-DD when it can be
// parsed, otherwise the raw value.
func (r latestResponse) date() string {
	if r.TimeLastUpdateUnix > 0 {
		return time.Unix(r.TimeLastUpdateUnix, 0).UTC().Format(time.DateOnly)
	}
	if t, err := time.Parse(time.RFC1123Z, r.TimeLastUpdateUTC); err == nil {
		return t.UTC().Format(time.DateOnly)
	}
	return r.TimeLastUpdateUTC
}

package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"marketdata-aggregator/internal/application"
	"marketdata-aggregator/internal/domain"
	"marketdata-aggregator/internal/infrastructure/httpx"

	"go.uber.org/zap"
)

const (
	coinsMarketsPath = "/coins/markets"
	demoAPIKeyHeader = "x-cg-demo-api-key"
)

// CoinGecko reads spot prices from the /coins/markets endpoint.
type CoinGecko struct {
	BaseURL string
	Client  *httpx.Client
	Log     *zap.Logger
}

var _ application.PriceProvider = (*CoinGecko)(nil)

func NewCoinGecko(baseURL, apiKey string, client *httpx.Client, log *zap.Logger) *CoinGecko {
	if client == nil {
		client = &httpx.Client{}
	}
	if apiKey != "" {
		if client.Header == nil {
			client.Header = http.Header{}
		}
		client.Header.Set(demoAPIKeyHeader, apiKey)
	}
	return &CoinGecko{BaseURL: baseURL, Client: client, Log: log}
}

func (p *CoinGecko) Fetch(ctx context.Context, symbols []string, currency string) ([]domain.RawPriceRecord, error) {
	if p.BaseURL == "" {
		return nil, errors.New("coingecko: missing base url")
	}
	u, err := url.Parse(strings.TrimRight(p.BaseURL, "/") + coinsMarketsPath)
	if err != nil {
		return nil, fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	q := u.Query()
	q.Set("vs_currency", currency)
	q.Set("ids", strings.Join(symbols, ","))
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("coingecko: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var out []domain.RawPriceRecord
	if err := client.DoJSON(ctx, req, &out, p.Log); err != nil {
		return nil, classify(symbols, err)
	}
	return out, nil
}

func classify(symbols []string, err error) error {
	var serr *httpx.StatusError
	if errors.As(err, &serr) {
		if serr.StatusCode >= 400 && serr.StatusCode < 500 && serr.StatusCode != http.StatusTooManyRequests {
			return &domain.InvalidSymbolError{Symbols: symbols, StatusCode: serr.StatusCode, Body: serr.Body}
		}
		return &domain.UpstreamUnavailableError{StatusCode: serr.StatusCode, Body: serr.Body}
	}
	return &domain.UpstreamUnavailableError{Err: err}
}

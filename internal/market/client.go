// Package market fetches OHLCV candle history from the exchange's public
// REST API. It is the only component that talks to the market-data endpoint;
// results are never cached across calls.
package market

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"SignalSentinel/internal/model"
)

// Config holds the client's endpoint and retry policy.
type Config struct {
	BaseURL    string
	Timeout    time.Duration // per-attempt timeout
	MaxRetries int           // retries after the initial attempt
	RetryDelay time.Duration // base delay; grows linearly with the attempt number
}

// Client fetches candles over HTTP with bounded retries. Safe for concurrent
// use; the underlying transport pools connections across tasks.
type Client struct {
	http *resty.Client
	log  zerolog.Logger
}

// NewClient builds a market data client from the given config.
func NewClient(cfg Config, log zerolog.Logger) *Client {
	rc := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.MaxRetries).
		SetRetryAfter(func(c *resty.Client, r *resty.Response) (time.Duration, error) {
			// Linear backoff: delay x attempt number.
			return cfg.RetryDelay * time.Duration(r.Request.Attempt), nil
		}).
		AddRetryCondition(func(r *resty.Response, err error) bool {
			return err != nil || !r.IsSuccess() || len(r.Body()) == 0
		})

	return &Client{
		http: rc,
		log:  log.With().Str("component", "market").Logger(),
	}
}

// FetchKlines fetches up to limit candles for symbol at the given interval.
// On exhausted retries it returns an error; the caller treats that as "no
// data for this symbol this cycle" rather than a fault to propagate.
func (c *Client) FetchKlines(ctx context.Context, symbol, interval string, limit int) (*model.PriceSeries, error) {
	if symbol == "" {
		return nil, fmt.Errorf("fetch klines: empty symbol")
	}

	var raw [][]any
	resp, err := c.http.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"symbol":   symbol,
			"interval": interval,
			"limit":    strconv.Itoa(limit),
		}).
		SetResult(&raw).
		Get("/klines")
	if err != nil {
		c.log.Warn().Str("symbol", symbol).Err(err).Msg("kline fetch failed")
		return nil, fmt.Errorf("fetch klines %s: %w", symbol, err)
	}
	if !resp.IsSuccess() {
		c.log.Warn().Str("symbol", symbol).Int("status", resp.StatusCode()).Msg("kline fetch failed")
		return nil, fmt.Errorf("fetch klines %s: status %d", symbol, resp.StatusCode())
	}
	if len(raw) == 0 {
		c.log.Warn().Str("symbol", symbol).Msg("empty kline response")
		return nil, fmt.Errorf("fetch klines %s: empty response", symbol)
	}

	candles := make([]model.Candle, 0, len(raw))
	for i, row := range raw {
		candle, err := parseKline(row)
		if err != nil {
			return nil, fmt.Errorf("fetch klines %s: row %d: %w", symbol, i, err)
		}
		candles = append(candles, candle)
	}

	return &model.PriceSeries{
		Symbol:    symbol,
		Candles:   candles,
		FetchedAt: time.Now().UTC(),
	}, nil
}

// parseKline converts one kline row. The endpoint returns a JSON array per
// candle: [openTimeMs, open, high, low, close, volume, ...] with prices as
// strings; only the first six fields are consumed.
func parseKline(row []any) (model.Candle, error) {
	if len(row) < 6 {
		return model.Candle{}, fmt.Errorf("kline row has %d fields, want at least 6", len(row))
	}

	openTime, err := asFloat(row[0])
	if err != nil {
		return model.Candle{}, fmt.Errorf("open time: %w", err)
	}

	fields := make([]float64, 5)
	for i := 0; i < 5; i++ {
		v, err := asFloat(row[i+1])
		if err != nil {
			return model.Candle{}, fmt.Errorf("field %d: %w", i+1, err)
		}
		fields[i] = v
	}

	return model.Candle{
		OpenTime: time.UnixMilli(int64(openTime)).UTC(),
		Open:     fields[0],
		High:     fields[1],
		Low:      fields[2],
		Close:    fields[3],
		Volume:   fields[4],
	}, nil
}

// asFloat accepts the mixed number-or-string values the kline payload uses.
func asFloat(v any) (float64, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case string:
		f, err := strconv.ParseFloat(n, 64)
		if err != nil {
			return 0, fmt.Errorf("parse %q: %w", n, err)
		}
		return f, nil
	default:
		return 0, fmt.Errorf("unexpected kline value type %T", v)
	}
}

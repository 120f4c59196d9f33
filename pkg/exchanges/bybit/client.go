package bybit

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"ai-trading-bot/pkg/exchanges/common"
)

const category = "linear" // USDT perpetuals

// Config holds Bybit V5 credentials.
type Config struct {
	APIKey     string
	APISecret  string
	Testnet    bool
	RecvWindow int64 // ms
}

// Client implements the Gateway contract against the Bybit V5 REST API.
type Client struct {
	cfg         Config
	baseURL     string
	httpClient  *http.Client
	rateLimiter *common.RateLimiter
}

var _ common.Gateway = (*Client)(nil)

// NewClient creates a Bybit V5 client. The 10s HTTP timeout bounds every
// Gateway call, which in turn bounds the scheduler's worst-case tick duration.
func NewClient(cfg Config) *Client {
	base := "https://api.bybit.com"
	if cfg.Testnet {
		base = "https://api-testnet.bybit.com"
	}
	if cfg.RecvWindow == 0 {
		cfg.RecvWindow = 5000
	}
	return &Client{
		cfg:         cfg,
		baseURL:     base,
		httpClient:  &http.Client{Timeout: 10 * time.Second},
		rateLimiter: common.NewRateLimiter(120, 5*time.Second),
	}
}

// GetCandles fetches the most recent klines, reordered oldest first.
func (c *Client) GetCandles(ctx context.Context, symbol, interval string, limit int) ([]common.Candle, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)
	params.Set("interval", interval)
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	var resp klineResponse
	if err := c.doPublic(ctx, "/v5/market/kline", params, &resp); err != nil {
		return nil, err
	}

	candles := make([]common.Candle, 0, len(resp.Result.List))
	for _, row := range resp.Result.List {
		if len(row) < 6 {
			return nil, fmt.Errorf("bybit kline row has %d fields", len(row))
		}
		ms, err := strconv.ParseInt(row[0], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("parse kline start time: %w", err)
		}
		candle := common.Candle{OpenTime: time.UnixMilli(ms)}
		for i, dst := range []*float64{&candle.Open, &candle.High, &candle.Low, &candle.Close, &candle.Volume} {
			v, err := strconv.ParseFloat(row[i+1], 64)
			if err != nil {
				return nil, fmt.Errorf("parse kline field %d: %w", i+1, err)
			}
			*dst = v
		}
		candles = append(candles, candle)
	}
	// Bybit returns newest first; the pipeline wants chronological order.
	sort.Slice(candles, func(i, j int) bool { return candles[i].OpenTime.Before(candles[j].OpenTime) })
	return candles, nil
}

// GetPrice returns the current mark price for a symbol.
func (c *Client) GetPrice(ctx context.Context, symbol string) (float64, error) {
	params := url.Values{}
	params.Set("category", category)
	params.Set("symbol", symbol)

	var resp tickerResponse
	if err := c.doPublic(ctx, "/v5/market/tickers", params, &resp); err != nil {
		return 0, err
	}
	if len(resp.Result.List) == 0 {
		return 0, fmt.Errorf("bybit ticker: no data for %s", symbol)
	}
	t := resp.Result.List[0]
	raw := t.MarkPrice
	if raw == "" {
		raw = t.LastPrice
	}
	price, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("parse mark price %q: %w", raw, err)
	}
	return price, nil
}

// GetBalance returns the unified account's available balance.
func (c *Client) GetBalance(ctx context.Context) (float64, error) {
	params := url.Values{}
	params.Set("accountType", "UNIFIED")

	var resp walletBalanceResponse
	if err := c.doSigned(ctx, http.MethodGet, "/v5/account/wallet-balance", params, nil, &resp); err != nil {
		return 0, err
	}
	if len(resp.Result.List) == 0 {
		return 0, errors.New("bybit wallet balance: empty account list")
	}
	avail, err := strconv.ParseFloat(resp.Result.List[0].TotalAvailableBalance, 64)
	if err != nil {
		return 0, fmt.Errorf("parse available balance: %w", err)
	}
	return avail, nil
}

// GetPositions lists open positions; symbol may be empty for all USDT pairs.
func (c *Client) GetPositions(ctx context.Context, symbol string) ([]common.Position, error) {
	params := url.Values{}
	params.Set("category", category)
	if symbol != "" {
		params.Set("symbol", symbol)
	} else {
		params.Set("settleCoin", "USDT")
	}

	var resp positionListResponse
	if err := c.doSigned(ctx, http.MethodGet, "/v5/position/list", params, nil, &resp); err != nil {
		return nil, err
	}

	positions := make([]common.Position, 0, len(resp.Result.List))
	for _, p := range resp.Result.List {
		size, err := strconv.ParseFloat(p.Size, 64)
		if err != nil {
			return nil, fmt.Errorf("parse position size: %w", err)
		}
		if size == 0 {
			continue
		}
		entry, _ := strconv.ParseFloat(p.AvgPrice, 64)
		positions = append(positions, common.Position{
			Symbol:     p.Symbol,
			Side:       common.Side(p.Side),
			Qty:        size,
			EntryPrice: entry,
		})
	}
	return positions, nil
}

// PlaceOrder submits a market or limit order.
func (c *Client) PlaceOrder(ctx context.Context, req common.OrderRequest) (common.OrderResult, error) {
	if c.cfg.APIKey == "" || c.cfg.APISecret == "" {
		return common.OrderResult{}, errors.New("bybit: API key/secret required")
	}
	body := map[string]any{
		"category":  category,
		"symbol":    req.Symbol,
		"side":      string(req.Side),
		"orderType": string(req.Type),
		"qty":       formatFloat(req.Qty),
	}
	if req.Type == common.OrderTypeLimit {
		body["price"] = formatFloat(req.Price)
		body["timeInForce"] = "GTC"
	} else {
		body["timeInForce"] = "IOC"
	}

	var resp orderCreateResponse
	if err := c.doSigned(ctx, http.MethodPost, "/v5/order/create", nil, body, &resp); err != nil {
		return common.OrderResult{}, err
	}
	return common.OrderResult{OrderID: resp.Result.OrderID}, nil
}

// SetStopLoss attaches a stop-loss to the open position via trading-stop.
func (c *Client) SetStopLoss(ctx context.Context, symbol string, side common.Side, stopPrice float64) error {
	body := map[string]any{
		"category":    category,
		"symbol":      symbol,
		"stopLoss":    formatFloat(stopPrice),
		"positionIdx": 0, // one-way mode
	}
	var resp envelope
	return c.doSigned(ctx, http.MethodPost, "/v5/position/trading-stop", nil, body, &resp)
}

// CancelOrder cancels a single order by ID.
func (c *Client) CancelOrder(ctx context.Context, symbol, orderID string) error {
	body := map[string]any{
		"category": category,
		"symbol":   symbol,
		"orderId":  orderID,
	}
	var resp envelope
	return c.doSigned(ctx, http.MethodPost, "/v5/order/cancel", nil, body, &resp)
}

// CancelAllOrders cancels every open order for a symbol (or all USDT pairs
// when symbol is empty).
func (c *Client) CancelAllOrders(ctx context.Context, symbol string) error {
	body := map[string]any{
		"category": category,
	}
	if symbol != "" {
		body["symbol"] = symbol
	} else {
		body["settleCoin"] = "USDT"
	}
	var resp envelope
	return c.doSigned(ctx, http.MethodPost, "/v5/order/cancel-all", nil, body, &resp)
}

// doPublic performs an unauthenticated GET against a market-data endpoint.
func (c *Client) doPublic(ctx context.Context, path string, params url.Values, out retChecker) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return err
	}
	return c.send(req, path, out)
}

// doSigned performs an authenticated request. GET payloads are signed over
// the query string, POST payloads over the JSON body.
func (c *Client) doSigned(ctx context.Context, method, path string, params url.Values, body map[string]any, out retChecker) error {
	timestamp := strconv.FormatInt(time.Now().UnixMilli(), 10)
	recvWindow := strconv.FormatInt(c.cfg.RecvWindow, 10)

	var (
		req     *http.Request
		err     error
		payload string
	)
	switch method {
	case http.MethodGet:
		payload = params.Encode()
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path+"?"+payload, nil)
	default:
		raw, mErr := json.Marshal(body)
		if mErr != nil {
			return fmt.Errorf("marshal request body: %w", mErr)
		}
		payload = string(raw)
		req, err = http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(raw))
		if req != nil {
			req.Header.Set("Content-Type", "application/json")
		}
	}
	if err != nil {
		return err
	}

	req.Header.Set("X-BAPI-API-KEY", c.cfg.APIKey)
	req.Header.Set("X-BAPI-TIMESTAMP", timestamp)
	req.Header.Set("X-BAPI-RECV-WINDOW", recvWindow)
	req.Header.Set("X-BAPI-SIGN", sign(timestamp, c.cfg.APIKey, recvWindow, payload, c.cfg.APISecret))

	return c.send(req, path, out)
}

type retChecker interface {
	retError() error
}

func (e *envelope) retError() error {
	if e.RetCode != 0 {
		return fmt.Errorf("bybit retCode %d: %s", e.RetCode, e.RetMsg)
	}
	return nil
}

func (c *Client) send(req *http.Request, path string, out retChecker) error {
	if c.rateLimiter != nil && c.rateLimiter.ShouldDelay() {
		time.Sleep(500 * time.Millisecond)
	}
	res, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("bybit %s %s: %w", req.Method, path, err)
	}
	defer res.Body.Close()

	if c.rateLimiter != nil {
		c.rateLimiter.UpdateFromHeader(res.Header.Get("X-Bapi-Limit-Status"))
	}

	body, _ := io.ReadAll(res.Body)
	if res.StatusCode >= 300 {
		return fmt.Errorf("bybit %s %s status %d: %s", req.Method, path, res.StatusCode, string(body))
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("bybit %s %s decode: %w", req.Method, path, err)
	}
	return out.retError()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

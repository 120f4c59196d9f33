// Package market streams public market data from Bybit V5 websockets.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// pingInterval keeps the connection alive; Bybit drops idle sockets after
// about 30 seconds without a ping.
const pingInterval = 20 * time.Second

// Ticker is one last-price update from the public ticker stream.
type Ticker struct {
	Symbol    string
	LastPrice float64
	Time      time.Time
}

// StreamClient manages streaming from the Bybit public linear websocket.
type StreamClient struct {
	StreamURL string
	dialer    *websocket.Dialer
}

// NewStreamClient builds a websocket client; testnet toggles the host.
func NewStreamClient(testnet bool) *StreamClient {
	host := "stream.bybit.com"
	if testnet {
		host = "stream-testnet.bybit.com"
	}
	return &StreamClient{
		StreamURL: (&url.URL{Scheme: "wss", Host: host, Path: "/v5/public/linear"}).String(),
		dialer:    websocket.DefaultDialer,
	}
}

type subscribeOp struct {
	Op   string   `json:"op"`
	Args []string `json:"args"`
}

type tickerMessage struct {
	Topic string `json:"topic"`
	Data  struct {
		Symbol    string `json:"symbol"`
		LastPrice string `json:"lastPrice"`
	} `json:"data"`
}

// SubscribeTickers opens one connection subscribed to the ticker topic for
// every symbol and emits parsed updates. It returns the channel and a stop
// function; the channel closes when the stream ends.
func (c *StreamClient) SubscribeTickers(ctx context.Context, symbols []string) (<-chan Ticker, func(), error) {
	conn, _, err := c.dialer.DialContext(ctx, c.StreamURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("dial bybit ws: %w", err)
	}

	args := make([]string, len(symbols))
	for i, s := range symbols {
		args[i] = "tickers." + s
	}
	if err := conn.WriteJSON(subscribeOp{Op: "subscribe", Args: args}); err != nil {
		conn.Close()
		return nil, nil, fmt.Errorf("subscribe bybit ws: %w", err)
	}

	out := make(chan Ticker, 100)
	// stop only tears the connection down; the read goroutine alone closes
	// out once ReadMessage unblocks, so a tick is never sent on a closed
	// channel.
	var once sync.Once
	stop := func() {
		once.Do(func() {
			_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			_ = conn.Close()
		})
	}

	go func() {
		ticker := time.NewTicker(pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				stop()
				return
			case <-ticker.C:
				if err := conn.WriteJSON(subscribeOp{Op: "ping"}); err != nil {
					return
				}
			}
		}
	}()

	go func() {
		defer close(out)
		defer stop()
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}

			_, msg, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) ||
					strings.Contains(err.Error(), "use of closed network connection") {
					return
				}
				log.Printf("bybit ws read error: %v", err)
				return
			}

			tick, ok := parseTickerMessage(msg)
			if !ok {
				continue
			}
			select {
			case out <- tick:
			case <-ctx.Done():
				return
			}
		}
	}()

	return out, stop, nil
}

// parseTickerMessage extracts a ticker update. Operational replies (pong,
// subscribe acks) and deltas without a last price report ok=false.
func parseTickerMessage(msg []byte) (Ticker, bool) {
	var parsed tickerMessage
	if err := json.Unmarshal(msg, &parsed); err != nil {
		return Ticker{}, false
	}
	if !strings.HasPrefix(parsed.Topic, "tickers.") || parsed.Data.LastPrice == "" {
		return Ticker{}, false
	}
	price, err := strconv.ParseFloat(parsed.Data.LastPrice, 64)
	if err != nil {
		return Ticker{}, false
	}
	return Ticker{
		Symbol:    parsed.Data.Symbol,
		LastPrice: price,
		Time:      time.Now().UTC(),
	}, true
}

package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"ai-trading-bot/internal/events"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// wsEnvelope tags each fanned-out payload with its topic so the UI can
// demultiplex a single socket.
type wsEnvelope struct {
	Event   events.Event `json:"event"`
	Payload any          `json:"payload"`
}

func (s *Server) websocket(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("ws upgrade error: %v", err)
		return
	}
	defer conn.Close()

	if s.Bus == nil {
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`{"error":"bus not ready"}`))
		return
	}

	marketCh, unsubMarket := s.Bus.Subscribe(events.EventMarketUpdate, 100)
	defer unsubMarket()
	tradeCh, unsubTrade := s.Bus.Subscribe(events.EventTradeExecuted, 16)
	defer unsubTrade()
	balanceCh, unsubBalance := s.Bus.Subscribe(events.EventBalanceUpdate, 16)
	defer unsubBalance()

	for {
		var env wsEnvelope
		select {
		case msg, ok := <-marketCh:
			if !ok {
				return
			}
			env = wsEnvelope{Event: events.EventMarketUpdate, Payload: msg}
		case msg, ok := <-tradeCh:
			if !ok {
				return
			}
			env = wsEnvelope{Event: events.EventTradeExecuted, Payload: msg}
		case msg, ok := <-balanceCh:
			if !ok {
				return
			}
			env = wsEnvelope{Event: events.EventBalanceUpdate, Payload: msg}
		}
		if err := conn.WriteJSON(env); err != nil {
			log.Printf("ws write error: %v", err)
			return
		}
	}
}

package marketdata

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"PortPulse/internal/domain/models"
	drepo "PortPulse/internal/domain/repository"
	applogger "PortPulse/pkg/logger"

	"github.com/gorilla/websocket"
)

// Stream implements QuoteStream over the provider's trade websocket. Prices
// are display-only between refresh cycles.
type Stream struct {
	token          string
	websocketURL   string
	reconnectDelay time.Duration
	pingInterval   time.Duration
	logger         *applogger.Logger

	mu        sync.Mutex
	conn      *websocket.Conn
	tickers   []string
	connected bool
}

// NewStream creates a QuoteStream.
func NewStream(token, websocketURL string, reconnectDelay, pingInterval time.Duration, logger *applogger.Logger) drepo.QuoteStream {
	return &Stream{
		token:          token,
		websocketURL:   websocketURL,
		reconnectDelay: reconnectDelay,
		pingInterval:   pingInterval,
		logger:         logger,
	}
}

// Connect establishes the websocket connection.
func (s *Stream) Connect(ctx context.Context) error {
	u := fmt.Sprintf("%s?token=%s", s.websocketURL, s.token)
	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u, nil)
	if err != nil {
		return fmt.Errorf("stream connect: %w", err)
	}
	s.mu.Lock()
	s.conn = conn
	s.connected = true
	s.mu.Unlock()
	s.logger.Info("quote stream connected")
	return nil
}

// Subscribe subscribes to the given tickers and remembers them for
// reconnects.
func (s *Stream) Subscribe(ctx context.Context, tickers []string) error {
	s.mu.Lock()
	conn, connected := s.conn, s.connected
	s.tickers = append([]string(nil), tickers...)
	s.mu.Unlock()
	if conn == nil || !connected {
		return fmt.Errorf("stream not connected")
	}
	for _, t := range tickers {
		msg := map[string]string{"type": "subscribe", "symbol": t}
		if err := conn.WriteJSON(msg); err != nil {
			return fmt.Errorf("subscribe %s: %w", t, err)
		}
	}
	s.logger.Info("quote stream subscribed", applogger.Int("tickers", len(tickers)))
	return nil
}

type wsTrade struct {
	S string  `json:"s"`
	P float64 `json:"p"`
	V float64 `json:"v"`
	T int64   `json:"t"` // ms
}

type wsMessage struct {
	Type string    `json:"type"`
	Data []wsTrade `json:"data"`
}

// Read streams quotes and errors until ctx is done or the connection drops.
func (s *Stream) Read(ctx context.Context) (<-chan *models.Quote, <-chan error) {
	quotes := make(chan *models.Quote, 1024)
	errs := make(chan error, 1)

	go func() {
		ticker := time.NewTicker(s.pingInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.mu.Lock()
				conn := s.conn
				s.mu.Unlock()
				if conn != nil {
					_ = conn.WriteMessage(websocket.PingMessage, nil)
				}
			}
		}
	}()

	go func() {
		defer close(quotes)
		defer close(errs)
		for {
			select {
			case <-ctx.Done():
				return
			default:
			}
			s.mu.Lock()
			conn := s.conn
			s.mu.Unlock()
			if conn == nil {
				errs <- fmt.Errorf("stream conn nil")
				return
			}
			_, b, err := conn.ReadMessage()
			if err != nil {
				errs <- fmt.Errorf("stream read: %w", err)
				return
			}
			var m wsMessage
			if err := json.Unmarshal(b, &m); err != nil {
				// ignore non-trade frames
				continue
			}
			if m.Type != "trade" {
				continue
			}
			for _, d := range m.Data {
				q := &models.Quote{
					Ticker: d.S,
					Price:  d.P,
					Volume: d.V,
					At:     time.UnixMilli(d.T),
				}
				select {
				case quotes <- q:
				default:
					// drop on backpressure
				}
			}
		}
	}()

	return quotes, errs
}

// Reconnect closes, waits, reconnects and resubscribes.
func (s *Stream) Reconnect(ctx context.Context) error {
	_ = s.Close()
	select {
	case <-time.After(s.reconnectDelay):
	case <-ctx.Done():
		return ctx.Err()
	}
	if err := s.Connect(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	tickers := append([]string(nil), s.tickers...)
	s.mu.Unlock()
	return s.Subscribe(ctx, tickers)
}

// Close closes the websocket connection.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.connected = false
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// IsConnected indicates status.
func (s *Stream) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

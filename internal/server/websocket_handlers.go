package server

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/MeKo-Tech/scantext/internal/pipeline"
)

// WebSocket upgrader with reasonable defaults.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin in development
		// In production, you should check against allowed origins
		return true
	},
}

// WebSocketExtractRequest is the single request message a client sends.
// Pdf carries the document bytes (base64 in JSON).
type WebSocketExtractRequest struct {
	Pdf      []byte `json:"pdf"`
	Strategy string `json:"strategy,omitempty"`
	Language string `json:"language,omitempty"`
	DPI      int    `json:"dpi,omitempty"`
}

// WebSocketEvent is one server-to-client message. Type is "started",
// "page", "completed" or "error".
type WebSocketEvent struct {
	Type         string           `json:"type"`
	Pages        int              `json:"pages,omitempty"`
	PageIndex    *int             `json:"page_index,omitempty"`
	Succeeded    bool             `json:"succeeded,omitempty"`
	Result       *pipeline.Result `json:"result,omitempty"`
	Error        string           `json:"error,omitempty"`
	ProcessingMs int64            `json:"processing_ms,omitempty"`
}

// extractWebSocketHandler streams per-page progress for one extraction.
func (s *Server) extractWebSocketHandler(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade connection to WebSocket", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	websocketConnections.Inc()
	defer websocketConnections.Dec()

	slog.Info("WebSocket connection established", "remote_addr", r.RemoteAddr)

	_ = conn.SetReadDeadline(time.Now().Add(60 * time.Second))

	var req WebSocketExtractRequest
	if err := conn.ReadJSON(&req); err != nil {
		s.sendWebSocketError(conn, "invalid request: "+err.Error())
		return
	}
	if len(req.Pdf) == 0 {
		s.sendWebSocketError(conn, "no pdf bytes provided")
		return
	}

	strategy, err := pipeline.ParseStrategy(req.Strategy)
	if err != nil {
		s.sendWebSocketError(conn, err.Error())
		return
	}

	emitter := &websocketProgress{conn: conn}
	opts := pipeline.Options{
		Strategy: strategy,
		Language: req.Language,
		DPI:      req.DPI,
		Progress: emitter,
	}

	start := time.Now()
	result, err := s.pipeline.ExtractTextContext(r.Context(), req.Pdf, opts)
	if err != nil {
		extractionsTotal.WithLabelValues(string(strategy), "error").Inc()
		s.sendWebSocketError(conn, err.Error())
		return
	}

	extractionsTotal.WithLabelValues(string(strategy), string(result.Outcome)).Inc()
	emitter.send(WebSocketEvent{
		Type:         "completed",
		Result:       result,
		ProcessingMs: time.Since(start).Milliseconds(),
	})
}

func (s *Server) sendWebSocketError(conn *websocket.Conn, message string) {
	event := WebSocketEvent{Type: "error", Error: message}
	if err := conn.WriteJSON(event); err != nil {
		slog.Error("Failed to send WebSocket error", "error", err)
	}
}

// websocketProgress forwards pipeline progress events to the client.
// OnPage is called from worker goroutines; gorilla connections allow only
// one concurrent writer, hence the mutex.
type websocketProgress struct {
	conn *websocket.Conn
	mu   sync.Mutex
}

func (p *websocketProgress) send(event WebSocketEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if err := p.conn.WriteJSON(event); err != nil {
		slog.Debug("Failed to send WebSocket event", "type", event.Type, "error", err)
	}
}

func (p *websocketProgress) OnStart(total int) {
	p.send(WebSocketEvent{Type: "started", Pages: total})
}

func (p *websocketProgress) OnPage(outcome pipeline.PageOutcome) {
	idx := outcome.PageIndex
	p.send(WebSocketEvent{Type: "page", PageIndex: &idx, Succeeded: outcome.Succeeded})
}

func (p *websocketProgress) OnComplete() {}

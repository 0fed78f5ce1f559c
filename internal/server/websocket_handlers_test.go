package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/scantext/internal/pipeline"
)

func dialWebSocket(t *testing.T, s *Server) *websocket.Conn {
	t.Helper()
	ts := httptest.NewServer(http.HandlerFunc(s.extractWebSocketHandler))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func readEvent(t *testing.T, conn *websocket.Conn) WebSocketEvent {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	var event WebSocketEvent
	require.NoError(t, conn.ReadJSON(&event))
	return event
}

func TestExtractWebSocket_StreamsProgressAndResult(t *testing.T) {
	fake := &fakeExtractor{result: &pipeline.Result{
		Text:      "streamed",
		Outcome:   pipeline.OutcomeComplete,
		PageCount: 1,
	}}
	conn := dialWebSocket(t, testServer(fake))

	require.NoError(t, conn.WriteJSON(WebSocketExtractRequest{
		Pdf:      []byte("%PDF"),
		Strategy: "enhanced",
	}))

	started := readEvent(t, conn)
	assert.Equal(t, "started", started.Type)
	assert.Equal(t, 1, started.Pages)

	page := readEvent(t, conn)
	assert.Equal(t, "page", page.Type)
	require.NotNil(t, page.PageIndex)
	assert.Equal(t, 0, *page.PageIndex)
	assert.True(t, page.Succeeded)

	completed := readEvent(t, conn)
	assert.Equal(t, "completed", completed.Type)
	require.NotNil(t, completed.Result)
	assert.Equal(t, "streamed", completed.Result.Text)
}

func TestExtractWebSocket_EmptyPdf(t *testing.T) {
	conn := dialWebSocket(t, testServer(&fakeExtractor{}))

	require.NoError(t, conn.WriteJSON(WebSocketExtractRequest{}))

	event := readEvent(t, conn)
	assert.Equal(t, "error", event.Type)
	assert.Contains(t, event.Error, "no pdf bytes")
}

func TestExtractWebSocket_UnknownStrategy(t *testing.T) {
	conn := dialWebSocket(t, testServer(&fakeExtractor{}))

	require.NoError(t, conn.WriteJSON(WebSocketExtractRequest{
		Pdf:      []byte("%PDF"),
		Strategy: "turbo",
	}))

	event := readEvent(t, conn)
	assert.Equal(t, "error", event.Type)
	assert.Contains(t, event.Error, "unknown strategy")
}

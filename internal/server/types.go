// Package server exposes the extraction pipeline over HTTP: a multipart
// upload endpoint, a websocket endpoint streaming per-page progress, a
// health check and Prometheus metrics.
package server

import (
	"context"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MeKo-Tech/scantext/internal/pipeline"
)

// extractor is the slice of the pipeline the server needs.
type extractor interface {
	ExtractTextContext(ctx context.Context, pdfBytes []byte, opts pipeline.Options) (*pipeline.Result, error)
}

// Server holds the HTTP server state and dependencies.
type Server struct {
	pipeline    extractor
	corsOrigin  string
	maxUploadMB int64
}

// Config holds server configuration.
type Config struct {
	Host        string
	Port        int
	CORSOrigin  string
	MaxUploadMB int64
	TimeoutSec  int
	Pipeline    pipeline.Config
}

// ExtractResponse is the JSON body returned by the extract endpoints.
type ExtractResponse struct {
	Success      bool             `json:"success"`
	Result       *pipeline.Result `json:"result,omitempty"`
	Error        string           `json:"error,omitempty"`
	ProcessingMs int64            `json:"processing_ms,omitempty"`
}

// HealthResponse is the JSON body of the health endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Time    string `json:"time"`
}

// NewServer creates a server around a pipeline built from config.
func NewServer(config Config) (*Server, error) {
	pl, err := pipeline.FromConfig(config.Pipeline).Build()
	if err != nil {
		return nil, err
	}

	return &Server{
		pipeline:    pl,
		corsOrigin:  config.CORSOrigin,
		maxUploadMB: config.MaxUploadMB,
	}, nil
}

// SetupRoutes configures the HTTP routes.
func (s *Server) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", s.corsMiddleware(s.healthHandler))
	mux.HandleFunc("/extract", s.corsMiddleware(s.extractHandler))
	mux.HandleFunc("/ws/extract", s.extractWebSocketHandler)
	mux.Handle("/metrics", promhttp.Handler())
}

package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/MeKo-Tech/scantext/internal/pipeline"
	"github.com/MeKo-Tech/scantext/internal/version"
)

// healthHandler reports service liveness.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	resp := HealthResponse{
		Status:  "ok",
		Version: version.Version,
		Time:    time.Now().UTC().Format(time.RFC3339),
	}
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode health response", "error", err)
	}
}

// extractHandler accepts a multipart PDF upload and returns extracted text.
func (s *Server) extractHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	pdfBytes, opts, err := s.parseExtractRequest(w, r)
	if err != nil {
		extractionsTotal.WithLabelValues(string(opts.Strategy), "error").Inc()
		return // error already written
	}

	start := time.Now()
	result, err := s.pipeline.ExtractTextContext(r.Context(), pdfBytes, opts)
	duration := time.Since(start)

	strategy := string(opts.Strategy)
	if err != nil {
		extractionsTotal.WithLabelValues(strategy, "error").Inc()
		status := http.StatusInternalServerError
		if pipeline.IsFatalInput(err) {
			status = http.StatusUnprocessableEntity
		}
		s.writeErrorResponse(w, fmt.Sprintf("Extraction failed: %v", err), status)
		return
	}

	extractionsTotal.WithLabelValues(strategy, string(result.Outcome)).Inc()
	extractionDuration.WithLabelValues(strategy).Observe(duration.Seconds())
	extractionPages.WithLabelValues(strategy).Observe(float64(result.PageCount))
	extractionFailedPages.WithLabelValues(strategy).Add(float64(len(result.FailedPages)))

	w.Header().Set("Content-Type", "application/json")
	resp := ExtractResponse{
		Success:      true,
		Result:       result,
		ProcessingMs: duration.Milliseconds(),
	}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode extract response", "error", err)
	}
}

// parseExtractRequest reads the uploaded PDF and per-request options.
// On error the response has already been written.
func (s *Server) parseExtractRequest(w http.ResponseWriter, r *http.Request) ([]byte, pipeline.Options, error) {
	var opts pipeline.Options

	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadMB*1024*1024)
	if err := r.ParseMultipartForm(s.maxUploadMB * 1024 * 1024); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			s.writeErrorResponse(w, "File too large", http.StatusRequestEntityTooLarge)
		} else {
			s.writeErrorResponse(w, "Invalid multipart form", http.StatusBadRequest)
		}
		return nil, opts, err
	}

	file, header, err := r.FormFile("pdf")
	if err != nil {
		s.writeErrorResponse(w, "No PDF file provided", http.StatusBadRequest)
		return nil, opts, err
	}
	defer func() { _ = file.Close() }()

	uploadSizeBytes.Observe(float64(header.Size))

	pdfBytes, err := io.ReadAll(file)
	if err != nil {
		s.writeErrorResponse(w, "Failed to read upload", http.StatusBadRequest)
		return nil, opts, err
	}

	strategy, err := pipeline.ParseStrategy(r.FormValue("strategy"))
	if err != nil {
		s.writeErrorResponse(w, err.Error(), http.StatusBadRequest)
		return nil, opts, err
	}
	opts.Strategy = strategy
	opts.Language = r.FormValue("language")

	if dpiStr := r.FormValue("dpi"); dpiStr != "" {
		dpi, err := strconv.Atoi(dpiStr)
		if err != nil || dpi <= 0 {
			s.writeErrorResponse(w, "Invalid dpi value", http.StatusBadRequest)
			return nil, opts, fmt.Errorf("invalid dpi %q", dpiStr)
		}
		opts.DPI = dpi
	}

	return pdfBytes, opts, nil
}

func (s *Server) writeErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	resp := ExtractResponse{Success: false, Error: message}
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		slog.Error("Failed to encode error response", "error", err)
	}
}

// Package handlers exposes the ecgcore pipeline over HTTP.
package handlers

import (
	"encoding/json"
	"log"
	"net/http"

	"github.com/kacperjurak/ecgcore"
	"github.com/kacperjurak/ecgcore/internal/config"
	"github.com/kacperjurak/ecgcore/internal/utils"
	"github.com/kacperjurak/ecgcore/pkg/models"
	"github.com/kacperjurak/ecgcore/pkg/profiling"
)

// AnalyzeHandler handles single-recording analysis requests.
type AnalyzeHandler struct {
	config *config.Config
}

// NewAnalyzeHandler creates a new single-recording handler.
func NewAnalyzeHandler(cfg *config.Config) *AnalyzeHandler {
	return &AnalyzeHandler{config: cfg}
}

func (h *AnalyzeHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setupCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var payload models.RecordingPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(payload.Samples) == 0 {
		writeError(w, "No samples provided", http.StatusBadRequest)
		return
	}

	requestID := utils.GenerateRequestID()

	fs := payload.Fs
	if fs <= 0 {
		fs = h.config.Fs
	}

	if !h.config.Quiet {
		log.Printf("HTTP request received - ID: %s, samples: %d, fs: %.1f", requestID, len(payload.Samples), fs)
	}

	if stats := profiling.StatsFromContext(r.Context()); stats != nil {
		stats.NumSamples = len(payload.Samples)
	}

	result, err := ecgcore.Analyze(payload.Samples, fs, ecgcore.Options{Verbose: h.config.Verbose})
	if err != nil {
		writeError(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	if stats := profiling.StatsFromContext(r.Context()); stats != nil {
		stats.RPeaks = len(result.RPeakIndices)
		stats.RhythmStatus = result.RhythmStatus
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"request_id": requestID,
		"result":     result,
	})
}

func setupCORS(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
}

func writeError(w http.ResponseWriter, message string, statusCode int) {
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

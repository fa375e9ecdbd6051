package handlers

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/kacperjurak/ecgcore"
	"github.com/kacperjurak/ecgcore/internal/batch"
	"github.com/kacperjurak/ecgcore/internal/config"
	"github.com/kacperjurak/ecgcore/internal/utils"
	"github.com/kacperjurak/ecgcore/pkg/models"
	"github.com/kacperjurak/ecgcore/pkg/profiling"
)

// BatchHandler handles batch recording analysis requests, fanning
// work out across a shared worker pool.
type BatchHandler struct {
	config     *config.Config
	workerPool *batch.Pool
}

// NewBatchHandler creates a new batch handler.
func NewBatchHandler(cfg *config.Config, pool *batch.Pool) *BatchHandler {
	return &BatchHandler{config: cfg, workerPool: pool}
}

func (h *BatchHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	setupCORS(w)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusOK)
		return
	}
	if r.Method != http.MethodPost {
		writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var recordingBatch models.RecordingBatch
	if err := json.NewDecoder(r.Body).Decode(&recordingBatch); err != nil {
		writeError(w, "Invalid JSON format", http.StatusBadRequest)
		return
	}
	if len(recordingBatch.Recordings) == 0 {
		writeError(w, "No recordings provided in batch", http.StatusBadRequest)
		return
	}

	log.Printf("batch processing started - ID: %s, recordings: %d", recordingBatch.BatchID, len(recordingBatch.Recordings))

	if stats := profiling.StatsFromContext(r.Context()); stats != nil {
		total := 0
		for _, item := range recordingBatch.Recordings {
			total += len(item.Recording.Samples)
		}
		stats.NumSamples = total
	}

	go h.processBatchAsync(recordingBatch)

	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"success":    true,
		"batch_id":   recordingBatch.BatchID,
		"recordings": len(recordingBatch.Recordings),
		"message":    "Batch processing started with worker pool",
	})
}

func (h *BatchHandler) processBatchAsync(recordingBatch models.RecordingBatch) {
	batchStartTime := time.Now()
	timings := make([]models.RecordingTiming, len(recordingBatch.Recordings))
	resultsReceived := 0

	for _, item := range recordingBatch.Recordings {
		fs := item.Recording.Fs
		if fs <= 0 {
			fs = h.config.Fs
		}
		h.workerPool.SubmitJob(models.WorkItem{
			ID:        item.Iteration,
			RequestID: utils.GenerateRequestID(),
			BatchID:   recordingBatch.BatchID,
			Iteration: item.Iteration,
			Samples:   item.Recording.Samples,
			Fs:        fs,
			Opts:      ecgcore.Options{Verbose: h.config.Verbose},
			StartTime: time.Now(),
		})
	}

	for resultsReceived < len(recordingBatch.Recordings) {
		if result, ok := h.workerPool.GetResult(); ok {
			h.processResult(result, timings)
			resultsReceived++
		} else {
			time.Sleep(1 * time.Millisecond)
		}
	}

	totalBatchTime := time.Since(batchStartTime)
	h.saveTimingResults(recordingBatch.BatchID, totalBatchTime, timings)

	log.Printf("batch processing completed - ID: %s, total time: %v", recordingBatch.BatchID, totalBatchTime)
}

func (h *BatchHandler) processResult(result models.WorkResult, timings []models.RecordingTiming) {
	timings[result.Iteration] = models.RecordingTiming{
		Iteration:      result.Iteration,
		ProcessingTime: result.ProcessingTime,
		NumPeaks:       result.Result.DetectionMetrics.NumPeaks,
		Success:        result.Success,
		RhythmStatus:   result.Result.RhythmStatus,
	}

	h.workerPool.QueueWebhook(models.WebhookItem{
		RequestID:    fmt.Sprintf("%s_iter_%03d", result.RequestID, result.Iteration),
		BatchID:      result.BatchID,
		Iteration:    result.Iteration,
		RhythmStatus: result.Result.RhythmStatus,
		AvgBPM:       result.Result.DetectionMetrics.AvgBPM,
		Warnings:     result.Result.ClinicalWarnings,
	})

	if !h.config.Quiet {
		log.Printf("processed recording iteration %d", result.Iteration)
	}
}

// saveTimingResults appends per-batch performance data to a CSV file
// for offline throughput analysis.
func (h *BatchHandler) saveTimingResults(batchID string, totalTime time.Duration, timings []models.RecordingTiming) {
	filename := "batch_timing_results.csv"

	var writeHeader bool
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		writeHeader = true
	}

	file, err := os.OpenFile(filename, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("error opening timing file: %v", err)
		return
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if writeHeader {
		header := []string{
			"Timestamp", "BatchID", "TotalRecordings", "TotalBatchTime_ms",
			"AvgRecordingTime_ms", "SuccessRate", "RecordingsPerSecond",
		}
		if err := writer.Write(header); err != nil {
			log.Printf("error writing timing header: %v", err)
			return
		}
	}

	var totalRecordingTime time.Duration
	var successful int
	for _, t := range timings {
		totalRecordingTime += t.ProcessingTime
		if t.Success {
			successful++
		}
	}

	numRecordings := len(timings)
	avgRecordingTime := totalRecordingTime / time.Duration(numRecordings)
	successRate := float64(successful) / float64(numRecordings) * 100
	recordingsPerSecond := float64(numRecordings) / totalTime.Seconds()

	record := []string{
		time.Now().Format(time.RFC3339),
		batchID,
		fmt.Sprintf("%d", numRecordings),
		fmt.Sprintf("%.2f", float64(totalTime.Nanoseconds())/1000000.0),
		fmt.Sprintf("%.2f", float64(avgRecordingTime.Nanoseconds())/1000000.0),
		fmt.Sprintf("%.1f", successRate),
		fmt.Sprintf("%.2f", recordingsPerSecond),
	}

	if err := writer.Write(record); err != nil {
		log.Printf("error writing timing record: %v", err)
		return
	}

	log.Printf("timing saved: %d recordings, %.2f ms total, %.2f%% success",
		numRecordings, float64(totalTime.Nanoseconds())/1000000.0, successRate)
}

// Package models holds the wire and work-queue shapes that sit
// between the HTTP surface and the ecgcore analysis pipeline.
package models

import (
	"time"

	"github.com/kacperjurak/ecgcore"
)

// RecordingPayload is a single uniformly-sampled ECG recording as
// received over HTTP.
type RecordingPayload struct {
	Timestamp string    `json:"timestamp"`
	Fs        float64   `json:"fs"`
	Samples   []float64 `json:"samples"`
}

// BatchItem pairs a recording with its position in a submitted batch.
type BatchItem struct {
	Recording RecordingPayload `json:"recording"`
	Iteration int              `json:"iteration"`
}

// RecordingBatch represents a batch of ECG recordings submitted for
// concurrent analysis.
type RecordingBatch struct {
	BatchID    string      `json:"batch_id"`
	Timestamp  time.Time   `json:"timestamp"`
	Recordings []BatchItem `json:"recordings"`
}

// WorkItem represents a single analysis task queued to the worker pool.
type WorkItem struct {
	ID        int
	RequestID string
	BatchID   string
	Iteration int
	Samples   []float64
	Fs        float64
	Opts      ecgcore.Options
	StartTime time.Time
}

// WorkResult contains the result of one queued analysis task.
type WorkResult struct {
	ID             int
	RequestID      string
	BatchID        string
	Iteration      int
	Result         ecgcore.AnalysisResult
	ProcessingTime time.Duration
	Success        bool
}

// WebhookItem represents a completed analysis queued for async
// notification.
type WebhookItem struct {
	RequestID    string
	BatchID      string
	Iteration    int
	RhythmStatus string
	AvgBPM       float64
	Warnings     []string
}

// WebhookResponse is the JSON payload posted to the configured webhook
// URL.
type WebhookResponse struct {
	ID           string   `json:"id"`
	Time         string   `json:"time"`
	BatchID      string   `json:"batch_id,omitempty"`
	Iteration    int      `json:"iteration,omitempty"`
	RhythmStatus string   `json:"rhythm_status"`
	AvgBPM       float64  `json:"avg_bpm"`
	Warnings     []string `json:"warnings,omitempty"`
}

// RecordingTiming tracks performance metrics for a single recording's
// analysis within a batch.
type RecordingTiming struct {
	Iteration      int           `json:"iteration"`
	ProcessingTime time.Duration `json:"processing_time_ns"`
	NumPeaks       int           `json:"num_peaks"`
	Success        bool          `json:"success"`
	RhythmStatus   string        `json:"rhythm_status"`
}

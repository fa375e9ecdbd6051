package profiling

import (
	"context"
	"net/http"
	"runtime"
	"strconv"
	"time"
)

// Middleware times analyze/analyze-batch requests and, when enabled,
// surfaces both generic runtime counters and the handler's own
// analysis stats (samples in, R-peaks found, rhythm label) as response
// headers.
type Middleware struct {
	enableProfiling bool
}

// NewMiddleware creates a new profiling middleware
func NewMiddleware(enableProfiling bool) *Middleware {
	return &Middleware{
		enableProfiling: enableProfiling,
	}
}

type analysisStatsKey struct{}

// AnalysisStats is attached to a request's context by ProfiledHandler
// and filled in by the wrapped handler as it learns the outcome of the
// analysis; the middleware reports it as response headers once the
// handler returns.
type AnalysisStats struct {
	NumSamples   int
	RPeaks       int
	RhythmStatus string
}

// StatsFromContext returns the AnalysisStats attached to ctx by
// ProfiledHandler, or nil if the request wasn't wrapped (profiling
// disabled, or handler invoked outside the middleware).
func StatsFromContext(ctx context.Context) *AnalysisStats {
	stats, _ := ctx.Value(analysisStatsKey{}).(*AnalysisStats)
	return stats
}

// ProfiledHandler wraps an HTTP handler with request timing and
// ECG-specific result reporting.
func (m *Middleware) ProfiledHandler(name string, handler http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !m.enableProfiling {
			handler.ServeHTTP(w, r)
			return
		}

		// Capture initial state
		startTime := time.Now()
		var startMemStats runtime.MemStats
		runtime.ReadMemStats(&startMemStats)
		startGoroutines := runtime.NumGoroutine()

		// Add profiling headers
		w.Header().Set("X-Profiling-Enabled", "true")
		w.Header().Set("X-Handler-Name", name)
		w.Header().Set("X-Start-Time", startTime.Format(time.RFC3339Nano))
		w.Header().Set("X-Start-Goroutines", strconv.Itoa(startGoroutines))

		// Wrap response writer to capture status
		wrapped := &responseWriter{
			ResponseWriter: w,
			statusCode:     200,
		}

		stats := &AnalysisStats{}
		ctx := context.WithValue(r.Context(), analysisStatsKey{}, stats)

		// Execute handler
		handler.ServeHTTP(wrapped, r.WithContext(ctx))

		// Capture final state
		endTime := time.Now()
		var endMemStats runtime.MemStats
		runtime.ReadMemStats(&endMemStats)
		endGoroutines := runtime.NumGoroutine()

		// Calculate metrics
		duration := endTime.Sub(startTime)
		memoryDelta := int64(endMemStats.Alloc) - int64(startMemStats.Alloc)
		goroutineDelta := endGoroutines - startGoroutines

		// Add performance headers
		wrapped.Header().Set("X-Duration-Ms", strconv.FormatFloat(float64(duration.Nanoseconds())/1000000.0, 'f', 3, 64))
		wrapped.Header().Set("X-Memory-Delta-Bytes", strconv.FormatInt(memoryDelta, 10))
		wrapped.Header().Set("X-Goroutine-Delta", strconv.Itoa(goroutineDelta))
		wrapped.Header().Set("X-End-Goroutines", strconv.Itoa(endGoroutines))
		wrapped.Header().Set("X-Status-Code", strconv.Itoa(wrapped.statusCode))

		// Add the handler's own analysis result, if it populated one.
		wrapped.Header().Set("X-ECG-Samples", strconv.Itoa(stats.NumSamples))
		wrapped.Header().Set("X-ECG-RPeaks", strconv.Itoa(stats.RPeaks))
		if stats.RhythmStatus != "" {
			wrapped.Header().Set("X-ECG-Rhythm-Status", stats.RhythmStatus)
		}
		wrapped.Header().Set("X-Profiling-Complete", "true")
	})
}

// ProfiledHandlerFunc wraps an HTTP handler function with profiling capabilities
func (m *Middleware) ProfiledHandlerFunc(name string, handlerFunc http.HandlerFunc) http.Handler {
	return m.ProfiledHandler(name, handlerFunc)
}

// responseWriter wraps http.ResponseWriter to capture the status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}

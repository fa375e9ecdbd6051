// Command ecganalyze runs the ecgcore pipeline over a single
// plain-text sample file and prints the resulting metrics.
package main

import (
	"bufio"
	"flag"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/kacperjurak/ecgcore"
)

func main() {
	file := flag.String("f", "ecg.txt", "Sample data file, one voltage sample per line")
	fs := flag.Float64("fs", 250.0, "Sample rate in Hz")
	verbose := flag.Bool("v", false, "Verbose logging")
	httpServer := flag.Bool("http", false, "Not supported here: exits with a pointer to cmd/ecgserver")
	flag.Parse()

	if *httpServer {
		log.Fatal("use cmd/ecgserver to start the HTTP server")
	}

	samples := parseFile(*file)
	result, err := ecgcore.Analyze(samples, *fs, ecgcore.Options{Verbose: *verbose})
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	log.Printf("Samples: %d, R-peaks: %d, avg BPM: %.1f", result.NumSamples, len(result.RPeakIndices), result.DetectionMetrics.AvgBPM)
	log.Printf("Rhythm: %s", result.RhythmStatus)
	log.Printf("QRS: %.1fms (%s)", result.QRSMetrics.MeanQRSMs, result.QRSMetrics.Interpretation)
	log.Printf("QTc (Bazett): %.1fms (%s)", result.QTMetrics.MeanQTcBazettMs, result.QTMetrics.Interpretation)
	log.Printf("HRV: SDNN=%.1fms RMSSD=%.1fms pNN50=%.1f%% (%s)", result.HRVMetrics.SDNNMs, result.HRVMetrics.RMSSDMs, result.HRVMetrics.PNN50, result.HRVMetrics.Interpretation)
	if len(result.ClinicalWarnings) > 0 {
		log.Printf("Warnings: %v", result.ClinicalWarnings)
	}
}

// parseFile reads one float64 sample per line, tolerating a leading
// timestamp/index column separated by whitespace (only the last field
// is used as the voltage sample).
func parseFile(path string) []float64 {
	f, err := os.Open(path)
	if err != nil {
		log.Fatal(err)
	}
	defer f.Close()

	var samples []float64
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		fields := strings.Fields(line)
		val, err := strconv.ParseFloat(fields[len(fields)-1], 64)
		if err != nil {
			log.Fatal(err)
		}
		samples = append(samples, val)
	}
	if err := scanner.Err(); err != nil {
		log.Fatal(err)
	}
	return samples
}

// Package webhook delivers completed analysis notifications to an
// optional external URL.
package webhook

import (
	"bytes"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/kacperjurak/ecgcore/internal/config"
	"github.com/kacperjurak/ecgcore/pkg/models"
	"github.com/kacperjurak/ecgcore/pkg/profiling"
)

// Client posts analysis results to a webhook URL over a pooled HTTP
// connection.
type Client struct {
	url        string
	httpClient *http.Client
	config     *config.Config
	bufferPool sync.Pool
}

// NewClient creates a new webhook client with pooled connections. If
// url is empty, Send is a no-op.
func NewClient(url string, cfg *config.Config) *Client {
	transport := &http.Transport{
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 20,
		IdleConnTimeout:     90 * time.Second,

		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,

		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: false,
		},

		ResponseHeaderTimeout: 30 * time.Second,
		DisableCompression:    true,
		ForceAttemptHTTP2:     false,
	}

	return &Client{
		url:    url,
		config: cfg,
		httpClient: &http.Client{
			Timeout:   45 * time.Second,
			Transport: transport,
		},
		bufferPool: sync.Pool{
			New: func() interface{} {
				return bytes.NewBuffer(make([]byte, 0, 1024))
			},
		},
	}
}

// Send posts one webhook payload. It is a no-op when no URL was
// configured.
func (c *Client) Send(item models.WebhookItem) error {
	if c.url == "" {
		return nil
	}

	payload := models.WebhookResponse{
		ID:           item.RequestID,
		Time:         time.Now().Format(time.RFC3339Nano),
		BatchID:      item.BatchID,
		Iteration:    item.Iteration,
		RhythmStatus: item.RhythmStatus,
		AvgBPM:       item.AvgBPM,
		Warnings:     item.Warnings,
	}

	var wp *profiling.WebhookProfiler
	if c.config.EnableProfiling {
		wp = profiling.NewWebhookProfiler(item.RequestID)
	}

	buf := c.bufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	defer c.bufferPool.Put(buf)

	if err := json.NewEncoder(buf).Encode(payload); err != nil {
		if wp != nil {
			wp.Finish(false)
		}
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	if !c.config.Quiet {
		log.Printf("DEBUG: webhook payload - rhythm: %s, avg BPM: %.1f", payload.RhythmStatus, payload.AvgBPM)
	}

	resp, err := c.httpClient.Post(c.url, "application/json", bytes.NewReader(buf.Bytes()))
	if err != nil {
		if wp != nil {
			wp.Finish(false)
		}
		return fmt.Errorf("failed to send webhook: %w", err)
	}
	defer resp.Body.Close()

	if !c.config.Quiet {
		log.Printf("Webhook sent - ID: %s, rhythm: %s, status: %d", item.RequestID, item.RhythmStatus, resp.StatusCode)
	}

	if resp.StatusCode >= 400 {
		if wp != nil {
			wp.Finish(false)
		}
		return fmt.Errorf("webhook request failed with status %d", resp.StatusCode)
	}
	if wp != nil {
		wp.Finish(true)
	}
	return nil
}

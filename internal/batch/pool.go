// Package batch fans a slice of independent ECG recordings out across
// a fixed-size worker pool of ecgcore.Analyze calls.
package batch

import (
	"log"
	"sync"
	"time"

	"github.com/kacperjurak/ecgcore"
	"github.com/kacperjurak/ecgcore/pkg/models"
	"github.com/kacperjurak/ecgcore/pkg/profiling"
)

// Pool manages concurrent recording analysis workers.
type Pool struct {
	jobs         chan models.WorkItem
	results      chan models.WorkResult
	webhookQueue chan models.WebhookItem
	workers      int
	profile      bool
	shutdown     chan struct{}
	wg           sync.WaitGroup
	onWebhook    func(models.WebhookItem)
}

// Options holds configuration for creating a new worker pool.
type Options struct {
	Workers      int
	OnWebhook    func(models.WebhookItem)
	LogWorkStats bool
}

// New creates a new worker pool with the given configuration.
func New(opts Options) *Pool {
	if opts.Workers <= 0 {
		opts.Workers = 5
	}

	pool := &Pool{
		jobs:         make(chan models.WorkItem, opts.Workers*2),
		results:      make(chan models.WorkResult, opts.Workers*2),
		webhookQueue: make(chan models.WebhookItem, opts.Workers*4),
		workers:      opts.Workers,
		profile:      opts.LogWorkStats,
		shutdown:     make(chan struct{}),
		onWebhook:    opts.OnWebhook,
	}

	pool.start()
	return pool
}

func (p *Pool) start() {
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	p.wg.Add(1)
	go p.webhookProcessor()

	log.Printf("worker pool started with %d workers", p.workers)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()

	for {
		select {
		case job := <-p.jobs:
			result := p.processJob(id, job)
			p.results <- result

		case <-p.shutdown:
			return
		}
	}
}

// processJob runs Analyze for one queued recording. Each call owns its
// own scratch buffers for the duration of the call (see Analyze); there
// is nothing here for a worker to cache across jobs.
func (p *Pool) processJob(id int, job models.WorkItem) models.WorkResult {
	var wp *profiling.WorkerProfiler
	if p.profile {
		wp = profiling.NewWorkerProfiler(id, "analyze_"+job.RequestID)
	}

	startTime := time.Now()
	result, err := ecgcore.Analyze(job.Samples, job.Fs, job.Opts)
	processingTime := time.Since(startTime)

	if wp != nil {
		wp.Finish()
	}

	if err != nil {
		log.Printf("analysis failed for request %s: %v", job.RequestID, err)
		return models.WorkResult{
			ID:             job.ID,
			RequestID:      job.RequestID,
			BatchID:        job.BatchID,
			Iteration:      job.Iteration,
			ProcessingTime: processingTime,
			Success:        false,
		}
	}

	return models.WorkResult{
		ID:             job.ID,
		RequestID:      job.RequestID,
		BatchID:        job.BatchID,
		Iteration:      job.Iteration,
		Result:         result,
		ProcessingTime: processingTime,
		Success:        true,
	}
}

func (p *Pool) webhookProcessor() {
	defer p.wg.Done()

	for {
		select {
		case item := <-p.webhookQueue:
			if p.onWebhook != nil {
				go p.onWebhook(item)
			}

		case <-p.shutdown:
			return
		}
	}
}

// SubmitJob submits a job to the worker pool, blocking if the queue is
// full.
func (p *Pool) SubmitJob(job models.WorkItem) {
	select {
	case p.jobs <- job:
	default:
		log.Printf("worker pool jobs channel full, job may be delayed")
		p.jobs <- job
	}
}

// GetResult retrieves a result from the worker pool, non-blocking.
func (p *Pool) GetResult() (models.WorkResult, bool) {
	select {
	case result := <-p.results:
		return result, true
	default:
		return models.WorkResult{}, false
	}
}

// QueueWebhook queues a webhook notification for async delivery.
func (p *Pool) QueueWebhook(item models.WebhookItem) {
	select {
	case p.webhookQueue <- item:
	default:
		log.Printf("webhook queue full, dropping notification for %s", item.RequestID)
	}
}

// QueueDepth returns the number of jobs currently queued, waiting for
// a free worker.
func (p *Pool) QueueDepth() int {
	return len(p.jobs)
}

// QueueCapacity returns the job queue's buffer size.
func (p *Pool) QueueCapacity() int {
	return cap(p.jobs)
}

// WorkerCount returns the number of worker goroutines in the pool.
func (p *Pool) WorkerCount() int {
	return p.workers
}

// Shutdown gracefully shuts down the worker pool.
func (p *Pool) Shutdown() {
	log.Printf("shutting down worker pool...")
	close(p.shutdown)
	p.wg.Wait()
	log.Printf("worker pool shutdown complete")
}

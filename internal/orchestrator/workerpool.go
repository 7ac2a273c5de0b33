package orchestrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

// Job is a unit of work the pool dispatches to a worker: one Batch, probed
// through a worker-owned HTTP session.
type Job interface {
	Execute(ctx context.Context) Result
	ID() string
}

// Result is the outcome of one Job.
type Result interface {
	JobID() string
	Error() error
	Duration() time.Duration
}

// Pool is a bounded worker pool, one worker per unit of degreeOfParallelism
// (spec.md §4.7 step 3, §5). Workers are long-lived goroutines draining a
// shared job channel; each worker constructs and owns its own HTTP session
// for the batch it is given, never sharing a cookie jar with a peer.
type Pool struct {
	workers int
	jobs    chan Job
	results chan Result
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	log     logging.Logger

	mu      sync.RWMutex
	running bool
}

// NewPool creates a worker pool with the given concurrency and job buffer.
func NewPool(ctx context.Context, workers, bufferSize int, log logging.Logger) *Pool {
	if workers <= 0 {
		workers = 8
	}
	if bufferSize <= 0 {
		bufferSize = workers * 2
	}

	poolCtx, cancel := context.WithCancel(ctx)
	return &Pool{
		workers: workers,
		jobs:    make(chan Job, bufferSize),
		results: make(chan Result, bufferSize),
		ctx:     poolCtx,
		cancel:  cancel,
		log:     log,
	}
}

// Start launches the worker goroutines.
func (p *Pool) Start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}
	p.running = true

	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}
}

// Submit enqueues a job. Blocks if the queue is full, giving the
// backpressure spec.md §5 requires of producers.
func (p *Pool) Submit(job Job) error {
	select {
	case p.jobs <- job:
		return nil
	case <-p.ctx.Done():
		return fmt.Errorf("worker pool shutting down")
	}
}

// Results returns the channel of completed job results.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// Cancel propagates a one-shot cancellation to every worker: each finishes
// the HTTP call it is in, does not start another, and queued jobs are
// discarded (spec.md §5 cancellation semantics).
func (p *Pool) Cancel() {
	p.cancel()
}

// CloseAndWait closes the job queue, waits for in-flight jobs to finish,
// and closes the results channel.
func (p *Pool) CloseAndWait() {
	close(p.jobs)
	p.wg.Wait()
	close(p.results)
}

func (p *Pool) worker(id int) {
	defer p.wg.Done()
	workerLog := p.log.With(logging.Int("worker_id", id))

	for {
		select {
		case job, ok := <-p.jobs:
			if !ok {
				return
			}
			p.runJob(workerLog, job)
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) runJob(log logging.Logger, job Job) {
	start := time.Now()
	result := func() (result Result) {
		defer func() {
			if r := recover(); r != nil {
				log.Error("job panicked", logging.String("job_id", job.ID()), logging.Any("panic", r))
				result = panicResult{jobID: job.ID(), err: fmt.Errorf("job panicked: %v", r), duration: time.Since(start)}
			}
		}()
		return job.Execute(p.ctx)
	}()

	select {
	case p.results <- result:
	case <-p.ctx.Done():
		log.Debug("dropping result on shutdown", logging.String("job_id", job.ID()))
	}
}

type panicResult struct {
	jobID    string
	err      error
	duration time.Duration
}

func (r panicResult) JobID() string        { return r.jobID }
func (r panicResult) Error() error         { return r.err }
func (r panicResult) Duration() time.Duration { return r.duration }

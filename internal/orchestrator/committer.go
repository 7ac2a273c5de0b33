package orchestrator

import (
	"context"
	"time"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

// CommitterBufferSize is the bound on the committer's inbound channel;
// workers block once it fills (spec.md §5 backpressure).
const CommitterBufferSize = 1000

// flushBatchSize and flushInterval are the two triggers spec.md §4.7 step 4
// names for the shared append buffer: 200 rows or 10 seconds, whichever
// comes first.
const (
	flushBatchSize = 200
	flushInterval  = 10 * time.Second
)

// Committer is the single writer to AvailabilityRepository: every probe
// result from every worker funnels through its channel into one owner of
// the database connection used for appends (spec.md §5).
type Committer struct {
	repo   domain.AvailabilityRepository
	log    logging.Logger
	rows   chan domain.AvailabilityResult
	done   chan struct{}
}

// NewCommitter creates a Committer. Call Run in its own goroutine, then
// Send rows to it and Close when done.
func NewCommitter(repo domain.AvailabilityRepository, log logging.Logger) *Committer {
	return &Committer{
		repo: repo,
		log:  log,
		rows: make(chan domain.AvailabilityResult, CommitterBufferSize),
		done: make(chan struct{}),
	}
}

// Send enqueues one row, blocking if the buffer is full.
func (c *Committer) Send(row domain.AvailabilityResult) {
	c.rows <- row
}

// Close signals no more rows will be sent and waits for the final flush.
func (c *Committer) Close() {
	close(c.rows)
	<-c.done
}

// Run drains the row channel, flushing to the repository every
// flushBatchSize rows or flushInterval, whichever comes first. Intended to
// run in its own goroutine for the lifetime of one sweep.
func (c *Committer) Run(ctx context.Context) {
	defer close(c.done)

	ticker := time.NewTicker(flushInterval)
	defer ticker.Stop()

	buf := make([]domain.AvailabilityResult, 0, flushBatchSize)

	flush := func() {
		if len(buf) == 0 {
			return
		}
		if err := c.repo.AppendBatch(ctx, buf); err != nil {
			c.log.Error("failed to commit availability batch", logging.Int("rows", len(buf)), logging.Error(err))
		}
		buf = buf[:0]
	}

	for {
		select {
		case row, ok := <-c.rows:
			if !ok {
				flush()
				return
			}
			buf = append(buf, row)
			if len(buf) >= flushBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-ctx.Done():
			flush()
			return
		}
	}
}

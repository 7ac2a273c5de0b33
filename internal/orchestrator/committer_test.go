package orchestrator

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
	"github.com/adeco-retail/vtexwatch/pkg/testutil"
)

type fakeAvailabilityRepo struct {
	mu      sync.Mutex
	batches [][]domain.AvailabilityResult
	err     error
}

func (r *fakeAvailabilityRepo) AppendBatch(ctx context.Context, rows []domain.AvailabilityResult) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	batch := make([]domain.AvailabilityResult, len(rows))
	copy(batch, rows)
	r.batches = append(r.batches, batch)
	return r.err
}

func (r *fakeAvailabilityRepo) totalRows() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, b := range r.batches {
		n += len(b)
	}
	return n
}

func newTestCommitter(t *testing.T, repo domain.AvailabilityRepository) *Committer {
	t.Helper()
	log, err := logging.NewDevelopmentLogger()
	assert.NoError(t, err)
	return NewCommitter(repo, log)
}

func TestCommitter_FlushesOnClose(t *testing.T) {
	repo := &fakeAvailabilityRepo{}
	c := newTestCommitter(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	for i := 0; i < 5; i++ {
		c.Send(domain.AvailabilityResult{StoreID: int64(i)})
	}
	c.Close()

	assert.Equal(t, 5, repo.totalRows())
}

func TestCommitter_FlushesAtBatchSizeWithoutWaitingForClose(t *testing.T) {
	repo := &fakeAvailabilityRepo{}
	c := newTestCommitter(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	for i := 0; i < flushBatchSize; i++ {
		c.Send(domain.AvailabilityResult{StoreID: int64(i)})
	}

	assert.Eventually(t, func() bool {
		return repo.totalRows() == flushBatchSize
	}, time.Second, 10*time.Millisecond)

	c.Close()
}

func TestCommitter_FlushesOnContextCancellation(t *testing.T) {
	repo := &fakeAvailabilityRepo{}
	c := newTestCommitter(t, repo)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		c.Run(ctx)
		close(done)
	}()

	c.Send(domain.AvailabilityResult{StoreID: 1})
	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after context cancellation")
	}
	assert.Equal(t, 1, repo.totalRows())
}

func TestCommitter_LogsErrorOnFailedFlush(t *testing.T) {
	repo := &fakeAvailabilityRepo{err: assertErr()}
	log := testutil.NewLoggingMockLogger()
	c := NewCommitter(repo, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go c.Run(ctx)

	c.Send(domain.AvailabilityResult{StoreID: 1})
	c.Close()

	assert.Len(t, log.ErrMsg, 1)
	assert.Contains(t, log.ErrMsg[0], "failed to commit availability batch")
}

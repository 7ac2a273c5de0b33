package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

type fakeJob struct {
	id      string
	err     error
	panic   bool
	started chan struct{}
}

func (j *fakeJob) ID() string { return j.id }

func (j *fakeJob) Execute(ctx context.Context) Result {
	if j.started != nil {
		close(j.started)
	}
	if j.panic {
		panic("boom")
	}
	return simpleResult{jobID: j.id, err: j.err}
}

func newTestPool(t *testing.T, workers, buffer int) *Pool {
	t.Helper()
	log, err := logging.NewDevelopmentLogger()
	assert.NoError(t, err)
	return NewPool(context.Background(), workers, buffer, log)
}

func TestPool_RunsJobsAndReportsResults(t *testing.T) {
	pool := newTestPool(t, 2, 4)
	pool.Start()

	for i := 0; i < 3; i++ {
		assert.NoError(t, pool.Submit(&fakeJob{id: "job"}))
	}
	pool.CloseAndWait()

	count := 0
	for range pool.Results() {
		count++
	}
	assert.Equal(t, 3, count)
}

func TestPool_RecoversFromPanickingJob(t *testing.T) {
	pool := newTestPool(t, 1, 2)
	pool.Start()

	assert.NoError(t, pool.Submit(&fakeJob{id: "panics", panic: true}))
	pool.CloseAndWait()

	results := drain(pool.Results())
	assert.Len(t, results, 1)
	assert.Error(t, results[0].Error())
}

func TestPool_PropagatesJobError(t *testing.T) {
	pool := newTestPool(t, 1, 2)
	pool.Start()

	wantErr := assertErr()
	assert.NoError(t, pool.Submit(&fakeJob{id: "fails", err: wantErr}))
	pool.CloseAndWait()

	results := drain(pool.Results())
	assert.Len(t, results, 1)
	assert.Equal(t, wantErr, results[0].Error())
}

func TestPool_CloseAndWaitReturnsAfterCancelDuringJob(t *testing.T) {
	pool := newTestPool(t, 1, 4)
	pool.Start()

	started := make(chan struct{})
	assert.NoError(t, pool.Submit(&fakeJob{id: "first", started: started}))
	<-started

	pool.Cancel()
	time.Sleep(20 * time.Millisecond)

	pool.CloseAndWait()
}

func TestNewPool_DefaultsInvalidWorkerCount(t *testing.T) {
	log, _ := logging.NewDevelopmentLogger()
	pool := NewPool(context.Background(), 0, 0, log)
	assert.Equal(t, 8, pool.workers)
	assert.Equal(t, 16, cap(pool.jobs))
}

func drain(results <-chan Result) []Result {
	var out []Result
	for r := range results {
		out = append(out, r)
	}
	return out
}

type genericTestErr struct{ msg string }

func (e genericTestErr) Error() string { return e.msg }

func assertErr() error { return genericTestErr{msg: "simulated failure"} }

// Package orchestrator is the Availability Orchestrator: the concurrency
// engine that expands tracked work into (store, SKU, seller) units,
// batches them by store, dispatches them through a bounded worker pool,
// and commits results in chunks.
package orchestrator

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/platform"
	"github.com/adeco-retail/vtexwatch/internal/prober"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
	"github.com/adeco-retail/vtexwatch/pkg/ratelimit"
	"github.com/adeco-retail/vtexwatch/pkg/rules"
)

// SessionFactory builds a fresh, unshared HTTP session for one worker's
// batch, per spec.md §5's "not shared across workers" rule.
type SessionFactory func(host string) (*platform.Session, error)

// Orchestrator runs the Availability Orchestrator for a single retailer.
type Orchestrator struct {
	work         domain.WorkRepository
	availability domain.AvailabilityRepository
	sweeps       domain.SweepLogRepository
	newSession   SessionFactory
	pacer        ratelimit.Limiter
	rules        *rules.RuleSet
	log          logging.Logger
	country      string
}

// New wires an Orchestrator. pacer paces request issuance per host ahead
// of the transport-level retry policy; rules may be nil.
func New(
	work domain.WorkRepository,
	availability domain.AvailabilityRepository,
	sweeps domain.SweepLogRepository,
	newSession SessionFactory,
	pacer ratelimit.Limiter,
	ruleSet *rules.RuleSet,
	log logging.Logger,
) *Orchestrator {
	return &Orchestrator{
		work:         work,
		availability: availability,
		sweeps:       sweeps,
		newSession:   newSession,
		pacer:        pacer,
		rules:        ruleSet,
		log:          log,
		country:      "AR",
	}
}

// ProbeEanList is spec.md §4.7's top-level operation, restricted to
// TrackedProduct.track = true (the EAN-filtered join).
func (o *Orchestrator) ProbeEanList(ctx context.Context, host string, minBatchSize, maxBatchSize, degreeOfParallelism int) error {
	return o.run(ctx, host, domain.SweepTypeProbe, minBatchSize, maxBatchSize, degreeOfParallelism, o.work.LoadEanWork)
}

// ProbeAll is the same operation without the EAN filter: every SKU known
// for the host with at least one seller.
func (o *Orchestrator) ProbeAll(ctx context.Context, host string, minBatchSize, maxBatchSize, degreeOfParallelism int) error {
	return o.run(ctx, host, domain.SweepTypeProbe, minBatchSize, maxBatchSize, degreeOfParallelism, o.work.LoadAllWork)
}

func (o *Orchestrator) run(
	ctx context.Context,
	host string,
	kind domain.SweepType,
	minBatchSize, maxBatchSize, degreeOfParallelism int,
	loadWork func(ctx context.Context, host string) ([]domain.WorkItem, error),
) error {
	sweep, err := o.sweeps.Open(ctx, host, kind)
	if err != nil {
		return fmt.Errorf("failed to open sweep log: %w", err)
	}

	runErr := o.runSweep(ctx, host, minBatchSize, maxBatchSize, degreeOfParallelism, loadWork)

	if runErr != nil {
		_ = o.sweeps.Close(ctx, sweep.ID, domain.SweepStatusFailed, runErr.Error())
		return runErr
	}
	_ = o.sweeps.Close(ctx, sweep.ID, domain.SweepStatusSuccess, "")
	return nil
}

func (o *Orchestrator) runSweep(
	ctx context.Context,
	host string,
	minBatchSize, maxBatchSize, degreeOfParallelism int,
	loadWork func(ctx context.Context, host string) ([]domain.WorkItem, error),
) error {
	work, err := loadWork(ctx, host)
	if err != nil {
		return fmt.Errorf("failed to load work set: %w", err)
	}
	if len(work) == 0 {
		return nil
	}

	batches := partition(work, minBatchSize, maxBatchSize)

	committer := NewCommitter(o.availability, o.log)
	committerCtx, cancelCommitter := context.WithCancel(ctx)
	defer cancelCommitter()
	go committer.Run(committerCtx)

	pool := NewPool(ctx, degreeOfParallelism, len(batches), o.log)
	pool.Start()

	go o.drainResults(pool)

	for _, batch := range batches {
		job := &batchJob{
			host:      host,
			batch:     batch,
			country:   o.country,
			newSession: o.newSession,
			pacer:     o.pacer,
			rules:     o.rules,
			committer: committer,
			log:       o.log,
		}
		if err := pool.Submit(job); err != nil {
			// Cooperative cancellation or shutdown: stop dispatching, let
			// what is already queued drain.
			break
		}
	}

	pool.CloseAndWait()
	committer.Close()

	return nil
}

func (o *Orchestrator) drainResults(pool *Pool) {
	for result := range pool.Results() {
		if err := result.Error(); err != nil {
			o.log.Warn("batch job failed", logging.String("job_id", result.JobID()), logging.Error(err))
		}
	}
}

// batchJob probes every work item in one store-homogeneous batch using one
// freshly constructed HTTP session, sending each resulting row to the
// shared committer.
type batchJob struct {
	host       string
	batch      Batch
	country    string
	newSession SessionFactory
	pacer      ratelimit.Limiter
	rules      *rules.RuleSet
	committer  *Committer
	log        logging.Logger
}

func (j *batchJob) ID() string {
	return fmt.Sprintf("store-%d-%d-items", j.batch.StoreID, len(j.batch.Items))
}

func (j *batchJob) Execute(ctx context.Context) Result {
	start := time.Now()

	session, err := j.newSession(j.host)
	if err != nil {
		return simpleResult{jobID: j.ID(), err: fmt.Errorf("failed to create session: %w", err), duration: time.Since(start)}
	}
	session.WarmUp(ctx)

	client := platform.NewClient(session, nil)
	p := prober.New(client, j.rules)

	for _, item := range j.batch.Items {
		select {
		case <-ctx.Done():
			return simpleResult{jobID: j.ID(), err: ctx.Err(), duration: time.Since(start)}
		default:
		}

		j.paceRequest(ctx)

		outcome := p.ProbePickup(ctx, j.host, item.SalesChannel, item.SkuItemID, item.SellerID, item.PickupPointID, j.country, item.PostalCode)
		row := toAvailabilityResult(item, outcome)
		j.committer.Send(row)
	}

	return simpleResult{jobID: j.ID(), duration: time.Since(start)}
}

func (j *batchJob) paceRequest(ctx context.Context) {
	if j.pacer == nil {
		return
	}
	for {
		allowed, err := j.pacer.Allow(ctx, j.host)
		if err != nil || allowed {
			return
		}
		select {
		case <-time.After(50 * time.Millisecond):
		case <-ctx.Done():
			return
		}
	}
}

func toAvailabilityResult(item domain.WorkItem, outcome domain.ProbeOutcome) domain.AvailabilityResult {
	row := domain.AvailabilityResult{
		RetailerHost: item.RetailerHost,
		StoreID:      item.StoreID,
		EAN:          item.EAN,
		SkuItemID:    item.SkuItemID,
		SellerID:     item.SellerID,
		SalesChannel: item.SalesChannel,
		Currency:     "ARS",
		CheckedAt:    time.Now().UTC(),
	}

	switch {
	case outcome.IsOk():
		row.IsAvailable = outcome.Available
		row.Price = decimalPtr(outcome.Price)
		row.ListPrice = decimalPtr(outcome.ListPrice)
		row.AvailableQuantity = outcome.Quantity
		row.Currency = outcome.Currency
	case outcome.IsUnavailable():
		row.IsAvailable = false
	default:
		row.IsAvailable = false
		row.ErrorMessage = outcome.Message()
	}

	return row
}

func decimalPtr(f *float64) *decimal.Decimal {
	if f == nil {
		return nil
	}
	d := decimal.NewFromFloat(*f)
	return &d
}

type simpleResult struct {
	jobID    string
	err      error
	duration time.Duration
}

func (r simpleResult) JobID() string        { return r.jobID }
func (r simpleResult) Error() error         { return r.err }
func (r simpleResult) Duration() time.Duration { return r.duration }

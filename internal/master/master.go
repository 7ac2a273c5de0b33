// Package master implements the Master Orchestrator: it reads the enabled
// retailer configs (optionally restricted to one host), and for each
// retailer sequentially runs Targeted Discovery, Store Mapper, and the
// Availability Orchestrator back to back, per spec.md §4.8.
package master

import (
	"context"
	"fmt"

	"github.com/adeco-retail/vtexwatch/internal/discovery"
	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/internal/orchestrator"
	"github.com/adeco-retail/vtexwatch/internal/storemapper"
	"github.com/adeco-retail/vtexwatch/pkg/event"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
	"github.com/adeco-retail/vtexwatch/pkg/notification"
	"github.com/adeco-retail/vtexwatch/pkg/workflow"
)

const fullProcessWorkflowID = "full-process"

// ProbeConfig carries the orchestrator tuning knobs a full run needs.
type ProbeConfig struct {
	MinBatchSize        int
	MaxBatchSize        int
	DegreeOfParallelism int
}

// PhaseClients builds the per-host Targeted Discovery and Store Mapper
// instances for one retailer: both wrap a Platform Client bound to that
// retailer's own HTTP Session Layer (spec.md §4.1, §5's "not shared
// across workers" rule), so the Master Orchestrator needs a fresh pair
// for every retailer it visits rather than one fixed at construction time.
type PhaseClients func(host string) (*discovery.Discovery, *storemapper.Mapper, error)

// EnabledHosts resolves the retailer hosts a run should cover, optionally
// restricted to hostFilter (spec.md §4.8's hostFilter).
type EnabledHosts func(hostFilter string) []string

// Master loops over the enabled retailers and, for each, runs the phase
// sequence to completion before moving to the next: one retailer failing
// does not stop the others (§9 Open Question: "isolated failure"), and
// within a retailer's own run, one phase failing does not roll back or
// skip the phases after it, decided in favor of forward progress over an
// all-or-nothing saga since each phase already owns its own SweepLog row.
type Master struct {
	engine       *workflow.Engine
	phaseClients PhaseClients
	enabledHosts EnabledHosts
	discovery    *discovery.Discovery
	mapper       *storemapper.Mapper
	probe        *orchestrator.Orchestrator
	sweeps       domain.SweepLogRepository
	events       event.Bus
	alerts       *notification.NotificationService
	alertWebhook string
	log          logging.Logger
	probeCfg     ProbeConfig
}

// New wires a Master Orchestrator. alertWebhook may be empty, in which
// case phase failures are only logged and published on the event bus.
func New(
	phaseClients PhaseClients,
	enabledHosts EnabledHosts,
	probe *orchestrator.Orchestrator,
	sweeps domain.SweepLogRepository,
	events event.Bus,
	alerts *notification.NotificationService,
	alertWebhook string,
	probeCfg ProbeConfig,
	log logging.Logger,
) *Master {
	m := &Master{
		phaseClients: phaseClients,
		enabledHosts: enabledHosts,
		probe:        probe,
		sweeps:       sweeps,
		events:       events,
		alerts:       alerts,
		alertWebhook: alertWebhook,
		probeCfg:     probeCfg,
		log:          log,
	}

	m.engine = workflow.NewEngine(
		workflow.NewLoggerAdapter(log),
		workflow.NewMetricsAdapter("vtexwatch"),
		workflow.NewTracerAdapter(),
	)

	wf := &workflow.Workflow{
		ID:          fullProcessWorkflowID,
		Name:        "full-process",
		Description: "discovery, store mapping, and availability probing for one retailer",
		Activities: []workflow.Activity{
			&phaseActivity{name: "discovery-ean", run: m.runDiscoveryEAN},
			&phaseActivity{name: "discovery-brand-prefix", run: m.runDiscoveryBrandPrefix},
			&phaseActivity{name: "store-map", run: m.runStoreMap},
			&phaseActivity{name: "probe", run: m.runProbe},
		},
		Options: workflow.WorkflowOptions{
			MaxRetries:       0,
			CompensateOnFail: false,
		},
	}
	_ = m.engine.RegisterWorkflow(wf)

	return m
}

// RunFullProcess reads the enabled retailer configs, restricted to
// hostFilter when non-empty, and runs the phase sequence for each in
// turn. A retailer whose run fails does not stop the retailers after it
// (spec.md §7 propagation policy); RunFullProcess returns the first error
// encountered, if any, after every retailer has had a chance to run.
func (m *Master) RunFullProcess(ctx context.Context, hostFilter string) error {
	hosts := m.enabledHosts(hostFilter)
	if len(hosts) == 0 {
		return fmt.Errorf("no enabled retailer configured for host filter %q", hostFilter)
	}

	var firstErr error
	for _, host := range hosts {
		if err := m.runRetailer(ctx, host); err != nil {
			m.log.Error("full process failed for retailer", logging.String("host", host), logging.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// runRetailer runs the discovery/store-map/probe sequence for one host.
// It is not safe to call concurrently for different hosts: it mutates the
// Master's discovery and mapper fields for the duration of the run, since
// the workflow.Engine's activities close over the Master rather than
// taking per-host dependencies as input. RunFullProcess only ever calls
// it sequentially, per spec.md §4.8.
func (m *Master) runRetailer(ctx context.Context, host string) error {
	disc, mapper, err := m.phaseClients(host)
	if err != nil {
		m.log.Error("failed to build platform client for retailer", logging.String("host", host), logging.Error(err))
		return err
	}
	m.discovery = disc
	m.mapper = mapper

	_, err = m.engine.Execute(ctx, fullProcessWorkflowID, host)
	return err
}

// phaseActivity adapts a run function that already does its own error
// handling into a workflow.Activity that never fails the engine: the
// engine's job is sequencing, not supervising retries this package's
// components already supervise themselves.
type phaseActivity struct {
	name string
	run  func(ctx context.Context, host string) error
}

func (a *phaseActivity) Name() string { return a.name }

func (a *phaseActivity) Execute(ctx context.Context, input interface{}) (interface{}, error) {
	host, _ := input.(string)
	if err := a.run(ctx, host); err != nil {
		// The run function already logged and closed its own SweepLog as
		// failed; swallow here so later phases still run.
	}
	return host, nil
}

func (a *phaseActivity) Compensate(ctx context.Context, input interface{}) error { return nil }

func (m *Master) runDiscoveryEAN(ctx context.Context, host string) error {
	m.discovery.RunByEAN(ctx, host)
	return nil
}

func (m *Master) runDiscoveryBrandPrefix(ctx context.Context, host string) error {
	m.discovery.RunByBrandPrefix(ctx, host)
	return nil
}

func (m *Master) runStoreMap(ctx context.Context, host string) error {
	sweep, err := m.sweeps.Open(ctx, host, domain.SweepTypeStoreMap)
	if err != nil {
		m.log.Error("failed to open store-map sweep log", logging.String("host", host), logging.Error(err))
		return err
	}

	mapped, err := m.mapper.MapAll(ctx, host)
	if err != nil {
		m.closeAndAlert(ctx, sweep.ID, host, domain.SweepTypeStoreMap, err)
		return err
	}

	m.closeSuccess(ctx, sweep.ID, host, domain.SweepTypeStoreMap, fmt.Sprintf("mapped %d stores", mapped))
	return nil
}

func (m *Master) runProbe(ctx context.Context, host string) error {
	err := m.probe.ProbeEanList(ctx, host, m.probeCfg.MinBatchSize, m.probeCfg.MaxBatchSize, m.probeCfg.DegreeOfParallelism)
	if err != nil {
		m.publish(ctx, "sweep.failed", host, string(domain.SweepTypeProbe))
		m.alert(ctx, host, domain.SweepTypeProbe, err)
		return err
	}
	m.publish(ctx, "sweep.completed", host, string(domain.SweepTypeProbe))
	return nil
}

// closeSuccess/closeAndAlert are used by phases this package manages the
// SweepLog lifecycle for directly (store-map). Discovery and probe manage
// their own SweepLog rows internally; probe is wrapped here only for event
// publication and alerting, and discovery publishes no events at all.
func (m *Master) closeSuccess(ctx context.Context, sweepID, host string, kind domain.SweepType, notes string) {
	if err := m.sweeps.Close(ctx, sweepID, domain.SweepStatusSuccess, notes); err != nil {
		m.log.Error("failed to close sweep log", logging.String("sweep_id", sweepID), logging.Error(err))
	}
	m.publish(ctx, "sweep.completed", host, string(kind))
}

func (m *Master) closeAndAlert(ctx context.Context, sweepID, host string, kind domain.SweepType, runErr error) {
	if err := m.sweeps.Close(ctx, sweepID, domain.SweepStatusFailed, runErr.Error()); err != nil {
		m.log.Error("failed to close sweep log", logging.String("sweep_id", sweepID), logging.Error(err))
	}
	m.publish(ctx, "sweep.failed", host, string(kind))
	m.alert(ctx, host, kind, runErr)
}

func (m *Master) publish(ctx context.Context, eventType, host, kind string) {
	if m.events == nil {
		return
	}
	evt := event.NewBaseEvent(eventType, host, map[string]string{"sweep_type": kind})
	if err := m.events.Publish(ctx, evt); err != nil {
		m.log.Warn("failed to publish sweep event", logging.String("event_type", eventType), logging.Error(err))
	}
}

func (m *Master) alert(ctx context.Context, host string, kind domain.SweepType, runErr error) {
	if m.alerts == nil || m.alertWebhook == "" {
		return
	}
	body := fmt.Sprintf(`{"host":%q,"sweep_type":%q,"error":%q}`, host, string(kind), runErr.Error())
	if err := m.alerts.SendWebhook(ctx, m.alertWebhook, body); err != nil {
		m.log.Warn("failed to send failure webhook", logging.String("host", host), logging.Error(err))
	}
}

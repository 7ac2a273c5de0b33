package master

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/adeco-retail/vtexwatch/internal/discovery"
	"github.com/adeco-retail/vtexwatch/internal/storemapper"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

func TestPhaseActivity_SwallowsRunError(t *testing.T) {
	called := false
	a := &phaseActivity{
		name: "test-phase",
		run: func(ctx context.Context, host string) error {
			called = true
			return errors.New("boom")
		},
	}

	out, err := a.Execute(context.Background(), "store.example.com")

	assert.NoError(t, err)
	assert.Equal(t, "store.example.com", out)
	assert.True(t, called)
}

func TestPhaseActivity_PassesThroughHostOnSuccess(t *testing.T) {
	a := &phaseActivity{
		name: "test-phase",
		run: func(ctx context.Context, host string) error {
			assert.Equal(t, "store.example.com", host)
			return nil
		},
	}

	out, err := a.Execute(context.Background(), "store.example.com")

	assert.NoError(t, err)
	assert.Equal(t, "store.example.com", out)
}

func TestPhaseActivity_Name(t *testing.T) {
	a := &phaseActivity{name: "discovery-ean"}
	assert.Equal(t, "discovery-ean", a.Name())
}

func TestPhaseActivity_CompensateIsNoop(t *testing.T) {
	a := &phaseActivity{name: "test-phase"}
	assert.NoError(t, a.Compensate(context.Background(), "anything"))
}

func TestRunFullProcess_NoEnabledHostsIsAnError(t *testing.T) {
	log, err := logging.NewDevelopmentLogger()
	assert.NoError(t, err)
	m := &Master{
		enabledHosts: func(string) []string { return nil },
		log:          log,
	}

	err = m.RunFullProcess(context.Background(), "unknown.example.com")
	assert.Error(t, err)
}

func TestRunFullProcess_IsolatesFailureAcrossRetailers(t *testing.T) {
	log, err := logging.NewDevelopmentLogger()
	assert.NoError(t, err)

	var attempted []string
	m := &Master{
		enabledHosts: func(string) []string {
			return []string{"a.example.com", "b.example.com"}
		},
		phaseClients: func(host string) (*discovery.Discovery, *storemapper.Mapper, error) {
			attempted = append(attempted, host)
			return nil, nil, errors.New("failed to build platform client")
		},
		log: log,
	}

	err = m.RunFullProcess(context.Background(), "")

	assert.Error(t, err)
	assert.Equal(t, []string{"a.example.com", "b.example.com"}, attempted)
}

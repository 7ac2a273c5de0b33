package opsapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/adeco-retail/vtexwatch/internal/domain"
	"github.com/adeco-retail/vtexwatch/pkg/health"
	"github.com/adeco-retail/vtexwatch/pkg/logging"
)

type mockSweepLogRepository struct {
	mock.Mock
}

func (m *mockSweepLogRepository) Open(ctx context.Context, host string, kind domain.SweepType) (*domain.SweepLog, error) {
	args := m.Called(ctx, host, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SweepLog), args.Error(1)
}

func (m *mockSweepLogRepository) Close(ctx context.Context, id string, status domain.SweepStatus, notes string) error {
	args := m.Called(ctx, id, status, notes)
	return args.Error(0)
}

func (m *mockSweepLogRepository) Recent(ctx context.Context, host string, limit int) ([]domain.SweepLog, error) {
	args := m.Called(ctx, host, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.SweepLog), args.Error(1)
}

func newTestServer(t *testing.T, sweeps domain.SweepLogRepository) *Server {
	t.Helper()
	log, err := logging.NewDevelopmentLogger()
	assert.NoError(t, err)
	healthMgr := health.NewManager()
	s := &Server{sweeps: sweeps, health: healthMgr, log: log}
	s.router = s.buildRouter()
	return s
}

func TestTriggerSweep_RejectsEmptyHost(t *testing.T) {
	sweeps := new(mockSweepLogRepository)
	s := newTestServer(t, sweeps)

	req := httptest.NewRequest(http.MethodPost, "/api/ops/sweeps/%20/", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	sweeps.AssertNotCalled(t, "Open")
}

func TestRecentSweeps_ReturnsRows(t *testing.T) {
	sweeps := new(mockSweepLogRepository)
	now := time.Now().UTC()
	rows := []domain.SweepLog{
		{ID: "1", RetailerHost: "store.example.com", SweepType: domain.SweepTypeProbe, Status: domain.SweepStatusSuccess, StartedAt: now},
	}
	sweeps.On("Recent", mock.Anything, "store.example.com", 50).Return(rows, nil)

	s := newTestServer(t, sweeps)

	req := httptest.NewRequest(http.MethodGet, "/api/ops/sweeps/store.example.com/", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "store.example.com")
	sweeps.AssertExpectations(t)
}

func TestRecentSweeps_RejectsInvalidHost(t *testing.T) {
	sweeps := new(mockSweepLogRepository)
	s := newTestServer(t, sweeps)

	req := httptest.NewRequest(http.MethodGet, "/api/ops/sweeps/not%20a%20host/", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	sweeps.AssertNotCalled(t, "Recent")
}

func TestRecentSweeps_PropagatesRepositoryError(t *testing.T) {
	sweeps := new(mockSweepLogRepository)
	sweeps.On("Recent", mock.Anything, "store.example.com", 50).Return(nil, assertError())

	s := newTestServer(t, sweeps)

	req := httptest.NewRequest(http.MethodGet, "/api/ops/sweeps/store.example.com/", nil)
	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func assertError() error {
	return context.DeadlineExceeded
}

package testutil

import (
	"testing"
	"time"
)

func TestFixtureStore_IsActiveAndScopedToHost(t *testing.T) {
	s := FixtureStore("loja.example.com", 7)
	AssertEqual(t, s.RetailerHost, "loja.example.com", "retailer host")
	AssertEqual(t, s.ID, int64(7), "store id")
	AssertTrue(t, s.Active, "fixture store should be active")
}

func TestFixtureWorkItem_CarriesStoreAndHost(t *testing.T) {
	item := FixtureWorkItem("loja.example.com", 7)
	AssertEqual(t, item.StoreID, int64(7), "store id")
	AssertEqual(t, item.RetailerHost, "loja.example.com", "retailer host")
	AssertNotNil(t, item.EAN, "ean")
}

func TestFixtureAvailabilityResult_RecentlyChecked(t *testing.T) {
	row := FixtureAvailabilityResult("loja.example.com", 7)
	AssertTrue(t, row.IsAvailable, "fixture result should be available")
	AssertTimeAlmostEqual(t, row.CheckedAt, time.Now().UTC(), time.Minute, "checked_at")
}

func TestFixtureSweepLog_StartsRunning(t *testing.T) {
	s := FixtureSweepLog("loja.example.com", "probe")
	AssertEqual(t, string(s.SweepType), "probe", "sweep type")
	AssertEqual(t, string(s.Status), "running", "sweep status")
}

func TestLoggingMockLogger_RecordsByLevel(t *testing.T) {
	log := NewLoggingMockLogger()
	log.Info("started")
	log.Warn("slow response")
	log.Error("failed batch")

	AssertLen(t, log.GetLogs(), 3, "total recorded logs")
	AssertEqual(t, log.InfoMsg, []string{"started"}, "info messages")
	AssertEqual(t, log.WarnMsg, []string{"slow response"}, "warn messages")
	AssertEqual(t, log.ErrMsg, []string{"failed batch"}, "error messages")
	AssertTrue(t, log.With() == log, "With should return itself")
}

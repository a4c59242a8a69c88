package warehouse

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/statlake/covidload/internal/contract"
	"github.com/statlake/covidload/schema"
)

// MockStore is a mock implementation of WarehouseStore for testing.
type MockStore struct {
	mock.Mock
}

var _ contract.WarehouseStore = &MockStore{} // Compile-time check

// AcquireRunLock implements the WarehouseStore interface.
func (m *MockStore) AcquireRunLock(ctx context.Context, runID string, minDate, maxDate time.Time, ttl time.Duration) error {
	args := m.Called(ctx, runID, minDate, maxDate, ttl)
	return args.Error(0)
}

// ReleaseRunLock implements the WarehouseStore interface.
func (m *MockStore) ReleaseRunLock(ctx context.Context, runID string) error {
	args := m.Called(ctx, runID)
	return args.Error(0)
}

// UpsertMetrics implements the WarehouseStore interface.
func (m *MockStore) UpsertMetrics(ctx context.Context, metrics []schema.DailyMetric) (int, error) {
	args := m.Called(ctx, metrics)
	return args.Int(0), args.Error(1)
}

// ReadMetrics implements the WarehouseStore interface.
func (m *MockStore) ReadMetrics(ctx context.Context, state string, since time.Time) ([]schema.DailyMetric, error) {
	args := m.Called(ctx, state, since)
	metrics, _ := args.Get(0).([]schema.DailyMetric)
	return metrics, args.Error(1)
}

// GetStatus implements the WarehouseStore interface.
func (m *MockStore) GetStatus(ctx context.Context) (schema.WarehouseStatus, error) {
	args := m.Called(ctx)
	return args.Get(0).(schema.WarehouseStatus), args.Error(1)
}

// Close implements the WarehouseStore interface.
func (m *MockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

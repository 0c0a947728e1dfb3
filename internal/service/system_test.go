package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/capitalstack/directory/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockStatsStore is a mock implementation of StatsStore.
type MockStatsStore struct {
	mock.Mock
}

func (m *MockStatsStore) Ping(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func (m *MockStatsStore) Counts(ctx context.Context) (repository.DirectoryStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(repository.DirectoryStats), args.Error(1)
}

func (m *MockStatsStore) UsersByPlan(ctx context.Context) (map[string]int, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]int), args.Error(1)
}

func TestHealth_CachesCounts(t *testing.T) {
	stats := new(MockStatsStore)
	svc := NewSystemService(stats, time.Minute, quietLogger())

	stats.On("Ping", mock.Anything).Return(nil).Twice()
	stats.On("Counts", mock.Anything).Return(repository.DirectoryStats{Buyers: 2, Contacts: 3, Users: 4}, nil).Once()

	for i := 0; i < 2; i++ {
		report, ok := svc.Health(context.Background())
		require.True(t, ok)
		assert.Equal(t, "healthy", report.Status)
		assert.Equal(t, "connected", report.Database)
		assert.Equal(t, 2, report.Stats.Buyers)
	}
	stats.AssertExpectations(t)
}

func TestHealth_Unreachable(t *testing.T) {
	stats := new(MockStatsStore)
	svc := NewSystemService(stats, time.Minute, quietLogger())

	stats.On("Ping", mock.Anything).Return(errors.New("dial tcp: refused"))

	report, ok := svc.Health(context.Background())
	assert.False(t, ok)
	assert.Equal(t, "unhealthy", report.Status)
	assert.Equal(t, "disconnected", report.Database)
	assert.Nil(t, report.Stats)
	stats.AssertNotCalled(t, "Counts", mock.Anything)
}

func TestAdminStats(t *testing.T) {
	stats := new(MockStatsStore)
	svc := NewSystemService(stats, time.Minute, quietLogger())

	stats.On("Counts", mock.Anything).Return(repository.DirectoryStats{Buyers: 10, Contacts: 20, Users: 9}, nil)
	stats.On("UsersByPlan", mock.Anything).Return(map[string]int{"FREE": 5, "STARTER": 3, "PROFESSIONAL": 1, "ENTERPRISE": 0}, nil)

	out, err := svc.AdminStats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, out.PayingUsers)
	assert.Equal(t, 9, out.Users)
	assert.Equal(t, 3, out.ByPlan["STARTER"])
}

package service

import (
	"context"
	"time"

	"github.com/capitalstack/directory/internal/domain"
	"github.com/capitalstack/directory/internal/repository"
	"github.com/patrickmn/go-cache"
	"github.com/sirupsen/logrus"
)

const countsCacheKey = "directory_counts"

// HealthReport is the health endpoint body.
type HealthReport struct {
	Status    string                     `json:"status"`
	Timestamp time.Time                  `json:"timestamp"`
	Database  string                     `json:"database"`
	Stats     *repository.DirectoryStats `json:"stats,omitempty"`
	Error     string                     `json:"error,omitempty"`
}

// AdminStats is the admin dashboard summary.
type AdminStats struct {
	repository.DirectoryStats
	PayingUsers int `json:"payingUsers"`
}

// SystemService reports store health and aggregate counts.
// Row counts are cached briefly; the connectivity ping is not.
type SystemService struct {
	stats StatsStore
	cache *cache.Cache
	log   logrus.FieldLogger
	now   func() time.Time
}

// NewSystemService creates a new SystemService.
func NewSystemService(stats StatsStore, countsTTL time.Duration, log logrus.FieldLogger) *SystemService {
	return &SystemService{
		stats: stats,
		cache: cache.New(countsTTL, 2*countsTTL),
		log:   log,
		now:   time.Now,
	}
}

// Health pings the store and returns row counts. ok is false when the
// store is unreachable.
func (s *SystemService) Health(ctx context.Context) (report HealthReport, ok bool) {
	report = HealthReport{Timestamp: s.now().UTC()}

	if err := s.stats.Ping(ctx); err != nil {
		return s.unhealthy(report, err), false
	}

	counts, err := s.counts(ctx)
	if err != nil {
		return s.unhealthy(report, err), false
	}

	report.Status = "healthy"
	report.Database = "connected"
	report.Stats = &counts
	return report, true
}

func (s *SystemService) unhealthy(report HealthReport, err error) HealthReport {
	s.log.WithError(err).Error("health check failed")
	report.Status = "unhealthy"
	report.Database = "disconnected"
	report.Error = err.Error()
	return report
}

func (s *SystemService) counts(ctx context.Context) (repository.DirectoryStats, error) {
	if cached, found := s.cache.Get(countsCacheKey); found {
		return cached.(repository.DirectoryStats), nil
	}
	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return repository.DirectoryStats{}, err
	}
	s.cache.SetDefault(countsCacheKey, counts)
	return counts, nil
}

// AdminStats returns fresh totals and the per-plan user breakdown.
func (s *SystemService) AdminStats(ctx context.Context) (*AdminStats, error) {
	counts, err := s.stats.Counts(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to load stats", err)
	}
	byPlan, err := s.stats.UsersByPlan(ctx)
	if err != nil {
		return nil, domain.ErrInternal("failed to load stats", err)
	}

	counts.ByPlan = byPlan
	paying := 0
	for plan, n := range byPlan {
		if plan != string(domain.PlanFree) {
			paying += n
		}
	}
	return &AdminStats{DirectoryStats: counts, PayingUsers: paying}, nil
}

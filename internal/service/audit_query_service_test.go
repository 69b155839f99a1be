package service

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
)

func seedAuditEntries(t *testing.T, repo repository.AuditLogRepository, now time.Time) {
	t.Helper()
	entries := []models.AuditLog{
		{Action: models.AuditActionCreate, Entity: models.AuditEntityReportes, EntityID: "1", UserID: "7", UserEmail: "ana@muni.cr", Timestamp: now.Add(-1 * time.Hour)},
		{Action: models.AuditActionUpdate, Entity: models.AuditEntityReportes, EntityID: "1", UserID: "7", UserEmail: "ana@muni.cr", Timestamp: now.Add(-2 * time.Hour)},
		{Action: models.AuditActionDelete, Entity: models.AuditEntityReportes, EntityID: "2", UserID: "8", UserEmail: "luis@muni.cr", Timestamp: now.Add(-3 * time.Hour)},
		{Action: models.AuditActionSystem, Entity: models.AuditEntitySystem, EntityID: "", Timestamp: now.Add(-26 * time.Hour)},
		{Action: models.AuditActionAuth, Entity: models.AuditEntityAuthentication, UserID: "7", UserEmail: "ana@muni.cr", Timestamp: now.Add(-48 * time.Hour)},
	}
	for i := range entries {
		entry := entries[i]
		require.NoError(t, repo.Create(context.Background(), &entry))
	}
}

func TestAuditQueryServiceListFiltersAndPaginates(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedAuditEntries(t, repo, now)

	svc := NewAuditQueryService(repo, nil, time.Minute, testLogger())

	page, err := svc.List(context.Background(), dto.AuditLogFilterRequest{Entity: "REPORTES"})
	require.NoError(t, err)
	require.EqualValues(t, 3, page.Total)
	require.Len(t, page.Data, 3)
	require.Equal(t, 1, page.TotalPages)

	// Unknown enum values fall through to an unfiltered listing.
	page, err = svc.List(context.Background(), dto.AuditLogFilterRequest{Entity: "galaxias"})
	require.NoError(t, err)
	require.EqualValues(t, 5, page.Total)

	page, err = svc.List(context.Background(), dto.AuditLogFilterRequest{Limit: 2})
	require.NoError(t, err)
	require.Len(t, page.Data, 2)
	require.Equal(t, 3, page.TotalPages)
}

func TestAuditQueryServiceListByEntityAndUser(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedAuditEntries(t, repo, now)

	svc := NewAuditQueryService(repo, nil, time.Minute, testLogger())

	page, err := svc.ListByEntity(context.Background(), models.AuditEntityReportes, "1", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 2, page.Total)

	page, err = svc.ListByUser(context.Background(), "8", 1, 10)
	require.NoError(t, err)
	require.EqualValues(t, 1, page.Total)
	require.Equal(t, "luis@muni.cr", page.Data[0].UserEmail)
}

func TestAuditQueryServiceStats(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedAuditEntries(t, repo, now)

	svc := NewAuditQueryService(repo, nil, time.Minute, testLogger()).(*auditQueryService)
	svc.now = func() time.Time { return now }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)

	require.EqualValues(t, 5, stats.TotalLogs)
	require.EqualValues(t, 1, stats.LogsByAction[models.AuditActionCreate])
	require.EqualValues(t, 3, stats.LogsByEntity[models.AuditEntityReportes])
	require.EqualValues(t, 3, stats.LogsToday)
	require.Len(t, stats.LogsByHour, 24)

	// Hour-of-day buckets span the whole trail: 09/11/12 UTC once each and
	// 10 UTC twice (today's update plus yesterday's SYSTEM entry).
	var hourTotal int64
	for _, bucket := range stats.LogsByHour {
		hourTotal += bucket.Count
	}
	require.EqualValues(t, 5, hourTotal)
	require.EqualValues(t, 2, stats.LogsByHour[10].Count)
	require.Equal(t, 10, stats.PeakActivity.Hour)

	// SYSTEM entries drive the error rate: 1 of 5 -> 20%.
	require.InDelta(t, 20.0, stats.ErrorRate, 0.001)

	// AUTH and DELETE both occurred; ROLE_CHANGE never did.
	types := make(map[string]int64)
	for _, event := range stats.SecurityEvents {
		types[event.Type] = event.Count
	}
	require.EqualValues(t, 1, types[models.AuditActionAuth])
	require.EqualValues(t, 1, types[models.AuditActionDelete])
	require.NotContains(t, types, models.AuditActionRoleChange)
	require.False(t, stats.CacheHit)
}

func TestAuditQueryServiceStatsHourBucketsCoverWholeTrail(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// The only entry landed yesterday at 09:00 UTC. Hour-of-day buckets are
	// not scoped to today, so it must still show up under hour 9.
	entry := models.AuditLog{
		Action:    models.AuditActionCreate,
		Entity:    models.AuditEntityReportes,
		EntityID:  "1",
		Timestamp: time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), &entry))

	svc := NewAuditQueryService(repo, nil, time.Minute, testLogger()).(*auditQueryService)
	svc.now = func() time.Time { return now }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.LogsToday)
	require.EqualValues(t, 1, stats.LogsByHour[9].Count)
	require.Equal(t, 9, stats.PeakActivity.Hour)
}

func TestAuditQueryServiceStatsTrendsZeroBaseline(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)

	// All activity happens today; every previous period is empty, so the
	// growth percentages must be 0 rather than infinite.
	for i := 0; i < 5; i++ {
		entry := models.AuditLog{
			Action:    models.AuditActionCreate,
			Entity:    models.AuditEntityReportes,
			Timestamp: now.Add(-time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Create(context.Background(), &entry))
	}

	svc := NewAuditQueryService(repo, nil, time.Minute, testLogger()).(*auditQueryService)
	svc.now = func() time.Time { return now }

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.Zero(t, stats.Trends.DailyGrowth)
	require.Zero(t, stats.Trends.WeeklyGrowth)
	require.Zero(t, stats.Trends.MonthlyGrowth)
}

func TestAuditQueryServiceStatsCaching(t *testing.T) {
	server, err := miniredis.Run()
	require.NoError(t, err)
	defer server.Close()

	client := redis.NewClient(&redis.Options{Addr: server.Addr()})
	defer client.Close()

	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedAuditEntries(t, repo, now)

	svc := NewAuditQueryService(repo, client, time.Minute, testLogger()).(*auditQueryService)
	svc.now = func() time.Time { return now }

	first, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.False(t, first.CacheHit)

	// New writes are invisible until the cache expires.
	entry := models.AuditLog{Action: models.AuditActionCreate, Entity: models.AuditEntityReportes, Timestamp: now}
	require.NoError(t, repo.Create(context.Background(), &entry))

	second, err := svc.Stats(context.Background())
	require.NoError(t, err)
	require.True(t, second.CacheHit)
	require.Equal(t, first.TotalLogs, second.TotalLogs)
}

func TestAuditQueryServiceUserSummaries(t *testing.T) {
	db := newTestDB(t)
	repo := repository.NewAuditLogRepository(db)
	now := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	seedAuditEntries(t, repo, now)

	svc := NewAuditQueryService(repo, nil, time.Minute, testLogger())
	summaries, err := svc.UserSummaries(context.Background())
	require.NoError(t, err)
	require.Len(t, summaries, 2)
	require.Equal(t, "7", summaries[0].UserID)
	require.EqualValues(t, 3, summaries[0].TotalActions)
}

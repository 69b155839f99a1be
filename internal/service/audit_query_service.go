package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/munivial/flota-api/internal/dto"
	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
)

// AuditQueryService exposes read access into the audit trail: filtered
// listings, per-entity and per-user views, and the statistics aggregate.
type AuditQueryService interface {
	List(ctx context.Context, req dto.AuditLogFilterRequest) (dto.AuditLogListResponse, error)
	ListByEntity(ctx context.Context, entity, entityID string, page, limit int) (dto.AuditLogListResponse, error)
	ListByUser(ctx context.Context, userID string, page, limit int) (dto.AuditLogListResponse, error)
	UserSummaries(ctx context.Context) ([]dto.UserActivitySummary, error)
	Stats(ctx context.Context) (dto.AuditStatsResponse, error)
}

type auditQueryService struct {
	repo     repository.AuditLogRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   zerolog.Logger
	now      func() time.Time
}

// NewAuditQueryService constructs the audit query service. cache may be nil
// when Redis is not configured; stats are then computed on every call.
func NewAuditQueryService(repo repository.AuditLogRepository, cache *redis.Client, ttl time.Duration, logger zerolog.Logger) AuditQueryService {
	return &auditQueryService{
		repo:     repo,
		cache:    cache,
		cacheTTL: ttl,
		logger:   logger.With().Str("component", "audit_query_service").Logger(),
		now:      time.Now,
	}
}

func (s *auditQueryService) List(ctx context.Context, req dto.AuditLogFilterRequest) (dto.AuditLogListResponse, error) {
	req.Normalize()

	filter := repository.AuditLogFilter{
		Action:    req.Action,
		Entity:    req.Entity,
		EntityID:  req.EntityID,
		UserID:    req.UserID,
		UserEmail: req.UserEmail,
		Search:    req.Search,
		Page:      req.Page,
		Limit:     req.Limit,
		SortBy:    req.SortBy,
		SortOrder: req.SortOrder,
	}
	if start, ok := parseFilterDate(req.StartDate); ok {
		filter.StartDate = &start
	}
	if end, ok := parseFilterDate(req.EndDate); ok {
		filter.EndDate = &end
	}

	entries, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return dto.AuditLogListResponse{}, err
	}

	return buildPage(entries, total, req.Page, req.Limit), nil
}

func (s *auditQueryService) ListByEntity(ctx context.Context, entity, entityID string, page, limit int) (dto.AuditLogListResponse, error) {
	req := dto.AuditLogFilterRequest{Entity: entity, EntityID: entityID, Page: page, Limit: limit}
	return s.List(ctx, req)
}

func (s *auditQueryService) ListByUser(ctx context.Context, userID string, page, limit int) (dto.AuditLogListResponse, error) {
	req := dto.AuditLogFilterRequest{UserID: userID, Page: page, Limit: limit}
	return s.List(ctx, req)
}

func (s *auditQueryService) UserSummaries(ctx context.Context) ([]dto.UserActivitySummary, error) {
	summaries, err := s.repo.ActorSummaries(ctx)
	if err != nil {
		return nil, err
	}
	responses := make([]dto.UserActivitySummary, 0, len(summaries))
	for _, summary := range summaries {
		responses = append(responses, dto.NewUserActivitySummary(summary))
	}
	return responses, nil
}

func (s *auditQueryService) Stats(ctx context.Context) (dto.AuditStatsResponse, error) {
	const cacheKey = "audit:stats"
	tracer := otel.Tracer("github.com/munivial/flota-api/internal/service/audit_query")
	ctx, span := tracer.Start(ctx, "audit.stats")
	span.SetAttributes(attribute.String("audit.cache_key", cacheKey))
	defer span.End()

	if s.cache != nil {
		cached, err := s.cache.Get(ctx, cacheKey).Result()
		if err == nil {
			var response dto.AuditStatsResponse
			if unmarshalErr := json.Unmarshal([]byte(cached), &response); unmarshalErr == nil {
				response.CacheHit = true
				span.SetAttributes(attribute.Bool("audit.cache_hit", true))
				return response, nil
			}
		} else if err != redis.Nil {
			s.logger.Warn().Err(err).Msg("no se pudo leer la caché de estadísticas")
			span.RecordError(err)
		}
	}

	stats, err := s.buildStats(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "audit_stats_failed")
		return dto.AuditStatsResponse{}, err
	}
	span.SetAttributes(attribute.Int64("audit.total_logs", stats.TotalLogs))

	if s.cache != nil {
		payload, err := json.Marshal(stats)
		if err == nil {
			if err := s.cache.Set(ctx, cacheKey, payload, s.cacheTTL).Err(); err != nil {
				s.logger.Warn().Err(err).Msg("no se pudo guardar la caché de estadísticas")
				span.RecordError(err)
			}
		}
	}

	return stats, nil
}

func (s *auditQueryService) buildStats(ctx context.Context) (dto.AuditStatsResponse, error) {
	now := s.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	startOfWeek := startOfDay.AddDate(0, 0, -int(now.Weekday()))
	startOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	farFuture := now.Add(time.Hour)

	total, err := s.repo.CountTotal(ctx)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}

	byAction, err := s.repo.CountsGroupedByAction(ctx)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}
	byEntity, err := s.repo.CountsGroupedByEntity(ctx)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}
	topActors, err := s.repo.TopActors(ctx, 10)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}

	logsToday, err := s.repo.CountBetween(ctx, startOfDay, farFuture)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}
	logsThisWeek, err := s.repo.CountBetween(ctx, startOfWeek, farFuture)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}
	logsThisMonth, err := s.repo.CountBetween(ctx, startOfMonth, farFuture)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}

	allTimestamps, err := s.repo.Timestamps(ctx)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}
	recentTimestamps, err := s.repo.TimestampsSince(ctx, startOfDay.AddDate(0, 0, -30))
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}

	hourBuckets, dayBuckets, peak := bucketize(allTimestamps, recentTimestamps, now)

	securityEvents, err := s.securityEvents(ctx)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}

	systemCount, err := s.repo.CountByAction(ctx, models.AuditActionSystem)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}
	errorRate := 0.0
	if total > 0 {
		errorRate = round2(float64(systemCount) / float64(total) * 100)
	}

	var last30 int64
	for _, bucket := range dayBuckets {
		last30 += bucket.Count
	}

	trends, err := s.trends(ctx, startOfDay, startOfWeek, startOfMonth, logsToday, logsThisWeek, logsThisMonth)
	if err != nil {
		return dto.AuditStatsResponse{}, err
	}

	return dto.AuditStatsResponse{
		TotalLogs:         total,
		LogsByAction:      byAction,
		LogsByEntity:      byEntity,
		LogsByUser:        topActors,
		LogsToday:         logsToday,
		LogsThisWeek:      logsThisWeek,
		LogsThisMonth:     logsThisMonth,
		LogsByHour:        hourBuckets,
		LogsByDay:         dayBuckets,
		SecurityEvents:    securityEvents,
		ErrorRate:         errorRate,
		AverageLogsPerDay: round2(float64(last30) / 30),
		PeakActivity:      peak,
		Trends:            trends,
		GeneratedAt:       now,
	}, nil
}

// bucketize folds every timestamp into 24 zero-filled hour-of-day buckets
// and the recent window into per-day counts, along with the peak hour/day.
func bucketize(all, recent []time.Time, now time.Time) ([]dto.HourBucket, []dto.DayBucket, dto.PeakActivity) {
	hourCounts := make([]int64, 24)
	dayCounts := map[string]int64{}

	for _, ts := range all {
		hourCounts[ts.UTC().Hour()]++
	}
	for _, ts := range recent {
		dayCounts[ts.UTC().Format("2006-01-02")]++
	}

	hourBuckets := make([]dto.HourBucket, 24)
	peakHour := 12
	var peakHourCount int64
	for hour, count := range hourCounts {
		hourBuckets[hour] = dto.HourBucket{Hour: hour, Count: count}
		if count > peakHourCount {
			peakHour = hour
			peakHourCount = count
		}
	}

	days := make([]string, 0, len(dayCounts))
	for day := range dayCounts {
		days = append(days, day)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(days)))

	dayBuckets := make([]dto.DayBucket, 0, len(days))
	peakDay := now.Format("2006-01-02")
	var peakDayCount int64
	for _, day := range days {
		dayBuckets = append(dayBuckets, dto.DayBucket{Date: day, Count: dayCounts[day]})
		if dayCounts[day] > peakDayCount {
			peakDay = day
			peakDayCount = dayCounts[day]
		}
	}

	peak := dto.PeakActivity{Hour: peakHour, Day: peakDay, Count: peakDayCount}
	return hourBuckets, dayBuckets, peak
}

var securityActions = []string{
	models.AuditActionAuth,
	models.AuditActionRoleChange,
	models.AuditActionDelete,
}

func (s *auditQueryService) securityEvents(ctx context.Context) ([]dto.SecurityEvent, error) {
	events := make([]dto.SecurityEvent, 0, len(securityActions))
	for _, action := range securityActions {
		count, err := s.repo.CountByAction(ctx, action)
		if err != nil {
			return nil, err
		}
		if count == 0 {
			continue
		}
		last, err := s.repo.LastOccurrence(ctx, action)
		if err != nil {
			return nil, err
		}
		event := dto.SecurityEvent{Type: action, Count: count}
		if last != nil {
			event.LastOccurrence = last.UTC()
		}
		events = append(events, event)
	}
	return events, nil
}

func (s *auditQueryService) trends(ctx context.Context, startOfDay, startOfWeek, startOfMonth time.Time, today, week, month int64) (dto.AuditTrends, error) {
	prevDay, err := s.repo.CountBetween(ctx, startOfDay.AddDate(0, 0, -1), startOfDay)
	if err != nil {
		return dto.AuditTrends{}, err
	}
	prevWeek, err := s.repo.CountBetween(ctx, startOfWeek.AddDate(0, 0, -7), startOfWeek)
	if err != nil {
		return dto.AuditTrends{}, err
	}
	prevMonth, err := s.repo.CountBetween(ctx, startOfMonth.AddDate(0, -1, 0), startOfMonth)
	if err != nil {
		return dto.AuditTrends{}, err
	}

	return dto.AuditTrends{
		DailyGrowth:   growth(today, prevDay),
		WeeklyGrowth:  growth(week, prevWeek),
		MonthlyGrowth: growth(month, prevMonth),
	}, nil
}

// growth is the percentage change against the previous period. An empty
// previous period yields 0 rather than a division blowup.
func growth(current, previous int64) float64 {
	if previous == 0 {
		return 0
	}
	return round2(float64(current-previous) / float64(previous) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func buildPage(entries []models.AuditLog, total int64, page, limit int) dto.AuditLogListResponse {
	responses := make([]dto.AuditLogResponse, 0, len(entries))
	for _, entry := range entries {
		responses = append(responses, dto.NewAuditLogResponse(entry))
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(limit)))
	}
	return dto.AuditLogListResponse{
		Data:       responses,
		Total:      total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
	}
}

func parseFilterDate(raw string) (time.Time, bool) {
	if raw == "" {
		return time.Time{}, false
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if ts, err := time.Parse(layout, raw); err == nil {
			return ts.UTC(), true
		}
	}
	return time.Time{}, false
}

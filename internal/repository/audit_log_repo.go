package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/munivial/flota-api/internal/models"
)

// AuditLogFilter narrows audit log queries. Empty string fields mean "not
// provided"; action/entity values outside the known sets are ignored rather
// than matched, mirroring the lenient boundary of the upstream clients.
type AuditLogFilter struct {
	Action    string
	Entity    string
	EntityID  string
	UserID    string
	UserEmail string
	Search    string
	StartDate *time.Time
	EndDate   *time.Time
	Page      int
	Limit     int
	SortBy    string
	SortOrder string
}

// ActorCount is one row of the top-actors aggregation.
type ActorCount struct {
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	Count     int64  `json:"count"`
}

// ActorSummary aggregates the full activity span of one actor.
type ActorSummary struct {
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	UserName      string    `json:"user_name"`
	UserLastname  string    `json:"user_lastname"`
	TotalActions  int64     `json:"total_actions"`
	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`
}

// auditSortColumns is the allow-list for user-supplied sort keys.
var auditSortColumns = map[string]string{
	"timestamp": "timestamp",
	"action":    "action",
	"entity":    "entity",
	"entityId":  "entity_id",
	"userId":    "user_id",
	"userEmail": "user_email",
}

// AuditLogRepository is the append-only store behind the audit trail.
// There is deliberately no update or delete method.
type AuditLogRepository interface {
	Create(ctx context.Context, entry *models.AuditLog) error
	List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error)
	CountTotal(ctx context.Context) (int64, error)
	CountBetween(ctx context.Context, start, end time.Time) (int64, error)
	CountByAction(ctx context.Context, action string) (int64, error)
	CountsGroupedByAction(ctx context.Context) (map[string]int64, error)
	CountsGroupedByEntity(ctx context.Context) (map[string]int64, error)
	TopActors(ctx context.Context, limit int) ([]ActorCount, error)
	ActorSummaries(ctx context.Context) ([]ActorSummary, error)
	Timestamps(ctx context.Context) ([]time.Time, error)
	TimestampsSince(ctx context.Context, since time.Time) ([]time.Time, error)
	LastOccurrence(ctx context.Context, action string) (*time.Time, error)
}

type auditLogRepository struct {
	db *gorm.DB
}

// NewAuditLogRepository constructs the audit log repository.
func NewAuditLogRepository(db *gorm.DB) AuditLogRepository {
	return &auditLogRepository{db: db}
}

func (r *auditLogRepository) Create(ctx context.Context, entry *models.AuditLog) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

func (r *auditLogRepository) List(ctx context.Context, filter AuditLogFilter) ([]models.AuditLog, int64, error) {
	query := r.db.WithContext(ctx).Model(&models.AuditLog{})

	if filter.Action != "" && models.IsAuditAction(filter.Action) {
		query = query.Where("action = ?", filter.Action)
	}
	if filter.Entity != "" && models.IsAuditEntity(filter.Entity) {
		query = query.Where("entity = ?", filter.Entity)
	}
	if filter.EntityID != "" {
		query = query.Where("entity_id = ?", filter.EntityID)
	}
	if filter.UserID != "" {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.UserEmail != "" {
		query = query.Where("LOWER(user_email) LIKE ?", "%"+strings.ToLower(filter.UserEmail)+"%")
	}

	if filter.StartDate != nil {
		query = query.Where("timestamp >= ?", *filter.StartDate)
		end := time.Now().UTC()
		if filter.EndDate != nil {
			end = *filter.EndDate
		}
		query = query.Where("timestamp <= ?", end)
	}

	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where(
			"LOWER(description) LIKE ? OR LOWER(user_email) LIKE ? OR LOWER(entity_id) LIKE ?",
			pattern, pattern, pattern,
		)
	}

	countQuery := query.Session(&gorm.Session{})
	var total int64
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	column, ok := auditSortColumns[filter.SortBy]
	if !ok {
		column = "timestamp"
	}
	order := "DESC"
	if strings.EqualFold(filter.SortOrder, "ASC") {
		order = "ASC"
	}

	page := filter.Page
	if page <= 0 {
		page = 1
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 10
	}

	var entries []models.AuditLog
	err := query.
		Order(column + " " + order).
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&entries).Error
	if err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

func (r *auditLogRepository) CountTotal(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).Count(&count).Error
	return count, err
}

func (r *auditLogRepository) CountBetween(ctx context.Context, start, end time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("timestamp >= ? AND timestamp < ?", start, end).
		Count(&count).Error
	return count, err
}

func (r *auditLogRepository) CountByAction(ctx context.Context, action string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("action = ?", action).
		Count(&count).Error
	return count, err
}

type groupedCount struct {
	Label string
	Count int64
}

func (r *auditLogRepository) CountsGroupedByAction(ctx context.Context) (map[string]int64, error) {
	return r.groupedCounts(ctx, "action")
}

func (r *auditLogRepository) CountsGroupedByEntity(ctx context.Context) (map[string]int64, error) {
	return r.groupedCounts(ctx, "entity")
}

func (r *auditLogRepository) groupedCounts(ctx context.Context, column string) (map[string]int64, error) {
	var rows []groupedCount
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Select(column + " AS label, COUNT(*) AS count").
		Group(column).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Label] = row.Count
	}
	return counts, nil
}

func (r *auditLogRepository) TopActors(ctx context.Context, limit int) ([]ActorCount, error) {
	var rows []ActorCount
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Select("user_id, user_email, COUNT(*) AS count").
		Where("user_id <> ''").
		Group("user_id, user_email").
		Order("count DESC").
		Limit(limit).
		Scan(&rows).Error
	return rows, err
}

func (r *auditLogRepository) ActorSummaries(ctx context.Context) ([]ActorSummary, error) {
	var rows []ActorSummary
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Select("user_id, user_email, user_name, user_lastname, COUNT(*) AS total_actions, MIN(timestamp) AS first_activity, MAX(timestamp) AS last_activity").
		Where("user_id <> ''").
		Group("user_id, user_email, user_name, user_lastname").
		Order("total_actions DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *auditLogRepository) Timestamps(ctx context.Context) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Pluck("timestamp", &timestamps).Error
	return timestamps, err
}

func (r *auditLogRepository) TimestampsSince(ctx context.Context, since time.Time) ([]time.Time, error) {
	var timestamps []time.Time
	err := r.db.WithContext(ctx).Model(&models.AuditLog{}).
		Where("timestamp >= ?", since).
		Pluck("timestamp", &timestamps).Error
	return timestamps, err
}

func (r *auditLogRepository) LastOccurrence(ctx context.Context, action string) (*time.Time, error) {
	var entry models.AuditLog
	err := r.db.WithContext(ctx).
		Where("action = ?", action).
		Order("timestamp DESC").
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	ts := entry.Timestamp
	return &ts, nil
}

package dto

import (
	"strings"
	"time"

	"github.com/munivial/flota-api/internal/models"
	"github.com/munivial/flota-api/internal/repository"
)

// AuditLogFilterRequest carries the query parameters accepted by the audit
// log listing. Empty strings mean "not provided".
type AuditLogFilterRequest struct {
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	EntityID  string `json:"entity_id"`
	UserID    string `json:"user_id"`
	UserEmail string `json:"user_email"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Search    string `json:"search"`
	Page      int    `json:"page"`
	Limit     int    `json:"limit"`
	SortBy    string `json:"sort_by"`
	SortOrder string `json:"sort_order"`
}

// Normalize applies the documented defaults and folds the enum-ish fields to
// their stored case.
func (r *AuditLogFilterRequest) Normalize() {
	r.Action = strings.ToUpper(strings.TrimSpace(r.Action))
	r.Entity = strings.ToLower(strings.TrimSpace(r.Entity))
	r.EntityID = strings.TrimSpace(r.EntityID)
	r.UserID = strings.TrimSpace(r.UserID)
	r.UserEmail = strings.TrimSpace(r.UserEmail)
	r.Search = strings.TrimSpace(r.Search)
	if r.Page < 1 {
		r.Page = 1
	}
	if r.Limit < 1 {
		r.Limit = 10
	}
	if strings.TrimSpace(r.SortBy) == "" {
		r.SortBy = "timestamp"
	}
	if !strings.EqualFold(r.SortOrder, "ASC") {
		r.SortOrder = "DESC"
	}
}

// AuditLogResponse is the serialized form of one audit entry. Timestamps are
// rendered as ISO-8601 UTC strings so clients never see zone-shifted values.
type AuditLogResponse struct {
	ID            string                 `json:"id"`
	Action        string                 `json:"action"`
	Entity        string                 `json:"entity"`
	EntityID      string                 `json:"entity_id,omitempty"`
	UserID        string                 `json:"user_id,omitempty"`
	UserEmail     string                 `json:"user_email,omitempty"`
	UserName      string                 `json:"user_name,omitempty"`
	UserLastname  string                 `json:"user_lastname,omitempty"`
	UserRoles     []string               `json:"user_roles,omitempty"`
	Description   string                 `json:"description"`
	ChangesBefore interface{}            `json:"changes_before,omitempty"`
	ChangesAfter  interface{}            `json:"changes_after,omitempty"`
	Timestamp     string                 `json:"timestamp"`
	TimestampMs   int64                  `json:"timestamp_ms"`
	UserAgent     string                 `json:"user_agent,omitempty"`
	IP            string                 `json:"ip,omitempty"`
	URL           string                 `json:"url,omitempty"`
	Metadata      map[string]interface{} `json:"metadata,omitempty"`
}

// NewAuditLogResponse converts a stored entry into its response form.
func NewAuditLogResponse(entry models.AuditLog) AuditLogResponse {
	response := AuditLogResponse{
		ID:           entry.ID,
		Action:       entry.Action,
		Entity:       entry.Entity,
		EntityID:     entry.EntityID,
		UserID:       entry.UserID,
		UserEmail:    entry.UserEmail,
		UserName:     entry.UserName,
		UserLastname: entry.UserLastname,
		UserRoles:    entry.UserRoles,
		Description:  entry.Description,
		Timestamp:    entry.Timestamp.UTC().Format(time.RFC3339),
		TimestampMs:  entry.Timestamp.UnixMilli(),
		UserAgent:    entry.UserAgent,
		IP:           entry.IP,
		URL:          entry.URL,
		Metadata:     entry.Metadata,
	}
	if len(entry.ChangesBefore) > 0 {
		response.ChangesBefore = entry.ChangesBefore
	}
	if len(entry.ChangesAfter) > 0 {
		response.ChangesAfter = entry.ChangesAfter
	}
	return response
}

// AuditLogListResponse is a paginated audit log page.
type AuditLogListResponse struct {
	Data       []AuditLogResponse `json:"data"`
	Total      int64              `json:"total"`
	Page       int                `json:"page"`
	Limit      int                `json:"limit"`
	TotalPages int                `json:"total_pages"`
}

// HourBucket is the entry count for one hour of the day.
type HourBucket struct {
	Hour  int   `json:"hour"`
	Count int64 `json:"count"`
}

// DayBucket is the entry count for one calendar day.
type DayBucket struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// SecurityEvent summarizes one security-relevant action.
type SecurityEvent struct {
	Type           string    `json:"type"`
	Count          int64     `json:"count"`
	LastOccurrence time.Time `json:"last_occurrence"`
}

// PeakActivity names the busiest hour and day.
type PeakActivity struct {
	Hour  int    `json:"hour"`
	Day   string `json:"day"`
	Count int64  `json:"count"`
}

// AuditTrends holds period-over-period growth percentages. A previous
// period with zero entries yields 0, never an infinity.
type AuditTrends struct {
	DailyGrowth   float64 `json:"daily_growth"`
	WeeklyGrowth  float64 `json:"weekly_growth"`
	MonthlyGrowth float64 `json:"monthly_growth"`
}

// AuditStatsResponse is the full statistics aggregate over the audit trail.
type AuditStatsResponse struct {
	TotalLogs         int64                  `json:"total_logs"`
	LogsByAction      map[string]int64       `json:"logs_by_action"`
	LogsByEntity      map[string]int64       `json:"logs_by_entity"`
	LogsByUser        []repository.ActorCount `json:"logs_by_user"`
	LogsToday         int64                  `json:"logs_today"`
	LogsThisWeek      int64                  `json:"logs_this_week"`
	LogsThisMonth     int64                  `json:"logs_this_month"`
	LogsByHour        []HourBucket           `json:"logs_by_hour"`
	LogsByDay         []DayBucket            `json:"logs_by_day"`
	SecurityEvents    []SecurityEvent        `json:"security_events"`
	ErrorRate         float64                `json:"error_rate"`
	AverageLogsPerDay float64                `json:"average_logs_per_day"`
	PeakActivity      PeakActivity           `json:"peak_activity"`
	Trends            AuditTrends            `json:"trends"`
	GeneratedAt       time.Time              `json:"generated_at"`
	CacheHit          bool                   `json:"cache_hit"`
}

// UserActivitySummary aggregates the whole activity span of one actor.
type UserActivitySummary struct {
	UserID        string    `json:"user_id"`
	UserEmail     string    `json:"user_email"`
	UserName      string    `json:"user_name"`
	UserLastname  string    `json:"user_lastname"`
	FullName      string    `json:"full_name"`
	TotalActions  int64     `json:"total_actions"`
	FirstActivity time.Time `json:"first_activity"`
	LastActivity  time.Time `json:"last_activity"`
}

// NewUserActivitySummary converts a repository actor summary.
func NewUserActivitySummary(summary repository.ActorSummary) UserActivitySummary {
	return UserActivitySummary{
		UserID:        summary.UserID,
		UserEmail:     summary.UserEmail,
		UserName:      summary.UserName,
		UserLastname:  summary.UserLastname,
		FullName:      strings.TrimSpace(summary.UserName + " " + summary.UserLastname),
		TotalActions:  summary.TotalActions,
		FirstActivity: summary.FirstActivity.UTC(),
		LastActivity:  summary.LastActivity.UTC(),
	}
}

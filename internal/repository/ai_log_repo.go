package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
)

// ==================== 仓储接口 ====================

// AICallLogRepository AI调用日志仓储接口
type AICallLogRepository interface {
	Create(ctx context.Context, log *model.AICallLog) error

	// 统计查询
	GetUsage(ctx context.Context, startTime, endTime time.Time) (*AIUsageStats, error)
	GetUsageByProduct(ctx context.Context, productID string) (*AIUsageStats, error)
	GetUsageByProvider(ctx context.Context, startTime, endTime time.Time) ([]ProviderUsageStats, error)
	GetDailyUsage(ctx context.Context, startDate, endDate time.Time) ([]DailyUsageStats, error)

	// 清理
	DeleteBefore(ctx context.Context, before time.Time) (int64, error)
}

// ==================== 统计结构 ====================

// AIUsageStats AI用量统计
type AIUsageStats struct {
	TotalCalls       int64   `json:"total_calls"`
	TextCalls        int64   `json:"text_calls"`
	VisionCalls      int64   `json:"vision_calls"`
	ImageCalls       int64   `json:"image_calls"`
	TotalPromptChars int64   `json:"total_prompt_chars"`
	TotalOutputChars int64   `json:"total_output_chars"`
	TotalImages      int64   `json:"total_images"`
	AvgDurationMs    float64 `json:"avg_duration_ms"`
	SuccessCount     int64   `json:"success_count"`
	DegradedCount    int64   `json:"degraded_count"`
	FailedCount      int64   `json:"failed_count"`
}

// ProviderUsageStats 按服务商统计
type ProviderUsageStats struct {
	Provider      string  `json:"provider"`
	TotalCalls    int64   `json:"total_calls"`
	FailedCount   int64   `json:"failed_count"`
	AvgDurationMs float64 `json:"avg_duration_ms"`
}

// DailyUsageStats 每日用量统计
type DailyUsageStats struct {
	Date             string `json:"date"`
	TotalCalls       int64  `json:"total_calls"`
	TotalPromptChars int64  `json:"total_prompt_chars"`
	TotalOutputChars int64  `json:"total_output_chars"`
	TotalImages      int64  `json:"total_images"`
}

const usageColumns = `
	COUNT(*) as total_calls,
	COALESCE(SUM(CASE WHEN call_type = 'text' THEN 1 ELSE 0 END), 0) as text_calls,
	COALESCE(SUM(CASE WHEN call_type = 'vision' THEN 1 ELSE 0 END), 0) as vision_calls,
	COALESCE(SUM(CASE WHEN call_type = 'image' THEN 1 ELSE 0 END), 0) as image_calls,
	COALESCE(SUM(prompt_chars), 0) as total_prompt_chars,
	COALESCE(SUM(output_chars), 0) as total_output_chars,
	COALESCE(SUM(image_count), 0) as total_images,
	COALESCE(AVG(duration_ms), 0) as avg_duration_ms,
	COALESCE(SUM(CASE WHEN status = 'success' THEN 1 ELSE 0 END), 0) as success_count,
	COALESCE(SUM(CASE WHEN status = 'degraded' THEN 1 ELSE 0 END), 0) as degraded_count,
	COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed_count
`

// ==================== 仓储实现 ====================

type aiCallLogRepo struct {
	db *gorm.DB
}

// NewAICallLogRepository 创建AI调用日志仓储
func NewAICallLogRepository(db *gorm.DB) AICallLogRepository {
	return &aiCallLogRepo{db: db}
}

func (r *aiCallLogRepo) Create(ctx context.Context, log *model.AICallLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

func (r *aiCallLogRepo) timeRange(ctx context.Context, startTime, endTime time.Time) *gorm.DB {
	query := r.db.WithContext(ctx).Model(&model.AICallLog{})
	if !startTime.IsZero() {
		query = query.Where("created_at >= ?", startTime)
	}
	if !endTime.IsZero() {
		query = query.Where("created_at <= ?", endTime)
	}
	return query
}

func (r *aiCallLogRepo) GetUsage(ctx context.Context, startTime, endTime time.Time) (*AIUsageStats, error) {
	var stats AIUsageStats
	err := r.timeRange(ctx, startTime, endTime).Select(usageColumns).Scan(&stats).Error
	return &stats, err
}

func (r *aiCallLogRepo) GetUsageByProduct(ctx context.Context, productID string) (*AIUsageStats, error) {
	var stats AIUsageStats

	err := r.db.WithContext(ctx).Model(&model.AICallLog{}).
		Where("product_id = ?", productID).
		Select(usageColumns).
		Scan(&stats).Error

	return &stats, err
}

func (r *aiCallLogRepo) GetUsageByProvider(ctx context.Context, startTime, endTime time.Time) ([]ProviderUsageStats, error) {
	var stats []ProviderUsageStats

	err := r.timeRange(ctx, startTime, endTime).
		Select(`
			provider,
			COUNT(*) as total_calls,
			COALESCE(SUM(CASE WHEN status = 'failed' THEN 1 ELSE 0 END), 0) as failed_count,
			COALESCE(AVG(duration_ms), 0) as avg_duration_ms
		`).
		Group("provider").
		Order("provider ASC").
		Scan(&stats).Error

	return stats, err
}

func (r *aiCallLogRepo) GetDailyUsage(ctx context.Context, startDate, endDate time.Time) ([]DailyUsageStats, error) {
	var stats []DailyUsageStats

	err := r.db.WithContext(ctx).Model(&model.AICallLog{}).
		Where("created_at >= ? AND created_at <= ?", startDate, endDate).
		Select(`
			DATE(created_at) as date,
			COUNT(*) as total_calls,
			COALESCE(SUM(prompt_chars), 0) as total_prompt_chars,
			COALESCE(SUM(output_chars), 0) as total_output_chars,
			COALESCE(SUM(image_count), 0) as total_images
		`).
		Group("DATE(created_at)").
		Order("date ASC").
		Scan(&stats).Error

	return stats, err
}

// DeleteBefore 物理删除早于 before 的日志，返回删除条数
func (r *aiCallLogRepo) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).Unscoped().
		Where("created_at < ?", before).
		Delete(&model.AICallLog{})
	return result.RowsAffected, result.Error
}

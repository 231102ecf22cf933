package service

import (
	"context"
	"time"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/repository"
)

// UsageReport 用量汇总
type UsageReport struct {
	Start      time.Time                       `json:"start"`
	End        time.Time                       `json:"end"`
	Summary    *repository.AIUsageStats        `json:"summary"`
	ByProvider []repository.ProviderUsageStats `json:"byProvider"`
	Daily      []repository.DailyUsageStats    `json:"daily"`
}

// UsageService AI 调用用量查询
type UsageService struct {
	repo repository.AICallLogRepository
}

// NewUsageService repo 为 nil 时所有查询返回 ErrUsageDisabled
func NewUsageService(repo repository.AICallLogRepository) *UsageService {
	return &UsageService{repo: repo}
}

func (s *UsageService) Enabled() bool { return s.repo != nil }

// Report [start, end] 区间用量，零值表示不限
func (s *UsageService) Report(ctx context.Context, start, end time.Time) (*UsageReport, error) {
	if s.repo == nil {
		return nil, ErrUsageDisabled
	}

	summary, err := s.repo.GetUsage(ctx, start, end)
	if err != nil {
		return nil, err
	}
	byProvider, err := s.repo.GetUsageByProvider(ctx, start, end)
	if err != nil {
		return nil, err
	}
	daily, err := s.repo.GetDailyUsage(ctx, start, end)
	if err != nil {
		return nil, err
	}

	return &UsageReport{
		Start:      start,
		End:        end,
		Summary:    summary,
		ByProvider: byProvider,
		Daily:      daily,
	}, nil
}

// ProductUsage 单个商品累计用量
func (s *UsageService) ProductUsage(ctx context.Context, productID string) (*repository.AIUsageStats, error) {
	if s.repo == nil {
		return nil, ErrUsageDisabled
	}
	return s.repo.GetUsageByProduct(ctx, productID)
}

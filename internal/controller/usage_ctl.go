package controller

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
)

// UsageController AI 用量查询
type UsageController struct {
	usageService *service.UsageService
	now          func() time.Time
}

func NewUsageController(usageService *service.UsageService) *UsageController {
	return &UsageController{usageService: usageService, now: time.Now}
}

// GetUsage 区间用量，默认最近 7 天
// @Summary AI 调用用量统计
// @Tags Usage
// @Param start query string false "开始时间 RFC3339 或 2006-01-02"
// @Param end query string false "结束时间 RFC3339 或 2006-01-02"
// @Param productId query string false "商品ID，传入时返回该商品累计用量"
// @Router /api/usage [get]
func (ctrl *UsageController) GetUsage(c *gin.Context) {
	if productID := c.Query("productId"); productID != "" {
		stats, err := ctrl.usageService.ProductUsage(c.Request.Context(), productID)
		if err != nil {
			respondError(c, err)
			return
		}
		respondResult(c, stats)
		return
	}

	now := ctrl.now()
	start, err := parseTimeParam(c.Query("start"), now.AddDate(0, 0, -7), false)
	if err != nil {
		respondBadRequest(c, "Invalid start time")
		return
	}
	end, err := parseTimeParam(c.Query("end"), now, true)
	if err != nil {
		respondBadRequest(c, "Invalid end time")
		return
	}
	if end.Before(start) {
		respondBadRequest(c, "End time must not be before start time")
		return
	}

	report, err := ctrl.usageService.Report(c.Request.Context(), start, end)
	if err != nil {
		respondError(c, err)
		return
	}
	respondResult(c, report)
}

// parseTimeParam 支持 RFC3339 与日期，日期作为结束时间时取当天最后一刻
func parseTimeParam(raw string, def time.Time, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return def, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	t, err := time.ParseInLocation("2006-01-02", raw, time.Local)
	if err != nil {
		return time.Time{}, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return t, nil
}

package repository

import (
	"context"
	"testing"
	"time"

	"gorm.io/datatypes"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
)

func setupAILogTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("连接测试数据库失败: %v", err)
	}

	err = db.AutoMigrate(&model.AICallLog{})
	if err != nil {
		t.Fatalf("数据库迁移失败: %v", err)
	}

	return db
}

func TestAICallLogRepo_Create(t *testing.T) {
	db := setupAILogTestDB(t)
	repo := NewAICallLogRepository(db)
	ctx := context.Background()

	log := &model.AICallLog{
		ProductID:   "p-1",
		Endpoint:    "generate",
		CallType:    model.AICallTypeText,
		Provider:    "DeepSeek",
		ModelName:   "deepseek-ai/DeepSeek-V3.2",
		PromptChars: 500,
		OutputChars: 200,
		DurationMs:  1500,
		Status:      model.AICallStatusSuccess,
		Meta:        datatypes.JSON(`{"style":"funny"}`),
	}

	err := repo.Create(ctx, log)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	if log.ID == 0 {
		t.Error("ID 应该被自动分配")
	}
}

func TestAICallLogRepo_CreateImageCall(t *testing.T) {
	db := setupAILogTestDB(t)
	repo := NewAICallLogRepository(db)
	ctx := context.Background()

	// 创建
	log := &model.AICallLog{
		ProductID: "p-1",
		CallType:  model.AICallTypeImage,
		Provider:  "QwenImage",
		ModelName: "Qwen/Qwen-Image-2512",
		Attempts:  7,
		Status:    model.AICallStatusSuccess,
	}
	repo.Create(ctx, log)

	// 查询
	var found model.AICallLog
	if err := db.First(&found, log.ID).Error; err != nil {
		t.Fatalf("First() error = %v", err)
	}

	if found.CallType != model.AICallTypeImage {
		t.Errorf("CallType = %s, want image", found.CallType)
	}
	if found.Attempts != 7 {
		t.Errorf("Attempts = %d, want 7", found.Attempts)
	}
}

func TestAICallLogRepo_GetUsage(t *testing.T) {
	db := setupAILogTestDB(t)
	repo := NewAICallLogRepository(db)
	ctx := context.Background()

	// 创建测试数据
	logs := []*model.AICallLog{
		{ProductID: "p-1", CallType: model.AICallTypeText, Provider: "DeepSeek", PromptChars: 100, OutputChars: 50, Status: model.AICallStatusSuccess},
		{ProductID: "p-1", CallType: model.AICallTypeText, Provider: "DeepSeek", PromptChars: 200, OutputChars: 100, Status: model.AICallStatusDegraded},
		{ProductID: "p-2", CallType: model.AICallTypeImage, Provider: "QwenImage", ImageCount: 1, Status: model.AICallStatusSuccess},
		{ProductID: "p-2", CallType: model.AICallTypeVision, Provider: "Qwen", Status: model.AICallStatusFailed},
	}
	for _, log := range logs {
		repo.Create(ctx, log)
	}

	stats, err := repo.GetUsage(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetUsage() error = %v", err)
	}

	if stats.TotalCalls != 4 {
		t.Errorf("TotalCalls = %d, want 4", stats.TotalCalls)
	}
	if stats.TextCalls != 2 {
		t.Errorf("TextCalls = %d, want 2", stats.TextCalls)
	}
	if stats.VisionCalls != 1 || stats.ImageCalls != 1 {
		t.Errorf("VisionCalls = %d, ImageCalls = %d, want 1/1", stats.VisionCalls, stats.ImageCalls)
	}
	if stats.TotalPromptChars != 300 {
		t.Errorf("TotalPromptChars = %d, want 300", stats.TotalPromptChars)
	}
	if stats.SuccessCount != 2 || stats.DegradedCount != 1 || stats.FailedCount != 1 {
		t.Errorf("success/degraded/failed = %d/%d/%d, want 2/1/1", stats.SuccessCount, stats.DegradedCount, stats.FailedCount)
	}
}

func TestAICallLogRepo_GetUsage_Empty(t *testing.T) {
	repo := NewAICallLogRepository(setupAILogTestDB(t))

	stats, err := repo.GetUsage(context.Background(), time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetUsage() error = %v", err)
	}
	if stats.TotalCalls != 0 || stats.FailedCount != 0 {
		t.Errorf("空表统计应为 0, got %+v", stats)
	}
}

func TestAICallLogRepo_GetUsageByProduct(t *testing.T) {
	db := setupAILogTestDB(t)
	repo := NewAICallLogRepository(db)
	ctx := context.Background()

	logs := []*model.AICallLog{
		{ProductID: "p-100", CallType: model.AICallTypeText, PromptChars: 500, DurationMs: 1000, Status: model.AICallStatusSuccess},
		{ProductID: "p-100", CallType: model.AICallTypeImage, ImageCount: 1, DurationMs: 5000, Status: model.AICallStatusSuccess},
		{ProductID: "p-200", CallType: model.AICallTypeText, PromptChars: 100, Status: model.AICallStatusSuccess},
	}
	for _, log := range logs {
		repo.Create(ctx, log)
	}

	stats, err := repo.GetUsageByProduct(ctx, "p-100")
	if err != nil {
		t.Fatalf("GetUsageByProduct() error = %v", err)
	}

	if stats.TotalCalls != 2 {
		t.Errorf("TotalCalls = %d, want 2", stats.TotalCalls)
	}
	if stats.AvgDurationMs != 3000 {
		t.Errorf("AvgDurationMs = %f, want 3000", stats.AvgDurationMs)
	}
}

func TestAICallLogRepo_GetUsageByProvider(t *testing.T) {
	db := setupAILogTestDB(t)
	repo := NewAICallLogRepository(db)
	ctx := context.Background()

	logs := []*model.AICallLog{
		{Provider: "DeepSeek", Status: model.AICallStatusSuccess},
		{Provider: "DeepSeek", Status: model.AICallStatusFailed},
		{Provider: "Qwen", Status: model.AICallStatusSuccess},
	}
	for _, log := range logs {
		repo.Create(ctx, log)
	}

	stats, err := repo.GetUsageByProvider(ctx, time.Time{}, time.Time{})
	if err != nil {
		t.Fatalf("GetUsageByProvider() error = %v", err)
	}
	if len(stats) != 2 {
		t.Fatalf("len = %d, want 2", len(stats))
	}
	if stats[0].Provider != "DeepSeek" || stats[0].TotalCalls != 2 || stats[0].FailedCount != 1 {
		t.Errorf("DeepSeek stats = %+v", stats[0])
	}
}

func TestAICallLogRepo_DeleteBefore(t *testing.T) {
	db := setupAILogTestDB(t)
	repo := NewAICallLogRepository(db)
	ctx := context.Background()

	old := &model.AICallLog{Provider: "DeepSeek", Status: model.AICallStatusSuccess}
	old.CreatedAt = time.Now().AddDate(0, 0, -40)
	fresh := &model.AICallLog{Provider: "DeepSeek", Status: model.AICallStatusSuccess}
	repo.Create(ctx, old)
	repo.Create(ctx, fresh)

	deleted, err := repo.DeleteBefore(ctx, time.Now().AddDate(0, 0, -30))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if deleted != 1 {
		t.Errorf("deleted = %d, want 1", deleted)
	}

	var remaining int64
	db.Unscoped().Model(&model.AICallLog{}).Count(&remaining)
	if remaining != 1 {
		t.Errorf("remaining = %d, want 1", remaining)
	}
}

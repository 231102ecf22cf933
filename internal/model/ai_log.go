package model

import "gorm.io/datatypes"

// AICallLog AI调用日志
type AICallLog struct {
	BaseModel

	// 关联
	ProductID string `gorm:"size:64;index;comment:商品ID"`
	Endpoint  string `gorm:"size:64;index;comment:触发调用的接口"`
	Operator  string `gorm:"size:64;index;comment:调用人(鉴权开启时)"`

	// 调用信息
	CallType  string `gorm:"size:32;index;comment:调用类型(text/vision/image)"`
	Provider  string `gorm:"size:32;index;comment:服务商"`
	ModelName string `gorm:"size:128;comment:模型名称"`

	// 用量统计
	PromptChars int `gorm:"default:0;comment:提示词字符数"`
	OutputChars int `gorm:"default:0;comment:输出字符数"`
	ImageCount  int `gorm:"default:0;comment:生成图片数量"`
	Attempts    int `gorm:"default:0;comment:轮询次数"`

	// 性能
	DurationMs int64 `gorm:"comment:耗时(毫秒)"`

	// 状态
	Status   string `gorm:"size:32;index;default:success;comment:状态(success/degraded/failed)"`
	ErrorMsg string `gorm:"size:1024;comment:错误信息"`

	// 附加信息（风格、长度、任务ID 等）
	Meta datatypes.JSON `gorm:"comment:附加信息"`
}

func (AICallLog) TableName() string {
	return "ai_call_logs"
}

// ==================== 调用类型常量 ====================

const (
	AICallTypeText   = "text"
	AICallTypeVision = "vision"
	AICallTypeImage  = "image"
)

// ==================== 状态常量 ====================

const (
	AICallStatusSuccess  = "success"
	AICallStatusDegraded = "degraded"
	AICallStatusFailed   = "failed"
)

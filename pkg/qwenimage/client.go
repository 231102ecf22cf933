// Package qwenimage 封装 Qwen-Image 异步生图接口
//
// 接口模式：
//  1. POST /v1/images/generations 创建任务，返回 task_id
//  2. GET /v1/tasks/{task_id} 轮询状态
//  3. SUCCEED 或 FAILED 时结束
package qwenimage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/pkg/apperr"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/utils"
)

const (
	DefaultBaseURL     = "https://api-inference.modelscope.cn/"
	DefaultModel       = "Qwen/Qwen-Image-2512"
	DefaultMaxAttempts = 24
	DefaultInterval    = 5 * time.Second

	// EnvAPIKey 凭证对应的环境变量名
	EnvAPIKey = "QWEN_API_KEY"
)

// ==================== 配置 ====================

type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration // 单次 HTTP 请求超时，不是整体轮询预算
}

// Options 单次生成的轮询参数
type Options struct {
	MaxAttempts int
	Interval    time.Duration
	OnProgress  func(attempt int, status string)
}

func (o Options) withDefaults() Options {
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = DefaultMaxAttempts
	}
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	return o
}

// ==================== 任务状态 ====================

type TaskStatus string

const (
	StatusPending   TaskStatus = "PENDING"
	StatusRunning   TaskStatus = "RUNNING"
	StatusSucceeded TaskStatus = "SUCCEED"
	StatusFailed    TaskStatus = "FAILED"
)

// Task 远端生成任务快照
type Task struct {
	TaskID       string     `json:"task_id"`
	Status       TaskStatus `json:"task_status"`
	OutputImages []string   `json:"output_images"`
}

// ==================== 时钟 ====================

// Sleeper 轮询间隔等待，测试中替换为假时钟
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type timerSleeper struct{}

func (timerSleeper) Sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// ==================== 客户端 ====================

type Client struct {
	cfg     Config
	http    *resty.Client
	sleeper Sleeper
	logger  *zap.Logger
}

// NewClient 创建生图客户端，缺少 API Key 时直接返回配置错误
func NewClient(cfg Config, logger *zap.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, apperr.MissingConfig(EnvAPIKey)
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		cfg:     cfg,
		http:    utils.NewAPIClient(cfg.BaseURL, cfg.APIKey, cfg.Timeout),
		sleeper: timerSleeper{},
		logger:  logger,
	}, nil
}

// WithSleeper 替换等待实现
func (c *Client) WithSleeper(s Sleeper) *Client {
	c.sleeper = s
	return c
}

// Model 当前使用的模型
func (c *Client) Model() string { return c.cfg.Model }

// GenerateImage 创建任务并阻塞轮询直到终态，返回第一张输出图片 URL
// 最长阻塞 MaxAttempts x Interval，调用方需保证不超过部署平台的请求时长上限
func (c *Client) GenerateImage(ctx context.Context, prompt string, opts Options) (string, error) {
	opts = opts.withDefaults()

	c.logger.Info("Qwen-Image 开始生成",
		zap.String("base_url", c.cfg.BaseURL),
		zap.String("model", c.cfg.Model),
		zap.Int("prompt_length", len(prompt)),
	)

	taskID, err := c.CreateTask(ctx, prompt)
	if err != nil {
		return "", err
	}
	c.logger.Info("生图任务已创建", zap.String("task_id", taskID))

	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		if opts.OnProgress != nil {
			opts.OnProgress(attempt, fmt.Sprintf("Generating image... (%d/%d)", attempt, opts.MaxAttempts))
		}

		// 第一次查询不等待
		if attempt > 1 {
			if err := c.sleeper.Sleep(ctx, opts.Interval); err != nil {
				return "", fmt.Errorf("等待轮询被中断 (task %s): %w", taskID, err)
			}
		}

		task, err := c.getTask(ctx, taskID, attempt)
		if err != nil {
			return "", err
		}

		switch task.Status {
		case StatusSucceeded:
			if len(task.OutputImages) == 0 {
				return "", &EmptyResultError{TaskID: taskID}
			}
			c.logger.Info("生图完成", zap.String("task_id", taskID), zap.Int("attempt", attempt))
			return task.OutputImages[0], nil
		case StatusFailed:
			return "", &TaskFailedError{TaskID: taskID, Attempt: attempt}
		}
		// PENDING / RUNNING 继续轮询
	}

	return "", &TimeoutError{TaskID: taskID, Attempts: opts.MaxAttempts}
}

// CreateTask 提交生图任务，不重试
func (c *Client) CreateTask(ctx context.Context, prompt string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("X-ModelScope-Async-Mode", "true").
		SetBody(map[string]string{
			"model":  c.cfg.Model,
			"prompt": prompt,
		}).
		Post("/v1/images/generations")
	if err != nil {
		return "", &TaskCreationError{Err: err}
	}

	if !resp.IsSuccess() {
		return "", &TaskCreationError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	var data struct {
		TaskID string `json:"task_id"`
	}
	if err := json.Unmarshal(resp.Body(), &data); err != nil || data.TaskID == "" {
		return "", &TaskCreationError{StatusCode: resp.StatusCode(), Body: resp.String()}
	}

	return data.TaskID, nil
}

// GetTask 查询一次任务状态
func (c *Client) GetTask(ctx context.Context, taskID string) (*Task, error) {
	return c.getTask(ctx, taskID, 0)
}

func (c *Client) getTask(ctx context.Context, taskID string, attempt int) (*Task, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-ModelScope-Task-Type", "image_generation").
		SetPathParam("taskId", taskID).
		Get("/v1/tasks/{taskId}")
	if err != nil {
		return nil, &PollingError{TaskID: taskID, Attempt: attempt, Err: err}
	}

	if !resp.IsSuccess() {
		return nil, &PollingError{TaskID: taskID, Attempt: attempt, StatusCode: resp.StatusCode()}
	}

	var task Task
	if err := json.Unmarshal(resp.Body(), &task); err != nil {
		return nil, &PollingError{TaskID: taskID, Attempt: attempt, StatusCode: resp.StatusCode(), Err: err}
	}
	if task.TaskID == "" {
		task.TaskID = taskID
	}

	return &task, nil
}

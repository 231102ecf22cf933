// Package config 加载运行配置
//
// 优先级：进程环境变量 > .env.local > .env > 默认值
package config

import (
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	DeepSeek  LLMConfig
	Qwen      LLMConfig
	QwenImage ImageConfig
	Database  DatabaseConfig
	Storage   StorageConfig
	RateLimit RateLimitConfig
	Auth      AuthConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

// IsDevelopment 开发环境使用可读日志并打印 SQL
func (s ServerConfig) IsDevelopment() bool {
	return s.Env == "development" || s.Env == "dev"
}

// LLMConfig OpenAI 兼容对话服务
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	Model          string
	EnableThinking bool
	Timeout        time.Duration
}

// ImageConfig 异步生图服务，凭证与 Qwen 共用 QWEN_API_KEY
type ImageConfig struct {
	APIKey      string
	BaseURL     string
	Model       string
	MaxAttempts int
	Interval    time.Duration
}

// DatabaseConfig DSN 为空时不记录 AI 调用日志
type DatabaseConfig struct {
	Driver        string
	DSN           string
	RetentionDays int
}

func (d DatabaseConfig) Enabled() bool { return d.DSN != "" }

// StorageConfig Provider 为空时不转存生成图片
type StorageConfig struct {
	Provider  string // local | s3
	Bucket    string
	Region    string
	AccessKey string
	SecretKey string
	Endpoint  string
	CDNDomain string
	BasePath  string
	LocalDir  string
	PublicURL string
}

type RateLimitConfig struct {
	RPS   float64
	Burst int
}

// AuthConfig JWTSecret 为空时接口不鉴权
type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

var defaults = map[string]interface{}{
	"SERVER_PORT": "8080",
	"APP_ENV":     "production",

	"DEEPSEEK_BASE_URL":        "https://api-inference.modelscope.cn/v1",
	"DEEPSEEK_MODEL":           "deepseek-ai/DeepSeek-V3.2",
	"DEEPSEEK_ENABLE_THINKING": true,
	"DEEPSEEK_TIMEOUT":         "120s",

	"QWEN_BASE_URL": "https://api-inference.modelscope.cn/v1",
	"QWEN_MODEL":    "Qwen/Qwen3-VL-235B-A22B-Instruct",
	"QWEN_TIMEOUT":  "30s",

	"QWEN_IMAGE_BASE_URL":     "https://api-inference.modelscope.cn/",
	"QWEN_IMAGE_MODEL":        "Qwen/Qwen-Image-2512",
	"IMAGE_POLL_MAX_ATTEMPTS": 24,
	"IMAGE_POLL_INTERVAL":     "5s",

	"DATABASE_DRIVER":       "postgres",
	"AI_LOG_RETENTION_DAYS": 30,

	"STORAGE_BASE_PATH": "generated",
	"STORAGE_LOCAL_DIR": "./data/images",
	"AWS_REGION":        "us-east-1",

	"RATE_LIMIT_RPS":   2.0,
	"RATE_LIMIT_BURST": 5,

	"AUTH_TOKEN_TTL": "720h",
}

// Load 读取 .env.local 与 .env（文件不存在时忽略），再叠加进程环境变量
func Load(envFiles ...string) *Config {
	if len(envFiles) == 0 {
		envFiles = []string{".env.local", ".env"}
	}
	// godotenv 不覆盖已存在的变量，先加载的文件优先
	for _, f := range envFiles {
		_ = godotenv.Load(f)
	}

	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	return fromViper(v)
}

func fromViper(v *viper.Viper) *Config {
	return &Config{
		Server: ServerConfig{
			Port: v.GetString("SERVER_PORT"),
			Env:  v.GetString("APP_ENV"),
		},
		DeepSeek: LLMConfig{
			APIKey:         v.GetString("DEEPSEEK_API_KEY"),
			BaseURL:        v.GetString("DEEPSEEK_BASE_URL"),
			Model:          v.GetString("DEEPSEEK_MODEL"),
			EnableThinking: v.GetBool("DEEPSEEK_ENABLE_THINKING"),
			Timeout:        duration(v.GetString("DEEPSEEK_TIMEOUT"), 120*time.Second),
		},
		Qwen: LLMConfig{
			APIKey:  v.GetString("QWEN_API_KEY"),
			BaseURL: v.GetString("QWEN_BASE_URL"),
			Model:   v.GetString("QWEN_MODEL"),
			Timeout: duration(v.GetString("QWEN_TIMEOUT"), 30*time.Second),
		},
		QwenImage: ImageConfig{
			APIKey:      v.GetString("QWEN_API_KEY"),
			BaseURL:     v.GetString("QWEN_IMAGE_BASE_URL"),
			Model:       v.GetString("QWEN_IMAGE_MODEL"),
			MaxAttempts: v.GetInt("IMAGE_POLL_MAX_ATTEMPTS"),
			Interval:    duration(v.GetString("IMAGE_POLL_INTERVAL"), 5*time.Second),
		},
		Database: DatabaseConfig{
			Driver:        v.GetString("DATABASE_DRIVER"),
			DSN:           v.GetString("DATABASE_DSN"),
			RetentionDays: v.GetInt("AI_LOG_RETENTION_DAYS"),
		},
		Storage: StorageConfig{
			Provider:  strings.ToLower(v.GetString("STORAGE_PROVIDER")),
			Bucket:    v.GetString("AWS_BUCKET"),
			Region:    v.GetString("AWS_REGION"),
			AccessKey: v.GetString("AWS_ACCESS_KEY_ID"),
			SecretKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
			Endpoint:  v.GetString("AWS_ENDPOINT"),
			CDNDomain: v.GetString("AWS_CDN_DOMAIN"),
			BasePath:  v.GetString("STORAGE_BASE_PATH"),
			LocalDir:  v.GetString("STORAGE_LOCAL_DIR"),
			PublicURL: v.GetString("STORAGE_PUBLIC_URL"),
		},
		RateLimit: RateLimitConfig{
			RPS:   v.GetFloat64("RATE_LIMIT_RPS"),
			Burst: v.GetInt("RATE_LIMIT_BURST"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("AUTH_JWT_SECRET"),
			TokenTTL:  duration(v.GetString("AUTH_TOKEN_TTL"), 720*time.Hour),
		},
	}
}

// duration 支持 "5s" 形式，纯数字按毫秒处理
func duration(raw string, def time.Duration) time.Duration {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	if ms, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if ms <= 0 {
			return def
		}
		return time.Duration(ms) * time.Millisecond
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return def
	}
	return d
}

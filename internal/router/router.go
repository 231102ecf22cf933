package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/controller"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/metrics"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/middleware"
)

// Controllers 路由依赖的控制器
type Controllers struct {
	Generate *controller.GenerateController
	TikTok   *controller.TikTokController
	Image    *controller.ImageController
	Usage    *controller.UsageController
}

// Options 中间件配置
type Options struct {
	Logger    *zap.Logger
	Metrics   *metrics.Collector
	Limiter   *middleware.ClientLimiter // nil 时不限流
	JWTSecret string                    // 为空时不鉴权
	FilesDir  string                    // 本地存储目录，非空时挂载 /files
}

// New 创建引擎并注册所有路由
func New(ctl Controllers, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(opts.Logger, opts.Metrics))
	InitRoutes(r, ctl, opts)
	return r
}

// InitRoutes 注册所有路由
func InitRoutes(r *gin.Engine, ctl Controllers, opts Options) {
	// 1. 运维路由
	r.GET("/healthz", controller.Health)
	if opts.Metrics != nil {
		r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))
	}
	if opts.FilesDir != "" {
		r.Static("/files", opts.FilesDir)
	}

	// 2. API 路由组
	api := r.Group("/api")
	api.Use(middleware.OperatorAuth(opts.JWTSecret))

	// 生成类接口消耗上游额度，单独限流
	gen := api.Group("")
	if opts.Limiter != nil {
		gen.Use(middleware.RateLimit(opts.Limiter))
	}
	{
		// POST /api/generate
		gen.POST("/generate", ctl.Generate.Generate)
		// POST /api/generate/template
		gen.POST("/generate/template", ctl.Generate.GenerateFromTemplate)
		// POST /api/generate/tiktok
		gen.POST("/generate/tiktok", ctl.TikTok.Generate)
		// POST /api/generate-image
		gen.POST("/generate-image", ctl.Image.GenerateImage)
		// POST /api/analyze-image
		gen.POST("/analyze-image", ctl.Image.AnalyzeImage)
	}

	// GET /api/usage
	api.GET("/usage", ctl.Usage.GetUsage)
}

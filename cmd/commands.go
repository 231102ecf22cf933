package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Dexter1636/vibe-ec-dashboard/internal/config"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/middleware"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/model"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/prompt"
	"github.com/Dexter1636/vibe-ec-dashboard/internal/service"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/llm"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/qwenimage"
	"github.com/Dexter1636/vibe-ec-dashboard/pkg/sse"
)

// NewRootCmd 根命令，不带子命令时启动服务
func NewRootCmd() *cobra.Command {
	var envFiles []string

	rootCmd := &cobra.Command{
		Use:   "vibe-ec",
		Short: "电商 AI 工作台后端",
		Long: `vibe-ec 为电商运营提供商品文案、抖音脚本、营销图生成与商品图分析接口。
文本生成使用 DeepSeek，图片分析使用 Qwen-VL，生图使用 Qwen-Image。`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(config.Load(envFiles...))
		},
	}

	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "环境变量文件，默认 .env.local,.env")

	rootCmd.AddCommand(newServeCmd(&envFiles))
	rootCmd.AddCommand(newImageCmd(&envFiles))
	rootCmd.AddCommand(newTikTokCmd(&envFiles))
	rootCmd.AddCommand(newTokenCmd(&envFiles))

	return rootCmd
}

// newServeCmd 启动 HTTP 服务
func newServeCmd(envFiles *[]string) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "启动 HTTP 服务",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(*envFiles...)
			if port != "" {
				cfg.Server.Port = port
			}
			return runServe(cfg)
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "监听端口，覆盖 SERVER_PORT")
	return cmd
}

// newImageCmd 在终端直接调用生图轮询
func newImageCmd(envFiles *[]string) *cobra.Command {
	var (
		text        string
		maxAttempts int
		interval    time.Duration
	)

	cmd := &cobra.Command{
		Use:   "image",
		Short: "提交生图任务并轮询到结束",
		Long: `提交一个 Qwen-Image 生图任务并阻塞轮询，完成后输出图片 URL。
Example: vibe-ec image --prompt "a leather backpack on a wooden desk" --max-attempts 30`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := prompt.ValidateManualPrompt(text); err != nil {
				return err
			}

			cfg := config.Load(*envFiles...)
			logger := newLogger(cfg.Server)
			defer logger.Sync()

			client, err := qwenimage.NewClient(qwenimage.Config{
				APIKey:  cfg.QwenImage.APIKey,
				BaseURL: cfg.QwenImage.BaseURL,
				Model:   cfg.QwenImage.Model,
			}, logger)
			if err != nil {
				return err
			}

			if maxAttempts <= 0 {
				maxAttempts = cfg.QwenImage.MaxAttempts
			}
			if interval <= 0 {
				interval = cfg.QwenImage.Interval
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			out := cmd.OutOrStdout()
			start := time.Now()
			url, err := client.GenerateImage(ctx, text, qwenimage.Options{
				MaxAttempts: maxAttempts,
				Interval:    interval,
				OnProgress: func(attempt int, status string) {
					fmt.Fprintf(out, "[%d/%d] %s\n", attempt, maxAttempts, status)
				},
			})
			if err != nil {
				return err
			}

			fmt.Fprintf(out, "完成，耗时 %.1fs\n%s\n", time.Since(start).Seconds(), url)
			return nil
		},
	}

	cmd.Flags().StringVar(&text, "prompt", "", "生图提示词 (10-1000 字符)")
	cmd.Flags().IntVar(&maxAttempts, "max-attempts", 0, "最大轮询次数，默认读取 IMAGE_POLL_MAX_ATTEMPTS")
	cmd.Flags().DurationVar(&interval, "interval", 0, "轮询间隔，默认读取 IMAGE_POLL_INTERVAL")
	_ = cmd.MarkFlagRequired("prompt")

	return cmd
}

// newTikTokCmd 在终端流式生成抖音文案
// 与 HTTP 接口走同一条事件流，逐个读取事件并打印增量文本
func newTikTokCmd(envFiles *[]string) *cobra.Command {
	var (
		product model.Product
		opts    model.TikTokCopyOptions
		length  string
	)

	cmd := &cobra.Command{
		Use:   "tiktok",
		Short: "流式生成抖音带货文案",
		Long: `调用 DeepSeek 流式生成抖音文案，生成过程实时输出，结束后打印解析结果。
Example: vibe-ec tiktok --name 商务双肩包 --brand Vibe --category 男包 --style funny --length short --hashtags`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(*envFiles...)
			logger := newLogger(cfg.Server)
			defer logger.Sync()

			opts.TargetLength = model.TikTokLength(length)
			svc := service.NewTikTokService(newDeepSeekSource(cfg, logger), nil, logger)
			valid, err := svc.Validate(opts)
			if err == nil {
				err = svc.Ready()
			}
			if err != nil {
				return err
			}

			if product.ID == "" {
				product.ID = "cli"
			}

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return streamTikTok(ctx, svc, &product, valid, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVar(&product.Name, "name", "", "商品名称")
	cmd.Flags().StringVar(&product.Brand, "brand", "", "品牌")
	cmd.Flags().StringVar(&product.Category, "category", "其他", "类目")
	cmd.Flags().StringVar(&product.Material, "material", "", "材质")
	cmd.Flags().StringVar(&product.Color, "color", "", "颜色")
	cmd.Flags().StringVar(&product.TargetAudience, "audience", "", "适用人群")
	cmd.Flags().StringVar(&opts.StyleID, "style", "", "文案风格: funny|practical|emotional|recommendation|story|comparison")
	cmd.Flags().StringVar(&length, "length", "", "目标长度: short|medium|long，默认 medium")
	cmd.Flags().BoolVar(&opts.IncludeHashtags, "hashtags", false, "生成话题标签")
	_ = cmd.MarkFlagRequired("name")

	return cmd
}

// streamTikTok 把 Relay 写入管道，再用 sse.Reader 逐个消费事件
func streamTikTok(ctx context.Context, svc *service.TikTokService, p *model.Product, opts model.TikTokCopyOptions, out io.Writer) error {
	pr, pw := io.Pipe()
	go func() {
		_ = sse.Relay(ctx, sse.NewWriter(pw), p.ID, func(ctx context.Context, emit func(string)) (interface{}, error) {
			return svc.Stream(ctx, p, opts, emit)
		})
		pw.Close()
	}()
	defer pr.Close()

	reader := sse.NewReader(pr)
	for {
		ev, err := reader.Next()
		if errors.Is(err, io.EOF) {
			return errors.New("事件流意外结束")
		}
		if err != nil {
			return err
		}

		switch ev.Type {
		case sse.EventStreaming:
			fmt.Fprint(out, ev.Text)
		case sse.EventComplete:
			var result model.TikTokCopy
			if err := json.Unmarshal(ev.Result, &result); err != nil {
				return err
			}
			pretty, _ := json.MarshalIndent(result, "", "  ")
			fmt.Fprintf(out, "\n\n%s\n", pretty)
			return nil
		case sse.EventError:
			return errors.New(ev.Error)
		}
	}
}

// newDeepSeekSource 文本生成客户端，serve 与 tiktok 共用
func newDeepSeekSource(cfg *config.Config, logger *zap.Logger) service.ChatSource {
	return service.NewChatSource(llm.NewClient(llm.Config{
		Provider:       "DeepSeek",
		APIKey:         cfg.DeepSeek.APIKey,
		APIKeyEnv:      "DEEPSEEK_API_KEY",
		BaseURL:        cfg.DeepSeek.BaseURL,
		Model:          cfg.DeepSeek.Model,
		ModelEnv:       "DEEPSEEK_MODEL",
		EnableThinking: cfg.DeepSeek.EnableThinking,
		Timeout:        cfg.DeepSeek.Timeout,
	}, logger))
}

// newTokenCmd 签发运营 Token
func newTokenCmd(envFiles *[]string) *cobra.Command {
	var (
		operator string
		ttl      time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "签发运营人员访问令牌 (需要 AUTH_JWT_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load(*envFiles...)
			if ttl == 0 {
				ttl = cfg.Auth.TokenTTL
			}

			token, err := middleware.GenerateToken(middleware.JWTConfig{
				SecretKey: cfg.Auth.JWTSecret,
				TokenTTL:  ttl,
			}, operator)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}

	cmd.Flags().StringVar(&operator, "user", "", "运营人员名称")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "有效期，默认读取 AUTH_TOKEN_TTL")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

// newLogger 开发环境输出可读日志，其余为 JSON
func newLogger(cfg config.ServerConfig) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if cfg.IsDevelopment() {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"interview-agent-go/internal/agent"
	"interview-agent-go/internal/api/handler"
	"interview-agent-go/internal/api/router"
	"interview-agent-go/internal/config"
	"interview-agent-go/internal/logger"
	"interview-agent-go/internal/parser"
	"interview-agent-go/internal/storage"
	"interview-agent-go/internal/tracing"
	"interview-agent-go/pkg/ratelimit"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/hertz/pkg/app/server"
	glog "github.com/cloudwego/hertz/pkg/common/hlog"
	hertzadapter "github.com/hertz-contrib/logger/zerolog"
	hertztracing "github.com/hertz-contrib/obs-opentelemetry/tracing"
	"github.com/spf13/pflag"
)

func main() {
	var configPath string
	pflag.StringVarP(&configPath, "config", "c", "internal/config/config.yaml", "配置文件路径")
	pflag.Parse()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("加载配置失败")
	}

	logger.Init(logger.Config{
		Level:        cfg.Logger.Level,
		Format:       cfg.Logger.Format,
		TimeFormat:   cfg.Logger.TimeFormat,
		ReportCaller: cfg.Logger.ReportCaller,
	})
	glog.SetLogger(hertzadapter.From(logger.Logger))
	logger.Info().Str("config_path", configPath).Msg("配置加载成功")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	shutdownTracing, err := tracing.Init(ctx, &cfg.Tracing)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化链路追踪失败")
	}
	defer func() {
		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancelShutdown()
		if err := shutdownTracing(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("关闭链路追踪失败")
		}
	}()

	storageManager, err := storage.NewStorage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化存储失败")
	}
	defer storageManager.Close()

	if err := storageManager.MySQL.AutoMigrate(); err != nil {
		logger.Fatal().Err(err).Msg("数据库表迁移失败")
	}
	logger.Info().Msg("存储服务初始化成功")

	chatModel, err := agentChatModel(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化LLM聊天模型失败")
	}

	pdfExtractor, err := parser.NewEinoPDFTextExtractor(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("创建PDF提取器失败")
	}

	questionGenerator, err := parser.NewQuestionGenerator(chatModel, &cfg.Interview)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化问题生成器失败")
	}
	answerEvaluator, err := parser.NewAnswerEvaluator(chatModel, &cfg.Interview)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化回答评估器失败")
	}
	transcriber, err := parser.NewGroqWhisperTranscriber(cfg.Groq.APIKey, cfg.Groq.WhisperAPIURL, cfg.Groq.WhisperModel)
	if err != nil {
		logger.Fatal().Err(err).Msg("初始化语音转写器失败")
	}
	logger.Info().Str("model", cfg.Groq.Model).Str("whisper_model", cfg.Groq.WhisperModel).Msg("模型适配器初始化成功")

	// Redis与RabbitMQ可选，缺席时对应能力降级
	var deduper handler.FileDeduper
	if storageManager.Redis != nil {
		deduper = storageManager.Redis
	}
	var publisher storage.EventPublisher
	if storageManager.RabbitMQ != nil {
		publisher = storageManager.RabbitMQ
	}

	interviewHandler := handler.NewInterviewHandler(
		cfg,
		storageManager.MySQL,
		storageManager.MinIO,
		pdfExtractor,
		questionGenerator,
		answerEvaluator,
		transcriber,
		deduper,
		publisher,
	)
	stressHandler := handler.NewStressHandler(cfg, storageManager.MySQL, storageManager.MinIO, transcriber)

	tracer, tracerCfg := hertztracing.NewServerTracer()
	h := server.New(
		tracer,
		server.WithHostPorts(cfg.Server.Address),
		server.WithHandleMethodNotAllowed(true),
	)
	h.Use(hertztracing.ServerMiddleware(tracerCfg))

	router.RegisterRoutes(h, cfg, interviewHandler, stressHandler)
	logger.Info().Str("address", cfg.Server.Address).Msg("HTTP服务器启动中")

	go func() {
		if err := h.Run(); err != nil {
			logger.Fatal().Err(err).Msg("启动HTTP服务器失败")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("接收到终止信号，正在优雅退出")

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := h.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("服务器关闭失败")
	}
	logger.Info().Msg("优雅退出完成")
}

// agentChatModel 按配置构造Groq聊天模型，配置了QPM时套一层限流代理
func agentChatModel(cfg *config.Config) (model.ChatModel, error) {
	var options []agent.GroqOption
	if cfg.Groq.MaxTokens > 0 {
		options = append(options, agent.WithMaxTokens(cfg.Groq.MaxTokens))
	}
	if cfg.Groq.TimeoutSecs > 0 {
		options = append(options, agent.WithHTTPTimeout(time.Duration(cfg.Groq.TimeoutSecs)*time.Second))
	}
	chatModel, err := agent.NewGroqChatModel(cfg.Groq.APIKey, cfg.Groq.Model, cfg.Groq.APIURL, options...)
	if err != nil {
		return nil, err
	}
	if cfg.Groq.QPM > 0 {
		return ratelimit.NewRateLimitedChatModel(chatModel, cfg.Groq.QPM), nil
	}
	return chatModel, nil
}

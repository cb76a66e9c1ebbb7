package router

import (
	"context"
	"errors"
	"strconv"

	"interview-agent-go/internal/api/handler"
	"interview-agent-go/internal/config"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/app/server"
	"github.com/cloudwego/hertz/pkg/common/utils"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
	"github.com/hertz-contrib/keyauth"
)

// RegisterRoutes 注册 API 路由
func RegisterRoutes(h *server.Hertz, cfg *config.Config, interviewHandler *handler.InterviewHandler, stressHandler *handler.StressHandler) {
	api := h.Group("/api/v1")

	// 配置了API Key时启用鉴权，健康检查除外
	if cfg.Server.APIKey != "" {
		api.Use(keyauth.New(
			keyauth.WithKeyLookUp("header:Authorization", "Bearer"),
			keyauth.WithValidator(func(ctx context.Context, c *app.RequestContext, key string) (bool, error) {
				return key == cfg.Server.APIKey, nil
			}),
		))
	}

	interview := api.Group("/interview")

	interview.POST("/upload-resume/:user_id", func(c context.Context, ctx *app.RequestContext) {
		userID := ctx.Param("user_id")

		fileHeader, err := ctx.FormFile("file")
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "文件未找到"})
			return
		}
		file, err := fileHeader.Open()
		if err != nil {
			ctx.JSON(consts.StatusInternalServerError, utils.H{"error": "打开文件失败"})
			return
		}
		defer file.Close()

		resp, err := interviewHandler.HandleResumeUpload(c, userID, fileHeader.Filename, file)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	interview.POST("/generate-questions/:user_id/:resume_id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := interviewHandler.HandleGenerateQuestions(c, ctx.Param("user_id"), ctx.Param("resume_id"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	interview.GET("/next-question/:session_id/:question_number", func(c context.Context, ctx *app.RequestContext) {
		questionNumber, err := strconv.Atoi(ctx.Param("question_number"))
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "question_number必须是整数"})
			return
		}

		resp, err := interviewHandler.HandleNextQuestion(c, ctx.Param("session_id"), questionNumber)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	interview.POST("/submit-answer/:session_id/:question_number", func(c context.Context, ctx *app.RequestContext) {
		questionNumber, err := strconv.Atoi(ctx.Param("question_number"))
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "question_number必须是整数"})
			return
		}

		resp, err := interviewHandler.HandleSubmitAnswer(c, ctx.Param("session_id"), questionNumber)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	interview.GET("/final-report/:session_id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := interviewHandler.HandleFinalReport(c, ctx.Param("session_id"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	interview.GET("/user-summary/:user_id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := interviewHandler.HandleUserSummary(c, ctx.Param("user_id"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	stressGroup := api.Group("/stress")

	stressGroup.POST("/analyze-stress/:session_id/:question_number", func(c context.Context, ctx *app.RequestContext) {
		questionNumber, err := strconv.Atoi(ctx.Param("question_number"))
		if err != nil {
			ctx.JSON(consts.StatusBadRequest, utils.H{"error": "question_number必须是整数"})
			return
		}

		// 录音时长由前端提供，缺省按60秒
		duration := 60.0
		if raw := ctx.Query("duration"); raw != "" {
			parsed, parseErr := strconv.ParseFloat(raw, 64)
			if parseErr != nil {
				ctx.JSON(consts.StatusBadRequest, utils.H{"error": "duration必须是数字"})
				return
			}
			duration = parsed
		}

		resp, err := stressHandler.HandleAnalyzeStress(c, ctx.Param("session_id"), questionNumber, duration)
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	stressGroup.GET("/average-stress/:session_id", func(c context.Context, ctx *app.RequestContext) {
		resp, err := stressHandler.HandleAverageStress(c, ctx.Param("session_id"))
		if err != nil {
			writeError(ctx, err)
			return
		}
		ctx.JSON(consts.StatusOK, resp)
	})

	// 健康检查不走鉴权
	h.GET("/api/v1/health", func(c context.Context, ctx *app.RequestContext) {
		ctx.JSON(consts.StatusOK, utils.H{"status": "ok"})
	})
}

// writeError 把领域错误映射为HTTP状态码
func writeError(ctx *app.RequestContext, err error) {
	switch {
	case errors.Is(err, handler.ErrInvalidIdentifier),
		errors.Is(err, handler.ErrInvalidFileType),
		errors.Is(err, handler.ErrEmptyAudio):
		ctx.JSON(consts.StatusBadRequest, utils.H{"error": err.Error()})
	case errors.Is(err, handler.ErrResumeNotFound),
		errors.Is(err, handler.ErrSessionNotFound),
		errors.Is(err, handler.ErrQuestionNotFound),
		errors.Is(err, handler.ErrAudioNotFound):
		ctx.JSON(consts.StatusNotFound, utils.H{"error": err.Error()})
	default:
		ctx.JSON(consts.StatusInternalServerError, utils.H{"error": err.Error()})
	}
}

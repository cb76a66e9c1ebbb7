package handler

import (
	"context"
	"fmt"
	"time"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/logger"
	"interview-agent-go/internal/storage/models"
	"interview-agent-go/internal/stress"

	googleuuid "github.com/google/uuid"
)

// StressStore 压力分析所需的数据库操作
type StressStore interface {
	UpsertStressAnalysis(ctx context.Context, analysis *models.StressAnalysis) error
	ListStressAnalyses(ctx context.Context, sessionID string) ([]models.StressAnalysis, error)
}

// AudioStore 压力分析所需的对象存储操作
type AudioStore interface {
	GetAnswerAudio(ctx context.Context, sessionID string, questionNumber int) ([]byte, error)
}

// StressHandler 基于语速的压力分析
type StressHandler struct {
	cfg         *config.Config
	store       StressStore
	audioStore  AudioStore
	transcriber Transcriber
}

// NewStressHandler 创建压力分析处理器
func NewStressHandler(cfg *config.Config, store StressStore, audioStore AudioStore, transcriber Transcriber) *StressHandler {
	return &StressHandler{
		cfg:         cfg,
		store:       store,
		audioStore:  audioStore,
		transcriber: transcriber,
	}
}

// StressAnalysisResponse 单条回答的压力分析响应
type StressAnalysisResponse struct {
	StressScore float64 `json:"stress_score"`
	StressLevel string  `json:"stress_level"`
	WPM         float64 `json:"wpm"`
}

// HandleAnalyzeStress 下载回答音频、转写并计算压力分数
// 固定等待一小段时间后只下载一次，与回答提交的重试策略不同
func (h *StressHandler) HandleAnalyzeStress(ctx context.Context, sessionID string, questionNumber int, duration float64) (*StressAnalysisResponse, error) {
	if err := googleuuid.Validate(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session_id=%s", ErrInvalidIdentifier, sessionID)
	}

	// 给前端直传留出落盘时间
	if delay := h.cfg.Interview.StressAudioDelay(); delay > 0 {
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	audioData, err := h.audioStore.GetAnswerAudio(ctx, sessionID, questionNumber)
	if err != nil {
		logger.Warn().Err(err).Str("session_id", sessionID).Int("question_number", questionNumber).Msg("压力分析音频不可用")
		return nil, fmt.Errorf("%w: %v", ErrAudioNotFound, err)
	}

	transcript, err := h.transcriber.Transcribe(ctx, audioData, "audio.webm")
	if err != nil {
		return nil, fmt.Errorf("转写压力分析音频失败: %w", err)
	}

	result := stress.Compute(transcript, duration)

	if err := h.persistAnalysis(ctx, sessionID, questionNumber, result); err != nil {
		// 结果照常返回，下一次分析会覆盖本次缺失的记录
		logger.Error().Err(err).Str("session_id", sessionID).Int("question_number", questionNumber).Msg("保存压力分析失败")
	}

	logger.Info().
		Str("session_id", sessionID).
		Int("question_number", questionNumber).
		Float64("stress_score", result.Score).
		Str("stress_level", result.Level).
		Float64("wpm", result.WPM).
		Msg("压力分析完成")

	return &StressAnalysisResponse{
		StressScore: result.Score,
		StressLevel: result.Level,
		WPM:         result.WPM,
	}, nil
}

func (h *StressHandler) persistAnalysis(ctx context.Context, sessionID string, questionNumber int, result stress.Result) error {
	individual, err := models.MetricScoresToJSON([]models.MetricScore{
		{Metric: "wpm", Value: result.WPM, Score: result.Score},
	})
	if err != nil {
		return fmt.Errorf("序列化指标明细失败: %w", err)
	}

	return h.store.UpsertStressAnalysis(ctx, &models.StressAnalysis{
		SessionID:        sessionID,
		QuestionNumber:   questionNumber,
		StressScore:      result.Score,
		StressLevel:      result.Level,
		IndividualScores: individual,
	})
}

// AverageStressResponse 整场面试的平均压力响应
type AverageStressResponse struct {
	AverageStress      float64   `json:"average_stress"`
	AverageStressLevel string    `json:"average_stress_level"`
	IndividualScores   []float64 `json:"individual_scores"`
}

// HandleAverageStress 计算会话所有压力记录的平均值
// 无记录时返回中性默认值而非404
func (h *StressHandler) HandleAverageStress(ctx context.Context, sessionID string) (*AverageStressResponse, error) {
	if err := googleuuid.Validate(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session_id=%s", ErrInvalidIdentifier, sessionID)
	}

	analyses, err := h.store.ListStressAnalyses(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("查询压力分析记录失败: %w", err)
	}

	scores := make([]float64, 0, len(analyses))
	for _, a := range analyses {
		scores = append(scores, a.StressScore)
	}

	avg, level := stress.Average(scores)
	logger.Info().Str("session_id", sessionID).Float64("average_stress", avg).Str("level", level).Msg("平均压力计算完成")

	return &AverageStressResponse{
		AverageStress:      avg,
		AverageStressLevel: level,
		IndividualScores:   scores,
	}, nil
}

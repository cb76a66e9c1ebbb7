package handler

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/logger"
	"interview-agent-go/internal/parser"
	"interview-agent-go/internal/storage"
	"interview-agent-go/internal/storage/models"
	"interview-agent-go/internal/stress"
	"interview-agent-go/pkg/utils"

	"github.com/gofrs/uuid/v5"
	googleuuid "github.com/google/uuid"
	"gorm.io/gorm"
)

// 领域错误，由路由层映射为HTTP状态码
var (
	ErrInvalidIdentifier = errors.New("标识符必须是合法的UUID")
	ErrInvalidFileType   = errors.New("仅支持PDF文件")
	ErrResumeNotFound    = errors.New("简历不存在")
	ErrSessionNotFound   = errors.New("会话不存在")
	ErrQuestionNotFound  = errors.New("问题不存在")
	ErrAudioNotFound     = errors.New("回答音频不存在")
	ErrEmptyAudio        = errors.New("上传的回答音频为空")
)

// 事件发布参数
const (
	interviewEventExchange   = "interview.events"
	routingKeyResumeUploaded = "resume.uploaded"
	routingKeyAnswerSubmit   = "answer.submitted"
)

// InterviewStore 面试主流程所需的数据库操作
type InterviewStore interface {
	UpsertUser(ctx context.Context, userID string, role string) error
	InsertResume(ctx context.Context, resume *models.InterviewResume) error
	GetResumeByID(ctx context.Context, resumeID string) (*models.InterviewResume, error)
	GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error)
	CreateSessionWithQuestions(ctx context.Context, session *models.InterviewSession, questions []models.InterviewQuestion) error
	GetQuestion(ctx context.Context, sessionID string, questionNumber int) (*models.InterviewQuestion, error)
	CountQuestions(ctx context.Context, sessionID string) (int64, error)
	ListQuestions(ctx context.Context, sessionID string) ([]models.InterviewQuestion, error)
	UpsertAnswer(ctx context.Context, answer *models.InterviewAnswer) error
	MarkQuestionAnswered(ctx context.Context, sessionID string, questionNumber int) error
	ListAnswers(ctx context.Context, sessionID string) ([]models.InterviewAnswer, error)
	ListStressAnalyses(ctx context.Context, sessionID string) ([]models.StressAnalysis, error)
	ListSessionsByUser(ctx context.Context, userID string) ([]models.InterviewSession, error)
}

// ObjectStore 面试主流程所需的对象存储操作
type ObjectStore interface {
	UploadResumeFile(ctx context.Context, objectKey string, reader io.Reader, fileSize int64) (string, error)
	GetResumeFile(ctx context.Context, objectKey string) ([]byte, error)
	GetAnswerAudio(ctx context.Context, sessionID string, questionNumber int) ([]byte, error)
}

// ResumeTextExtractor 简历PDF文本提取
type ResumeTextExtractor interface {
	ExtractTextFromBytes(ctx context.Context, data []byte, uri string) (string, error)
}

// QuestionGenerator 面试问题生成（绝不失败，内部兜底）
type QuestionGenerator interface {
	GenerateQuestions(ctx context.Context, resumeText string) []parser.GeneratedQuestion
}

// AnswerEvaluator 回答评估（绝不失败，内部兜底）
type AnswerEvaluator interface {
	EvaluateAnswer(ctx context.Context, questionText, answerText string) parser.Evaluation
}

// Transcriber 语音转写，失败向上传播
type Transcriber interface {
	Transcribe(ctx context.Context, audioData []byte, fileName string) (string, error)
}

// FileDeduper 原始文件MD5去重（可选，nil时跳过）
type FileDeduper interface {
	CheckResumeFileMD5Exists(ctx context.Context, md5Hex string) (bool, error)
	AddResumeFileMD5(ctx context.Context, md5Hex string) error
}

// InterviewHandler 面试编排器：驱动简历摄入、问题生成、回答提交与报告聚合
type InterviewHandler struct {
	cfg         *config.Config
	store       InterviewStore
	objectStore ObjectStore
	extractor   ResumeTextExtractor
	generator   QuestionGenerator
	evaluator   AnswerEvaluator
	transcriber Transcriber

	// 可选依赖，nil时相应能力降级
	deduper   FileDeduper
	publisher storage.EventPublisher
}

// NewInterviewHandler 创建面试编排器
func NewInterviewHandler(
	cfg *config.Config,
	store InterviewStore,
	objectStore ObjectStore,
	extractor ResumeTextExtractor,
	generator QuestionGenerator,
	evaluator AnswerEvaluator,
	transcriber Transcriber,
	deduper FileDeduper,
	publisher storage.EventPublisher,
) *InterviewHandler {
	return &InterviewHandler{
		cfg:         cfg,
		store:       store,
		objectStore: objectStore,
		extractor:   extractor,
		generator:   generator,
		evaluator:   evaluator,
		transcriber: transcriber,
		deduper:     deduper,
		publisher:   publisher,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	Status   string `json:"status"`
	ResumeID string `json:"resume_id"`
	UserID   string `json:"user_id"`
}

// HandleResumeUpload 处理简历上传：校验、去重、上传对象存储、登记元数据
func (h *InterviewHandler) HandleResumeUpload(ctx context.Context, userID string, fileName string, reader io.Reader) (*ResumeUploadResponse, error) {
	if err := googleuuid.Validate(userID); err != nil {
		return nil, fmt.Errorf("%w: user_id=%s", ErrInvalidIdentifier, userID)
	}
	if !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return nil, fmt.Errorf("%w: %s", ErrInvalidFileType, fileName)
	}

	fileBytes, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("读取上传文件内容失败: %w", err)
	}

	// 原始文件MD5去重，Redis不可用时跳过
	fileMD5 := utils.CalculateMD5(fileBytes)
	if h.deduper != nil {
		exists, dedupErr := h.deduper.CheckResumeFileMD5Exists(ctx, fileMD5)
		if dedupErr != nil {
			logger.Warn().Err(dedupErr).Str("md5", fileMD5).Msg("查询文件MD5去重集合失败，跳过去重")
		} else if exists {
			logger.Info().Str("md5", fileMD5).Str("filename", fileName).Msg("检测到重复简历文件，跳过处理")
			return &ResumeUploadResponse{Status: "DUPLICATE_FILE_SKIPPED", UserID: userID}, nil
		}
	}

	if err := h.store.UpsertUser(ctx, userID, "student"); err != nil {
		return nil, fmt.Errorf("登记用户失败: %w", err)
	}

	// <user_id>/<原文件名去后缀>_<UTC时间戳>.pdf
	baseName := strings.TrimSuffix(fileName, ".pdf")
	objectKey := fmt.Sprintf("%s/%s_%s.pdf", userID, baseName, utils.UTCTimestamp(time.Now()))

	filePath, err := h.objectStore.UploadResumeFile(ctx, objectKey, bytes.NewReader(fileBytes), int64(len(fileBytes)))
	if err != nil {
		return nil, fmt.Errorf("上传简历到对象存储失败: %w", err)
	}

	resumeUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成简历ID失败: %w", err)
	}

	resume := &models.InterviewResume{
		ResumeID:         resumeUUID.String(),
		UserID:           userID,
		OriginalFilename: fileName,
		FilePathOSS:      filePath,
		FileMD5:          fileMD5,
	}
	if err := h.store.InsertResume(ctx, resume); err != nil {
		return nil, fmt.Errorf("登记简历元数据失败: %w", err)
	}

	if h.deduper != nil {
		if err := h.deduper.AddResumeFileMD5(ctx, fileMD5); err != nil {
			// 去重集合写入失败不影响主流程，下次重复文件会被再次处理
			logger.Warn().Err(err).Str("md5", fileMD5).Msg("写入文件MD5去重集合失败")
		}
	}

	h.publishEvent(ctx, resolveRoutingKey(h.cfg.RabbitMQ.ResumeUploadedRoutingKey, routingKeyResumeUploaded), storage.ResumeUploadedEvent{
		ResumeID:         resume.ResumeID,
		UserID:           userID,
		OriginalFilename: fileName,
		FilePathOSS:      filePath,
		UploadedAt:       time.Now().UTC(),
	})

	logger.Info().Str("user_id", userID).Str("resume_id", resume.ResumeID).Str("file_path", filePath).Msg("简历上传完成")
	return &ResumeUploadResponse{Status: "Resume uploaded", ResumeID: resume.ResumeID, UserID: userID}, nil
}

// GenerateQuestionsResponse 问题生成响应
type GenerateQuestionsResponse struct {
	Status    string   `json:"status"`
	SessionID string   `json:"session_id"`
	Questions []string `json:"questions"`
}

// HandleGenerateQuestions 下载简历、提取文本、生成问题并创建会话
// 问题生成适配器永不失败：模型或解析故障时落库兜底问题，面试仍可进行
func (h *InterviewHandler) HandleGenerateQuestions(ctx context.Context, userID string, resumeID string) (*GenerateQuestionsResponse, error) {
	if err := googleuuid.Validate(userID); err != nil {
		return nil, fmt.Errorf("%w: user_id=%s", ErrInvalidIdentifier, userID)
	}
	if err := googleuuid.Validate(resumeID); err != nil {
		return nil, fmt.Errorf("%w: resume_id=%s", ErrInvalidIdentifier, resumeID)
	}

	resume, err := h.store.GetResumeByID(ctx, resumeID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: resume_id=%s", ErrResumeNotFound, resumeID)
		}
		return nil, fmt.Errorf("查询简历记录失败: %w", err)
	}

	fileBytes, err := h.objectStore.GetResumeFile(ctx, resume.FilePathOSS)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, fmt.Errorf("%w: 简历文件缺失 %s", ErrResumeNotFound, resume.FilePathOSS)
		}
		return nil, fmt.Errorf("下载简历文件失败: %w", err)
	}

	resumeText, err := h.extractor.ExtractTextFromBytes(ctx, fileBytes, resume.FilePathOSS)
	if err != nil {
		return nil, fmt.Errorf("提取简历文本失败: %w", err)
	}

	generated := h.generator.GenerateQuestions(ctx, resumeText)

	sessionUUID, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("生成会话ID失败: %w", err)
	}

	session := &models.InterviewSession{
		SessionID: sessionUUID.String(),
		UserID:    userID,
		ResumeID:  resumeID,
	}
	questions := make([]models.InterviewQuestion, len(generated))
	for i, q := range generated {
		questions[i] = models.InterviewQuestion{
			QuestionText: q.Text,
			Category:     q.Category,
		}
	}

	if err := h.store.CreateSessionWithQuestions(ctx, session, questions); err != nil {
		return nil, fmt.Errorf("创建面试会话失败: %w", err)
	}

	questionTexts := make([]string, len(generated))
	for i, q := range generated {
		questionTexts[i] = q.Text
	}

	logger.Info().Str("session_id", session.SessionID).Int("question_count", len(generated)).Msg("面试问题生成完成")
	return &GenerateQuestionsResponse{
		Status:    "Questions generated",
		SessionID: session.SessionID,
		Questions: questionTexts,
	}, nil
}

// NextQuestionResponse 单题查询响应
type NextQuestionResponse struct {
	Status         string `json:"status"`
	Question       string `json:"question"`
	Category       string `json:"category"`
	QuestionNumber int    `json:"question_number"`
	TotalQuestions int64  `json:"total_questions"`
}

// HandleNextQuestion 按编号取题，编号越界视为面试结束
func (h *InterviewHandler) HandleNextQuestion(ctx context.Context, sessionID string, questionNumber int) (*NextQuestionResponse, error) {
	if err := googleuuid.Validate(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session_id=%s", ErrInvalidIdentifier, sessionID)
	}

	question, err := h.store.GetQuestion(ctx, sessionID, questionNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			logger.Info().Str("session_id", sessionID).Int("question_number", questionNumber).Msg("问题不存在，视为面试结束")
			return nil, fmt.Errorf("%w: 面试已结束", ErrQuestionNotFound)
		}
		return nil, fmt.Errorf("查询问题失败: %w", err)
	}

	total, err := h.store.CountQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &NextQuestionResponse{
		Status:         "Question retrieved",
		Question:       question.QuestionText,
		Category:       question.Category,
		QuestionNumber: questionNumber,
		TotalQuestions: total,
	}, nil
}

// SubmitAnswerResponse 回答提交响应
type SubmitAnswerResponse struct {
	Status   string `json:"status"`
	Score    int    `json:"score"`
	Feedback string `json:"feedback"`
}

// HandleSubmitAnswer 回答提交：下载音频（带重试）、转写、评估、落库
// 音频由前端直传对象存储，可能滞后于本请求，因此缺失时按固定间隔重试
func (h *InterviewHandler) HandleSubmitAnswer(ctx context.Context, sessionID string, questionNumber int) (*SubmitAnswerResponse, error) {
	if err := googleuuid.Validate(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session_id=%s", ErrInvalidIdentifier, sessionID)
	}

	audioData, err := h.downloadAudioWithRetry(ctx, sessionID, questionNumber)
	if err != nil {
		return nil, err
	}
	if len(audioData) == 0 {
		logger.Error().Str("session_id", sessionID).Int("question_number", questionNumber).Msg("回答音频为空文件")
		return nil, fmt.Errorf("%w: session=%s question=%d", ErrEmptyAudio, sessionID, questionNumber)
	}

	question, err := h.store.GetQuestion(ctx, sessionID, questionNumber)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session=%s question=%d", ErrQuestionNotFound, sessionID, questionNumber)
		}
		return nil, fmt.Errorf("查询问题失败: %w", err)
	}

	// 转写失败直接传播：没有安全的默认转写文本
	answerText, err := h.transcriber.Transcribe(ctx, audioData, "audio.webm")
	if err != nil {
		return nil, fmt.Errorf("转写回答音频失败: %w", err)
	}

	evaluation := h.evaluator.EvaluateAnswer(ctx, question.QuestionText, answerText)

	answer := &models.InterviewAnswer{
		SessionID:      sessionID,
		QuestionNumber: questionNumber,
		AnswerText:     answerText,
		AudioURL:       storage.AnswerAudioObjectKey(sessionID, questionNumber),
		Score:          evaluation.Score,
		Feedback:       evaluation.Feedback,
	}
	if err := h.store.UpsertAnswer(ctx, answer); err != nil {
		return nil, fmt.Errorf("保存回答失败: %w", err)
	}

	// 回答已落库，标记失败只影响is_answered一致性，整个调用可幂等重试
	if err := h.store.MarkQuestionAnswered(ctx, sessionID, questionNumber); err != nil {
		return nil, fmt.Errorf("标记问题已回答失败: %w", err)
	}

	h.publishEvent(ctx, resolveRoutingKey(h.cfg.RabbitMQ.AnswerSubmittedRoutingKey, routingKeyAnswerSubmit), storage.AnswerSubmittedEvent{
		SessionID:      sessionID,
		QuestionNumber: questionNumber,
		Score:          evaluation.Score,
		SubmittedAt:    time.Now().UTC(),
	})

	logger.Info().Str("session_id", sessionID).Int("question_number", questionNumber).Int("score", evaluation.Score).Msg("回答提交完成")
	return &SubmitAnswerResponse{
		Status:   "Answer submitted",
		Score:    evaluation.Score,
		Feedback: evaluation.Feedback,
	}, nil
}

// downloadAudioWithRetry 下载回答音频，缺失时最多额外重试cfg.Interview.AudioMaxRetries次
func (h *InterviewHandler) downloadAudioWithRetry(ctx context.Context, sessionID string, questionNumber int) ([]byte, error) {
	maxRetries := h.cfg.Interview.AudioMaxRetries
	retryDelay := h.cfg.Interview.AudioRetryDelay()

	var lastErr error
	for attempt := 1; attempt <= maxRetries+1; attempt++ {
		audioData, err := h.objectStore.GetAnswerAudio(ctx, sessionID, questionNumber)
		if err == nil {
			logger.Info().Str("session_id", sessionID).Int("question_number", questionNumber).Int("attempt", attempt).Msg("回答音频下载成功")
			return audioData, nil
		}

		lastErr = err
		logger.Warn().Err(err).Str("session_id", sessionID).Int("question_number", questionNumber).Int("attempt", attempt).Msg("回答音频暂不可用")

		if attempt <= maxRetries {
			timer := time.NewTimer(retryDelay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return nil, ctx.Err()
			case <-timer.C:
			}
		}
	}

	logger.Error().Err(lastErr).Str("session_id", sessionID).Int("question_number", questionNumber).Msg("回答音频重试耗尽")
	return nil, fmt.Errorf("%w: %v", ErrAudioNotFound, lastErr)
}

// publishEvent 尽力而为地发布领域事件，失败只记录
func (h *InterviewHandler) publishEvent(ctx context.Context, routingKey string, event interface{}) {
	if h.publisher == nil {
		return
	}
	exchange := h.cfg.RabbitMQ.InterviewEventsExchange
	if exchange == "" {
		exchange = interviewEventExchange
	}
	if err := h.publisher.EnsureExchange(exchange, "topic", true); err != nil {
		logger.Warn().Err(err).Str("exchange", exchange).Msg("声明事件交换机失败")
		return
	}
	if err := h.publisher.PublishJSON(ctx, exchange, routingKey, event, true); err != nil {
		logger.Warn().Err(err).Str("routing_key", routingKey).Msg("发布领域事件失败")
	}
}

func resolveRoutingKey(configured, fallback string) string {
	if configured != "" {
		return configured
	}
	return fallback
}

// QuestionReport 报告中的单题明细
type QuestionReport struct {
	QuestionNumber int      `json:"question_number"`
	Question       string   `json:"question"`
	Category       string   `json:"category"`
	IsAnswered     bool     `json:"is_answered"`
	AnswerText     string   `json:"answer_text,omitempty"`
	Score          *int     `json:"score,omitempty"`
	Feedback       string   `json:"feedback,omitempty"`
	StressScore    *float64 `json:"stress_score,omitempty"`
	StressLevel    string   `json:"stress_level,omitempty"`
}

// FinalReportResponse 单场面试的汇总报告
type FinalReportResponse struct {
	Status            string           `json:"status"`
	SessionID         string           `json:"session_id"`
	TotalQuestions    int              `json:"total_questions"`
	AnsweredQuestions int              `json:"answered_questions"`
	AverageScore      float64          `json:"average_score"`
	AverageStress     float64          `json:"average_stress"`
	StressLevel       string           `json:"stress_level"`
	Questions         []QuestionReport `json:"questions"`
}

// HandleFinalReport 聚合一场面试的全部问题、回答与压力记录
// 纯读取聚合，可随时幂等重算
func (h *InterviewHandler) HandleFinalReport(ctx context.Context, sessionID string) (*FinalReportResponse, error) {
	if err := googleuuid.Validate(sessionID); err != nil {
		return nil, fmt.Errorf("%w: session_id=%s", ErrInvalidIdentifier, sessionID)
	}

	if _, err := h.store.GetSession(ctx, sessionID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: session_id=%s", ErrSessionNotFound, sessionID)
		}
		return nil, fmt.Errorf("查询会话失败: %w", err)
	}

	report, err := h.buildSessionReport(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	report.Status = "Report generated"
	return report, nil
}

// buildSessionReport 构建单场面试的报告主体
func (h *InterviewHandler) buildSessionReport(ctx context.Context, sessionID string) (*FinalReportResponse, error) {
	questions, err := h.store.ListQuestions(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	answers, err := h.store.ListAnswers(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	analyses, err := h.store.ListStressAnalyses(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	answerByNumber := make(map[int]models.InterviewAnswer, len(answers))
	for _, a := range answers {
		answerByNumber[a.QuestionNumber] = a
	}
	stressByNumber := make(map[int]models.StressAnalysis, len(analyses))
	for _, s := range analyses {
		stressByNumber[s.QuestionNumber] = s
	}

	var (
		items      = make([]QuestionReport, 0, len(questions))
		scoreSum   int
		scoreCount int
	)
	for _, q := range questions {
		item := QuestionReport{
			QuestionNumber: q.QuestionNumber,
			Question:       q.QuestionText,
			Category:       q.Category,
			IsAnswered:     q.IsAnswered,
		}
		if a, ok := answerByNumber[q.QuestionNumber]; ok {
			score := a.Score
			item.AnswerText = a.AnswerText
			item.Score = &score
			item.Feedback = a.Feedback
			scoreSum += a.Score
			scoreCount++
		}
		if s, ok := stressByNumber[q.QuestionNumber]; ok {
			stressScore := s.StressScore
			item.StressScore = &stressScore
			item.StressLevel = s.StressLevel
		}
		items = append(items, item)
	}

	averageScore := 0.0
	if scoreCount > 0 {
		averageScore = math.Round(float64(scoreSum)/float64(scoreCount)*100) / 100
	}

	stressScores := make([]float64, 0, len(analyses))
	for _, s := range analyses {
		stressScores = append(stressScores, s.StressScore)
	}
	averageStress, stressLevel := stress.Average(stressScores)

	return &FinalReportResponse{
		SessionID:         sessionID,
		TotalQuestions:    len(questions),
		AnsweredQuestions: len(answers),
		AverageScore:      averageScore,
		AverageStress:     averageStress,
		StressLevel:       stressLevel,
		Questions:         items,
	}, nil
}

// SessionSummary 用户汇总中的单场面试摘要
type SessionSummary struct {
	SessionID         string  `json:"session_id"`
	ResumeID          string  `json:"resume_id"`
	CreatedAt         string  `json:"created_at"`
	TotalQuestions    int     `json:"total_questions"`
	AnsweredQuestions int     `json:"answered_questions"`
	AverageScore      float64 `json:"average_score"`
	AverageStress     float64 `json:"average_stress"`
	StressLevel       string  `json:"stress_level"`
}

// UserSummaryResponse 用户维度的跨会话汇总
type UserSummaryResponse struct {
	Status        string           `json:"status"`
	UserID        string           `json:"user_id"`
	TotalSessions int              `json:"total_sessions"`
	AverageScore  float64          `json:"average_score"`
	Sessions      []SessionSummary `json:"sessions"`
}

// HandleUserSummary 聚合一个用户全部面试会话的表现
func (h *InterviewHandler) HandleUserSummary(ctx context.Context, userID string) (*UserSummaryResponse, error) {
	if err := googleuuid.Validate(userID); err != nil {
		return nil, fmt.Errorf("%w: user_id=%s", ErrInvalidIdentifier, userID)
	}

	sessions, err := h.store.ListSessionsByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("查询用户会话失败: %w", err)
	}

	summaries := make([]SessionSummary, 0, len(sessions))
	var scoreSum float64
	var scoredSessions int
	for _, s := range sessions {
		report, err := h.buildSessionReport(ctx, s.SessionID)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, SessionSummary{
			SessionID:         s.SessionID,
			ResumeID:          s.ResumeID,
			CreatedAt:         s.CreatedAt.UTC().Format(time.RFC3339),
			TotalQuestions:    report.TotalQuestions,
			AnsweredQuestions: report.AnsweredQuestions,
			AverageScore:      report.AverageScore,
			AverageStress:     report.AverageStress,
			StressLevel:       report.StressLevel,
		})
		if report.AnsweredQuestions > 0 {
			scoreSum += report.AverageScore
			scoredSessions++
		}
	}

	averageScore := 0.0
	if scoredSessions > 0 {
		averageScore = math.Round(scoreSum/float64(scoredSessions)*100) / 100
	}

	return &UserSummaryResponse{
		Status:        "Summary generated",
		UserID:        userID,
		TotalSessions: len(sessions),
		AverageScore:  averageScore,
		Sessions:      summaries,
	}, nil
}

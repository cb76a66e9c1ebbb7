package storage

import (
	"context"
	"fmt"
	"time"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/storage/models"
	"interview-agent-go/internal/tracing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

var mysqlTracer = otel.Tracer("interview-agent-go/storage/mysql")

type gormSpanKey struct{}

// GormTracingPlugin 是一个GORM插件，向OpenTelemetry中添加数据库操作的追踪点
type GormTracingPlugin struct {
	tracer trace.Tracer
	dbName string
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}
	return nil
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		newCtx, span := p.tracer.Start(ctx, spanName,
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		)

		// 将span保存在DB上下文中，供after回调使用
		db.Statement.Context = context.WithValue(newCtx, gormSpanKey{}, span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value(gormSpanKey{}).(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		if db.Statement.RowsAffected > 0 {
			span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))
		}
		if db.Error != nil && db.Error != gorm.ErrRecordNotFound {
			tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
		}
	}
}

// MySQL 提供面试相关数据的关系型存储
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并注册追踪插件
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database)

	gormLogLevel := logger.Warn
	if cfg.LogLevel >= 1 && cfg.LogLevel <= 4 {
		gormLogLevel = logger.LogLevel(cfg.LogLevel)
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(gormLogLevel),
	})
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	if err := db.Use(&GormTracingPlugin{tracer: mysqlTracer, dbName: cfg.Database}); err != nil {
		return nil, fmt.Errorf("注册GORM追踪插件失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层sql.DB失败: %w", err)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.ConnMaxLifetimeMinutes > 0 {
		sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	}

	return &MySQL{db: db, cfg: cfg}, nil
}

// AutoMigrate 创建或更新业务表结构
func (m *MySQL) AutoMigrate() error {
	return m.db.AutoMigrate(
		&models.InterviewUser{},
		&models.InterviewResume{},
		&models.InterviewSession{},
		&models.InterviewQuestion{},
		&models.InterviewAnswer{},
		&models.StressAnalysis{},
		&models.ResumeUpload{},
		&models.ResumeRanking{},
	)
}

// DB 暴露底层gorm.DB，用于测试或特定场景
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertUser 幂等地确保用户存在（简历永远不会引用不存在的用户）
func (m *MySQL) UpsertUser(ctx context.Context, userID string, role string) error {
	user := models.InterviewUser{UserID: userID, Role: role}
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"role"}),
	}).Create(&user).Error
	if err != nil {
		return fmt.Errorf("upsert用户 %s 失败: %w", userID, err)
	}
	return nil
}

// InsertResume 插入简历元数据记录
func (m *MySQL) InsertResume(ctx context.Context, resume *models.InterviewResume) error {
	if err := m.db.WithContext(ctx).Create(resume).Error; err != nil {
		return fmt.Errorf("插入简历记录失败: %w", err)
	}
	return nil
}

// GetResumeByID 按主键查询简历元数据，未找到时返回gorm.ErrRecordNotFound
func (m *MySQL) GetResumeByID(ctx context.Context, resumeID string) (*models.InterviewResume, error) {
	var resume models.InterviewResume
	err := m.db.WithContext(ctx).Where("resume_id = ?", resumeID).First(&resume).Error
	if err != nil {
		return nil, err
	}
	return &resume, nil
}

// GetSession 按主键查询面试会话，未找到时返回gorm.ErrRecordNotFound
func (m *MySQL) GetSession(ctx context.Context, sessionID string) (*models.InterviewSession, error) {
	var session models.InterviewSession
	err := m.db.WithContext(ctx).Where("session_id = ?", sessionID).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

// CreateSessionWithQuestions 创建会话并按顺序落库问题，编号1..N连续
func (m *MySQL) CreateSessionWithQuestions(ctx context.Context, session *models.InterviewSession, questions []models.InterviewQuestion) error {
	if err := m.db.WithContext(ctx).Create(session).Error; err != nil {
		return fmt.Errorf("创建面试会话失败: %w", err)
	}
	for i := range questions {
		questions[i].SessionID = session.SessionID
		questions[i].QuestionNumber = i + 1
	}
	if len(questions) > 0 {
		if err := m.db.WithContext(ctx).Create(&questions).Error; err != nil {
			return fmt.Errorf("批量插入面试问题失败: %w", err)
		}
	}
	return nil
}

// GetQuestion 按(session_id, question_number)查询问题
func (m *MySQL) GetQuestion(ctx context.Context, sessionID string, questionNumber int) (*models.InterviewQuestion, error) {
	var question models.InterviewQuestion
	err := m.db.WithContext(ctx).
		Where("session_id = ? AND question_number = ?", sessionID, questionNumber).
		First(&question).Error
	if err != nil {
		return nil, err
	}
	return &question, nil
}

// CountQuestions 统计会话的问题总数
func (m *MySQL) CountQuestions(ctx context.Context, sessionID string) (int64, error) {
	var count int64
	err := m.db.WithContext(ctx).Model(&models.InterviewQuestion{}).
		Where("session_id = ?", sessionID).Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("统计问题数量失败: %w", err)
	}
	return count, nil
}

// ListQuestions 按编号升序返回会话的全部问题
func (m *MySQL) ListQuestions(ctx context.Context, sessionID string) ([]models.InterviewQuestion, error) {
	var questions []models.InterviewQuestion
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number ASC").
		Find(&questions).Error
	if err != nil {
		return nil, fmt.Errorf("查询会话问题失败: %w", err)
	}
	return questions, nil
}

// UpsertAnswer 以(session_id, question_number)为冲突键写入回答，重复提交覆盖旧记录
func (m *MySQL) UpsertAnswer(ctx context.Context, answer *models.InterviewAnswer) error {
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"answer_text", "audio_url", "score", "feedback"}),
	}).Create(answer).Error
	if err != nil {
		return fmt.Errorf("upsert回答记录失败: %w", err)
	}
	return nil
}

// MarkQuestionAnswered 将问题标记为已回答
func (m *MySQL) MarkQuestionAnswered(ctx context.Context, sessionID string, questionNumber int) error {
	err := m.db.WithContext(ctx).Model(&models.InterviewQuestion{}).
		Where("session_id = ? AND question_number = ?", sessionID, questionNumber).
		Update("is_answered", true).Error
	if err != nil {
		return fmt.Errorf("标记问题已回答失败: %w", err)
	}
	return nil
}

// ListAnswers 按编号升序返回会话的全部回答
func (m *MySQL) ListAnswers(ctx context.Context, sessionID string) ([]models.InterviewAnswer, error) {
	var answers []models.InterviewAnswer
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number ASC").
		Find(&answers).Error
	if err != nil {
		return nil, fmt.Errorf("查询会话回答失败: %w", err)
	}
	return answers, nil
}

// UpsertStressAnalysis 以(session_id, question_number)为冲突键写入压力分析结果
func (m *MySQL) UpsertStressAnalysis(ctx context.Context, analysis *models.StressAnalysis) error {
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}, {Name: "question_number"}},
		DoUpdates: clause.AssignmentColumns([]string{"stress_score", "stress_level", "individual_scores"}),
	}).Create(analysis).Error
	if err != nil {
		return fmt.Errorf("upsert压力分析记录失败: %w", err)
	}
	return nil
}

// ListStressAnalyses 按编号升序返回会话的全部压力分析记录
func (m *MySQL) ListStressAnalyses(ctx context.Context, sessionID string) ([]models.StressAnalysis, error) {
	var analyses []models.StressAnalysis
	err := m.db.WithContext(ctx).
		Where("session_id = ?", sessionID).
		Order("question_number ASC").
		Find(&analyses).Error
	if err != nil {
		return nil, fmt.Errorf("查询压力分析记录失败: %w", err)
	}
	return analyses, nil
}

// ListSessionsByUser 按创建时间升序返回用户的全部会话
func (m *MySQL) ListSessionsByUser(ctx context.Context, userID string) ([]models.InterviewSession, error) {
	var sessions []models.InterviewSession
	err := m.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at ASC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("查询用户会话失败: %w", err)
	}
	return sessions, nil
}

// GetResumeUpload 按(file_name, job_id)反查招聘端上传记录
func (m *MySQL) GetResumeUpload(ctx context.Context, fileName string, jobID string) (*models.ResumeUpload, error) {
	var upload models.ResumeUpload
	err := m.db.WithContext(ctx).
		Where("file_name = ? AND job_id = ?", fileName, jobID).
		First(&upload).Error
	if err != nil {
		return nil, err
	}
	return &upload, nil
}

// DeleteRankings 删除指定岗位的全部既有排名行
func (m *MySQL) DeleteRankings(ctx context.Context, jobID string) error {
	err := m.db.WithContext(ctx).
		Where("job_id = ?", jobID).
		Delete(&models.ResumeRanking{}).Error
	if err != nil {
		return fmt.Errorf("删除岗位 %s 既有排名失败: %w", jobID, err)
	}
	return nil
}

// InsertRankings 批量插入新一代排名行
// 与DeleteRankings不在同一事务内，管道可从同一份分析文件幂等重跑
func (m *MySQL) InsertRankings(ctx context.Context, rankings []models.ResumeRanking) error {
	if len(rankings) == 0 {
		return nil
	}
	if err := m.db.WithContext(ctx).Create(&rankings).Error; err != nil {
		return fmt.Errorf("插入排名记录失败: %w", err)
	}
	return nil
}

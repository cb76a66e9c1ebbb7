package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

// InterviewUser 模拟面试用户表
type InterviewUser struct {
	UserID    string    `gorm:"type:char(36);primaryKey"`
	Role      string    `gorm:"type:varchar(50);default:'student'"`
	CreatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (InterviewUser) TableName() string {
	return "interview_users"
}

// InterviewResume 简历元数据表，文件本体存MinIO
type InterviewResume struct {
	ResumeID         string    `gorm:"type:char(36);primaryKey"`
	UserID           string    `gorm:"type:char(36);not null;index:idx_ir_user_id"`
	OriginalFilename string    `gorm:"type:varchar(255)"`
	FilePathOSS      string    `gorm:"type:varchar(1024);not null"`
	FileMD5          string    `gorm:"type:char(32);index:idx_ir_file_md5"`
	CreatedAt        time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	User *InterviewUser `gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (InterviewResume) TableName() string {
	return "interview_resumes"
}

// InterviewSession 面试会话表，问题生成成功后创建
type InterviewSession struct {
	SessionID string    `gorm:"type:char(36);primaryKey"`
	UserID    string    `gorm:"type:char(36);not null;index:idx_is_user_id"`
	ResumeID  string    `gorm:"type:char(36);not null;index:idx_is_resume_id"`
	CreatedAt time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	User   *InterviewUser   `gorm:"foreignKey:UserID;references:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Resume *InterviewResume `gorm:"foreignKey:ResumeID;references:ResumeID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (InterviewSession) TableName() string {
	return "interview_sessions"
}

// InterviewQuestion 面试问题表
// question_number 自1起连续编号，创建后不变
type InterviewQuestion struct {
	QuestionDBID   uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID      string    `gorm:"type:char(36);not null;uniqueIndex:idx_iq_session_number,priority:1"`
	QuestionNumber int       `gorm:"not null;uniqueIndex:idx_iq_session_number,priority:2"`
	QuestionText   string    `gorm:"type:text;not null"`
	Category       string    `gorm:"type:varchar(50);not null"` // technical/hr/situational/surprise/general
	IsAnswered     bool      `gorm:"default:false"`
	CreatedAt      time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`

	Session *InterviewSession `gorm:"foreignKey:SessionID;references:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (InterviewQuestion) TableName() string {
	return "interview_questions"
}

// InterviewAnswer 回答表，(session_id, question_number)唯一，重复提交覆盖
type InterviewAnswer struct {
	AnswerDBID     uint64    `gorm:"primaryKey;autoIncrement"`
	SessionID      string    `gorm:"type:char(36);not null;uniqueIndex:idx_ia_session_number,priority:1"`
	QuestionNumber int       `gorm:"not null;uniqueIndex:idx_ia_session_number,priority:2"`
	AnswerText     string    `gorm:"type:text"`
	AudioURL       string    `gorm:"type:varchar(1024)"`
	Score          int       `gorm:"type:int"` // 成功路径1-10，评估失败为0
	Feedback       string    `gorm:"type:text"`
	CreatedAt      time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt      time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Session *InterviewSession `gorm:"foreignKey:SessionID;references:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (InterviewAnswer) TableName() string {
	return "interview_answers"
}

// StressAnalysis 压力分析表，(session_id, question_number)唯一
// 与回答记录生命周期独立：可先于、后于或不伴随回答而存在
type StressAnalysis struct {
	AnalysisDBID     uint64         `gorm:"primaryKey;autoIncrement"`
	SessionID        string         `gorm:"type:char(36);not null;uniqueIndex:idx_sa_session_number,priority:1"`
	QuestionNumber   int            `gorm:"not null;uniqueIndex:idx_sa_session_number,priority:2"`
	StressScore      float64        `gorm:"type:float;not null"` // [0,100]
	StressLevel      string         `gorm:"type:varchar(20);not null"`
	IndividualScores datatypes.JSON `gorm:"type:json"` // 各指标明细 [{metric,value,score}]
	CreatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt        time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`

	Session *InterviewSession `gorm:"foreignKey:SessionID;references:SessionID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func (StressAnalysis) TableName() string {
	return "interview_stress_analysis"
}

// ResumeUpload 招聘端简历上传登记表，排名管道按(file_name, job_id)反查身份
type ResumeUpload struct {
	ResumeID      string    `gorm:"type:char(36);primaryKey"`
	UserID        string    `gorm:"type:char(36);index:idx_ru_user_id"`
	JobID         string    `gorm:"type:char(36);not null;uniqueIndex:idx_ru_job_file,priority:1"`
	FileName      string    `gorm:"type:varchar(255);not null;uniqueIndex:idx_ru_job_file,priority:2"`
	FilePath      string    `gorm:"type:varchar(1024)"`
	CandidateName string    `gorm:"type:varchar(255)"`
	CreatedAt     time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (ResumeUpload) TableName() string {
	return "resume_uploads"
}

// ResumeRanking 排名结果表，按job_id整体替换，不做增量合并
type ResumeRanking struct {
	RankingDBID   uint64    `gorm:"primaryKey;autoIncrement"`
	ResumeID      string    `gorm:"type:char(36);not null;index:idx_rr_resume_id"`
	JobID         string    `gorm:"type:char(36);not null;index:idx_rr_job_id"`
	Rank          int       `gorm:"not null"` // 1起稠密排名
	TotalScore    float64   `gorm:"type:float;not null"` // 相对排名分 [0,100]，两位小数
	CandidateName string    `gorm:"type:varchar(255)"`
	Status        string    `gorm:"type:varchar(50);default:'unreviewed'"`
	CreatedAt     time.Time `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
}

func (ResumeRanking) TableName() string {
	return "resume_rankings"
}

// MetricScore 压力分析单项指标
type MetricScore struct {
	Metric string  `json:"metric"`
	Value  float64 `json:"value"`
	Score  float64 `json:"score"`
}

// MetricScoresToJSON 将指标明细序列化为datatypes.JSON
func MetricScoresToJSON(scores []MetricScore) (datatypes.JSON, error) {
	bytes, err := json.Marshal(scores)
	if err != nil {
		return nil, err
	}
	return bytes, nil
}

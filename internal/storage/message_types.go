package storage

import "time"

// ResumeUploadedEvent 简历上传完成事件（尽力投递，仅供下游订阅方参考）
type ResumeUploadedEvent struct {
	ResumeID         string    `json:"resume_id"`
	UserID           string    `json:"user_id"`
	OriginalFilename string    `json:"original_filename"`
	FilePathOSS      string    `json:"file_path_oss"`
	UploadedAt       time.Time `json:"uploaded_at"`
}

// AnswerSubmittedEvent 回答提交完成事件
type AnswerSubmittedEvent struct {
	SessionID      string    `json:"session_id"`
	QuestionNumber int       `json:"question_number"`
	Score          int       `json:"score"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

package constants

import "time"

const (
	// 回答音频对象路径模板: answers/<session_id>/<question_number>/audio.webm
	AnswerAudioPathTemplate = "answers/%s/%d/audio.webm"

	// 音频下载重试策略默认值（前端直传可能滞后于提交请求）
	DefaultAudioMaxRetries  = 2 // 额外重试次数，总尝试 = 3
	DefaultAudioRetryDelay  = 3 * time.Second
	DefaultStressAudioDelay = 2 * time.Second

	// Redis键
	ResumeFileMD5SetKey = "interview:resume_file_md5s" // 原始简历文件MD5集合

	// 排名管道
	DefaultRankingStatus = "unreviewed" // 新插入排名行的初始状态
)

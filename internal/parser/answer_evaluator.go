package parser

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// Evaluation 对单条回答的评估结果
type Evaluation struct {
	Score    int
	Feedback string
}

// AnswerEvaluator 使用LLM对候选人回答评分
// 与问题生成一样，任何失败都退化为确定的兜底结果，不向调用方返回错误
type AnswerEvaluator struct {
	llmModel model.ChatModel
	cfg      *config.InterviewConfig
}

// NewAnswerEvaluator 创建回答评估器
func NewAnswerEvaluator(llmModel model.ChatModel, cfg *config.InterviewConfig) (*AnswerEvaluator, error) {
	if llmModel == nil {
		return nil, fmt.Errorf("LLM模型不能为空")
	}
	if cfg == nil {
		return nil, fmt.Errorf("面试配置不能为空")
	}
	return &AnswerEvaluator{llmModel: llmModel, cfg: cfg}, nil
}

const answerEvaluationSystemPrompt = "You are a helpful AI assistant that evaluates interview answers."

const answerEvaluationPromptTemplate = `
You are an AI interviewer evaluating a candidate's answer for a %s role.

Question:
%s

Candidate's Answer:
%s

Evaluate this candidate answer based on communication, clarity, and depth. Provide:
- A score from 1 to 10 (integer).
- Feedback (2-3 sentences explaining the score).

Format your response as:
Score: [number]
Feedback: [your feedback]
`

var (
	scoreRegex    = regexp.MustCompile(`(?i)Score:\s*(\d+)`)
	feedbackRegex = regexp.MustCompile(`(?is)Feedback:\s*(.+)`)
)

// EvaluateAnswer 评估一条回答，返回1-10的分数与反馈
// 模型调用失败返回 (0, 错误反馈)；响应无法解析返回 (5, 通用反馈)
func (e *AnswerEvaluator) EvaluateAnswer(ctx context.Context, questionText, answerText string) Evaluation {
	prompt := fmt.Sprintf(answerEvaluationPromptTemplate, e.cfg.JobRole, questionText, answerText)

	messages := []*schema.Message{
		schema.SystemMessage(answerEvaluationSystemPrompt),
		schema.UserMessage(prompt),
	}

	response, err := e.llmModel.Generate(ctx, messages)
	if err != nil {
		logger.Error().Err(err).Msg("评估回答失败")
		return Evaluation{
			Score:    0,
			Feedback: "An error occurred while evaluating the answer.",
		}
	}

	return parseEvaluationResponse(strings.TrimSpace(response.Content))
}

// parseEvaluationResponse 从模型响应中提取分数与反馈
// 仅在成功解析时做[1,10]归一化，保持兜底值原样
func parseEvaluationResponse(responseText string) Evaluation {
	scoreMatch := scoreRegex.FindStringSubmatch(responseText)
	feedbackMatch := feedbackRegex.FindStringSubmatch(responseText)

	if scoreMatch == nil || feedbackMatch == nil {
		logger.Warn().Str("response_head", truncateForLog(responseText, 50)).Msg("评估响应解析失败，使用默认分数")
		return Evaluation{
			Score:    5,
			Feedback: "Could not parse specific feedback, but answer was recorded.",
		}
	}

	score, err := strconv.Atoi(scoreMatch[1])
	if err != nil {
		// 正则已保证是纯数字，只可能是超出int范围
		logger.Warn().Str("raw_score", scoreMatch[1]).Msg("分数转换失败，使用默认分数")
		return Evaluation{
			Score:    5,
			Feedback: "Could not parse specific feedback, but answer was recorded.",
		}
	}

	if score < 1 {
		score = 1
	}
	if score > 10 {
		score = 10
	}

	return Evaluation{
		Score:    score,
		Feedback: strings.TrimSpace(feedbackMatch[1]),
	}
}

func truncateForLog(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}

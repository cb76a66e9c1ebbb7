package parser

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"interview-agent-go/internal/config"
	"interview-agent-go/internal/logger"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

// 问题类别
const (
	CategoryTechnical   = "technical"
	CategoryHR          = "hr"
	CategorySituational = "situational"
	CategorySurprise    = "surprise"
	CategoryGeneral     = "general"
)

// GeneratedQuestion 生成的单个面试问题
type GeneratedQuestion struct {
	Text     string
	Category string
}

// QuestionGenerator 基于简历文本生成面试问题
// 解析失败或模型调用失败时返回兜底问题，绝不让面试流程中断
type QuestionGenerator struct {
	llmModel model.ChatModel
	cfg      *config.InterviewConfig
}

// NewQuestionGenerator 创建问题生成器
func NewQuestionGenerator(llmModel model.ChatModel, cfg *config.InterviewConfig) (*QuestionGenerator, error) {
	if llmModel == nil {
		return nil, fmt.Errorf("LLM模型不能为空")
	}
	if cfg == nil {
		return nil, fmt.Errorf("面试配置不能为空")
	}
	return &QuestionGenerator{llmModel: llmModel, cfg: cfg}, nil
}

const questionGenerationSystemPrompt = "You are a helpful AI assistant that generates interview questions based on resumes."

const questionGenerationPromptTemplate = `
You are an AI interviewer conducting an interview for a candidate.

The candidate's details:
- Resume Content: %s
- Job Role: %s
- Company: %s
- Industry: %s

Based on this information, generate exactly:
🔹 **3 Technical Questions** specific to the job role and skills.
🔹 **3 HR Questions** to assess cultural fit and behavioral aspects.
🔹 **2 Situational/Scenario-Based Questions** to evaluate problem-solving.
🔹 **1 Surprise Question** (creative or unexpected to test adaptability).

Format each section with the following headings and numbered questions:
- **Technical:**
  1. [Your question here]
  2. [Your question here]
  3. [Your question here]
- **HR:**
  1. [Your question here]
  2. [Your question here]
  3. [Your question here]
- **Situational:**
  1. [Your question here]
  2. [Your question here]
- **Surprise:**
  1. [Your question here]

Ensure each question starts with a number, followed by a period and a space (e.g., "1. "), and do not include any additional text outside of the specified format.
`

// 匹配 "1. 问题..." 或 "1 问题..."
var questionItemRegex = regexp.MustCompile(`^\d+[.\s]`)

// 去掉题目行的编号前缀
var questionNumberPrefixRegex = regexp.MustCompile(`^\d+\.?\s*`)

// GenerateQuestions 根据简历文本生成面试问题
// 永远返回非空切片：模型失败时返回单条通用问题，解析为空时返回三条默认问题
func (g *QuestionGenerator) GenerateQuestions(ctx context.Context, resumeText string) []GeneratedQuestion {
	prompt := fmt.Sprintf(questionGenerationPromptTemplate,
		resumeText, g.cfg.JobRole, g.cfg.Company, g.cfg.Industry)

	messages := []*schema.Message{
		schema.SystemMessage(questionGenerationSystemPrompt),
		schema.UserMessage(prompt),
	}

	response, err := g.llmModel.Generate(ctx, messages)
	if err != nil {
		logger.Error().Err(err).Msg("生成面试问题失败，返回通用兜底问题")
		return []GeneratedQuestion{
			{Text: "Could not generate specific questions. Please tell us about your experience.", Category: CategoryGeneral},
		}
	}

	questions := parseQuestionsFromResponse(response.Content)
	if len(questions) == 0 {
		logger.Warn().Msg("模型响应未解析出任何问题，返回默认问题")
		return []GeneratedQuestion{
			{Text: "Tell me about yourself.", Category: CategoryHR},
			{Text: "Describe a challenging project you worked on.", Category: CategoryTechnical},
			{Text: "Why do you want to work here?", Category: CategoryHR},
		}
	}

	logger.Info().Int("question_count", len(questions)).Msg("面试问题生成完成")
	return questions
}

// parseQuestionsFromResponse 逐行解析模型响应
// 类别标题行切换当前类别，编号行在已有类别下被识别为一道问题
func parseQuestionsFromResponse(responseText string) []GeneratedQuestion {
	var questions []GeneratedQuestion
	currentCategory := ""

	for _, line := range strings.Split(responseText, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		switch {
		case strings.Contains(line, "**Technical:**"):
			currentCategory = CategoryTechnical
			continue
		case strings.Contains(line, "**HR:**"):
			currentCategory = CategoryHR
			continue
		case strings.Contains(line, "**Situational:**"):
			currentCategory = CategorySituational
			continue
		case strings.Contains(line, "**Surprise:**"):
			currentCategory = CategorySurprise
			continue
		}

		if currentCategory == "" || !questionItemRegex.MatchString(line) {
			continue
		}

		text := strings.TrimSpace(questionNumberPrefixRegex.ReplaceAllString(line, ""))
		if text != "" {
			questions = append(questions, GeneratedQuestion{Text: text, Category: currentCategory})
		}
	}

	return questions
}

package parser

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestEvaluateAnswerParsesScoreAndFeedback 标准格式解析
func TestEvaluateAnswerParsesScoreAndFeedback(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "Score: 8\nFeedback: Clear and well structured answer with good depth."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "question", "answer")

	assert.Equal(t, 8, result.Score)
	assert.Equal(t, "Clear and well structured answer with good depth.", result.Feedback)
}

// TestEvaluateAnswerCaseInsensitive 大小写不敏感
func TestEvaluateAnswerCaseInsensitive(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "score: 7\nfeedback: Decent answer."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")

	assert.Equal(t, 7, result.Score)
	assert.Equal(t, "Decent answer.", result.Feedback)
}

// TestEvaluateAnswerMultilineFeedback 反馈可以跨行
func TestEvaluateAnswerMultilineFeedback(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "Score: 6\nFeedback: First sentence.\nSecond sentence with more detail."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")

	assert.Equal(t, 6, result.Score)
	assert.Contains(t, result.Feedback, "First sentence.")
	assert.Contains(t, result.Feedback, "Second sentence with more detail.")
}

// TestEvaluateAnswerClampsHighScore 成功解析的分数归一化到[1,10]
func TestEvaluateAnswerClampsHighScore(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "Score: 15\nFeedback: Excellent."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")
	assert.Equal(t, 10, result.Score)
}

// TestEvaluateAnswerClampsZeroScore 解析出的0分提升为1
func TestEvaluateAnswerClampsZeroScore(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "Score: 0\nFeedback: Very weak."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")
	assert.Equal(t, 1, result.Score)
}

// TestEvaluateAnswerUnparsableFallback 无法解析时返回5分通用反馈，不做归一化
func TestEvaluateAnswerUnparsableFallback(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "The candidate did reasonably well overall."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")

	assert.Equal(t, 5, result.Score)
	assert.Equal(t, "Could not parse specific feedback, but answer was recorded.", result.Feedback)
}

// TestEvaluateAnswerProviderFailure 模型调用失败返回0分错误反馈
// 0分在成功路径之外，不受[1,10]归一化影响
func TestEvaluateAnswerProviderFailure(t *testing.T) {
	mock := &MockLLMModel{Err: fmt.Errorf("provider down")}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")

	assert.Equal(t, 0, result.Score)
	assert.Equal(t, "An error occurred while evaluating the answer.", result.Feedback)
}

// TestEvaluateAnswerScoreMissing 只有反馈没有分数同样走兜底
func TestEvaluateAnswerScoreMissing(t *testing.T) {
	mock := &MockLLMModel{mockResponse: "Feedback: Good answer but no score was given."}
	evaluator, err := NewAnswerEvaluator(mock, testInterviewConfig())
	require.NoError(t, err)

	result := evaluator.EvaluateAnswer(context.Background(), "q", "a")
	assert.Equal(t, 5, result.Score)
}

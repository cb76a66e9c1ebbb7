package handler

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"interview-agent-go/internal/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStressHandler(store *fakeStore, objectStore *fakeObjectStore, transcriber *fakeTranscriber) *StressHandler {
	return NewStressHandler(testConfig(), store, objectStore, transcriber)
}

// TestHandleAnalyzeStress 成功路径：转写、计算、落库
func TestHandleAnalyzeStress(t *testing.T) {
	store := newFakeStore()
	objectStore := newFakeObjectStore()
	objectStore.audioFiles[testSessionID+"/1"] = []byte("audio")
	// 200词 / 60秒 = 200 WPM → 50 + 20 = 70
	transcriber := &fakeTranscriber{transcript: strings.TrimSpace(strings.Repeat("word ", 200))}

	h := newTestStressHandler(store, objectStore, transcriber)
	resp, err := h.HandleAnalyzeStress(context.Background(), testSessionID, 1, 60)
	require.NoError(t, err)

	assert.Equal(t, 70.0, resp.StressScore)
	assert.Equal(t, "Moderate", resp.StressLevel)
	assert.InDelta(t, 200.0, resp.WPM, 0.001)

	require.Len(t, store.analyses, 1)
	saved := store.analyses[0]
	assert.Equal(t, testSessionID, saved.SessionID)
	assert.Equal(t, 1, saved.QuestionNumber)
	assert.Equal(t, 70.0, saved.StressScore)
	assert.Contains(t, string(saved.IndividualScores), `"metric":"wpm"`)
}

// TestHandleAnalyzeStressAudioMissing 音频缺失单次尝试即报not-found
func TestHandleAnalyzeStressAudioMissing(t *testing.T) {
	store := newFakeStore()
	objectStore := newFakeObjectStore()
	transcriber := &fakeTranscriber{}

	h := newTestStressHandler(store, objectStore, transcriber)
	_, err := h.HandleAnalyzeStress(context.Background(), testSessionID, 1, 60)

	assert.ErrorIs(t, err, ErrAudioNotFound)
	// 与回答提交不同，压力分析不重试
	assert.Equal(t, 1, objectStore.audioAttempts)
	assert.Zero(t, transcriber.calls)
}

// TestHandleAnalyzeStressInvalidSession 非法会话ID
func TestHandleAnalyzeStressInvalidSession(t *testing.T) {
	h := newTestStressHandler(newFakeStore(), newFakeObjectStore(), &fakeTranscriber{})
	_, err := h.HandleAnalyzeStress(context.Background(), "bogus", 1, 60)
	assert.ErrorIs(t, err, ErrInvalidIdentifier)
}

// TestHandleAnalyzeStressTranscribeFailure 转写失败传播
func TestHandleAnalyzeStressTranscribeFailure(t *testing.T) {
	store := newFakeStore()
	objectStore := newFakeObjectStore()
	objectStore.audioFiles[testSessionID+"/1"] = []byte("audio")
	transcriber := &fakeTranscriber{err: fmt.Errorf("whisper down")}

	h := newTestStressHandler(store, objectStore, transcriber)
	_, err := h.HandleAnalyzeStress(context.Background(), testSessionID, 1, 60)
	require.Error(t, err)
	assert.Empty(t, store.analyses)
}

// TestHandleAnalyzeStressShortDuration 时长不足1秒按60秒兜底
func TestHandleAnalyzeStressShortDuration(t *testing.T) {
	store := newFakeStore()
	objectStore := newFakeObjectStore()
	objectStore.audioFiles[testSessionID+"/1"] = []byte("audio")
	transcriber := &fakeTranscriber{transcript: strings.TrimSpace(strings.Repeat("word ", 130))}

	h := newTestStressHandler(store, objectStore, transcriber)
	resp, err := h.HandleAnalyzeStress(context.Background(), testSessionID, 1, 0.2)
	require.NoError(t, err)
	assert.InDelta(t, 130.0, resp.WPM, 0.001)
	assert.Equal(t, 50.0, resp.StressScore)
}

// TestHandleAnalyzeStressOverwrite 同一题重复分析覆盖旧记录
func TestHandleAnalyzeStressOverwrite(t *testing.T) {
	store := newFakeStore()
	objectStore := newFakeObjectStore()
	objectStore.audioFiles[testSessionID+"/1"] = []byte("audio")
	transcriber := &fakeTranscriber{transcript: strings.TrimSpace(strings.Repeat("word ", 130))}
	h := newTestStressHandler(store, objectStore, transcriber)

	_, err := h.HandleAnalyzeStress(context.Background(), testSessionID, 1, 60)
	require.NoError(t, err)

	transcriber.transcript = strings.TrimSpace(strings.Repeat("word ", 200))
	_, err = h.HandleAnalyzeStress(context.Background(), testSessionID, 1, 60)
	require.NoError(t, err)

	require.Len(t, store.analyses, 1)
	assert.Equal(t, 70.0, store.analyses[0].StressScore)
}

// TestHandleAverageStress 平均值计算与70分边界
func TestHandleAverageStress(t *testing.T) {
	store := newFakeStore()
	store.analyses = append(store.analyses,
		models.StressAnalysis{SessionID: testSessionID, QuestionNumber: 1, StressScore: 80},
		models.StressAnalysis{SessionID: testSessionID, QuestionNumber: 2, StressScore: 60},
	)
	h := newTestStressHandler(store, newFakeObjectStore(), &fakeTranscriber{})

	resp, err := h.HandleAverageStress(context.Background(), testSessionID)
	require.NoError(t, err)

	assert.Equal(t, 70.0, resp.AverageStress)
	assert.Equal(t, "High", resp.AverageStressLevel)
	assert.Equal(t, []float64{80, 60}, resp.IndividualScores)
}

// TestHandleAverageStressEmpty 无记录时返回中性默认值而非404
func TestHandleAverageStressEmpty(t *testing.T) {
	h := newTestStressHandler(newFakeStore(), newFakeObjectStore(), &fakeTranscriber{})

	resp, err := h.HandleAverageStress(context.Background(), testSessionID)
	require.NoError(t, err)

	assert.Equal(t, 50.0, resp.AverageStress)
	assert.Equal(t, "Not Analyzed", resp.AverageStressLevel)
	assert.Empty(t, resp.IndividualScores)
}

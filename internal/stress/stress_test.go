package stress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestComputeNeutralBand 正常语速落在中性区间，得到基线分
func TestComputeNeutralBand(t *testing.T) {
	// 130词 / 60秒 = 130 WPM，处于110-160的正常区间
	transcript := strings.Repeat("word ", 130)
	result := Compute(transcript, 60)

	assert.InDelta(t, 130.0, result.WPM, 0.001)
	assert.Equal(t, 50.0, result.Score)
	assert.Equal(t, LevelModerate, result.Level)
}

// TestComputeFastSpeech 语速过快加分
func TestComputeFastSpeech(t *testing.T) {
	// 200词 / 60秒 = 200 WPM → 50 + (200-160)*0.5 = 70
	transcript := strings.Repeat("word ", 200)
	result := Compute(transcript, 60)

	assert.InDelta(t, 200.0, result.WPM, 0.001)
	assert.Equal(t, 70.0, result.Score)
	// 70分恰好不算High
	assert.Equal(t, LevelModerate, result.Level)
}

// TestComputeSlowSpeech 语速过慢同样加分
func TestComputeSlowSpeech(t *testing.T) {
	// 20词 / 60秒 = 20 WPM → 50 + (110-20)*0.5 = 95
	transcript := strings.Repeat("word ", 20)
	result := Compute(transcript, 60)

	assert.InDelta(t, 20.0, result.WPM, 0.001)
	assert.Equal(t, 95.0, result.Score)
	assert.Equal(t, LevelHigh, result.Level)
}

// TestComputeScoreClamped 分数永远在[0,100]内
func TestComputeScoreClamped(t *testing.T) {
	// 600 WPM → 50 + 220 = 270，截断到100
	transcript := strings.Repeat("word ", 600)
	result := Compute(transcript, 60)
	assert.Equal(t, 100.0, result.Score)
	assert.Equal(t, LevelHigh, result.Level)
}

// TestComputeShortDurationFallback 时长不足1秒按60秒兜底
func TestComputeShortDurationFallback(t *testing.T) {
	transcript := strings.Repeat("word ", 130)

	short := Compute(transcript, 0.5)
	normal := Compute(transcript, 60)

	assert.Equal(t, normal, short)
}

// TestComputeEmptyTranscript 空转写 → 0 WPM → 最慢语速处罚
func TestComputeEmptyTranscript(t *testing.T) {
	result := Compute("", 60)
	assert.Equal(t, 0.0, result.WPM)
	// 50 + (110-0)*0.5 = 105 → 截断到100
	assert.Equal(t, 100.0, result.Score)
}

// TestComputeDeterministic 同样输入产出同样结果
func TestComputeDeterministic(t *testing.T) {
	transcript := strings.Repeat("alpha beta ", 80)
	first := Compute(transcript, 45)
	second := Compute(transcript, 45)
	assert.Equal(t, first, second)
}

// TestAverageEmpty 无记录时返回中性默认值
func TestAverageEmpty(t *testing.T) {
	avg, level := Average(nil)
	assert.Equal(t, 50.0, avg)
	assert.Equal(t, LevelNotAnalyzed, level)
}

// TestAverageBoundary 平均值恰好70时判为High
func TestAverageBoundary(t *testing.T) {
	avg, level := Average([]float64{80, 60})
	assert.Equal(t, 70.0, avg)
	assert.Equal(t, LevelHigh, level)
}

// TestAverageLevels 各等级边界
func TestAverageLevels(t *testing.T) {
	cases := []struct {
		name   string
		scores []float64
		level  string
	}{
		{"低压力", []float64{30, 40}, LevelLow},
		{"中等压力", []float64{50, 60}, LevelModerate},
		{"高压力", []float64{90, 80}, LevelHigh},
		{"40分恰好算低", []float64{40}, LevelLow},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, level := Average(tc.scores)
			assert.Equal(t, tc.level, level)
		})
	}
}

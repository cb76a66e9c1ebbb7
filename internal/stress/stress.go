// Package stress 基于语速(WPM)的压力启发式评估
// 正常语速约130-150 WPM，过快(>160)或过慢(<110)都视为紧张信号
package stress

import "strings"

// 压力等级
const (
	LevelHigh        = "High"
	LevelModerate    = "Moderate"
	LevelLow         = "Low"
	LevelNotAnalyzed = "Not Analyzed"
)

// Result 单条回答的压力分析结果
type Result struct {
	Score float64
	Level string
	WPM   float64
}

// Compute 根据转写文本与录音时长计算压力分数
// duration单位为秒，小于1秒时回退为60秒避免除零
func Compute(transcript string, duration float64) Result {
	wordCount := len(strings.Fields(transcript))

	if duration < 1.0 {
		duration = 60.0
	}

	wpm := float64(wordCount) / duration * 60

	score := 50.0 // 中性基线
	if wpm > 160 {
		score += (wpm - 160) * 0.5
	} else if wpm < 110 {
		score += (110 - wpm) * 0.5
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}

	return Result{Score: score, Level: levelForScore(score), WPM: wpm}
}

// levelForScore 单条分析的等级划分，70分不算High
func levelForScore(score float64) string {
	switch {
	case score > 70:
		return LevelHigh
	case score > 40:
		return LevelModerate
	default:
		return LevelLow
	}
}

// Average 计算整场面试的平均压力
// 无任何分析记录时返回中性默认值，避免前端因404中断
func Average(scores []float64) (float64, string) {
	if len(scores) == 0 {
		return 50.0, LevelNotAnalyzed
	}

	var sum float64
	for _, s := range scores {
		sum += s
	}
	avg := sum / float64(len(scores))

	// 平均值恰好落在70时仍视为High
	switch {
	case avg >= 70:
		return avg, LevelHigh
	case avg > 40:
		return avg, LevelModerate
	default:
		return avg, LevelLow
	}
}

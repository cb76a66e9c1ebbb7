// Package ranking 离线批处理：对某个岗位的候选人分析结果做min-max归一化排名
package ranking

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"interview-agent-go/internal/constants"
	"interview-agent-go/internal/logger"
	"interview-agent-go/internal/storage"
	"interview-agent-go/internal/storage/models"

	"gorm.io/gorm"
)

// CandidateAnalysis 分析文件中的单条候选人记录
// analysis为开放结构，排名时只读取Final Score并写入Relative Ranking Score
type CandidateAnalysis struct {
	Filename string                 `json:"filename"`
	Analysis map[string]interface{} `json:"analysis"`
}

const (
	finalScoreKey      = "Final Score"
	relativeRankingKey = "Relative Ranking Score"
)

// RankingStore 排名持久化所需的数据库操作
type RankingStore interface {
	GetResumeUpload(ctx context.Context, fileName string, jobID string) (*models.ResumeUpload, error)
	DeleteRankings(ctx context.Context, jobID string) error
	InsertRankings(ctx context.Context, rankings []models.ResumeRanking) error
}

var _ RankingStore = (*storage.MySQL)(nil)

// Ranker 排名流水线
type Ranker struct {
	store      RankingStore
	dataFolder string
}

// NewRanker 创建排名流水线
func NewRanker(store RankingStore, dataFolder string) *Ranker {
	if dataFolder == "" {
		dataFolder = "processed_data"
	}
	return &Ranker{store: store, dataFolder: dataFolder}
}

// Rank 对一个岗位执行完整排名：读取分析文件、归一化、导出、替换数据库排名
// 整个流水线可从同一份分析文件幂等重跑
func (r *Ranker) Rank(ctx context.Context, jobID string) error {
	inPath := filepath.Join(r.dataFolder, jobID+"_analysis.json")
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("读取分析文件 %s 失败: %w", inPath, err)
	}

	var candidates []CandidateAnalysis
	if err := json.Unmarshal(data, &candidates); err != nil {
		return fmt.Errorf("解析分析文件 %s 失败: %w", inPath, err)
	}
	if len(candidates) == 0 {
		return fmt.Errorf("分析文件 %s 为空", inPath)
	}

	AttachRelativeScores(candidates)
	ranked := SortByRelativeScore(candidates)

	if err := r.exportJSON(ranked, jobID); err != nil {
		return err
	}
	if err := r.exportCSV(ranked, jobID); err != nil {
		return err
	}

	return r.replaceRankings(ctx, ranked, jobID)
}

// AttachRelativeScores 计算min-max归一化百分比并写回每条记录
// 全零或空批次时所有记录都记0.0，避免未定义的归一化
func AttachRelativeScores(candidates []CandidateAnalysis) {
	scores := make([]float64, len(candidates))
	allZero := true
	for i, c := range candidates {
		scores[i] = finalScoreOf(c)
		if scores[i] != 0 {
			allZero = false
		}
	}

	if len(scores) == 0 || allZero {
		for i := range candidates {
			setRelativeScore(&candidates[i], 0.0)
		}
		return
	}

	minScore, maxScore := scores[0], scores[0]
	for _, s := range scores[1:] {
		if s < minScore {
			minScore = s
		}
		if s > maxScore {
			maxScore = s
		}
	}

	for i := range candidates {
		var normed float64
		if maxScore == minScore {
			// MinMaxScaler对常数列输出0
			normed = 0.0
		} else {
			normed = (scores[i] - minScore) / (maxScore - minScore)
		}
		setRelativeScore(&candidates[i], roundTo2(normed*100))
	}
}

// SortByRelativeScore 按相对排名分稳定降序排序，平分保持原始相对顺序
func SortByRelativeScore(candidates []CandidateAnalysis) []CandidateAnalysis {
	ranked := make([]CandidateAnalysis, len(candidates))
	copy(ranked, candidates)
	sort.SliceStable(ranked, func(i, j int) bool {
		return relativeScoreOf(ranked[i]) > relativeScoreOf(ranked[j])
	})
	return ranked
}

func finalScoreOf(c CandidateAnalysis) float64 {
	if c.Analysis == nil {
		return 0.0
	}
	if v, ok := c.Analysis[finalScoreKey].(float64); ok {
		return v
	}
	return 0.0
}

func relativeScoreOf(c CandidateAnalysis) float64 {
	if c.Analysis == nil {
		return 0.0
	}
	if v, ok := c.Analysis[relativeRankingKey].(float64); ok {
		return v
	}
	return 0.0
}

func setRelativeScore(c *CandidateAnalysis, score float64) {
	if c.Analysis == nil {
		c.Analysis = make(map[string]interface{})
	}
	c.Analysis[relativeRankingKey] = score
}

func roundTo2(v float64) float64 {
	return math.Round(v*100) / 100
}

// exportJSON 写出层级化的排名结果
func (r *Ranker) exportJSON(ranked []CandidateAnalysis, jobID string) error {
	outPath := filepath.Join(r.dataFolder, jobID+"_ranked.json")
	data, err := json.MarshalIndent(ranked, "", "    ")
	if err != nil {
		return fmt.Errorf("序列化排名结果失败: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0o644); err != nil {
		return fmt.Errorf("写入排名JSON %s 失败: %w", outPath, err)
	}
	logger.Info().Str("path", outPath).Msg("排名JSON导出完成")
	return nil
}

// exportCSV 写出扁平表格的排名结果
// 表头为filename加所有分析键（字典序），保证列顺序确定
func (r *Ranker) exportCSV(ranked []CandidateAnalysis, jobID string) error {
	outPath := filepath.Join(r.dataFolder, jobID+"_ranked.csv")
	file, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("创建排名CSV %s 失败: %w", outPath, err)
	}
	defer file.Close()

	keySet := make(map[string]bool)
	for _, c := range ranked {
		for k := range c.Analysis {
			keySet[k] = true
		}
	}
	keys := make([]string, 0, len(keySet))
	for k := range keySet {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	writer := csv.NewWriter(file)
	header := append([]string{"filename"}, keys...)
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("写入CSV表头失败: %w", err)
	}

	for _, c := range ranked {
		row := make([]string, 0, len(header))
		row = append(row, c.Filename)
		for _, k := range keys {
			row = append(row, csvCell(c.Analysis[k]))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("写入CSV行失败: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("刷新CSV失败: %w", err)
	}
	logger.Info().Str("path", outPath).Msg("排名CSV导出完成")
	return nil
}

func csvCell(v interface{}) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(value)
	default:
		data, err := json.Marshal(value)
		if err != nil {
			return fmt.Sprintf("%v", value)
		}
		return string(data)
	}
}

// replaceRankings 把一个岗位的排名整体替换进数据库
// 先删后插，两步之间崩溃会留下空排名而非脏数据，重跑即可恢复
func (r *Ranker) replaceRankings(ctx context.Context, ranked []CandidateAnalysis, jobID string) error {
	records := make([]models.ResumeRanking, 0, len(ranked))

	for idx, cand := range ranked {
		upload, err := r.store.GetResumeUpload(ctx, cand.Filename, jobID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				logger.Warn().
					Str("file_name", cand.Filename).
					Str("job_id", jobID).
					Msg("resume_uploads中无对应记录，跳过")
				continue
			}
			return fmt.Errorf("查询上传记录 (%s, %s) 失败: %w", cand.Filename, jobID, err)
		}

		candidateName := upload.CandidateName
		if candidateName == "" {
			candidateName = strings.TrimSuffix(cand.Filename, ".pdf")
		}

		records = append(records, models.ResumeRanking{
			ResumeID:      upload.ResumeID,
			JobID:         jobID,
			Rank:          idx + 1,
			TotalScore:    relativeScoreOf(cand),
			CandidateName: candidateName,
			Status:        constants.DefaultRankingStatus,
		})
	}

	if len(records) == 0 {
		logger.Warn().Str("job_id", jobID).Msg("没有可入库的排名记录")
		return nil
	}

	if err := r.store.DeleteRankings(ctx, jobID); err != nil {
		// 表可能本来就是空的，删除失败不致命
		logger.Warn().Err(err).Str("job_id", jobID).Msg("删除旧排名失败")
	} else {
		logger.Info().Str("job_id", jobID).Msg("旧排名已删除")
	}

	if err := r.store.InsertRankings(ctx, records); err != nil {
		return fmt.Errorf("插入排名记录失败: %w", err)
	}

	logger.Info().Int("count", len(records)).Str("job_id", jobID).Msg("排名记录入库完成")
	return nil
}

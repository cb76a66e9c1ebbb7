package ranking

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"interview-agent-go/internal/storage/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func candidatesWithScores(scores ...float64) []CandidateAnalysis {
	out := make([]CandidateAnalysis, len(scores))
	for i, s := range scores {
		out[i] = CandidateAnalysis{
			Filename: "resume_" + string(rune('a'+i)) + ".pdf",
			Analysis: map[string]interface{}{finalScoreKey: s},
		}
	}
	return out
}

// TestAttachRelativeScoresAllZero 全零批次所有相对分记0.0
func TestAttachRelativeScoresAllZero(t *testing.T) {
	candidates := candidatesWithScores(0, 0, 0)
	AttachRelativeScores(candidates)

	for _, c := range candidates {
		assert.Equal(t, 0.0, c.Analysis[relativeRankingKey])
	}
}

// TestAttachRelativeScoresMinMax [10,20,30] → [0,50,100]
func TestAttachRelativeScoresMinMax(t *testing.T) {
	candidates := candidatesWithScores(10, 20, 30)
	AttachRelativeScores(candidates)

	assert.Equal(t, 0.0, candidates[0].Analysis[relativeRankingKey])
	assert.Equal(t, 50.0, candidates[1].Analysis[relativeRankingKey])
	assert.Equal(t, 100.0, candidates[2].Analysis[relativeRankingKey])
}

// TestAttachRelativeScoresRounding 相对分保留两位小数
func TestAttachRelativeScoresRounding(t *testing.T) {
	candidates := candidatesWithScores(0, 1, 3)
	AttachRelativeScores(candidates)

	// 1/3*100 = 33.333... → 33.33
	assert.Equal(t, 33.33, candidates[1].Analysis[relativeRankingKey])
}

// TestAttachRelativeScoresMissingScore 缺失Final Score按0处理
func TestAttachRelativeScoresMissingScore(t *testing.T) {
	candidates := []CandidateAnalysis{
		{Filename: "a.pdf", Analysis: map[string]interface{}{finalScoreKey: 80.0}},
		{Filename: "b.pdf", Analysis: map[string]interface{}{}},
	}
	AttachRelativeScores(candidates)

	assert.Equal(t, 100.0, candidates[0].Analysis[relativeRankingKey])
	assert.Equal(t, 0.0, candidates[1].Analysis[relativeRankingKey])
}

// TestSortByRelativeScoreDescendingStable 降序稳定排序，平分保持原顺序
func TestSortByRelativeScoreDescendingStable(t *testing.T) {
	candidates := candidatesWithScores(10, 30, 20)
	AttachRelativeScores(candidates)
	ranked := SortByRelativeScore(candidates)

	require.Len(t, ranked, 3)
	assert.Equal(t, 100.0, ranked[0].Analysis[relativeRankingKey])
	assert.Equal(t, 50.0, ranked[1].Analysis[relativeRankingKey])
	assert.Equal(t, 0.0, ranked[2].Analysis[relativeRankingKey])

	// 平分场景
	tied := candidatesWithScores(5, 5, 5)
	AttachRelativeScores(tied)
	rankedTied := SortByRelativeScore(tied)
	assert.Equal(t, tied[0].Filename, rankedTied[0].Filename)
	assert.Equal(t, tied[1].Filename, rankedTied[1].Filename)
	assert.Equal(t, tied[2].Filename, rankedTied[2].Filename)
}

// mockRankingStore 测试用排名存储
type mockRankingStore struct {
	uploads       map[string]*models.ResumeUpload // key: file_name
	deletedJobIDs []string
	inserted      []models.ResumeRanking
	deleteErr     error
	insertErr     error
}

func (m *mockRankingStore) GetResumeUpload(ctx context.Context, fileName string, jobID string) (*models.ResumeUpload, error) {
	if upload, ok := m.uploads[fileName]; ok {
		return upload, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockRankingStore) DeleteRankings(ctx context.Context, jobID string) error {
	m.deletedJobIDs = append(m.deletedJobIDs, jobID)
	return m.deleteErr
}

func (m *mockRankingStore) InsertRankings(ctx context.Context, rankings []models.ResumeRanking) error {
	if m.insertErr != nil {
		return m.insertErr
	}
	m.inserted = append(m.inserted, rankings...)
	return nil
}

func writeAnalysisFile(t *testing.T, dir, jobID string, candidates []CandidateAnalysis) {
	t.Helper()
	data, err := json.Marshal(candidates)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(filepath.Join(dir, jobID+"_analysis.json"), data, 0o644))
}

// TestRankEndToEnd 完整流水线：归一化、导出、删旧插新
func TestRankEndToEnd(t *testing.T) {
	dir := t.TempDir()
	jobID := "job-001"

	candidates := []CandidateAnalysis{
		{Filename: "alice.pdf", Analysis: map[string]interface{}{finalScoreKey: 10.0}},
		{Filename: "bob.pdf", Analysis: map[string]interface{}{finalScoreKey: 30.0}},
		{Filename: "carol.pdf", Analysis: map[string]interface{}{finalScoreKey: 20.0}},
	}
	writeAnalysisFile(t, dir, jobID, candidates)

	store := &mockRankingStore{
		uploads: map[string]*models.ResumeUpload{
			"alice.pdf": {ResumeID: "r-alice", CandidateName: "Alice"},
			"bob.pdf":   {ResumeID: "r-bob", CandidateName: "Bob"},
			"carol.pdf": {ResumeID: "r-carol", CandidateName: ""},
		},
	}

	ranker := NewRanker(store, dir)
	require.NoError(t, ranker.Rank(context.Background(), jobID))

	// 删旧先于插新
	assert.Equal(t, []string{jobID}, store.deletedJobIDs)

	// 排名顺序: bob(100) > carol(50) > alice(0)
	require.Len(t, store.inserted, 3)
	assert.Equal(t, "r-bob", store.inserted[0].ResumeID)
	assert.Equal(t, 1, store.inserted[0].Rank)
	assert.Equal(t, 100.0, store.inserted[0].TotalScore)
	assert.Equal(t, "r-carol", store.inserted[1].ResumeID)
	assert.Equal(t, 2, store.inserted[1].Rank)
	// 候选人名缺失时回退为去掉.pdf的文件名
	assert.Equal(t, "carol", store.inserted[1].CandidateName)
	assert.Equal(t, "r-alice", store.inserted[2].ResumeID)
	assert.Equal(t, 3, store.inserted[2].Rank)
	assert.Equal(t, "unreviewed", store.inserted[0].Status)

	// 两种导出文件都存在
	rankedJSON, err := os.ReadFile(filepath.Join(dir, jobID+"_ranked.json"))
	require.NoError(t, err)
	var exported []CandidateAnalysis
	require.NoError(t, json.Unmarshal(rankedJSON, &exported))
	require.Len(t, exported, 3)
	assert.Equal(t, "bob.pdf", exported[0].Filename)

	csvFile, err := os.Open(filepath.Join(dir, jobID+"_ranked.csv"))
	require.NoError(t, err)
	defer csvFile.Close()
	rows, err := csv.NewReader(csvFile).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 4) // 表头 + 3行
	assert.Equal(t, "filename", rows[0][0])
	assert.Equal(t, "bob.pdf", rows[1][0])
}

// TestRankSkipsUnresolvedUploads 查不到上传记录的候选人被跳过
func TestRankSkipsUnresolvedUploads(t *testing.T) {
	dir := t.TempDir()
	jobID := "job-002"

	writeAnalysisFile(t, dir, jobID, []CandidateAnalysis{
		{Filename: "known.pdf", Analysis: map[string]interface{}{finalScoreKey: 10.0}},
		{Filename: "unknown.pdf", Analysis: map[string]interface{}{finalScoreKey: 20.0}},
	})

	store := &mockRankingStore{
		uploads: map[string]*models.ResumeUpload{
			"known.pdf": {ResumeID: "r-known", CandidateName: "Known"},
		},
	}

	ranker := NewRanker(store, dir)
	require.NoError(t, ranker.Rank(context.Background(), jobID))

	require.Len(t, store.inserted, 1)
	assert.Equal(t, "r-known", store.inserted[0].ResumeID)
	// 排名编号来自排序后的位置，unknown占据第1名但未入库
	assert.Equal(t, 2, store.inserted[0].Rank)
}

// TestRankDeleteFailureNonFatal 删除旧排名失败不中断插入
func TestRankDeleteFailureNonFatal(t *testing.T) {
	dir := t.TempDir()
	jobID := "job-003"

	writeAnalysisFile(t, dir, jobID, []CandidateAnalysis{
		{Filename: "a.pdf", Analysis: map[string]interface{}{finalScoreKey: 10.0}},
	})

	store := &mockRankingStore{
		uploads:   map[string]*models.ResumeUpload{"a.pdf": {ResumeID: "r-a"}},
		deleteErr: assert.AnError,
	}

	ranker := NewRanker(store, dir)
	require.NoError(t, ranker.Rank(context.Background(), jobID))
	require.Len(t, store.inserted, 1)
}

// TestRankMissingAnalysisFile 分析文件缺失直接报错
func TestRankMissingAnalysisFile(t *testing.T) {
	ranker := NewRanker(&mockRankingStore{}, t.TempDir())
	err := ranker.Rank(context.Background(), "nope")
	assert.Error(t, err)
}

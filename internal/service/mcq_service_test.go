package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"video_mcq_backend/internal/config"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/repository"
	"video_mcq_backend/pkg/logger"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	logger.Log = zap.NewNop()
}

// fakeAIServer 模拟外部AI服务：/transcribe 返回固定分段，
// /generate-mcq 按段文本返回可配置的题目
func fakeAIServer(t *testing.T, transcript []string, transcribeStatus int, mcqsBySegment map[string][]RawMCQ, failSegment string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		if transcribeStatus != http.StatusOK {
			w.WriteHeader(transcribeStatus)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(TranscribeResponse{Transcript: transcript})
	})
	mux.HandleFunc("/generate-mcq", func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Text string `json:"text"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Text == failSegment {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(GenerateMCQResponse{MCQs: mcqsBySegment[req.Text]})
	})
	return httptest.NewServer(mux)
}

func newBridge(t *testing.T, baseURL string) (*MCQService, *repository.MCQRepository) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.VideoAsset{}, &model.MCQQuestion{}))

	repo := repository.NewMCQRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	ai := NewAIService(config.AIConfig{BaseURL: baseURL})
	// 进度写入不可达的Redis时只记警告，不影响流水线
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	return NewMCQService(ai, repo, videoRepo, rdb), repo
}

func tempVideoFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "lecture.mp4")
	require.NoError(t, os.WriteFile(path, []byte("fake video bytes"), 0644))
	return path
}

func TestNormalizeAnswer(t *testing.T) {
	options := []string{"Paris", "London", " Berlin "}

	idx, err := NormalizeAnswer(options, "London")
	require.NoError(t, err)
	require.Equal(t, 1, idx)

	// 宽松匹配：大小写和首尾空格不敏感
	idx, err = NormalizeAnswer(options, "berlin")
	require.NoError(t, err)
	require.Equal(t, 2, idx)

	_, err = NormalizeAnswer(options, "Madrid")
	require.ErrorIs(t, err, model.ErrAnswerOutOfRange)

	_, err = NormalizeAnswer(nil, "Paris")
	require.ErrorIs(t, err, model.ErrEmptyOptions)
}

func TestVideoToMCQsOrderAndPersistence(t *testing.T) {
	mcqs := map[string][]RawMCQ{
		"segment A": {
			{Question: "A0?", Options: []string{"x", "y"}, Answer: "x"},
			{Question: "A1?", Options: []string{"p", "q"}, Answer: "q", Explanation: "because"},
		},
		"segment B": {
			{Question: "B0?", Options: []string{"1", "2", "3"}, Answer: "2"},
		},
	}
	server := fakeAIServer(t, []string{"segment A", "segment B"}, http.StatusOK, mcqs, "")
	defer server.Close()

	svc, repo := newBridge(t, server.URL)
	questions, err := svc.VideoToMCQs(context.Background(), tempVideoFile(t), 1, "upload-1")
	require.NoError(t, err)

	// 段序和段内序都保持：[A.0, A.1, B.0]
	require.Len(t, questions, 3)
	require.Equal(t, "A0?", questions[0].Question)
	require.Equal(t, "A1?", questions[1].Question)
	require.Equal(t, "B0?", questions[2].Question)
	require.Equal(t, 0, questions[0].SegmentIndex)
	require.Equal(t, 1, questions[2].SegmentIndex)

	// 规范化：字面答案映射为下标
	require.Equal(t, 0, questions[0].CorrectIndex)
	require.Equal(t, 1, questions[1].CorrectIndex)
	require.Equal(t, 1, questions[2].CorrectIndex)
	require.Equal(t, "because", questions[1].Explanation)
	require.False(t, questions[0].CreatedAt.IsZero())

	// 全部持久化且有标识
	stored, err := repo.ListAllQuestions(0)
	require.NoError(t, err)
	require.Len(t, stored, 3)
	for _, q := range stored {
		require.NotZero(t, q.ID)
	}
}

func TestVideoToMCQsTranscriptionFailure(t *testing.T) {
	server := fakeAIServer(t, nil, http.StatusBadGateway, nil, "")
	defer server.Close()

	svc, repo := newBridge(t, server.URL)
	_, err := svc.VideoToMCQs(context.Background(), tempVideoFile(t), 1, "upload-2")
	require.Error(t, err)

	// 转写失败对整次调用致命：什么都没有落库
	stored, err := repo.ListAllQuestions(0)
	require.NoError(t, err)
	require.Empty(t, stored)
}

func TestVideoToMCQsPartialSegmentFailure(t *testing.T) {
	mcqs := map[string][]RawMCQ{
		"segment A": {
			{Question: "A0?", Options: []string{"x", "y"}, Answer: "x"},
			{Question: "A1?", Options: []string{"p", "q"}, Answer: "q"},
		},
	}
	server := fakeAIServer(t, []string{"segment A", "segment B"}, http.StatusOK, mcqs, "segment B")
	defer server.Close()

	svc, repo := newBridge(t, server.URL)
	_, err := svc.VideoToMCQs(context.Background(), tempVideoFile(t), 1, "upload-3")
	require.Error(t, err)

	// 整体报告失败，但A段已落库的记录保持持久
	stored, err := repo.ListAllQuestions(0)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	require.Equal(t, "A0?", stored[0].Question)
	require.Equal(t, "A1?", stored[1].Question)
}

func TestVideoToMCQsUnlocatableAnswerFailsRun(t *testing.T) {
	mcqs := map[string][]RawMCQ{
		"segment A": {
			{Question: "A0?", Options: []string{"x", "y"}, Answer: "z"},
		},
	}
	server := fakeAIServer(t, []string{"segment A"}, http.StatusOK, mcqs, "")
	defer server.Close()

	svc, repo := newBridge(t, server.URL)
	_, err := svc.VideoToMCQs(context.Background(), tempVideoFile(t), 1, "upload-4")
	require.ErrorIs(t, err, model.ErrAnswerOutOfRange)

	stored, err := repo.ListAllQuestions(0)
	require.NoError(t, err)
	require.Empty(t, stored)
}

package controller

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"
	"video_mcq_backend/internal/config"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/repository"
	"video_mcq_backend/internal/service"
	"video_mcq_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func init() {
	gin.SetMode(gin.TestMode)
	logger.Log = zap.NewNop()
}

func newUploadRouter(t *testing.T) *gin.Engine {
	t.Helper()
	cfg := &config.Config{}
	cfg.Upload.MaxSizeMB = 100
	cfg.Upload.AllowedTypes = []string{"video/mp4", "video/webm", "video/quicktime"}

	videoSvc := service.NewVideoService(nil, nil, nil, cfg)
	ctrl := NewVideoController(videoSvc, nil)

	r := gin.New()
	r.POST("/api/videos", ctrl.ConvertVideoToMCQs)
	return r
}

// newPipelineRouter 组装带完整流水线的路由，AI服务指向给定地址
func newPipelineRouter(t *testing.T, aiBaseURL string) *gin.Engine {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&model.VideoAsset{}, &model.MCQQuestion{}))

	cfg := &config.Config{}
	cfg.Upload.MaxSizeMB = 100
	cfg.Upload.AllowedTypes = []string{"video/mp4", "video/webm", "video/quicktime"}
	cfg.Storage.Type = "local"
	cfg.Storage.LocalPath = t.TempDir()
	cfg.AI.BaseURL = aiBaseURL

	mcqRepo := repository.NewMCQRepository(db)
	videoRepo := repository.NewVideoRepository(db)
	storage := service.NewStorageService(cfg)
	ai := service.NewAIService(cfg.AI)
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	mcq := service.NewMCQService(ai, mcqRepo, videoRepo, rdb)
	videoSvc := service.NewVideoService(videoRepo, mcq, storage, cfg)
	ctrl := NewVideoController(videoSvc, mcq)

	r := gin.New()
	r.POST("/api/videos", ctrl.ConvertVideoToMCQs)
	return r
}

// multipartBody 构造带指定Content-Type的文件part
func multipartBody(t *testing.T, fieldName, fileName, contentType string, content []byte) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	h := textproto.MIMEHeader{}
	h.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	h.Set("Content-Type", contentType)
	part, err := w.CreatePart(h)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestConvertVideoToMCQsMissingFile(t *testing.T) {
	r := newUploadRouter(t)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("identifier", "abc"))
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "No video file uploaded.", resp["message"])
}

func TestConvertVideoToMCQsWrongFieldName(t *testing.T) {
	r := newUploadRouter(t)

	// 前端约定的字段名是video，其他字段名等同于没有上传文件
	body, contentType := multipartBody(t, "file", "a.mp4", "video/mp4", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "No video file uploaded.", resp["message"])
}

func TestConvertVideoToMCQsRejectsDeclaredType(t *testing.T) {
	r := newUploadRouter(t)

	body, contentType := multipartBody(t, "video", "doc.pdf", "application/pdf", []byte("data"))
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Contains(t, resp["message"], "invalid file type")
}

// 与前端上传请求同形的调用必须被接受并走完整流水线
func TestConvertVideoToMCQsAcceptsVideoField(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/transcribe", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"transcript":["segment one"]}`))
	})
	mux.HandleFunc("/generate-mcq", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"mcqs":[{"question":"Q?","options":["a","b"],"answer":"b"}]}`))
	})
	aiServer := httptest.NewServer(mux)
	defer aiServer.Close()

	r := newPipelineRouter(t, aiServer.URL)

	body, contentType := multipartBody(t, "video", "lecture.mp4", "video/mp4", []byte("fake video bytes"))
	req := httptest.NewRequest(http.MethodPost, "/api/videos", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Message      string              `json:"message"`
		MCQQuestions []model.MCQQuestion `json:"mcqQuestions"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "Video uploaded successfully", resp.Message)
	require.Len(t, resp.MCQQuestions, 1)
	require.Equal(t, "Q?", resp.MCQQuestions[0].Question)
	require.Equal(t, 1, resp.MCQQuestions[0].CorrectIndex)
}

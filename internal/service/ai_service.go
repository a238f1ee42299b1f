package service

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"video_mcq_backend/internal/config"
	"video_mcq_backend/internal/util"

	"github.com/go-resty/resty/v2"
)

// AIService 外部AI服务客户端：/transcribe 转写视频，/generate-mcq 按段生成选择题。
// 两个接口都是小JSON响应的一次性调用，失败不重试。
type AIService struct {
	config config.AIConfig
	client *resty.Client
}

func NewAIService(cfg config.AIConfig) *AIService {
	client := resty.New().
		SetTimeout(10 * time.Minute). // 转写长视频很慢
		SetHeader("Accept", "application/json")
	return &AIService{config: cfg, client: client}
}

type TranscribeResponse struct {
	Transcript []string `json:"transcript"`
}

// RawMCQ 生成服务返回的原始题目对象
type RawMCQ struct {
	Question    string   `json:"question"`
	Options     []string `json:"options"`
	Answer      string   `json:"answer"`
	Explanation string   `json:"explanation,omitempty"`
}

type GenerateMCQResponse struct {
	MCQs []RawMCQ `json:"mcqs"`
}

// Transcribe 以multipart流式上传视频，返回按序的转写分段
func (s *AIService) Transcribe(ctx context.Context, videoPath string) ([]string, error) {
	if s.config.BaseURL == "" {
		return nil, util.ErrAIServiceNotConfigure
	}

	file, err := os.Open(videoPath)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var result TranscribeResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetFileReader("file", filepath.Base(videoPath), file).
		SetResult(&result).
		Post(s.config.BaseURL + "/transcribe")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrTranscriptionFailed, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrTranscriptionFailed, resp.StatusCode(), resp.String())
	}

	return result.Transcript, nil
}

// GenerateMCQs 对单个转写分段生成零个或多个原始题目
func (s *AIService) GenerateMCQs(ctx context.Context, segment string) ([]RawMCQ, error) {
	if s.config.BaseURL == "" {
		return nil, util.ErrAIServiceNotConfigure
	}

	var result GenerateMCQResponse
	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]string{"text": segment}).
		SetResult(&result).
		Post(s.config.BaseURL + "/generate-mcq")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", util.ErrGenerationFailed, err)
	}
	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("%w: status %d: %s", util.ErrGenerationFailed, resp.StatusCode(), resp.String())
	}

	return result.MCQs, nil
}

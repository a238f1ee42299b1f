package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/repository"
	"video_mcq_backend/internal/util"
	"video_mcq_backend/pkg/logger"
	"video_mcq_backend/pkg/monitoring"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const (
	mcqProgressKeyPrefix = "mcq_progress:"
	mcqProgressTTL       = time.Hour
	// 终态（completed/failed）保留一小段时间供前端轮询到，之后由TTL清理
	mcqProgressFinalTTL = 10 * time.Minute
)

// MCQService 转写/生成桥：把存储的视频交给外部AI服务转写，
// 逐段生成题目并逐段落库，保持段序和段内序。
type MCQService struct {
	AI       *AIService
	Repo     *repository.MCQRepository
	VideoRep *repository.VideoRepository
	Redis    *redis.Client
}

func NewMCQService(ai *AIService, repo *repository.MCQRepository, videoRepo *repository.VideoRepository, rdb *redis.Client) *MCQService {
	return &MCQService{AI: ai, Repo: repo, VideoRep: videoRepo, Redis: rdb}
}

// NormalizeAnswer 把生成服务返回的字面正确答案规范化为选项下标。
// 先精确匹配，再做去空格、忽略大小写的宽松匹配；都找不到视为非法题目。
func NormalizeAnswer(options []string, answer string) (int, error) {
	if len(options) == 0 {
		return -1, model.ErrEmptyOptions
	}
	for i, opt := range options {
		if opt == answer {
			return i, nil
		}
	}
	want := strings.TrimSpace(strings.ToLower(answer))
	for i, opt := range options {
		if strings.TrimSpace(strings.ToLower(opt)) == want {
			return i, nil
		}
	}
	return -1, model.ErrAnswerOutOfRange
}

// VideoToMCQs 执行完整流水线。转写失败对整次调用致命（不落库任何数据）；
// 某一段的生成或落库失败对其余流程致命，但之前已落库的段保持持久。
func (s *MCQService) VideoToMCQs(ctx context.Context, localPath string, videoID uint, progressID string) ([]model.MCQQuestion, error) {
	progress := &model.ProcessingProgress{
		Identifier: progressID,
		Stage:      model.StageTranscribing,
		Percent:    10,
	}
	s.saveProgress(ctx, progress)

	segments, err := s.AI.Transcribe(ctx, localPath)
	if err != nil {
		s.failProgress(ctx, progress)
		return nil, err
	}

	progress.Stage = model.StageGenerating
	progress.SegmentsTotal = len(segments)
	s.saveProgress(ctx, progress)

	// 严格按段序串行处理：每段先落库再处理下一段，保证部分进度逐段持久
	all := make([]model.MCQQuestion, 0, len(segments)*3)
	for i, segment := range segments {
		raws, err := s.AI.GenerateMCQs(ctx, segment)
		if err != nil {
			monitoring.PipelineSegments.WithLabelValues("failed").Inc()
			s.failProgress(ctx, progress)
			return nil, err
		}

		batch := make([]model.MCQQuestion, 0, len(raws))
		now := time.Now()
		for _, raw := range raws {
			idx, err := NormalizeAnswer(raw.Options, raw.Answer)
			if err != nil {
				s.failProgress(ctx, progress)
				return nil, fmt.Errorf("segment %d: %w", i, err)
			}
			batch = append(batch, model.MCQQuestion{
				BaseModel:    model.BaseModel{CreatedAt: now},
				VideoID:      videoID,
				SegmentIndex: i,
				Question:     raw.Question,
				Options:      raw.Options,
				Answer:       raw.Options[idx],
				CorrectIndex: idx,
				Explanation:  raw.Explanation,
			})
		}

		saved, err := s.Repo.SaveBatch(batch)
		if err != nil {
			monitoring.PipelineSegments.WithLabelValues("failed").Inc()
			s.failProgress(ctx, progress)
			return nil, err
		}
		all = append(all, saved...)

		monitoring.PipelineSegments.WithLabelValues("ok").Inc()
		monitoring.PipelineQuestions.Add(float64(len(saved)))

		progress.SegmentsDone = i + 1
		progress.QuestionsGenerated = len(all)
		progress.Percent = 10 + 85*(i+1)/len(segments)
		s.saveProgress(ctx, progress)
	}

	if err := s.VideoRep.UpdateStatus(videoID, model.VideoCompleted, len(all)); err != nil {
		logger.Log.Error("更新视频状态失败", zap.Uint("videoId", videoID), zap.Error(err))
	}

	progress.Stage = model.StageCompleted
	progress.Percent = 100
	s.finishProgress(ctx, progress)

	return all, nil
}

// MarkReceived 上传一经接收就写入初始进度，先于转写开始
func (s *MCQService) MarkReceived(ctx context.Context, progressID string) {
	s.saveProgress(ctx, &model.ProcessingProgress{
		Identifier: progressID,
		Stage:      model.StageReceived,
		Percent:    5,
	})
}

// GetProgress 查询流水线的粗粒度进度（仅用于前端展示，非权威）
func (s *MCQService) GetProgress(ctx context.Context, identifier string) (*model.ProcessingProgress, error) {
	val, err := s.Redis.Get(ctx, mcqProgressKeyPrefix+identifier).Result()
	if err == redis.Nil {
		return nil, util.ErrProgressNotFound
	} else if err != nil {
		return nil, err
	}

	var progress model.ProcessingProgress
	if err := json.Unmarshal([]byte(val), &progress); err != nil {
		return nil, err
	}
	return &progress, nil
}

func (s *MCQService) saveProgress(ctx context.Context, p *model.ProcessingProgress) {
	p.UpdatedAt = time.Now()
	val, _ := json.Marshal(p)
	if err := s.Redis.Set(ctx, mcqProgressKeyPrefix+p.Identifier, val, mcqProgressTTL).Err(); err != nil {
		logger.Log.Warn("保存处理进度失败", zap.String("identifier", p.Identifier), zap.Error(err))
	}
}

func (s *MCQService) failProgress(ctx context.Context, p *model.ProcessingProgress) {
	p.Stage = model.StageFailed
	s.finishProgress(ctx, p)
}

// finishProgress 写入终态进度，短TTL后自动清理
func (s *MCQService) finishProgress(ctx context.Context, p *model.ProcessingProgress) {
	p.UpdatedAt = time.Now()
	val, _ := json.Marshal(p)
	s.Redis.Set(ctx, mcqProgressKeyPrefix+p.Identifier, val, mcqProgressFinalTTL)
}

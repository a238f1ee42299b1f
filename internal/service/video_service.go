package service

import (
	"context"
	"errors"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"
	"video_mcq_backend/internal/config"
	"video_mcq_backend/internal/model"
	"video_mcq_backend/internal/repository"
	"video_mcq_backend/internal/util"
	"video_mcq_backend/pkg/logger"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// VideoService 上传流水线入口：校验 → 落本地暂存 → 探测元数据 →
// 上传对象存储 → 建资产记录 → 交给桥生成题目。
type VideoService struct {
	VideoRepo *repository.VideoRepository
	MCQ       *MCQService
	Storage   *StorageService
	Cfg       *config.Config
}

func NewVideoService(videoRepo *repository.VideoRepository, mcq *MCQService, storage *StorageService, cfg *config.Config) *VideoService {
	return &VideoService{VideoRepo: videoRepo, MCQ: mcq, Storage: storage, Cfg: cfg}
}

// Validate 按白名单校验声明类型和大小（类型取声明值，不嗅探内容）
func (s *VideoService) Validate(file *multipart.FileHeader) error {
	declaredType := file.Header.Get("Content-Type")
	return util.ValidateVideoFile(declaredType, file.Size, s.Cfg.Upload.AllowedTypes, s.Cfg.Upload.MaxSizeMB*1024*1024)
}

// ProcessUpload 同步执行完整流水线，成功时返回资产记录和扁平有序的题目全集。
// identifier 供进度查询接口使用，由客户端提供或服务端生成。
func (s *VideoService) ProcessUpload(ctx context.Context, file *multipart.FileHeader, identifier string) (*model.VideoAsset, []model.MCQQuestion, error) {
	ext := filepath.Ext(file.Filename)
	storedName := "videos/" + time.Now().Format("20060102150405") + "_" + util.GenerateRandomString(9) + ext

	// 先写本地暂存文件：桥需要一个服务器本地路径来流式转写
	tempDir := filepath.Join(s.Cfg.Storage.LocalPath, "temp")
	if err := os.MkdirAll(tempDir, 0755); err != nil {
		return nil, nil, err
	}
	tempPath := filepath.Join(tempDir, filepath.Base(storedName))
	if err := saveUploadedFile(file, tempPath); err != nil {
		return nil, nil, err
	}
	defer os.Remove(tempPath)

	// 探测视频元数据（失败不阻断流程）
	var duration float64
	format := strings.TrimPrefix(ext, ".")
	if info, err := util.GetVideoInfo(tempPath); err == nil {
		duration = info.Duration
		if info.Format != "unknown" {
			format = info.Format
		}
	} else {
		logger.Log.Warn("探测视频信息失败", zap.String("file", file.Filename), zap.Error(err))
	}

	url, err := s.Storage.UploadFile(ctx, storedName, tempPath, file.Header.Get("Content-Type"))
	if err != nil {
		return nil, nil, err
	}

	asset := &model.VideoAsset{
		OriginalName: file.Filename,
		StoredName:   storedName,
		MimeType:     file.Header.Get("Content-Type"),
		Size:         file.Size,
		URL:          url,
		Duration:     duration,
		Format:       format,
		Status:       model.VideoProcessing,
	}
	if err := s.VideoRepo.Create(asset); err != nil {
		return nil, nil, err
	}

	questions, err := s.MCQ.VideoToMCQs(ctx, tempPath, asset.ID, identifier)
	if err != nil {
		// 已落库的段保持持久，资产标记为失败
		if uerr := s.VideoRepo.UpdateStatus(asset.ID, model.VideoFailed, 0); uerr != nil {
			logger.Log.Error("标记视频失败状态出错", zap.Uint("videoId", asset.ID), zap.Error(uerr))
		}
		return nil, nil, err
	}

	asset.Status = model.VideoCompleted
	asset.QuestionCount = len(questions)
	return asset, questions, nil
}

func (s *VideoService) GetVideo(id uint) (*model.VideoAsset, error) {
	asset, err := s.VideoRepo.FindByID(id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, util.ErrVideoNotFound
	}
	return asset, err
}

func (s *VideoService) ListVideos(page, limit int) ([]model.VideoAsset, int64, error) {
	return s.VideoRepo.List(page, limit)
}

func saveUploadedFile(file *multipart.FileHeader, dst string) error {
	src, err := file.Open()
	if err != nil {
		return err
	}
	defer src.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, src)
	return err
}

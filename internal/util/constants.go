package util

import "video_mcq_backend/internal/config"

const (
	StorageLocal = config.StorageLocal
	StorageMinio = config.StorageMinio
	StorageOSS   = config.StorageOSS
)

// 文件上传相关常量
const (
	MaxVideoSizeBytes = config.MaxVideoSizeBytes
)

var (
	// AllowedVideoTypes 允许上传的视频MIME类型（按声明值校验，不做内容嗅探）
	AllowedVideoTypes = config.AllowedVideoTypes
)

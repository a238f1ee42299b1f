package config

const (
	StorageLocal = "local"
	StorageMinio = "minio"
	StorageOSS   = "oss"
)

// 文件上传相关常量
const (
	MaxVideoSizeBytes = 100 * 1024 * 1024 // 100MiB
)

var (
	// AllowedVideoTypes 允许上传的视频MIME类型（按声明值校验，不做内容嗅探）
	AllowedVideoTypes = []string{"video/mp4", "video/webm", "video/quicktime"}
)

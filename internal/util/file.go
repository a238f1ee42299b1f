package util

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// ValidateVideoFile 按固定白名单校验候选文件的声明MIME类型和大小。
// 类型取浏览器/中间件声明的值，不读取内容嗅探；校验顺序：先类型后大小。
func ValidateVideoFile(declaredType string, size int64, allowedTypes []string, maxSize int64) error {
	allowed := false
	for _, t := range allowedTypes {
		if declaredType == t {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("invalid file type %q: please upload MP4, WebM, or QuickTime video files", declaredType)
	}

	if size > maxSize {
		return fmt.Errorf("file size exceeds the limit of %dMB", maxSize/(1024*1024))
	}

	return nil
}

// GenerateRandomString 生成指定长度的随机十六进制串，用于存储文件名去重
func GenerateRandomString(n int) string {
	b := make([]byte, (n+1)/2)
	if _, err := rand.Read(b); err != nil {
		return ""
	}
	return hex.EncodeToString(b)[:n]
}

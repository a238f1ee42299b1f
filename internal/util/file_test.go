package util

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidateVideoFile(t *testing.T) {
	allowed := []string{"video/mp4", "video/webm", "video/quicktime"}
	maxSize := int64(100 * 1024 * 1024)

	tests := []struct {
		name         string
		declaredType string
		size         int64
		wantErr      string
	}{
		{"mp4通过", "video/mp4", 1024, ""},
		{"webm通过", "video/webm", maxSize, ""},
		{"quicktime通过", "video/quicktime", 50 * 1024 * 1024, ""},
		{"类型不在白名单", "video/x-matroska", 1024, "invalid file type"},
		{"非视频类型", "application/pdf", 1024, "invalid file type"},
		{"空类型", "", 1024, "invalid file type"},
		{"超过大小上限", "video/mp4", maxSize + 1, "file size exceeds the limit of 100MB"},
		// 类型和大小都非法时先报类型错
		{"类型优先于大小", "text/plain", maxSize + 1, "invalid file type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateVideoFile(tt.declaredType, tt.size, allowed, maxSize)
			if tt.wantErr == "" {
				require.NoError(t, err)
			} else {
				require.ErrorContains(t, err, tt.wantErr)
			}
		})
	}
}

func TestGenerateRandomString(t *testing.T) {
	s := GenerateRandomString(9)
	require.Len(t, s, 9)
	require.NotEqual(t, s, GenerateRandomString(9))
}

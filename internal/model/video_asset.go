package model

type ProcessingStatus string

const (
	VideoProcessing ProcessingStatus = "processing"
	VideoCompleted  ProcessingStatus = "completed"
	VideoFailed     ProcessingStatus = "failed"
)

// VideoAsset represents an uploaded video binary and its pipeline outcome
// swagger:model VideoAsset
type VideoAsset struct {
	BaseModel
	OriginalName  string           `gorm:"size:255;not null" json:"originalName"`
	StoredName    string           `gorm:"size:255;not null;uniqueIndex" json:"storedName"`
	MimeType      string           `gorm:"size:100;not null" json:"mimeType"`
	Size          int64            `gorm:"not null" json:"size"`
	URL           string           `gorm:"size:255" json:"url"`
	Duration      float64          `gorm:"default:0" json:"duration"` // 视频时长（秒）
	Format        string           `gorm:"size:50" json:"format"`
	Status        ProcessingStatus `gorm:"size:20;default:processing" json:"status"`
	QuestionCount int              `gorm:"default:0" json:"questionCount"`
}

func (VideoAsset) TableName() string {
	return "video_assets"
}

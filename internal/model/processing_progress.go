package model

import "time"

// 流水线阶段
const (
	StageReceived     = "received"
	StageTranscribing = "transcribing"
	StageGenerating   = "generating"
	StageCompleted    = "completed"
	StageFailed       = "failed"
)

// ProcessingProgress MCQ生成流水线的粗粒度进度（存Redis，仅用于前端展示，非权威）
// swagger:model ProcessingProgress
type ProcessingProgress struct {
	Identifier         string    `json:"identifier"`
	Stage              string    `json:"stage"`
	SegmentsTotal      int       `json:"segmentsTotal"`
	SegmentsDone       int       `json:"segmentsDone"`
	QuestionsGenerated int       `json:"questionsGenerated"`
	Percent            int       `json:"percent"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

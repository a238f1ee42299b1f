package model

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// StringArray 以JSON列存储的字符串数组
type StringArray []string

func (a StringArray) Value() (driver.Value, error) {
	if a == nil {
		return "[]", nil
	}
	b, err := json.Marshal(a)
	return string(b), err
}

func (a *StringArray) Scan(value interface{}) error {
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, a)
	case string:
		return json.Unmarshal([]byte(v), a)
	case nil:
		*a = nil
		return nil
	}
	return fmt.Errorf("unsupported type for StringArray: %T", value)
}

// MCQQuestion represents one generated multiple-choice question
// swagger:model MCQQuestion
type MCQQuestion struct {
	BaseModel
	VideoID      uint        `gorm:"index;type:bigint unsigned" json:"videoId"`
	SegmentIndex int         `gorm:"default:0" json:"segmentIndex"`
	Question     string      `gorm:"type:text;not null" json:"question"`
	Options      StringArray `gorm:"type:json" json:"options"`
	Answer       string      `gorm:"type:text" json:"answer"`       // 正确选项原文（外部生成服务返回的字面值）
	CorrectIndex int         `gorm:"not null" json:"correctAnswer"` // 规范化后的正确选项下标
	Explanation  string      `gorm:"type:text" json:"explanation,omitempty"`
}

func (MCQQuestion) TableName() string {
	return "mcq_questions"
}

var (
	ErrEmptyOptions      = errors.New("mcq question has no options")
	ErrAnswerOutOfRange  = errors.New("correct answer does not reference an option")
	ErrEmptyQuestionText = errors.New("mcq question text is empty")
)

// Validate 校验题目不变式：选项非空，正确答案必须指向选项之一
func (q *MCQQuestion) Validate() error {
	if q.Question == "" {
		return ErrEmptyQuestionText
	}
	if len(q.Options) == 0 {
		return ErrEmptyOptions
	}
	if q.CorrectIndex < 0 || q.CorrectIndex >= len(q.Options) {
		return ErrAnswerOutOfRange
	}
	return nil
}

func (q *MCQQuestion) BeforeCreate(tx *gorm.DB) error {
	return q.Validate()
}

package repository

import (
	"video_mcq_backend/internal/model"

	"gorm.io/gorm"
)

type MCQRepository struct {
	DB *gorm.DB
}

func NewMCQRepository(db *gorm.DB) *MCQRepository {
	return &MCQRepository{DB: db}
}

// SaveBatch 追加一批生成的题目。只增不改：范围内没有更新/删除操作。
// 入库前整批校验不变式，任何一条违规则整批拒绝，不触碰存储。
func (r *MCQRepository) SaveBatch(questions []model.MCQQuestion) ([]model.MCQQuestion, error) {
	if len(questions) == 0 {
		return questions, nil
	}
	for i := range questions {
		if err := questions[i].Validate(); err != nil {
			return nil, err
		}
	}
	if err := r.DB.Create(&questions).Error; err != nil {
		return nil, err
	}
	return questions, nil
}

// ListQuestions 按入库顺序返回题目（入库顺序 = 展示顺序）
func (r *MCQRepository) ListQuestions(videoID uint, page, limit int) ([]model.MCQQuestion, int64, error) {
	var qs []model.MCQQuestion
	var total int64
	query := r.DB.Model(&model.MCQQuestion{})
	if videoID > 0 {
		query = query.Where("video_id = ?", videoID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("id asc").Offset(offset).Limit(limit).Find(&qs).Error
	return qs, total, err
}

// ListAllQuestions 不分页，按入库顺序返回
func (r *MCQRepository) ListAllQuestions(videoID uint) ([]model.MCQQuestion, error) {
	var qs []model.MCQQuestion
	query := r.DB.Model(&model.MCQQuestion{})
	if videoID > 0 {
		query = query.Where("video_id = ?", videoID)
	}
	err := query.Order("id asc").Find(&qs).Error
	return qs, err
}

func (r *MCQRepository) FindByIDs(ids []uint) ([]model.MCQQuestion, error) {
	var qs []model.MCQQuestion
	err := r.DB.Where("id IN ?", ids).Order("id asc").Find(&qs).Error
	return qs, err
}

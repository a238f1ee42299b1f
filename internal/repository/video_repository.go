package repository

import (
	"video_mcq_backend/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	DB *gorm.DB
}

func NewVideoRepository(db *gorm.DB) *VideoRepository {
	return &VideoRepository{DB: db}
}

func (r *VideoRepository) Create(asset *model.VideoAsset) error {
	return r.DB.Create(asset).Error
}

func (r *VideoRepository) FindByID(id uint) (*model.VideoAsset, error) {
	var a model.VideoAsset
	err := r.DB.First(&a, id).Error
	return &a, err
}

func (r *VideoRepository) List(page, limit int) ([]model.VideoAsset, int64, error) {
	var as []model.VideoAsset
	var total int64
	query := r.DB.Model(&model.VideoAsset{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

// UpdateStatus 记录流水线结果（资产本身创建后不再变更，状态字段除外）
func (r *VideoRepository) UpdateStatus(id uint, status model.ProcessingStatus, questionCount int) error {
	return r.DB.Model(&model.VideoAsset{}).Where("id = ?", id).
		Updates(map[string]interface{}{"status": status, "question_count": questionCount}).Error
}

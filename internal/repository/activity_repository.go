package repository

import (
	"talent_portal_backend/internal/model"

	"gorm.io/gorm"
)

type ActivityRepository struct {
	DB *gorm.DB
}

func NewActivityRepository(db *gorm.DB) *ActivityRepository {
	return &ActivityRepository{DB: db}
}

func (r *ActivityRepository) LogActivity(entry *model.ActivityLog) error {
	return r.DB.Create(entry).Error
}

func (r *ActivityRepository) List(page, limit int, userID uint) ([]model.ActivityLog, int64, error) {
	var logs []model.ActivityLog
	var total int64
	query := r.DB.Model(&model.ActivityLog{})
	if userID > 0 {
		query = query.Where("user_id = ?", userID)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&logs).Error
	return logs, total, err
}

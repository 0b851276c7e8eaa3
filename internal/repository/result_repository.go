package repository

import (
	"talent_portal_backend/internal/model"

	"gorm.io/gorm"
)

// ResultRepository is the result sink: one insert per completed attempt.
type ResultRepository struct {
	DB *gorm.DB
}

func NewResultRepository(db *gorm.DB) *ResultRepository {
	return &ResultRepository{DB: db}
}

func (r *ResultRepository) InsertResult(res *model.AssessmentResult) error {
	return r.DB.Create(res).Error
}

func (r *ResultRepository) ListByAssessment(assessmentID uint, page, limit int) ([]model.AssessmentResult, int64, error) {
	var rs []model.AssessmentResult
	var total int64
	query := r.DB.Model(&model.AssessmentResult{}).Where("assessment_id = ?", assessmentID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Preload("Candidate").
		Order("completed_at desc").Offset(offset).Limit(limit).Find(&rs).Error
	return rs, total, err
}

func (r *ResultRepository) ListByCandidate(candidateID uint) ([]model.AssessmentResult, error) {
	var rs []model.AssessmentResult
	err := r.DB.Where("candidate_id = ?", candidateID).
		Order("completed_at desc").Find(&rs).Error
	return rs, err
}

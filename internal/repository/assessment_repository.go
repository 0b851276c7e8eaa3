package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"talent_portal_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const contentCacheTTL = 5 * time.Minute

// AssessmentRepository is the content provider for the attempt engine and the
// store behind HR content management. Published reads go through a Redis
// read-through cache that content mutations invalidate.
type AssessmentRepository struct {
	DB  *gorm.DB
	RDB *redis.Client
}

func NewAssessmentRepository(db *gorm.DB, rdb *redis.Client) *AssessmentRepository {
	return &AssessmentRepository{DB: db, RDB: rdb}
}

func assessmentKey(id uint) string        { return fmt.Sprintf("assessment:%d", id) }
func sectionsKey(assessmentID uint) string { return fmt.Sprintf("assessment:%d:sections", assessmentID) }
func questionsKey(sectionID uint) string   { return fmt.Sprintf("section:%d:questions", sectionID) }

func (r *AssessmentRepository) cacheGet(key string, dest interface{}) bool {
	if r.RDB == nil {
		return false
	}
	raw, err := r.RDB.Get(context.Background(), key).Bytes()
	if err != nil {
		return false
	}
	return json.Unmarshal(raw, dest) == nil
}

func (r *AssessmentRepository) cacheSet(key string, val interface{}) {
	if r.RDB == nil {
		return
	}
	raw, err := json.Marshal(val)
	if err != nil {
		return
	}
	r.RDB.Set(context.Background(), key, raw, contentCacheTTL)
}

func (r *AssessmentRepository) cacheDel(keys ...string) {
	if r.RDB == nil || len(keys) == 0 {
		return
	}
	r.RDB.Del(context.Background(), keys...)
}

// Content provider reads, consumed by the assessment loader.

func (r *AssessmentRepository) GetAssessment(id uint) (*model.Assessment, error) {
	var a model.Assessment
	if r.cacheGet(assessmentKey(id), &a) {
		return &a, nil
	}
	if err := r.DB.First(&a, id).Error; err != nil {
		return nil, err
	}
	r.cacheSet(assessmentKey(id), &a)
	return &a, nil
}

func (r *AssessmentRepository) GetSections(assessmentID uint) ([]model.AssessmentSection, error) {
	var ss []model.AssessmentSection
	if r.cacheGet(sectionsKey(assessmentID), &ss) {
		return ss, nil
	}
	err := r.DB.Where("assessment_id = ?", assessmentID).
		Order("`order` asc, id asc").Find(&ss).Error
	if err != nil {
		return nil, err
	}
	r.cacheSet(sectionsKey(assessmentID), ss)
	return ss, nil
}

func (r *AssessmentRepository) GetQuestions(sectionID uint) ([]model.AssessmentQuestion, error) {
	var qs []model.AssessmentQuestion
	if r.cacheGet(questionsKey(sectionID), &qs) {
		return qs, nil
	}
	err := r.DB.Where("section_id = ?", sectionID).
		Order("`order` asc, id asc").Find(&qs).Error
	if err != nil {
		return nil, err
	}
	r.cacheSet(questionsKey(sectionID), qs)
	return qs, nil
}

// HR content management.

func (r *AssessmentRepository) CreateAssessment(a *model.Assessment) error {
	return r.DB.Create(a).Error
}

func (r *AssessmentRepository) UpdateAssessment(a *model.Assessment) error {
	r.cacheDel(assessmentKey(a.ID))
	return r.DB.Save(a).Error
}

func (r *AssessmentRepository) DeleteAssessment(id uint) error {
	r.cacheDel(assessmentKey(id), sectionsKey(id))
	return r.DB.Delete(&model.Assessment{}, id).Error
}

func (r *AssessmentRepository) ListAssessments(page, limit int) ([]model.Assessment, int64, error) {
	var as []model.Assessment
	var total int64
	query := r.DB.Model(&model.Assessment{})
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	offset := (page - 1) * limit
	err := query.Order("created_at desc").Offset(offset).Limit(limit).Find(&as).Error
	return as, total, err
}

func (r *AssessmentRepository) ListPublished() ([]model.Assessment, error) {
	var as []model.Assessment
	err := r.DB.Where("is_published = ?", true).Order("published_at desc").Find(&as).Error
	return as, err
}

func (r *AssessmentRepository) CreateSection(s *model.AssessmentSection) error {
	r.cacheDel(sectionsKey(s.AssessmentID))
	return r.DB.Create(s).Error
}

func (r *AssessmentRepository) FindSectionByID(id uint) (*model.AssessmentSection, error) {
	var s model.AssessmentSection
	err := r.DB.First(&s, id).Error
	return &s, err
}

func (r *AssessmentRepository) UpdateSection(s *model.AssessmentSection) error {
	r.cacheDel(sectionsKey(s.AssessmentID), questionsKey(s.ID))
	return r.DB.Save(s).Error
}

func (r *AssessmentRepository) DeleteSection(id uint) error {
	s, err := r.FindSectionByID(id)
	if err != nil {
		return err
	}
	r.cacheDel(sectionsKey(s.AssessmentID), questionsKey(id))
	return r.DB.Delete(&model.AssessmentSection{}, id).Error
}

func (r *AssessmentRepository) CreateQuestion(q *model.AssessmentQuestion) error {
	r.cacheDel(questionsKey(q.SectionID))
	return r.DB.Create(q).Error
}

func (r *AssessmentRepository) FindQuestionByID(id uint) (*model.AssessmentQuestion, error) {
	var q model.AssessmentQuestion
	err := r.DB.First(&q, id).Error
	return &q, err
}

func (r *AssessmentRepository) UpdateQuestion(q *model.AssessmentQuestion) error {
	r.cacheDel(questionsKey(q.SectionID))
	return r.DB.Save(q).Error
}

func (r *AssessmentRepository) DeleteQuestion(id uint) error {
	q, err := r.FindQuestionByID(id)
	if err != nil {
		return err
	}
	r.cacheDel(questionsKey(q.SectionID))
	return r.DB.Delete(&model.AssessmentQuestion{}, id).Error
}

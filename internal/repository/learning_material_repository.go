package repository

import (
	"context"

	"study_plan_backend/internal/model"

	"gorm.io/gorm"
)

type LearningMaterialRepository struct {
	DB *gorm.DB
}

func NewLearningMaterialRepository(db *gorm.DB) *LearningMaterialRepository {
	return &LearningMaterialRepository{DB: db}
}

func orderAsc(db *gorm.DB) *gorm.DB {
	return db.Order("`order` asc")
}

// FindSubjectsByLevel 查询某考试级别的科目及其下全部学科、章节和知识点。
// level 为空的科目视为通用资料，所有级别都会返回。
func (r *LearningMaterialRepository) FindSubjectsByLevel(ctx context.Context, level model.CertificationLevel) ([]model.MaterialSubject, error) {
	var subjects []model.MaterialSubject
	err := r.DB.WithContext(ctx).
		Preload("Disciplines", orderAsc).
		Preload("Disciplines.Chapters", orderAsc).
		Preload("Disciplines.Chapters.KnowledgePoints", orderAsc).
		Where("level = ? OR level = ''", level).
		Order("`order` asc").
		Find(&subjects).Error
	return subjects, err
}

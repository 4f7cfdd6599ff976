package service

import (
	"context"
	"fmt"

	"study_plan_backend/internal/model"
	"study_plan_backend/internal/util"
)

type materialStore interface {
	FindSubjectsByLevel(ctx context.Context, level model.CertificationLevel) ([]model.MaterialSubject, error)
}

// LearningMaterialService 只读地提供组装好的资料树
type LearningMaterialService struct {
	Repo materialStore
}

func NewLearningMaterialService(repo materialStore) *LearningMaterialService {
	return &LearningMaterialService{Repo: repo}
}

// GetMaterial 没有任何资料时返回 util.ErrMaterialNotFound
func (s *LearningMaterialService) GetMaterial(ctx context.Context, level model.CertificationLevel) (*model.LearningMaterial, error) {
	subjects, err := s.Repo.FindSubjectsByLevel(ctx, level)
	if err != nil {
		return nil, fmt.Errorf("load learning material: %w", err)
	}
	material := BuildLearningMaterial(subjects)
	if len(material.Subjects) == 0 {
		return nil, util.ErrMaterialNotFound
	}
	return material, nil
}

// BuildLearningMaterial 把数据库行转换为资料树，跳过名称为空的节点
func BuildLearningMaterial(subjects []model.MaterialSubject) *model.LearningMaterial {
	material := &model.LearningMaterial{Subjects: make([]model.SubjectNode, 0, len(subjects))}
	for _, s := range subjects {
		if s.Name == "" {
			continue
		}
		subject := model.SubjectNode{ID: s.ID, Name: s.Name}
		for _, d := range s.Disciplines {
			if d.Name == "" {
				continue
			}
			discipline := model.DisciplineNode{ID: d.ID, Name: d.Name}
			for _, c := range d.Chapters {
				if c.Name == "" {
					continue
				}
				chapter := model.ChapterNode{ID: c.ID, Name: c.Name}
				for _, kp := range c.KnowledgePoints {
					if kp.Name == "" {
						continue
					}
					chapter.KnowledgePoints = append(chapter.KnowledgePoints, model.KnowledgePointNode{ID: kp.ID, Name: kp.Name})
				}
				discipline.Chapters = append(discipline.Chapters, chapter)
			}
			subject.Disciplines = append(subject.Disciplines, discipline)
		}
		material.Subjects = append(material.Subjects, subject)
	}
	return material
}

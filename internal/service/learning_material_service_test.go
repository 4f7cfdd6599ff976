package service

import (
	"context"
	"errors"
	"testing"

	"study_plan_backend/internal/model"
	"study_plan_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMaterialStore struct {
	subjects []model.MaterialSubject
	err      error
	level    model.CertificationLevel
}

func (f *fakeMaterialStore) FindSubjectsByLevel(_ context.Context, level model.CertificationLevel) ([]model.MaterialSubject, error) {
	f.level = level
	return f.subjects, f.err
}

func seedSubjects() []model.MaterialSubject {
	kp := func(id, name string) model.MaterialKnowledgePoint {
		return model.MaterialKnowledgePoint{UUIDBase: model.UUIDBase{ID: id}, Name: name}
	}
	return []model.MaterialSubject{
		{
			UUIDBase: model.UUIDBase{ID: "s1"},
			Name:     "基础护理学",
			Disciplines: []model.MaterialDiscipline{{
				UUIDBase: model.UUIDBase{ID: "d1"},
				Name:     "基础护理",
				Chapters: []model.MaterialChapter{
					{
						UUIDBase:        model.UUIDBase{ID: "c1"},
						Name:            "生命体征的评估与护理",
						KnowledgePoints: []model.MaterialKnowledgePoint{kp("k1", "体温的测量"), kp("k2", ""), kp("k3", "血压的测量")},
					},
					{UUIDBase: model.UUIDBase{ID: "c-empty"}, Name: ""},
				},
			}},
		},
		{UUIDBase: model.UUIDBase{ID: "s-empty"}, Name: ""},
		{
			UUIDBase: model.UUIDBase{ID: "s2"},
			Name:     "内科护理学",
			Disciplines: []model.MaterialDiscipline{{
				UUIDBase: model.UUIDBase{ID: "d2"},
				Name:     "呼吸系统",
				Chapters: []model.MaterialChapter{{
					UUIDBase:        model.UUIDBase{ID: "c2"},
					Name:            "支气管哮喘",
					KnowledgePoints: []model.MaterialKnowledgePoint{kp("k4", "哮喘急性发作的护理")},
				}},
			}},
		},
	}
}

func TestBuildLearningMaterial(t *testing.T) {
	material := BuildLearningMaterial(seedSubjects())

	assert.Equal(t, []string{"基础护理学", "内科护理学"}, material.SubjectNames())
	assert.Equal(t, 3, material.KnowledgePointCount())

	chapters := material.Chapters()
	require.Len(t, chapters, 2)
	assert.Equal(t, model.ChapterRef{
		Subject:         "基础护理学",
		Discipline:      "基础护理",
		Chapter:         "生命体征的评估与护理",
		KnowledgePoints: []string{"体温的测量", "血压的测量"},
	}, chapters[0])
	assert.Equal(t, "k4", material.Subjects[1].Disciplines[0].Chapters[0].KnowledgePoints[0].ID)
}

func TestGetMaterial(t *testing.T) {
	ctx := context.Background()

	svc := NewLearningMaterialService(&fakeMaterialStore{subjects: seedSubjects()})
	material, err := svc.GetMaterial(ctx, model.LevelNurse)
	require.NoError(t, err)
	assert.Len(t, material.Subjects, 2)

	svc = NewLearningMaterialService(&fakeMaterialStore{})
	_, err = svc.GetMaterial(ctx, model.LevelNurse)
	assert.ErrorIs(t, err, util.ErrMaterialNotFound)

	dbErr := errors.New("db down")
	svc = NewLearningMaterialService(&fakeMaterialStore{err: dbErr})
	_, err = svc.GetMaterial(ctx, model.LevelSupervisor)
	assert.ErrorIs(t, err, dbErr)
}

package planner

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"study_plan_backend/internal/model"
)

var referenceDate = time.Date(2026, 10, 16, 9, 30, 0, 0, time.UTC)

func testOptions(days, kps int) Options {
	return Options{
		Days:            days,
		ExamDays:        days,
		KnowledgePoints: kps,
		DailyMinutes:    120,
		StartDate:       time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
	}
}

func testMaterial() *model.LearningMaterial {
	return &model.LearningMaterial{
		Subjects: []model.SubjectNode{
			{
				ID:   "s1",
				Name: "基础护理学",
				Disciplines: []model.DisciplineNode{{
					ID:   "d1",
					Name: "护理基础",
					Chapters: []model.ChapterNode{
						{ID: "c1", Name: "生命体征的评估", KnowledgePoints: []model.KnowledgePointNode{
							{ID: "k1", Name: "体温测量"}, {ID: "k2", Name: "脉搏测量"}, {ID: "k3", Name: "血压测量"},
						}},
						{ID: "c2", Name: "给药", KnowledgePoints: []model.KnowledgePointNode{
							{ID: "k4", Name: "口服给药"}, {ID: "k5", Name: "注射给药"},
						}},
					},
				}},
			},
			{
				ID:   "s2",
				Name: "内科护理学",
				Disciplines: []model.DisciplineNode{{
					ID:   "d2",
					Name: "呼吸系统",
					Chapters: []model.ChapterNode{
						{ID: "c3", Name: "慢性阻塞性肺疾病", KnowledgePoints: []model.KnowledgePointNode{
							{ID: "k6", Name: "COPD 病因"}, {ID: "k7", Name: "COPD 护理措施"},
						}},
						{ID: "c4", Name: "支气管哮喘"},
					},
				}},
			},
		},
	}
}

// requireValidPlan 校验计划满足所有结构约束
func requireValidPlan(t *testing.T, plan model.StudyPlanResult, days int) {
	t.Helper()

	require.NotEmpty(t, plan.Overview)
	require.NotEmpty(t, plan.Phases)
	require.True(t, PhasesCover(plan.Phases, days), "phases must cover [1,%d]: %+v", days, plan.Phases)

	require.Len(t, plan.DailyPlans, days)
	phaseIDs := map[int]model.Phase{}
	for _, p := range plan.Phases {
		phaseIDs[p.ID] = p
	}
	for i, d := range plan.DailyPlans {
		require.Equal(t, i+1, d.Day)
		phase, ok := phaseIDs[d.PhaseID]
		require.True(t, ok, "day %d references unknown phase %d", d.Day, d.PhaseID)
		require.True(t, phase.Contains(d.Day), "day %d outside phase %d", d.Day, d.PhaseID)
		require.NotEmpty(t, d.Date)
		require.NotEmpty(t, d.Title)
		require.NotEmpty(t, d.Subjects)
		require.NotEmpty(t, d.Tasks)
		require.NotEmpty(t, d.ReviewTips)
		for _, task := range d.Tasks {
			require.Greater(t, task.DurationMinutes, 0)
		}
	}
}

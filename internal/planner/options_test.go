package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"study_plan_backend/internal/model"
)

func TestEffectiveDays(t *testing.T) {
	tests := []struct {
		name string
		in   int
		want int
	}{
		{"past exam", -3, 1},
		{"exam today", 0, 1},
		{"short horizon", 12, 12},
		{"exactly cap", 30, 30},
		{"long horizon", 120, 30},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EffectiveDays(tt.in))
		})
	}
}

func TestKnowledgeDensity(t *testing.T) {
	assert.Equal(t, DefaultKnowledgePoints, KnowledgeDensity(nil))
	assert.Equal(t, DefaultKnowledgePoints, KnowledgeDensity(&model.LearningMaterial{}))
	assert.Equal(t, 7, KnowledgeDensity(testMaterial()))
}

func TestNewOptions(t *testing.T) {
	survey := model.SurveyInput{
		TargetLevel: model.LevelNurse,
		ExamDate:    "2027-01-14",
		WeeklyHours: 14,
		SubjectLevels: []model.SubjectAssessment{
			{Subject: "基础护理学", Level: 4},
			{Subject: "内科护理学", Level: 1},
		},
	}

	opts := NewOptions(survey, testMaterial(), referenceDate)

	assert.Equal(t, 90, opts.ExamDays)
	assert.Equal(t, MaxPlanDays, opts.Days)
	assert.Equal(t, 7, opts.KnowledgePoints)
	assert.Equal(t, 120, opts.DailyMinutes)
	assert.Equal(t, "2026-10-16", opts.StartDate.Format(dateLayout))
	assert.Equal(t, []string{"内科护理学", "基础护理学"}, opts.Subjects)
}

func TestPrioritizeSubjectsWithoutMaterial(t *testing.T) {
	survey := model.SurveyInput{SubjectLevels: []model.SubjectAssessment{
		{Subject: "儿科护理学", Level: 1},
		{Subject: "基础护理学", Level: 5},
	}}

	got := prioritizeSubjects(subjectPool(nil), survey)

	assert.Equal(t, "儿科护理学", got[0])
	assert.Equal(t, "基础护理学", got[len(got)-1])
	assert.Len(t, got, len(DefaultSubjects))
	assert.Equal(t, "基础护理学", DefaultSubjects[0], "default list must not be reordered in place")
}

func TestPacing(t *testing.T) {
	assert.Equal(t, 2, testOptions(10, 20).Pacing())
	assert.Equal(t, 3, testOptions(10, 21).Pacing())
	assert.Equal(t, 1, testOptions(30, 7).Pacing())
}

package model

import "encoding/json"

// Phase 学习阶段，阶段之间首尾相接并覆盖 1..D
type Phase struct {
	ID                   int             `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	StartDay             int             `json:"startDay"`
	EndDay               int             `json:"endDay"`
	FocusAreas           []string        `json:"focusAreas"`
	LearningGoals        []string        `json:"learningGoals"`
	RecommendedResources []string        `json:"recommendedResources"`
	MonthlyPlan          json.RawMessage `json:"monthlyPlan,omitempty"`
}

// Contains 判断某天是否落在阶段范围内
func (p Phase) Contains(day int) bool {
	return day >= p.StartDay && day <= p.EndDay
}

type Task struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	DurationMinutes int      `json:"durationMinutes"`
	Resources       []string `json:"resources"`
}

type DailyPlan struct {
	Day        int      `json:"day"`
	Date       string   `json:"date"`
	PhaseID    int      `json:"phaseId"`
	Title      string   `json:"title"`
	Subjects   []string `json:"subjects"`
	Tasks      []Task   `json:"tasks"`
	ReviewTips string   `json:"reviewTips"`
}

// StudyPlanResult 最终返回给调用方的学习计划
type StudyPlanResult struct {
	Overview   string      `json:"overview"`
	Phases     []Phase     `json:"phases"`
	DailyPlans []DailyPlan `json:"dailyPlans"`
	NextSteps  string      `json:"nextSteps,omitempty"`
}

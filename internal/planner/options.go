// Package planner 包含学习计划生成管线中的纯函数部分：
// 响应恢复（Recover）、一致性补全（Complete）与本地兜底生成（GenerateFallback）。
// 这里的函数不做任何 I/O，可在任意 goroutine 中并发调用。
package planner

import (
	"sort"
	"time"

	"study_plan_backend/internal/model"
)

const (
	// MaxPlanDays 单次生成的逐日计划上限，超出部分通过 nextSteps 引导用户后续再生成
	MaxPlanDays = 30
	// DefaultKnowledgePoints 没有学习资料时使用的知识点密度
	DefaultKnowledgePoints = 30
	// DefaultDailyMinutes 问卷未填写学习时长时的每日学习分钟数
	DefaultDailyMinutes = 120

	minTaskMinutes = 20
	dateLayout     = "2006-01-02"
)

// DefaultSubjects 没有学习资料时用于轮换的通用护理科目
var DefaultSubjects = []string{
	"基础护理学",
	"内科护理学",
	"外科护理学",
	"妇产科护理学",
	"儿科护理学",
	"护理伦理与法规",
}

// Options 一次生成请求的全部目标参数
type Options struct {
	Days            int // D，实际生成的天数
	ExamDays        int // 距离考试的真实天数
	KnowledgePoints int // K，知识点密度
	DailyMinutes    int
	StartDate       time.Time
	Material        *model.LearningMaterial
	Subjects        []string // 轮换顺序，为空时取资料科目或 DefaultSubjects
	TargetLevel     model.CertificationLevel
}

// EffectiveDays 计算 D = min(daysUntilExam, 30)，且至少为 1
func EffectiveDays(daysUntilExam int) int {
	if daysUntilExam < 1 {
		return 1
	}
	if daysUntilExam > MaxPlanDays {
		return MaxPlanDays
	}
	return daysUntilExam
}

// KnowledgeDensity 统计资料中的知识点数量，资料缺失或为空时返回默认值
func KnowledgeDensity(material *model.LearningMaterial) int {
	if n := material.KnowledgePointCount(); n > 0 {
		return n
	}
	return DefaultKnowledgePoints
}

// NewOptions 根据问卷、资料和参考日期推导生成参数
func NewOptions(survey model.SurveyInput, material *model.LearningMaterial, ref time.Time) Options {
	examDays := survey.DaysUntilExam(ref)
	return Options{
		Days:            EffectiveDays(examDays),
		ExamDays:        examDays,
		KnowledgePoints: KnowledgeDensity(material),
		DailyMinutes:    survey.DailyMinutes(),
		StartDate:       time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, ref.Location()),
		Material:        material,
		Subjects:        prioritizeSubjects(subjectPool(material), survey),
		TargetLevel:     survey.TargetLevel,
	}
}

func (o Options) normalized() Options {
	if o.Days < 1 {
		o.Days = 1
	}
	if o.Days > MaxPlanDays {
		o.Days = MaxPlanDays
	}
	if o.ExamDays < o.Days {
		o.ExamDays = o.Days
	}
	if o.KnowledgePoints < 1 {
		o.KnowledgePoints = KnowledgeDensity(o.Material)
	}
	if o.DailyMinutes <= 0 {
		o.DailyMinutes = DefaultDailyMinutes
	}
	if len(o.Subjects) == 0 {
		o.Subjects = subjectPool(o.Material)
	}
	return o
}

// Pacing 每天需要覆盖的知识点数 ceil(K / D)
func (o Options) Pacing() int {
	o = o.normalized()
	return (o.KnowledgePoints + o.Days - 1) / o.Days
}

func subjectPool(material *model.LearningMaterial) []string {
	if names := material.SubjectNames(); len(names) > 0 {
		return names
	}
	return append([]string(nil), DefaultSubjects...)
}

// prioritizeSubjects 自评越薄弱的科目越靠前，未自评的科目视为中等水平
func prioritizeSubjects(subjects []string, survey model.SurveyInput) []string {
	out := append([]string(nil), subjects...)
	level := func(name string) int {
		if l := survey.SubjectLevel(name); l > 0 {
			return l
		}
		return (model.SubjectLevelWeak + model.SubjectLevelProficient) / 2
	}
	sort.SliceStable(out, func(i, j int) bool {
		return level(out[i]) < level(out[j])
	})
	return out
}

package model

import (
	"math"
	"strings"
	"time"
)

// CertificationLevel 目标考试级别
type CertificationLevel string

const (
	LevelNurse        CertificationLevel = "nurse"        // 护士执业资格
	LevelPractitioner CertificationLevel = "practitioner" // 初级护师
	LevelSupervisor   CertificationLevel = "supervisor"   // 主管护师
)

// DisplayName 返回考试级别的中文名称
func (l CertificationLevel) DisplayName() string {
	switch l {
	case LevelNurse:
		return "护士执业资格考试"
	case LevelPractitioner:
		return "初级护师资格考试"
	case LevelSupervisor:
		return "主管护师资格考试"
	default:
		return "护理资格考试"
	}
}

// AttemptStatus 备考状态
type AttemptStatus string

const (
	AttemptFirst  AttemptStatus = "first"  // 首次参加
	AttemptRetake AttemptStatus = "retake" // 重考
)

const (
	SubjectLevelWeak       = 1
	SubjectLevelProficient = 5
)

// SubjectAssessment 用户对单个科目的自我评估，Level 取值 1（薄弱）到 5（熟练）
type SubjectAssessment struct {
	Subject string `json:"subject" binding:"required"`
	Level   int    `json:"level" binding:"min=1,max=5"`
}

// SurveyInput 学习计划问卷
type SurveyInput struct {
	TargetLevel   CertificationLevel  `json:"targetLevel" binding:"required,oneof=nurse practitioner supervisor"`
	AttemptStatus AttemptStatus       `json:"attemptStatus" binding:"omitempty,oneof=first retake"`
	SubjectLevels []SubjectAssessment `json:"subjectLevels" binding:"dive"`
	WeeklyHours   float64             `json:"weeklyHours" binding:"min=0,max=168"`
	DailyHours    float64             `json:"dailyHours" binding:"min=0,max=24"`
	ExamDate      string              `json:"examDate" binding:"required"` // 2006-01-02
}

// DefaultDaysUntilExam 考试日期缺失或无法解析时使用的备考天数
const DefaultDaysUntilExam = 30

// DaysUntilExam 以参考日期计算距离考试的天数，考试当天或已过期时返回 1
func (s SurveyInput) DaysUntilExam(ref time.Time) int {
	exam, err := time.Parse("2006-01-02", strings.TrimSpace(s.ExamDate))
	if err != nil {
		return DefaultDaysUntilExam
	}
	// 按日历日相减，统一放到 UTC 避免夏令时切换少算一天
	today := time.Date(ref.Year(), ref.Month(), ref.Day(), 0, 0, 0, 0, time.UTC)
	days := int(exam.Sub(today).Hours() / 24)
	if days < 1 {
		return 1
	}
	return days
}

// DailyMinutes 每日可用学习分钟数，优先使用每日时长，其次按每周时长折算
func (s SurveyInput) DailyMinutes() int {
	if s.DailyHours > 0 {
		return int(math.Round(s.DailyHours * 60))
	}
	if s.WeeklyHours > 0 {
		return int(math.Round(s.WeeklyHours * 60 / 7))
	}
	return 0
}

// SubjectLevel 返回某科目的自评等级，未填写时返回 0
func (s SurveyInput) SubjectLevel(subject string) int {
	for _, a := range s.SubjectLevels {
		if a.Subject == subject {
			return a.Level
		}
	}
	return 0
}

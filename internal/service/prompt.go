package service

import (
	"fmt"
	"strings"

	"study_plan_backend/internal/model"
	"study_plan_backend/internal/planner"
)

// PromptMode 短期与长期备考共用一套提示词，差异由该结构体描述
type PromptMode struct {
	Name         string
	Days         int  // 要求模型输出的逐日计划天数
	ExamDays     int  // 距离考试的真实天数
	AskNextSteps bool // 考试在计划范围之外时要求给出后续建议
	Focus        string
}

const (
	PromptModeShort = "short"
	PromptModeLong  = "long"
)

// NewPromptMode 根据生成参数选择模式，考试日期超出单次计划上限时为长期模式
func NewPromptMode(opts planner.Options) PromptMode {
	if opts.ExamDays > opts.Days {
		return PromptMode{
			Name:         PromptModeLong,
			Days:         opts.Days,
			ExamDays:     opts.ExamDays,
			AskNextSteps: true,
			Focus:        "本次只规划最近的学习周期，以打牢基础为主，在 nextSteps 中说明之后的安排",
		}
	}
	return PromptMode{
		Name:     PromptModeShort,
		Days:     opts.Days,
		ExamDays: opts.ExamDays,
		Focus:    "考试临近，计划需要覆盖到考试前一天，后期以真题与模拟考试为主",
	}
}

const planSchema = `{
  "overview": "计划总体说明",
  "phases": [
    {"id": 1, "name": "阶段名称", "description": "阶段说明", "startDay": 1, "endDay": 12,
     "focusAreas": ["重点"], "learningGoals": ["目标"], "recommendedResources": ["资源"]}
  ],
  "dailyPlans": [
    {"day": 1, "date": "YYYY-MM-DD", "phaseId": 1, "title": "当天主题", "subjects": ["科目"],
     "tasks": [{"title": "任务", "description": "说明", "durationMinutes": 60, "resources": ["资源"]}],
     "reviewTips": "复习建议"}
  ],
  "nextSteps": "后续建议"
}`

// BuildPlanPrompt 组装发送给模型的用户消息
func BuildPlanPrompt(survey model.SurveyInput, opts planner.Options, outlineLimit int) string {
	mode := NewPromptMode(opts)
	phases := planner.SplitPhases(opts.Days)
	dailyMinutes := opts.DailyMinutes
	if dailyMinutes <= 0 {
		dailyMinutes = planner.DefaultDailyMinutes
	}

	var b strings.Builder
	fmt.Fprintf(&b, "你是一名资深的护理资格考试辅导老师，请为考生制定%s备考计划。\n\n", survey.TargetLevel.DisplayName())

	b.WriteString("【考生情况】\n")
	if survey.AttemptStatus == model.AttemptRetake {
		b.WriteString("- 备考状态：重考\n")
	} else {
		b.WriteString("- 备考状态：首次参加\n")
	}
	fmt.Fprintf(&b, "- 距离考试：%d 天\n", mode.ExamDays)
	fmt.Fprintf(&b, "- 每天可学习：约 %d 分钟\n", dailyMinutes)
	if len(survey.SubjectLevels) > 0 {
		b.WriteString("- 科目自评（1 为薄弱，5 为熟练）：")
		levels := make([]string, 0, len(survey.SubjectLevels))
		for _, a := range survey.SubjectLevels {
			levels = append(levels, fmt.Sprintf("%s %d", a.Subject, a.Level))
		}
		b.WriteString(strings.Join(levels, "；"))
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "- 建议科目顺序：%s\n", strings.Join(opts.Subjects, "、"))

	if outline := materialOutline(opts.Material, outlineLimit); outline != "" {
		fmt.Fprintf(&b, "\n【学习资料】共 %d 个知识点，每天需要掌握约 %d 个：\n", opts.KnowledgePoints, opts.Pacing())
		b.WriteString(outline)
	}

	b.WriteString("\n【计划要求】\n")
	fmt.Fprintf(&b, "- %s。\n", mode.Focus)
	fmt.Fprintf(&b, "- dailyPlans 必须恰好包含 %d 天，day 从 1 到 %d 连续，date 从 %s 开始逐日递增。\n",
		mode.Days, mode.Days, opts.StartDate.Format("2006-01-02"))
	b.WriteString("- phases 固定分为以下阶段，startDay 与 endDay 不得重叠或留空：")
	ranges := make([]string, 0, len(phases))
	for _, p := range phases {
		ranges = append(ranges, fmt.Sprintf("%d.%s（第%d-%d天）", p.ID, p.Name, p.StartDay, p.EndDay))
	}
	b.WriteString(strings.Join(ranges, "，"))
	b.WriteString("。\n")
	b.WriteString("- 工作日安排 2 个任务，周末安排 3 到 4 个任务，每个任务的 durationMinutes 必须大于 0。\n")
	if mode.AskNextSteps {
		fmt.Fprintf(&b, "- 考试在 %d 天后，请在 nextSteps 中说明完成本计划后如何继续备考。\n", mode.ExamDays)
	}

	b.WriteString("\n只输出一个 JSON 对象，不要输出任何解释或 Markdown，结构如下：\n")
	b.WriteString(planSchema)
	return b.String()
}

func materialOutline(material *model.LearningMaterial, limit int) string {
	chapters := material.Chapters()
	if len(chapters) == 0 {
		return ""
	}
	if limit <= 0 || limit > len(chapters) {
		limit = len(chapters)
	}

	var b strings.Builder
	for _, ch := range chapters[:limit] {
		fmt.Fprintf(&b, "- %s / %s", ch.Subject, ch.Chapter)
		if len(ch.KnowledgePoints) > 0 {
			fmt.Fprintf(&b, "：%s", strings.Join(ch.KnowledgePoints, "、"))
		}
		b.WriteString("\n")
	}
	if rest := len(chapters) - limit; rest > 0 {
		fmt.Fprintf(&b, "- 其余 %d 个章节略\n", rest)
	}
	return b.String()
}

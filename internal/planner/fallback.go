package planner

import (
	"fmt"
	"strings"

	"study_plan_backend/internal/model"
)

// GenerateFallback 不依赖任何外部服务生成完整计划。结果只取决于输入参数
// （包括 opts.StartDate），相同输入必然得到相同输出。
func GenerateFallback(survey model.SurveyInput, opts Options) model.StudyPlanResult {
	opts = opts.normalized()
	phases := SplitPhases(opts.Days)
	b := newDayBuilder(opts, phases)

	daily := make([]model.DailyPlan, 0, opts.Days)
	for day := 1; day <= opts.Days; day++ {
		daily = append(daily, b.build(day))
	}

	result := model.StudyPlanResult{
		Overview:   fallbackOverview(survey, opts, phases),
		Phases:     phases,
		DailyPlans: daily,
	}
	if opts.Days < opts.ExamDays {
		result.NextSteps = nextStepsText(opts)
	}
	return result
}

func fallbackOverview(survey model.SurveyInput, opts Options, phases []model.Phase) string {
	var b strings.Builder
	fmt.Fprintf(&b, "距离%s还有 %d 天，", survey.TargetLevel.DisplayName(), opts.ExamDays)
	if survey.AttemptStatus == model.AttemptRetake {
		b.WriteString("这次是再次备考，建议重点攻克上次失分较多的科目。")
	} else {
		b.WriteString("建议按计划稳步推进，先打牢基础再逐步提升。")
	}
	fmt.Fprintf(&b, "本计划覆盖 %d 天，分为 %d 个阶段：", opts.Days, len(phases))
	names := make([]string, 0, len(phases))
	for _, p := range phases {
		names = append(names, fmt.Sprintf("%s（第%d-%d天）", p.Name, p.StartDay, p.EndDay))
	}
	b.WriteString(strings.Join(names, "、"))
	fmt.Fprintf(&b, "。每天安排约 %d 分钟，平均每天掌握 %d 个知识点。", opts.DailyMinutes, opts.Pacing())

	var weak []string
	for _, a := range survey.SubjectLevels {
		if a.Level > 0 && a.Level <= 2 {
			weak = append(weak, a.Subject)
		}
	}
	if len(weak) > 0 {
		fmt.Fprintf(&b, "需要优先加强的科目：%s。", strings.Join(weak, "、"))
	}
	return b.String()
}

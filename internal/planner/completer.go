package planner

import (
	"fmt"
	"sort"
	"strings"

	"study_plan_backend/internal/model"
)

// Complete 把候选补全为满足全部约束的计划，永远成功：
// 阶段不完整时整体按 40/30/30 重新划分；逐日计划按天排序去重（同一天保留第一次出现），
// 缺失的天按统一规则合成。
func Complete(c Candidate, opts Options) model.StudyPlanResult {
	opts = opts.normalized()
	days := opts.Days

	phases := SplitPhases(days)
	if PhasesCover(c.Phases, days) {
		phases = append([]model.Phase(nil), c.Phases...)
	}
	b := newDayBuilder(opts, phases)

	kept := keepDailyPlans(c.DailyPlans, days)
	daily := make([]model.DailyPlan, 0, days)
	for day := 1; day <= days; day++ {
		if p, ok := kept[day]; ok {
			daily = append(daily, b.repair(p))
			continue
		}
		daily = append(daily, b.build(day))
	}

	overview := strings.TrimSpace(c.Overview)
	if overview == "" {
		overview = genericOverview(opts)
	}
	nextSteps := strings.TrimSpace(c.NextSteps)
	if nextSteps == "" && days < opts.ExamDays {
		nextSteps = nextStepsText(opts)
	}

	return model.StudyPlanResult{
		Overview:   overview,
		Phases:     phases,
		DailyPlans: daily,
		NextSteps:  nextSteps,
	}
}

// keepDailyPlans 过滤越界的天数，按天稳定排序，同一天只保留第一次出现的计划
func keepDailyPlans(plans []model.DailyPlan, days int) map[int]model.DailyPlan {
	sorted := append([]model.DailyPlan(nil), plans...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Day < sorted[j].Day })

	kept := make(map[int]model.DailyPlan, len(sorted))
	for _, p := range sorted {
		if p.Day < 1 || p.Day > days {
			continue
		}
		if _, dup := kept[p.Day]; dup {
			continue
		}
		kept[p.Day] = p
	}
	return kept
}

func genericOverview(opts Options) string {
	return fmt.Sprintf("本计划覆盖接下来的 %d 天，按照基础夯实、强化提升、冲刺模考三个阶段推进，每天安排约 %d 分钟的学习任务。",
		opts.Days, opts.DailyMinutes)
}

func nextStepsText(opts Options) string {
	return fmt.Sprintf("距离考试还有 %d 天，本计划只安排了最近 %d 天。完成本计划后，请根据最新的学习情况重新填写问卷，生成下一阶段的学习计划。",
		opts.ExamDays, opts.Days)
}

package planner

import "study_plan_backend/internal/model"

type phaseTemplate struct {
	name        string
	description string
	focus       []string
	goals       []string
	resources   []string
}

var phaseTemplates = [3]phaseTemplate{
	{
		name:        "基础夯实阶段",
		description: "系统梳理各科目核心知识点，建立完整的知识框架",
		focus:       []string{"教材通读", "核心概念理解", "基础题型练习"},
		goals:       []string{"完成全部章节的第一轮学习", "掌握高频基础考点"},
		resources:   []string{"考试指定教材", "考试大纲", "章节练习题"},
	},
	{
		name:        "强化提升阶段",
		description: "针对薄弱科目专项突破，通过真题训练提升解题能力",
		focus:       []string{"薄弱科目专项训练", "历年真题练习", "错题整理"},
		goals:       []string{"薄弱科目正确率明显提升", "熟悉常见出题方式"},
		resources:   []string{"历年真题汇编", "专项练习题库", "错题本"},
	},
	{
		name:        "冲刺模考阶段",
		description: "全真模拟考试与查漏补缺，调整考试节奏和心态",
		focus:       []string{"全真模拟考试", "错题复盘", "高频考点速记"},
		goals:       []string{"适应考试时间与节奏", "稳定发挥，查漏补缺"},
		resources:   []string{"全真模拟试卷", "考点速记手册", "错题本"},
	},
}

// SplitPhases 按 40/30/30 划分阶段：p1 = floor(0.4D)，p2 = floor(0.3D)，p3 = D - p1 - p2。
// D >= 3 时每个阶段至少 1 天；D < 3 时只保留最后 D 个阶段，每个阶段 1 天。
func SplitPhases(days int) []model.Phase {
	if days < 1 {
		days = 1
	}
	if days < len(phaseTemplates) {
		phases := make([]model.Phase, 0, days)
		for i := 0; i < days; i++ {
			phases = append(phases, newPhase(i+1, phaseTemplates[len(phaseTemplates)-days+i], i+1, i+1))
		}
		return phases
	}

	p1 := max(1, days*4/10)
	p2 := max(1, days*3/10)

	return []model.Phase{
		newPhase(1, phaseTemplates[0], 1, p1),
		newPhase(2, phaseTemplates[1], p1+1, p1+p2),
		newPhase(3, phaseTemplates[2], p1+p2+1, days),
	}
}

func newPhase(id int, t phaseTemplate, start, end int) model.Phase {
	return model.Phase{
		ID:                   id,
		Name:                 t.name,
		Description:          t.description,
		StartDay:             start,
		EndDay:               end,
		FocusAreas:           append([]string(nil), t.focus...),
		LearningGoals:        append([]string(nil), t.goals...),
		RecommendedResources: append([]string(nil), t.resources...),
	}
}

// PhasesCover 判断阶段是否按顺序、无重叠、无空隙地覆盖 [1, days]，且阶段数量符合划分规则
func PhasesCover(phases []model.Phase, days int) bool {
	if len(phases) == 0 || len(phases) != len(SplitPhases(days)) {
		return false
	}
	next := 1
	for i, p := range phases {
		if p.ID != i+1 || p.StartDay != next || p.EndDay < p.StartDay {
			return false
		}
		next = p.EndDay + 1
	}
	return next == days+1
}

// phaseForDay 返回包含该天的阶段，阶段已保证覆盖 [1, D]
func phaseForDay(phases []model.Phase, day int) model.Phase {
	for _, p := range phases {
		if p.Contains(day) {
			return p
		}
	}
	return phases[len(phases)-1]
}

package planner

import (
	"fmt"
	"strings"
	"time"

	"study_plan_backend/internal/model"
)

var reviewTips = []string{
	"睡前用 10 分钟回顾今天的知识点，第二天早上再快速过一遍。",
	"把今天做错的题目记入错题本，并写下错误原因。",
	"学习 45 分钟后休息 5 分钟，保持专注比延长时间更重要。",
	"尝试用自己的话复述今天的重点内容，检验是否真正理解。",
	"坚持就是胜利，今天的每一步都在为考试加分！",
	"结合临床案例记忆护理措施，比死记硬背更牢固。",
	"周末抽时间回看本周错题，巩固薄弱环节。",
}

// studyItem 某一天需要覆盖的一个知识单元
type studyItem struct {
	subject string
	chapter string
	name    string
}

// dayBuilder 按统一规则合成逐日计划，补全器和兜底生成器共用
type dayBuilder struct {
	opts     Options
	phases   []model.Phase
	items    []studyItem
	subjects []string
	pacing   int
}

func newDayBuilder(opts Options, phases []model.Phase) *dayBuilder {
	return &dayBuilder{
		opts:     opts,
		phases:   phases,
		items:    studyItems(opts.Material),
		subjects: opts.Subjects,
		pacing:   opts.Pacing(),
	}
}

// studyItems 展平资料：优先使用知识点，章节没有知识点时以章节本身作为学习单元
func studyItems(material *model.LearningMaterial) []studyItem {
	var items []studyItem
	for _, c := range material.Chapters() {
		if len(c.KnowledgePoints) == 0 {
			items = append(items, studyItem{subject: c.Subject, chapter: c.Chapter, name: c.Chapter})
			continue
		}
		for _, kp := range c.KnowledgePoints {
			items = append(items, studyItem{subject: c.Subject, chapter: c.Chapter, name: kp})
		}
	}
	return items
}

func (b *dayBuilder) date(day int) time.Time {
	return b.opts.StartDate.AddDate(0, 0, day-1)
}

func (b *dayBuilder) isWeekend(day int) bool {
	wd := b.date(day).Weekday()
	return wd == time.Saturday || wd == time.Sunday
}

// itemsForDay 按 ceil(K/D) 的节奏依次取出当天的知识单元，资料顺序即由浅入深的顺序
func (b *dayBuilder) itemsForDay(day int) []studyItem {
	if len(b.items) == 0 {
		return nil
	}
	out := make([]studyItem, 0, b.pacing)
	start := (day - 1) * b.pacing
	for i := 0; i < b.pacing && i < len(b.items); i++ {
		out = append(out, b.items[(start+i)%len(b.items)])
	}
	return out
}

func (b *dayBuilder) subjectsForDay(day int, items []studyItem) []string {
	var primary string
	if len(items) > 0 {
		primary = items[0].subject
	}
	if primary == "" {
		primary = b.subjects[(day-1)%len(b.subjects)]
	}
	subjects := []string{primary}
	if b.isWeekend(day) && len(b.subjects) > 1 {
		secondary := b.subjects[day%len(b.subjects)]
		if secondary == primary {
			secondary = b.subjects[(day+1)%len(b.subjects)]
		}
		if secondary != primary {
			subjects = append(subjects, secondary)
		}
	}
	return subjects
}

// build 合成一天的完整计划
func (b *dayBuilder) build(day int) model.DailyPlan {
	phase := phaseForDay(b.phases, day)
	items := b.itemsForDay(day)
	subjects := b.subjectsForDay(day, items)

	return model.DailyPlan{
		Day:        day,
		Date:       b.date(day).Format(dateLayout),
		PhaseID:    phase.ID,
		Title:      fmt.Sprintf("第%d天：%s · %s", day, phase.Name, subjects[0]),
		Subjects:   subjects,
		Tasks:      b.tasks(day, phase, subjects, items),
		ReviewTips: reviewTips[(day-1)%len(reviewTips)],
	}
}

// tasks 工作日 2 个任务，周末 4 个任务；任务措辞随阶段从"学习"过渡到"模考复盘"
func (b *dayBuilder) tasks(day int, phase model.Phase, subjects []string, items []studyItem) []model.Task {
	primary := subjects[0]
	secondary := primary
	if len(subjects) > 1 {
		secondary = subjects[1]
	}
	scope := b.scopeText(items)
	stage := b.stage(phase)

	var tasks []model.Task
	switch stage {
	case 0:
		tasks = []model.Task{
			{
				Title:       fmt.Sprintf("学习%s：%s", primary, b.topic(items, primary)),
				Description: "通读教材相关章节，理解核心概念。" + scope,
				Resources:   []string{fmt.Sprintf("《%s》教材", primary)},
			},
			{
				Title:       fmt.Sprintf("%s章节练习", primary),
				Description: "完成与今日知识点配套的练习题，核对答案并标记错题。",
				Resources:   []string{"章节练习题"},
			},
		}
	case 1:
		tasks = []model.Task{
			{
				Title:       fmt.Sprintf("%s专项强化：%s", primary, b.topic(items, primary)),
				Description: "针对高频考点做专项训练，重点突破薄弱环节。" + scope,
				Resources:   []string{fmt.Sprintf("《%s》专项练习", primary)},
			},
			{
				Title:       fmt.Sprintf("%s历年真题练习", primary),
				Description: "限时完成一组真题，分析出题思路并整理错题。",
				Resources:   []string{"历年真题汇编"},
			},
		}
	default:
		tasks = []model.Task{
			{
				Title:       fmt.Sprintf("%s综合复习：%s", primary, b.topic(items, primary)),
				Description: "回顾易错考点，查漏补缺。" + scope,
				Resources:   []string{"考点速记手册"},
			},
			{
				Title:       "错题复盘",
				Description: "重做错题本中的题目，确认每道题都已真正掌握。",
				Resources:   []string{"错题本"},
			},
		}
	}

	if b.isWeekend(day) {
		if stage == 2 {
			tasks = append(tasks,
				model.Task{
					Title:       "全真模拟考试",
					Description: "按正式考试时间完成一套模拟试卷，结束后统计各科得分。",
					Resources:   []string{"全真模拟试卷"},
				},
				model.Task{
					Title:       fmt.Sprintf("%s高频考点速记", secondary),
					Description: "快速浏览高频考点清单，强化记忆。",
					Resources:   []string{"考点速记手册"},
				},
			)
		} else {
			tasks = append(tasks,
				model.Task{
					Title:       fmt.Sprintf("%s拓展学习", secondary),
					Description: "利用周末时间推进第二个科目的学习进度。",
					Resources:   []string{fmt.Sprintf("《%s》教材", secondary)},
				},
				model.Task{
					Title:       "本周学习回顾",
					Description: "整理本周笔记和错题，梳理知识框架。",
					Resources:   []string{"学习笔记", "错题本"},
				},
			)
		}
	}

	minutes := b.taskMinutes(len(tasks))
	for i := range tasks {
		tasks[i].DurationMinutes = minutes[i]
	}
	return tasks
}

// stage 返回阶段序号：0 基础、1 强化、2 冲刺；D < 3 时阶段按模板末尾对齐
func (b *dayBuilder) stage(phase model.Phase) int {
	return len(phaseTemplates) - len(b.phases) + phase.ID - 1
}

func (b *dayBuilder) topic(items []studyItem, subject string) string {
	if len(items) == 0 {
		return subject + "核心考点"
	}
	if items[0].chapter != "" {
		return items[0].chapter
	}
	return items[0].name
}

func (b *dayBuilder) scopeText(items []studyItem) string {
	text := fmt.Sprintf("本日目标：掌握 %d 个知识点", b.pacing)
	if len(items) == 0 {
		return text + "。"
	}
	names := make([]string, 0, len(items))
	for _, it := range items {
		names = append(names, it.name)
	}
	return text + "（" + strings.Join(names, "、") + "）。"
}

// taskMinutes 把每日学习时长分配给各个任务：2 个任务按 6:4，其余平均分配
func (b *dayBuilder) taskMinutes(n int) []int {
	total := b.opts.DailyMinutes
	out := make([]int, n)
	if n == 2 {
		out[0] = total * 6 / 10
		out[1] = total - out[0]
	} else {
		for i := range out {
			out[i] = total / n
		}
	}
	for i := range out {
		if out[i] < minTaskMinutes {
			out[i] = minTaskMinutes
		}
	}
	return out
}

// repair 保留候选中的逐日计划，只补齐缺失或违反约束的字段
func (b *dayBuilder) repair(p model.DailyPlan) model.DailyPlan {
	phase := phaseForDay(b.phases, p.Day)
	if p.PhaseID != phase.ID {
		p.PhaseID = phase.ID
	}
	if strings.TrimSpace(p.Date) == "" {
		p.Date = b.date(p.Day).Format(dateLayout)
	}
	items := b.itemsForDay(p.Day)
	if len(p.Subjects) == 0 {
		p.Subjects = b.subjectsForDay(p.Day, items)
	}
	if strings.TrimSpace(p.Title) == "" {
		p.Title = fmt.Sprintf("第%d天：%s · %s", p.Day, phase.Name, p.Subjects[0])
	}
	if len(p.Tasks) == 0 {
		p.Tasks = b.tasks(p.Day, phase, p.Subjects, items)
	} else if !durationsValid(p.Tasks) {
		tasks := append([]model.Task(nil), p.Tasks...)
		fallback := b.taskMinutes(len(tasks))
		for i := range tasks {
			if tasks[i].DurationMinutes <= 0 {
				tasks[i].DurationMinutes = fallback[i]
			}
		}
		p.Tasks = tasks
	}
	if strings.TrimSpace(p.ReviewTips) == "" {
		p.ReviewTips = reviewTips[(p.Day-1)%len(reviewTips)]
	}
	return p
}

func durationsValid(tasks []model.Task) bool {
	for _, t := range tasks {
		if t.DurationMinutes <= 0 {
			return false
		}
	}
	return true
}

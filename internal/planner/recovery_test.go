package planner

import (
	"encoding/json"
	"fmt"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"study_plan_backend/internal/model"
)

func sampleDailyPlans(n int) []model.DailyPlan {
	plans := make([]model.DailyPlan, 0, n)
	for day := 1; day <= n; day++ {
		plans = append(plans, model.DailyPlan{
			Day:      day,
			Date:     fmt.Sprintf("2026-10-%02d", 15+day),
			PhaseID:  1,
			Title:    fmt.Sprintf("第%d天：基础护理 {重点}", day),
			Subjects: []string{"基础护理学"},
			Tasks: []model.Task{{
				Title:           "学习生命体征",
				Description:     `阅读教材"生命体征"一章`,
				DurationMinutes: 60,
				Resources:       []string{"教材"},
			}},
			ReviewTips: "复习今天的内容",
		})
	}
	return plans
}

func samplePlanJSON(t *testing.T, daily int) string {
	t.Helper()
	plan := model.StudyPlanResult{
		Overview:   "三十天护士资格考试备考计划",
		Phases:     SplitPhases(30),
		DailyPlans: sampleDailyPlans(daily),
		NextSteps:  "完成后重新生成下一阶段计划",
	}
	data, err := json.Marshal(plan)
	require.NoError(t, err)
	return string(data)
}

func TestRecoverDirectParseIsIdempotent(t *testing.T) {
	raw := samplePlanJSON(t, 3)

	got, strategy := Recover(raw)
	require.Equal(t, StrategyDirect, strategy)

	var direct wirePlan
	require.NoError(t, json.Unmarshal([]byte(raw), &direct))
	if diff := cmp.Diff(direct.toCandidate(), got); diff != "" {
		t.Fatalf("recovered candidate differs from direct parse (-want +got):\n%s", diff)
	}

	again, _ := Recover(raw)
	assert.Equal(t, got, again)
	assert.True(t, got.Acceptable())
	assert.Len(t, got.Phases, 3)
	assert.Equal(t, sampleDailyPlans(3), got.DailyPlans)
}

func TestRecoverFencedBlockMatchesInnerText(t *testing.T) {
	inner := samplePlanJSON(t, 4)
	wrappers := []string{
		"```json\n" + inner + "\n```",
		"以下是为你生成的计划：\n```\n" + inner + "\n```\n祝考试顺利！",
		"```JSON " + inner + "```",
	}

	want, _ := Recover(inner)
	for _, wrapped := range wrappers {
		got, strategy := Recover(wrapped)
		assert.Equal(t, StrategyFenced, strategy)
		assert.Equal(t, want, got)
	}
}

func TestRecoverSkipsFencedExampleBeforePlan(t *testing.T) {
	inner := samplePlanJSON(t, 3)
	raw := "每天的格式示例：\n```json\n{\"day\":1,\"title\":\"示例\"}\n```\n完整计划：\n```json\n" + inner + "\n```"

	want, _ := Recover(inner)
	got, strategy := Recover(raw)

	require.Equal(t, StrategyFenced, strategy)
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("second fenced block not recovered (-want +got):\n%s", diff)
	}
}

func TestRecoverWrappedPlanFallsThroughToSalvage(t *testing.T) {
	raw := `{"studyPlan":` + samplePlanJSON(t, 3) + `}`

	got, strategy := Recover(raw)

	require.Equal(t, StrategySalvage, strategy)
	assert.Equal(t, "三十天护士资格考试备考计划", got.Overview)
	assert.Equal(t, "完成后重新生成下一阶段计划", got.NextSteps)
	assert.Len(t, got.Phases, 3)
	assert.Equal(t, sampleDailyPlans(3), got.DailyPlans)
	assert.True(t, got.Acceptable())
}

func TestRecoverGreedyBraces(t *testing.T) {
	inner := samplePlanJSON(t, 2)

	got, strategy := Recover("好的，计划如下：" + inner + " 以上。")

	assert.Equal(t, StrategyBraces, strategy)
	assert.Equal(t, "三十天护士资格考试备考计划", got.Overview)
	assert.Len(t, got.DailyPlans, 2)
}

func TestRecoverTruncatedDailyPlans(t *testing.T) {
	full := samplePlanJSON(t, 6)
	cut := strings.Index(full, `{"day":6,`)
	require.Positive(t, cut)
	truncated := full[:cut+25]

	got, strategy := Recover("```json\n" + truncated)

	require.Equal(t, StrategySalvage, strategy)
	assert.Equal(t, "三十天护士资格考试备考计划", got.Overview)
	assert.Empty(t, got.NextSteps, "nextSteps follows dailyPlans and is cut off")
	assert.Len(t, got.Phases, 3)
	assert.Equal(t, sampleDailyPlans(5), got.DailyPlans)
}

func TestRecoverTruncatedInsideOverview(t *testing.T) {
	got, strategy := Recover(`{"overview": "本计划分三个阶段\n第一阶段打基础，\"重点\"是生命体`)

	assert.Equal(t, StrategySalvage, strategy)
	assert.Equal(t, "本计划分三个阶段\n第一阶段打基础，\"重点\"是生命体", got.Overview)
	assert.Empty(t, got.Phases)
	assert.Empty(t, got.DailyPlans)
	assert.False(t, got.Acceptable())
}

func TestRecoverSalvageDropsMalformedElements(t *testing.T) {
	raw := `{"overview":"计划","phases":[{"id":1,"name":"基础","startDay":1,"endDay":4},` +
		`{"id":2,"name":"强化","startDay":"abc"},` +
		`{"id":3,"name":"冲刺 {模考}","startDay":8,"endDay":10}],` +
		`"dailyPlans":[{"day":"1","phaseId":1,"tasks":[{"title":"t","durationMinutes":"45"}]},{"day":2,"phaseId":1,"tit`

	got, strategy := Recover(raw)

	require.Equal(t, StrategySalvage, strategy)
	require.Len(t, got.Phases, 2)
	assert.Equal(t, 1, got.Phases[0].ID)
	assert.Equal(t, "冲刺 {模考}", got.Phases[1].Name)
	require.Len(t, got.DailyPlans, 1)
	assert.Equal(t, 1, got.DailyPlans[0].Day)
	assert.Equal(t, 45, got.DailyPlans[0].Tasks[0].DurationMinutes)
}

func TestRecoverLenientFieldTypes(t *testing.T) {
	raw := `{"overview":["第一段","第二段"],"phases":[{"id":"1","startDay":1.0,"endDay":"3","focusAreas":"基础",` +
		`"recommendedResources":[{"name":"教材"},"题库"],"monthlyPlan":{"month1":"打基础"}}],"nextSteps":null}`

	got, strategy := Recover(raw)

	require.Equal(t, StrategyDirect, strategy)
	assert.Equal(t, "第一段\n第二段", got.Overview)
	require.Len(t, got.Phases, 1)
	p := got.Phases[0]
	assert.Equal(t, 1, p.ID)
	assert.Equal(t, 3, p.EndDay)
	assert.Equal(t, []string{"基础"}, p.FocusAreas)
	assert.Equal(t, []string{"教材", "题库"}, p.RecommendedResources)
	assert.JSONEq(t, `{"month1":"打基础"}`, string(p.MonthlyPlan))
	assert.Empty(t, got.NextSteps)
}

func TestRecoverUnsalvageable(t *testing.T) {
	inputs := []string{
		"",
		"抱歉，我无法生成计划。",
		"null",
		`{"phases":[{"id":1}]}`,
		`{"dailyPlans":[{"day":1`,
		"```json\n{\"overview\": \"\"}\n```",
	}
	for _, in := range inputs {
		got, strategy := Recover(in)
		assert.Equal(t, StrategyNone, strategy, "input %q", in)
		assert.Equal(t, Candidate{}, got, "input %q", in)
	}
}

func TestScanArraySkipsBracesInsideStrings(t *testing.T) {
	text := `"dailyPlans": [{"title":"a } b","x":"\"{"}, {"title":"c"} , {"title":"d"`

	got := scanArray(text, "dailyPlans")

	assert.Equal(t, []string{`{"title":"a } b","x":"\"{"}`, `{"title":"c"}`}, got)
}

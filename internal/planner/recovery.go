package planner

import (
	"encoding/json"
	"regexp"
	"strings"

	"study_plan_backend/internal/model"
)

// Candidate 从模型原始输出中恢复出的（可能不完整的）计划
type Candidate struct {
	Overview   string
	Phases     []model.Phase
	DailyPlans []model.DailyPlan
	NextSteps  string
}

// Acceptable 概述非空且至少恢复出阶段或逐日计划之一
func (c Candidate) Acceptable() bool {
	return strings.TrimSpace(c.Overview) != "" && (len(c.Phases) > 0 || len(c.DailyPlans) > 0)
}

// UsableDays 候选中可以直接保留的天数（位于 1..days 且不重复）
func (c Candidate) UsableDays(days int) int {
	return len(keepDailyPlans(c.DailyPlans, days))
}

// Strategy 命中的恢复策略名称
type Strategy string

const (
	StrategyNone    Strategy = "none"
	StrategyDirect  Strategy = "direct"
	StrategyFenced  Strategy = "fenced"
	StrategyBraces  Strategy = "braces"
	StrategySalvage Strategy = "salvage"
)

type recoveryStrategy struct {
	name Strategy
	run  func(text string) (Candidate, bool)
}

// 按顺序尝试，第一个成功的策略胜出
var strategies = []recoveryStrategy{
	{name: StrategyDirect, run: parseDirect},
	{name: StrategyFenced, run: parseFenced},
	{name: StrategyBraces, run: parseBraces},
	{name: StrategySalvage, run: salvageTruncated},
}

// Recover 把任意文本尽力转换为候选计划。解析成功但没有概述的结果不算命中，
// 继续尝试后续策略；没有任何策略得到概述时返回空候选与 StrategyNone。
func Recover(raw string) (Candidate, Strategy) {
	for _, s := range strategies {
		c, ok := s.run(raw)
		if !ok || c.Overview == "" {
			continue
		}
		return c, s.name
	}
	return Candidate{}, StrategyNone
}

func parseDirect(text string) (Candidate, bool) {
	text = strings.TrimSpace(text)
	if !strings.HasPrefix(text, "{") {
		return Candidate{}, false
	}
	var w wirePlan
	if err := json.Unmarshal([]byte(text), &w); err != nil {
		return Candidate{}, false
	}
	return w.toCandidate(), true
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?[ \\t]*\\r?\\n?(.*?)```")

// parseFenced 依次尝试每个代码块，模型常在真正的计划前给出示例片段
func parseFenced(text string) (Candidate, bool) {
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		if c, ok := parseDirect(m[1]); ok && c.Overview != "" {
			return c, true
		}
	}
	return Candidate{}, false
}

func parseBraces(text string) (Candidate, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return Candidate{}, false
	}
	return parseDirect(text[start : end+1])
}

// salvageTruncated 处理被截断的输出：概述用正则提取（允许缺少结束引号），
// phases 与 dailyPlans 通过括号深度扫描逐个解析完整的元素，残缺元素直接丢弃。
func salvageTruncated(text string) (Candidate, bool) {
	overview, ok := salvageString(text, "overview")
	if !ok || strings.TrimSpace(overview) == "" {
		return Candidate{}, false
	}
	c := Candidate{Overview: strings.TrimSpace(overview)}
	if next, ok := salvageString(text, "nextSteps"); ok {
		c.NextSteps = strings.TrimSpace(next)
	}
	for _, p := range decodeElements[wirePhase](scanArray(text, "phases")) {
		c.Phases = append(c.Phases, p.toModel())
	}
	for _, d := range decodeElements[wireDailyPlan](scanArray(text, "dailyPlans")) {
		c.DailyPlans = append(c.DailyPlans, d.toModel())
	}
	return c, true
}

var stringFieldPatterns = map[string]*regexp.Regexp{
	"overview":  regexp.MustCompile(`(?s)"overview"\s*:\s*"((?:[^"\\]|\\.)*)`),
	"nextSteps": regexp.MustCompile(`(?s)"nextSteps"\s*:\s*"((?:[^"\\]|\\.)*)`),
}

// salvageString 提取字符串字段的内容，不要求存在结束引号
func salvageString(text, field string) (string, bool) {
	m := stringFieldPatterns[field].FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	return unescapeJSONString(m[1]), true
}

func unescapeJSONString(s string) string {
	var out string
	if err := json.Unmarshal([]byte(`"`+s+`"`), &out); err == nil {
		return out
	}
	// 模型有时会输出未转义的换行或制表符
	escaped := strings.NewReplacer("\n", `\n`, "\r", `\r`, "\t", `\t`).Replace(s)
	if err := json.Unmarshal([]byte(`"`+escaped+`"`), &out); err == nil {
		return out
	}
	return s
}

var arrayFieldPatterns = map[string]*regexp.Regexp{
	"phases":     regexp.MustCompile(`"phases"\s*:\s*\[`),
	"dailyPlans": regexp.MustCompile(`"dailyPlans"\s*:\s*\[`),
}

// scanArray 从字段对应的数组开始位置扫描，每当深度回到数组层级就切出一个完整元素。
// 扫描会跳过字符串内部的括号；遇到数组结束或文本结尾即停止，未闭合的元素被丢弃。
func scanArray(text, field string) []string {
	loc := arrayFieldPatterns[field].FindStringIndex(text)
	if loc == nil {
		return nil
	}

	var elements []string
	depth, start := 0, -1
	inString, escape := false, false
	for i := loc[1]; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch {
			case escape:
				escape = false
			case ch == '\\':
				escape = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			if depth == 0 {
				start = i
			}
			depth++
		case '}':
			if depth == 0 {
				continue
			}
			depth--
			if depth == 0 && start >= 0 {
				elements = append(elements, text[start:i+1])
				start = -1
			}
		case ']':
			if depth == 0 {
				return elements
			}
		}
	}
	return elements
}

func decodeElements[T any](elements []string) []T {
	var out []T
	for _, e := range elements {
		var v T
		if err := json.Unmarshal([]byte(e), &v); err != nil {
			continue
		}
		out = append(out, v)
	}
	return out
}

package planner

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"

	"study_plan_backend/internal/model"
)

// 模型输出的 JSON 字段类型经常不稳定（数字写成字符串、数组写成单个字符串），
// 这里的 wire 类型负责宽松解码，再转换为 model 中的严格类型。

type flexInt int

func (f *flexInt) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == "" {
		*f = 0
		return nil
	}
	if strings.HasPrefix(s, `"`) {
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		s = strings.TrimSpace(s)
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*f = flexInt(math.Round(v))
	return nil
}

type flexStrings []string

func (f *flexStrings) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = nil
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexStrings{s}
		return nil
	}
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return err
	}
	out := make(flexStrings, 0, len(raws))
	for _, raw := range raws {
		var s string
		if err := json.Unmarshal(raw, &s); err == nil {
			out = append(out, s)
			continue
		}
		var named struct {
			Name  string `json:"name"`
			Title string `json:"title"`
		}
		if err := json.Unmarshal(raw, &named); err == nil && (named.Name != "" || named.Title != "") {
			if named.Name != "" {
				out = append(out, named.Name)
			} else {
				out = append(out, named.Title)
			}
			continue
		}
		out = append(out, string(bytes.TrimSpace(raw)))
	}
	*f = out
	return nil
}

// flexText 接受字符串或字符串数组，数组按行拼接
type flexText string

func (f *flexText) UnmarshalJSON(data []byte) error {
	var list flexStrings
	if err := list.UnmarshalJSON(data); err != nil {
		return err
	}
	*f = flexText(strings.Join(list, "\n"))
	return nil
}

type wirePlan struct {
	Overview   flexText        `json:"overview"`
	Phases     []wirePhase     `json:"phases"`
	DailyPlans []wireDailyPlan `json:"dailyPlans"`
	NextSteps  flexText        `json:"nextSteps"`
}

type wirePhase struct {
	ID                   flexInt         `json:"id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	StartDay             flexInt         `json:"startDay"`
	EndDay               flexInt         `json:"endDay"`
	FocusAreas           flexStrings     `json:"focusAreas"`
	LearningGoals        flexStrings     `json:"learningGoals"`
	RecommendedResources flexStrings     `json:"recommendedResources"`
	MonthlyPlan          json.RawMessage `json:"monthlyPlan,omitempty"`
}

type wireTask struct {
	Title           string      `json:"title"`
	Description     string      `json:"description"`
	DurationMinutes flexInt     `json:"durationMinutes"`
	Resources       flexStrings `json:"resources"`
}

type wireDailyPlan struct {
	Day        flexInt     `json:"day"`
	Date       string      `json:"date"`
	PhaseID    flexInt     `json:"phaseId"`
	Title      string      `json:"title"`
	Subjects   flexStrings `json:"subjects"`
	Tasks      []wireTask  `json:"tasks"`
	ReviewTips flexText    `json:"reviewTips"`
}

func (w wirePlan) toCandidate() Candidate {
	c := Candidate{
		Overview:  strings.TrimSpace(string(w.Overview)),
		NextSteps: strings.TrimSpace(string(w.NextSteps)),
	}
	for _, p := range w.Phases {
		c.Phases = append(c.Phases, p.toModel())
	}
	for _, d := range w.DailyPlans {
		c.DailyPlans = append(c.DailyPlans, d.toModel())
	}
	return c
}

func (w wirePhase) toModel() model.Phase {
	p := model.Phase{
		ID:                   int(w.ID),
		Name:                 w.Name,
		Description:          w.Description,
		StartDay:             int(w.StartDay),
		EndDay:               int(w.EndDay),
		FocusAreas:           []string(w.FocusAreas),
		LearningGoals:        []string(w.LearningGoals),
		RecommendedResources: []string(w.RecommendedResources),
	}
	if len(w.MonthlyPlan) > 0 && string(w.MonthlyPlan) != "null" {
		p.MonthlyPlan = w.MonthlyPlan
	}
	return p
}

func (w wireDailyPlan) toModel() model.DailyPlan {
	d := model.DailyPlan{
		Day:        int(w.Day),
		Date:       w.Date,
		PhaseID:    int(w.PhaseID),
		Title:      w.Title,
		Subjects:   []string(w.Subjects),
		ReviewTips: string(w.ReviewTips),
	}
	for _, t := range w.Tasks {
		d.Tasks = append(d.Tasks, model.Task{
			Title:           t.Title,
			Description:     t.Description,
			DurationMinutes: int(t.DurationMinutes),
			Resources:       []string(t.Resources),
		})
	}
	return d
}

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"study_plan_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const surveyYAML = `
targetLevel: nurse
attemptStatus: first
examDate: "2026-10-26"
dailyHours: 1.5
subjectLevels:
  - subject: 内科护理学
    level: 2
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestLoadSurveyYAMLAndJSON(t *testing.T) {
	fromYAML, err := loadSurvey(writeFile(t, "survey.yaml", surveyYAML))
	require.NoError(t, err)
	assert.Equal(t, model.LevelNurse, fromYAML.TargetLevel)
	assert.Equal(t, 1.5, fromYAML.DailyHours)
	require.Len(t, fromYAML.SubjectLevels, 1)
	assert.Equal(t, 2, fromYAML.SubjectLevels[0].Level)

	fromJSON, err := loadSurvey(writeFile(t, "survey.json",
		`{"targetLevel":"nurse","attemptStatus":"first","examDate":"2026-10-26","dailyHours":1.5,"subjectLevels":[{"subject":"内科护理学","level":2}]}`))
	require.NoError(t, err)
	assert.Equal(t, fromYAML, fromJSON)

	_, err = loadSurvey(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestFallbackCommand(t *testing.T) {
	survey := writeFile(t, "survey.yaml", surveyYAML)

	stdout, _, err := runCmd(t, "fallback", "--survey", survey, "--today", "2026-10-16")
	require.NoError(t, err)

	var plan model.StudyPlanResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	require.Len(t, plan.DailyPlans, 10)
	assert.Equal(t, "2026-10-16", plan.DailyPlans[0].Date)
	assert.Equal(t, "2026-10-25", plan.DailyPlans[9].Date)
}

func TestGenerateOffline(t *testing.T) {
	survey := writeFile(t, "survey.yaml", surveyYAML)
	output := filepath.Join(t.TempDir(), "plan.json")

	stdout, stderr, err := runCmd(t, "generate", "--offline", "-s", survey, "-o", output, "--today", "2026-10-16")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "source=fallback")

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	var plan model.StudyPlanResult
	require.NoError(t, json.Unmarshal(data, &plan))
	assert.Len(t, plan.DailyPlans, 10)
}

func TestRecoverCommand(t *testing.T) {
	survey := writeFile(t, "survey.yaml", surveyYAML)
	response := writeFile(t, "response.txt", "好的，以下是计划：\n```json\n"+
		`{"overview":"十天冲刺","dailyPlans":[{"day":1,"title":"内科护理学入门"}]}`+"\n```")

	stdout, stderr, err := runCmd(t, "recover", "-s", survey, "-r", response, "--today", "2026-10-16")
	require.NoError(t, err)
	assert.Contains(t, stderr, "strategy=fenced")
	assert.Contains(t, stderr, "kept=1")

	var plan model.StudyPlanResult
	require.NoError(t, json.Unmarshal([]byte(stdout), &plan))
	assert.Equal(t, "十天冲刺", plan.Overview)
	require.Len(t, plan.DailyPlans, 10)
	assert.Equal(t, "内科护理学入门", plan.DailyPlans[0].Title)
}

func TestRecoverCommandRejectsGarbage(t *testing.T) {
	survey := writeFile(t, "survey.yaml", surveyYAML)
	response := writeFile(t, "response.txt", "服务繁忙，请稍后再试")

	_, _, err := runCmd(t, "recover", "-s", survey, "-r", response)
	assert.ErrorContains(t, err, "strategy none")
}

func TestCommandsRequireSurvey(t *testing.T) {
	_, _, err := runCmd(t, "fallback")
	assert.ErrorContains(t, err, "--survey")

	_, _, err = runCmd(t, "fallback", "-s", writeFile(t, "s.yaml", surveyYAML), "--today", "16/10/2026")
	assert.ErrorContains(t, err, "--today")
}

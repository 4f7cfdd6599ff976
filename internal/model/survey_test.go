package model

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysUntilExam(t *testing.T) {
	ref := time.Date(2026, 10, 16, 23, 30, 0, 0, time.UTC)

	tests := []struct {
		examDate string
		want     int
	}{
		{"2026-10-26", 10},
		{" 2027-03-01 ", 136},
		{"2026-10-17", 1},
		{"2026-10-16", 1},
		{"2025-01-01", 1},
		{"", DefaultDaysUntilExam},
		{"2026/10/26", DefaultDaysUntilExam},
	}
	for _, tt := range tests {
		got := SurveyInput{ExamDate: tt.examDate}.DaysUntilExam(ref)
		assert.Equal(t, tt.want, got, "examDate %q", tt.examDate)
	}
}

func TestDaysUntilExamAcrossDaylightSaving(t *testing.T) {
	for _, name := range []string{"America/New_York", "Europe/Berlin"} {
		loc, err := time.LoadLocation(name)
		require.NoError(t, err)

		// 三月切换到夏令时，十一月切回
		spring := time.Date(2026, 3, 1, 8, 0, 0, 0, loc)
		assert.Equal(t, 14, SurveyInput{ExamDate: "2026-03-15"}.DaysUntilExam(spring), name)
		assert.Equal(t, 30, SurveyInput{ExamDate: "2026-03-31"}.DaysUntilExam(spring), name)

		autumn := time.Date(2026, 10, 20, 22, 0, 0, 0, loc)
		assert.Equal(t, 20, SurveyInput{ExamDate: "2026-11-09"}.DaysUntilExam(autumn), name)
	}
}

package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/marks"
)

func TestNormalizeAttendance(t *testing.T) {
	names := map[string]string{"sub1": "Algorithms", "sub2": "Databases"}
	date := func(i int) time.Time { return time.Date(2026, 2, i, 0, 0, 0, 0, time.UTC) }
	rec := func(sub string, i int, status string) attendance.Record {
		return attendance.Record{StudentID: "std1", SubjectID: sub, Date: date(i), Status: status}
	}

	t.Run("empty", func(t *testing.T) {
		summary, history, percent := NormalizeAttendance(nil, names)
		assert.Empty(t, summary)
		assert.Empty(t, history)
		assert.Equal(t, 0, percent)
	})

	t.Run("aggregates per subject and overall", func(t *testing.T) {
		records := []attendance.Record{
			rec("sub1", 1, attendance.StatusPresent),
			rec("sub1", 2, attendance.StatusPresent),
			rec("sub1", 3, attendance.StatusAbsent),
			rec("sub2", 1, attendance.StatusPresent),
			rec("sub2", 2, attendance.StatusAbsent),
		}

		summary, history, percent := NormalizeAttendance(records, names)

		assert.Len(t, summary, 2)
		assert.Equal(t, SubjectAttendance{
			SubjectID: "sub1", SubjectName: "Algorithms", Total: 3, Present: 2, Percentage: 67,
		}, summary[0])
		assert.Equal(t, SubjectAttendance{
			SubjectID: "sub2", SubjectName: "Databases", Total: 2, Present: 1, Percentage: 50,
		}, summary[1])

		// 3 of 5 present, record-weighted
		assert.Equal(t, 60, percent)

		assert.Len(t, history, 5)
		for i := 1; i < len(history); i++ {
			assert.False(t, history[i].Date.Before(history[i-1].Date), "history must be chronological")
		}
	})

	t.Run("unknown subject name", func(t *testing.T) {
		summary, _, _ := NormalizeAttendance([]attendance.Record{rec("ghost", 1, attendance.StatusPresent)}, names)
		assert.Equal(t, "Unknown Subject", summary[0].SubjectName)
	})
}

func TestNormalizeMarks(t *testing.T) {
	names := map[string]string{"sub1": "Algorithms", "sub2": "Databases"}
	rec := func(sub, exam string, obtained, total float64) marks.Record {
		return marks.Record{StudentID: "std1", SubjectID: sub, ExamType: exam, MarksObtained: obtained, TotalMarks: total}
	}

	t.Run("empty", func(t *testing.T) {
		summary, avg := NormalizeMarks(nil, names)
		assert.Empty(t, summary)
		assert.Equal(t, 0, avg)
	})

	t.Run("record-weighted average", func(t *testing.T) {
		records := []marks.Record{
			rec("sub1", marks.ExamInternal, 40, 50),  // 80%
			rec("sub1", marks.ExamMidterm, 30, 100),  // 30%
			rec("sub2", marks.ExamInternal, 90, 100), // 90%
		}

		summary, avg := NormalizeMarks(records, names)

		assert.Len(t, summary, 2)
		assert.Equal(t, 55, summary[0].AveragePercent) // (80+30)/2
		assert.Equal(t, 90, summary[1].AveragePercent)
		assert.Len(t, summary[0].Exams, 2)

		// every record weighs the same: (80+30+90)/3 = 66.67 -> 67
		assert.Equal(t, 67, avg)
	})

	t.Run("zero total counts as zero percent", func(t *testing.T) {
		summary, avg := NormalizeMarks([]marks.Record{rec("sub1", marks.ExamFinal, 10, 0)}, names)
		assert.Equal(t, 0, summary[0].Exams[0].Percentage)
		assert.Equal(t, 0, avg)
	})
}

func TestAssignmentCompletion(t *testing.T) {
	tests := []struct {
		name        string
		marksCount  int
		enrollments int
		want        int
	}{
		{name: "no marks", marksCount: 0, enrollments: 6, want: 0},
		{name: "no marks and no enrollments", marksCount: 0, enrollments: 0, want: 0},
		{name: "half the workload", marksCount: 3, enrollments: 6, want: 25},
		{name: "one record per subject", marksCount: 6, enrollments: 6, want: 50},
		{name: "two records per subject hits the cap", marksCount: 12, enrollments: 6, want: 100},
		{name: "capped at 100", marksCount: 30, enrollments: 6, want: 100},
		{name: "zero enrollments guard", marksCount: 2, enrollments: 0, want: 100},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AssignmentCompletion(tt.marksCount, tt.enrollments); got != tt.want {
				t.Errorf("AssignmentCompletion(%d, %d) = %d, want %d", tt.marksCount, tt.enrollments, got, tt.want)
			}
		})
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		in   float64
		want int
	}{
		{0, 0},
		{0.4, 0},
		{0.5, 1},
		{2.5, 3},
		{66.666, 67},
		{99.4, 99},
	}
	for _, tt := range tests {
		if got := Round(tt.in); got != tt.want {
			t.Errorf("Round(%v) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

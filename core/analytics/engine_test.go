package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPredictPerformance(t *testing.T) {
	tests := []struct {
		name      string
		metrics   StudentMetrics
		wantGrade string
		wantProb  int
	}{
		{
			name:      "all perfect",
			metrics:   StudentMetrics{Attendance: 100, InternalMarks: 100, AssignmentCompletion: 100, PreviousCGPA: 10},
			wantGrade: GradeA,
			wantProb:  95,
		},
		{
			name:      "exactly at A boundary",
			metrics:   StudentMetrics{Attendance: 85, InternalMarks: 85, AssignmentCompletion: 85, PreviousCGPA: 8.5},
			wantGrade: GradeA,
			wantProb:  95,
		},
		{
			// score 84.999, the A band is >= 85
			name:      "just under the A boundary",
			metrics:   StudentMetrics{Attendance: 85, InternalMarks: 85, AssignmentCompletion: 85, PreviousCGPA: 8.499},
			wantGrade: GradeB,
			wantProb:  80,
		},
		{
			// score 69.999, the B band is >= 70
			name:      "just under the B boundary",
			metrics:   StudentMetrics{Attendance: 70, InternalMarks: 70, AssignmentCompletion: 70, PreviousCGPA: 6.999},
			wantGrade: GradeC,
			wantProb:  60,
		},
		{
			name:      "solid B",
			metrics:   StudentMetrics{Attendance: 80, InternalMarks: 75, AssignmentCompletion: 70, PreviousCGPA: 7},
			wantGrade: GradeB,
			wantProb:  80,
		},
		{
			name:      "scraping by with C",
			metrics:   StudentMetrics{Attendance: 60, InternalMarks: 50, AssignmentCompletion: 40, PreviousCGPA: 5},
			wantGrade: GradeC,
			wantProb:  60,
		},
		{
			// score 49.999, the C band is >= 50
			name:      "just under the C boundary",
			metrics:   StudentMetrics{Attendance: 50, InternalMarks: 50, AssignmentCompletion: 50, PreviousCGPA: 4.999},
			wantGrade: GradeFail,
			wantProb:  30,
		},
		{
			name:      "failing",
			metrics:   StudentMetrics{Attendance: 30, InternalMarks: 20, AssignmentCompletion: 10, PreviousCGPA: 2},
			wantGrade: GradeFail,
			wantProb:  30,
		},
		{
			name:      "zero metrics",
			metrics:   StudentMetrics{},
			wantGrade: GradeFail,
			wantProb:  30,
		},
		{
			name:      "cgpa alone cannot pass",
			metrics:   StudentMetrics{PreviousCGPA: 10},
			wantGrade: GradeFail,
			wantProb:  30,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PredictPerformance(tt.metrics)
			if got.PredictedGrade != tt.wantGrade {
				t.Errorf("PredictPerformance() grade = %v, want %v", got.PredictedGrade, tt.wantGrade)
			}
			if got.PassProbability != tt.wantProb {
				t.Errorf("PredictPerformance() passProbability = %v, want %v", got.PassProbability, tt.wantProb)
			}
		})
	}
}

func TestDetectDropoutRisk(t *testing.T) {
	tests := []struct {
		name       string
		metrics    StudentMetrics
		wantLevel  string
		wantReason string
	}{
		{
			name:       "high risk needs all three factors",
			metrics:    StudentMetrics{Attendance: 50, InternalMarks: 30, AssignmentCompletion: 40},
			wantLevel:  RiskHigh,
			wantReason: "Low attendance, marks, and assignments",
		},
		{
			name:       "good assignments downgrade to medium",
			metrics:    StudentMetrics{Attendance: 50, InternalMarks: 30, AssignmentCompletion: 80},
			wantLevel:  RiskMedium,
			wantReason: "Below average attendance or marks",
		},
		{
			name:      "low attendance alone is medium",
			metrics:   StudentMetrics{Attendance: 70, InternalMarks: 90, AssignmentCompletion: 90},
			wantLevel: RiskMedium,
		},
		{
			name:      "low marks alone is medium",
			metrics:   StudentMetrics{Attendance: 90, InternalMarks: 45, AssignmentCompletion: 90},
			wantLevel: RiskMedium,
		},
		{
			name:       "healthy student",
			metrics:    StudentMetrics{Attendance: 90, InternalMarks: 80, AssignmentCompletion: 90},
			wantLevel:  RiskLow,
			wantReason: "No significant risk factors",
		},
		{
			name:      "boundaries are exclusive",
			metrics:   StudentMetrics{Attendance: 75, InternalMarks: 50, AssignmentCompletion: 50},
			wantLevel: RiskLow,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DetectDropoutRisk(tt.metrics)
			if got.Level != tt.wantLevel {
				t.Errorf("DetectDropoutRisk() level = %v, want %v", got.Level, tt.wantLevel)
			}
			if tt.wantReason != "" && got.Reason != tt.wantReason {
				t.Errorf("DetectDropoutRisk() reason = %v, want %v", got.Reason, tt.wantReason)
			}
		})
	}
}

func TestDetermineRiskLevel(t *testing.T) {
	tests := []struct {
		name       string
		attendance int
		marks      int
		want       string
	}{
		{name: "both critically low", attendance: 50, marks: 30, want: RiskHigh},
		{name: "moderately low pair", attendance: 70, marks: 45, want: RiskHigh},
		{name: "low attendance decent marks", attendance: 70, marks: 70, want: RiskMedium},
		{name: "decent attendance low marks", attendance: 85, marks: 55, want: RiskMedium},
		{name: "healthy", attendance: 90, marks: 80, want: RiskLow},
		{name: "boundary", attendance: 80, marks: 60, want: RiskLow},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DetermineRiskLevel(tt.attendance, tt.marks); got != tt.want {
				t.Errorf("DetermineRiskLevel(%d, %d) = %v, want %v", tt.attendance, tt.marks, got, tt.want)
			}
		})
	}
}

// The single-student and cohort classifications intentionally disagree for a
// student with decent assignments but a weak attendance/marks pair.
func TestRiskClassificationsDiverge(t *testing.T) {
	m := StudentMetrics{Attendance: 70, InternalMarks: 45, AssignmentCompletion: 80}

	individual := DetectDropoutRisk(m)
	cohort := DetermineRiskLevel(m.Attendance, m.InternalMarks)

	assert.Equal(t, RiskMedium, individual.Level)
	assert.Equal(t, RiskHigh, cohort)
}

func TestAnalyzeAttendanceTrend(t *testing.T) {
	day := func(i int, present bool) HistoryPoint {
		return HistoryPoint{Date: time.Date(2026, 1, i, 0, 0, 0, 0, time.UTC), Present: present}
	}

	tests := []struct {
		name    string
		history []HistoryPoint
		want    string
	}{
		{name: "no data", history: nil, want: "No attendance data"},
		{
			name:    "all present",
			history: []HistoryPoint{day(1, true), day(2, true), day(3, true)},
			want:    "Attendance normal.",
		},
		{
			name:    "single absence is a drop",
			history: []HistoryPoint{day(1, true), day(2, false), day(3, true)},
			want:    "Sudden drop detected. ",
		},
		{
			name:    "leading absences are not a drop",
			history: []HistoryPoint{day(1, false), day(2, false), day(3, true)},
			want:    "Attendance normal.",
		},
		{
			name:    "long streak after a drop",
			history: []HistoryPoint{day(1, true), day(2, false), day(3, false), day(4, false), day(5, false)},
			want:    "Sudden drop detected. Continuous absence streak of 4 days.",
		},
		{
			name:    "streak from the start",
			history: []HistoryPoint{day(1, false), day(2, false), day(3, false), day(4, false)},
			want:    "Continuous absence streak of 3 days.",
		},
		{
			name:    "short absences never form a streak",
			history: []HistoryPoint{day(1, true), day(2, false), day(3, true), day(4, false), day(5, true)},
			want:    "Sudden drop detected. ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := AnalyzeAttendanceTrend(tt.history); got != tt.want {
				t.Errorf("AnalyzeAttendanceTrend() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGenerateRecommendations(t *testing.T) {
	tests := []struct {
		name       string
		risk       DropoutRisk
		prediction Prediction
		want       []string
	}{
		{
			name:       "high risk",
			risk:       DropoutRisk{Level: RiskHigh},
			prediction: Prediction{PredictedGrade: GradeB},
			want:       []string{"Needs counseling", "Assign mentor", "Recommend remedial classes"},
		},
		{
			name:       "failing grade overrides low risk",
			risk:       DropoutRisk{Level: RiskLow},
			prediction: Prediction{PredictedGrade: GradeFail},
			want:       []string{"Needs counseling", "Assign mentor", "Recommend remedial classes"},
		},
		{
			name:       "medium risk",
			risk:       DropoutRisk{Level: RiskMedium},
			prediction: Prediction{PredictedGrade: GradeB},
			want:       []string{"Monitor progress", "Suggest extra assignments"},
		},
		{
			name:       "C grade with low risk",
			risk:       DropoutRisk{Level: RiskLow},
			prediction: Prediction{PredictedGrade: GradeC},
			want:       []string{"Monitor progress", "Suggest extra assignments"},
		},
		{
			name:       "doing fine",
			risk:       DropoutRisk{Level: RiskLow},
			prediction: Prediction{PredictedGrade: GradeA},
			want:       []string{"Keep up the good work"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateRecommendations(tt.risk, tt.prediction)
			assert.Equal(t, tt.want, got)
		})
	}
}

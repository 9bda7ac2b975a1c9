package analytics

import (
	"fmt"
	"strings"
)

// Risk levels
const (
	RiskHigh   = "High"
	RiskMedium = "Medium"
	RiskLow    = "Low"
)

// Grades
const (
	GradeA    = "A"
	GradeB    = "B"
	GradeC    = "C"
	GradeFail = "Fail"
)

// metric weights for the predicted score
const (
	attendanceWeight  = 0.3
	marksWeight       = 0.4
	assignmentsWeight = 0.2
	cgpaWeight        = 0.1
)

type (
	Prediction struct {
		PredictedGrade  string `json:"predicted_grade"`
		PassProbability int    `json:"pass_probability"`
	}

	DropoutRisk struct {
		Level  string `json:"level"`
		Reason string `json:"reason"`
	}
)

// PredictPerformance computes a weighted score out of 100 from the student's
// metrics and maps it to a predicted grade with a pass probability.
func PredictPerformance(m StudentMetrics) Prediction {
	score := float64(m.Attendance)*attendanceWeight +
		float64(m.InternalMarks)*marksWeight +
		float64(m.AssignmentCompletion)*assignmentsWeight +
		(m.PreviousCGPA*10)*cgpaWeight

	switch {
	case score >= 85:
		return Prediction{PredictedGrade: GradeA, PassProbability: 95}
	case score >= 70:
		return Prediction{PredictedGrade: GradeB, PassProbability: 80}
	case score >= 50:
		return Prediction{PredictedGrade: GradeC, PassProbability: 60}
	default:
		return Prediction{PredictedGrade: GradeFail, PassProbability: 30}
	}
}

// DetectDropoutRisk classifies a single student's dropout risk from their
// attendance, marks and assignment metrics.
func DetectDropoutRisk(m StudentMetrics) DropoutRisk {
	switch {
	case m.Attendance < 60 && m.InternalMarks < 40 && m.AssignmentCompletion < 50:
		return DropoutRisk{Level: RiskHigh, Reason: "Low attendance, marks, and assignments"}
	case m.Attendance < 75 || m.InternalMarks < 50:
		return DropoutRisk{Level: RiskMedium, Reason: "Below average attendance or marks"}
	default:
		return DropoutRisk{Level: RiskLow, Reason: "No significant risk factors"}
	}
}

// DetermineRiskLevel is the two-factor classification used for cohort
// screening in the admin and department overviews. It is stricter than
// DetectDropoutRisk and intentionally kept separate from it.
func DetermineRiskLevel(attendancePercent, marksPercent int) string {
	if (attendancePercent < 60 && marksPercent < 40) || (attendancePercent < 75 && marksPercent < 50) {
		return RiskHigh
	}
	if attendancePercent < 80 || marksPercent < 60 {
		return RiskMedium
	}
	return RiskLow
}

// AnalyzeAttendanceTrend scans a chronological attendance history for a
// sudden present-to-absent drop and for continuous absence streaks.
func AnalyzeAttendanceTrend(history []HistoryPoint) string {
	if len(history) == 0 {
		return "No attendance data"
	}

	var streak, maxStreak int
	var drop bool
	for i := 1; i < len(history); i++ {
		if !history[i].Present && history[i-1].Present {
			drop = true
		}
		if !history[i].Present {
			streak++
		} else {
			streak = 0
		}
		if streak > maxStreak {
			maxStreak = streak
		}
	}

	var insight strings.Builder
	if drop {
		insight.WriteString("Sudden drop detected. ")
	}
	if maxStreak >= 3 {
		insight.WriteString(fmt.Sprintf("Continuous absence streak of %d days.", maxStreak))
	}
	if insight.Len() == 0 {
		return "Attendance normal."
	}
	return insight.String()
}

// GenerateRecommendations suggests interventions based on the student's risk
// level and predicted grade.
func GenerateRecommendations(risk DropoutRisk, prediction Prediction) []string {
	switch {
	case risk.Level == RiskHigh || prediction.PredictedGrade == GradeFail:
		return []string{"Needs counseling", "Assign mentor", "Recommend remedial classes"}
	case risk.Level == RiskMedium || prediction.PredictedGrade == GradeC:
		return []string{"Monitor progress", "Suggest extra assignments"}
	default:
		return []string{"Keep up the good work"}
	}
}

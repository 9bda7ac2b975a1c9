package analytics

import (
	"sort"
	"time"

	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/marks"
)

const unknownSubject = "Unknown Subject"

type (
	// StudentMetrics are the normalized inputs fed to the prediction engine.
	// All percentages are on a 0-100 scale; PreviousCGPA is on a 0-10 scale.
	StudentMetrics struct {
		Attendance           int     `json:"attendance"`
		InternalMarks        int     `json:"internal_marks"`
		AssignmentCompletion int     `json:"assignment_completion"`
		PreviousCGPA         float64 `json:"previous_cgpa"`
	}

	// SubjectAttendance is a student's attendance aggregated per subject.
	SubjectAttendance struct {
		SubjectID   string `json:"subject_id"`
		SubjectName string `json:"subject_name"`
		Total       int    `json:"total"`
		Present     int    `json:"present"`
		Percentage  int    `json:"percentage"`
	}

	// HistoryPoint is one session in a student's chronological attendance history.
	HistoryPoint struct {
		Date    time.Time `json:"date"`
		Present bool      `json:"present"`
	}

	ExamResult struct {
		ExamType      string  `json:"exam_type"`
		MarksObtained float64 `json:"marks_obtained"`
		TotalMarks    float64 `json:"total_marks"`
		Percentage    int     `json:"percentage"`
	}

	// SubjectMarks is a student's exam results aggregated per subject.
	SubjectMarks struct {
		SubjectID      string       `json:"subject_id"`
		SubjectName    string       `json:"subject_name"`
		Exams          []ExamResult `json:"exams"`
		AveragePercent int          `json:"average_percent"`
	}
)

// Round rounds half away from zero for non-negative inputs, matching how the
// rest of the reporting rounds percentages.
func Round(x float64) int {
	return int(x + 0.5)
}

// NormalizeAttendance aggregates raw attendance records into a per-subject
// summary, a chronological history and an overall percentage. Records are
// weighted equally regardless of subject.
func NormalizeAttendance(records []attendance.Record, subjectNames map[string]string) ([]SubjectAttendance, []HistoryPoint, int) {
	history := make([]HistoryPoint, 0, len(records))
	for _, rec := range records {
		history = append(history, HistoryPoint{Date: rec.Date, Present: rec.IsPresent()})
	}
	sort.SliceStable(history, func(i, j int) bool { return history[i].Date.Before(history[j].Date) })

	summaryMap := make(map[string]*SubjectAttendance)
	var order []string
	var total, present int
	for _, rec := range records {
		entry, ok := summaryMap[rec.SubjectID]
		if !ok {
			name := subjectNames[rec.SubjectID]
			if name == "" {
				name = unknownSubject
			}
			entry = &SubjectAttendance{SubjectID: rec.SubjectID, SubjectName: name}
			summaryMap[rec.SubjectID] = entry
			order = append(order, rec.SubjectID)
		}
		entry.Total++
		total++
		if rec.IsPresent() {
			entry.Present++
			present++
		}
	}

	summary := make([]SubjectAttendance, 0, len(order))
	for _, id := range order {
		entry := summaryMap[id]
		if entry.Total > 0 {
			entry.Percentage = Round(float64(entry.Present) / float64(entry.Total) * 100)
		}
		summary = append(summary, *entry)
	}

	var percentage int
	if total > 0 {
		percentage = Round(float64(present) / float64(total) * 100)
	}
	return summary, history, percentage
}

// NormalizeMarks aggregates raw marks records into a per-subject summary and
// an overall average percentage. Records are weighted equally regardless of
// subject or exam total.
func NormalizeMarks(records []marks.Record, subjectNames map[string]string) ([]SubjectMarks, int) {
	subjectMap := make(map[string]*SubjectMarks)
	subjectTotals := make(map[string]int)
	var order []string
	var totalPercent int

	for _, rec := range records {
		entry, ok := subjectMap[rec.SubjectID]
		if !ok {
			name := subjectNames[rec.SubjectID]
			if name == "" {
				name = unknownSubject
			}
			entry = &SubjectMarks{SubjectID: rec.SubjectID, SubjectName: name}
			subjectMap[rec.SubjectID] = entry
			order = append(order, rec.SubjectID)
		}

		var percentage int
		if rec.TotalMarks > 0 {
			percentage = Round(rec.MarksObtained / rec.TotalMarks * 100)
		}
		entry.Exams = append(entry.Exams, ExamResult{
			ExamType:      rec.ExamType,
			MarksObtained: rec.MarksObtained,
			TotalMarks:    rec.TotalMarks,
			Percentage:    percentage,
		})
		subjectTotals[rec.SubjectID] += percentage
		totalPercent += percentage
	}

	summary := make([]SubjectMarks, 0, len(order))
	for _, id := range order {
		entry := subjectMap[id]
		if n := len(entry.Exams); n > 0 {
			entry.AveragePercent = Round(float64(subjectTotals[id]) / float64(n))
		}
		summary = append(summary, *entry)
	}

	var averagePercent int
	if len(records) > 0 {
		averagePercent = Round(float64(totalPercent) / float64(len(records)))
	}
	return summary, averagePercent
}

// AssignmentCompletion estimates how much of the expected assignment workload
// a student completed, from the number of recorded marks relative to their
// enrollment count. Returns 0 when no marks exist, capped at 100.
func AssignmentCompletion(marksCount, enrollmentCount int) int {
	if marksCount == 0 {
		return 0
	}
	if enrollmentCount < 1 {
		enrollmentCount = 1
	}
	completion := Round(float64(marksCount) / float64(enrollmentCount) * 50)
	if completion > 100 {
		return 100
	}
	return completion
}

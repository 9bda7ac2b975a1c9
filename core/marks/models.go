package marks

import (
	"time"

	"github.com/academia-hub/academia/core"
)

// Exam types
const (
	ExamInternal   = "internal"
	ExamMidterm    = "midterm"
	ExamFinal      = "final"
	ExamAssignment = "assignment"
)

// Record is a student's score for one exam of a subject.
// A student has at most one record per subject and exam type; resubmitting
// replaces the previous score.
type Record struct {
	ID            string    `json:"id"`
	StudentID     string    `json:"student_id"`
	SubjectID     string    `json:"subject_id"`
	ExamType      string    `json:"exam_type"`
	MarksObtained float64   `json:"marks_obtained"`
	TotalMarks    float64   `json:"total_marks"`
	EnteredByID   string    `json:"entered_by_id"`
	CreatedAt     time.Time `json:"created_at"` // UTC
	UpdatedAt     time.Time `json:"updated_at"` // UTC
}

// Percent is the record's score as a percentage of its total.
func (r *Record) Percent() float64 {
	if r.TotalMarks == 0 {
		return 0
	}
	return r.MarksObtained / r.TotalMarks * 100
}

// ExamEntry is one student's score within an exam submission.
type ExamEntry struct {
	StudentID     string  `json:"student_id" validate:"required,uuid4"`
	MarksObtained float64 `json:"marks_obtained" validate:"min=0"`
	TotalMarks    float64 `json:"total_marks" validate:"required,gt=0,gtefield=MarksObtained"`
}

// NewExam is a teacher's bulk marks submission for one subject and exam type.
type NewExam struct {
	SubjectID string      `json:"subject_id" validate:"required,uuid4"`
	ExamType  string      `json:"exam_type" validate:"required,oneof=internal midterm final assignment"`
	Entries   []ExamEntry `json:"entries" validate:"required,min=1,dive"`
}

func (ne *NewExam) Validate() error {
	return core.Validate.Struct(ne)
}

// Average is a student's aggregated marks across all records.
type Average struct {
	// AvgPercent weighs every record equally.
	AvgPercent float64 `json:"avg_percent"`
	Count      int     `json:"count"`
}

type QueryFilter struct {
	StudentID string `query:"student_id"`
	SubjectID string `query:"subject_id"`
	ExamType  string `query:"exam_type"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.SubjectID == "" && qf.ExamType == ""
}

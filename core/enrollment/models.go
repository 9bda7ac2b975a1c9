package enrollment

import (
	"time"
)

// Enrollment statuses
const (
	StatusActive  = "active"
	StatusDropped = "dropped"
)

// Enrollment links a student to a subject for an academic year.
// A student may be enrolled in a subject at most once per academic year.
type Enrollment struct {
	ID           string    `json:"id"`
	StudentID    string    `json:"student_id"`
	SubjectID    string    `json:"subject_id"`
	AcademicYear string    `json:"academic_year"`
	Status       string    `json:"status"`
	EnrolledAt   time.Time `json:"enrolled_at"` // UTC
}

type QueryFilter struct {
	StudentID    string `query:"student_id"`
	SubjectID    string `query:"subject_id"`
	AcademicYear string `query:"academic_year"`
	Status       string `query:"status"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.SubjectID == "" && qf.AcademicYear == "" && qf.Status == ""
}

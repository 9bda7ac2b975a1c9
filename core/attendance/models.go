package attendance

import (
	"time"

	"github.com/academia-hub/academia/core"
)

// Attendance statuses
const (
	StatusPresent = "present"
	StatusAbsent  = "absent"
)

// Record is a single student's attendance for one subject session.
type Record struct {
	ID         string    `json:"id"`
	StudentID  string    `json:"student_id"`
	SubjectID  string    `json:"subject_id"`
	Date       time.Time `json:"date"` // date only, UTC midnight
	Status     string    `json:"status"`
	MarkedByID string    `json:"marked_by_id"`
	CreatedAt  time.Time `json:"created_at"` // UTC
}

func (r *Record) IsPresent() bool { return r.Status == StatusPresent }

// SessionEntry is one student's status within a session submission.
type SessionEntry struct {
	StudentID string `json:"student_id" validate:"required,uuid4"`
	Status    string `json:"status" validate:"required,oneof=present absent"`
}

// NewSession is a teacher's bulk attendance submission for one subject and date.
type NewSession struct {
	SubjectID string         `json:"subject_id" validate:"required,uuid4"`
	Date      time.Time      `json:"date" validate:"required"`
	Entries   []SessionEntry `json:"entries" validate:"required,min=1,dive"`
}

func (ns *NewSession) Validate() error {
	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	ns.Date = NormalizeDate(ns.Date)
	return nil
}

// NormalizeDate truncates a timestamp to its UTC date.
func NormalizeDate(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Summary is a student's aggregated attendance across all subjects.
type Summary struct {
	Total   int `json:"total"`
	Present int `json:"present"`
}

type QueryFilter struct {
	StudentID string    `query:"student_id"`
	SubjectID string    `query:"subject_id"`
	DateFrom  time.Time `query:"date_from"`
	DateTo    time.Time `query:"date_to"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.StudentID == "" && qf.SubjectID == "" && qf.DateFrom.IsZero() && qf.DateTo.IsZero()
}

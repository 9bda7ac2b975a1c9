package subject

import (
	"time"

	"github.com/academia-hub/academia/core"
)

// Subject is a course taught in a department during a given semester.
// AssignedTeacherID is the source of truth for teacher assignment; the
// teacher's subjects-handled mirror is kept in sync with it.
type Subject struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Code              string    `json:"code"`
	DepartmentID      string    `json:"department_id"`
	Semester          int       `json:"semester"`
	Credits           int       `json:"credits"`
	AssignedTeacherID string    `json:"assigned_teacher_id,omitempty"`
	CreatedAt         time.Time `json:"created_at"` // UTC
	UpdatedAt         time.Time `json:"updated_at"` // UTC
}

// NewSubject contains information needed to create a new Subject.
type NewSubject struct {
	Name              string `json:"name" validate:"required"`
	Code              string `json:"code" validate:"required,subjectcode"`
	DepartmentID      string `json:"department_id" validate:"required,uuid4"`
	Semester          int    `json:"semester" validate:"required,min=1,max=8"`
	Credits           int    `json:"credits" validate:"omitempty,min=1,max=10"`
	AssignedTeacherID string `json:"assigned_teacher_id" validate:"omitempty,uuid4"`
}

func (ns *NewSubject) Validate(svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Code = core.CleanString(ns.Code)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.Code)
}

// UpdateSubject defines what information may be provided to modify an existing Subject.
type UpdateSubject struct {
	Name     string `json:"name"`
	Code     string `json:"code" validate:"omitempty,subjectcode"`
	Semester int    `json:"semester" validate:"omitempty,min=1,max=8"`
	Credits  int    `json:"credits" validate:"omitempty,min=1,max=10"`
}

func (us *UpdateSubject) Validate(origSub Subject, svc Service) error {
	name := core.CleanString(us.Name)
	if name != "" {
		us.Name = name
	} else {
		us.Name = origSub.Name
	}

	code := core.CleanString(us.Code)
	if code != "" {
		us.Code = code
	} else {
		us.Code = origSub.Code
	}

	if us.Semester == 0 {
		us.Semester = origSub.Semester
	}
	if us.Credits == 0 {
		us.Credits = origSub.Credits
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.Code, origSub)
}

// GetFilter looks a single subject up by exactly one of its fields.
type GetFilter struct {
	ID   string
	Code string
}

type QueryFilter struct {
	DepartmentID      string `query:"department_id"`
	Semester          int    `query:"semester"`
	AssignedTeacherID string `query:"assigned_teacher_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.DepartmentID == "" && qf.Semester == 0 && qf.AssignedTeacherID == ""
}

package teacher

import (
	"time"

	"github.com/academia-hub/academia/core"
)

// Teacher is a teaching staff profile attached to a User account.
// SubjectsHandled mirrors the subjects currently assigned to the teacher;
// the Subject.AssignedTeacherID field remains the source of truth.
type Teacher struct {
	ID              string    `json:"id"`
	UserID          string    `json:"user_id"`
	DepartmentID    string    `json:"department_id"`
	Designation     string    `json:"designation,omitempty"`
	SubjectsHandled []string  `json:"subjects_handled"`
	CreatedAt       time.Time `json:"created_at"` // UTC
	UpdatedAt       time.Time `json:"updated_at"` // UTC
}

// NewTeacher contains information needed to onboard a new Teacher.
// A User account is created alongside the profile and the generated
// credentials are emailed to the teacher.
type NewTeacher struct {
	Name         string `json:"name" validate:"required"`
	Email        string `json:"email" validate:"required,email"`
	DepartmentID string `json:"department_id" validate:"required,uuid4"`
	Designation  string `json:"designation"`
}

func (nt *NewTeacher) Validate() error {
	nt.Name = core.CleanString(nt.Name)
	nt.Email = core.CleanString(nt.Email, true /* lower */)
	nt.Designation = core.CleanString(nt.Designation)
	return core.Validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	DepartmentID string `json:"department_id" validate:"omitempty,uuid4"`
	Designation  string `json:"designation"`
}

func (ut *UpdateTeacher) Validate(origTchr Teacher) error {
	if ut.DepartmentID == "" {
		ut.DepartmentID = origTchr.DepartmentID
	}
	desig := core.CleanString(ut.Designation)
	if desig != "" {
		ut.Designation = desig
	} else {
		ut.Designation = origTchr.Designation
	}
	return core.Validate.Struct(ut)
}

// GetFilter looks a single teacher up by exactly one of its fields.
type GetFilter struct {
	ID     string
	UserID string
}

type QueryFilter struct {
	DepartmentID string `query:"department_id"`
	SubjectID    string `query:"subject_id"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.DepartmentID == "" && qf.SubjectID == ""
}

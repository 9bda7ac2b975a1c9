package student

import (
	"time"

	"github.com/academia-hub/academia/core"
)

// Student is a student profile attached to a User account.
type Student struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RollNumber   string    `json:"roll_number"`
	DepartmentID string    `json:"department_id"`
	Semester     int       `json:"semester"`
	CGPA         float64   `json:"cgpa"`
	CreatedAt    time.Time `json:"created_at"` // UTC
	UpdatedAt    time.Time `json:"updated_at"` // UTC
}

// HasProfile reports whether the student completed their academic profile;
// enrollments only exist once they have.
func (s *Student) HasProfile() bool {
	return s.RollNumber != "" && s.DepartmentID != "" && s.Semester > 0
}

// NewStudent contains information needed to onboard a new Student.
// A User account is created alongside the profile and the generated
// credentials are emailed to the student.
type NewStudent struct {
	Name         string  `json:"name" validate:"required"`
	Email        string  `json:"email" validate:"required,email"`
	RollNumber   string  `json:"roll_number" validate:"required,alphanum_"`
	DepartmentID string  `json:"department_id" validate:"required,uuid4"`
	Semester     int     `json:"semester" validate:"required,min=1,max=8"`
	CGPA         float64 `json:"cgpa" validate:"omitempty,min=0,max=10"`
}

func (ns *NewStudent) Validate(svc Service) error {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)
	ns.RollNumber = core.CleanString(ns.RollNumber)

	if err := core.Validate.Struct(ns); err != nil {
		return err
	}
	return svc.CheckUniqueness(ns.RollNumber)
}

// CompleteProfile carries the academic details a self-registered student
// must provide before enrollments are created for them.
type CompleteProfile struct {
	RollNumber   string  `json:"roll_number" validate:"required,alphanum_"`
	DepartmentID string  `json:"department_id" validate:"required,uuid4"`
	Semester     int     `json:"semester" validate:"required,min=1,max=8"`
	CGPA         float64 `json:"cgpa" validate:"omitempty,min=0,max=10"`
}

func (cp *CompleteProfile) Validate(svc Service) error {
	cp.RollNumber = core.CleanString(cp.RollNumber)

	if err := core.Validate.Struct(cp); err != nil {
		return err
	}
	return svc.CheckUniqueness(cp.RollNumber)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	RollNumber   string   `json:"roll_number" validate:"omitempty,alphanum_"`
	DepartmentID string   `json:"department_id" validate:"omitempty,uuid4"`
	Semester     int      `json:"semester" validate:"omitempty,min=1,max=8"`
	CGPA         *float64 `json:"cgpa" validate:"omitempty,min=0,max=10"`
}

func (us *UpdateStudent) Validate(origStd Student, svc Service) error {
	roll := core.CleanString(us.RollNumber)
	if roll != "" {
		us.RollNumber = roll
	} else {
		us.RollNumber = origStd.RollNumber
	}
	if us.DepartmentID == "" {
		us.DepartmentID = origStd.DepartmentID
	}
	if us.Semester == 0 {
		us.Semester = origStd.Semester
	}

	if err := core.Validate.Struct(us); err != nil {
		return err
	}
	return svc.CheckUniqueness(us.RollNumber, origStd)
}

// GetFilter looks a single student up by exactly one of its fields.
type GetFilter struct {
	ID         string
	UserID     string
	RollNumber string
}

type QueryFilter struct {
	DepartmentID string `query:"department_id"`
	Semester     int    `query:"semester"`
}

func (qf *QueryFilter) IsEmpty() bool {
	return qf.DepartmentID == "" && qf.Semester == 0
}

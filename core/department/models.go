package department

import (
	"time"

	"github.com/academia-hub/academia/core"
)

type Department struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Code      string    `json:"code"`
	HODUserID string    `json:"hod_user_id,omitempty"`
	CreatedAt time.Time `json:"created_at"` // UTC
	UpdatedAt time.Time `json:"updated_at"` // UTC
}

// NewDepartment contains information needed to create a new Department.
type NewDepartment struct {
	Name      string `json:"name" validate:"required"`
	Code      string `json:"code" validate:"required,subjectcode"`
	HODUserID string `json:"hod_user_id" validate:"omitempty,uuid4"`
}

func (nd *NewDepartment) Validate(svc Service) error {
	nd.Name = core.CleanString(nd.Name)
	nd.Code = core.CleanString(nd.Code)

	if err := core.Validate.Struct(nd); err != nil {
		return err
	}
	return svc.CheckUniqueness(nd.Code)
}

// UpdateDepartment defines what information may be provided to modify an existing Department.
type UpdateDepartment struct {
	Name      string `json:"name"`
	Code      string `json:"code" validate:"omitempty,subjectcode"`
	HODUserID string `json:"hod_user_id" validate:"omitempty,uuid4"`
}

func (ud *UpdateDepartment) Validate(origDept Department, svc Service) error {
	name := core.CleanString(ud.Name)
	if name != "" {
		ud.Name = name
	} else {
		ud.Name = origDept.Name
	}

	code := core.CleanString(ud.Code)
	if code != "" {
		ud.Code = code
	} else {
		ud.Code = origDept.Code
	}

	if err := core.Validate.Struct(ud); err != nil {
		return err
	}
	return svc.CheckUniqueness(ud.Code, origDept)
}

// GetFilter looks a single department up by exactly one of its fields.
type GetFilter struct {
	ID        string
	Code      string
	HODUserID string
}

type QueryFilter struct {
	Search string `query:"search"`
}

func (qf *QueryFilter) IsEmpty() bool { return qf.Search == "" }

func (qf *QueryFilter) Clean() {
	qf.Search = core.CleanString(qf.Search)
}

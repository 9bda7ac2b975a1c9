package department

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
)

var (
	// errors
	ErrNotFound      = errors.New("department not found")
	ErrCodeExists    = errors.New("a department with this code already exists")
	ErrHODUnassigned = errors.New("head of department is not assigned to any department")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedDepts []Department, exec ...core.DBExecutor) error
		CreateDepartment(ctx context.Context, dept Department, exec ...core.DBExecutor) (Department, error)
		QueryDepartments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Department, error)
		GetDepartment(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Department, error)
		UpdateDepartment(ctx context.Context, dept Department, exec ...core.DBExecutor) (Department, error)
		DeleteDepartmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		CheckUniqueness(code string, exclDepts ...Department) error
		Create(ctx context.Context, nd NewDepartment) (Department, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Department, error)
		Get(ctx context.Context, filter GetFilter) (Department, error)
		// GetForHOD finds the department led by the given user;
		// ErrHODUnassigned is returned when the user leads none.
		GetForHOD(ctx context.Context, hodUserID string) (Department, error)
		Update(ctx context.Context, id string, ud UpdateDepartment) (Department, error)
		Delete(ctx context.Context, ids ...string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) CheckUniqueness(code string, exclDepts ...Department) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclDepts); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, nd NewDepartment) (Department, error) {
	now := time.Now().UTC()
	dept := Department{
		Name:      nd.Name,
		Code:      nd.Code,
		HODUserID: nd.HODUserID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	return svc.repo.CreateDepartment(ctx, dept)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Department, error) {
	return svc.repo.QueryDepartments(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Department, error) {
	return svc.repo.GetDepartment(ctx, filter)
}

func (svc *service) GetForHOD(ctx context.Context, hodUserID string) (Department, error) {
	dept, err := svc.repo.GetDepartment(ctx, GetFilter{HODUserID: hodUserID})
	if err != nil {
		if errors.Cause(err) == ErrNotFound {
			return Department{}, ErrHODUnassigned
		}
		return Department{}, err
	}
	return dept, nil
}

func (svc *service) Update(ctx context.Context, id string, ud UpdateDepartment) (Department, error) {
	dept := Department{
		ID:        id,
		Name:      ud.Name,
		Code:      ud.Code,
		HODUserID: ud.HODUserID,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateDepartment(ctx, dept)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteDepartmentsByID(ctx, ids)
	return err
}

package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/user"
)

var (
	// errors
	ErrNotFound      = errors.New("teacher not found")
	ErrProfileExists = errors.New("this user already has a teacher profile")
)

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tchr Teacher, exec ...core.DBExecutor) (Teacher, error)
		QueryTeachers(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Teacher, error)
		GetTeacher(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Teacher, error)
		UpdateTeacher(ctx context.Context, tchr Teacher, exec ...core.DBExecutor) (Teacher, error)
		DeleteTeachersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		// AddHandledSubject and RemoveHandledSubject maintain the
		// subjects-handled mirror; both are idempotent.
		AddHandledSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error
		RemoveHandledSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error
		CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error)
	}

	Service interface {
		Create(ctx context.Context, nt NewTeacher) (Teacher, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Teacher, error)
		Get(ctx context.Context, filter GetFilter) (Teacher, error)
		Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, ids ...string) error
		CountByDepartment(ctx context.Context, departmentID string) (int, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service) Service {
	return &service{
		repo:   repo,
		usrSvc: usrSvc,
	}
}

// Create onboards a teacher: a User account is created with a temporary
// password emailed to them, then the profile is attached to it.
func (svc *service) Create(ctx context.Context, nt NewTeacher) (Teacher, error) {
	usr, err := svc.usrSvc.CreateWithCredentials(ctx, nt.Name, nt.Email, user.RoleTeacher)
	if err != nil {
		return Teacher{}, err
	}

	now := time.Now().UTC()
	tchr := Teacher{
		UserID:       usr.ID,
		DepartmentID: nt.DepartmentID,
		Designation:  nt.Designation,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	return svc.repo.CreateTeacher(ctx, tchr)
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Teacher, error) {
	return svc.repo.QueryTeachers(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Teacher, error) {
	return svc.repo.GetTeacher(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	tchr := Teacher{
		ID:           id,
		DepartmentID: ut.DepartmentID,
		Designation:  ut.Designation,
		UpdatedAt:    time.Now().UTC(),
	}
	return svc.repo.UpdateTeacher(ctx, tchr)
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteTeachersByID(ctx, ids)
	return err
}

func (svc *service) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	return svc.repo.CountByDepartment(ctx, departmentID)
}

package student

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/user"
)

var (
	// errors
	ErrNotFound         = errors.New("student not found")
	ErrRollNumberExists = errors.New("a student with this roll number already exists")
	ErrProfileExists    = errors.New("this user already has a student profile")
)

type (
	Repository interface {
		CheckRollNumberUniqueness(ctx context.Context, rollNumber string, excludedStds []Student, exec ...core.DBExecutor) error
		CreateStudent(ctx context.Context, std Student, exec ...core.DBExecutor) (Student, error)
		QueryStudents(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Student, error)
		GetStudent(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Student, error)
		UpdateStudent(ctx context.Context, std Student, cgpa *float64, exec ...core.DBExecutor) (Student, error)
		DeleteStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error)
	}

	// EnrollmentSyncer keeps a student's enrollments aligned with their
	// department and semester.
	EnrollmentSyncer interface {
		EnsureSemesterEnrollments(ctx context.Context, studentID string) error
		UpdateSemesterEnrollment(ctx context.Context, studentID string, newSemester int) error
	}

	Service interface {
		CheckUniqueness(rollNumber string, exclStds ...Student) error
		Create(ctx context.Context, ns NewStudent) (Student, error)
		// CompleteProfile attaches academic details to a self-registered user
		// and enrolls them in their semester subjects.
		CompleteProfile(ctx context.Context, userID string, cp CompleteProfile) (Student, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error)
		Get(ctx context.Context, filter GetFilter) (Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, ids ...string) error
		CountByDepartment(ctx context.Context, departmentID string) (int, error)
	}

	service struct {
		repo   Repository
		usrSvc user.Service
		syncer EnrollmentSyncer
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, usrSvc user.Service, syncer EnrollmentSyncer) Service {
	return &service{
		repo:   repo,
		usrSvc: usrSvc,
		syncer: syncer,
	}
}

func (svc *service) CheckUniqueness(rollNumber string, exclStds ...Student) error {
	if err := svc.repo.CheckRollNumberUniqueness(context.Background(), rollNumber, exclStds); err != nil {
		if errors.Cause(err) == ErrRollNumberExists {
			return core.NewValidationError(err, core.FieldError{Field: "roll_number", Error: err.Error()})
		}
		return err
	}
	return nil
}

// Create onboards a student: a User account is created with a temporary
// password emailed to them, the profile is attached to it and the student is
// enrolled in their semester subjects.
func (svc *service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	usr, err := svc.usrSvc.CreateWithCredentials(ctx, ns.Name, ns.Email, user.RoleStudent)
	if err != nil {
		return Student{}, err
	}

	now := time.Now().UTC()
	std := Student{
		UserID:       usr.ID,
		RollNumber:   ns.RollNumber,
		DepartmentID: ns.DepartmentID,
		Semester:     ns.Semester,
		CGPA:         ns.CGPA,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	std, err = svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}

	if err := svc.syncer.EnsureSemesterEnrollments(ctx, std.ID); err != nil {
		return Student{}, err
	}
	return std, nil
}

func (svc *service) CompleteProfile(ctx context.Context, userID string, cp CompleteProfile) (Student, error) {
	if _, err := svc.repo.GetStudent(ctx, GetFilter{UserID: userID}); err == nil {
		return Student{}, ErrProfileExists
	} else if errors.Cause(err) != ErrNotFound {
		return Student{}, err
	}

	now := time.Now().UTC()
	std := Student{
		UserID:       userID,
		RollNumber:   cp.RollNumber,
		DepartmentID: cp.DepartmentID,
		Semester:     cp.Semester,
		CGPA:         cp.CGPA,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	std, err := svc.repo.CreateStudent(ctx, std)
	if err != nil {
		return Student{}, err
	}

	if err := svc.syncer.EnsureSemesterEnrollments(ctx, std.ID); err != nil {
		return Student{}, err
	}
	return std, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Student, error) {
	return svc.repo.QueryStudents(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Student, error) {
	return svc.repo.GetStudent(ctx, filter)
}

// Update modifies a student profile. A department or semester change
// re-enrolls the student in the subjects of their new semester.
func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	origStd, err := svc.repo.GetStudent(ctx, GetFilter{ID: id})
	if err != nil {
		return Student{}, err
	}

	std := Student{
		ID:           id,
		RollNumber:   us.RollNumber,
		DepartmentID: us.DepartmentID,
		Semester:     us.Semester,
		UpdatedAt:    time.Now().UTC(),
	}
	std, err = svc.repo.UpdateStudent(ctx, std, us.CGPA)
	if err != nil {
		return Student{}, err
	}

	if std.DepartmentID != origStd.DepartmentID || std.Semester != origStd.Semester {
		if err := svc.syncer.UpdateSemesterEnrollment(ctx, std.ID, std.Semester); err != nil {
			return Student{}, err
		}
	}
	return std, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteStudentsByID(ctx, ids)
	return err
}

func (svc *service) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	return svc.repo.CountByDepartment(ctx, departmentID)
}

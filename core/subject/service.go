package subject

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
)

var (
	// errors
	ErrNotFound   = errors.New("subject not found")
	ErrCodeExists = errors.New("a subject with this code already exists")
)

type (
	Repository interface {
		CheckCodeUniqueness(ctx context.Context, code string, excludedSubs []Subject, exec ...core.DBExecutor) error
		CreateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		QuerySubjects(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Subject, error)
		GetSubject(ctx context.Context, filter GetFilter, exec ...core.DBExecutor) (Subject, error)
		UpdateSubject(ctx context.Context, sub Subject, exec ...core.DBExecutor) (Subject, error)
		// SetAssignedTeacher sets (or clears, with an empty ID) the assigned teacher.
		SetAssignedTeacher(ctx context.Context, subjectID, teacherID string, exec ...core.DBExecutor) error
		DeleteSubjectsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error)
		CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error)
	}

	// AssignmentSyncer reconciles a subject's assigned teacher with the
	// teachers' subjects-handled mirror.
	AssignmentSyncer interface {
		SyncTeacherAssignment(ctx context.Context, subjectID, newTeacherID, prevTeacherID string) error
	}

	Service interface {
		CheckUniqueness(code string, exclSubs ...Subject) error
		Create(ctx context.Context, ns NewSubject) (Subject, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Subject, error)
		Get(ctx context.Context, filter GetFilter) (Subject, error)
		Update(ctx context.Context, id string, us UpdateSubject) (Subject, error)
		// AssignTeacher moves the subject to the given teacher (or unassigns it
		// with an empty teacherID) and keeps both teachers' mirrors in sync.
		AssignTeacher(ctx context.Context, subjectID, teacherID string) (Subject, error)
		Delete(ctx context.Context, ids ...string) error
		CountByDepartment(ctx context.Context, departmentID string) (int, error)
	}

	service struct {
		repo   Repository
		syncer AssignmentSyncer
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, syncer AssignmentSyncer) Service {
	return &service{
		repo:   repo,
		syncer: syncer,
	}
}

func (svc *service) CheckUniqueness(code string, exclSubs ...Subject) error {
	if err := svc.repo.CheckCodeUniqueness(context.Background(), code, exclSubs); err != nil {
		if errors.Cause(err) == ErrCodeExists {
			return core.NewValidationError(err, core.FieldError{Field: "code", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *service) Create(ctx context.Context, ns NewSubject) (Subject, error) {
	now := time.Now().UTC()
	sub := Subject{
		Name:         ns.Name,
		Code:         ns.Code,
		DepartmentID: ns.DepartmentID,
		Semester:     ns.Semester,
		Credits:      ns.Credits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	sub, err := svc.repo.CreateSubject(ctx, sub)
	if err != nil {
		return Subject{}, err
	}

	if ns.AssignedTeacherID != "" {
		if err := svc.syncer.SyncTeacherAssignment(ctx, sub.ID, ns.AssignedTeacherID, ""); err != nil {
			return Subject{}, err
		}
		sub.AssignedTeacherID = ns.AssignedTeacherID
	}
	return sub, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Subject, error) {
	return svc.repo.QuerySubjects(ctx, filter, ordering)
}

func (svc *service) Get(ctx context.Context, filter GetFilter) (Subject, error) {
	return svc.repo.GetSubject(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSubject) (Subject, error) {
	sub := Subject{
		ID:        id,
		Name:      us.Name,
		Code:      us.Code,
		Semester:  us.Semester,
		Credits:   us.Credits,
		UpdatedAt: time.Now().UTC(),
	}
	return svc.repo.UpdateSubject(ctx, sub)
}

func (svc *service) AssignTeacher(ctx context.Context, subjectID, teacherID string) (Subject, error) {
	sub, err := svc.repo.GetSubject(ctx, GetFilter{ID: subjectID})
	if err != nil {
		return Subject{}, err
	}
	if sub.AssignedTeacherID == teacherID {
		return sub, nil // no-op
	}

	if err := svc.syncer.SyncTeacherAssignment(ctx, sub.ID, teacherID, sub.AssignedTeacherID); err != nil {
		return Subject{}, err
	}
	sub.AssignedTeacherID = teacherID
	return sub, nil
}

func (svc *service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteSubjectsByID(ctx, ids)
	return err
}

func (svc *service) CountByDepartment(ctx context.Context, departmentID string) (int, error) {
	return svc.repo.CountByDepartment(ctx, departmentID)
}

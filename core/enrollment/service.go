package enrollment

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
)

var (
	// errors
	ErrNotFound        = errors.New("enrollment not found")
	ErrAlreadyEnrolled = errors.New("student is already enrolled in this subject")
)

type (
	Repository interface {
		QueryEnrollments(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Enrollment, error)
		// InsertEnrollments inserts the given enrollments one by one and
		// returns ErrAlreadyEnrolled on a unique constraint violation.
		InsertEnrollments(ctx context.Context, enrs []Enrollment, exec ...core.DBExecutor) ([]Enrollment, error)
		DeleteByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error)
		CountBySubject(ctx context.Context, subjectID string, exec ...core.DBExecutor) (int, error)
		CountByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error)
	}

	// Synchronizer keeps enrollments and teacher assignments consistent with
	// student profiles and subjects.
	Synchronizer interface {
		student.EnrollmentSyncer
		subject.AssignmentSyncer

		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Enrollment, error)
		// EnrollInSemesterSubjects enrolls the student in every subject of
		// their department and semester they are not already enrolled in and
		// returns the newly created enrollments.
		EnrollInSemesterSubjects(ctx context.Context, studentID string) ([]Enrollment, error)
		RemoveStudentEnrollments(ctx context.Context, studentID string) error
		CountBySubject(ctx context.Context, subjectID string) (int, error)
	}

	synchronizer struct {
		db           core.DB
		repo         Repository
		stdRepo      student.Repository
		subRepo      subject.Repository
		tchrRepo     teacher.Repository
		logger       core.Logger
		academicYear string
	}
)

var (
	_ Synchronizer             = (*synchronizer)(nil)
	_ student.EnrollmentSyncer = (*synchronizer)(nil)
	_ subject.AssignmentSyncer = (*synchronizer)(nil)
)

func NewSynchronizer(
	conf *core.Config,
	db core.DB,
	repo Repository,
	stdRepo student.Repository,
	subRepo subject.Repository,
	tchrRepo teacher.Repository,
	logger core.Logger,
) Synchronizer {
	return &synchronizer{
		db:           db,
		repo:         repo,
		stdRepo:      stdRepo,
		subRepo:      subRepo,
		tchrRepo:     tchrRepo,
		logger:       logger,
		academicYear: conf.AcademicYear,
	}
}

func (sync *synchronizer) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Enrollment, error) {
	return sync.repo.QueryEnrollments(ctx, filter, ordering)
}

func (sync *synchronizer) EnrollInSemesterSubjects(ctx context.Context, studentID string) ([]Enrollment, error) {
	return sync.enrollInSemesterSubjects(ctx, studentID, 0)
}

// enrollInSemesterSubjects enrolls the student in the subjects of their
// department and the given semester; semester 0 means the semester stored on
// the profile.
func (sync *synchronizer) enrollInSemesterSubjects(ctx context.Context, studentID string, semester int, exec ...core.DBExecutor) ([]Enrollment, error) {
	std, err := sync.stdRepo.GetStudent(ctx, student.GetFilter{ID: studentID}, exec...)
	if err != nil {
		return nil, err
	}
	if !std.HasProfile() && semester <= 0 {
		return nil, nil // nothing to enroll in yet
	}
	if semester <= 0 {
		semester = std.Semester
	}
	if std.DepartmentID == "" {
		return nil, nil
	}

	subs, err := sync.subRepo.QuerySubjects(ctx, &subject.QueryFilter{
		DepartmentID: std.DepartmentID,
		Semester:     semester,
	}, nil, exec...)
	if err != nil {
		return nil, err
	}
	if len(subs) == 0 {
		return nil, nil
	}

	existing, err := sync.repo.QueryEnrollments(ctx, &QueryFilter{StudentID: std.ID, AcademicYear: sync.academicYear}, nil, exec...)
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(existing))
	for _, enr := range existing {
		enrolled[enr.SubjectID] = true
	}

	now := time.Now().UTC()
	var missing []Enrollment
	for _, sub := range subs {
		if enrolled[sub.ID] {
			continue
		}
		missing = append(missing, Enrollment{
			StudentID:    std.ID,
			SubjectID:    sub.ID,
			AcademicYear: sync.academicYear,
			Status:       StatusActive,
			EnrolledAt:   now,
		})
	}
	if len(missing) == 0 {
		return nil, nil
	}

	created, err := sync.repo.InsertEnrollments(ctx, missing, exec...)
	if err != nil {
		// a concurrent enrollment beat us to it; the desired state holds
		if errors.Cause(err) == ErrAlreadyEnrolled {
			sync.logger.Warn("skipping duplicate enrollments for student " + std.ID)
			return nil, nil
		}
		return nil, err
	}
	return created, nil
}

func (sync *synchronizer) EnsureSemesterEnrollments(ctx context.Context, studentID string) error {
	_, err := sync.EnrollInSemesterSubjects(ctx, studentID)
	return err
}

// UpdateSemesterEnrollment replaces all of a student's enrollments with those
// of the given semester. Runs in a transaction; either the student ends up
// fully enrolled in the new semester or their enrollments are left untouched.
func (sync *synchronizer) UpdateSemesterEnrollment(ctx context.Context, studentID string, newSemester int) error {
	return sync.db.RunInTx(ctx, func(exec core.DBExecutor) error {
		if _, err := sync.repo.DeleteByStudent(ctx, studentID, exec); err != nil {
			return errors.Wrap(err, "removing previous enrollments")
		}
		if _, err := sync.enrollInSemesterSubjects(ctx, studentID, newSemester, exec); err != nil {
			return errors.Wrap(err, "enrolling in new semester subjects")
		}
		return nil
	})
}

// SyncTeacherAssignment points the subject at newTeacherID and reconciles both
// teachers' subjects-handled mirrors. Either ID may be empty (unassigned).
// The operation is idempotent.
func (sync *synchronizer) SyncTeacherAssignment(ctx context.Context, subjectID, newTeacherID, prevTeacherID string) error {
	if newTeacherID == prevTeacherID {
		return nil
	}

	if newTeacherID != "" {
		if _, err := sync.tchrRepo.GetTeacher(ctx, teacher.GetFilter{ID: newTeacherID}); err != nil {
			return err
		}
	}

	return sync.db.RunInTx(ctx, func(exec core.DBExecutor) error {
		if err := sync.subRepo.SetAssignedTeacher(ctx, subjectID, newTeacherID, exec); err != nil {
			return errors.Wrap(err, "updating subject teacher")
		}
		if prevTeacherID != "" {
			if err := sync.tchrRepo.RemoveHandledSubject(ctx, prevTeacherID, subjectID, exec); err != nil {
				return errors.Wrap(err, "removing subject from previous teacher")
			}
		}
		if newTeacherID != "" {
			if err := sync.tchrRepo.AddHandledSubject(ctx, newTeacherID, subjectID, exec); err != nil {
				return errors.Wrap(err, "adding subject to new teacher")
			}
		}
		return nil
	})
}

func (sync *synchronizer) RemoveStudentEnrollments(ctx context.Context, studentID string) error {
	_, err := sync.repo.DeleteByStudent(ctx, studentID)
	return err
}

func (sync *synchronizer) CountBySubject(ctx context.Context, subjectID string) (int, error) {
	return sync.repo.CountBySubject(ctx, subjectID)
}

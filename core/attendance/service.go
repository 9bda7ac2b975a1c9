package attendance

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/enrollment"
)

var (
	// errors
	ErrNotFound             = errors.New("attendance record not found")
	ErrSessionAlreadyMarked = errors.New("attendance for this subject and date has already been submitted")
	ErrNotEnrolled          = errors.New("student is not enrolled in this subject")
)

type (
	Repository interface {
		CreateRecords(ctx context.Context, recs []Record, exec ...core.DBExecutor) ([]Record, error)
		// QueryRecords returns records ordered by date unless overridden.
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Record, error)
		ExistsForSession(ctx context.Context, subjectID string, date time.Time, exec ...core.DBExecutor) (bool, error)
		SummarizeByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (Summary, error)
		// SummarizeByStudents aggregates attendance per student; a nil ids
		// slice covers all students.
		SummarizeByStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) (map[string]Summary, error)
	}

	Service interface {
		// RecordSession stores a teacher's bulk submission for one subject
		// session. The whole session is rejected when it was already submitted
		// or when any entry refers to a student not enrolled in the subject.
		RecordSession(ctx context.Context, ns NewSession, markedByID string) ([]Record, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Record, error)
		StudentSummary(ctx context.Context, studentID string) (Summary, error)
	}

	service struct {
		db      core.DB
		repo    Repository
		enrSync enrollment.Synchronizer
	}
)

var _ Service = (*service)(nil)

func NewService(db core.DB, repo Repository, enrSync enrollment.Synchronizer) Service {
	return &service{
		db:      db,
		repo:    repo,
		enrSync: enrSync,
	}
}

func (svc *service) RecordSession(ctx context.Context, ns NewSession, markedByID string) ([]Record, error) {
	exists, err := svc.repo.ExistsForSession(ctx, ns.SubjectID, ns.Date)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrSessionAlreadyMarked
	}

	enrs, err := svc.enrSync.Query(ctx, &enrollment.QueryFilter{SubjectID: ns.SubjectID})
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(enrs))
	for _, enr := range enrs {
		enrolled[enr.StudentID] = true
	}

	now := time.Now().UTC()
	recs := make([]Record, 0, len(ns.Entries))
	for _, entry := range ns.Entries {
		if !enrolled[entry.StudentID] {
			return nil, core.NewValidationError(
				ErrNotEnrolled,
				core.FieldError{Field: "student_id", Error: ErrNotEnrolled.Error() + ": " + entry.StudentID},
			)
		}
		recs = append(recs, Record{
			StudentID:  entry.StudentID,
			SubjectID:  ns.SubjectID,
			Date:       ns.Date,
			Status:     entry.Status,
			MarkedByID: markedByID,
			CreatedAt:  now,
		})
	}

	var created []Record
	err = svc.db.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		created, err = svc.repo.CreateRecords(ctx, recs, exec)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "storing attendance session")
	}
	return created, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Record, error) {
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: true}}
	}
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *service) StudentSummary(ctx context.Context, studentID string) (Summary, error) {
	return svc.repo.SummarizeByStudent(ctx, studentID)
}

package marks

import (
	"context"
	"time"

	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/enrollment"
)

var (
	// errors
	ErrNotFound    = errors.New("marks record not found")
	ErrNotEnrolled = errors.New("student is not enrolled in this subject")
)

type (
	Repository interface {
		// UpsertRecords inserts the given records, replacing the score of any
		// existing record with the same student, subject and exam type.
		UpsertRecords(ctx context.Context, recs []Record, exec ...core.DBExecutor) ([]Record, error)
		QueryRecords(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]Record, error)
		AverageByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (Average, error)
		// AverageByStudents aggregates marks per student; a nil ids slice
		// covers all students. Records with a zero total count as 0%.
		AverageByStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) (map[string]Average, error)
	}

	Service interface {
		// RecordExam stores a teacher's bulk marks submission. The whole
		// submission is rejected when any entry refers to a student not
		// enrolled in the subject.
		RecordExam(ctx context.Context, ne NewExam, enteredByID string) ([]Record, error)
		Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Record, error)
		StudentAverage(ctx context.Context, studentID string) (Average, error)
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

func (svc *service) RecordExam(ctx context.Context, ne NewExam, enteredByID string) ([]Record, error) {
	enrs, err := svc.enrSync.Query(ctx, &enrollment.QueryFilter{SubjectID: ne.SubjectID})
	if err != nil {
		return nil, err
	}
	enrolled := make(map[string]bool, len(enrs))
	for _, enr := range enrs {
		enrolled[enr.StudentID] = true
	}

	now := time.Now().UTC()
	recs := make([]Record, 0, len(ne.Entries))
	for _, entry := range ne.Entries {
		if !enrolled[entry.StudentID] {
			return nil, core.NewValidationError(
				ErrNotEnrolled,
				core.FieldError{Field: "student_id", Error: ErrNotEnrolled.Error() + ": " + entry.StudentID},
			)
		}
		recs = append(recs, Record{
			StudentID:     entry.StudentID,
			SubjectID:     ne.SubjectID,
			ExamType:      ne.ExamType,
			MarksObtained: entry.MarksObtained,
			TotalMarks:    entry.TotalMarks,
			EnteredByID:   enteredByID,
			CreatedAt:     now,
			UpdatedAt:     now,
		})
	}

	var saved []Record
	err = svc.db.RunInTx(ctx, func(exec core.DBExecutor) error {
		var err error
		saved, err = svc.repo.UpsertRecords(ctx, recs, exec)
		return err
	})
	if err != nil {
		return nil, errors.Wrap(err, "storing exam marks")
	}
	return saved, nil
}

func (svc *service) Query(ctx context.Context, filter *QueryFilter, ordering ...core.DBOrdering) ([]Record, error) {
	return svc.repo.QueryRecords(ctx, filter, ordering)
}

func (svc *service) StudentAverage(ctx context.Context, studentID string) (Average, error) {
	return svc.repo.AverageByStudent(ctx, studentID)
}

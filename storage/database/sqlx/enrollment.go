package sqlxrepos

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/enrollment"
)

type enrollmentRepository struct {
	exec core.DBExecutor
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(exec core.DBExecutor) *enrollmentRepository {
	return &enrollmentRepository{exec: exec}
}

type enrollmentRow struct {
	ID           string    `db:"id"`
	StudentID    string    `db:"student_id"`
	SubjectID    string    `db:"subject_id"`
	AcademicYear string    `db:"academic_year"`
	Status       string    `db:"status"`
	EnrolledAt   time.Time `db:"enrolled_at"`
}

func (r enrollmentRow) domain() enrollment.Enrollment {
	return enrollment.Enrollment{
		ID:           r.ID,
		StudentID:    r.StudentID,
		SubjectID:    r.SubjectID,
		AcademicYear: r.AcademicYear,
		Status:       r.Status,
		EnrolledAt:   r.EnrolledAt,
	}
}

func (repo enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.StudentID != "" {
			args = append(args, filter.StudentID)
			conds = append(conds, fmt.Sprintf("student_id = $%d", len(args)))
		}
		if filter.SubjectID != "" {
			args = append(args, filter.SubjectID)
			conds = append(conds, fmt.Sprintf("subject_id = $%d", len(args)))
		}
		if filter.AcademicYear != "" {
			args = append(args, filter.AcademicYear)
			conds = append(conds, fmt.Sprintf("academic_year = $%d", len(args)))
		}
		if filter.Status != "" {
			args = append(args, filter.Status)
			conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
		}
	}

	var rows []enrollmentRow
	q := `SELECT * FROM enrollment` + whereClause(conds) + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying enrollments")
	}
	enrs := make([]enrollment.Enrollment, 0, len(rows))
	for _, r := range rows {
		enrs = append(enrs, r.domain())
	}
	return enrs, nil
}

func (repo enrollmentRepository) InsertEnrollments(ctx context.Context, enrs []enrollment.Enrollment, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	exe := getExec(repo.exec, exec)
	created := make([]enrollment.Enrollment, 0, len(enrs))
	for _, enr := range enrs {
		enr.ID = uuid.New().String()
		_, err := exe.ExecContext(ctx,
			`INSERT INTO enrollment (id, student_id, subject_id, academic_year, status, enrolled_at)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			enr.ID, enr.StudentID, enr.SubjectID, enr.AcademicYear, enr.Status, enr.EnrolledAt)
		if err != nil {
			if isUniqueViolation(err) {
				return nil, enrollment.ErrAlreadyEnrolled
			}
			return nil, errors.Wrap(err, "inserting enrollment")
		}
		created = append(created, enr)
	}
	return created, nil
}

func (repo enrollmentRepository) DeleteByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM enrollment WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting enrollments")
	}
	return int(cnt), nil
}

func (repo enrollmentRepository) CountBySubject(ctx context.Context, subjectID string, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &cnt,
		`SELECT COUNT(*) FROM enrollment WHERE subject_id = $1`, subjectID)
	if err != nil {
		return 0, errors.Wrap(err, "counting enrollments by subject")
	}
	return cnt, nil
}

func (repo enrollmentRepository) CountByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	var cnt int
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &cnt,
		`SELECT COUNT(*) FROM enrollment WHERE student_id = $1`, studentID)
	if err != nil {
		return 0, errors.Wrap(err, "counting enrollments by student")
	}
	return cnt, nil
}

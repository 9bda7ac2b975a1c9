package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/teacher"
)

type teacherRepository struct {
	exec core.DBExecutor
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(exec core.DBExecutor) *teacherRepository {
	return &teacherRepository{exec: exec}
}

type teacherRow struct {
	ID              string         `db:"id"`
	UserID          string         `db:"user_id"`
	DepartmentID    string         `db:"department_id"`
	Designation     string         `db:"designation"`
	SubjectsHandled pq.StringArray `db:"subjects_handled"`
	CreatedAt       sql.NullTime   `db:"created_at"`
	UpdatedAt       sql.NullTime   `db:"updated_at"`
}

func (r teacherRow) domain() teacher.Teacher {
	return teacher.Teacher{
		ID:              r.ID,
		UserID:          r.UserID,
		DepartmentID:    r.DepartmentID,
		Designation:     r.Designation,
		SubjectsHandled: r.SubjectsHandled,
		CreatedAt:       r.CreatedAt.Time,
		UpdatedAt:       r.UpdatedAt.Time,
	}
}

// teacherQuery joins in the subjects-handled mirror as an array column.
const teacherQuery = `
SELECT t.*,
       COALESCE(array_agg(ts.subject_id) FILTER (WHERE ts.subject_id IS NOT NULL), '{}') AS subjects_handled
FROM teacher_profile t
LEFT JOIN teacher_subject ts ON ts.teacher_id = t.id`

const teacherGroupBy = ` GROUP BY t.id`

func (repo teacherRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return teacher.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo teacherRepository) CreateTeacher(ctx context.Context, tchr teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	tchr.ID = uuid.New().String()
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO teacher_profile (id, user_id, department_id, designation, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		tchr.ID, tchr.UserID, tchr.DepartmentID, tchr.Designation, tchr.CreatedAt, tchr.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return teacher.Teacher{}, teacher.ErrProfileExists
		}
		return teacher.Teacher{}, errors.Wrap(err, "inserting teacher profile")
	}
	return tchr, nil
}

func (repo teacherRepository) QueryTeachers(ctx context.Context, filter *teacher.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.DepartmentID != "" {
			args = append(args, filter.DepartmentID)
			conds = append(conds, fmt.Sprintf("t.department_id = $%d", len(args)))
		}
		if filter.SubjectID != "" {
			args = append(args, filter.SubjectID)
			conds = append(conds, fmt.Sprintf("ts.subject_id = $%d", len(args)))
		}
	}

	var rows []teacherRow
	q := teacherQuery + whereClause(conds) + teacherGroupBy + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying teachers")
	}
	teachers := make([]teacher.Teacher, 0, len(rows))
	for _, r := range rows {
		teachers = append(teachers, r.domain())
	}
	return teachers, nil
}

func (repo teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter, exec ...core.DBExecutor) (teacher.Teacher, error) {
	var row teacherRow
	exe := getExec(repo.exec, exec)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		if err := sqlx.GetContext(ctx, exe, &row, teacherQuery+` WHERE t.id = $1`+teacherGroupBy, filter.ID); err != nil {
			return teacher.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by ID")
		}
	case filter.UserID != "":
		if err := sqlx.GetContext(ctx, exe, &row, teacherQuery+` WHERE t.user_id = $1`+teacherGroupBy, filter.UserID); err != nil {
			return teacher.Teacher{}, repo.trapNoRowsErr(err, "finding teacher by user")
		}
	default:
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return row.domain(), nil
}

func (repo teacherRepository) UpdateTeacher(ctx context.Context, tchr teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	q := `UPDATE teacher_profile SET
	        department_id = COALESCE(NULLIF($2, '')::uuid, department_id),
	        designation = COALESCE(NULLIF($3, ''), designation),
	        updated_at = $4
	      WHERE id = $1`

	res, err := getExec(repo.exec, exec).ExecContext(ctx, q, tchr.ID, tchr.DepartmentID, tchr.Designation, tchr.UpdatedAt)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "updating teacher profile")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	return repo.GetTeacher(ctx, teacher.GetFilter{ID: tchr.ID}, exec...)
}

func (repo teacherRepository) DeleteTeachersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM teacher_profile WHERE id = ANY($1)`, pqStrArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting teachers")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting teachers")
	}
	return int(cnt), nil
}

func (repo teacherRepository) AddHandledSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error {
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO teacher_subject (teacher_id, subject_id) VALUES ($1, $2) ON CONFLICT DO NOTHING`,
		teacherID, subjectID)
	return errors.Wrap(err, "adding handled subject")
}

func (repo teacherRepository) RemoveHandledSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error {
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`DELETE FROM teacher_subject WHERE teacher_id = $1 AND subject_id = $2`,
		teacherID, subjectID)
	return errors.Wrap(err, "removing handled subject")
}

func (repo teacherRepository) CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error) {
	q := `SELECT COUNT(*) FROM teacher_profile`
	var args []interface{}
	if departmentID != "" {
		q += ` WHERE department_id = $1`
		args = append(args, departmentID)
	}

	var cnt int
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &cnt, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting teachers")
	}
	return cnt, nil
}

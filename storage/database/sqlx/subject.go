package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/subject"
)

type subjectRepository struct {
	exec core.DBExecutor
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(exec core.DBExecutor) *subjectRepository {
	return &subjectRepository{exec: exec}
}

type subjectRow struct {
	ID                string         `db:"id"`
	Name              string         `db:"name"`
	Code              string         `db:"code"`
	DepartmentID      string         `db:"department_id"`
	Semester          int            `db:"semester"`
	Credits           int            `db:"credits"`
	AssignedTeacherID sql.NullString `db:"assigned_teacher_id"`
	CreatedAt         sql.NullTime   `db:"created_at"`
	UpdatedAt         sql.NullTime   `db:"updated_at"`
}

func (r subjectRow) domain() subject.Subject {
	return subject.Subject{
		ID:                r.ID,
		Name:              r.Name,
		Code:              r.Code,
		DepartmentID:      r.DepartmentID,
		Semester:          r.Semester,
		Credits:           r.Credits,
		AssignedTeacherID: r.AssignedTeacherID.String,
		CreatedAt:         r.CreatedAt.Time,
		UpdatedAt:         r.UpdatedAt.Time,
	}
}

func (repo subjectRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return subject.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo subjectRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedSubs []subject.Subject, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM subject WHERE code = $1`
	args := []interface{}{code}
	if len(excludedSubs) > 0 {
		ids := make([]string, 0, len(excludedSubs))
		for _, s := range excludedSubs {
			ids = append(ids, s.ID)
		}
		q += ` AND NOT (id = ANY($2))`
		args = append(args, pqStrArray(ids))
	}
	q += `)`

	var exists bool
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking subject code uniqueness")
	}
	if exists {
		return subject.ErrCodeExists
	}
	return nil
}

func (repo subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	sub.ID = uuid.New().String()
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO subject (id, name, code, department_id, semester, credits, assigned_teacher_id, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)`,
		sub.ID, sub.Name, sub.Code, sub.DepartmentID, sub.Semester, sub.Credits, sub.AssignedTeacherID, sub.CreatedAt, sub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return subject.Subject{}, subject.ErrCodeExists
		}
		return subject.Subject{}, errors.Wrap(err, "inserting subject")
	}
	return sub, nil
}

func (repo subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]subject.Subject, error) {
	var conds []string
	var args []interface{}
	if filter != nil {
		if filter.DepartmentID != "" {
			args = append(args, filter.DepartmentID)
			conds = append(conds, fmt.Sprintf("department_id = $%d", len(args)))
		}
		if filter.Semester != 0 {
			args = append(args, filter.Semester)
			conds = append(conds, fmt.Sprintf("semester = $%d", len(args)))
		}
		if filter.AssignedTeacherID != "" {
			args = append(args, filter.AssignedTeacherID)
			conds = append(conds, fmt.Sprintf("assigned_teacher_id = $%d", len(args)))
		}
	}

	var rows []subjectRow
	q := `SELECT * FROM subject` + whereClause(conds) + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying subjects")
	}
	subs := make([]subject.Subject, 0, len(rows))
	for _, r := range rows {
		subs = append(subs, r.domain())
	}
	return subs, nil
}

func (repo subjectRepository) GetSubject(ctx context.Context, filter subject.GetFilter, exec ...core.DBExecutor) (subject.Subject, error) {
	var row subjectRow
	exe := getExec(repo.exec, exec)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return subject.Subject{}, subject.ErrNotFound
		}
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM subject WHERE id = $1`, filter.ID); err != nil {
			return subject.Subject{}, repo.trapNoRowsErr(err, "finding subject by ID")
		}
	case filter.Code != "":
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM subject WHERE code = $1`, filter.Code); err != nil {
			return subject.Subject{}, repo.trapNoRowsErr(err, "finding subject by code")
		}
	default:
		return subject.Subject{}, subject.ErrNotFound
	}
	return row.domain(), nil
}

func (repo subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	q := `UPDATE subject SET
	        name = COALESCE(NULLIF($2, ''), name),
	        code = COALESCE(NULLIF($3, ''), code),
	        department_id = COALESCE(NULLIF($4, '')::uuid, department_id),
	        semester = CASE WHEN $5 > 0 THEN $5 ELSE semester END,
	        credits = CASE WHEN $6 > 0 THEN $6 ELSE credits END,
	        updated_at = $7
	      WHERE id = $1
	      RETURNING *`

	var row subjectRow
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, q,
		sub.ID, sub.Name, sub.Code, sub.DepartmentID, sub.Semester, sub.Credits, sub.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return subject.Subject{}, subject.ErrCodeExists
		}
		return subject.Subject{}, repo.trapNoRowsErr(err, "updating subject")
	}
	return row.domain(), nil
}

func (repo subjectRepository) SetAssignedTeacher(ctx context.Context, subjectID, teacherID string, exec ...core.DBExecutor) error {
	res, err := getExec(repo.exec, exec).ExecContext(ctx,
		`UPDATE subject SET assigned_teacher_id = NULLIF($2, '')::uuid, updated_at = now() WHERE id = $1`,
		subjectID, teacherID)
	if err != nil {
		return errors.Wrap(err, "setting assigned teacher")
	}
	if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
		return subject.ErrNotFound
	}
	return nil
}

func (repo subjectRepository) DeleteSubjectsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM subject WHERE id = ANY($1)`, pqStrArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting subjects")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting subjects")
	}
	return int(cnt), nil
}

func (repo subjectRepository) CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error) {
	q := `SELECT COUNT(*) FROM subject`
	var args []interface{}
	if departmentID != "" {
		q += ` WHERE department_id = $1`
		args = append(args, departmentID)
	}

	var cnt int
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &cnt, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting subjects")
	}
	return cnt, nil
}

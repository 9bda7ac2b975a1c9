package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/student"
)

type studentRepository struct {
	exec core.DBExecutor
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(exec core.DBExecutor) *studentRepository {
	return &studentRepository{exec: exec}
}

type studentRow struct {
	ID           string         `db:"id"`
	UserID       string         `db:"user_id"`
	RollNumber   string         `db:"roll_number"`
	DepartmentID sql.NullString `db:"department_id"`
	Semester     int            `db:"semester"`
	CGPA         float64        `db:"cgpa"`
	CreatedAt    sql.NullTime   `db:"created_at"`
	UpdatedAt    sql.NullTime   `db:"updated_at"`
}

func (r studentRow) domain() student.Student {
	return student.Student{
		ID:           r.ID,
		UserID:       r.UserID,
		RollNumber:   r.RollNumber,
		DepartmentID: r.DepartmentID.String,
		Semester:     r.Semester,
		CGPA:         r.CGPA,
		CreatedAt:    r.CreatedAt.Time,
		UpdatedAt:    r.UpdatedAt.Time,
	}
}

func (repo studentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return student.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo studentRepository) CheckRollNumberUniqueness(ctx context.Context, rollNumber string, excludedStds []student.Student, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM student_profile WHERE roll_number = $1`
	args := []interface{}{rollNumber}
	if len(excludedStds) > 0 {
		ids := make([]string, 0, len(excludedStds))
		for _, s := range excludedStds {
			ids = append(ids, s.ID)
		}
		q += ` AND NOT (id = ANY($2))`
		args = append(args, pqStrArray(ids))
	}
	q += `)`

	var exists bool
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking roll number uniqueness")
	}
	if exists {
		return student.ErrRollNumberExists
	}
	return nil
}

func (repo studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	std.ID = uuid.New().String()
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO student_profile (id, user_id, roll_number, department_id, semester, cgpa, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, '')::uuid, $5, $6, $7, $8)`,
		std.ID, std.UserID, std.RollNumber, std.DepartmentID, std.Semester, std.CGPA, std.CreatedAt, std.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrProfileExists
		}
		return student.Student{}, errors.Wrap(err, "inserting student profile")
	}
	return std, nil
}

func (repo studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
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
	}

	var rows []studentRow
	q := `SELECT * FROM student_profile` + whereClause(conds) + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	stds := make([]student.Student, 0, len(rows))
	for _, r := range rows {
		stds = append(stds, r.domain())
	}
	return stds, nil
}

func (repo studentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	var row studentRow
	exe := getExec(repo.exec, exec)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return student.Student{}, student.ErrNotFound
		}
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM student_profile WHERE id = $1`, filter.ID); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by ID")
		}
	case filter.UserID != "":
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM student_profile WHERE user_id = $1`, filter.UserID); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by user")
		}
	case filter.RollNumber != "":
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM student_profile WHERE roll_number = $1`, filter.RollNumber); err != nil {
			return student.Student{}, repo.trapNoRowsErr(err, "finding student by roll number")
		}
	default:
		return student.Student{}, student.ErrNotFound
	}
	return row.domain(), nil
}

func (repo studentRepository) UpdateStudent(ctx context.Context, std student.Student, cgpa *float64, exec ...core.DBExecutor) (student.Student, error) {
	q := `UPDATE student_profile SET
	        roll_number = COALESCE(NULLIF($2, ''), roll_number),
	        department_id = COALESCE(NULLIF($3, '')::uuid, department_id),
	        semester = CASE WHEN $4 > 0 THEN $4 ELSE semester END,
	        cgpa = COALESCE($5, cgpa),
	        updated_at = $6
	      WHERE id = $1
	      RETURNING *`

	var row studentRow
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, q,
		std.ID, std.RollNumber, std.DepartmentID, std.Semester, cgpa, std.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return student.Student{}, student.ErrRollNumberExists
		}
		return student.Student{}, repo.trapNoRowsErr(err, "updating student profile")
	}
	return row.domain(), nil
}

func (repo studentRepository) DeleteStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM student_profile WHERE id = ANY($1)`, pqStrArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting students")
	}
	return int(cnt), nil
}

func (repo studentRepository) CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error) {
	q := `SELECT COUNT(*) FROM student_profile`
	var args []interface{}
	if departmentID != "" {
		q += ` WHERE department_id = $1`
		args = append(args, departmentID)
	}

	var cnt int
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &cnt, q, args...); err != nil {
		return 0, errors.Wrap(err, "counting students")
	}
	return cnt, nil
}

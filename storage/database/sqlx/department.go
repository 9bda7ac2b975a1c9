package sqlxrepos

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/department"
)

type departmentRepository struct {
	exec core.DBExecutor
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(exec core.DBExecutor) *departmentRepository {
	return &departmentRepository{exec: exec}
}

type departmentRow struct {
	ID        string         `db:"id"`
	Name      string         `db:"name"`
	Code      string         `db:"code"`
	HODUserID sql.NullString `db:"hod_user_id"`
	CreatedAt sql.NullTime   `db:"created_at"`
	UpdatedAt sql.NullTime   `db:"updated_at"`
}

func (r departmentRow) domain() department.Department {
	return department.Department{
		ID:        r.ID,
		Name:      r.Name,
		Code:      r.Code,
		HODUserID: r.HODUserID.String,
		CreatedAt: r.CreatedAt.Time,
		UpdatedAt: r.UpdatedAt.Time,
	}
}

func (repo departmentRepository) trapNoRowsErr(err error, msg string) error {
	if err == sql.ErrNoRows {
		return department.ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func (repo departmentRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedDepts []department.Department, exec ...core.DBExecutor) error {
	q := `SELECT EXISTS (SELECT 1 FROM department WHERE code = $1`
	args := []interface{}{code}
	if len(excludedDepts) > 0 {
		ids := make([]string, 0, len(excludedDepts))
		for _, d := range excludedDepts {
			ids = append(ids, d.ID)
		}
		q += ` AND NOT (id = ANY($2))`
		args = append(args, pqStrArray(ids))
	}
	q += `)`

	var exists bool
	if err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &exists, q, args...); err != nil {
		return errors.Wrap(err, "checking department code uniqueness")
	}
	if exists {
		return department.ErrCodeExists
	}
	return nil
}

func (repo departmentRepository) CreateDepartment(ctx context.Context, dept department.Department, exec ...core.DBExecutor) (department.Department, error) {
	dept.ID = uuid.New().String()
	_, err := getExec(repo.exec, exec).ExecContext(ctx,
		`INSERT INTO department (id, name, code, hod_user_id, created_at, updated_at)
		 VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6)`,
		dept.ID, dept.Name, dept.Code, dept.HODUserID, dept.CreatedAt, dept.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return department.Department{}, department.ErrCodeExists
		}
		return department.Department{}, errors.Wrap(err, "inserting department")
	}
	return dept, nil
}

func (repo departmentRepository) QueryDepartments(ctx context.Context, filter *department.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]department.Department, error) {
	var conds []string
	var args []interface{}
	if filter != nil && filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, "(name ILIKE $1 OR code ILIKE $1)")
	}

	var rows []departmentRow
	q := `SELECT * FROM department` + whereClause(conds) + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying departments")
	}
	depts := make([]department.Department, 0, len(rows))
	for _, r := range rows {
		depts = append(depts, r.domain())
	}
	return depts, nil
}

func (repo departmentRepository) GetDepartment(ctx context.Context, filter department.GetFilter, exec ...core.DBExecutor) (department.Department, error) {
	var row departmentRow
	exe := getExec(repo.exec, exec)

	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return department.Department{}, department.ErrNotFound
		}
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM department WHERE id = $1`, filter.ID); err != nil {
			return department.Department{}, repo.trapNoRowsErr(err, "finding department by ID")
		}
	case filter.Code != "":
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM department WHERE code = $1`, filter.Code); err != nil {
			return department.Department{}, repo.trapNoRowsErr(err, "finding department by code")
		}
	case filter.HODUserID != "":
		if err := sqlx.GetContext(ctx, exe, &row, `SELECT * FROM department WHERE hod_user_id = $1`, filter.HODUserID); err != nil {
			return department.Department{}, repo.trapNoRowsErr(err, "finding department by HOD")
		}
	default:
		return department.Department{}, department.ErrNotFound
	}
	return row.domain(), nil
}

func (repo departmentRepository) UpdateDepartment(ctx context.Context, dept department.Department, exec ...core.DBExecutor) (department.Department, error) {
	q := `UPDATE department SET
	        name = COALESCE(NULLIF($2, ''), name),
	        code = COALESCE(NULLIF($3, ''), code),
	        hod_user_id = COALESCE(NULLIF($4, ''), hod_user_id),
	        updated_at = $5
	      WHERE id = $1
	      RETURNING *`

	var row departmentRow
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &row, q,
		dept.ID, dept.Name, dept.Code, dept.HODUserID, dept.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return department.Department{}, department.ErrCodeExists
		}
		return department.Department{}, repo.trapNoRowsErr(err, "updating department")
	}
	return row.domain(), nil
}

func (repo departmentRepository) DeleteDepartmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	res, err := getExec(repo.exec, exec).ExecContext(ctx, `DELETE FROM department WHERE id = ANY($1)`, pqStrArray(ids))
	if err != nil {
		return 0, errors.Wrap(err, "deleting departments")
	}
	cnt, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "deleting departments")
	}
	return int(cnt), nil
}

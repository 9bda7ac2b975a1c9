package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/attendance"
)

type attendanceRepository struct {
	exec core.DBExecutor
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(exec core.DBExecutor) *attendanceRepository {
	return &attendanceRepository{exec: exec}
}

type attendanceRow struct {
	ID         string         `db:"id"`
	StudentID  string         `db:"student_id"`
	SubjectID  string         `db:"subject_id"`
	Date       time.Time      `db:"date"`
	Status     string         `db:"status"`
	MarkedByID sql.NullString `db:"marked_by_id"`
	CreatedAt  sql.NullTime   `db:"created_at"`
}

func (r attendanceRow) domain() attendance.Record {
	return attendance.Record{
		ID:         r.ID,
		StudentID:  r.StudentID,
		SubjectID:  r.SubjectID,
		Date:       r.Date.UTC(),
		Status:     r.Status,
		MarkedByID: r.MarkedByID.String,
		CreatedAt:  r.CreatedAt.Time,
	}
}

func (repo attendanceRepository) CreateRecords(ctx context.Context, recs []attendance.Record, exec ...core.DBExecutor) ([]attendance.Record, error) {
	exe := getExec(repo.exec, exec)
	created := make([]attendance.Record, 0, len(recs))
	for _, rec := range recs {
		rec.ID = uuid.New().String()
		_, err := exe.ExecContext(ctx,
			`INSERT INTO attendance_record (id, student_id, subject_id, date, status, marked_by_id, created_at)
			 VALUES ($1, $2, $3, $4, $5, NULLIF($6, '')::uuid, $7)`,
			rec.ID, rec.StudentID, rec.SubjectID, rec.Date, rec.Status, rec.MarkedByID, rec.CreatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "inserting attendance record")
		}
		created = append(created, rec)
	}
	return created, nil
}

func (repo attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]attendance.Record, error) {
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
		if !filter.DateFrom.IsZero() {
			args = append(args, filter.DateFrom)
			conds = append(conds, fmt.Sprintf("date >= $%d", len(args)))
		}
		if !filter.DateTo.IsZero() {
			args = append(args, filter.DateTo)
			conds = append(conds, fmt.Sprintf("date <= $%d", len(args)))
		}
	}
	if len(ordering) == 0 {
		ordering = []core.DBOrdering{{Field: "date", Ascending: true}}
	}

	var rows []attendanceRow
	q := `SELECT * FROM attendance_record` + whereClause(conds) + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying attendance records")
	}
	recs := make([]attendance.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.domain())
	}
	return recs, nil
}

func (repo attendanceRepository) ExistsForSession(ctx context.Context, subjectID string, date time.Time, exec ...core.DBExecutor) (bool, error) {
	var exists bool
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &exists,
		`SELECT EXISTS (SELECT 1 FROM attendance_record WHERE subject_id = $1 AND date = $2)`,
		subjectID, date)
	if err != nil {
		return false, errors.Wrap(err, "checking attendance session")
	}
	return exists, nil
}

func (repo attendanceRepository) SummarizeByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (attendance.Summary, error) {
	var sum attendance.Summary
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &sum,
		`SELECT COUNT(*) AS total,
		        COUNT(*) FILTER (WHERE status = 'present') AS present
		 FROM attendance_record WHERE student_id = $1`, studentID)
	if err != nil {
		return attendance.Summary{}, errors.Wrap(err, "summarizing attendance")
	}
	return sum, nil
}

func (repo attendanceRepository) SummarizeByStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) (map[string]attendance.Summary, error) {
	q := `SELECT student_id,
	             COUNT(*) AS total,
	             COUNT(*) FILTER (WHERE status = 'present') AS present
	      FROM attendance_record`
	var args []interface{}
	if studentIDs != nil {
		q += ` WHERE student_id = ANY($1)`
		args = append(args, pqStrArray(studentIDs))
	}
	q += ` GROUP BY student_id`

	var rows []struct {
		StudentID string `db:"student_id"`
		Total     int    `db:"total"`
		Present   int    `db:"present"`
	}
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "summarizing attendance per student")
	}

	sums := make(map[string]attendance.Summary, len(rows))
	for _, r := range rows {
		sums[r.StudentID] = attendance.Summary{Total: r.Total, Present: r.Present}
	}
	return sums, nil
}

package sqlxrepos

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/marks"
)

type marksRepository struct {
	exec core.DBExecutor
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(exec core.DBExecutor) *marksRepository {
	return &marksRepository{exec: exec}
}

type marksRow struct {
	ID            string         `db:"id"`
	StudentID     string         `db:"student_id"`
	SubjectID     string         `db:"subject_id"`
	ExamType      string         `db:"exam_type"`
	MarksObtained float64        `db:"marks_obtained"`
	TotalMarks    float64        `db:"total_marks"`
	EnteredByID   sql.NullString `db:"entered_by_id"`
	CreatedAt     sql.NullTime   `db:"created_at"`
	UpdatedAt     sql.NullTime   `db:"updated_at"`
}

func (r marksRow) domain() marks.Record {
	return marks.Record{
		ID:            r.ID,
		StudentID:     r.StudentID,
		SubjectID:     r.SubjectID,
		ExamType:      r.ExamType,
		MarksObtained: r.MarksObtained,
		TotalMarks:    r.TotalMarks,
		EnteredByID:   r.EnteredByID.String,
		CreatedAt:     r.CreatedAt.Time,
		UpdatedAt:     r.UpdatedAt.Time,
	}
}

func (repo marksRepository) UpsertRecords(ctx context.Context, recs []marks.Record, exec ...core.DBExecutor) ([]marks.Record, error) {
	exe := getExec(repo.exec, exec)
	saved := make([]marks.Record, 0, len(recs))
	for _, rec := range recs {
		rec.ID = uuid.New().String()
		var row marksRow
		err := sqlx.GetContext(ctx, exe, &row,
			`INSERT INTO marks_record (id, student_id, subject_id, exam_type, marks_obtained, total_marks, entered_by_id, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, '')::uuid, $8, $9)
			 ON CONFLICT (student_id, subject_id, exam_type) DO UPDATE SET
			   marks_obtained = EXCLUDED.marks_obtained,
			   total_marks = EXCLUDED.total_marks,
			   entered_by_id = EXCLUDED.entered_by_id,
			   updated_at = EXCLUDED.updated_at
			 RETURNING *`,
			rec.ID, rec.StudentID, rec.SubjectID, rec.ExamType, rec.MarksObtained, rec.TotalMarks,
			rec.EnteredByID, rec.CreatedAt, rec.UpdatedAt)
		if err != nil {
			return nil, errors.Wrap(err, "upserting marks record")
		}
		saved = append(saved, row.domain())
	}
	return saved, nil
}

func (repo marksRepository) QueryRecords(ctx context.Context, filter *marks.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]marks.Record, error) {
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
		if filter.ExamType != "" {
			args = append(args, filter.ExamType)
			conds = append(conds, fmt.Sprintf("exam_type = $%d", len(args)))
		}
	}

	var rows []marksRow
	q := `SELECT * FROM marks_record` + whereClause(conds) + orderClause(ordering)
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "querying marks records")
	}
	recs := make([]marks.Record, 0, len(rows))
	for _, r := range rows {
		recs = append(recs, r.domain())
	}
	return recs, nil
}

func (repo marksRepository) AverageByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (marks.Average, error) {
	var avg marks.Average
	err := sqlx.GetContext(ctx, getExec(repo.exec, exec), &avg,
		`SELECT COALESCE(AVG(CASE WHEN total_marks > 0 THEN marks_obtained / total_marks * 100 ELSE 0 END), 0) AS avgpercent,
		        COUNT(*) AS count
		 FROM marks_record WHERE student_id = $1`, studentID)
	if err != nil {
		return marks.Average{}, errors.Wrap(err, "averaging marks")
	}
	return avg, nil
}

func (repo marksRepository) AverageByStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) (map[string]marks.Average, error) {
	q := `SELECT student_id,
	             AVG(CASE WHEN total_marks > 0 THEN marks_obtained / total_marks * 100 ELSE 0 END) AS avg_percent,
	             COUNT(*) AS count
	      FROM marks_record`
	var args []interface{}
	if studentIDs != nil {
		q += ` WHERE student_id = ANY($1)`
		args = append(args, pqStrArray(studentIDs))
	}
	q += ` GROUP BY student_id`

	var rows []struct {
		StudentID  string  `db:"student_id"`
		AvgPercent float64 `db:"avg_percent"`
		Count      int     `db:"count"`
	}
	if err := sqlx.SelectContext(ctx, getExec(repo.exec, exec), &rows, q, args...); err != nil {
		return nil, errors.Wrap(err, "averaging marks per student")
	}

	avgs := make(map[string]marks.Average, len(rows))
	for _, r := range rows {
		avgs[r.StudentID] = marks.Average{AvgPercent: r.AvgPercent, Count: r.Count}
	}
	return avgs, nil
}

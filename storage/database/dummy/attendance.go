package dummydb

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/attendance"
)

type attendanceRepository struct {
	db *DB
}

var _ attendance.Repository = (*attendanceRepository)(nil) // interface compliance check

func NewAttendanceRepository(db *DB) attendance.Repository {
	return &attendanceRepository{db: db}
}

func (repo *attendanceRepository) query() []attendance.Record {
	recs := make([]attendance.Record, 0, len(repo.db.attendance))
	for _, r := range repo.db.attendance {
		recs = append(recs, *r)
	}
	return recs
}

func (repo *attendanceRepository) CreateRecords(ctx context.Context, recs []attendance.Record, exec ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	created := make([]attendance.Record, 0, len(recs))
	for _, rec := range recs {
		rec.ID = uuid.New().String()
		r := rec // copy, the loop variable is reused across iterations
		repo.db.attendance[r.ID] = &r
		created = append(created, r)
	}
	return created, nil
}

func (repo *attendanceRepository) QueryRecords(ctx context.Context, filter *attendance.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]attendance.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := repo.query()
	if filter != nil && !filter.IsEmpty() {
		var filtered []attendance.Record
		for _, r := range recs {
			if filter.StudentID != "" && r.StudentID != filter.StudentID {
				continue
			}
			if filter.SubjectID != "" && r.SubjectID != filter.SubjectID {
				continue
			}
			if !filter.DateFrom.IsZero() && r.Date.Before(filter.DateFrom) {
				continue
			}
			if !filter.DateTo.IsZero() && r.Date.After(filter.DateTo) {
				continue
			}
			filtered = append(filtered, r)
		}
		recs = filtered
	}

	sort.SliceStable(recs, func(i, j int) bool { return recs[i].Date.Before(recs[j].Date) })
	return recs, nil
}

func (repo *attendanceRepository) ExistsForSession(ctx context.Context, subjectID string, date time.Time, exec ...core.DBExecutor) (bool, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	for _, rec := range repo.db.attendance {
		if rec.SubjectID == subjectID && rec.Date.Equal(date) {
			return true, nil
		}
	}
	return false, nil
}

func (repo *attendanceRepository) SummarizeByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (attendance.Summary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var sum attendance.Summary
	for _, rec := range repo.db.attendance {
		if rec.StudentID != studentID {
			continue
		}
		sum.Total++
		if rec.IsPresent() {
			sum.Present++
		}
	}
	return sum, nil
}

func (repo *attendanceRepository) SummarizeByStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) (map[string]attendance.Summary, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var wanted map[string]bool
	if studentIDs != nil {
		wanted = make(map[string]bool, len(studentIDs))
		for _, id := range studentIDs {
			wanted[id] = true
		}
	}

	sums := make(map[string]attendance.Summary)
	for _, rec := range repo.db.attendance {
		if wanted != nil && !wanted[rec.StudentID] {
			continue
		}
		sum := sums[rec.StudentID]
		sum.Total++
		if rec.IsPresent() {
			sum.Present++
		}
		sums[rec.StudentID] = sum
	}
	return sums, nil
}

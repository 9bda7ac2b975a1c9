package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/marks"
)

type marksRepository struct {
	db *DB
}

var _ marks.Repository = (*marksRepository)(nil) // interface compliance check

func NewMarksRepository(db *DB) marks.Repository {
	return &marksRepository{db: db}
}

func (repo *marksRepository) query() []marks.Record {
	recs := make([]marks.Record, 0, len(repo.db.marks))
	for _, r := range repo.db.marks {
		recs = append(recs, *r)
	}
	return recs
}

func (repo *marksRepository) UpsertRecords(ctx context.Context, recs []marks.Record, exec ...core.DBExecutor) ([]marks.Record, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	saved := make([]marks.Record, 0, len(recs))
	for _, rec := range recs {
		var replaced bool
		for _, existing := range repo.db.marks {
			if existing.StudentID == rec.StudentID &&
				existing.SubjectID == rec.SubjectID &&
				existing.ExamType == rec.ExamType {
				existing.MarksObtained = rec.MarksObtained
				existing.TotalMarks = rec.TotalMarks
				existing.EnteredByID = rec.EnteredByID
				existing.UpdatedAt = rec.UpdatedAt
				saved = append(saved, *existing)
				replaced = true
				break
			}
		}
		if !replaced {
			rec.ID = uuid.New().String()
			r := rec // copy, the loop variable is reused across iterations
			repo.db.marks[r.ID] = &r
			saved = append(saved, r)
		}
	}
	return saved, nil
}

func (repo *marksRepository) QueryRecords(ctx context.Context, filter *marks.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]marks.Record, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	recs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return recs, nil
	}

	var filtered []marks.Record
	for _, r := range recs {
		if filter.StudentID != "" && r.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && r.SubjectID != filter.SubjectID {
			continue
		}
		if filter.ExamType != "" && r.ExamType != filter.ExamType {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

func (repo *marksRepository) AverageByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (marks.Average, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var avg marks.Average
	var totalPercent float64
	for _, rec := range repo.db.marks {
		if rec.StudentID != studentID {
			continue
		}
		totalPercent += rec.Percent()
		avg.Count++
	}
	if avg.Count > 0 {
		avg.AvgPercent = totalPercent / float64(avg.Count)
	}
	return avg, nil
}

func (repo *marksRepository) AverageByStudents(ctx context.Context, studentIDs []string, exec ...core.DBExecutor) (map[string]marks.Average, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var wanted map[string]bool
	if studentIDs != nil {
		wanted = make(map[string]bool, len(studentIDs))
		for _, id := range studentIDs {
			wanted[id] = true
		}
	}

	totals := make(map[string]float64)
	counts := make(map[string]int)
	for _, rec := range repo.db.marks {
		if wanted != nil && !wanted[rec.StudentID] {
			continue
		}
		totals[rec.StudentID] += rec.Percent()
		counts[rec.StudentID]++
	}

	avgs := make(map[string]marks.Average, len(counts))
	for id, cnt := range counts {
		avgs[id] = marks.Average{AvgPercent: totals[id] / float64(cnt), Count: cnt}
	}
	return avgs, nil
}

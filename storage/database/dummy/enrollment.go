package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/enrollment"
)

type enrollmentRepository struct {
	db *DB
}

var _ enrollment.Repository = (*enrollmentRepository)(nil) // interface compliance check

func NewEnrollmentRepository(db *DB) enrollment.Repository {
	return &enrollmentRepository{db: db}
}

func (repo *enrollmentRepository) query() []enrollment.Enrollment {
	enrs := make([]enrollment.Enrollment, 0, len(repo.db.enrollments))
	for _, e := range repo.db.enrollments {
		enrs = append(enrs, *e)
	}
	return enrs
}

func (repo *enrollmentRepository) QueryEnrollments(ctx context.Context, filter *enrollment.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	enrs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return enrs, nil
	}

	var filtered []enrollment.Enrollment
	for _, e := range enrs {
		if filter.StudentID != "" && e.StudentID != filter.StudentID {
			continue
		}
		if filter.SubjectID != "" && e.SubjectID != filter.SubjectID {
			continue
		}
		if filter.AcademicYear != "" && e.AcademicYear != filter.AcademicYear {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		filtered = append(filtered, e)
	}
	return filtered, nil
}

func (repo *enrollmentRepository) InsertEnrollments(ctx context.Context, enrs []enrollment.Enrollment, exec ...core.DBExecutor) ([]enrollment.Enrollment, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if err := repo.db.EnrollmentInsertErr; err != nil {
		return nil, err
	}

	created := make([]enrollment.Enrollment, 0, len(enrs))
	for _, enr := range enrs {
		for _, existing := range repo.db.enrollments {
			if existing.StudentID == enr.StudentID &&
				existing.SubjectID == enr.SubjectID &&
				existing.AcademicYear == enr.AcademicYear {
				return nil, enrollment.ErrAlreadyEnrolled
			}
		}
		enr.ID = uuid.New().String()
		e := enr // copy, the loop variable is reused across iterations
		repo.db.enrollments[e.ID] = &e
		created = append(created, e)
	}
	return created, nil
}

func (repo *enrollmentRepository) DeleteByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for id, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			delete(repo.db.enrollments, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *enrollmentRepository) CountBySubject(ctx context.Context, subjectID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var cnt int
	for _, enr := range repo.db.enrollments {
		if enr.SubjectID == subjectID {
			cnt++
		}
	}
	return cnt, nil
}

func (repo *enrollmentRepository) CountByStudent(ctx context.Context, studentID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	var cnt int
	for _, enr := range repo.db.enrollments {
		if enr.StudentID == studentID {
			cnt++
		}
	}
	return cnt, nil
}

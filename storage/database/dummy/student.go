package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/student"
)

type studentRepository struct {
	db *DB
}

var _ student.Repository = (*studentRepository)(nil) // interface compliance check

func NewStudentRepository(db *DB) student.Repository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) query() []student.Student {
	stds := make([]student.Student, 0, len(repo.db.students))
	for _, s := range repo.db.students {
		stds = append(stds, *s)
	}
	return stds
}

func (repo *studentRepository) CheckRollNumberUniqueness(ctx context.Context, rollNumber string, excludedStds []student.Student, exec ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedStds))
	for _, s := range excludedStds {
		excluded[s.ID] = true
	}
	for _, std := range repo.query() {
		if std.RollNumber == rollNumber && !excluded[std.ID] {
			return student.ErrRollNumberExists
		}
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, s := range repo.db.students {
		if s.UserID == std.UserID {
			return student.Student{}, student.ErrProfileExists
		}
	}
	std.ID = uuid.New().String()
	repo.db.students[std.ID] = &std
	return std, nil
}

func (repo *studentRepository) QueryStudents(ctx context.Context, filter *student.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	stds := repo.query()
	if filter == nil || filter.IsEmpty() {
		return stds, nil
	}

	var filtered []student.Student
	for _, s := range stds {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Semester != 0 && s.Semester != filter.Semester {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

func (repo *studentRepository) GetStudent(ctx context.Context, filter student.GetFilter, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if std, ok := repo.db.students[filter.ID]; ok {
			return *std, nil
		}
		return student.Student{}, student.ErrNotFound
	}
	for _, std := range repo.query() {
		if filter.UserID != "" && std.UserID == filter.UserID {
			return std, nil
		}
		if filter.RollNumber != "" && std.RollNumber == filter.RollNumber {
			return std, nil
		}
	}
	return student.Student{}, student.ErrNotFound
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student, cgpa *float64, exec ...core.DBExecutor) (student.Student, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origStd, ok := repo.db.students[std.ID]
	if !ok {
		return student.Student{}, student.ErrNotFound
	}
	if std.RollNumber != "" {
		origStd.RollNumber = std.RollNumber
	}
	if std.DepartmentID != "" {
		origStd.DepartmentID = std.DepartmentID
	}
	if std.Semester != 0 {
		origStd.Semester = std.Semester
	}
	if cgpa != nil {
		origStd.CGPA = *cgpa
	}
	if !std.UpdatedAt.IsZero() {
		origStd.UpdatedAt = std.UpdatedAt
	}
	return *origStd, nil
}

func (repo *studentRepository) DeleteStudentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.students[id]; ok {
			delete(repo.db.students, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *studentRepository) CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if departmentID == "" {
		return len(repo.db.students), nil
	}
	var cnt int
	for _, std := range repo.db.students {
		if std.DepartmentID == departmentID {
			cnt++
		}
	}
	return cnt, nil
}

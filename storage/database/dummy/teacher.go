package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/teacher"
)

type teacherRepository struct {
	db *DB
}

var _ teacher.Repository = (*teacherRepository)(nil) // interface compliance check

func NewTeacherRepository(db *DB) teacher.Repository {
	return &teacherRepository{db: db}
}

func (repo *teacherRepository) query() []teacher.Teacher {
	tchrs := make([]teacher.Teacher, 0, len(repo.db.teachers))
	for _, t := range repo.db.teachers {
		tchrs = append(tchrs, *t)
	}
	return tchrs
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tchr teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	for _, t := range repo.db.teachers {
		if t.UserID == tchr.UserID {
			return teacher.Teacher{}, teacher.ErrProfileExists
		}
	}
	tchr.ID = uuid.New().String()
	repo.db.teachers[tchr.ID] = &tchr
	return tchr, nil
}

func (repo *teacherRepository) QueryTeachers(ctx context.Context, filter *teacher.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	tchrs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return tchrs, nil
	}

	var filtered []teacher.Teacher
	for _, t := range tchrs {
		if filter.DepartmentID != "" && t.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.SubjectID != "" && !containsString(t.SubjectsHandled, filter.SubjectID) {
			continue
		}
		filtered = append(filtered, t)
	}
	return filtered, nil
}

func (repo *teacherRepository) GetTeacher(ctx context.Context, filter teacher.GetFilter, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if tchr, ok := repo.db.teachers[filter.ID]; ok {
			return *tchr, nil
		}
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	for _, tchr := range repo.query() {
		if tchr.UserID == filter.UserID {
			return tchr, nil
		}
	}
	return teacher.Teacher{}, teacher.ErrNotFound
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tchr teacher.Teacher, exec ...core.DBExecutor) (teacher.Teacher, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origTchr, ok := repo.db.teachers[tchr.ID]
	if !ok {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	if tchr.DepartmentID != "" {
		origTchr.DepartmentID = tchr.DepartmentID
	}
	if tchr.Designation != "" {
		origTchr.Designation = tchr.Designation
	}
	if !tchr.UpdatedAt.IsZero() {
		origTchr.UpdatedAt = tchr.UpdatedAt
	}
	return *origTchr, nil
}

func (repo *teacherRepository) DeleteTeachersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.teachers[id]; ok {
			delete(repo.db.teachers, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *teacherRepository) AddHandledSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tchr, ok := repo.db.teachers[teacherID]
	if !ok {
		return teacher.ErrNotFound
	}
	if !containsString(tchr.SubjectsHandled, subjectID) {
		tchr.SubjectsHandled = append(tchr.SubjectsHandled, subjectID)
	}
	return nil
}

func (repo *teacherRepository) RemoveHandledSubject(ctx context.Context, teacherID, subjectID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	tchr, ok := repo.db.teachers[teacherID]
	if !ok {
		return teacher.ErrNotFound
	}
	for i, id := range tchr.SubjectsHandled {
		if id == subjectID {
			tchr.SubjectsHandled = append(tchr.SubjectsHandled[:i], tchr.SubjectsHandled[i+1:]...)
			break
		}
	}
	return nil
}

func (repo *teacherRepository) CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if departmentID == "" {
		return len(repo.db.teachers), nil
	}
	var cnt int
	for _, tchr := range repo.db.teachers {
		if tchr.DepartmentID == departmentID {
			cnt++
		}
	}
	return cnt, nil
}

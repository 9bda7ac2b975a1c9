package dummydb

import (
	"context"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/subject"
)

type subjectRepository struct {
	db *DB
}

var _ subject.Repository = (*subjectRepository)(nil) // interface compliance check

func NewSubjectRepository(db *DB) subject.Repository {
	return &subjectRepository{db: db}
}

func (repo *subjectRepository) query() []subject.Subject {
	subs := make([]subject.Subject, 0, len(repo.db.subjects))
	for _, s := range repo.db.subjects {
		subs = append(subs, *s)
	}
	return subs
}

func (repo *subjectRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedSubs []subject.Subject, exec ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedSubs))
	for _, s := range excludedSubs {
		excluded[s.ID] = true
	}
	for _, sub := range repo.query() {
		if sub.Code == code && !excluded[sub.ID] {
			return subject.ErrCodeExists
		}
	}
	return nil
}

func (repo *subjectRepository) CreateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sub.ID = uuid.New().String()
	repo.db.subjects[sub.ID] = &sub
	return sub, nil
}

func (repo *subjectRepository) QuerySubjects(ctx context.Context, filter *subject.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	subs := repo.query()
	if filter == nil || filter.IsEmpty() {
		return subs, nil
	}

	var filtered []subject.Subject
	for _, s := range subs {
		if filter.DepartmentID != "" && s.DepartmentID != filter.DepartmentID {
			continue
		}
		if filter.Semester != 0 && s.Semester != filter.Semester {
			continue
		}
		if filter.AssignedTeacherID != "" && s.AssignedTeacherID != filter.AssignedTeacherID {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered, nil
}

func (repo *subjectRepository) GetSubject(ctx context.Context, filter subject.GetFilter, exec ...core.DBExecutor) (subject.Subject, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if sub, ok := repo.db.subjects[filter.ID]; ok {
			return *sub, nil
		}
		return subject.Subject{}, subject.ErrNotFound
	}
	for _, sub := range repo.query() {
		if sub.Code == filter.Code {
			return sub, nil
		}
	}
	return subject.Subject{}, subject.ErrNotFound
}

func (repo *subjectRepository) UpdateSubject(ctx context.Context, sub subject.Subject, exec ...core.DBExecutor) (subject.Subject, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origSub, ok := repo.db.subjects[sub.ID]
	if !ok {
		return subject.Subject{}, subject.ErrNotFound
	}
	if sub.Name != "" {
		origSub.Name = sub.Name
	}
	if sub.Code != "" {
		origSub.Code = sub.Code
	}
	if sub.Semester != 0 {
		origSub.Semester = sub.Semester
	}
	if sub.Credits != 0 {
		origSub.Credits = sub.Credits
	}
	if !sub.UpdatedAt.IsZero() {
		origSub.UpdatedAt = sub.UpdatedAt
	}
	return *origSub, nil
}

func (repo *subjectRepository) SetAssignedTeacher(ctx context.Context, subjectID, teacherID string, exec ...core.DBExecutor) error {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	sub, ok := repo.db.subjects[subjectID]
	if !ok {
		return subject.ErrNotFound
	}
	sub.AssignedTeacherID = teacherID
	return nil
}

func (repo *subjectRepository) DeleteSubjectsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.subjects[id]; ok {
			delete(repo.db.subjects, id)
			cnt++
		}
	}
	return cnt, nil
}

func (repo *subjectRepository) CountByDepartment(ctx context.Context, departmentID string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if departmentID == "" {
		return len(repo.db.subjects), nil
	}
	var cnt int
	for _, sub := range repo.db.subjects {
		if sub.DepartmentID == departmentID {
			cnt++
		}
	}
	return cnt, nil
}

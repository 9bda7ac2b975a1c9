package dummydb

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/department"
)

type departmentRepository struct {
	db *DB
}

var _ department.Repository = (*departmentRepository)(nil) // interface compliance check

func NewDepartmentRepository(db *DB) department.Repository {
	return &departmentRepository{db: db}
}

func (repo *departmentRepository) query() []department.Department {
	depts := make([]department.Department, 0, len(repo.db.departments))
	for _, d := range repo.db.departments {
		depts = append(depts, *d)
	}
	return depts
}

func (repo *departmentRepository) CheckCodeUniqueness(ctx context.Context, code string, excludedDepts []department.Department, exec ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedDepts))
	for _, d := range excludedDepts {
		excluded[d.ID] = true
	}
	for _, dept := range repo.query() {
		if dept.Code == code && !excluded[dept.ID] {
			return department.ErrCodeExists
		}
	}
	return nil
}

func (repo *departmentRepository) CreateDepartment(ctx context.Context, dept department.Department, exec ...core.DBExecutor) (department.Department, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	dept.ID = uuid.New().String()
	repo.db.departments[dept.ID] = &dept
	return dept, nil
}

func (repo *departmentRepository) QueryDepartments(ctx context.Context, filter *department.QueryFilter, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]department.Department, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	depts := repo.query()
	if filter == nil || filter.IsEmpty() {
		return depts, nil
	}

	var filtered []department.Department
	for _, d := range depts {
		if strings.Contains(strings.ToLower(d.Name), strings.ToLower(filter.Search)) ||
			strings.Contains(strings.ToLower(d.Code), strings.ToLower(filter.Search)) {
			filtered = append(filtered, d)
		}
	}
	return filtered, nil
}

func (repo *departmentRepository) GetDepartment(ctx context.Context, filter department.GetFilter, exec ...core.DBExecutor) (department.Department, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if dept, ok := repo.db.departments[filter.ID]; ok {
			return *dept, nil
		}
		return department.Department{}, department.ErrNotFound
	}
	for _, dept := range repo.query() {
		if filter.Code != "" && dept.Code == filter.Code {
			return dept, nil
		}
		if filter.HODUserID != "" && dept.HODUserID == filter.HODUserID {
			return dept, nil
		}
	}
	return department.Department{}, department.ErrNotFound
}

func (repo *departmentRepository) UpdateDepartment(ctx context.Context, dept department.Department, exec ...core.DBExecutor) (department.Department, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	origDept, ok := repo.db.departments[dept.ID]
	if !ok {
		return department.Department{}, department.ErrNotFound
	}
	if dept.Name != "" {
		origDept.Name = dept.Name
	}
	if dept.Code != "" {
		origDept.Code = dept.Code
	}
	origDept.HODUserID = dept.HODUserID
	if !dept.UpdatedAt.IsZero() {
		origDept.UpdatedAt = dept.UpdatedAt
	}
	return *origDept, nil
}

func (repo *departmentRepository) DeleteDepartmentsByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.departments[id]; ok {
			delete(repo.db.departments, id)
			cnt++
		}
	}
	return cnt, nil
}

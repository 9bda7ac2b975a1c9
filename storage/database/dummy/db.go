package dummydb

import (
	"context"
	"database/sql"
	"sync"

	"github.com/jmoiron/sqlx"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
	"github.com/academia-hub/academia/core/user"
)

type (
	// DB is an in-memory store used in tests in place of Postgres.
	DB struct {
		noopExecutor
		mu sync.RWMutex

		users       map[string]*user.User
		departments map[string]*department.Department
		teachers    map[string]*teacher.Teacher
		subjects    map[string]*subject.Subject
		students    map[string]*student.Student
		enrollments map[string]*enrollment.Enrollment
		attendance  map[string]*attendance.Record
		marks       map[string]*marks.Record

		// failure injection hooks
		EnrollmentInsertErr error
	}

	snapshot struct {
		users       map[string]*user.User
		departments map[string]*department.Department
		teachers    map[string]*teacher.Teacher
		subjects    map[string]*subject.Subject
		students    map[string]*student.Student
		enrollments map[string]*enrollment.Enrollment
		attendance  map[string]*attendance.Record
		marks       map[string]*marks.Record
	}
)

var _ core.DB = (*DB)(nil)

func Open() (*DB, error) {
	return &DB{
		users:       make(map[string]*user.User),
		departments: make(map[string]*department.Department),
		teachers:    make(map[string]*teacher.Teacher),
		subjects:    make(map[string]*subject.Subject),
		students:    make(map[string]*student.Student),
		enrollments: make(map[string]*enrollment.Enrollment),
		attendance:  make(map[string]*attendance.Record),
		marks:       make(map[string]*marks.Record),
	}, nil
}

// RunInTx snapshots every table before running fn and restores the snapshot
// when fn fails, mimicking a rollback.
func (db *DB) RunInTx(ctx context.Context, fn func(exec core.DBExecutor) error) error {
	snap := db.take()
	if err := fn(db); err != nil {
		db.restore(snap)
		return err
	}
	return nil
}

func (db *DB) take() snapshot {
	db.mu.RLock()
	defer db.mu.RUnlock()

	snap := snapshot{
		users:       make(map[string]*user.User, len(db.users)),
		departments: make(map[string]*department.Department, len(db.departments)),
		teachers:    make(map[string]*teacher.Teacher, len(db.teachers)),
		subjects:    make(map[string]*subject.Subject, len(db.subjects)),
		students:    make(map[string]*student.Student, len(db.students)),
		enrollments: make(map[string]*enrollment.Enrollment, len(db.enrollments)),
		attendance:  make(map[string]*attendance.Record, len(db.attendance)),
		marks:       make(map[string]*marks.Record, len(db.marks)),
	}
	for id, v := range db.users {
		u := *v
		snap.users[id] = &u
	}
	for id, v := range db.departments {
		d := *v
		snap.departments[id] = &d
	}
	for id, v := range db.teachers {
		t := *v
		t.SubjectsHandled = append([]string(nil), v.SubjectsHandled...)
		snap.teachers[id] = &t
	}
	for id, v := range db.subjects {
		s := *v
		snap.subjects[id] = &s
	}
	for id, v := range db.students {
		s := *v
		snap.students[id] = &s
	}
	for id, v := range db.enrollments {
		e := *v
		snap.enrollments[id] = &e
	}
	for id, v := range db.attendance {
		r := *v
		snap.attendance[id] = &r
	}
	for id, v := range db.marks {
		r := *v
		snap.marks[id] = &r
	}
	return snap
}

func (db *DB) restore(snap snapshot) {
	db.mu.Lock()
	defer db.mu.Unlock()

	db.users = snap.users
	db.departments = snap.departments
	db.teachers = snap.teachers
	db.subjects = snap.subjects
	db.students = snap.students
	db.enrollments = snap.enrollments
	db.attendance = snap.attendance
	db.marks = snap.marks
}

// noopExecutor satisfies core.DBExecutor; the in-memory repositories never
// execute SQL so every method is a stub.
type noopExecutor struct{}

func (noopExecutor) DriverName() string         { return "dummy" }
func (noopExecutor) Rebind(query string) string { return query }
func (noopExecutor) BindNamed(query string, arg interface{}) (string, []interface{}, error) {
	return query, nil, nil
}
func (noopExecutor) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return nil, sql.ErrConnDone
}
func (noopExecutor) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return nil, sql.ErrConnDone
}
func (noopExecutor) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return nil
}
func (noopExecutor) ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	return nil, sql.ErrConnDone
}

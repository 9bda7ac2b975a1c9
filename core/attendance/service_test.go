package attendance_test

import (
	"context"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	dummydb "github.com/academia-hub/academia/storage/database/dummy"
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

type fixture struct {
	svc attendance.Service
	sub subject.Subject
	std student.Student
}

// newFixture seeds one department with one subject and one enrolled student.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()

	db, err := dummydb.Open()
	require.NoError(t, err)

	stdRepo := dummydb.NewStudentRepository(db)
	subRepo := dummydb.NewSubjectRepository(db)
	enrSync := enrollment.NewSynchronizer(
		&core.Config{AcademicYear: "2025-2026"},
		db,
		dummydb.NewEnrollmentRepository(db),
		stdRepo,
		subRepo,
		dummydb.NewTeacherRepository(db),
		nopLogger{},
	)

	sub, err := subRepo.CreateSubject(ctx, subject.Subject{Name: "Algorithms", Code: "CS-301", DepartmentID: "dept1", Semester: 3})
	require.NoError(t, err)
	std, err := stdRepo.CreateStudent(ctx, student.Student{UserID: "u1", RollNumber: "R1", DepartmentID: "dept1", Semester: 3})
	require.NoError(t, err)
	require.NoError(t, enrSync.EnsureSemesterEnrollments(ctx, std.ID))

	return &fixture{
		svc: attendance.NewService(db, dummydb.NewAttendanceRepository(db), enrSync),
		sub: sub,
		std: std,
	}
}

func TestRecordSession(t *testing.T) {
	ctx := context.Background()
	date := attendance.NormalizeDate(time.Now())

	t.Run("stores the session", func(t *testing.T) {
		f := newFixture(t)
		recs, err := f.svc.RecordSession(ctx, attendance.NewSession{
			SubjectID: f.sub.ID,
			Date:      date,
			Entries:   []attendance.SessionEntry{{StudentID: f.std.ID, Status: attendance.StatusPresent}},
		}, "teacher1")
		require.NoError(t, err)

		require.Len(t, recs, 1)
		assert.Equal(t, f.std.ID, recs[0].StudentID)
		assert.Equal(t, f.sub.ID, recs[0].SubjectID)
		assert.Equal(t, attendance.StatusPresent, recs[0].Status)
		assert.Equal(t, "teacher1", recs[0].MarkedByID)
		assert.True(t, recs[0].Date.Equal(date))
	})

	t.Run("rejects a resubmitted session", func(t *testing.T) {
		f := newFixture(t)
		ns := attendance.NewSession{
			SubjectID: f.sub.ID,
			Date:      date,
			Entries:   []attendance.SessionEntry{{StudentID: f.std.ID, Status: attendance.StatusAbsent}},
		}
		_, err := f.svc.RecordSession(ctx, ns, "teacher1")
		require.NoError(t, err)

		_, err = f.svc.RecordSession(ctx, ns, "teacher1")
		assert.Equal(t, attendance.ErrSessionAlreadyMarked, err)
	})

	t.Run("allows the same subject on another date", func(t *testing.T) {
		f := newFixture(t)
		ns := attendance.NewSession{
			SubjectID: f.sub.ID,
			Date:      date,
			Entries:   []attendance.SessionEntry{{StudentID: f.std.ID, Status: attendance.StatusPresent}},
		}
		_, err := f.svc.RecordSession(ctx, ns, "teacher1")
		require.NoError(t, err)

		ns.Date = date.AddDate(0, 0, 1)
		recs, err := f.svc.RecordSession(ctx, ns, "teacher1")
		require.NoError(t, err)
		assert.Len(t, recs, 1)
	})

	t.Run("rejects a student not enrolled in the subject", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RecordSession(ctx, attendance.NewSession{
			SubjectID: f.sub.ID,
			Date:      date,
			Entries: []attendance.SessionEntry{
				{StudentID: f.std.ID, Status: attendance.StatusPresent},
				{StudentID: "stranger", Status: attendance.StatusPresent},
			},
		}, "teacher1")

		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "expected a validation error, got %v", err)
		assert.Equal(t, attendance.ErrNotEnrolled, errors.Cause(vErr.Err))

		// nothing was stored
		recs, err := f.svc.Query(ctx, &attendance.QueryFilter{SubjectID: f.sub.ID})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestStudentSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	date := attendance.NormalizeDate(time.Now())

	statuses := []string{attendance.StatusPresent, attendance.StatusAbsent, attendance.StatusPresent}
	for i, status := range statuses {
		_, err := f.svc.RecordSession(ctx, attendance.NewSession{
			SubjectID: f.sub.ID,
			Date:      date.AddDate(0, 0, i),
			Entries:   []attendance.SessionEntry{{StudentID: f.std.ID, Status: status}},
		}, "teacher1")
		require.NoError(t, err)
	}

	sum, err := f.svc.StudentSummary(ctx, f.std.ID)
	require.NoError(t, err)
	assert.Equal(t, attendance.Summary{Total: 3, Present: 2}, sum)
}

func TestQueryOrdering(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	date := attendance.NormalizeDate(time.Now())

	// submit sessions out of date order
	for _, offset := range []int{2, 0, 1} {
		_, err := f.svc.RecordSession(ctx, attendance.NewSession{
			SubjectID: f.sub.ID,
			Date:      date.AddDate(0, 0, offset),
			Entries:   []attendance.SessionEntry{{StudentID: f.std.ID, Status: attendance.StatusPresent}},
		}, "teacher1")
		require.NoError(t, err)
	}

	recs, err := f.svc.Query(ctx, &attendance.QueryFilter{StudentID: f.std.ID})
	require.NoError(t, err)
	require.Len(t, recs, 3)
	for i := 1; i < len(recs); i++ {
		assert.True(t, recs[i-1].Date.Before(recs[i].Date))
	}
}

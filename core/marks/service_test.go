package marks_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
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
	svc marks.Service
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
		svc: marks.NewService(db, dummydb.NewMarksRepository(db), enrSync),
		sub: sub,
		std: std,
	}
}

func TestRecordExam(t *testing.T) {
	ctx := context.Background()

	t.Run("stores the submission", func(t *testing.T) {
		f := newFixture(t)
		recs, err := f.svc.RecordExam(ctx, marks.NewExam{
			SubjectID: f.sub.ID,
			ExamType:  marks.ExamMidterm,
			Entries:   []marks.ExamEntry{{StudentID: f.std.ID, MarksObtained: 42, TotalMarks: 50}},
		}, "teacher1")
		require.NoError(t, err)

		require.Len(t, recs, 1)
		assert.Equal(t, f.std.ID, recs[0].StudentID)
		assert.Equal(t, marks.ExamMidterm, recs[0].ExamType)
		assert.Equal(t, 84.0, recs[0].Percent())
		assert.Equal(t, "teacher1", recs[0].EnteredByID)
	})

	t.Run("resubmitting replaces the previous score", func(t *testing.T) {
		f := newFixture(t)
		ne := marks.NewExam{
			SubjectID: f.sub.ID,
			ExamType:  marks.ExamInternal,
			Entries:   []marks.ExamEntry{{StudentID: f.std.ID, MarksObtained: 10, TotalMarks: 50}},
		}
		_, err := f.svc.RecordExam(ctx, ne, "teacher1")
		require.NoError(t, err)

		ne.Entries[0].MarksObtained = 45
		_, err = f.svc.RecordExam(ctx, ne, "teacher1")
		require.NoError(t, err)

		recs, err := f.svc.Query(ctx, &marks.QueryFilter{StudentID: f.std.ID, ExamType: marks.ExamInternal})
		require.NoError(t, err)
		require.Len(t, recs, 1)
		assert.Equal(t, 45.0, recs[0].MarksObtained)
	})

	t.Run("exam types are kept apart", func(t *testing.T) {
		f := newFixture(t)
		for _, examType := range []string{marks.ExamInternal, marks.ExamMidterm, marks.ExamFinal} {
			_, err := f.svc.RecordExam(ctx, marks.NewExam{
				SubjectID: f.sub.ID,
				ExamType:  examType,
				Entries:   []marks.ExamEntry{{StudentID: f.std.ID, MarksObtained: 30, TotalMarks: 50}},
			}, "teacher1")
			require.NoError(t, err)
		}

		recs, err := f.svc.Query(ctx, &marks.QueryFilter{StudentID: f.std.ID})
		require.NoError(t, err)
		assert.Len(t, recs, 3)
	})

	t.Run("rejects a student not enrolled in the subject", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.RecordExam(ctx, marks.NewExam{
			SubjectID: f.sub.ID,
			ExamType:  marks.ExamFinal,
			Entries: []marks.ExamEntry{
				{StudentID: f.std.ID, MarksObtained: 40, TotalMarks: 50},
				{StudentID: "stranger", MarksObtained: 35, TotalMarks: 50},
			},
		}, "teacher1")

		vErr, ok := errors.Cause(err).(*core.ValidationError)
		require.True(t, ok, "expected a validation error, got %v", err)
		assert.Equal(t, marks.ErrNotEnrolled, errors.Cause(vErr.Err))

		recs, err := f.svc.Query(ctx, &marks.QueryFilter{SubjectID: f.sub.ID})
		require.NoError(t, err)
		assert.Empty(t, recs)
	})
}

func TestStudentAverage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	// 80% and 60%, weighed equally
	entries := []struct {
		examType string
		obtained float64
	}{
		{marks.ExamInternal, 40},
		{marks.ExamMidterm, 30},
	}
	for _, e := range entries {
		_, err := f.svc.RecordExam(ctx, marks.NewExam{
			SubjectID: f.sub.ID,
			ExamType:  e.examType,
			Entries:   []marks.ExamEntry{{StudentID: f.std.ID, MarksObtained: e.obtained, TotalMarks: 50}},
		}, "teacher1")
		require.NoError(t, err)
	}

	avg, err := f.svc.StudentAverage(ctx, f.std.ID)
	require.NoError(t, err)
	assert.Equal(t, marks.Average{AvgPercent: 70, Count: 2}, avg)
}

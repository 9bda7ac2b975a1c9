package analytics_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
	dummydb "github.com/academia-hub/academia/storage/database/dummy"
)

const academicYear = "2025-2026"

type fixture struct {
	svc      analytics.Service
	stdRepo  student.Repository
	tchrRepo teacher.Repository
	subRepo  subject.Repository
	attRepo  attendance.Repository
	mrkRepo  marks.Repository
	enrRepo  enrollment.Repository
	deptRepo department.Repository
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	db, err := dummydb.Open()
	require.NoError(t, err)

	f := &fixture{
		stdRepo:  dummydb.NewStudentRepository(db),
		tchrRepo: dummydb.NewTeacherRepository(db),
		subRepo:  dummydb.NewSubjectRepository(db),
		attRepo:  dummydb.NewAttendanceRepository(db),
		mrkRepo:  dummydb.NewMarksRepository(db),
		enrRepo:  dummydb.NewEnrollmentRepository(db),
		deptRepo: dummydb.NewDepartmentRepository(db),
	}
	f.svc = analytics.NewService(
		f.stdRepo, f.tchrRepo, f.subRepo, f.attRepo, f.mrkRepo, f.enrRepo,
		department.NewService(f.deptRepo),
	)
	return f
}

func (f *fixture) addStudent(t *testing.T, userID, deptID string, cgpa float64) student.Student {
	t.Helper()
	std, err := f.stdRepo.CreateStudent(context.Background(), student.Student{
		UserID:       userID,
		RollNumber:   "R-" + userID,
		DepartmentID: deptID,
		Semester:     3,
		CGPA:         cgpa,
	})
	require.NoError(t, err)
	return std
}

func (f *fixture) addSubject(t *testing.T, name, deptID string) subject.Subject {
	t.Helper()
	sub, err := f.subRepo.CreateSubject(context.Background(), subject.Subject{
		Name:         name,
		Code:         "SUB-" + name,
		DepartmentID: deptID,
		Semester:     3,
	})
	require.NoError(t, err)
	return sub
}

func (f *fixture) enroll(t *testing.T, studentID string, subjectIDs ...string) {
	t.Helper()
	enrs := make([]enrollment.Enrollment, 0, len(subjectIDs))
	for _, subID := range subjectIDs {
		enrs = append(enrs, enrollment.Enrollment{
			StudentID:    studentID,
			SubjectID:    subID,
			AcademicYear: academicYear,
			Status:       enrollment.StatusActive,
			EnrolledAt:   time.Now().UTC(),
		})
	}
	_, err := f.enrRepo.InsertEnrollments(context.Background(), enrs)
	require.NoError(t, err)
}

func (f *fixture) markAttendance(t *testing.T, studentID, subjectID string, day int, status string) {
	t.Helper()
	date := time.Date(2026, time.March, day, 0, 0, 0, 0, time.UTC)
	_, err := f.attRepo.CreateRecords(context.Background(), []attendance.Record{
		{StudentID: studentID, SubjectID: subjectID, Date: date, Status: status, MarkedByID: "t1"},
	})
	require.NoError(t, err)
}

func (f *fixture) markExam(t *testing.T, studentID, subjectID, examType string, obtained, total float64) {
	t.Helper()
	_, err := f.mrkRepo.UpsertRecords(context.Background(), []marks.Record{
		{StudentID: studentID, SubjectID: subjectID, ExamType: examType, MarksObtained: obtained, TotalMarks: total, EnteredByID: "t1"},
	})
	require.NoError(t, err)
}

func TestStudentReport(t *testing.T) {
	ctx := context.Background()

	t.Run("full report", func(t *testing.T) {
		f := newFixture(t)
		sub1 := f.addSubject(t, "Algorithms", "dept1")
		sub2 := f.addSubject(t, "Databases", "dept1")
		std := f.addStudent(t, "u1", "dept1", 8.0)
		f.enroll(t, std.ID, sub1.ID, sub2.ID)

		// 3 of 4 sessions attended, with a present-to-absent drop
		f.markAttendance(t, std.ID, sub1.ID, 1, attendance.StatusPresent)
		f.markAttendance(t, std.ID, sub1.ID, 2, attendance.StatusPresent)
		f.markAttendance(t, std.ID, sub1.ID, 3, attendance.StatusAbsent)
		f.markAttendance(t, std.ID, sub2.ID, 4, attendance.StatusPresent)

		// 80%, 60% and 90%
		f.markExam(t, std.ID, sub1.ID, marks.ExamInternal, 40, 50)
		f.markExam(t, std.ID, sub1.ID, marks.ExamMidterm, 30, 50)
		f.markExam(t, std.ID, sub2.ID, marks.ExamFinal, 45, 50)

		report, err := f.svc.StudentReport(ctx, std.ID)
		require.NoError(t, err)

		assert.Equal(t, std.ID, report.Student.ID)
		assert.Equal(t, 75, report.AttendancePercent)
		assert.Equal(t, 77, report.AverageMarksPercent)
		assert.Equal(t, 75, report.AssignmentCompletion) // 3 marks over 2 enrollments

		require.Len(t, report.AttendanceSummary, 2)
		assert.Equal(t, analytics.SubjectAttendance{
			SubjectID: sub1.ID, SubjectName: "Algorithms", Total: 3, Present: 2, Percentage: 67,
		}, report.AttendanceSummary[0])
		assert.Equal(t, analytics.SubjectAttendance{
			SubjectID: sub2.ID, SubjectName: "Databases", Total: 1, Present: 1, Percentage: 100,
		}, report.AttendanceSummary[1])

		require.Len(t, report.AttendanceHistory, 4)
		assert.Equal(t, "Sudden drop detected. Attendance normal.", report.AttendanceTrend)

		require.Len(t, report.MarksSummary, 2)
		assert.Equal(t, 70, report.MarksSummary[0].AveragePercent)
		assert.Equal(t, 90, report.MarksSummary[1].AveragePercent)

		// 75*0.3 + 77*0.4 + 75*0.2 + 80*0.1 = 76.3
		assert.Equal(t, analytics.Prediction{PredictedGrade: analytics.GradeB, PassProbability: 80}, report.Performance)
		assert.Equal(t, analytics.RiskLow, report.RiskLevel)
		assert.Equal(t, "No significant risk factors", report.RiskDetails)
		assert.Equal(t, []string{"Keep up the good work"}, report.Recommendations)
		assert.Equal(t, analytics.StudentMetrics{
			Attendance:           75,
			InternalMarks:        77,
			AssignmentCompletion: 75,
			PreviousCGPA:         8.0,
		}, report.Metrics)
	})

	t.Run("no data yields a high risk report", func(t *testing.T) {
		f := newFixture(t)
		std := f.addStudent(t, "u1", "dept1", 0)

		report, err := f.svc.StudentReport(ctx, std.ID)
		require.NoError(t, err)

		assert.Zero(t, report.AttendancePercent)
		assert.Zero(t, report.AverageMarksPercent)
		assert.Zero(t, report.AssignmentCompletion)
		assert.Equal(t, "No attendance data", report.AttendanceTrend)
		assert.Equal(t, analytics.GradeFail, report.Performance.PredictedGrade)
		assert.Equal(t, analytics.RiskHigh, report.RiskLevel)
	})

	t.Run("unknown student", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.StudentReport(ctx, "nope")
		assert.Equal(t, student.ErrNotFound, err)
	})
}

func TestAdminOverview(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sub := f.addSubject(t, "Algorithms", "dept1")
	std1 := f.addStudent(t, "u1", "dept1", 8.0)
	std2 := f.addStudent(t, "u2", "dept1", 5.0)
	_, err := f.tchrRepo.CreateTeacher(ctx, teacher.Teacher{UserID: "t1", DepartmentID: "dept1"})
	require.NoError(t, err)

	// std1: 100% attendance, 80% marks; std2: 25% attendance, 30% marks
	f.markAttendance(t, std1.ID, sub.ID, 1, attendance.StatusPresent)
	f.markAttendance(t, std2.ID, sub.ID, 1, attendance.StatusPresent)
	for day := 2; day <= 4; day++ {
		f.markAttendance(t, std2.ID, sub.ID, day, attendance.StatusAbsent)
	}
	f.markExam(t, std1.ID, sub.ID, marks.ExamInternal, 40, 50)
	f.markExam(t, std2.ID, sub.ID, marks.ExamInternal, 15, 50)

	overview, err := f.svc.AdminOverview(ctx)
	require.NoError(t, err)

	assert.Equal(t, analytics.Overview{
		TotalStudents:     2,
		TotalTeachers:     1,
		OverallAttendance: 63, // (100 + 25) / 2 rounded
		HighRiskStudents:  1,
	}, overview)
}

func TestHODOverview(t *testing.T) {
	ctx := context.Background()

	t.Run("scoped to the department", func(t *testing.T) {
		f := newFixture(t)
		dept, err := f.deptRepo.CreateDepartment(ctx, department.Department{Name: "Computer Science", Code: "CS", HODUserID: "hod1"})
		require.NoError(t, err)

		sub := f.addSubject(t, "Algorithms", dept.ID)
		std := f.addStudent(t, "u1", dept.ID, 7.0)
		f.addStudent(t, "u2", "other-dept", 7.0)
		_, err = f.tchrRepo.CreateTeacher(ctx, teacher.Teacher{UserID: "t1", DepartmentID: dept.ID})
		require.NoError(t, err)
		_, err = f.tchrRepo.CreateTeacher(ctx, teacher.Teacher{UserID: "t2", DepartmentID: "other-dept"})
		require.NoError(t, err)

		f.markAttendance(t, std.ID, sub.ID, 1, attendance.StatusPresent)
		f.markAttendance(t, std.ID, sub.ID, 2, attendance.StatusAbsent)

		overview, err := f.svc.HODOverview(ctx, "hod1")
		require.NoError(t, err)

		assert.Equal(t, dept.ID, overview.Department.ID)
		assert.Equal(t, 1, overview.StudentCount)
		assert.Equal(t, 1, overview.TeacherCount)
		assert.Equal(t, 50, overview.OverallAttendance)
		assert.Equal(t, 1, overview.HighRiskStudents) // 50% attendance, no marks
	})

	t.Run("empty department", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.deptRepo.CreateDepartment(ctx, department.Department{Name: "Physics", Code: "PHY", HODUserID: "hod1"})
		require.NoError(t, err)

		overview, err := f.svc.HODOverview(ctx, "hod1")
		require.NoError(t, err)
		assert.Zero(t, overview.StudentCount)
		assert.Zero(t, overview.OverallAttendance)
		assert.Zero(t, overview.HighRiskStudents)
	})

	t.Run("user leads no department", func(t *testing.T) {
		f := newFixture(t)
		_, err := f.svc.HODOverview(ctx, "nobody")
		assert.Equal(t, department.ErrHODUnassigned, err)
	})
}

func TestTeacherHasAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	sub1 := f.addSubject(t, "Algorithms", "dept1")
	sub2 := f.addSubject(t, "Databases", "dept1")
	std1 := f.addStudent(t, "u1", "dept1", 7.0)
	std2 := f.addStudent(t, "u2", "dept1", 7.0)
	f.enroll(t, std1.ID, sub1.ID)
	f.enroll(t, std2.ID, sub2.ID)

	tchr, err := f.tchrRepo.CreateTeacher(ctx, teacher.Teacher{UserID: "t1", DepartmentID: "dept1"})
	require.NoError(t, err)
	require.NoError(t, f.tchrRepo.AddHandledSubject(ctx, tchr.ID, sub1.ID))
	_, err = f.tchrRepo.CreateTeacher(ctx, teacher.Teacher{UserID: "t2", DepartmentID: "dept1"})
	require.NoError(t, err)

	tests := []struct {
		name          string
		teacherUserID string
		studentID     string
		want          bool
	}{
		{"teaches the student's subject", "t1", std1.ID, true},
		{"student enrolled elsewhere", "t1", std2.ID, false},
		{"teacher handles no subjects", "t2", std1.ID, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.svc.TeacherHasAccess(ctx, tt.teacherUserID, tt.studentID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("unknown teacher", func(t *testing.T) {
		_, err := f.svc.TeacherHasAccess(ctx, "nope", std1.ID)
		assert.Equal(t, teacher.ErrNotFound, err)
	})
}

package analytics

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
)

type (
	// Report is the full analytics view of one student.
	Report struct {
		Student              student.Student     `json:"student"`
		AttendanceSummary    []SubjectAttendance `json:"attendance_summary"`
		AttendanceHistory    []HistoryPoint      `json:"attendance_history"`
		AttendanceTrend      string              `json:"attendance_trend"`
		MarksSummary         []SubjectMarks      `json:"marks_summary"`
		AttendancePercent    int                 `json:"attendance_percent"`
		AverageMarksPercent  int                 `json:"average_marks_percent"`
		AssignmentCompletion int                 `json:"assignment_completion"`
		Performance          Prediction          `json:"performance"`
		RiskLevel            string              `json:"risk_level"`
		RiskDetails          string              `json:"risk_details"`
		Recommendations      []string            `json:"recommendations"`
		Metrics              StudentMetrics      `json:"metrics"`
	}

	// Overview is the institution-wide dashboard for admins.
	Overview struct {
		TotalStudents     int `json:"total_students"`
		TotalTeachers     int `json:"total_teachers"`
		OverallAttendance int `json:"overall_attendance"`
		HighRiskStudents  int `json:"high_risk_students"`
	}

	// DepartmentOverview is the dashboard scoped to a HOD's department.
	DepartmentOverview struct {
		Department        department.Department `json:"department"`
		StudentCount      int                   `json:"student_count"`
		TeacherCount      int                   `json:"teacher_count"`
		OverallAttendance int                   `json:"overall_attendance"`
		HighRiskStudents  int                   `json:"high_risk_students"`
	}

	Service interface {
		// StudentReport builds the full analytics report for one student.
		StudentReport(ctx context.Context, studentID string) (Report, error)
		AdminOverview(ctx context.Context) (Overview, error)
		// HODOverview builds the overview of the department led by the given
		// user; department.ErrHODUnassigned is returned when they lead none.
		HODOverview(ctx context.Context, hodUserID string) (DepartmentOverview, error)
		// TeacherHasAccess reports whether the teacher handles a subject the
		// student is actively enrolled in.
		TeacherHasAccess(ctx context.Context, teacherUserID, studentID string) (bool, error)
	}

	service struct {
		stdRepo  student.Repository
		tchrRepo teacher.Repository
		subRepo  subject.Repository
		attRepo  attendance.Repository
		mrkRepo  marks.Repository
		enrRepo  enrollment.Repository
		deptSvc  department.Service
	}
)

var _ Service = (*service)(nil)

func NewService(
	stdRepo student.Repository,
	tchrRepo teacher.Repository,
	subRepo subject.Repository,
	attRepo attendance.Repository,
	mrkRepo marks.Repository,
	enrRepo enrollment.Repository,
	deptSvc department.Service,
) Service {
	return &service{
		stdRepo:  stdRepo,
		tchrRepo: tchrRepo,
		subRepo:  subRepo,
		attRepo:  attRepo,
		mrkRepo:  mrkRepo,
		enrRepo:  enrRepo,
		deptSvc:  deptSvc,
	}
}

func (svc *service) StudentReport(ctx context.Context, studentID string) (Report, error) {
	std, err := svc.stdRepo.GetStudent(ctx, student.GetFilter{ID: studentID})
	if err != nil {
		return Report{}, err
	}

	var (
		attRecords []attendance.Record
		mrkRecords []marks.Record
		enrCount   int
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		attRecords, err = svc.attRepo.QueryRecords(gctx, &attendance.QueryFilter{StudentID: std.ID},
			[]core.DBOrdering{{Field: "date", Ascending: true}})
		return err
	})
	g.Go(func() error {
		var err error
		mrkRecords, err = svc.mrkRepo.QueryRecords(gctx, &marks.QueryFilter{StudentID: std.ID}, nil)
		return err
	})
	g.Go(func() error {
		var err error
		enrCount, err = svc.enrRepo.CountByStudent(gctx, std.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Report{}, err
	}

	names, err := svc.subjectNames(ctx, std.DepartmentID)
	if err != nil {
		return Report{}, err
	}

	attSummary, history, attPercent := NormalizeAttendance(attRecords, names)
	mrkSummary, avgMarksPercent := NormalizeMarks(mrkRecords, names)
	completion := AssignmentCompletion(len(mrkRecords), enrCount)

	metrics := StudentMetrics{
		Attendance:           attPercent,
		InternalMarks:        avgMarksPercent,
		AssignmentCompletion: completion,
		PreviousCGPA:         std.CGPA,
	}
	prediction := PredictPerformance(metrics)
	risk := DetectDropoutRisk(metrics)

	return Report{
		Student:              std,
		AttendanceSummary:    attSummary,
		AttendanceHistory:    history,
		AttendanceTrend:      AnalyzeAttendanceTrend(history),
		MarksSummary:         mrkSummary,
		AttendancePercent:    attPercent,
		AverageMarksPercent:  avgMarksPercent,
		AssignmentCompletion: completion,
		Performance:          prediction,
		RiskLevel:            risk.Level,
		RiskDetails:          risk.Reason,
		Recommendations:      GenerateRecommendations(risk, prediction),
		Metrics:              metrics,
	}, nil
}

func (svc *service) AdminOverview(ctx context.Context) (Overview, error) {
	var (
		studentCount, teacherCount int
		attAgg                     map[string]attendance.Summary
		mrkAgg                     map[string]marks.Average
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		studentCount, err = svc.stdRepo.CountByDepartment(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		teacherCount, err = svc.tchrRepo.CountByDepartment(gctx, "")
		return err
	})
	g.Go(func() error {
		var err error
		attAgg, err = svc.attRepo.SummarizeByStudents(gctx, nil)
		return err
	})
	g.Go(func() error {
		var err error
		mrkAgg, err = svc.mrkRepo.AverageByStudents(gctx, nil)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}

	// screen every student that has either attendance or marks on record
	ids := make(map[string]bool, len(attAgg)+len(mrkAgg))
	for id := range attAgg {
		ids[id] = true
	}
	for id := range mrkAgg {
		ids[id] = true
	}

	overallAttendance, highRisk := screenCohort(ids, attAgg, mrkAgg)
	return Overview{
		TotalStudents:     studentCount,
		TotalTeachers:     teacherCount,
		OverallAttendance: overallAttendance,
		HighRiskStudents:  highRisk,
	}, nil
}

func (svc *service) HODOverview(ctx context.Context, hodUserID string) (DepartmentOverview, error) {
	dept, err := svc.deptSvc.GetForHOD(ctx, hodUserID)
	if err != nil {
		return DepartmentOverview{}, err
	}

	students, err := svc.stdRepo.QueryStudents(ctx, &student.QueryFilter{DepartmentID: dept.ID}, nil)
	if err != nil {
		return DepartmentOverview{}, err
	}
	ids := make(map[string]bool, len(students))
	idList := make([]string, 0, len(students))
	for _, std := range students {
		ids[std.ID] = true
		idList = append(idList, std.ID)
	}

	var (
		teacherCount int
		attAgg       map[string]attendance.Summary
		mrkAgg       map[string]marks.Average
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		teacherCount, err = svc.tchrRepo.CountByDepartment(gctx, dept.ID)
		return err
	})
	if len(idList) > 0 {
		g.Go(func() error {
			var err error
			attAgg, err = svc.attRepo.SummarizeByStudents(gctx, idList)
			return err
		})
		g.Go(func() error {
			var err error
			mrkAgg, err = svc.mrkRepo.AverageByStudents(gctx, idList)
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return DepartmentOverview{}, err
	}

	overallAttendance, highRisk := screenCohort(ids, attAgg, mrkAgg)
	return DepartmentOverview{
		Department:        dept,
		StudentCount:      len(students),
		TeacherCount:      teacherCount,
		OverallAttendance: overallAttendance,
		HighRiskStudents:  highRisk,
	}, nil
}

func (svc *service) TeacherHasAccess(ctx context.Context, teacherUserID, studentID string) (bool, error) {
	tchr, err := svc.tchrRepo.GetTeacher(ctx, teacher.GetFilter{UserID: teacherUserID})
	if err != nil {
		return false, err
	}
	if len(tchr.SubjectsHandled) == 0 {
		return false, nil
	}

	enrs, err := svc.enrRepo.QueryEnrollments(ctx, &enrollment.QueryFilter{
		StudentID: studentID,
		Status:    enrollment.StatusActive,
	}, nil)
	if err != nil {
		return false, err
	}
	handled := make(map[string]bool, len(tchr.SubjectsHandled))
	for _, id := range tchr.SubjectsHandled {
		handled[id] = true
	}
	for _, enr := range enrs {
		if handled[enr.SubjectID] {
			return true, nil
		}
	}
	return false, nil
}

// screenCohort computes the cohort-wide attendance average and the number of
// high-risk students using the two-factor classification.
func screenCohort(ids map[string]bool, attAgg map[string]attendance.Summary, mrkAgg map[string]marks.Average) (overallAttendance, highRisk int) {
	if len(ids) == 0 {
		return 0, 0
	}

	var attSum int
	for id := range ids {
		var attPercent int
		if sum, ok := attAgg[id]; ok && sum.Total > 0 {
			attPercent = Round(float64(sum.Present) / float64(sum.Total) * 100)
		}
		mrkPercent := Round(mrkAgg[id].AvgPercent)

		attSum += attPercent
		if DetermineRiskLevel(attPercent, mrkPercent) == RiskHigh {
			highRisk++
		}
	}
	return Round(float64(attSum) / float64(len(ids))), highRisk
}

// subjectNames maps subject IDs to names for a department's subjects.
func (svc *service) subjectNames(ctx context.Context, departmentID string) (map[string]string, error) {
	subs, err := svc.subRepo.QuerySubjects(ctx, &subject.QueryFilter{DepartmentID: departmentID}, nil)
	if err != nil {
		return nil, err
	}
	names := make(map[string]string, len(subs))
	for _, sub := range subs {
		names[sub.ID] = sub.Name
	}
	return names, nil
}

package echoapi_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	echoapi "github.com/academia-hub/academia/apps/api/echo"
	"github.com/academia-hub/academia/core"
	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/department"
	"github.com/academia-hub/academia/core/enrollment"
	"github.com/academia-hub/academia/core/marks"
	"github.com/academia-hub/academia/core/student"
	"github.com/academia-hub/academia/core/subject"
	"github.com/academia-hub/academia/core/teacher"
	"github.com/academia-hub/academia/core/user"
	emailsvc "github.com/academia-hub/academia/services/email"
	dummydb "github.com/academia-hub/academia/storage/database/dummy"
)

var (
	app echoapi.Server
	db  *dummydb.DB

	usrRepo  user.Repository
	deptRepo department.Repository
	subRepo  subject.Repository
	tchrRepo teacher.Repository
	stdRepo  student.Repository
	enrRepo  enrollment.Repository

	enrSync enrollment.Synchronizer
)

type nopLogger struct{}

func (nopLogger) Enable(bool)                  {}
func (nopLogger) Debug(string, ...interface{}) {}
func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}
func (nopLogger) Fatal(string, ...interface{}) {}

func TestMain(m *testing.M) {
	conf := core.NewConfig()
	// keep error payloads in their {"error": ...} envelope
	conf.Debug = false

	var err error
	db, err = dummydb.Open()
	if err != nil {
		os.Exit(1)
	}

	usrRepo = dummydb.NewUserRepository(db)
	deptRepo = dummydb.NewDepartmentRepository(db)
	subRepo = dummydb.NewSubjectRepository(db)
	tchrRepo = dummydb.NewTeacherRepository(db)
	stdRepo = dummydb.NewStudentRepository(db)
	enrRepo = dummydb.NewEnrollmentRepository(db)
	attRepo := dummydb.NewAttendanceRepository(db)
	mrkRepo := dummydb.NewMarksRepository(db)

	logger := nopLogger{}
	mailSvc := emailsvc.NewConsoleServiceMock()
	usrSvc := user.NewServiceMock(usrRepo, mailSvc)
	enrSync = enrollment.NewSynchronizer(conf, db, enrRepo, stdRepo, subRepo, tchrRepo, logger)
	deptSvc := department.NewService(deptRepo)

	app = echoapi.NewServer(&echoapi.Options{
		DisableReqLogs: true,
		Logger:         logger,
		UserSvc:        usrSvc,
		DeptSvc:        deptSvc,
		SubSvc:         subject.NewService(subRepo, enrSync),
		TchrSvc:        teacher.NewService(tchrRepo, usrSvc),
		StdSvc:         student.NewService(stdRepo, usrSvc, enrSync),
		EnrSync:        enrSync,
		AttSvc:         attendance.NewService(db, attRepo, enrSync),
		MrkSvc:         marks.NewService(db, mrkRepo, enrSync),
		AnlSvc:         analytics.NewService(stdRepo, tchrRepo, subRepo, attRepo, mrkRepo, enrRepo, deptSvc),
	})

	os.Exit(m.Run())
}

type httpErr struct {
	Error string `json:"error"`
}

func contextT(t *testing.T) context.Context {
	t.Helper()
	return context.Background()
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

func getToken(t *testing.T, usr user.User) string {
	t.Helper()
	claims := echoapi.GetUserClaims(usr)
	token, err := echoapi.GenerateToken(claims)
	if err != nil {
		t.Fatalf("getToken(): %v", err)
	}
	return token
}

func marshallObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshallObj(): %v", err)
	}
	return data
}

func createUser(t *testing.T, name, email, role, pwd string, active bool) user.User {
	t.Helper()
	now := time.Now().UTC()
	usr := user.User{
		Name:      name,
		Email:     email,
		Role:      role,
		IsActive:  active,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := usr.SetPassword(pwd); err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	usr, err := usrRepo.CreateUser(contextT(t), usr)
	if err != nil {
		t.Fatalf("createUser(): %v", err)
	}
	return usr
}

func createDepartment(t *testing.T, name, code, hodUserID string) department.Department {
	t.Helper()
	dept, err := deptRepo.CreateDepartment(contextT(t), department.Department{
		Name:      name,
		Code:      code,
		HODUserID: hodUserID,
	})
	if err != nil {
		t.Fatalf("createDepartment(): %v", err)
	}
	return dept
}

func createSubject(t *testing.T, name, code, deptID string, semester int) subject.Subject {
	t.Helper()
	sub, err := subRepo.CreateSubject(contextT(t), subject.Subject{
		Name:         name,
		Code:         code,
		DepartmentID: deptID,
		Semester:     semester,
		Credits:      4,
	})
	if err != nil {
		t.Fatalf("createSubject(): %v", err)
	}
	return sub
}

// createTeacher creates a teacher account and profile, optionally assigned
// the given subjects.
func createTeacher(t *testing.T, email, deptID string, subjectIDs ...string) (user.User, teacher.Teacher) {
	t.Helper()
	usr := createUser(t, "Teacher "+email, email, user.RoleTeacher, "LePassw0rd", true)
	tchr, err := tchrRepo.CreateTeacher(contextT(t), teacher.Teacher{
		UserID:       usr.ID,
		DepartmentID: deptID,
		Designation:  "Lecturer",
	})
	if err != nil {
		t.Fatalf("createTeacher(): %v", err)
	}
	for _, subID := range subjectIDs {
		if err := enrSync.SyncTeacherAssignment(contextT(t), subID, tchr.ID, ""); err != nil {
			t.Fatalf("createTeacher(): %v", err)
		}
	}
	tchr, err = tchrRepo.GetTeacher(contextT(t), teacher.GetFilter{ID: tchr.ID})
	if err != nil {
		t.Fatalf("createTeacher(): %v", err)
	}
	return usr, tchr
}

// createStudent creates a student account and profile and enrolls them in
// their semester subjects.
func createStudent(t *testing.T, email, roll, deptID string, semester int) (user.User, student.Student) {
	t.Helper()
	usr := createUser(t, "Student "+email, email, user.RoleStudent, "LePassw0rd", true)
	std, err := stdRepo.CreateStudent(contextT(t), student.Student{
		UserID:       usr.ID,
		RollNumber:   roll,
		DepartmentID: deptID,
		Semester:     semester,
		CGPA:         7.5,
	})
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	if err := enrSync.EnsureSemesterEnrollments(contextT(t), std.ID); err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return usr, std
}

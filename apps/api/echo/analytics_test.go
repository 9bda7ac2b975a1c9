package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core/analytics"
	"github.com/academia-hub/academia/core/user"
)

func TestStudentReportAccess(t *testing.T) {
	hodUsr := createUser(t, "The HOD", "hod.report@test.cd", user.RoleHOD, "LePassw0rd", true)
	dept := createDepartment(t, "Electronics", "EC-RPT", hodUsr.ID)
	otherDept := createDepartment(t, "Mechanical", "ME-RPT", "")

	sub := createSubject(t, "Circuits", "EC-311", dept.ID, 3)
	tchrUsr, _ := createTeacher(t, "teacher.report@test.cd", dept.ID, sub.ID)
	idleTchrUsr, _ := createTeacher(t, "idle.report@test.cd", dept.ID)

	stdUsr, std := createStudent(t, "student.report@test.cd", "EC_RPT_01", dept.ID, 3)
	peerUsr, _ := createStudent(t, "peer.report@test.cd", "ME_RPT_01", otherDept.ID, 3)
	admin := createUser(t, "The Admin", "admin.report@test.cd", user.RoleAdmin, "LePassw0rd", true)

	path := "/v1/analytics/students/" + std.ID + "/report"

	t.Run("admin can fetch any report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, admin))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var report analytics.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, std.ID, report.Student.ID)
		assert.NotEmpty(t, report.RiskLevel)
	})

	t.Run("student fetches their own report", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/me/report", getToken(t, stdUsr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var report analytics.Report
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
		assert.Equal(t, std.ID, report.Student.ID)
	})

	t.Run("another student is forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, peerUsr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("teacher handling one of the student's subjects has access", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, tchrUsr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	})

	t.Run("teacher with no handled subjects is forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, idleTchrUsr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("HOD sees reports in their department only", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, path, getToken(t, hodUsr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		_, outsider := createStudent(t, "outsider.report@test.cd", "ME_RPT_02", otherDept.ID, 3)
		req, rec = newAuthRequest(http.MethodGet, "/v1/analytics/students/"+outsider.ID+"/report", getToken(t, hodUsr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("unknown student yields not found", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/students/nope/report", getToken(t, admin))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestOverviewPermissions(t *testing.T) {
	admin := createUser(t, "The Admin", "admin.overview@test.cd", user.RoleAdmin, "LePassw0rd", true)
	stdUsr := createUser(t, "Some Student", "student.overview@test.cd", user.RoleStudent, "LePassw0rd", true)
	hodUsr := createUser(t, "The HOD", "hod.overview@test.cd", user.RoleHOD, "LePassw0rd", true)
	unassignedHOD := createUser(t, "Floating HOD", "floating.overview@test.cd", user.RoleHOD, "LePassw0rd", true)
	createDepartment(t, "Civil", "CE-OVW", hodUsr.ID)

	t.Run("admin overview", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/overview", getToken(t, admin))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var overview analytics.Overview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
		assert.Greater(t, overview.TotalStudents, 0)
	})

	t.Run("student cannot see the admin overview", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/overview", getToken(t, stdUsr))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("HOD department overview", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/department-overview", getToken(t, hodUsr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var overview analytics.DepartmentOverview
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &overview))
		assert.Equal(t, "CE-OVW", overview.Department.Code)
	})

	t.Run("unassigned HOD is rejected", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/analytics/department-overview", getToken(t, unassignedHOD))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}

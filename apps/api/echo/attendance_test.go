package echoapi_test

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core/attendance"
)

func TestAttendanceSubmission(t *testing.T) {
	dept := createDepartment(t, "Computer Science", "CS-ATT", "")
	sub := createSubject(t, "Operating Systems", "CS-331", dept.ID, 3)
	other := createSubject(t, "Databases", "CS-332", dept.ID, 3)

	tchrUsr, _ := createTeacher(t, "teacher.att@test.cd", dept.ID, sub.ID)
	outsiderUsr, _ := createTeacher(t, "outsider.att@test.cd", dept.ID, other.ID)
	stdUsr, std := createStudent(t, "student.att@test.cd", "CS_ATT_01", dept.ID, 3)

	session := map[string]interface{}{
		"subject_id": sub.ID,
		"date":       "2026-03-02T00:00:00Z",
		"entries": []map[string]string{
			{"student_id": std.ID, "status": attendance.StatusPresent},
		},
	}

	t.Run("assigned teacher can submit a session", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, tchrUsr), marshallObj(t, session))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		var recs []attendance.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
		require.Len(t, recs, 1)
		assert.Equal(t, std.ID, recs[0].StudentID)
		assert.Equal(t, attendance.StatusPresent, recs[0].Status)
	})

	t.Run("resubmitting the session conflicts", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, tchrUsr), marshallObj(t, session))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusConflict, rec.Code, rec.Body.String())
		var resp httpErr
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, attendance.ErrSessionAlreadyMarked.Error(), resp.Error)
	})

	t.Run("teacher of another subject is forbidden", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, outsiderUsr), marshallObj(t, session))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("student cannot submit attendance", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, stdUsr), marshallObj(t, session))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("student sees their own records and summary", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/attendance/me", getToken(t, stdUsr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var recs []attendance.Record
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &recs))
		assert.Len(t, recs, 1)

		req, rec = newAuthRequest(http.MethodGet, "/v1/attendance/me/summary", getToken(t, stdUsr))
		app.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var sum attendance.Summary
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &sum))
		assert.Equal(t, attendance.Summary{Total: 1, Present: 1}, sum)
	})

	t.Run("entries must pass validation", func(t *testing.T) {
		bad := map[string]interface{}{
			"subject_id": sub.ID,
			"date":       "2026-03-03T00:00:00Z",
			"entries": []map[string]string{
				{"student_id": std.ID, "status": "late"},
			},
		}
		req, rec := newAuthRequest(http.MethodPost, "/v1/attendance", getToken(t, tchrUsr), marshallObj(t, bad))
		app.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

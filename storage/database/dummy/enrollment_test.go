package dummydb_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/academia-hub/academia/core/attendance"
	"github.com/academia-hub/academia/core/enrollment"
	dummydb "github.com/academia-hub/academia/storage/database/dummy"
)

func TestInsertEnrollments(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewEnrollmentRepository(db)

	now := time.Now().UTC()
	created, err := repo.InsertEnrollments(ctx, []enrollment.Enrollment{
		{StudentID: "std1", SubjectID: "sub1", AcademicYear: "2025-2026", Status: enrollment.StatusActive, EnrolledAt: now},
		{StudentID: "std1", SubjectID: "sub2", AcademicYear: "2025-2026", Status: enrollment.StatusActive, EnrolledAt: now},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)
	assert.NotEqual(t, created[0].ID, created[1].ID)

	// each stored row keeps its own subject
	enrs, err := repo.QueryEnrollments(ctx, &enrollment.QueryFilter{StudentID: "std1"}, nil)
	require.NoError(t, err)
	subjects := make([]string, 0, len(enrs))
	for _, enr := range enrs {
		subjects = append(subjects, enr.SubjectID)
	}
	assert.ElementsMatch(t, []string{"sub1", "sub2"}, subjects)

	_, err = repo.InsertEnrollments(ctx, []enrollment.Enrollment{
		{StudentID: "std1", SubjectID: "sub1", AcademicYear: "2025-2026", Status: enrollment.StatusActive, EnrolledAt: now},
	})
	assert.Equal(t, enrollment.ErrAlreadyEnrolled, err)
}

func TestCreateAttendanceRecords(t *testing.T) {
	ctx := context.Background()
	db, err := dummydb.Open()
	require.NoError(t, err)
	repo := dummydb.NewAttendanceRepository(db)

	date := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	created, err := repo.CreateRecords(ctx, []attendance.Record{
		{StudentID: "std1", SubjectID: "sub1", Date: date, Status: attendance.StatusPresent},
		{StudentID: "std2", SubjectID: "sub1", Date: date, Status: attendance.StatusAbsent},
	})
	require.NoError(t, err)
	require.Len(t, created, 2)

	recs, err := repo.QueryRecords(ctx, &attendance.QueryFilter{SubjectID: "sub1"}, nil)
	require.NoError(t, err)
	students := make([]string, 0, len(recs))
	for _, rec := range recs {
		students = append(students, rec.StudentID)
	}
	assert.ElementsMatch(t, []string{"std1", "std2"}, students)
}

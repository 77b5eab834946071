package dashboard

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillnow2/hrms-lite-be/internal/domain/apperror"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
	"github.com/tillnow2/hrms-lite-be/internal/repository/memstore"
)

func date(d int) time.Time {
	return time.Date(2026, 10, d, 0, 0, 0, 0, time.UTC)
}

func seed(t *testing.T, store *memstore.Store) {
	t.Helper()
	ctx := context.Background()

	employees := []models.Employee{
		{EmployeeID: "EMP001", FullName: "John Doe", Email: "john@x.com", Department: "Engineering"},
		{EmployeeID: "EMP002", FullName: "Jane Roe", Email: "jane@x.com", Department: "Engineering"},
		{EmployeeID: "EMP003", FullName: "Ann Lee", Email: "ann@x.com", Department: "HR"},
	}
	for i := range employees {
		require.NoError(t, store.Employees().Insert(ctx, &employees[i]))
	}

	records := []models.Attendance{
		{EmployeeID: "EMP001", Date: date(16), Status: models.StatusPresent},
		{EmployeeID: "EMP002", Date: date(16), Status: models.StatusAbsent},
		{EmployeeID: "EMP003", Date: date(16), Status: models.StatusPresent},
		{EmployeeID: "EMP001", Date: date(15), Status: models.StatusAbsent},
		{EmployeeID: "GONE01", Date: date(14), Status: models.StatusPresent},
	}
	for i := range records {
		require.NoError(t, store.Attendance().Insert(ctx, &records[i]))
	}
}

func TestSnapshot(t *testing.T) {
	store := memstore.New()
	seed(t, store)
	svc := NewService(store.Employees(), store.Attendance(), time.UTC, nil)

	snapshot, err := svc.SnapshotAt(context.Background(), time.Date(2026, 10, 16, 18, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	assert.Equal(t, models.DashboardSummary{
		TotalEmployees:              3,
		TotalAttendanceRecords:      5,
		TodayPresent:                2,
		TodayAbsent:                 1,
		TodayTotal:                  3,
		TodayAttendancePercentage:   66.67,
		TotalPresent:                3,
		TotalAbsent:                 2,
		OverallAttendancePercentage: 60,
	}, snapshot.Summary)
	assert.Equal(t, snapshot.Summary.TodayPresent+snapshot.Summary.TodayAbsent, snapshot.Summary.TodayTotal)

	assert.Equal(t, []models.DepartmentCount{
		{Department: "Engineering", Count: 2},
		{Department: "HR", Count: 1},
	}, snapshot.Departments)

	require.Len(t, snapshot.RecentAttendance, 5)
	assert.Equal(t, "2026-10-16", snapshot.RecentAttendance[0].Date)
	last := snapshot.RecentAttendance[4]
	assert.Equal(t, "GONE01", last.EmployeeID)
	assert.Equal(t, "Unknown", last.EmployeeName)
	assert.Equal(t, "2026-10-16", snapshot.TodayDate)
}

func TestSnapshotUsesConfiguredTimezone(t *testing.T) {
	store := memstore.New()
	seed(t, store)
	loc := time.FixedZone("UTC+10", 10*3600)
	svc := NewService(store.Employees(), store.Attendance(), loc, nil)

	// 15:00 UTC on the 15th is already the 16th ten hours east.
	snapshot, err := svc.SnapshotAt(context.Background(), time.Date(2026, 10, 15, 15, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, "2026-10-16", snapshot.TodayDate)
	assert.EqualValues(t, 3, snapshot.Summary.TodayTotal)
}

func TestSnapshotEmptyStore(t *testing.T) {
	store := memstore.New()
	svc := NewService(store.Employees(), store.Attendance(), nil, nil)

	snapshot, err := svc.Snapshot(context.Background())
	require.NoError(t, err)
	assert.Zero(t, snapshot.Summary.TodayAttendancePercentage)
	assert.Zero(t, snapshot.Summary.OverallAttendancePercentage)
	assert.Empty(t, snapshot.Departments)
	assert.Empty(t, snapshot.RecentAttendance)
}

func TestSnapshotRecentIsCapped(t *testing.T) {
	ctx := context.Background()
	store := memstore.New()
	require.NoError(t, store.Employees().Insert(ctx, &models.Employee{EmployeeID: "EMP001", FullName: "John Doe", Email: "john@x.com"}))
	for d := 1; d <= 15; d++ {
		require.NoError(t, store.Attendance().Insert(ctx, &models.Attendance{EmployeeID: "EMP001", Date: date(d), Status: models.StatusPresent}))
	}

	snapshot, err := NewService(store.Employees(), store.Attendance(), time.UTC, nil).Snapshot(ctx)
	require.NoError(t, err)
	require.Len(t, snapshot.RecentAttendance, 10)
	assert.Equal(t, fmt.Sprintf("2026-10-%02d", 15), snapshot.RecentAttendance[0].Date)
}

type brokenEmployees struct {
	repository.EmployeeStore
}

func (brokenEmployees) Count(context.Context) (int64, error) {
	return 0, errors.New("server selection timeout")
}

func TestSnapshotStoreFailureIsInternal(t *testing.T) {
	store := memstore.New()
	svc := NewService(brokenEmployees{store.Employees()}, store.Attendance(), time.UTC, nil)

	_, err := svc.Snapshot(context.Background())
	assert.Equal(t, apperror.KindInternal, apperror.KindOf(err))
}

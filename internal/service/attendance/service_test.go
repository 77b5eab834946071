package attendance

import (
	"bytes"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tillnow2/hrms-lite-be/internal/domain/apperror"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
	"github.com/tillnow2/hrms-lite-be/internal/repository/memstore"
	"github.com/tillnow2/hrms-lite-be/internal/service/export"
)

var fixedNow = time.Date(2026, 10, 16, 9, 0, 0, 0, time.UTC)

type fixture struct {
	store *memstore.Store
	svc   *Service
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := memstore.New()
	require.NoError(t, store.Employees().Insert(context.Background(), &models.Employee{
		EmployeeID: "EMP001",
		FullName:   "John Doe",
		Email:      "john@x.com",
		Department: "Engineering",
	}))

	svc := NewService(store.Attendance(), store.Employees(), nil)
	svc.now = func() time.Time { return fixedNow }
	return fixture{store: store, svc: svc}
}

func (f fixture) mark(t *testing.T, employeeID, date, status string) *models.AttendanceView {
	t.Helper()
	view, err := f.svc.Mark(context.Background(), models.AttendanceCreate{EmployeeID: employeeID, Date: date, Status: status})
	require.NoError(t, err)
	return view
}

func TestMark(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	view := f.mark(t, "emp001", "2026-10-16", "Present")
	assert.Equal(t, "EMP001", view.EmployeeID)
	require.NotNil(t, view.EmployeeName)
	assert.Equal(t, "John Doe", *view.EmployeeName)
	assert.Equal(t, "2026-10-16", view.Date)
	assert.Equal(t, models.StatusPresent, view.Status)
	assert.Nil(t, view.Remarks)

	t.Run("same day again", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, models.AttendanceCreate{EmployeeID: "EMP001", Date: "2026-10-16", Status: "Absent"})
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("timestamp on the same day is the same day", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, models.AttendanceCreate{EmployeeID: "EMP001", Date: "2026-10-16T17:45:00Z", Status: "Absent"})
		assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
	})

	t.Run("unknown employee", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, models.AttendanceCreate{EmployeeID: "EMP999", Date: "2026-10-16", Status: "Present"})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("malformed date", func(t *testing.T) {
		_, err := f.svc.Mark(ctx, models.AttendanceCreate{EmployeeID: "EMP001", Date: "16/10/2026", Status: "Present"})
		assert.Equal(t, apperror.KindValidation, apperror.KindOf(err))
	})
}

type racingAttendance struct {
	repository.AttendanceStore
}

func (racingAttendance) Exists(context.Context, string, time.Time) (bool, error) {
	return false, nil
}

func TestMarkMapsDuplicateKeyToConflict(t *testing.T) {
	f := newFixture(t)
	f.mark(t, "EMP001", "2026-10-16", "Present")

	svc := NewService(racingAttendance{f.store.Attendance()}, f.store.Employees(), nil)
	_, err := svc.Mark(context.Background(), models.AttendanceCreate{EmployeeID: "EMP001", Date: "2026-10-16", Status: "Present"})

	assert.Equal(t, apperror.KindConflict, apperror.KindOf(err))
}

func TestListFilters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mark(t, "EMP001", "2026-10-01", "Present")
	f.mark(t, "EMP001", "2026-10-02", "Absent")
	f.mark(t, "EMP001", "2026-10-03", "Present")
	f.mark(t, "EMP001", "2026-10-04", "Present")

	t.Run("range includes both boundary days", func(t *testing.T) {
		views, err := f.svc.List(ctx, models.AttendanceQuery{StartDate: "2026-10-02", EndDate: "2026-10-03"})
		require.NoError(t, err)
		require.Len(t, views, 2)
		assert.Equal(t, "2026-10-03", views[0].Date)
		assert.Equal(t, "2026-10-02", views[1].Date)
	})

	t.Run("status and employee", func(t *testing.T) {
		views, err := f.svc.List(ctx, models.AttendanceQuery{EmployeeID: "emp001", Status: "Present"})
		require.NoError(t, err)
		assert.Len(t, views, 3)
	})

	t.Run("invalid filters are reported together", func(t *testing.T) {
		_, err := f.svc.List(ctx, models.AttendanceQuery{StartDate: "yesterday", Status: "Late"})
		require.Error(t, err)
		var appErr *apperror.Error
		require.ErrorAs(t, err, &appErr)
		assert.Equal(t, apperror.KindValidation, appErr.Kind)
		assert.Len(t, appErr.Fields, 2)
	})
}

func TestListKeepsRecordsOfDeletedEmployees(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	require.NoError(t, f.store.Attendance().Insert(ctx, &models.Attendance{
		EmployeeID: "GHOST",
		Date:       time.Date(2026, 10, 5, 0, 0, 0, 0, time.UTC),
		Status:     models.StatusAbsent,
	}))

	views, err := f.svc.List(ctx, models.AttendanceQuery{})
	require.NoError(t, err)
	require.Len(t, views, 1)
	assert.Nil(t, views[0].EmployeeName)
}

func TestGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	view := f.mark(t, "EMP001", "2026-10-16", "Present")

	t.Run("malformed id", func(t *testing.T) {
		_, err := f.svc.Get(ctx, "not-an-id")
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(f.svc.Delete(ctx, "123")))
		_, err = f.svc.Update(ctx, "xyz", models.AttendanceUpdate{})
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
	})

	t.Run("unknown id", func(t *testing.T) {
		missing := primitive.NewObjectID().Hex()
		_, err := f.svc.Get(ctx, missing)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
		_, err = f.svc.Update(ctx, missing, models.AttendanceUpdate{})
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})

	t.Run("empty patch", func(t *testing.T) {
		_, err := f.svc.Update(ctx, view.ID, models.AttendanceUpdate{})
		assert.Equal(t, apperror.KindBadRequest, apperror.KindOf(err))
	})

	t.Run("remarks only", func(t *testing.T) {
		later := fixedNow.Add(2 * time.Hour)
		f.svc.now = func() time.Time { return later }
		remarks := "x"

		updated, err := f.svc.Update(ctx, view.ID, models.AttendanceUpdate{Remarks: &remarks})
		require.NoError(t, err)
		require.NotNil(t, updated.Remarks)
		assert.Equal(t, "x", *updated.Remarks)
		assert.Equal(t, models.StatusPresent, updated.Status)
		assert.Equal(t, view.CreatedAt, updated.CreatedAt)
		assert.Equal(t, later, updated.UpdatedAt)
	})

	t.Run("get returns the joined record", func(t *testing.T) {
		got, err := f.svc.Get(ctx, view.ID)
		require.NoError(t, err)
		assert.Equal(t, "John Doe", *got.EmployeeName)
	})

	t.Run("delete", func(t *testing.T) {
		require.NoError(t, f.svc.Delete(ctx, view.ID))
		_, err := f.svc.Get(ctx, view.ID)
		assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
	})
}

func TestListByEmployee(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mark(t, "EMP001", "2026-10-01", "Present")
	f.mark(t, "EMP001", "2026-10-09", "Absent")

	views, err := f.svc.ListByEmployee(ctx, "emp001")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, "2026-10-09", views[0].Date)

	_, err = f.svc.ListByEmployee(ctx, "EMP404")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)

	empty, err := f.svc.Summary(ctx, "EMP001")
	require.NoError(t, err)
	assert.Zero(t, empty.TotalDays)
	assert.Zero(t, empty.AttendancePercentage)

	f.mark(t, "EMP001", "2026-10-01", "Present")
	f.mark(t, "EMP001", "2026-10-02", "Present")
	f.mark(t, "EMP001", "2026-10-03", "Absent")

	summary, err := f.svc.Summary(ctx, "emp001")
	require.NoError(t, err)
	assert.Equal(t, &models.AttendanceSummary{
		EmployeeID:           "EMP001",
		EmployeeName:         "John Doe",
		TotalDays:            3,
		PresentDays:          2,
		AbsentDays:           1,
		AttendancePercentage: 66.67,
	}, summary)
	assert.LessOrEqual(t, summary.PresentDays+summary.AbsentDays, summary.TotalDays)

	_, err = f.svc.Summary(ctx, "EMP404")
	assert.Equal(t, apperror.KindNotFound, apperror.KindOf(err))
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	f.mark(t, "EMP001", "2026-10-01", "Present")
	f.mark(t, "EMP001", "2026-10-02", "Absent")

	var buf bytes.Buffer
	require.NoError(t, f.svc.Export(ctx, models.AttendanceQuery{Status: "Absent"}, &buf))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	rows, err := file.GetRows(export.AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, []string{"EMP001", "John Doe", "2026-10-02", "Absent"}, rows[1][:4])
}

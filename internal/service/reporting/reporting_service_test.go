package reporting

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository/memstore"
)

type stubSource struct {
	snapshot *models.DashboardSnapshot
	err      error
}

func (s stubSource) SnapshotAt(context.Context, time.Time) (*models.DashboardSnapshot, error) {
	return s.snapshot, s.err
}

type sheetCall struct {
	sheetRange string
	values     []interface{}
}

type fakeSheet struct {
	calls []sheetCall
	err   error
}

func (f *fakeSheet) WriteRow(_ context.Context, sheetRange string, values []interface{}) error {
	f.calls = append(f.calls, sheetCall{sheetRange: sheetRange, values: values})
	return f.err
}

type fakeNotifier struct {
	payloads []any
	err      error
}

func (f *fakeNotifier) Send(_ context.Context, payload any) error {
	f.payloads = append(f.payloads, payload)
	return f.err
}

var createdAt = time.Date(2026, 10, 16, 20, 0, 0, 0, time.UTC)

func snapshot(employees, present, absent int64) *models.DashboardSnapshot {
	return &models.DashboardSnapshot{
		Summary: models.DashboardSummary{
			TotalEmployees:            employees,
			TodayPresent:              present,
			TodayAbsent:               absent,
			TodayTotal:                present + absent,
			TodayAttendancePercentage: models.Percentage(present, present+absent),
		},
		Departments: []models.DepartmentCount{{Department: "Engineering", Count: 2}, {Department: "HR", Count: 1}},
		TodayDate:   "2026-10-16",
	}
}

func newTestService(source SnapshotSource, store *memstore.Store, sinks Sinks) *Service {
	svc := NewService(source, store.Digests(), sinks, nil)
	svc.now = func() time.Time { return createdAt }
	return svc
}

func TestGenerateDailyDigest(t *testing.T) {
	svc := newTestService(stubSource{snapshot: snapshot(3, 2, 0)}, memstore.New(), Sinks{})

	digest, err := svc.GenerateDailyDigest(context.Background(), createdAt)
	require.NoError(t, err)
	assert.Equal(t, models.DailyDigest{
		Date:                 time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		TotalEmployees:       3,
		Present:              2,
		Absent:               0,
		Unmarked:             1,
		AttendancePercentage: 100,
		Departments:          []models.DepartmentCount{{Department: "Engineering", Count: 2}, {Department: "HR", Count: 1}},
		CreatedAt:            createdAt,
	}, digest)
}

func TestUnmarkedNeverNegative(t *testing.T) {
	// records of deleted employees can outnumber the headcount
	svc := newTestService(stubSource{snapshot: snapshot(1, 2, 1)}, memstore.New(), Sinks{})

	digest, err := svc.GenerateDailyDigest(context.Background(), createdAt)
	require.NoError(t, err)
	assert.Zero(t, digest.Unmarked)
}

func TestPublishDeliversToEverySink(t *testing.T) {
	store := memstore.New()
	sheet := &fakeSheet{}
	notifier := &fakeNotifier{}
	svc := newTestService(stubSource{snapshot: snapshot(3, 2, 1)}, store, Sinks{Sheet: sheet, SheetRange: "Digest!A:F", Notifier: notifier})

	digest, err := svc.PublishDailyDigest(context.Background(), createdAt)
	require.NoError(t, err)

	assert.Equal(t, []models.DailyDigest{digest}, store.DailyDigests())

	require.Len(t, sheet.calls, 1)
	assert.Equal(t, "Digest!A:F", sheet.calls[0].sheetRange)
	assert.Equal(t, []interface{}{"2026-10-16", int64(3), int64(2), int64(1), int64(0), 66.67}, sheet.calls[0].values)

	require.Len(t, notifier.payloads, 1)
	msg, ok := notifier.payloads[0].(DigestMessage)
	require.True(t, ok)
	assert.Equal(t, digest, msg.Digest)
	assert.Contains(t, msg.Text, "2 present, 1 absent, 0 unmarked of 3 employees (66.67%)")
}

func TestPublishContinuesAfterSinkFailure(t *testing.T) {
	store := memstore.New()
	sheet := &fakeSheet{err: errors.New("quota exceeded")}
	notifier := &fakeNotifier{err: errors.New("timeout")}
	svc := newTestService(stubSource{snapshot: snapshot(3, 2, 1)}, store, Sinks{Sheet: sheet, SheetRange: "Digest!A:F", Notifier: notifier})

	_, err := svc.PublishDailyDigest(context.Background(), createdAt)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets")
	assert.Contains(t, err.Error(), "quota exceeded")

	assert.Len(t, store.DailyDigests(), 1)
	assert.Len(t, notifier.payloads, 1)
}

func TestPublishStopsWhenSnapshotFails(t *testing.T) {
	store := memstore.New()
	svc := newTestService(stubSource{err: errors.New("db down")}, store, Sinks{})

	_, err := svc.PublishDailyDigest(context.Background(), createdAt)
	require.Error(t, err)
	assert.Empty(t, store.DailyDigests())
}

func TestFormatDigest(t *testing.T) {
	text := FormatDigest(models.DailyDigest{
		Date:                 time.Date(2026, 10, 16, 0, 0, 0, 0, time.UTC),
		TotalEmployees:       4,
		Present:              3,
		Absent:               0,
		Unmarked:             1,
		AttendancePercentage: 100,
		Departments:          []models.DepartmentCount{{Department: "Engineering", Count: 4}},
	})

	assert.Equal(t, "Attendance 2026-10-16: 3 present, 0 absent, 1 unmarked of 4 employees (100.00%). Headcount: Engineering 4.", text)
}

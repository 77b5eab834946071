package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
)

func TestWriteAttendance(t *testing.T) {
	name := "John Doe"
	remarks := "late"
	stamp := time.Date(2026, 10, 16, 8, 15, 0, 0, time.UTC)

	rows := []models.AttendanceView{
		{EmployeeID: "EMP001", EmployeeName: &name, Date: "2026-10-16", Status: models.StatusPresent, Remarks: &remarks, CreatedAt: stamp, UpdatedAt: stamp},
		{EmployeeID: "EMP404", Date: "2026-10-15", Status: models.StatusAbsent, CreatedAt: stamp, UpdatedAt: stamp},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, rows))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	assert.Equal(t, AttendanceSheet, file.GetSheetName(0))

	got, err := file.GetRows(AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, AttendanceHeader, got[0])
	assert.Equal(t, []string{"EMP001", "John Doe", "2026-10-16", "Present", "late", "2026-10-16 08:15:00", "2026-10-16 08:15:00"}, got[1])
	assert.Equal(t, "EMP404", got[2][0])
	assert.Equal(t, "", got[2][1])
	assert.Equal(t, "Absent", got[2][3])
}

func TestWriteAttendanceEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteAttendance(&buf, nil))

	file, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer func() { _ = file.Close() }()

	got, err := file.GetRows(AttendanceSheet)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, AttendanceHeader, got[0])
}

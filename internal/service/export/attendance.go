// Package export renders attendance data as spreadsheet workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
)

const (
	// AttendanceSheet is the worksheet holding the exported rows.
	AttendanceSheet = "Attendance"
	// ContentTypeXLSX is the MIME type of the produced workbook.
	ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

	timestampLayout = "2006-01-02 15:04:05"
)

// AttendanceHeader lists the column titles of the attendance sheet.
var AttendanceHeader = []string{"Employee ID", "Employee Name", "Date", "Status", "Remarks", "Created At", "Updated At"}

// WriteAttendance writes rows as an XLSX workbook with a bold header line.
func WriteAttendance(w io.Writer, rows []models.AttendanceView) error {
	file := excelize.NewFile()
	defer func() { _ = file.Close() }()

	if err := file.SetSheetName(file.GetSheetName(0), AttendanceSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]interface{}, len(AttendanceHeader))
	for i, title := range AttendanceHeader {
		header[i] = title
	}
	if err := file.SetSheetRow(AttendanceSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	bold, err := file.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	lastCol, err := excelize.ColumnNumberToName(len(AttendanceHeader))
	if err != nil {
		return fmt.Errorf("resolve last column: %w", err)
	}
	if err := file.SetCellStyle(AttendanceSheet, "A1", lastCol+"1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := file.SetColWidth(AttendanceSheet, "A", lastCol, 20); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("resolve row %d: %w", i+2, err)
		}

		values := []interface{}{
			row.EmployeeID,
			deref(row.EmployeeName),
			row.Date,
			row.Status.String(),
			deref(row.Remarks),
			row.CreatedAt.UTC().Format(timestampLayout),
			row.UpdatedAt.UTC().Format(timestampLayout),
		}
		if err := file.SetSheetRow(AttendanceSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := file.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

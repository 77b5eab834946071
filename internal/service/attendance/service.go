package attendance

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/apperror"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
	"github.com/tillnow2/hrms-lite-be/internal/service/export"
)

// Ledger is the attendance book consumed by the HTTP layer.
type Ledger interface {
	Mark(ctx context.Context, input models.AttendanceCreate) (*models.AttendanceView, error)
	List(ctx context.Context, query models.AttendanceQuery) ([]models.AttendanceView, error)
	Get(ctx context.Context, attendanceID string) (*models.AttendanceView, error)
	ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceView, error)
	Update(ctx context.Context, attendanceID string, input models.AttendanceUpdate) (*models.AttendanceView, error)
	Delete(ctx context.Context, attendanceID string) error
	Summary(ctx context.Context, employeeID string) (*models.AttendanceSummary, error)
	Export(ctx context.Context, query models.AttendanceQuery, w io.Writer) error
}

// Service implements Ledger.
type Service struct {
	attendance repository.AttendanceStore
	employees  repository.EmployeeStore
	logger     *zap.Logger
	now        func() time.Time
}

var _ Ledger = (*Service)(nil)

// NewService wires a new attendance ledger.
func NewService(attendance repository.AttendanceStore, employees repository.EmployeeStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		attendance: attendance,
		employees:  employees,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Mark records one day of attendance for an existing employee.
func (s *Service) Mark(ctx context.Context, input models.AttendanceCreate) (*models.AttendanceView, error) {
	employeeID := models.NormalizeEmployeeID(input.EmployeeID)

	date, err := models.ParseCalendarDate(input.Date)
	if err != nil {
		return nil, apperror.Validation(apperror.FieldError{Field: "date", Message: err.Error(), Type: "date"})
	}
	status, err := models.ParseAttendanceStatus(input.Status)
	if err != nil {
		return nil, apperror.Validation(apperror.FieldError{Field: "status", Message: "status must be one of [Present Absent]", Type: "oneof"})
	}

	employee, err := s.employees.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Employee with ID '%s' not found", employeeID)
		}
		return nil, apperror.Internal("Failed to mark attendance", err)
	}

	exists, err := s.attendance.Exists(ctx, employeeID, date)
	if err != nil {
		return nil, apperror.Internal("Failed to mark attendance", err)
	}
	if exists {
		return nil, dayConflict(employeeID, date)
	}

	now := s.now()
	record := &models.Attendance{
		EmployeeID: employeeID,
		Date:       date,
		Status:     status,
		Remarks:    input.Remarks,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.attendance.Insert(ctx, record); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, dayConflict(employeeID, date)
		}
		return nil, apperror.Internal("Failed to mark attendance", err)
	}

	s.logger.Info("attendance marked",
		zap.String("employee_id", employeeID),
		zap.String("date", date.Format(models.DateLayout)),
		zap.Stringer("status", status))

	view := models.NewAttendanceView(*record, &employee.FullName)
	return &view, nil
}

// List returns the records matching query, newest date first.
func (s *Service) List(ctx context.Context, query models.AttendanceQuery) ([]models.AttendanceView, error) {
	filter, err := parseQuery(query)
	if err != nil {
		return nil, err
	}

	records, err := s.attendance.List(ctx, filter, 0)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve attendance records", err)
	}
	views, err := s.join(ctx, records)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve attendance records", err)
	}
	return views, nil
}

// Get returns one record by storage key.
func (s *Service) Get(ctx context.Context, attendanceID string) (*models.AttendanceView, error) {
	record, err := s.find(ctx, attendanceID, "Failed to retrieve attendance record")
	if err != nil {
		return nil, err
	}
	return s.joinOne(ctx, *record, "Failed to retrieve attendance record")
}

// ListByEmployee returns every record of one employee, newest date first.
func (s *Service) ListByEmployee(ctx context.Context, employeeID string) ([]models.AttendanceView, error) {
	employeeID = models.NormalizeEmployeeID(employeeID)

	employee, err := s.employees.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Employee with ID '%s' not found", employeeID)
		}
		return nil, apperror.Internal("Failed to retrieve employee attendance records", err)
	}

	records, err := s.attendance.List(ctx, repository.AttendanceFilter{EmployeeID: employeeID}, 0)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve employee attendance records", err)
	}

	views := make([]models.AttendanceView, 0, len(records))
	for _, record := range records {
		views = append(views, models.NewAttendanceView(record, &employee.FullName))
	}
	return views, nil
}

// Update changes status and/or remarks of a record.
func (s *Service) Update(ctx context.Context, attendanceID string, input models.AttendanceUpdate) (*models.AttendanceView, error) {
	record, err := s.find(ctx, attendanceID, "Failed to update attendance record")
	if err != nil {
		return nil, err
	}
	if input.Status == nil && input.Remarks == nil {
		return nil, apperror.BadRequest("No valid fields provided for update")
	}

	patch := models.AttendancePatch{Remarks: input.Remarks, UpdatedAt: s.now()}
	if input.Status != nil {
		status, err := models.ParseAttendanceStatus(*input.Status)
		if err != nil {
			return nil, apperror.Validation(apperror.FieldError{Field: "status", Message: "status must be one of [Present Absent]", Type: "oneof"})
		}
		patch.Status = &status
	}

	updated, err := s.attendance.Update(ctx, record.ID, patch)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Attendance record with ID '%s' not found", attendanceID)
		}
		return nil, apperror.Internal("Failed to update attendance record", err)
	}
	return s.joinOne(ctx, *updated, "Failed to update attendance record")
}

// Delete removes one record.
func (s *Service) Delete(ctx context.Context, attendanceID string) error {
	record, err := s.find(ctx, attendanceID, "Failed to delete attendance record")
	if err != nil {
		return err
	}

	if err := s.attendance.Delete(ctx, record.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Attendance record with ID '%s' not found", attendanceID)
		}
		return apperror.Internal("Failed to delete attendance record", err)
	}
	return nil
}

// Summary tallies an employee's attendance.
func (s *Service) Summary(ctx context.Context, employeeID string) (*models.AttendanceSummary, error) {
	employeeID = models.NormalizeEmployeeID(employeeID)
	const failure = "Failed to retrieve attendance summary"

	employee, err := s.employees.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Employee with ID '%s' not found", employeeID)
		}
		return nil, apperror.Internal(failure, err)
	}

	total, err := s.attendance.Count(ctx, repository.AttendanceFilter{EmployeeID: employeeID})
	if err != nil {
		return nil, apperror.Internal(failure, err)
	}
	present, err := s.attendance.Count(ctx, repository.AttendanceFilter{EmployeeID: employeeID, Status: models.StatusPresent})
	if err != nil {
		return nil, apperror.Internal(failure, err)
	}
	absent, err := s.attendance.Count(ctx, repository.AttendanceFilter{EmployeeID: employeeID, Status: models.StatusAbsent})
	if err != nil {
		return nil, apperror.Internal(failure, err)
	}

	return &models.AttendanceSummary{
		EmployeeID:           employeeID,
		EmployeeName:         employee.FullName,
		TotalDays:            total,
		PresentDays:          present,
		AbsentDays:           absent,
		AttendancePercentage: models.Percentage(present, total),
	}, nil
}

// Export writes the records matching query to w as an XLSX workbook.
func (s *Service) Export(ctx context.Context, query models.AttendanceQuery, w io.Writer) error {
	views, err := s.List(ctx, query)
	if err != nil {
		return err
	}
	if err := export.WriteAttendance(w, views); err != nil {
		return apperror.Internal("Failed to export attendance records", err)
	}
	return nil
}

func (s *Service) find(ctx context.Context, attendanceID, failure string) (*models.Attendance, error) {
	id, err := primitive.ObjectIDFromHex(attendanceID)
	if err != nil {
		return nil, apperror.BadRequest("Invalid attendance ID format")
	}

	record, err := s.attendance.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Attendance record with ID '%s' not found", attendanceID)
		}
		return nil, apperror.Internal(failure, err)
	}
	return record, nil
}

// join attaches current employee names. Records of deleted employees keep a nil name.
func (s *Service) join(ctx context.Context, records []models.Attendance) ([]models.AttendanceView, error) {
	seen := make(map[string]struct{}, len(records))
	ids := make([]string, 0, len(records))
	for _, record := range records {
		if _, ok := seen[record.EmployeeID]; ok {
			continue
		}
		seen[record.EmployeeID] = struct{}{}
		ids = append(ids, record.EmployeeID)
	}

	names, err := s.employees.Names(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("resolve employee names: %w", err)
	}

	views := make([]models.AttendanceView, 0, len(records))
	for _, record := range records {
		var name *string
		if n, ok := names[record.EmployeeID]; ok {
			name = &n
		}
		views = append(views, models.NewAttendanceView(record, name))
	}
	return views, nil
}

func (s *Service) joinOne(ctx context.Context, record models.Attendance, failure string) (*models.AttendanceView, error) {
	views, err := s.join(ctx, []models.Attendance{record})
	if err != nil {
		return nil, apperror.Internal(failure, err)
	}
	return &views[0], nil
}

func parseQuery(query models.AttendanceQuery) (repository.AttendanceFilter, error) {
	filter := repository.AttendanceFilter{EmployeeID: models.NormalizeEmployeeID(query.EmployeeID)}
	var fields []apperror.FieldError

	if query.StartDate != "" {
		start, err := models.ParseCalendarDate(query.StartDate)
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: "start_date", Message: err.Error(), Type: "date"})
		} else {
			filter.From = &start
		}
	}
	if query.EndDate != "" {
		end, err := models.ParseCalendarDate(query.EndDate)
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: "end_date", Message: err.Error(), Type: "date"})
		} else {
			end = models.EndOfDay(end)
			filter.To = &end
		}
	}
	if query.Status != "" {
		status, err := models.ParseAttendanceStatus(query.Status)
		if err != nil {
			fields = append(fields, apperror.FieldError{Field: "status", Message: "status must be one of [Present Absent]", Type: "oneof"})
		} else {
			filter.Status = status
		}
	}

	if len(fields) > 0 {
		return filter, apperror.Validation(fields...)
	}
	return filter, nil
}

func dayConflict(employeeID string, date time.Time) error {
	return apperror.Conflict("Attendance for employee '%s' on %s already exists", employeeID, date.Format(models.DateLayout))
}

package employees

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/apperror"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

// Directory is the employee registry consumed by the HTTP layer.
type Directory interface {
	Create(ctx context.Context, input models.EmployeeCreate) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	Get(ctx context.Context, employeeID string) (*models.Employee, error)
	Update(ctx context.Context, employeeID string, input models.EmployeeUpdate) (*models.Employee, error)
	Delete(ctx context.Context, employeeID string) error
}

// Service implements Directory on top of the employee and attendance stores.
type Service struct {
	employees  repository.EmployeeStore
	attendance repository.AttendanceStore
	logger     *zap.Logger
	now        func() time.Time
}

var _ Directory = (*Service)(nil)

// NewService wires a new employee directory.
func NewService(employees repository.EmployeeStore, attendance repository.AttendanceStore, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		employees:  employees,
		attendance: attendance,
		logger:     logger,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Create registers a new employee. The ID is checked before the email; the
// unique indexes catch whatever slips between check and insert.
func (s *Service) Create(ctx context.Context, input models.EmployeeCreate) (*models.Employee, error) {
	employeeID := models.NormalizeEmployeeID(input.EmployeeID)

	if _, err := s.employees.FindByEmployeeID(ctx, employeeID); err == nil {
		return nil, apperror.Conflict("Employee with ID '%s' already exists", employeeID)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("Failed to create employee", err)
	}

	if _, err := s.employees.FindByEmail(ctx, input.Email); err == nil {
		return nil, apperror.Conflict("Employee with email '%s' already exists", input.Email)
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.Internal("Failed to create employee", err)
	}

	now := s.now()
	employee := &models.Employee{
		EmployeeID: employeeID,
		FullName:   input.FullName,
		Email:      input.Email,
		Department: input.Department,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.employees.Insert(ctx, employee); err != nil {
		if conflict := duplicateConflict(err, employeeID, input.Email); conflict != nil {
			return nil, conflict
		}
		return nil, apperror.Internal("Failed to create employee", err)
	}

	s.logger.Info("employee created", zap.String("employee_id", employeeID))
	return employee, nil
}

// List returns all employees, newest first.
func (s *Service) List(ctx context.Context) ([]models.Employee, error) {
	employees, err := s.employees.List(ctx)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve employees", err)
	}
	return employees, nil
}

// Get returns one employee by business key.
func (s *Service) Get(ctx context.Context, employeeID string) (*models.Employee, error) {
	employeeID = models.NormalizeEmployeeID(employeeID)
	return s.find(ctx, employeeID, "Failed to retrieve employee")
}

// Update applies a partial update to an employee.
func (s *Service) Update(ctx context.Context, employeeID string, input models.EmployeeUpdate) (*models.Employee, error) {
	employeeID = models.NormalizeEmployeeID(employeeID)

	current, err := s.find(ctx, employeeID, "Failed to update employee")
	if err != nil {
		return nil, err
	}
	if input.Empty() {
		return nil, apperror.BadRequest("No valid fields provided for update")
	}

	if input.Email != nil && *input.Email != current.Email {
		owner, err := s.employees.FindByEmail(ctx, *input.Email)
		switch {
		case err == nil && owner.EmployeeID != employeeID:
			return nil, apperror.Conflict("Employee with email '%s' already exists", *input.Email)
		case err != nil && !errors.Is(err, repository.ErrNotFound):
			return nil, apperror.Internal("Failed to update employee", err)
		}
	}

	updated, err := s.employees.Update(ctx, employeeID, models.EmployeePatch{
		FullName:   input.FullName,
		Email:      input.Email,
		Department: input.Department,
		UpdatedAt:  s.now(),
	})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Employee with ID '%s' not found", employeeID)
		}
		email := ""
		if input.Email != nil {
			email = *input.Email
		}
		if conflict := duplicateConflict(err, employeeID, email); conflict != nil {
			return nil, conflict
		}
		return nil, apperror.Internal("Failed to update employee", err)
	}

	return updated, nil
}

// Delete removes an employee and then every attendance record it owns. The
// two writes are not atomic; a failure in between leaves orphaned records.
func (s *Service) Delete(ctx context.Context, employeeID string) error {
	employeeID = models.NormalizeEmployeeID(employeeID)

	if _, err := s.find(ctx, employeeID, "Failed to delete employee"); err != nil {
		return err
	}

	if err := s.employees.Delete(ctx, employeeID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperror.NotFound("Employee with ID '%s' not found", employeeID)
		}
		return apperror.Internal("Failed to delete employee", err)
	}

	removed, err := s.attendance.DeleteByEmployee(ctx, employeeID)
	if err != nil {
		s.logger.Error("employee deleted but attendance cascade failed",
			zap.String("employee_id", employeeID), zap.Error(err))
		return apperror.Internal("Failed to delete employee", fmt.Errorf("cascade attendance of %s: %w", employeeID, err))
	}

	s.logger.Info("employee deleted",
		zap.String("employee_id", employeeID),
		zap.Int64("attendance_removed", removed))
	return nil
}

func (s *Service) find(ctx context.Context, employeeID, failure string) (*models.Employee, error) {
	employee, err := s.employees.FindByEmployeeID(ctx, employeeID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperror.NotFound("Employee with ID '%s' not found", employeeID)
		}
		return nil, apperror.Internal(failure, err)
	}
	return employee, nil
}

func duplicateConflict(err error, employeeID, email string) *apperror.Error {
	var dup *repository.DuplicateKeyError
	if !errors.As(err, &dup) {
		return nil
	}
	if dup.Field == "email" {
		return apperror.Conflict("Employee with email '%s' already exists", email)
	}
	return apperror.Conflict("Employee with ID '%s' already exists", employeeID)
}

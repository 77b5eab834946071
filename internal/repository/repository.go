// Package repository declares the storage contracts used by the HR services.
package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
)

// ErrNotFound is returned when no document matches.
var ErrNotFound = errors.New("document not found")

// ErrDuplicateKey is returned when a write violates a unique index.
var ErrDuplicateKey = errors.New("duplicate key")

// DuplicateKeyError names the field whose unique index rejected a write.
type DuplicateKeyError struct {
	Field string
}

func (e *DuplicateKeyError) Error() string {
	if e.Field == "" {
		return ErrDuplicateKey.Error()
	}
	return ErrDuplicateKey.Error() + " on " + e.Field
}

// Is makes errors.Is(err, ErrDuplicateKey) match.
func (e *DuplicateKeyError) Is(target error) bool {
	return target == ErrDuplicateKey
}

// EmployeeStore persists employees.
type EmployeeStore interface {
	Insert(ctx context.Context, employee *models.Employee) error
	FindByEmployeeID(ctx context.Context, employeeID string) (*models.Employee, error)
	FindByEmail(ctx context.Context, email string) (*models.Employee, error)
	List(ctx context.Context) ([]models.Employee, error)
	Update(ctx context.Context, employeeID string, patch models.EmployeePatch) (*models.Employee, error)
	Delete(ctx context.Context, employeeID string) error
	Names(ctx context.Context, employeeIDs []string) (map[string]string, error)
	Count(ctx context.Context) (int64, error)
	CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error)
}

// AttendanceFilter narrows attendance queries. Zero values are ignored; From
// and To are inclusive.
type AttendanceFilter struct {
	EmployeeID string
	From       *time.Time
	To         *time.Time
	Status     models.AttendanceStatus
}

// AttendanceStore persists attendance records.
type AttendanceStore interface {
	Insert(ctx context.Context, record *models.Attendance) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error)
	Exists(ctx context.Context, employeeID string, date time.Time) (bool, error)
	// List returns matching records newest date first; limit <= 0 means no limit.
	List(ctx context.Context, filter AttendanceFilter, limit int64) ([]models.Attendance, error)
	Update(ctx context.Context, id primitive.ObjectID, patch models.AttendancePatch) (*models.Attendance, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	DeleteByEmployee(ctx context.Context, employeeID string) (int64, error)
	Count(ctx context.Context, filter AttendanceFilter) (int64, error)
}

// DigestStore persists daily digests, one per calendar day.
type DigestStore interface {
	SaveDailyDigest(ctx context.Context, digest models.DailyDigest) error
}

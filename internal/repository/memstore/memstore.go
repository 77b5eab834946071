// Package memstore is an in-memory implementation of the repository
// contracts used by service and router tests. It enforces the same unique
// keys as the MongoDB indexes.
package memstore

import (
	"bytes"
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

var (
	_ repository.EmployeeStore   = (*EmployeeStore)(nil)
	_ repository.AttendanceStore = (*AttendanceStore)(nil)
	_ repository.DigestStore     = (*DigestStore)(nil)
)

type dayKey struct {
	employeeID string
	date       int64
}

// Store holds all collections behind one lock.
type Store struct {
	mu         sync.RWMutex
	employees  map[string]models.Employee
	emails     map[string]string
	attendance map[primitive.ObjectID]models.Attendance
	days       map[dayKey]primitive.ObjectID
	digests    map[int64]models.DailyDigest
}

// New returns an empty store.
func New() *Store {
	return &Store{
		employees:  make(map[string]models.Employee),
		emails:     make(map[string]string),
		attendance: make(map[primitive.ObjectID]models.Attendance),
		days:       make(map[dayKey]primitive.ObjectID),
		digests:    make(map[int64]models.DailyDigest),
	}
}

// Employees returns the employee view of the store.
func (s *Store) Employees() *EmployeeStore { return &EmployeeStore{s} }

// Attendance returns the attendance view of the store.
func (s *Store) Attendance() *AttendanceStore { return &AttendanceStore{s} }

// Digests returns the digest view of the store.
func (s *Store) Digests() *DigestStore { return &DigestStore{s} }

// DailyDigests returns the stored digests ordered by date.
func (s *Store) DailyDigests() []models.DailyDigest {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.DailyDigest, 0, len(s.digests))
	for _, d := range s.digests {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out
}

// EmployeeStore implements repository.EmployeeStore.
type EmployeeStore struct{ s *Store }

func (e *EmployeeStore) Insert(_ context.Context, employee *models.Employee) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	if _, ok := e.s.employees[employee.EmployeeID]; ok {
		return &repository.DuplicateKeyError{Field: "employee_id"}
	}
	if _, ok := e.s.emails[employee.Email]; ok {
		return &repository.DuplicateKeyError{Field: "email"}
	}
	if employee.ID.IsZero() {
		employee.ID = primitive.NewObjectID()
	}

	e.s.employees[employee.EmployeeID] = *employee
	e.s.emails[employee.Email] = employee.EmployeeID
	return nil
}

func (e *EmployeeStore) FindByEmployeeID(_ context.Context, employeeID string) (*models.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	employee, ok := e.s.employees[employeeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &employee, nil
}

func (e *EmployeeStore) FindByEmail(_ context.Context, email string) (*models.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	id, ok := e.s.emails[email]
	if !ok {
		return nil, repository.ErrNotFound
	}
	employee := e.s.employees[id]
	return &employee, nil
}

func (e *EmployeeStore) List(_ context.Context) ([]models.Employee, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	out := make([]models.Employee, 0, len(e.s.employees))
	for _, employee := range e.s.employees {
		out = append(out, employee)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return bytes.Compare(out[i].ID[:], out[j].ID[:]) > 0
	})
	return out, nil
}

func (e *EmployeeStore) Update(_ context.Context, employeeID string, patch models.EmployeePatch) (*models.Employee, error) {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	employee, ok := e.s.employees[employeeID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Email != nil && *patch.Email != employee.Email {
		if _, taken := e.s.emails[*patch.Email]; taken {
			return nil, &repository.DuplicateKeyError{Field: "email"}
		}
		delete(e.s.emails, employee.Email)
		employee.Email = *patch.Email
		e.s.emails[employee.Email] = employeeID
	}
	if patch.FullName != nil {
		employee.FullName = *patch.FullName
	}
	if patch.Department != nil {
		employee.Department = *patch.Department
	}
	employee.UpdatedAt = patch.UpdatedAt

	e.s.employees[employeeID] = employee
	return &employee, nil
}

func (e *EmployeeStore) Delete(_ context.Context, employeeID string) error {
	e.s.mu.Lock()
	defer e.s.mu.Unlock()

	employee, ok := e.s.employees[employeeID]
	if !ok {
		return repository.ErrNotFound
	}
	delete(e.s.employees, employeeID)
	delete(e.s.emails, employee.Email)
	return nil
}

func (e *EmployeeStore) Names(_ context.Context, employeeIDs []string) (map[string]string, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	names := make(map[string]string, len(employeeIDs))
	for _, id := range employeeIDs {
		if employee, ok := e.s.employees[id]; ok {
			names[id] = employee.FullName
		}
	}
	return names, nil
}

func (e *EmployeeStore) Count(_ context.Context) (int64, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()
	return int64(len(e.s.employees)), nil
}

func (e *EmployeeStore) CountByDepartment(_ context.Context) ([]models.DepartmentCount, error) {
	e.s.mu.RLock()
	defer e.s.mu.RUnlock()

	counts := make(map[string]int64)
	for _, employee := range e.s.employees {
		counts[employee.Department]++
	}

	out := make([]models.DepartmentCount, 0, len(counts))
	for department, n := range counts {
		out = append(out, models.DepartmentCount{Department: department, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Department < out[j].Department
	})
	return out, nil
}

// AttendanceStore implements repository.AttendanceStore.
type AttendanceStore struct{ s *Store }

func keyOf(employeeID string, date time.Time) dayKey {
	return dayKey{employeeID: employeeID, date: date.UnixNano()}
}

func matches(record models.Attendance, filter repository.AttendanceFilter) bool {
	if filter.EmployeeID != "" && record.EmployeeID != filter.EmployeeID {
		return false
	}
	if filter.From != nil && record.Date.Before(*filter.From) {
		return false
	}
	if filter.To != nil && record.Date.After(*filter.To) {
		return false
	}
	if filter.Status != models.StatusUnknown && record.Status != filter.Status {
		return false
	}
	return true
}

func (a *AttendanceStore) Insert(_ context.Context, record *models.Attendance) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	key := keyOf(record.EmployeeID, record.Date)
	if _, ok := a.s.days[key]; ok {
		return &repository.DuplicateKeyError{Field: "employee_id,date"}
	}
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}

	a.s.attendance[record.ID] = *record
	a.s.days[key] = record.ID
	return nil
}

func (a *AttendanceStore) FindByID(_ context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	record, ok := a.s.attendance[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &record, nil
}

func (a *AttendanceStore) Exists(_ context.Context, employeeID string, date time.Time) (bool, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	_, ok := a.s.days[keyOf(employeeID, date)]
	return ok, nil
}

func (a *AttendanceStore) List(_ context.Context, filter repository.AttendanceFilter, limit int64) ([]models.Attendance, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	out := make([]models.Attendance, 0)
	for _, record := range a.s.attendance {
		if matches(record, filter) {
			out = append(out, record)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if limit > 0 && int64(len(out)) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (a *AttendanceStore) Update(_ context.Context, id primitive.ObjectID, patch models.AttendancePatch) (*models.Attendance, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	record, ok := a.s.attendance[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	if patch.Status != nil {
		record.Status = *patch.Status
	}
	if patch.Remarks != nil {
		remarks := *patch.Remarks
		record.Remarks = &remarks
	}
	record.UpdatedAt = patch.UpdatedAt

	a.s.attendance[id] = record
	return &record, nil
}

func (a *AttendanceStore) Delete(_ context.Context, id primitive.ObjectID) error {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	record, ok := a.s.attendance[id]
	if !ok {
		return repository.ErrNotFound
	}
	delete(a.s.attendance, id)
	delete(a.s.days, keyOf(record.EmployeeID, record.Date))
	return nil
}

func (a *AttendanceStore) DeleteByEmployee(_ context.Context, employeeID string) (int64, error) {
	a.s.mu.Lock()
	defer a.s.mu.Unlock()

	var n int64
	for id, record := range a.s.attendance {
		if record.EmployeeID != employeeID {
			continue
		}
		delete(a.s.attendance, id)
		delete(a.s.days, keyOf(record.EmployeeID, record.Date))
		n++
	}
	return n, nil
}

func (a *AttendanceStore) Count(_ context.Context, filter repository.AttendanceFilter) (int64, error) {
	a.s.mu.RLock()
	defer a.s.mu.RUnlock()

	var n int64
	for _, record := range a.s.attendance {
		if matches(record, filter) {
			n++
		}
	}
	return n, nil
}

// DigestStore implements repository.DigestStore.
type DigestStore struct{ s *Store }

// SaveDailyDigest replaces any digest stored for the same day, keeping the
// first CreatedAt.
func (d *DigestStore) SaveDailyDigest(_ context.Context, digest models.DailyDigest) error {
	d.s.mu.Lock()
	defer d.s.mu.Unlock()

	key := digest.Date.UnixNano()
	if prev, ok := d.s.digests[key]; ok {
		digest.CreatedAt = prev.CreatedAt
	}
	d.s.digests[key] = digest
	return nil
}

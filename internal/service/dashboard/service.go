package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/apperror"
	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

const (
	recentLimit = 10
	unknownName = "Unknown"
)

// Aggregator produces the dashboard statistics.
type Aggregator interface {
	Snapshot(ctx context.Context) (*models.DashboardSnapshot, error)
}

// Service implements Aggregator with read-only store queries.
type Service struct {
	employees  repository.EmployeeStore
	attendance repository.AttendanceStore
	loc        *time.Location
	logger     *zap.Logger
	now        func() time.Time
}

var _ Aggregator = (*Service)(nil)

// NewService wires a dashboard aggregator. "Today" is the calendar day in loc.
func NewService(employees repository.EmployeeStore, attendance repository.AttendanceStore, loc *time.Location, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		employees:  employees,
		attendance: attendance,
		loc:        loc,
		logger:     logger,
		now:        time.Now,
	}
}

// Snapshot computes the statistics as of now.
func (s *Service) Snapshot(ctx context.Context) (*models.DashboardSnapshot, error) {
	return s.SnapshotAt(ctx, s.now())
}

// SnapshotAt computes the statistics for the calendar day containing at.
func (s *Service) SnapshotAt(ctx context.Context, at time.Time) (*models.DashboardSnapshot, error) {
	snapshot, err := s.snapshot(ctx, at)
	if err != nil {
		return nil, apperror.Internal("Failed to retrieve dashboard statistics", err)
	}
	return snapshot, nil
}

func (s *Service) snapshot(ctx context.Context, at time.Time) (*models.DashboardSnapshot, error) {
	todayStart := models.StartOfDay(at.In(s.loc))
	todayEnd := models.EndOfDay(todayStart)
	today := repository.AttendanceFilter{From: &todayStart, To: &todayEnd}

	var summary models.DashboardSummary
	var err error

	if summary.TotalEmployees, err = s.employees.Count(ctx); err != nil {
		return nil, err
	}

	today.Status = models.StatusPresent
	if summary.TodayPresent, err = s.attendance.Count(ctx, today); err != nil {
		return nil, err
	}
	today.Status = models.StatusAbsent
	if summary.TodayAbsent, err = s.attendance.Count(ctx, today); err != nil {
		return nil, err
	}

	if summary.TotalAttendanceRecords, err = s.attendance.Count(ctx, repository.AttendanceFilter{}); err != nil {
		return nil, err
	}
	if summary.TotalPresent, err = s.attendance.Count(ctx, repository.AttendanceFilter{Status: models.StatusPresent}); err != nil {
		return nil, err
	}
	if summary.TotalAbsent, err = s.attendance.Count(ctx, repository.AttendanceFilter{Status: models.StatusAbsent}); err != nil {
		return nil, err
	}

	summary.TodayTotal = summary.TodayPresent + summary.TodayAbsent
	summary.TodayAttendancePercentage = models.Percentage(summary.TodayPresent, summary.TodayTotal)
	summary.OverallAttendancePercentage = models.Percentage(summary.TotalPresent, summary.TotalAttendanceRecords)

	departments, err := s.employees.CountByDepartment(ctx)
	if err != nil {
		return nil, err
	}

	recent, err := s.recent(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("dashboard snapshot computed",
		zap.Int64("employees", summary.TotalEmployees),
		zap.Int64("today_total", summary.TodayTotal))

	return &models.DashboardSnapshot{
		Summary:          summary,
		Departments:      departments,
		RecentAttendance: recent,
		TodayDate:        todayStart.Format(models.DateLayout),
	}, nil
}

func (s *Service) recent(ctx context.Context) ([]models.RecentAttendance, error) {
	records, err := s.attendance.List(ctx, repository.AttendanceFilter{}, recentLimit)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(records))
	for _, record := range records {
		ids = append(ids, record.EmployeeID)
	}
	names, err := s.employees.Names(ctx, ids)
	if err != nil {
		return nil, err
	}

	recent := make([]models.RecentAttendance, 0, len(records))
	for _, record := range records {
		name, ok := names[record.EmployeeID]
		if !ok {
			name = unknownName
		}
		recent = append(recent, models.RecentAttendance{
			EmployeeID:   record.EmployeeID,
			EmployeeName: name,
			Date:         record.Date.UTC().Format(models.DateLayout),
			Status:       record.Status,
		})
	}
	return recent, nil
}

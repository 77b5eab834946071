package reporting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
	"github.com/tillnow2/hrms-lite-be/internal/repository/sheets"
)

// SnapshotSource yields the dashboard figures for the day containing at.
type SnapshotSource interface {
	SnapshotAt(ctx context.Context, at time.Time) (*models.DashboardSnapshot, error)
}

// Notifier pushes a JSON payload to an external endpoint.
type Notifier interface {
	Send(ctx context.Context, payload any) error
}

// Sinks lists the optional digest destinations. Nil members are skipped.
type Sinks struct {
	Sheet      sheets.Repository
	SheetRange string
	Notifier   Notifier
}

// DigestMessage is the webhook body; Text renders in chat-style receivers.
type DigestMessage struct {
	Text   string             `json:"text"`
	Digest models.DailyDigest `json:"digest"`
}

// Service builds the end-of-day attendance digest and fans it out.
type Service struct {
	source  SnapshotSource
	digests repository.DigestStore
	sinks   Sinks
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new reporting service instance.
func NewService(source SnapshotSource, digests repository.DigestStore, sinks Sinks, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		source:  source,
		digests: digests,
		sinks:   sinks,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// GenerateDailyDigest summarises the calendar day containing at.
func (s *Service) GenerateDailyDigest(ctx context.Context, at time.Time) (models.DailyDigest, error) {
	snapshot, err := s.source.SnapshotAt(ctx, at)
	if err != nil {
		return models.DailyDigest{}, fmt.Errorf("load dashboard snapshot: %w", err)
	}

	day, err := time.Parse(models.DateLayout, snapshot.TodayDate)
	if err != nil {
		return models.DailyDigest{}, fmt.Errorf("parse snapshot date %q: %w", snapshot.TodayDate, err)
	}

	summary := snapshot.Summary
	unmarked := summary.TotalEmployees - summary.TodayPresent - summary.TodayAbsent
	if unmarked < 0 {
		unmarked = 0
	}

	return models.DailyDigest{
		Date:                 day,
		TotalEmployees:       summary.TotalEmployees,
		Present:              summary.TodayPresent,
		Absent:               summary.TodayAbsent,
		Unmarked:             unmarked,
		AttendancePercentage: summary.TodayAttendancePercentage,
		Departments:          snapshot.Departments,
		CreatedAt:            s.now(),
	}, nil
}

// PublishDailyDigest generates the digest and delivers it to every sink.
// Each sink is attempted; the first failure is returned.
func (s *Service) PublishDailyDigest(ctx context.Context, at time.Time) (models.DailyDigest, error) {
	digest, err := s.GenerateDailyDigest(ctx, at)
	if err != nil {
		return digest, err
	}

	var firstErr error
	record := func(sink string, err error) {
		if err == nil {
			s.logger.Debug("digest delivered", zap.String("sink", sink))
			return
		}
		s.logger.Error("digest delivery failed", zap.String("sink", sink), zap.Error(err))
		if firstErr == nil {
			firstErr = fmt.Errorf("deliver digest to %s: %w", sink, err)
		}
	}

	record("mongodb", s.digests.SaveDailyDigest(ctx, digest))

	if s.sinks.Sheet != nil {
		record("sheets", s.sinks.Sheet.WriteRow(ctx, s.sinks.SheetRange, SheetRow(digest)))
	}

	if s.sinks.Notifier != nil {
		record("webhook", s.sinks.Notifier.Send(ctx, DigestMessage{Text: FormatDigest(digest), Digest: digest}))
	}

	if firstErr == nil {
		s.logger.Info("daily digest published",
			zap.String("date", digest.Date.Format(models.DateLayout)),
			zap.Int64("present", digest.Present),
			zap.Int64("absent", digest.Absent),
			zap.Int64("unmarked", digest.Unmarked))
	}
	return digest, firstErr
}

// SheetRow flattens a digest into one spreadsheet row.
func SheetRow(d models.DailyDigest) []interface{} {
	return []interface{}{
		d.Date.Format(models.DateLayout),
		d.TotalEmployees,
		d.Present,
		d.Absent,
		d.Unmarked,
		d.AttendancePercentage,
	}
}

// FormatDigest renders a digest as a short plain-text message.
func FormatDigest(d models.DailyDigest) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Attendance %s: %d present, %d absent, %d unmarked of %d employees (%.2f%%).",
		d.Date.Format(models.DateLayout), d.Present, d.Absent, d.Unmarked, d.TotalEmployees, d.AttendancePercentage)

	if len(d.Departments) > 0 {
		parts := make([]string, 0, len(d.Departments))
		for _, dept := range d.Departments {
			parts = append(parts, fmt.Sprintf("%s %d", dept.Department, dept.Count))
		}
		b.WriteString(" Headcount: ")
		b.WriteString(strings.Join(parts, ", "))
		b.WriteString(".")
	}
	return b.String()
}

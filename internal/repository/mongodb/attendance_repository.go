package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

var _ repository.AttendanceStore = (*AttendanceRepository)(nil)

// AttendanceRepository implements repository.AttendanceStore on the attendance collection.
type AttendanceRepository struct {
	coll *mongo.Collection
}

// NewAttendanceRepository creates a repository bound to db.attendance.
func NewAttendanceRepository(db *mongo.Database) *AttendanceRepository {
	return &AttendanceRepository{coll: db.Collection(attendanceCollection)}
}

func attendanceQuery(filter repository.AttendanceFilter) bson.M {
	query := bson.M{}
	if filter.EmployeeID != "" {
		query["employee_id"] = filter.EmployeeID
	}
	if filter.From != nil || filter.To != nil {
		dateRange := bson.M{}
		if filter.From != nil {
			dateRange["$gte"] = *filter.From
		}
		if filter.To != nil {
			dateRange["$lte"] = *filter.To
		}
		query["date"] = dateRange
	}
	if filter.Status != models.StatusUnknown {
		query["status"] = filter.Status.String()
	}
	return query
}

// Insert stores a new attendance record and sets its ID.
func (r *AttendanceRepository) Insert(ctx context.Context, record *models.Attendance) error {
	if record.ID.IsZero() {
		record.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, record); err != nil {
		return fmt.Errorf("insert attendance for %s: %w", record.EmployeeID, translateError(err))
	}
	return nil
}

// FindByID loads one record by storage key.
func (r *AttendanceRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Attendance, error) {
	var record models.Attendance
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&record); err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// Exists reports whether the employee already has a record for date.
func (r *AttendanceRepository) Exists(ctx context.Context, employeeID string, date time.Time) (bool, error) {
	n, err := r.coll.CountDocuments(ctx, bson.M{"employee_id": employeeID, "date": date}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("check attendance for %s: %w", employeeID, err)
	}
	return n > 0, nil
}

// List returns matching records, newest date first.
func (r *AttendanceRepository) List(ctx context.Context, filter repository.AttendanceFilter, limit int64) ([]models.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}, {Key: "created_at", Value: -1}})
	if limit > 0 {
		opts.SetLimit(limit)
	}

	cursor, err := r.coll.Find(ctx, attendanceQuery(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find attendance: %w", err)
	}

	records := make([]models.Attendance, 0)
	if err := cursor.All(ctx, &records); err != nil {
		return nil, fmt.Errorf("decode attendance: %w", err)
	}
	return records, nil
}

// Update applies patch and returns the updated record.
func (r *AttendanceRepository) Update(ctx context.Context, id primitive.ObjectID, patch models.AttendancePatch) (*models.Attendance, error) {
	set := bson.M{"updated_at": patch.UpdatedAt}
	if patch.Status != nil {
		set["status"] = patch.Status.String()
	}
	if patch.Remarks != nil {
		set["remarks"] = *patch.Remarks
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var record models.Attendance
	if err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&record); err != nil {
		return nil, translateError(err)
	}
	return &record, nil
}

// Delete removes one record.
func (r *AttendanceRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("delete attendance %s: %w", id.Hex(), err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// DeleteByEmployee removes every record of an employee and returns how many were removed.
func (r *AttendanceRepository) DeleteByEmployee(ctx context.Context, employeeID string) (int64, error) {
	res, err := r.coll.DeleteMany(ctx, bson.M{"employee_id": employeeID})
	if err != nil {
		return 0, fmt.Errorf("delete attendance of %s: %w", employeeID, err)
	}
	return res.DeletedCount, nil
}

// Count returns the number of matching records.
func (r *AttendanceRepository) Count(ctx context.Context, filter repository.AttendanceFilter) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, attendanceQuery(filter))
	if err != nil {
		return 0, fmt.Errorf("count attendance: %w", err)
	}
	return n, nil
}

package mongodb

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tillnow2/hrms-lite-be/internal/domain/models"
	"github.com/tillnow2/hrms-lite-be/internal/repository"
)

var _ repository.EmployeeStore = (*EmployeeRepository)(nil)

// EmployeeRepository implements repository.EmployeeStore on the employees collection.
type EmployeeRepository struct {
	coll *mongo.Collection
}

// NewEmployeeRepository creates a repository bound to db.employees.
func NewEmployeeRepository(db *mongo.Database) *EmployeeRepository {
	return &EmployeeRepository{coll: db.Collection(employeesCollection)}
}

// Insert stores a new employee and sets its ID.
func (r *EmployeeRepository) Insert(ctx context.Context, employee *models.Employee) error {
	if employee.ID.IsZero() {
		employee.ID = primitive.NewObjectID()
	}
	if _, err := r.coll.InsertOne(ctx, employee); err != nil {
		return fmt.Errorf("insert employee %s: %w", employee.EmployeeID, translateError(err))
	}
	return nil
}

// FindByEmployeeID looks an employee up by business key.
func (r *EmployeeRepository) FindByEmployeeID(ctx context.Context, employeeID string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"employee_id": employeeID})
}

// FindByEmail looks an employee up by email.
func (r *EmployeeRepository) FindByEmail(ctx context.Context, email string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *EmployeeRepository) findOne(ctx context.Context, filter bson.M) (*models.Employee, error) {
	var employee models.Employee
	if err := r.coll.FindOne(ctx, filter).Decode(&employee); err != nil {
		return nil, translateError(err)
	}
	return &employee, nil
}

// List returns every employee, newest first.
func (r *EmployeeRepository) List(ctx context.Context) ([]models.Employee, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})

	cursor, err := r.coll.Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find employees: %w", err)
	}

	employees := make([]models.Employee, 0)
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	return employees, nil
}

// Update applies patch and returns the updated employee.
func (r *EmployeeRepository) Update(ctx context.Context, employeeID string, patch models.EmployeePatch) (*models.Employee, error) {
	set := bson.M{"updated_at": patch.UpdatedAt}
	if patch.FullName != nil {
		set["full_name"] = *patch.FullName
	}
	if patch.Email != nil {
		set["email"] = *patch.Email
	}
	if patch.Department != nil {
		set["department"] = *patch.Department
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var employee models.Employee
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"employee_id": employeeID}, bson.M{"$set": set}, opts).Decode(&employee)
	if err != nil {
		return nil, translateError(err)
	}
	return &employee, nil
}

// Delete removes the employee with the given business key.
func (r *EmployeeRepository) Delete(ctx context.Context, employeeID string) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"employee_id": employeeID})
	if err != nil {
		return fmt.Errorf("delete employee %s: %w", employeeID, err)
	}
	if res.DeletedCount == 0 {
		return repository.ErrNotFound
	}
	return nil
}

// Names resolves display names for a set of employee IDs. Unknown IDs are absent from the map.
func (r *EmployeeRepository) Names(ctx context.Context, employeeIDs []string) (map[string]string, error) {
	names := make(map[string]string, len(employeeIDs))
	if len(employeeIDs) == 0 {
		return names, nil
	}

	opts := options.Find().SetProjection(bson.M{"employee_id": 1, "full_name": 1})
	cursor, err := r.coll.Find(ctx, bson.M{"employee_id": bson.M{"$in": employeeIDs}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find employee names: %w", err)
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var row struct {
			EmployeeID string `bson:"employee_id"`
			FullName   string `bson:"full_name"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, fmt.Errorf("decode employee name: %w", err)
		}
		names[row.EmployeeID] = row.FullName
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate employee names: %w", err)
	}

	return names, nil
}

// Count returns the number of employees.
func (r *EmployeeRepository) Count(ctx context.Context) (int64, error) {
	n, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count employees: %w", err)
	}
	return n, nil
}

// CountByDepartment groups employees by department, largest first.
func (r *EmployeeRepository) CountByDepartment(ctx context.Context) ([]models.DepartmentCount, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$department"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
		{{Key: "$sort", Value: bson.D{{Key: "count", Value: -1}, {Key: "_id", Value: 1}}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("aggregate departments: %w", err)
	}

	departments := make([]models.DepartmentCount, 0)
	if err := cursor.All(ctx, &departments); err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}
	return departments, nil
}

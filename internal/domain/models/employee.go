package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Employee is a record in the employees collection. EmployeeID is the
// business key; ID is the storage key.
type Employee struct {
	ID         primitive.ObjectID `bson:"_id,omitempty" json:"_id"`
	EmployeeID string             `bson:"employee_id" json:"employee_id"`
	FullName   string             `bson:"full_name" json:"full_name"`
	Email      string             `bson:"email" json:"email"`
	Department string             `bson:"department" json:"department"`
	CreatedAt  time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at" json:"updated_at"`
}

// EmployeeCreate is the request body for registering an employee.
type EmployeeCreate struct {
	EmployeeID string `json:"employee_id" binding:"required,notblank,max=64"`
	FullName   string `json:"full_name" binding:"required,notblank,max=200"`
	Email      string `json:"email" binding:"required,email"`
	Department string `json:"department" binding:"required,notblank,max=100"`
}

// EmployeeUpdate is a partial update; nil fields are left untouched.
type EmployeeUpdate struct {
	FullName   *string `json:"full_name" binding:"omitempty,notblank,max=200"`
	Email      *string `json:"email" binding:"omitempty,email"`
	Department *string `json:"department" binding:"omitempty,notblank,max=100"`
}

// Empty reports whether the update carries no field.
func (u EmployeeUpdate) Empty() bool {
	return u.FullName == nil && u.Email == nil && u.Department == nil
}

// EmployeePatch is the storage-level form of an EmployeeUpdate.
type EmployeePatch struct {
	FullName   *string
	Email      *string
	Department *string
	UpdatedAt  time.Time
}

// NormalizeEmployeeID canonicalises an employee identifier.
func NormalizeEmployeeID(id string) string {
	return strings.ToUpper(strings.TrimSpace(id))
}

// DepartmentCount is one row of the per-department head count.
type DepartmentCount struct {
	Department string `bson:"_id" json:"department"`
	Count      int64  `bson:"count" json:"count"`
}

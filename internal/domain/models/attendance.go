package models

import (
	"encoding/json"
	"fmt"
	"reflect"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/bsontype"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// DateLayout is the wire format of calendar dates.
const DateLayout = "2006-01-02"

// AttendanceStatus is the closed set of attendance outcomes. It is stored and
// rendered as "Present" or "Absent".
type AttendanceStatus int

const (
	StatusUnknown AttendanceStatus = iota
	StatusPresent
	StatusAbsent
)

// ParseAttendanceStatus converts a wire literal into an AttendanceStatus.
func ParseAttendanceStatus(s string) (AttendanceStatus, error) {
	switch s {
	case "Present":
		return StatusPresent, nil
	case "Absent":
		return StatusAbsent, nil
	default:
		return StatusUnknown, fmt.Errorf("unknown attendance status %q", s)
	}
}

func (s AttendanceStatus) String() string {
	switch s {
	case StatusPresent:
		return "Present"
	case StatusAbsent:
		return "Absent"
	default:
		return "Unknown"
	}
}

// MarshalJSON renders the status literal.
func (s AttendanceStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON accepts only the two status literals.
func (s *AttendanceStatus) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseAttendanceStatus(raw)
	if err != nil {
		return &json.UnmarshalTypeError{Value: "string " + raw, Type: reflect.TypeOf(*s)}
	}
	*s = parsed
	return nil
}

// MarshalBSONValue stores the status as its string literal.
func (s AttendanceStatus) MarshalBSONValue() (bsontype.Type, []byte, error) {
	if s == StatusUnknown {
		return 0, nil, fmt.Errorf("refusing to store unknown attendance status")
	}
	return bson.MarshalValue(s.String())
}

// UnmarshalBSONValue reads the string literal back into the enum.
func (s *AttendanceStatus) UnmarshalBSONValue(t bsontype.Type, data []byte) error {
	raw, ok := bson.RawValue{Type: t, Value: data}.StringValueOK()
	if !ok {
		return fmt.Errorf("attendance status must be a string, got %s", t)
	}
	parsed, err := ParseAttendanceStatus(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Attendance is a record in the attendance collection.
type Attendance struct {
	ID         primitive.ObjectID `bson:"_id,omitempty"`
	EmployeeID string             `bson:"employee_id"`
	Date       time.Time          `bson:"date"`
	Status     AttendanceStatus   `bson:"status"`
	Remarks    *string            `bson:"remarks"`
	CreatedAt  time.Time          `bson:"created_at"`
	UpdatedAt  time.Time          `bson:"updated_at"`
}

// AttendanceCreate is the request body for marking attendance.
type AttendanceCreate struct {
	EmployeeID string  `json:"employee_id" binding:"required,notblank"`
	Date       string  `json:"date" binding:"required,calendardate"`
	Status     string  `json:"status" binding:"required,oneof=Present Absent"`
	Remarks    *string `json:"remarks" binding:"omitempty,max=500"`
}

// AttendanceUpdate is a partial update; null or missing fields are ignored.
type AttendanceUpdate struct {
	Status  *string `json:"status" binding:"omitempty,oneof=Present Absent"`
	Remarks *string `json:"remarks" binding:"omitempty,max=500"`
}

// AttendancePatch is the storage-level form of an AttendanceUpdate.
type AttendancePatch struct {
	Status    *AttendanceStatus
	Remarks   *string
	UpdatedAt time.Time
}

// AttendanceView is an attendance record joined with the employee's current
// display name. EmployeeName is nil when the employee no longer exists.
type AttendanceView struct {
	ID           string           `json:"_id"`
	EmployeeID   string           `json:"employee_id"`
	EmployeeName *string          `json:"employee_name"`
	Date         string           `json:"date"`
	Status       AttendanceStatus `json:"status"`
	Remarks      *string          `json:"remarks"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// NewAttendanceView joins a record with an optional employee name.
func NewAttendanceView(a Attendance, employeeName *string) AttendanceView {
	return AttendanceView{
		ID:           a.ID.Hex(),
		EmployeeID:   a.EmployeeID,
		EmployeeName: employeeName,
		Date:         a.Date.UTC().Format(DateLayout),
		Status:       a.Status,
		Remarks:      a.Remarks,
		CreatedAt:    a.CreatedAt,
		UpdatedAt:    a.UpdatedAt,
	}
}

// AttendanceSummary is the per-employee attendance tally.
type AttendanceSummary struct {
	EmployeeID           string  `json:"employee_id"`
	EmployeeName         string  `json:"employee_name"`
	TotalDays            int64   `json:"total_days"`
	PresentDays          int64   `json:"present_days"`
	AbsentDays           int64   `json:"absent_days"`
	AttendancePercentage float64 `json:"attendance_percentage"`
}

// AttendanceQuery holds the optional list filters taken from the query string.
type AttendanceQuery struct {
	EmployeeID string `form:"employee_id"`
	StartDate  string `form:"start_date" binding:"omitempty,calendardate"`
	EndDate    string `form:"end_date" binding:"omitempty,calendardate"`
	Status     string `form:"status" binding:"omitempty,oneof=Present Absent"`
}

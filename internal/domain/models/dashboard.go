package models

import "time"

// DashboardSummary carries the headline counters of the dashboard.
type DashboardSummary struct {
	TotalEmployees              int64   `json:"total_employees"`
	TotalAttendanceRecords      int64   `json:"total_attendance_records"`
	TodayPresent                int64   `json:"today_present"`
	TodayAbsent                 int64   `json:"today_absent"`
	TodayTotal                  int64   `json:"today_total"`
	TodayAttendancePercentage   float64 `json:"today_attendance_percentage"`
	TotalPresent                int64   `json:"total_present"`
	TotalAbsent                 int64   `json:"total_absent"`
	OverallAttendancePercentage float64 `json:"overall_attendance_percentage"`
}

// RecentAttendance is one entry of the dashboard's recent activity feed.
type RecentAttendance struct {
	EmployeeID   string           `json:"employee_id"`
	EmployeeName string           `json:"employee_name"`
	Date         string           `json:"date"`
	Status       AttendanceStatus `json:"status"`
}

// DashboardSnapshot is the aggregate returned by the dashboard endpoint.
type DashboardSnapshot struct {
	Summary          DashboardSummary   `json:"summary"`
	Departments      []DepartmentCount  `json:"departments"`
	RecentAttendance []RecentAttendance `json:"recent_attendance"`
	TodayDate        string             `json:"today_date"`
}

// DailyDigest is the end-of-day attendance report stored in daily_digests
// and pushed to the configured sinks.
type DailyDigest struct {
	Date                 time.Time         `bson:"date" json:"date"`
	TotalEmployees       int64             `bson:"total_employees" json:"total_employees"`
	Present              int64             `bson:"present" json:"present"`
	Absent               int64             `bson:"absent" json:"absent"`
	Unmarked             int64             `bson:"unmarked" json:"unmarked"`
	AttendancePercentage float64           `bson:"attendance_percentage" json:"attendance_percentage"`
	Departments          []DepartmentCount `bson:"departments" json:"departments"`
	CreatedAt            time.Time         `bson:"created_at" json:"created_at"`
}

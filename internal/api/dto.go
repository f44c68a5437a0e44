package api

import (
	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/stats"
)

// ErrorResponse is the body of every non-2xx JSON reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// HolidayDTO is one public holiday.
type HolidayDTO struct {
	Date string `json:"date"`
	Name string `json:"name"`
}

// CreateEmployeeRequest registers an employee.
type CreateEmployeeRequest struct {
	Name string `json:"name"`
}

// MonthResponse is the month view of one employee.
type MonthResponse struct {
	Employee    string            `json:"employee"`
	Month       string            `json:"month"`
	WeeklyHours float64           `json:"weekly_hours"`
	Entries     model.MonthBucket `json:"entries"`
	Rows        []stats.Row       `json:"rows"`
	Summary     stats.Summary     `json:"summary"`
}

// DayRequest replaces or edits one day. Kind is "worked" (default),
// "sick", "vacation" or "cleared". For worked days only the given fields
// are changed.
type DayRequest struct {
	Kind string `json:"kind"`
	model.Patch
}

// DayResponse echoes the stored day.
type DayResponse struct {
	Date  string         `json:"date"`
	Entry model.DayEntry `json:"entry"`
}

// YearResponse lists the yearly summary of every employee.
type YearResponse struct {
	Year      int               `json:"year"`
	Employees []EmployeeSummary `json:"employees"`
}

// EmployeeSummary is one row of YearResponse.
type EmployeeSummary struct {
	Employee    string        `json:"employee"`
	WeeklyHours float64       `json:"weekly_hours"`
	Summary     stats.Summary `json:"summary"`
}

// SettingsRequest sets the weekly hours of an employee.
type SettingsRequest struct {
	WeeklyHours float64 `json:"weekly_hours"`
}

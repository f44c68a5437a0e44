package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"mime"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Tiliavir/arbeitszeit/internal/calendar"
	"github.com/Tiliavir/arbeitszeit/internal/export"
	"github.com/Tiliavir/arbeitszeit/internal/model"
	"github.com/Tiliavir/arbeitszeit/internal/report"
	"github.com/Tiliavir/arbeitszeit/internal/stats"
	"github.com/Tiliavir/arbeitszeit/internal/storage"
	"github.com/Tiliavir/arbeitszeit/internal/timecalc"
)

// Handler holds the dependencies of every route.
type Handler struct {
	Store        storage.Store
	Company      string
	Region       string
	WeeklyHours  float64
	AdminName    string
	DefaultStart string

	// Now returns the current time; defaults to time.Now.
	Now func() time.Time
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// ListHolidays returns the holidays of a year.
// GET /api/holidays/{year}?region=
func (h *Handler) ListHolidays(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}
	region := r.URL.Query().Get("region")
	if region == "" {
		region = h.Region
	}

	holidays := calendar.Holidays(year, region)
	dtos := make([]HolidayDTO, 0, len(holidays))
	for date, name := range holidays {
		dtos = append(dtos, HolidayDTO{Date: date, Name: name})
	}
	sort.Slice(dtos, func(i, j int) bool { return dtos[i].Date < dtos[j].Date })
	writeJSON(w, http.StatusOK, dtos)
}

// ListEmployees returns the registered employee names.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	names, err := h.Store.LoadEmployees(r.Context())
	if err != nil {
		writeInternal(w, "Failed to list employees", err)
		return
	}
	writeJSON(w, http.StatusOK, names)
}

// CreateEmployee registers an employee. Registering twice is not an error.
// POST /api/employees
func (h *Handler) CreateEmployee(w http.ResponseWriter, r *http.Request) {
	var req CreateEmployeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	name, err := storage.ValidateEmployee(req.Name)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return
	}
	if err := h.Store.AddEmployee(r.Context(), name); err != nil {
		writeInternal(w, "Failed to add employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, CreateEmployeeRequest{Name: name})
}

// GetMonth returns entries, classified rows and statistics of a month.
// GET /api/employees/{name}/months/{month}
func (h *Handler) GetMonth(w http.ResponseWriter, r *http.Request) {
	name, monthKey, ok := monthParams(w, r)
	if !ok {
		return
	}
	bucket, hours, err := h.loadMonth(r, name, monthKey)
	if err != nil {
		writeInternal(w, "Failed to load month", err)
		return
	}

	writeJSON(w, http.StatusOK, MonthResponse{
		Employee:    name,
		Month:       monthKey,
		WeeklyHours: hours,
		Entries:     bucket,
		Rows:        stats.DayRows(bucket, monthKey, h.Region),
		Summary:     stats.Monthly(bucket, monthKey, hours, h.Region),
	})
}

// GetWeek returns the statistics of the week containing date (default today).
// Only days of date's month are counted.
// GET /api/employees/{name}/week?date=
func (h *Handler) GetWeek(w http.ResponseWriter, r *http.Request) {
	name, ok := employeeParam(w, r)
	if !ok {
		return
	}
	day := h.now()
	if q := r.URL.Query().Get("date"); q != "" {
		t, err := timecalc.ParseDate(q)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		day = t
	}
	monthKey := timecalc.MonthKey(day)

	bucket, hours, err := h.loadMonth(r, name, monthKey)
	if err != nil {
		writeInternal(w, "Failed to load month", err)
		return
	}
	writeJSON(w, http.StatusOK, stats.Weekly(bucket, monthKey, day, hours))
}

// PutDay stores one day.
// PUT /api/employees/{name}/days/{date}
func (h *Handler) PutDay(w http.ResponseWriter, r *http.Request) {
	name, ok := employeeParam(w, r)
	if !ok {
		return
	}
	date := chi.URLParam(r, "date")
	monthKey, err := storage.ValidateDate(date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	var req DayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	ctx := r.Context()
	bucket, err := h.Store.LoadMonth(ctx, name, monthKey)
	if err != nil {
		writeInternal(w, "Failed to load month", err)
		return
	}
	entry, err := h.applyDay(bucket[date], req)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid day", err)
		return
	}

	if err := h.Store.AddEmployee(ctx, name); err != nil {
		writeInternal(w, "Failed to register employee", err)
		return
	}
	if err := h.Store.SaveDay(ctx, name, date, entry); err != nil {
		writeInternal(w, "Failed to save day", err)
		return
	}
	writeJSON(w, http.StatusOK, DayResponse{Date: date, Entry: entry})
}

func (h *Handler) applyDay(existing model.DayEntry, req DayRequest) (model.DayEntry, error) {
	switch req.Kind {
	case "", model.KindWorked.String():
		if req.Patch.IsEmpty() {
			return model.DayEntry{}, errors.New("worked day needs start, end or break")
		}
		if err := req.Patch.Validate(); err != nil {
			return model.DayEntry{}, err
		}
		return req.Patch.Apply(existing), nil
	case model.KindSick.String():
		return model.Sick(), nil
	case model.KindVacation.String():
		return model.Vacation(), nil
	case "cleared":
		return model.ClearSpecial(existing, h.DefaultStart), nil
	}
	return model.DayEntry{}, fmt.Errorf("unknown kind %q", req.Kind)
}

// DeleteDay removes one day.
// DELETE /api/employees/{name}/days/{date}
func (h *Handler) DeleteDay(w http.ResponseWriter, r *http.Request) {
	name, ok := employeeParam(w, r)
	if !ok {
		return
	}
	date := chi.URLParam(r, "date")
	if _, err := storage.ValidateDate(date); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	if err := h.Store.DeleteDay(r.Context(), name, date); err != nil {
		writeInternal(w, "Failed to delete day", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ExportMonth returns the payroll interchange record as a CSV attachment.
// GET /api/employees/{name}/months/{month}/export
func (h *Handler) ExportMonth(w http.ResponseWriter, r *http.Request) {
	name, monthKey, ok := monthParams(w, r)
	if !ok {
		return
	}
	bucket, err := h.Store.LoadMonth(r.Context(), name, monthKey)
	if err != nil {
		writeInternal(w, "Failed to load month", err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", attachment(export.FileName(name, monthKey)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(export.Record(bucket, monthKey, name)))
}

// ReportMonth returns the printable timesheet as PDF.
// GET /api/employees/{name}/months/{month}/report
func (h *Handler) ReportMonth(w http.ResponseWriter, r *http.Request) {
	name, monthKey, ok := monthParams(w, r)
	if !ok {
		return
	}
	bucket, hours, err := h.loadMonth(r, name, monthKey)
	if err != nil {
		writeInternal(w, "Failed to load month", err)
		return
	}

	var buf bytes.Buffer
	err = report.WritePDF(&buf, report.Timesheet{
		Company:     h.Company,
		Employee:    name,
		MonthKey:    monthKey,
		WeeklyHours: hours,
		Rows:        stats.DayRows(bucket, monthKey, h.Region),
		Summary:     stats.Monthly(bucket, monthKey, hours, h.Region),
	})
	if err != nil {
		writeInternal(w, "Failed to render report", err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", attachment(report.FileName(name, monthKey)))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// GetYear returns the yearly statistics of every employee except the admin.
// GET /api/admin/years/{year}
func (h *Handler) GetYear(w http.ResponseWriter, r *http.Request) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil || year < 1 {
		writeError(w, http.StatusBadRequest, "Invalid year", err)
		return
	}

	ctx := r.Context()
	names, err := h.Store.LoadEmployees(ctx)
	if err != nil {
		writeInternal(w, "Failed to list employees", err)
		return
	}
	settings, err := h.Store.LoadSettings(ctx)
	if err != nil {
		writeInternal(w, "Failed to load settings", err)
		return
	}

	resp := YearResponse{Year: year, Employees: []EmployeeSummary{}}
	for _, name := range names {
		if model.UserSlug(name) == model.UserSlug(h.AdminName) {
			continue
		}
		buckets, err := storage.LoadYear(ctx, h.Store, name, year)
		if err != nil {
			writeInternal(w, "Failed to load year", err)
			return
		}
		hours := settings.WeeklyHours(name, h.WeeklyHours)
		resp.Employees = append(resp.Employees, EmployeeSummary{
			Employee:    name,
			WeeklyHours: hours,
			Summary:     stats.Yearly(buckets, year, hours, h.Region),
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// PutSettings sets the weekly hours of an employee.
// PUT /api/admin/settings/{name}
func (h *Handler) PutSettings(w http.ResponseWriter, r *http.Request) {
	name, ok := employeeParam(w, r)
	if !ok {
		return
	}
	var req SettingsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if !model.ValidHours(req.WeeklyHours) {
		writeError(w, http.StatusBadRequest, "weekly_hours must be between 0 and 168", nil)
		return
	}

	ctx := r.Context()
	settings, err := h.Store.LoadSettings(ctx)
	if err != nil {
		writeInternal(w, "Failed to load settings", err)
		return
	}
	settings[name] = model.Settings{WeeklyHours: model.Hours(req.WeeklyHours)}
	if err := h.Store.SaveSettings(ctx, settings); err != nil {
		writeInternal(w, "Failed to save settings", err)
		return
	}
	writeJSON(w, http.StatusOK, req)
}

// loadMonth returns the bucket and the weekly hours of name.
func (h *Handler) loadMonth(r *http.Request, name, monthKey string) (model.MonthBucket, float64, error) {
	ctx := r.Context()
	bucket, err := h.Store.LoadMonth(ctx, name, monthKey)
	if err != nil {
		return nil, 0, err
	}
	settings, err := h.Store.LoadSettings(ctx)
	if err != nil {
		return nil, 0, err
	}
	return bucket, settings.WeeklyHours(name, h.WeeklyHours), nil
}

// employeeParam reads and validates the {name} URL parameter.
func employeeParam(w http.ResponseWriter, r *http.Request) (string, bool) {
	raw, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err == nil {
		raw, err = storage.ValidateEmployee(raw)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid employee", err)
		return "", false
	}
	return raw, true
}

// monthParams reads and validates the {name} and {month} URL parameters.
func monthParams(w http.ResponseWriter, r *http.Request) (string, string, bool) {
	name, ok := employeeParam(w, r)
	if !ok {
		return "", "", false
	}
	monthKey := chi.URLParam(r, "month")
	if err := storage.ValidateMonth(monthKey); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid month", err)
		return "", "", false
	}
	return name, monthKey, true
}

func attachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeInternal logs err and replies 500 without storage details.
func writeInternal(w http.ResponseWriter, message string, err error) {
	log.Printf("%s: %v", message, err)
	writeError(w, http.StatusInternalServerError, message, nil)
}

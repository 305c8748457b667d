package validators

import (
	"strings"
	"time"

	"github.com/classterra/school-platform-backend/internal/data"
)

// CreateSchoolYearRequest represents the request structure for creating school years
type CreateSchoolYearRequest struct {
	Name                string `json:"name"`
	Code                string `json:"code"`
	StartDate           string `json:"start_date"`
	EndDate             string `json:"end_date"`
	Status              string `json:"status"`
	IsDefault           bool   `json:"is_default"`
	EnrollmentOpenDate  string `json:"enrollment_open_date"`
	EnrollmentCloseDate string `json:"enrollment_close_date"`
	TermCount           int    `json:"term_count"`
}

// UpdateSchoolYearRequest patches a school year. Nil fields are left untouched.
type UpdateSchoolYearRequest struct {
	Name                *string `json:"name"`
	Code                *string `json:"code"`
	StartDate           *string `json:"start_date"`
	EndDate             *string `json:"end_date"`
	Status              *string `json:"status"`
	EnrollmentOpenDate  *string `json:"enrollment_open_date"`
	EnrollmentCloseDate *string `json:"enrollment_close_date"`
	TermCount           *int    `json:"term_count"`
}

// BulkSchoolYearStatusRequest updates the status of a batch of school years.
type BulkSchoolYearStatusRequest struct {
	IDs    []string `json:"ids"`
	Status string   `json:"status"`
}

// BulkSchoolYearDeleteRequest soft-deletes a batch of school years.
type BulkSchoolYearDeleteRequest struct {
	IDs []string `json:"ids"`
}

type SchoolYearValidator struct {
	*Validator
}

func NewSchoolYearValidator() *SchoolYearValidator {
	return &SchoolYearValidator{
		Validator: NewValidator(),
	}
}

// ValidateCreateSchoolYearRequest validates the CreateSchoolYearRequest and returns the
// parsed start and end dates.
func (sv *SchoolYearValidator) ValidateCreateSchoolYearRequest(req *CreateSchoolYearRequest) (startDate, endDate time.Time) {
	req.Name = strings.TrimSpace(req.Name)
	req.Code = strings.TrimSpace(req.Code)

	sv.Check(req.Name != "", "name", "name is required")
	sv.Check(req.Code != "", "code", "code is required")

	startDate = sv.validateAndGetDate("start_date", req.StartDate, true)
	endDate = sv.validateAndGetDate("end_date", req.EndDate, true)

	if !startDate.IsZero() && !endDate.IsZero() {
		sv.validateDateRange(startDate, endDate)
	}

	if req.Status != "" {
		status := data.SchoolYearStatus(strings.ToUpper(req.Status))
		sv.Check(status.IsValid(), "status", "invalid status. valid values are 'draft', 'active' and 'archived'")
		req.Status = string(status)
	}

	sv.Check(req.TermCount >= 0, "term_count", "term_count cannot be negative")

	enrollmentOpen := sv.validateAndGetDate("enrollment_open_date", req.EnrollmentOpenDate, false)
	enrollmentClose := sv.validateAndGetDate("enrollment_close_date", req.EnrollmentCloseDate, false)
	if !enrollmentOpen.IsZero() && !enrollmentClose.IsZero() {
		sv.Check(enrollmentOpen.Before(enrollmentClose), "enrollment_open_date", "enrollment_open_date must be before enrollment_close_date")
	}

	return startDate, endDate
}

// ValidateUpdateSchoolYearRequest validates the UpdateSchoolYearRequest and returns the
// parsed dates for the fields that are present.
func (sv *SchoolYearValidator) ValidateUpdateSchoolYearRequest(req *UpdateSchoolYearRequest) (startDate, endDate *time.Time) {
	hasAnyField := req.Name != nil || req.Code != nil || req.StartDate != nil || req.EndDate != nil ||
		req.Status != nil || req.EnrollmentOpenDate != nil || req.EnrollmentCloseDate != nil || req.TermCount != nil
	sv.Check(hasAnyField, "body", "provide at least one field to update")

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		sv.Check(name != "", "name", "name cannot be empty")
		req.Name = &name
	}
	if req.Code != nil {
		code := strings.TrimSpace(*req.Code)
		sv.Check(code != "", "code", "code cannot be empty")
		req.Code = &code
	}
	if req.StartDate != nil {
		parsed := sv.validateAndGetDate("start_date", *req.StartDate, true)
		startDate = &parsed
	}
	if req.EndDate != nil {
		parsed := sv.validateAndGetDate("end_date", *req.EndDate, true)
		endDate = &parsed
	}
	if req.Status != nil {
		status := data.SchoolYearStatus(strings.ToUpper(*req.Status))
		sv.Check(status.IsValid(), "status", "invalid status. valid values are 'draft', 'active' and 'archived'")
		statusStr := string(status)
		req.Status = &statusStr
	}
	if req.TermCount != nil {
		sv.Check(*req.TermCount >= 0, "term_count", "term_count cannot be negative")
	}

	return startDate, endDate
}

// ValidateBulkStatusRequest validates the BulkSchoolYearStatusRequest.
func (sv *SchoolYearValidator) ValidateBulkStatusRequest(req *BulkSchoolYearStatusRequest) {
	sv.Check(len(req.IDs) > 0, "ids", "provide at least one id")
	status := data.SchoolYearStatus(strings.ToUpper(req.Status))
	sv.Check(status.IsValid(), "status", "invalid status. valid values are 'draft', 'active' and 'archived'")
	req.Status = string(status)
}

// ValidateBulkDeleteRequest validates the BulkSchoolYearDeleteRequest.
func (sv *SchoolYearValidator) ValidateBulkDeleteRequest(req *BulkSchoolYearDeleteRequest) {
	sv.Check(len(req.IDs) > 0, "ids", "provide at least one id")
}

// ValidateDateRange enforces ordering and the duration bounds on a resolved date pair.
func (sv *SchoolYearValidator) validateDateRange(startDate, endDate time.Time) {
	if !startDate.Before(endDate) {
		sv.AddError("start_date", "start_date must be before end_date")
		return
	}

	durationDays := data.DurationDays(startDate, endDate)
	sv.Check(durationDays >= data.MinSchoolYearDurationDays, "end_date", "school year must be at least 30 days long")
	sv.Check(durationDays <= data.MaxSchoolYearDurationDays, "end_date", "school year cannot be longer than 500 days")
}

func (sv *SchoolYearValidator) validateAndGetDate(key, value string, required bool) time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		if required {
			sv.AddError(key, key+" is required")
		}
		return time.Time{}
	}

	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		sv.AddError(key, "invalid date format. valid format is 'YYYY-MM-DD'")
		return time.Time{}
	}
	return parsed
}

type SchoolYearQueryValidator struct {
	QueryValidator
}

func NewSchoolYearQueryValidator() *SchoolYearQueryValidator {
	return &SchoolYearQueryValidator{
		QueryValidator: QueryValidator{
			DefaultSortField:  data.SortFieldStartDate,
			DefaultSortOrder:  data.SortOrderDESC,
			AllowedSortFields: []data.SortField{data.SortFieldName, data.SortFieldCode, data.SortFieldStartDate, data.SortFieldStatus, data.SortFieldCreatedAt},
			AllowedFilters:    []data.FilterKey{data.FilterKeyStatus, data.FilterKeyIsDefault},
			Validator:         NewValidator(),
		},
	}
}

// ValidateAndGetSchoolYearFilters validates the filter values and normalizes them.
func (qv *SchoolYearQueryValidator) ValidateAndGetSchoolYearFilters(filters map[data.FilterKey]interface{}) map[data.FilterKey]interface{} {
	validFilters := make(map[data.FilterKey]interface{})

	if value, ok := filters[data.FilterKeyStatus]; ok {
		status := data.SchoolYearStatus(strings.ToUpper(strings.TrimSpace(value.(string))))
		qv.Check(status.IsValid(), string(data.FilterKeyStatus), "invalid parameter. valid values are: draft, active, archived")
		validFilters[data.FilterKeyStatus] = status
	}

	if value, ok := filters[data.FilterKeyIsDefault]; ok {
		switch strings.ToLower(strings.TrimSpace(value.(string))) {
		case "true":
			validFilters[data.FilterKeyIsDefault] = true
		case "false":
			validFilters[data.FilterKeyIsDefault] = false
		default:
			qv.Check(false, string(data.FilterKeyIsDefault), "invalid parameter. valid values are 'true' and 'false'")
		}
	}

	return validFilters
}

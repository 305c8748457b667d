package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
	"github.com/classterra/school-platform-backend/internal/serve/httpresponse"
	"github.com/classterra/school-platform-backend/internal/serve/middleware"
	"github.com/classterra/school-platform-backend/internal/serve/validators"
	"github.com/classterra/school-platform-backend/internal/services"
)

type SchoolYearsHandler struct {
	SchoolYearService services.SchoolYearServiceInterface
}

// resolveTenantID derives the tenant scope for a school-year request. Regular users are
// scoped to their own tenant; SUPER_ADMINs may target any tenant through the tenant_id
// query parameter.
func (h SchoolYearsHandler) resolveTenantID(rw http.ResponseWriter, req *http.Request) (string, bool) {
	tokenUser, ok := middleware.GetTokenUserFromContext(req.Context())
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return "", false
	}

	if tokenUser.Role == string(data.SuperAdminUserRole) {
		if tenantID := req.URL.Query().Get("tenant_id"); tenantID != "" {
			return tenantID, true
		}
	}

	if tokenUser.TenantID == nil {
		httperror.Forbidden("User does not belong to a tenant.", nil, nil).Render(rw)
		return "", false
	}
	return *tokenUser.TenantID, true
}

func (h SchoolYearsHandler) GetSchoolYears(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	validator := validators.NewSchoolYearQueryValidator()
	queryParams := validator.ParseParametersFromRequest(req)
	queryParams.Filters = validator.ValidateAndGetSchoolYearFilters(queryParams.Filters)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	schoolYears, total, err := h.SchoolYearService.GetSchoolYears(ctx, tenantID, queryParams)
	if err != nil {
		httperror.InternalError(ctx, "Cannot retrieve school years", err, nil).Render(rw)
		return
	}

	response, err := httpresponse.NewPaginatedResponse(schoolYears, queryParams.Page, queryParams.PageLimit, total)
	if err != nil {
		httperror.InternalError(ctx, "Cannot build paginated response", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, response)
}

func (h SchoolYearsHandler) GetSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	schoolYear, err := h.SchoolYearService.GetSchoolYear(ctx, tenantID, chi.URLParam(req, "id"))
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("School year not found.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot retrieve school year", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) GetDefaultSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	schoolYear, err := h.SchoolYearService.GetDefaultSchoolYear(ctx, tenantID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("No default school year configured.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot retrieve default school year", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) CreateSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	var reqBody validators.CreateSchoolYearRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewSchoolYearValidator()
	startDate, endDate := validator.ValidateCreateSchoolYearRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	insert := data.SchoolYearInsert{
		Name:      reqBody.Name,
		Code:      reqBody.Code,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    data.DraftSchoolYearStatus,
		IsDefault: reqBody.IsDefault,
		TermCount: reqBody.TermCount,
	}
	if reqBody.Status != "" {
		insert.Status = data.SchoolYearStatus(reqBody.Status)
	}
	insert.EnrollmentOpenDate = parseOptionalDate(reqBody.EnrollmentOpenDate)
	insert.EnrollmentCloseDate = parseOptionalDate(reqBody.EnrollmentCloseDate)
	if tokenUser, tokenOK := middleware.GetTokenUserFromContext(ctx); tokenOK {
		insert.CreatedBy = &tokenUser.ID
	}

	schoolYear, err := h.SchoolYearService.CreateSchoolYear(ctx, tenantID, insert)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot create school year")
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) PatchSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	var reqBody validators.UpdateSchoolYearRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewSchoolYearValidator()
	startDate, endDate := validator.ValidateUpdateSchoolYearRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	update := data.SchoolYearUpdate{
		Name:      reqBody.Name,
		Code:      reqBody.Code,
		StartDate: startDate,
		EndDate:   endDate,
		TermCount: reqBody.TermCount,
	}
	if reqBody.Status != nil {
		status := data.SchoolYearStatus(*reqBody.Status)
		update.Status = &status
	}
	if reqBody.EnrollmentOpenDate != nil {
		update.EnrollmentOpenDate = parseOptionalDate(*reqBody.EnrollmentOpenDate)
	}
	if reqBody.EnrollmentCloseDate != nil {
		update.EnrollmentCloseDate = parseOptionalDate(*reqBody.EnrollmentCloseDate)
	}
	if tokenUser, tokenOK := middleware.GetTokenUserFromContext(ctx); tokenOK {
		update.UpdatedBy = &tokenUser.ID
	}

	schoolYear, err := h.SchoolYearService.UpdateSchoolYear(ctx, tenantID, chi.URLParam(req, "id"), update)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot update school year")
		return
	}

	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) SetDefaultSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	schoolYear, err := h.SchoolYearService.SetAsDefault(ctx, tenantID, chi.URLParam(req, "id"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot set default school year")
		return
	}

	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) DeleteSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	schoolYear, err := h.SchoolYearService.RemoveSchoolYear(ctx, tenantID, chi.URLParam(req, "id"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot delete school year")
		return
	}

	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) RestoreSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	schoolYear, err := h.SchoolYearService.RestoreSchoolYear(ctx, tenantID, chi.URLParam(req, "id"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot restore school year")
		return
	}

	render.JSON(rw, req, schoolYear)
}

func (h SchoolYearsHandler) PermanentlyDeleteSchoolYear(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	if err := h.SchoolYearService.PermanentlyDeleteSchoolYear(ctx, tenantID, chi.URLParam(req, "id")); err != nil {
		h.renderServiceError(rw, req, err, "Cannot permanently delete school year")
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func (h SchoolYearsHandler) BulkUpdateStatus(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	var reqBody validators.BulkSchoolYearStatusRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewSchoolYearValidator()
	validator.ValidateBulkStatusRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	updated, err := h.SchoolYearService.BulkUpdateStatus(ctx, tenantID, reqBody.IDs, data.SchoolYearStatus(reqBody.Status))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot bulk update school years")
		return
	}

	render.JSON(rw, req, map[string]int64{"updated": updated})
}

func (h SchoolYearsHandler) BulkDelete(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenantID, ok := h.resolveTenantID(rw, req)
	if !ok {
		return
	}

	var reqBody validators.BulkSchoolYearDeleteRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewSchoolYearValidator()
	validator.ValidateBulkDeleteRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	deleted, err := h.SchoolYearService.BulkDelete(ctx, tenantID, reqBody.IDs)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot bulk delete school years")
		return
	}

	render.JSON(rw, req, map[string]int64{"deleted": deleted})
}

// parseOptionalDate parses a validated YYYY-MM-DD value, returning nil for empty or
// unparseable input.
func parseOptionalDate(value string) *time.Time {
	if value == "" {
		return nil
	}
	parsed, err := time.Parse("2006-01-02", value)
	if err != nil {
		return nil
	}
	return &parsed
}

func (h SchoolYearsHandler) renderServiceError(rw http.ResponseWriter, req *http.Request, err error, internalMsg string) {
	ctx := req.Context()
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		httperror.NotFound("School year not found.", err, nil).Render(rw)
	case errors.Is(err, services.ErrSchoolYearCodeInUse),
		errors.Is(err, services.ErrSchoolYearOverlap):
		httperror.Conflict(err.Error(), err, nil).Render(rw)
	case errors.Is(err, data.ErrRecordAlreadyExists):
		httperror.Conflict("School year code already in use.", err, nil).Render(rw)
	case errors.Is(err, services.ErrSchoolYearInvalidDateRange),
		errors.Is(err, services.ErrSchoolYearDeleteNotAllowed),
		errors.Is(err, services.ErrSchoolYearHasData),
		errors.Is(err, services.ErrSchoolYearNotDeleted),
		errors.Is(err, data.ErrMissingInput):
		httperror.BadRequest(err.Error(), err, nil).Render(rw)
	default:
		httperror.InternalError(ctx, internalMsg, err, nil).Render(rw)
	}
}

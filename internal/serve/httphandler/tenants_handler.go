package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
	"github.com/classterra/school-platform-backend/internal/serve/httpresponse"
	"github.com/classterra/school-platform-backend/internal/serve/middleware"
	"github.com/classterra/school-platform-backend/internal/serve/validators"
	"github.com/classterra/school-platform-backend/internal/services"
)

type TenantsHandler struct {
	TenantService services.TenantServiceInterface
}

func (h TenantsHandler) GetTenants(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	validator := validators.NewTenantQueryValidator()
	queryParams := validator.ParseParametersFromRequest(req)
	queryParams.Filters = validator.ValidateAndGetTenantFilters(queryParams.Filters)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	tenants, total, err := h.TenantService.GetTenants(ctx, queryParams)
	if err != nil {
		httperror.InternalError(ctx, "Cannot retrieve tenants", err, nil).Render(rw)
		return
	}

	response, err := httpresponse.NewPaginatedResponse(tenants, queryParams.Page, queryParams.PageLimit, total)
	if err != nil {
		httperror.InternalError(ctx, "Cannot build paginated response", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, response)
}

func (h TenantsHandler) GetTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenant, err := h.TenantService.GetTenant(ctx, chi.URLParam(req, "id"))
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Tenant not found.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot retrieve tenant", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) CreateTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.CreateTenantRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewTenantValidator()
	validator.ValidateCreateTenantRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	params := buildCreateTenantParams(&reqBody)
	if tokenUser, ok := middleware.GetTokenUserFromContext(ctx); ok {
		params.Insert.CreatedBy = &tokenUser.ID
	}

	tenant, err := h.TenantService.CreateTenant(ctx, params)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot create tenant")
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) CreateMinimalTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	var reqBody validators.CreateMinimalTenantRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewTenantValidator()
	validator.ValidateCreateMinimalTenantRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	tenant, err := h.TenantService.CreateMinimalTenant(ctx, reqBody.Name, reqBody.Email, tokenUser.ID)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot create tenant")
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) PatchTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.UpdateTenantRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewTenantValidator()
	validator.ValidateUpdateTenantRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	params := buildUpdateTenantParams(&reqBody)
	if tokenUser, ok := middleware.GetTokenUserFromContext(ctx); ok && params.Root != nil {
		params.Root.UpdatedBy = &tokenUser.ID
	}

	tenant, err := h.TenantService.UpdateTenant(ctx, chi.URLParam(req, "id"), params)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot update tenant")
		return
	}

	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) ToggleTenantStatus(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenant, err := h.TenantService.ToggleTenantStatus(ctx, chi.URLParam(req, "id"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot toggle tenant status")
		return
	}

	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) UpdateSubscription(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.UpdateTenantSubscriptionRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewTenantValidator()
	validator.ValidateUpdateSubscriptionRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	var billingEmail *string
	if reqBody.BillingEmail != "" {
		billingEmail = &reqBody.BillingEmail
	}

	subscription, err := h.TenantService.UpdateSubscription(ctx, chi.URLParam(req, "id"),
		data.SubscriptionPlan(reqBody.Plan), data.BillingCycle(reqBody.BillingCycle), billingEmail)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot update tenant subscription")
		return
	}

	render.JSON(rw, req, subscription)
}

func (h TenantsHandler) AddIntegration(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.CreateTenantIntegration
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	kind := data.TenantIntegrationKind(reqBody.Kind)
	if !kind.IsValid() || reqBody.Name == "" {
		httperror.BadRequest("Request invalid", nil, map[string]interface{}{"integration": "kind and name are required"}).Render(rw)
		return
	}

	integration, err := h.TenantService.AddIntegration(ctx, chi.URLParam(req, "id"), data.TenantIntegration{
		Kind:     kind,
		Name:     reqBody.Name,
		Settings: data.JSONMap(reqBody.Settings),
		Enabled:  reqBody.Enabled,
	})
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot add tenant integration")
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, integration)
}

func (h TenantsHandler) RemoveIntegration(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	err := h.TenantService.RemoveIntegration(ctx, chi.URLParam(req, "id"), chi.URLParam(req, "integrationID"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot remove tenant integration")
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func (h TenantsHandler) DeleteTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenant, err := h.TenantService.SoftDeleteTenant(ctx, chi.URLParam(req, "id"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot delete tenant")
		return
	}

	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) RestoreTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tenant, err := h.TenantService.RestoreTenant(ctx, chi.URLParam(req, "id"))
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot restore tenant")
		return
	}

	render.JSON(rw, req, tenant)
}

func (h TenantsHandler) HardDeleteTenant(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	if err := h.TenantService.HardDeleteTenant(ctx, chi.URLParam(req, "id")); err != nil {
		h.renderServiceError(rw, req, err, "Cannot permanently delete tenant")
		return
	}

	rw.WriteHeader(http.StatusNoContent)
}

func (h TenantsHandler) renderServiceError(rw http.ResponseWriter, req *http.Request, err error, internalMsg string) {
	ctx := req.Context()
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		httperror.NotFound("Tenant not found.", err, nil).Render(rw)
	case errors.Is(err, services.ErrTenantSlugInUse),
		errors.Is(err, services.ErrTenantEmailInUse):
		httperror.Conflict(err.Error(), err, nil).Render(rw)
	case errors.Is(err, data.ErrRecordAlreadyExists):
		httperror.Conflict("Tenant slug already in use.", err, nil).Render(rw)
	case errors.Is(err, services.ErrUserAlreadyHasTenant),
		errors.Is(err, services.ErrUserEmailNotVerified),
		errors.Is(err, services.ErrTenantNotDeleted),
		errors.Is(err, services.ErrTenantStatusNotToggable),
		errors.Is(err, data.ErrMissingInput):
		httperror.BadRequest(err.Error(), err, nil).Render(rw)
	default:
		httperror.InternalError(ctx, internalMsg, err, nil).Render(rw)
	}
}

func buildCreateTenantParams(req *validators.CreateTenantRequest) services.CreateTenantParams {
	params := services.CreateTenantParams{
		Insert: data.TenantInsert{
			Name:     req.Name,
			Slug:     req.Slug,
			Tags:     req.Tags,
			Metadata: data.JSONMap(req.Metadata),
		},
		ContactInfo:  buildContactInfo(&req.ContactInfo),
		Plan:         data.SubscriptionPlan(req.Subscription.Plan),
		BillingCycle: data.BillingCycle(req.Subscription.BillingCycle),
	}
	if req.LifecycleStage != "" {
		params.Insert.LifecycleStage = data.TenantLifecycleStage(req.LifecycleStage)
	}
	if req.Subscription.BillingEmail != "" {
		params.BillingEmail = &req.Subscription.BillingEmail
	}
	if req.Location != nil {
		params.Location = buildLocation(req.Location)
	}
	if req.SchoolInfo != nil {
		params.SchoolInfo = buildSchoolInfo(req.SchoolInfo)
	}
	if req.Compliance != nil {
		params.Compliance = &data.TenantCompliance{
			GDPRCompliant:  req.Compliance.GDPRCompliant,
			COPPACompliant: req.Compliance.COPPACompliant,
			FERPACompliant: req.Compliance.FERPACompliant,
			HIPAACompliant: req.Compliance.HIPAACompliant,
		}
	}
	if req.Security != nil {
		params.Security = &data.TenantSecurity{
			MFARequired:      req.Security.MFARequired,
			SSOEnabled:       req.Security.SSOEnabled,
			EncryptionAtRest: req.Security.EncryptionAtRest,
		}
	}
	if req.Branding != nil {
		params.Branding = buildBranding(req.Branding)
	}
	for _, record := range req.Accreditations {
		params.Accreditations = append(params.Accreditations, data.TenantAccreditation{
			Name:       record.Name,
			IssuedBy:   optionalString(record.IssuedBy),
			ValidUntil: parseOptionalDate(record.ValidUntil),
		})
	}
	for _, record := range req.Certifications {
		params.Certifications = append(params.Certifications, data.TenantCertification{
			Name:       record.Name,
			IssuedBy:   optionalString(record.IssuedBy),
			ValidUntil: parseOptionalDate(record.ValidUntil),
		})
	}
	for _, integration := range req.Integrations {
		params.Integrations = append(params.Integrations, data.TenantIntegration{
			Kind:     data.TenantIntegrationKind(integration.Kind),
			Name:     integration.Name,
			Settings: data.JSONMap(integration.Settings),
			Enabled:  integration.Enabled,
		})
	}
	return params
}

func buildUpdateTenantParams(req *validators.UpdateTenantRequest) services.UpdateTenantParams {
	params := services.UpdateTenantParams{}

	if req.Name != nil || req.Slug != nil || req.LifecycleStage != nil || req.Tags != nil || req.Metadata != nil {
		root := data.TenantUpdate{Name: req.Name, Slug: req.Slug, Tags: req.Tags}
		if req.LifecycleStage != nil {
			stage := data.TenantLifecycleStage(*req.LifecycleStage)
			root.LifecycleStage = &stage
		}
		if req.Metadata != nil {
			metadata := data.JSONMap(*req.Metadata)
			root.Metadata = &metadata
		}
		params.Root = &root
	}

	if req.ContactInfo != nil {
		contactInfo := buildContactInfo(req.ContactInfo)
		params.ContactInfo = &contactInfo
	}
	if req.Location != nil {
		params.Location = buildLocation(req.Location)
	}
	if req.SchoolInfo != nil {
		params.SchoolInfo = buildSchoolInfo(req.SchoolInfo)
	}
	if req.Branding != nil {
		params.Branding = buildBranding(req.Branding)
	}
	if req.Compliance != nil {
		params.Compliance = &data.TenantCompliance{
			GDPRCompliant:  req.Compliance.GDPRCompliant,
			COPPACompliant: req.Compliance.COPPACompliant,
			FERPACompliant: req.Compliance.FERPACompliant,
			HIPAACompliant: req.Compliance.HIPAACompliant,
		}
	}
	if req.Security != nil {
		params.Security = &data.TenantSecurity{
			MFARequired:      req.Security.MFARequired,
			SSOEnabled:       req.Security.SSOEnabled,
			EncryptionAtRest: req.Security.EncryptionAtRest,
		}
	}

	return params
}

func buildContactInfo(info *validators.CreateTenantContactInfo) data.TenantContactInfo {
	return data.TenantContactInfo{
		Email:          info.Email,
		Phone:          optionalString(info.Phone),
		Website:        optionalString(info.Website),
		AddressLine1:   optionalString(info.AddressLine1),
		AddressLine2:   optionalString(info.AddressLine2),
		City:           optionalString(info.City),
		State:          optionalString(info.State),
		PostalCode:     optionalString(info.PostalCode),
		Country:        optionalString(info.Country),
		ContactPersons: info.ContactPersons,
	}
}

func buildLocation(loc *validators.CreateTenantLocation) *data.TenantLocation {
	return &data.TenantLocation{
		Timezone:     loc.Timezone,
		Locale:       loc.Locale,
		Currency:     loc.Currency,
		Region:       optionalString(loc.Region),
		AddressLine1: optionalString(loc.AddressLine1),
		AddressLine2: optionalString(loc.AddressLine2),
		City:         optionalString(loc.City),
		State:        optionalString(loc.State),
		PostalCode:   optionalString(loc.PostalCode),
		Country:      optionalString(loc.Country),
	}
}

func buildSchoolInfo(info *validators.CreateTenantSchoolInfo) *data.TenantSchoolInfo {
	return &data.TenantSchoolInfo{
		SchoolType:        optionalString(info.SchoolType),
		Category:          optionalString(info.Category),
		Levels:            info.Levels,
		Capacity:          info.Capacity,
		CurrentEnrollment: info.CurrentEnrollment,
	}
}

func buildBranding(branding *validators.CreateTenantBranding) *data.TenantBranding {
	return &data.TenantBranding{
		LogoURL:        optionalString(branding.LogoURL),
		PrimaryColor:   optionalString(branding.PrimaryColor),
		SecondaryColor: optionalString(branding.SecondaryColor),
	}
}

func optionalString(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}

package validators

import (
	"strings"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/utils"
)

// CreateTenantRequest represents the request structure for provisioning a tenant with its
// full aggregate.
type CreateTenantRequest struct {
	Name           string                    `json:"name"`
	Slug           string                    `json:"slug"`
	LifecycleStage string                    `json:"lifecycle_stage"`
	Tags           []string                  `json:"tags"`
	Metadata       map[string]interface{}    `json:"metadata"`
	ContactInfo    CreateTenantContactInfo   `json:"contact_info"`
	Location       *CreateTenantLocation     `json:"location"`
	SchoolInfo     *CreateTenantSchoolInfo   `json:"school_info"`
	Subscription   CreateTenantSubscription  `json:"subscription"`
	Compliance     *CreateTenantCompliance   `json:"compliance"`
	Security       *CreateTenantSecurity     `json:"security"`
	Branding       *CreateTenantBranding     `json:"branding"`
	Accreditations []CreateTenantCertRecord  `json:"accreditations"`
	Certifications []CreateTenantCertRecord  `json:"certifications"`
	Integrations   []CreateTenantIntegration `json:"integrations"`
}

type CreateTenantContactInfo struct {
	Email          string               `json:"email"`
	Phone          string               `json:"phone"`
	Website        string               `json:"website"`
	AddressLine1   string               `json:"address_line1"`
	AddressLine2   string               `json:"address_line2"`
	City           string               `json:"city"`
	State          string               `json:"state"`
	PostalCode     string               `json:"postal_code"`
	Country        string               `json:"country"`
	ContactPersons []data.ContactPerson `json:"contact_persons"`
}

type CreateTenantLocation struct {
	Timezone     string `json:"timezone"`
	Locale       string `json:"locale"`
	Currency     string `json:"currency"`
	Region       string `json:"region"`
	AddressLine1 string `json:"address_line1"`
	AddressLine2 string `json:"address_line2"`
	City         string `json:"city"`
	State        string `json:"state"`
	PostalCode   string `json:"postal_code"`
	Country      string `json:"country"`
}

type CreateTenantSchoolInfo struct {
	SchoolType        string   `json:"school_type"`
	Category          string   `json:"category"`
	Levels            []string `json:"levels"`
	Capacity          int      `json:"capacity"`
	CurrentEnrollment int      `json:"current_enrollment"`
}

type CreateTenantSubscription struct {
	Plan         string `json:"plan"`
	BillingCycle string `json:"billing_cycle"`
	BillingEmail string `json:"billing_email"`
}

type CreateTenantCompliance struct {
	GDPRCompliant  bool `json:"gdpr_compliant"`
	COPPACompliant bool `json:"coppa_compliant"`
	FERPACompliant bool `json:"ferpa_compliant"`
	HIPAACompliant bool `json:"hipaa_compliant"`
}

type CreateTenantSecurity struct {
	MFARequired      bool `json:"mfa_required"`
	SSOEnabled       bool `json:"sso_enabled"`
	EncryptionAtRest bool `json:"encryption_at_rest"`
}

type CreateTenantBranding struct {
	LogoURL        string `json:"logo_url"`
	PrimaryColor   string `json:"primary_color"`
	SecondaryColor string `json:"secondary_color"`
}

type CreateTenantCertRecord struct {
	Name       string `json:"name"`
	IssuedBy   string `json:"issued_by"`
	ValidUntil string `json:"valid_until"`
}

type CreateTenantIntegration struct {
	Kind     string                 `json:"kind"`
	Name     string                 `json:"name"`
	Settings map[string]interface{} `json:"settings"`
	Enabled  bool                   `json:"enabled"`
}

// CreateMinimalTenantRequest provisions a tenant with only a name and contact email,
// applying starter-plan defaults to everything else.
type CreateMinimalTenantRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// UpdateTenantRequest patches the tenant root record and any sub-records present in the
// request body. Nil sections are left untouched.
type UpdateTenantRequest struct {
	Name           *string                  `json:"name"`
	Slug           *string                  `json:"slug"`
	LifecycleStage *string                  `json:"lifecycle_stage"`
	Tags           *[]string                `json:"tags"`
	Metadata       *map[string]interface{}  `json:"metadata"`
	ContactInfo    *CreateTenantContactInfo `json:"contact_info"`
	Location       *CreateTenantLocation    `json:"location"`
	SchoolInfo     *CreateTenantSchoolInfo  `json:"school_info"`
	Branding       *CreateTenantBranding    `json:"branding"`
	Compliance     *CreateTenantCompliance  `json:"compliance"`
	Security       *CreateTenantSecurity    `json:"security"`
}

// UpdateTenantSubscriptionRequest changes a tenant's subscription plan and billing cycle.
type UpdateTenantSubscriptionRequest struct {
	Plan         string `json:"plan"`
	BillingCycle string `json:"billing_cycle"`
	BillingEmail string `json:"billing_email"`
}

type TenantValidator struct {
	*Validator
}

func NewTenantValidator() *TenantValidator {
	return &TenantValidator{
		Validator: NewValidator(),
	}
}

// ValidateCreateTenantRequest validates the CreateTenantRequest.
func (tv *TenantValidator) ValidateCreateTenantRequest(req *CreateTenantRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Slug = strings.TrimSpace(req.Slug)

	tv.Check(req.Name != "", "name", "name is required")
	if req.Slug == "" {
		req.Slug = utils.Slugify(req.Name)
	}
	tv.CheckError(utils.ValidateSlug(req.Slug), "slug", "")

	if req.LifecycleStage != "" {
		stage := data.TenantLifecycleStage(strings.ToUpper(req.LifecycleStage))
		tv.Check(stage.IsValid(), "lifecycle_stage", "invalid lifecycle stage")
		req.LifecycleStage = string(stage)
	}

	req.ContactInfo.Email = strings.TrimSpace(req.ContactInfo.Email)
	tv.CheckError(utils.ValidateEmail(req.ContactInfo.Email), "contact_info.email", "")

	tv.validateSubscription(&req.Subscription)

	if req.SchoolInfo != nil {
		tv.Check(req.SchoolInfo.Capacity >= 0, "school_info.capacity", "capacity cannot be negative")
		tv.Check(req.SchoolInfo.CurrentEnrollment >= 0, "school_info.current_enrollment", "current_enrollment cannot be negative")
	}

	for i := range req.Integrations {
		kind := data.TenantIntegrationKind(strings.ToUpper(strings.TrimSpace(req.Integrations[i].Kind)))
		tv.Check(kind.IsValid(), "integrations", "invalid integration kind")
		tv.Check(strings.TrimSpace(req.Integrations[i].Name) != "", "integrations", "integration name is required")
		req.Integrations[i].Kind = string(kind)
	}
}

// ValidateCreateMinimalTenantRequest validates the CreateMinimalTenantRequest.
func (tv *TenantValidator) ValidateCreateMinimalTenantRequest(req *CreateMinimalTenantRequest) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)

	tv.Check(req.Name != "", "name", "name is required")
	tv.CheckError(utils.ValidateEmail(req.Email), "email", "")
}

// ValidateUpdateTenantRequest validates the UpdateTenantRequest.
func (tv *TenantValidator) ValidateUpdateTenantRequest(req *UpdateTenantRequest) {
	hasAnyField := req.Name != nil || req.Slug != nil || req.LifecycleStage != nil || req.Tags != nil || req.Metadata != nil ||
		req.ContactInfo != nil || req.Location != nil || req.SchoolInfo != nil ||
		req.Branding != nil || req.Compliance != nil || req.Security != nil
	tv.Check(hasAnyField, "body", "provide at least one field to update")

	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		tv.Check(name != "", "name", "name cannot be empty")
		req.Name = &name
	}
	if req.Slug != nil {
		slug := strings.TrimSpace(*req.Slug)
		tv.CheckError(utils.ValidateSlug(slug), "slug", "")
		req.Slug = &slug
	}
	if req.LifecycleStage != nil {
		stage := data.TenantLifecycleStage(strings.ToUpper(*req.LifecycleStage))
		tv.Check(stage.IsValid(), "lifecycle_stage", "invalid lifecycle stage")
		stageStr := string(stage)
		req.LifecycleStage = &stageStr
	}
	if req.ContactInfo != nil && req.ContactInfo.Email != "" {
		req.ContactInfo.Email = strings.TrimSpace(req.ContactInfo.Email)
		tv.CheckError(utils.ValidateEmail(req.ContactInfo.Email), "contact_info.email", "")
	}
	if req.SchoolInfo != nil {
		tv.Check(req.SchoolInfo.Capacity >= 0, "school_info.capacity", "capacity cannot be negative")
		tv.Check(req.SchoolInfo.CurrentEnrollment >= 0, "school_info.current_enrollment", "current_enrollment cannot be negative")
	}
}

// ValidateUpdateSubscriptionRequest validates the UpdateTenantSubscriptionRequest.
func (tv *TenantValidator) ValidateUpdateSubscriptionRequest(req *UpdateTenantSubscriptionRequest) {
	sub := CreateTenantSubscription{Plan: req.Plan, BillingCycle: req.BillingCycle, BillingEmail: req.BillingEmail}
	tv.validateSubscription(&sub)
	req.Plan = sub.Plan
	req.BillingCycle = sub.BillingCycle
}

func (tv *TenantValidator) validateSubscription(sub *CreateTenantSubscription) {
	plan := data.SubscriptionPlan(strings.ToUpper(strings.TrimSpace(sub.Plan)))
	if sub.Plan == "" {
		plan = data.StarterSubscriptionPlan
	}
	tv.Check(plan.IsValid(), "subscription.plan", "invalid subscription plan. valid values are: starter, basic, standard, premium, enterprise")
	sub.Plan = string(plan)

	cycle := data.BillingCycle(strings.ToUpper(strings.TrimSpace(sub.BillingCycle)))
	if sub.BillingCycle == "" {
		cycle = data.MonthlyBillingCycle
	}
	tv.Check(cycle.IsValid(), "subscription.billing_cycle", "invalid billing cycle. valid values are: monthly, quarterly, yearly")
	sub.BillingCycle = string(cycle)

	if sub.BillingEmail != "" {
		tv.CheckError(utils.ValidateEmail(sub.BillingEmail), "subscription.billing_email", "")
	}
}

type TenantQueryValidator struct {
	QueryValidator
}

func NewTenantQueryValidator() *TenantQueryValidator {
	return &TenantQueryValidator{
		QueryValidator: QueryValidator{
			DefaultSortField:  data.SortFieldCreatedAt,
			DefaultSortOrder:  data.SortOrderDESC,
			AllowedSortFields: []data.SortField{data.SortFieldName, data.SortFieldSlug, data.SortFieldStatus, data.SortFieldCreatedAt, data.SortFieldUpdatedAt},
			AllowedFilters:    []data.FilterKey{data.FilterKeyStatus, data.FilterKeyLifecycleStage, data.FilterKeyPlan},
			Validator:         NewValidator(),
		},
	}
}

// ValidateAndGetTenantFilters validates the filter values and normalizes them.
func (qv *TenantQueryValidator) ValidateAndGetTenantFilters(filters map[data.FilterKey]interface{}) map[data.FilterKey]interface{} {
	validFilters := make(map[data.FilterKey]interface{})

	if value, ok := filters[data.FilterKeyStatus]; ok {
		status := data.TenantStatus(strings.ToUpper(strings.TrimSpace(value.(string))))
		qv.Check(status.IsValid(), string(data.FilterKeyStatus), "invalid parameter. valid values are: active, inactive, suspended, terminated, migrating, maintenance")
		validFilters[data.FilterKeyStatus] = status
	}

	if value, ok := filters[data.FilterKeyLifecycleStage]; ok {
		stage := data.TenantLifecycleStage(strings.ToUpper(strings.TrimSpace(value.(string))))
		qv.Check(stage.IsValid(), string(data.FilterKeyLifecycleStage), "invalid parameter. valid values are: prospect, trial, onboarding, active, at_risk, churned, reactivated")
		validFilters[data.FilterKeyLifecycleStage] = stage
	}

	if value, ok := filters[data.FilterKeyPlan]; ok {
		plan := data.SubscriptionPlan(strings.ToUpper(strings.TrimSpace(value.(string))))
		qv.Check(plan.IsValid(), string(data.FilterKeyPlan), "invalid parameter. valid values are: starter, basic, standard, premium, enterprise")
		validFilters[data.FilterKeyPlan] = plan
	}

	return validFilters
}

package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/classterra/school-platform-backend/db"
)

type TenantStatus string

const (
	ActiveTenantStatus      TenantStatus = "ACTIVE"
	InactiveTenantStatus    TenantStatus = "INACTIVE"
	SuspendedTenantStatus   TenantStatus = "SUSPENDED"
	TerminatedTenantStatus  TenantStatus = "TERMINATED"
	MigratingTenantStatus   TenantStatus = "MIGRATING"
	MaintenanceTenantStatus TenantStatus = "MAINTENANCE"
)

func (s TenantStatus) IsValid() bool {
	switch s {
	case ActiveTenantStatus, InactiveTenantStatus, SuspendedTenantStatus, TerminatedTenantStatus, MigratingTenantStatus, MaintenanceTenantStatus:
		return true
	}
	return false
}

type TenantLifecycleStage string

const (
	ProspectLifecycleStage    TenantLifecycleStage = "PROSPECT"
	TrialLifecycleStage       TenantLifecycleStage = "TRIAL"
	OnboardingLifecycleStage  TenantLifecycleStage = "ONBOARDING"
	ActiveLifecycleStage      TenantLifecycleStage = "ACTIVE"
	AtRiskLifecycleStage      TenantLifecycleStage = "AT_RISK"
	ChurnedLifecycleStage     TenantLifecycleStage = "CHURNED"
	ReactivatedLifecycleStage TenantLifecycleStage = "REACTIVATED"
)

func (s TenantLifecycleStage) IsValid() bool {
	switch s {
	case ProspectLifecycleStage, TrialLifecycleStage, OnboardingLifecycleStage, ActiveLifecycleStage, AtRiskLifecycleStage, ChurnedLifecycleStage, ReactivatedLifecycleStage:
		return true
	}
	return false
}

type TenantIntegrationKind string

const (
	LMSIntegrationKind           TenantIntegrationKind = "LMS"
	PaymentIntegrationKind       TenantIntegrationKind = "PAYMENT"
	CommunicationIntegrationKind TenantIntegrationKind = "COMMUNICATION"
	AnalyticsIntegrationKind     TenantIntegrationKind = "ANALYTICS"
	SSOIntegrationKind           TenantIntegrationKind = "SSO"
	CustomIntegrationKind        TenantIntegrationKind = "CUSTOM"
)

func (k TenantIntegrationKind) IsValid() bool {
	switch k {
	case LMSIntegrationKind, PaymentIntegrationKind, CommunicationIntegrationKind, AnalyticsIntegrationKind, SSOIntegrationKind, CustomIntegrationKind:
		return true
	}
	return false
}

// Tenant is the root record of the tenant aggregate. The owned sub-records live in their
// own tables, one row per tenant, and are loaded through GetAggregate.
type Tenant struct {
	ID             string               `json:"id" db:"id"`
	Name           string               `json:"name" db:"name"`
	Slug           string               `json:"slug" db:"slug"`
	Status         TenantStatus         `json:"status" db:"status"`
	LifecycleStage TenantLifecycleStage `json:"lifecycle_stage" db:"lifecycle_stage"`
	Tags           pq.StringArray       `json:"tags" db:"tags"`
	Metadata       JSONMap              `json:"metadata" db:"metadata"`
	CreatedAt      time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at" db:"updated_at"`
	DeletedAt      *time.Time           `json:"deleted_at,omitempty" db:"deleted_at"`
	CreatedBy      *string              `json:"created_by,omitempty" db:"created_by"`
	UpdatedBy      *string              `json:"updated_by,omitempty" db:"updated_by"`
}

type TenantContactInfo struct {
	ID             string         `json:"id" db:"id"`
	TenantID       string         `json:"-" db:"tenant_id"`
	Phone          *string        `json:"phone,omitempty" db:"phone"`
	Email          string         `json:"email" db:"email"`
	Website        *string        `json:"website,omitempty" db:"website"`
	AddressLine1   *string        `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2   *string        `json:"address_line2,omitempty" db:"address_line2"`
	City           *string        `json:"city,omitempty" db:"city"`
	State          *string        `json:"state,omitempty" db:"state"`
	PostalCode     *string        `json:"postal_code,omitempty" db:"postal_code"`
	Country        *string        `json:"country,omitempty" db:"country"`
	ContactPersons ContactPersons `json:"contact_persons" db:"contact_persons"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

type TenantLocation struct {
	ID           string    `json:"id" db:"id"`
	TenantID     string    `json:"-" db:"tenant_id"`
	Timezone     string    `json:"timezone" db:"timezone"`
	Locale       string    `json:"locale" db:"locale"`
	Currency     string    `json:"currency" db:"currency"`
	Region       *string   `json:"region,omitempty" db:"region"`
	AddressLine1 *string   `json:"address_line1,omitempty" db:"address_line1"`
	AddressLine2 *string   `json:"address_line2,omitempty" db:"address_line2"`
	City         *string   `json:"city,omitempty" db:"city"`
	State        *string   `json:"state,omitempty" db:"state"`
	PostalCode   *string   `json:"postal_code,omitempty" db:"postal_code"`
	Country      *string   `json:"country,omitempty" db:"country"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}

type TenantSchoolInfo struct {
	ID                string         `json:"id" db:"id"`
	TenantID          string         `json:"-" db:"tenant_id"`
	SchoolType        *string        `json:"school_type,omitempty" db:"school_type"`
	Category          *string        `json:"category,omitempty" db:"category"`
	Levels            pq.StringArray `json:"levels" db:"levels"`
	Capacity          int            `json:"capacity" db:"capacity"`
	CurrentEnrollment int            `json:"current_enrollment" db:"current_enrollment"`
	CreatedAt         time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time      `json:"updated_at" db:"updated_at"`
}

type TenantAccreditation struct {
	ID         string     `json:"id" db:"id"`
	TenantID   string     `json:"-" db:"tenant_id"`
	Name       string     `json:"name" db:"name"`
	IssuedBy   *string    `json:"issued_by,omitempty" db:"issued_by"`
	ValidUntil *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type TenantSubscription struct {
	ID            string           `json:"id" db:"id"`
	TenantID      string           `json:"-" db:"tenant_id"`
	Plan          SubscriptionPlan `json:"plan" db:"plan"`
	Status        string           `json:"status" db:"status"`
	BillingCycle  BillingCycle     `json:"billing_cycle" db:"billing_cycle"`
	BasePrice     float64          `json:"base_price" db:"base_price"`
	PerUserPrice  float64          `json:"per_user_price" db:"per_user_price"`
	MaxStudents   int              `json:"max_students" db:"max_students"`
	MaxStaff      int              `json:"max_staff" db:"max_staff"`
	MaxAdmins     int              `json:"max_admins" db:"max_admins"`
	BillingEmail  *string          `json:"billing_email,omitempty" db:"billing_email"`
	TrialStartsAt *time.Time       `json:"trial_starts_at,omitempty" db:"trial_starts_at"`
	TrialEndsAt   *time.Time       `json:"trial_ends_at,omitempty" db:"trial_ends_at"`
	RenewsAt      *time.Time       `json:"renews_at,omitempty" db:"renews_at"`
	CreatedAt     time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at" db:"updated_at"`
}

type TenantConfiguration struct {
	ID             string    `json:"id" db:"id"`
	TenantID       string    `json:"-" db:"tenant_id"`
	SystemSettings JSONMap   `json:"system_settings" db:"system_settings"`
	FeatureFlags   JSONMap   `json:"feature_flags" db:"feature_flags"`
	Limits         JSONMap   `json:"limits" db:"limits"`
	Customizations JSONMap   `json:"customizations" db:"customizations"`
	APISettings    JSONMap   `json:"api_settings" db:"api_settings"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type TenantCompliance struct {
	ID             string    `json:"id" db:"id"`
	TenantID       string    `json:"-" db:"tenant_id"`
	GDPRCompliant  bool      `json:"gdpr_compliant" db:"gdpr_compliant"`
	COPPACompliant bool      `json:"coppa_compliant" db:"coppa_compliant"`
	FERPACompliant bool      `json:"ferpa_compliant" db:"ferpa_compliant"`
	HIPAACompliant bool      `json:"hipaa_compliant" db:"hipaa_compliant"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type TenantCertification struct {
	ID         string     `json:"id" db:"id"`
	TenantID   string     `json:"-" db:"tenant_id"`
	Name       string     `json:"name" db:"name"`
	IssuedBy   *string    `json:"issued_by,omitempty" db:"issued_by"`
	ValidUntil *time.Time `json:"valid_until,omitempty" db:"valid_until"`
	CreatedAt  time.Time  `json:"created_at" db:"created_at"`
}

type TenantSecurity struct {
	ID               string    `json:"id" db:"id"`
	TenantID         string    `json:"-" db:"tenant_id"`
	MFARequired      bool      `json:"mfa_required" db:"mfa_required"`
	SSOEnabled       bool      `json:"sso_enabled" db:"sso_enabled"`
	EncryptionAtRest bool      `json:"encryption_at_rest" db:"encryption_at_rest"`
	CreatedAt        time.Time `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time `json:"updated_at" db:"updated_at"`
}

type TenantSecurityIncident struct {
	ID         string    `json:"id" db:"id"`
	TenantID   string    `json:"-" db:"tenant_id"`
	Summary    string    `json:"summary" db:"summary"`
	Severity   string    `json:"severity" db:"severity"`
	OccurredAt time.Time `json:"occurred_at" db:"occurred_at"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

type TenantUsage struct {
	ID            string    `json:"id" db:"id"`
	TenantID      string    `json:"-" db:"tenant_id"`
	StudentsCount int       `json:"students_count" db:"students_count"`
	StaffCount    int       `json:"staff_count" db:"staff_count"`
	ClassesCount  int       `json:"classes_count" db:"classes_count"`
	StorageBytes  int64     `json:"storage_bytes" db:"storage_bytes"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
	UpdatedAt     time.Time `json:"updated_at" db:"updated_at"`
}

type TenantBranding struct {
	ID             string    `json:"id" db:"id"`
	TenantID       string    `json:"-" db:"tenant_id"`
	LogoURL        *string   `json:"logo_url,omitempty" db:"logo_url"`
	PrimaryColor   *string   `json:"primary_color,omitempty" db:"primary_color"`
	SecondaryColor *string   `json:"secondary_color,omitempty" db:"secondary_color"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

type TenantIntegration struct {
	ID        string                `json:"id" db:"id"`
	TenantID  string                `json:"-" db:"tenant_id"`
	Kind      TenantIntegrationKind `json:"kind" db:"kind"`
	Name      string                `json:"name" db:"name"`
	Settings  JSONMap               `json:"settings" db:"settings"`
	Enabled   bool                  `json:"enabled" db:"enabled"`
	CreatedAt time.Time             `json:"created_at" db:"created_at"`
	UpdatedAt time.Time             `json:"updated_at" db:"updated_at"`
}

// TenantAggregate is the fully loaded tenant with all owned sub-records.
type TenantAggregate struct {
	Tenant
	ContactInfo       *TenantContactInfo       `json:"contact_info,omitempty"`
	Location          *TenantLocation          `json:"location,omitempty"`
	SchoolInfo        *TenantSchoolInfo        `json:"school_info,omitempty"`
	Accreditations    []TenantAccreditation    `json:"accreditations"`
	Subscription      *TenantSubscription      `json:"subscription,omitempty"`
	Configuration     *TenantConfiguration     `json:"configuration,omitempty"`
	Compliance        *TenantCompliance        `json:"compliance,omitempty"`
	Certifications    []TenantCertification    `json:"certifications"`
	Security          *TenantSecurity          `json:"security,omitempty"`
	SecurityIncidents []TenantSecurityIncident `json:"security_incidents"`
	Usage             *TenantUsage             `json:"usage,omitempty"`
	Branding          *TenantBranding          `json:"branding,omitempty"`
	Integrations      []TenantIntegration      `json:"integrations"`
}

type TenantInsert struct {
	Name           string
	Slug           string
	Status         TenantStatus
	LifecycleStage TenantLifecycleStage
	Tags           []string
	Metadata       JSONMap
	CreatedBy      *string
}

// TenantUpdate patches the tenant root record. Nil fields are left untouched.
type TenantUpdate struct {
	Name           *string
	Slug           *string
	Status         *TenantStatus
	LifecycleStage *TenantLifecycleStage
	Tags           *[]string
	Metadata       *JSONMap
	UpdatedBy      *string
}

func (tu TenantUpdate) IsEmpty() bool {
	return tu.Name == nil && tu.Slug == nil && tu.Status == nil && tu.LifecycleStage == nil && tu.Tags == nil && tu.Metadata == nil
}

type TenantModel struct {
	dbConnectionPool db.DBConnectionPool
}

const (
	tenantSlugUniqueConstraint         = "tenants_slug_key"
	tenantContactEmailUniqueConstraint = "tenant_contact_info_email_key"
)

// Get returns the tenant root record by id, excluding soft-deleted tenants.
func (m *TenantModel) Get(ctx context.Context, sqlExec db.SQLExecuter, id string) (*Tenant, error) {
	const query = `SELECT t.* FROM tenants t WHERE t.id = $1 AND t.deleted_at IS NULL`
	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting tenant %s: %w", id, err)
	}
	return &tenant, nil
}

// GetIncludingDeleted returns the tenant root record even when it is soft-deleted.
func (m *TenantModel) GetIncludingDeleted(ctx context.Context, sqlExec db.SQLExecuter, id string) (*Tenant, error) {
	const query = `SELECT t.* FROM tenants t WHERE t.id = $1`
	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting tenant %s: %w", id, err)
	}
	return &tenant, nil
}

// GetBySlug returns the tenant root record by its slug, excluding soft-deleted tenants.
func (m *TenantModel) GetBySlug(ctx context.Context, sqlExec db.SQLExecuter, slug string) (*Tenant, error) {
	const query = `SELECT t.* FROM tenants t WHERE t.slug = $1 AND t.deleted_at IS NULL`
	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, slug)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting tenant by slug %s: %w", slug, err)
	}
	return &tenant, nil
}

// GetAggregate loads the tenant and all of its owned sub-records.
func (m *TenantModel) GetAggregate(ctx context.Context, sqlExec db.SQLExecuter, id string) (*TenantAggregate, error) {
	tenant, err := m.Get(ctx, sqlExec, id)
	if err != nil {
		return nil, err
	}

	agg := &TenantAggregate{
		Tenant:            *tenant,
		Accreditations:    []TenantAccreditation{},
		Certifications:    []TenantCertification{},
		SecurityIncidents: []TenantSecurityIncident{},
		Integrations:      []TenantIntegration{},
	}

	oneToOne := []struct {
		table string
		dest  interface{}
	}{
		{"tenant_contact_info", &TenantContactInfo{}},
		{"tenant_locations", &TenantLocation{}},
		{"tenant_school_info", &TenantSchoolInfo{}},
		{"tenant_subscriptions", &TenantSubscription{}},
		{"tenant_configurations", &TenantConfiguration{}},
		{"tenant_compliance", &TenantCompliance{}},
		{"tenant_security", &TenantSecurity{}},
		{"tenant_usage", &TenantUsage{}},
		{"tenant_branding", &TenantBranding{}},
	}
	for _, rel := range oneToOne {
		query := fmt.Sprintf("SELECT * FROM %s WHERE tenant_id = $1", rel.table)
		err = sqlExec.GetContext(ctx, rel.dest, query, id)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				continue
			}
			return nil, fmt.Errorf("loading %s for tenant %s: %w", rel.table, id, err)
		}
		switch v := rel.dest.(type) {
		case *TenantContactInfo:
			agg.ContactInfo = v
		case *TenantLocation:
			agg.Location = v
		case *TenantSchoolInfo:
			agg.SchoolInfo = v
		case *TenantSubscription:
			agg.Subscription = v
		case *TenantConfiguration:
			agg.Configuration = v
		case *TenantCompliance:
			agg.Compliance = v
		case *TenantSecurity:
			agg.Security = v
		case *TenantUsage:
			agg.Usage = v
		case *TenantBranding:
			agg.Branding = v
		}
	}

	err = sqlExec.SelectContext(ctx, &agg.Accreditations, "SELECT * FROM tenant_accreditations WHERE tenant_id = $1 ORDER BY created_at", id)
	if err != nil {
		return nil, fmt.Errorf("loading accreditations for tenant %s: %w", id, err)
	}
	err = sqlExec.SelectContext(ctx, &agg.Certifications, "SELECT * FROM tenant_certifications WHERE tenant_id = $1 ORDER BY created_at", id)
	if err != nil {
		return nil, fmt.Errorf("loading certifications for tenant %s: %w", id, err)
	}
	err = sqlExec.SelectContext(ctx, &agg.SecurityIncidents, "SELECT * FROM tenant_security_incidents WHERE tenant_id = $1 ORDER BY occurred_at DESC", id)
	if err != nil {
		return nil, fmt.Errorf("loading security incidents for tenant %s: %w", id, err)
	}
	err = sqlExec.SelectContext(ctx, &agg.Integrations, "SELECT * FROM tenant_integrations WHERE tenant_id = $1 ORDER BY created_at", id)
	if err != nil {
		return nil, fmt.Errorf("loading integrations for tenant %s: %w", id, err)
	}

	return agg, nil
}

// GetAll returns a page of tenant root records according to the query parameters.
func (m *TenantModel) GetAll(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) ([]Tenant, error) {
	tenants := []Tenant{}
	qb := NewQueryBuilder("SELECT t.* FROM tenants t")
	m.applyFilters(qb, queryParams)
	qb.AddSorting(queryParams.SortBy, queryParams.SortOrder, "t")
	qb.AddPagination(queryParams.Page, queryParams.PageLimit)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.SelectContext(ctx, &tenants, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying tenants: %w", err)
	}
	return tenants, nil
}

// Count returns the number of tenants matching the query parameters, ignoring pagination.
func (m *TenantModel) Count(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) (int, error) {
	var count int
	qb := NewQueryBuilder("SELECT COUNT(*) FROM tenants t")
	m.applyFilters(qb, queryParams)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.GetContext(ctx, &count, query, params...)
	if err != nil {
		return 0, fmt.Errorf("counting tenants: %w", err)
	}
	return count, nil
}

func (m *TenantModel) applyFilters(qb *QueryBuilder, queryParams *QueryParams) {
	if !queryParams.IncludeDeleted {
		qb.AddCondition("t.deleted_at IS NULL")
	}
	if queryParams.Query != "" {
		q := "%" + queryParams.Query + "%"
		qb.AddCondition("(t.name ILIKE ? OR t.slug ILIKE ?)", q, q)
	}
	if status, ok := queryParams.Filters[FilterKeyStatus]; ok {
		qb.AddCondition("t."+FilterKeyStatus.Equals(), status)
	}
	if stage, ok := queryParams.Filters[FilterKeyLifecycleStage]; ok {
		qb.AddCondition("t."+FilterKeyLifecycleStage.Equals(), stage)
	}
	if plan, ok := queryParams.Filters[FilterKeyPlan]; ok {
		qb.AddCondition("EXISTS (SELECT 1 FROM tenant_subscriptions ts WHERE ts.tenant_id = t.id AND ts.plan = ?)", plan)
	}
}

// SlugExists reports whether a non-deleted tenant already uses the given slug.
// excludeTenantID may be empty.
func (m *TenantModel) SlugExists(ctx context.Context, sqlExec db.SQLExecuter, slug string, excludeTenantID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM tenants
			WHERE slug = $1
			AND deleted_at IS NULL
			AND ($2 = '' OR id::text <> $2)
		)
	`
	var exists bool
	err := sqlExec.GetContext(ctx, &exists, query, slug, excludeTenantID)
	if err != nil {
		return false, fmt.Errorf("checking slug existence for %s: %w", slug, err)
	}
	return exists, nil
}

// ContactEmailExists reports whether another tenant already registered the given contact email.
func (m *TenantModel) ContactEmailExists(ctx context.Context, sqlExec db.SQLExecuter, email string, excludeTenantID string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1 FROM tenant_contact_info
			WHERE email = $1
			AND ($2 = '' OR tenant_id::text <> $2)
		)
	`
	var exists bool
	err := sqlExec.GetContext(ctx, &exists, query, email, excludeTenantID)
	if err != nil {
		return false, fmt.Errorf("checking contact email existence: %w", err)
	}
	return exists, nil
}

// Insert creates the tenant root record.
func (m *TenantModel) Insert(ctx context.Context, sqlExec db.SQLExecuter, insert TenantInsert) (*Tenant, error) {
	const query = `
		INSERT INTO tenants (id, name, slug, status, lifecycle_stage, tags, metadata, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING *
	`
	metadata := insert.Metadata
	if metadata == nil {
		metadata = JSONMap{}
	}
	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query,
		uuid.NewString(), insert.Name, insert.Slug, insert.Status, insert.LifecycleStage,
		pq.StringArray(insert.Tags), metadata, insert.CreatedBy)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == tenantSlugUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting tenant: %w", err)
	}
	return &tenant, nil
}

// InsertContactInfo creates the contact-info sub-record for a tenant.
func (m *TenantModel) InsertContactInfo(ctx context.Context, sqlExec db.SQLExecuter, info TenantContactInfo) (*TenantContactInfo, error) {
	const query = `
		INSERT INTO tenant_contact_info
			(tenant_id, phone, email, website, address_line1, address_line2, city, state, postal_code, country, contact_persons)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *
	`
	persons := info.ContactPersons
	if persons == nil {
		persons = ContactPersons{}
	}
	var inserted TenantContactInfo
	err := sqlExec.GetContext(ctx, &inserted, query,
		info.TenantID, info.Phone, info.Email, info.Website,
		info.AddressLine1, info.AddressLine2, info.City, info.State, info.PostalCode, info.Country,
		persons)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == tenantContactEmailUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting tenant contact info: %w", err)
	}
	return &inserted, nil
}

// InsertLocation creates the location sub-record for a tenant.
func (m *TenantModel) InsertLocation(ctx context.Context, sqlExec db.SQLExecuter, loc TenantLocation) (*TenantLocation, error) {
	const query = `
		INSERT INTO tenant_locations
			(tenant_id, timezone, locale, currency, region, address_line1, address_line2, city, state, postal_code, country)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING *
	`
	if loc.Timezone == "" {
		loc.Timezone = "UTC"
	}
	if loc.Locale == "" {
		loc.Locale = "en-US"
	}
	if loc.Currency == "" {
		loc.Currency = "USD"
	}
	var inserted TenantLocation
	err := sqlExec.GetContext(ctx, &inserted, query,
		loc.TenantID, loc.Timezone, loc.Locale, loc.Currency, loc.Region,
		loc.AddressLine1, loc.AddressLine2, loc.City, loc.State, loc.PostalCode, loc.Country)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant location: %w", err)
	}
	return &inserted, nil
}

// InsertSchoolInfo creates the school-info sub-record for a tenant.
func (m *TenantModel) InsertSchoolInfo(ctx context.Context, sqlExec db.SQLExecuter, info TenantSchoolInfo) (*TenantSchoolInfo, error) {
	const query = `
		INSERT INTO tenant_school_info (tenant_id, school_type, category, levels, capacity, current_enrollment)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`
	levels := info.Levels
	if levels == nil {
		levels = pq.StringArray{}
	}
	var inserted TenantSchoolInfo
	err := sqlExec.GetContext(ctx, &inserted, query,
		info.TenantID, info.SchoolType, info.Category, levels, info.Capacity, info.CurrentEnrollment)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant school info: %w", err)
	}
	return &inserted, nil
}

// InsertSubscription creates the subscription sub-record for a tenant.
func (m *TenantModel) InsertSubscription(ctx context.Context, sqlExec db.SQLExecuter, sub TenantSubscription) (*TenantSubscription, error) {
	const query = `
		INSERT INTO tenant_subscriptions
			(tenant_id, plan, status, billing_cycle, base_price, per_user_price, max_students, max_staff, max_admins,
			 billing_email, trial_starts_at, trial_ends_at, renews_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING *
	`
	var inserted TenantSubscription
	err := sqlExec.GetContext(ctx, &inserted, query,
		sub.TenantID, sub.Plan, sub.Status, sub.BillingCycle,
		sub.BasePrice, sub.PerUserPrice, sub.MaxStudents, sub.MaxStaff, sub.MaxAdmins,
		sub.BillingEmail, sub.TrialStartsAt, sub.TrialEndsAt, sub.RenewsAt)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant subscription: %w", err)
	}
	return &inserted, nil
}

// InsertConfiguration creates the configuration sub-record for a tenant.
func (m *TenantModel) InsertConfiguration(ctx context.Context, sqlExec db.SQLExecuter, cfg TenantConfiguration) (*TenantConfiguration, error) {
	const query = `
		INSERT INTO tenant_configurations (tenant_id, system_settings, feature_flags, limits, customizations, api_settings)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`
	for _, field := range []*JSONMap{&cfg.SystemSettings, &cfg.FeatureFlags, &cfg.Limits, &cfg.Customizations, &cfg.APISettings} {
		if *field == nil {
			*field = JSONMap{}
		}
	}
	var inserted TenantConfiguration
	err := sqlExec.GetContext(ctx, &inserted, query,
		cfg.TenantID, cfg.SystemSettings, cfg.FeatureFlags, cfg.Limits, cfg.Customizations, cfg.APISettings)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant configuration: %w", err)
	}
	return &inserted, nil
}

// InsertCompliance creates the compliance sub-record for a tenant.
func (m *TenantModel) InsertCompliance(ctx context.Context, sqlExec db.SQLExecuter, c TenantCompliance) (*TenantCompliance, error) {
	const query = `
		INSERT INTO tenant_compliance (tenant_id, gdpr_compliant, coppa_compliant, ferpa_compliant, hipaa_compliant)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`
	var inserted TenantCompliance
	err := sqlExec.GetContext(ctx, &inserted, query,
		c.TenantID, c.GDPRCompliant, c.COPPACompliant, c.FERPACompliant, c.HIPAACompliant)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant compliance: %w", err)
	}
	return &inserted, nil
}

// InsertSecurity creates the security sub-record for a tenant.
func (m *TenantModel) InsertSecurity(ctx context.Context, sqlExec db.SQLExecuter, s TenantSecurity) (*TenantSecurity, error) {
	const query = `
		INSERT INTO tenant_security (tenant_id, mfa_required, sso_enabled, encryption_at_rest)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`
	var inserted TenantSecurity
	err := sqlExec.GetContext(ctx, &inserted, query, s.TenantID, s.MFARequired, s.SSOEnabled, s.EncryptionAtRest)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant security: %w", err)
	}
	return &inserted, nil
}

// InsertUsage creates the usage sub-record for a tenant.
func (m *TenantModel) InsertUsage(ctx context.Context, sqlExec db.SQLExecuter, u TenantUsage) (*TenantUsage, error) {
	const query = `
		INSERT INTO tenant_usage (tenant_id, students_count, staff_count, classes_count, storage_bytes)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`
	var inserted TenantUsage
	err := sqlExec.GetContext(ctx, &inserted, query, u.TenantID, u.StudentsCount, u.StaffCount, u.ClassesCount, u.StorageBytes)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant usage: %w", err)
	}
	return &inserted, nil
}

// InsertBranding creates the branding sub-record for a tenant.
func (m *TenantModel) InsertBranding(ctx context.Context, sqlExec db.SQLExecuter, b TenantBranding) (*TenantBranding, error) {
	const query = `
		INSERT INTO tenant_branding (tenant_id, logo_url, primary_color, secondary_color)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`
	var inserted TenantBranding
	err := sqlExec.GetContext(ctx, &inserted, query, b.TenantID, b.LogoURL, b.PrimaryColor, b.SecondaryColor)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant branding: %w", err)
	}
	return &inserted, nil
}

// InsertAccreditation appends an accreditation record to a tenant.
func (m *TenantModel) InsertAccreditation(ctx context.Context, sqlExec db.SQLExecuter, a TenantAccreditation) (*TenantAccreditation, error) {
	const query = `
		INSERT INTO tenant_accreditations (tenant_id, name, issued_by, valid_until)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`
	var inserted TenantAccreditation
	err := sqlExec.GetContext(ctx, &inserted, query, a.TenantID, a.Name, a.IssuedBy, a.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant accreditation: %w", err)
	}
	return &inserted, nil
}

// InsertCertification appends a certification record to a tenant.
func (m *TenantModel) InsertCertification(ctx context.Context, sqlExec db.SQLExecuter, c TenantCertification) (*TenantCertification, error) {
	const query = `
		INSERT INTO tenant_certifications (tenant_id, name, issued_by, valid_until)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`
	var inserted TenantCertification
	err := sqlExec.GetContext(ctx, &inserted, query, c.TenantID, c.Name, c.IssuedBy, c.ValidUntil)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant certification: %w", err)
	}
	return &inserted, nil
}

// InsertSecurityIncident appends a security incident record to a tenant.
func (m *TenantModel) InsertSecurityIncident(ctx context.Context, sqlExec db.SQLExecuter, i TenantSecurityIncident) (*TenantSecurityIncident, error) {
	const query = `
		INSERT INTO tenant_security_incidents (tenant_id, summary, severity, occurred_at)
		VALUES ($1, $2, $3, $4)
		RETURNING *
	`
	if i.Severity == "" {
		i.Severity = "LOW"
	}
	occurredAt := i.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now()
	}
	var inserted TenantSecurityIncident
	err := sqlExec.GetContext(ctx, &inserted, query, i.TenantID, i.Summary, i.Severity, occurredAt)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant security incident: %w", err)
	}
	return &inserted, nil
}

// InsertIntegration appends an integration record to a tenant.
func (m *TenantModel) InsertIntegration(ctx context.Context, sqlExec db.SQLExecuter, i TenantIntegration) (*TenantIntegration, error) {
	const query = `
		INSERT INTO tenant_integrations (tenant_id, kind, name, settings, enabled)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`
	settings := i.Settings
	if settings == nil {
		settings = JSONMap{}
	}
	var inserted TenantIntegration
	err := sqlExec.GetContext(ctx, &inserted, query, i.TenantID, i.Kind, i.Name, settings, i.Enabled)
	if err != nil {
		return nil, fmt.Errorf("inserting tenant integration: %w", err)
	}
	return &inserted, nil
}

// DeleteIntegration removes an integration record from a tenant.
func (m *TenantModel) DeleteIntegration(ctx context.Context, sqlExec db.SQLExecuter, tenantID, integrationID string) error {
	const query = `DELETE FROM tenant_integrations WHERE id = $1 AND tenant_id = $2`
	res, err := sqlExec.ExecContext(ctx, query, integrationID, tenantID)
	if err != nil {
		return fmt.Errorf("deleting tenant integration %s: %w", integrationID, err)
	}
	numRowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting number of rows affected: %w", err)
	}
	if numRowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

// Update patches the tenant root record and returns the updated row.
func (m *TenantModel) Update(ctx context.Context, sqlExec db.SQLExecuter, id string, update TenantUpdate) (*Tenant, error) {
	if update.IsEmpty() {
		return nil, fmt.Errorf("provide at least one field to update a tenant: %w", ErrMissingInput)
	}

	fields := []string{}
	args := []interface{}{}
	if update.Name != nil {
		fields = append(fields, "name = ?")
		args = append(args, *update.Name)
	}
	if update.Slug != nil {
		fields = append(fields, "slug = ?")
		args = append(args, *update.Slug)
	}
	if update.Status != nil {
		fields = append(fields, "status = ?")
		args = append(args, *update.Status)
	}
	if update.LifecycleStage != nil {
		fields = append(fields, "lifecycle_stage = ?")
		args = append(args, *update.LifecycleStage)
	}
	if update.Tags != nil {
		fields = append(fields, "tags = ?")
		args = append(args, pq.StringArray(*update.Tags))
	}
	if update.Metadata != nil {
		fields = append(fields, "metadata = ?")
		args = append(args, *update.Metadata)
	}
	if update.UpdatedBy != nil {
		fields = append(fields, "updated_by = ?")
		args = append(args, *update.UpdatedBy)
	}
	args = append(args, id)

	query := sqlExec.Rebind(fmt.Sprintf(`
		UPDATE tenants
		SET %s
		WHERE id = ? AND deleted_at IS NULL
		RETURNING *
	`, strings.Join(fields, ", ")))

	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == tenantSlugUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("updating tenant %s: %w", id, err)
	}
	return &tenant, nil
}

// UpdateContactInfo patches non-nil fields of the contact-info sub-record.
func (m *TenantModel) UpdateContactInfo(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, info TenantContactInfo) (*TenantContactInfo, error) {
	const query = `
		UPDATE tenant_contact_info
		SET phone = COALESCE($2, phone),
			email = COALESCE(NULLIF($3, ''), email),
			website = COALESCE($4, website),
			address_line1 = COALESCE($5, address_line1),
			address_line2 = COALESCE($6, address_line2),
			city = COALESCE($7, city),
			state = COALESCE($8, state),
			postal_code = COALESCE($9, postal_code),
			country = COALESCE($10, country),
			contact_persons = COALESCE($11, contact_persons),
			updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var personsArg interface{}
	if info.ContactPersons != nil {
		personsArg = info.ContactPersons
	}
	var updated TenantContactInfo
	err := sqlExec.GetContext(ctx, &updated, query,
		tenantID, info.Phone, info.Email, info.Website,
		info.AddressLine1, info.AddressLine2, info.City, info.State, info.PostalCode, info.Country,
		personsArg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == tenantContactEmailUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("updating tenant contact info: %w", err)
	}
	return &updated, nil
}

// UpdateSubscription replaces the plan-dependent subscription values in place.
func (m *TenantModel) UpdateSubscription(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, sub TenantSubscription) (*TenantSubscription, error) {
	const query = `
		UPDATE tenant_subscriptions
		SET plan = $2,
			status = $3,
			billing_cycle = $4,
			base_price = $5,
			per_user_price = $6,
			max_students = $7,
			max_staff = $8,
			max_admins = $9,
			billing_email = COALESCE($10, billing_email),
			renews_at = $11
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantSubscription
	err := sqlExec.GetContext(ctx, &updated, query,
		tenantID, sub.Plan, sub.Status, sub.BillingCycle,
		sub.BasePrice, sub.PerUserPrice, sub.MaxStudents, sub.MaxStaff, sub.MaxAdmins,
		sub.BillingEmail, sub.RenewsAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant subscription: %w", err)
	}
	return &updated, nil
}

// UpdateConfiguration replaces the non-nil jsonb sections of the configuration sub-record.
func (m *TenantModel) UpdateConfiguration(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, cfg TenantConfiguration) (*TenantConfiguration, error) {
	const query = `
		UPDATE tenant_configurations
		SET system_settings = COALESCE($2, system_settings),
			feature_flags = COALESCE($3, feature_flags),
			limits = COALESCE($4, limits),
			customizations = COALESCE($5, customizations),
			api_settings = COALESCE($6, api_settings),
			updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantConfiguration
	err := sqlExec.GetContext(ctx, &updated, query,
		tenantID, jsonArg(cfg.SystemSettings), jsonArg(cfg.FeatureFlags), jsonArg(cfg.Limits), jsonArg(cfg.Customizations), jsonArg(cfg.APISettings))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant configuration: %w", err)
	}
	return &updated, nil
}

func jsonArg(m JSONMap) interface{} {
	if m == nil {
		return nil
	}
	return m
}

// UpdateCompliance replaces the compliance flags.
func (m *TenantModel) UpdateCompliance(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, c TenantCompliance) (*TenantCompliance, error) {
	const query = `
		UPDATE tenant_compliance
		SET gdpr_compliant = $2, coppa_compliant = $3, ferpa_compliant = $4, hipaa_compliant = $5, updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantCompliance
	err := sqlExec.GetContext(ctx, &updated, query, tenantID, c.GDPRCompliant, c.COPPACompliant, c.FERPACompliant, c.HIPAACompliant)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant compliance: %w", err)
	}
	return &updated, nil
}

// UpdateSecurity replaces the security flags.
func (m *TenantModel) UpdateSecurity(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, s TenantSecurity) (*TenantSecurity, error) {
	const query = `
		UPDATE tenant_security
		SET mfa_required = $2, sso_enabled = $3, encryption_at_rest = $4, updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantSecurity
	err := sqlExec.GetContext(ctx, &updated, query, tenantID, s.MFARequired, s.SSOEnabled, s.EncryptionAtRest)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant security: %w", err)
	}
	return &updated, nil
}

// UpdateBranding replaces the non-nil branding fields.
func (m *TenantModel) UpdateBranding(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, b TenantBranding) (*TenantBranding, error) {
	const query = `
		UPDATE tenant_branding
		SET logo_url = COALESCE($2, logo_url),
			primary_color = COALESCE($3, primary_color),
			secondary_color = COALESCE($4, secondary_color),
			updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantBranding
	err := sqlExec.GetContext(ctx, &updated, query, tenantID, b.LogoURL, b.PrimaryColor, b.SecondaryColor)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant branding: %w", err)
	}
	return &updated, nil
}

// UpdateUsage replaces the usage counters.
func (m *TenantModel) UpdateUsage(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, u TenantUsage) (*TenantUsage, error) {
	const query = `
		UPDATE tenant_usage
		SET students_count = $2, staff_count = $3, classes_count = $4, storage_bytes = $5, updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantUsage
	err := sqlExec.GetContext(ctx, &updated, query, tenantID, u.StudentsCount, u.StaffCount, u.ClassesCount, u.StorageBytes)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant usage: %w", err)
	}
	return &updated, nil
}

// UpdateSchoolInfo replaces the school-info sub-record values.
func (m *TenantModel) UpdateSchoolInfo(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, info TenantSchoolInfo) (*TenantSchoolInfo, error) {
	const query = `
		UPDATE tenant_school_info
		SET school_type = COALESCE($2, school_type),
			category = COALESCE($3, category),
			levels = COALESCE($4, levels),
			capacity = $5,
			current_enrollment = $6,
			updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var levelsArg interface{}
	if info.Levels != nil {
		levelsArg = info.Levels
	}
	var updated TenantSchoolInfo
	err := sqlExec.GetContext(ctx, &updated, query,
		tenantID, info.SchoolType, info.Category, levelsArg, info.Capacity, info.CurrentEnrollment)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant school info: %w", err)
	}
	return &updated, nil
}

// UpdateLocation replaces the non-nil location fields.
func (m *TenantModel) UpdateLocation(ctx context.Context, sqlExec db.SQLExecuter, tenantID string, loc TenantLocation) (*TenantLocation, error) {
	const query = `
		UPDATE tenant_locations
		SET timezone = COALESCE(NULLIF($2, ''), timezone),
			locale = COALESCE(NULLIF($3, ''), locale),
			currency = COALESCE(NULLIF($4, ''), currency),
			region = COALESCE($5, region),
			address_line1 = COALESCE($6, address_line1),
			address_line2 = COALESCE($7, address_line2),
			city = COALESCE($8, city),
			state = COALESCE($9, state),
			postal_code = COALESCE($10, postal_code),
			country = COALESCE($11, country),
			updated_at = NOW()
		WHERE tenant_id = $1
		RETURNING *
	`
	var updated TenantLocation
	err := sqlExec.GetContext(ctx, &updated, query,
		tenantID, loc.Timezone, loc.Locale, loc.Currency, loc.Region,
		loc.AddressLine1, loc.AddressLine2, loc.City, loc.State, loc.PostalCode, loc.Country)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating tenant location: %w", err)
	}
	return &updated, nil
}

// SoftDelete marks the tenant as deleted without touching its sub-records.
func (m *TenantModel) SoftDelete(ctx context.Context, sqlExec db.SQLExecuter, id string) (*Tenant, error) {
	const query = `
		UPDATE tenants
		SET deleted_at = NOW(), status = 'TERMINATED'
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING *
	`
	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("soft deleting tenant %s: %w", id, err)
	}
	return &tenant, nil
}

// Restore clears the soft-delete marker of a tenant.
func (m *TenantModel) Restore(ctx context.Context, sqlExec db.SQLExecuter, id string) (*Tenant, error) {
	const query = `
		UPDATE tenants
		SET deleted_at = NULL, status = 'INACTIVE'
		WHERE id = $1 AND deleted_at IS NOT NULL
		RETURNING *
	`
	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("restoring tenant %s: %w", id, err)
	}
	return &tenant, nil
}

// HardDelete permanently removes the tenant and, through ON DELETE CASCADE, all its sub-records.
// Only soft-deleted tenants can be permanently removed.
func (m *TenantModel) HardDelete(ctx context.Context, sqlExec db.SQLExecuter, id string) error {
	const query = `DELETE FROM tenants WHERE id = $1 AND deleted_at IS NOT NULL`
	res, err := sqlExec.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("hard deleting tenant %s: %w", id, err)
	}
	numRowsAffected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("getting number of rows affected: %w", err)
	}
	if numRowsAffected == 0 {
		return ErrRecordNotFound
	}
	return nil
}

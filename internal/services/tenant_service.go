package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/internal/cache"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/monitor"
	"github.com/classterra/school-platform-backend/internal/utils"
)

var (
	ErrTenantSlugInUse         = errors.New("tenant slug already in use")
	ErrTenantEmailInUse        = errors.New("tenant contact email already in use")
	ErrUserAlreadyHasTenant    = errors.New("user already belongs to a tenant")
	ErrUserEmailNotVerified    = errors.New("user email is not verified")
	ErrTenantNotDeleted        = errors.New("tenant is not deleted")
	ErrTenantStatusNotToggable = errors.New("tenant status can only be toggled between active and inactive")
)

const (
	trialSubscriptionStatus  = "TRIALING"
	activeSubscriptionStatus = "ACTIVE"
)

// CreateTenantParams carries the tenant aggregate to provision. Nil sub-records get
// zero-value rows so every tenant owns its full set of sub-records.
type CreateTenantParams struct {
	Insert         data.TenantInsert
	ContactInfo    data.TenantContactInfo
	Location       *data.TenantLocation
	SchoolInfo     *data.TenantSchoolInfo
	Plan           data.SubscriptionPlan
	BillingCycle   data.BillingCycle
	BillingEmail   *string
	Compliance     *data.TenantCompliance
	Security       *data.TenantSecurity
	Branding       *data.TenantBranding
	Accreditations []data.TenantAccreditation
	Certifications []data.TenantCertification
	Integrations   []data.TenantIntegration
}

// UpdateTenantParams patches the tenant root and any present sub-records in one
// transaction. Nil sections are left untouched.
type UpdateTenantParams struct {
	Root        *data.TenantUpdate
	ContactInfo *data.TenantContactInfo
	Location    *data.TenantLocation
	SchoolInfo  *data.TenantSchoolInfo
	Branding    *data.TenantBranding
	Compliance  *data.TenantCompliance
	Security    *data.TenantSecurity
	Usage       *data.TenantUsage
}

type TenantServiceInterface interface {
	CreateTenant(ctx context.Context, params CreateTenantParams) (*data.TenantAggregate, error)
	CreateMinimalTenant(ctx context.Context, name, email, creatingUserID string) (*data.TenantAggregate, error)
	GetTenant(ctx context.Context, id string) (*data.TenantAggregate, error)
	GetTenantBySlug(ctx context.Context, slug string) (*data.Tenant, error)
	GetTenants(ctx context.Context, queryParams *data.QueryParams) ([]data.Tenant, int, error)
	UpdateTenant(ctx context.Context, id string, params UpdateTenantParams) (*data.TenantAggregate, error)
	ToggleTenantStatus(ctx context.Context, id string) (*data.Tenant, error)
	UpdateSubscription(ctx context.Context, tenantID string, plan data.SubscriptionPlan, cycle data.BillingCycle, billingEmail *string) (*data.TenantSubscription, error)
	AddIntegration(ctx context.Context, tenantID string, integration data.TenantIntegration) (*data.TenantIntegration, error)
	RemoveIntegration(ctx context.Context, tenantID, integrationID string) error
	SoftDeleteTenant(ctx context.Context, id string) (*data.Tenant, error)
	RestoreTenant(ctx context.Context, id string) (*data.Tenant, error)
	HardDeleteTenant(ctx context.Context, id string) error
}

type TenantService struct {
	models         *data.Models
	monitorService monitor.MonitorServiceInterface
	tenantCache    *cache.TenantCache
}

var _ TenantServiceInterface = (*TenantService)(nil)

func NewTenantService(models *data.Models, monitorService monitor.MonitorServiceInterface, tenantCache *cache.TenantCache) (*TenantService, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required for TenantService")
	}
	return &TenantService{
		models:         models,
		monitorService: monitorService,
		tenantCache:    tenantCache,
	}, nil
}

// CreateTenant provisions a tenant and its whole owned graph in a single transaction.
// The plan-dependent subscription values and feature flags come from the plan defaults
// table. New tenants start INACTIVE in the ONBOARDING lifecycle stage.
func (s *TenantService) CreateTenant(ctx context.Context, params CreateTenantParams) (*data.TenantAggregate, error) {
	defaults, err := data.DefaultsForPlan(params.Plan)
	if err != nil {
		return nil, fmt.Errorf("resolving plan defaults: %w", err)
	}

	tenantID, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (string, error) {
		if txErr := s.checkSlugAndEmailAvailable(ctx, dbTx, params.Insert.Slug, params.ContactInfo.Email, ""); txErr != nil {
			return "", txErr
		}

		params.Insert.Status = data.InactiveTenantStatus
		params.Insert.LifecycleStage = data.OnboardingLifecycleStage
		tenant, txErr := s.models.Tenants.Insert(ctx, dbTx, params.Insert)
		if txErr != nil {
			return "", fmt.Errorf("inserting tenant: %w", txErr)
		}

		if txErr = s.insertOwnedGraph(ctx, dbTx, tenant.ID, params, defaults); txErr != nil {
			return "", txErr
		}

		return tenant.ID, nil
	})
	if err != nil {
		return nil, err
	}

	if s.monitorService != nil {
		if monitorErr := s.monitorService.MonitorCounters(monitor.TenantsCreatedCounterTag, map[string]string{"plan": string(params.Plan)}); monitorErr != nil {
			log.WithContext(ctx).Errorf("Error monitoring tenants created counter: %s", monitorErr)
		}
	}

	return s.models.Tenants.GetAggregate(ctx, s.models.DBConnectionPool, tenantID)
}

// CreateMinimalTenant provisions a starter-plan tenant from just a name and a contact
// email, and attaches the creating user as the tenant ADMIN. The user must have a
// verified email and no tenant membership yet.
func (s *TenantService) CreateMinimalTenant(ctx context.Context, name, email, creatingUserID string) (*data.TenantAggregate, error) {
	defaults, err := data.DefaultsForPlan(data.StarterSubscriptionPlan)
	if err != nil {
		return nil, fmt.Errorf("resolving plan defaults: %w", err)
	}

	tenantID, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (string, error) {
		user, txErr := s.models.Users.Get(ctx, dbTx, creatingUserID)
		if txErr != nil {
			return "", fmt.Errorf("querying creating user: %w", txErr)
		}
		if !user.EmailVerified {
			return "", ErrUserEmailNotVerified
		}
		if user.TenantID != nil {
			return "", ErrUserAlreadyHasTenant
		}

		slug := utils.Slugify(name)
		if txErr = s.checkSlugAndEmailAvailable(ctx, dbTx, slug, email, ""); txErr != nil {
			return "", txErr
		}

		tenant, txErr := s.models.Tenants.Insert(ctx, dbTx, data.TenantInsert{
			Name:           name,
			Slug:           slug,
			Status:         data.InactiveTenantStatus,
			LifecycleStage: data.OnboardingLifecycleStage,
			CreatedBy:      &creatingUserID,
		})
		if txErr != nil {
			return "", fmt.Errorf("inserting tenant: %w", txErr)
		}

		params := CreateTenantParams{
			ContactInfo:  data.TenantContactInfo{Email: email},
			Plan:         data.StarterSubscriptionPlan,
			BillingCycle: data.MonthlyBillingCycle,
		}
		if txErr = s.insertOwnedGraph(ctx, dbTx, tenant.ID, params, defaults); txErr != nil {
			return "", txErr
		}

		if _, txErr = s.models.Users.AssignTenant(ctx, dbTx, creatingUserID, tenant.ID, data.AdminUserRole); txErr != nil {
			return "", fmt.Errorf("assigning creating user to tenant: %w", txErr)
		}

		return tenant.ID, nil
	})
	if err != nil {
		return nil, err
	}

	if s.monitorService != nil {
		if monitorErr := s.monitorService.MonitorCounters(monitor.TenantsCreatedCounterTag, map[string]string{"plan": string(data.StarterSubscriptionPlan)}); monitorErr != nil {
			log.WithContext(ctx).Errorf("Error monitoring tenants created counter: %s", monitorErr)
		}
	}

	return s.models.Tenants.GetAggregate(ctx, s.models.DBConnectionPool, tenantID)
}

func (s *TenantService) insertOwnedGraph(ctx context.Context, dbTx db.DBTransaction, tenantID string, params CreateTenantParams, defaults data.PlanDefaults) error {
	params.ContactInfo.TenantID = tenantID
	if _, err := s.models.Tenants.InsertContactInfo(ctx, dbTx, params.ContactInfo); err != nil {
		return fmt.Errorf("inserting tenant contact info: %w", err)
	}

	location := data.TenantLocation{}
	if params.Location != nil {
		location = *params.Location
	}
	location.TenantID = tenantID
	if _, err := s.models.Tenants.InsertLocation(ctx, dbTx, location); err != nil {
		return fmt.Errorf("inserting tenant location: %w", err)
	}

	schoolInfo := data.TenantSchoolInfo{}
	if params.SchoolInfo != nil {
		schoolInfo = *params.SchoolInfo
	}
	schoolInfo.TenantID = tenantID
	if _, err := s.models.Tenants.InsertSchoolInfo(ctx, dbTx, schoolInfo); err != nil {
		return fmt.Errorf("inserting tenant school info: %w", err)
	}

	now := time.Now().UTC()
	trialEndsAt := now.AddDate(0, 0, defaults.TrialDays)
	renewsAt := params.BillingCycle.NextRenewalDate(trialEndsAt)
	subscription := data.TenantSubscription{
		TenantID:      tenantID,
		Plan:          params.Plan,
		Status:        trialSubscriptionStatus,
		BillingCycle:  params.BillingCycle,
		BasePrice:     defaults.BasePrice,
		PerUserPrice:  defaults.PerUserPrice,
		MaxStudents:   defaults.MaxStudents,
		MaxStaff:      defaults.MaxStaff,
		MaxAdmins:     defaults.MaxAdmins,
		BillingEmail:  params.BillingEmail,
		TrialStartsAt: &now,
		TrialEndsAt:   &trialEndsAt,
		RenewsAt:      &renewsAt,
	}
	if _, err := s.models.Tenants.InsertSubscription(ctx, dbTx, subscription); err != nil {
		return fmt.Errorf("inserting tenant subscription: %w", err)
	}

	configuration := data.TenantConfiguration{
		TenantID:     tenantID,
		FeatureFlags: featureFlagsToJSONMap(defaults.FeatureFlags),
		Limits: data.JSONMap{
			"max_students": defaults.MaxStudents,
			"max_staff":    defaults.MaxStaff,
			"max_admins":   defaults.MaxAdmins,
		},
	}
	if _, err := s.models.Tenants.InsertConfiguration(ctx, dbTx, configuration); err != nil {
		return fmt.Errorf("inserting tenant configuration: %w", err)
	}

	compliance := data.TenantCompliance{}
	if params.Compliance != nil {
		compliance = *params.Compliance
	}
	compliance.TenantID = tenantID
	if _, err := s.models.Tenants.InsertCompliance(ctx, dbTx, compliance); err != nil {
		return fmt.Errorf("inserting tenant compliance: %w", err)
	}

	security := data.TenantSecurity{}
	if params.Security != nil {
		security = *params.Security
	}
	security.TenantID = tenantID
	if _, err := s.models.Tenants.InsertSecurity(ctx, dbTx, security); err != nil {
		return fmt.Errorf("inserting tenant security: %w", err)
	}

	if _, err := s.models.Tenants.InsertUsage(ctx, dbTx, data.TenantUsage{TenantID: tenantID}); err != nil {
		return fmt.Errorf("inserting tenant usage: %w", err)
	}

	branding := data.TenantBranding{}
	if params.Branding != nil {
		branding = *params.Branding
	}
	branding.TenantID = tenantID
	if _, err := s.models.Tenants.InsertBranding(ctx, dbTx, branding); err != nil {
		return fmt.Errorf("inserting tenant branding: %w", err)
	}

	for _, accreditation := range params.Accreditations {
		accreditation.TenantID = tenantID
		if _, err := s.models.Tenants.InsertAccreditation(ctx, dbTx, accreditation); err != nil {
			return fmt.Errorf("inserting tenant accreditation: %w", err)
		}
	}
	for _, certification := range params.Certifications {
		certification.TenantID = tenantID
		if _, err := s.models.Tenants.InsertCertification(ctx, dbTx, certification); err != nil {
			return fmt.Errorf("inserting tenant certification: %w", err)
		}
	}
	for _, integration := range params.Integrations {
		integration.TenantID = tenantID
		if _, err := s.models.Tenants.InsertIntegration(ctx, dbTx, integration); err != nil {
			return fmt.Errorf("inserting tenant integration: %w", err)
		}
	}

	return nil
}

func (s *TenantService) checkSlugAndEmailAvailable(ctx context.Context, sqlExec db.SQLExecuter, slug, email, excludeTenantID string) error {
	slugExists, err := s.models.Tenants.SlugExists(ctx, sqlExec, slug, excludeTenantID)
	if err != nil {
		return fmt.Errorf("checking tenant slug: %w", err)
	}
	if slugExists {
		return ErrTenantSlugInUse
	}

	emailExists, err := s.models.Tenants.ContactEmailExists(ctx, sqlExec, email, excludeTenantID)
	if err != nil {
		return fmt.Errorf("checking tenant contact email: %w", err)
	}
	if emailExists {
		return ErrTenantEmailInUse
	}

	return nil
}

func featureFlagsToJSONMap(flags map[string]bool) data.JSONMap {
	m := make(data.JSONMap, len(flags))
	for k, v := range flags {
		m[k] = v
	}
	return m
}

func (s *TenantService) GetTenant(ctx context.Context, id string) (*data.TenantAggregate, error) {
	return s.models.Tenants.GetAggregate(ctx, s.models.DBConnectionPool, id)
}

// GetTenantBySlug resolves a tenant by slug, serving from the in-memory cache when warm.
func (s *TenantService) GetTenantBySlug(ctx context.Context, slug string) (*data.Tenant, error) {
	if s.tenantCache != nil {
		if tenant, ok := s.tenantCache.GetBySlug(slug); ok {
			return tenant, nil
		}
	}

	tenant, err := s.models.Tenants.GetBySlug(ctx, s.models.DBConnectionPool, slug)
	if err != nil {
		return nil, err
	}

	if s.tenantCache != nil {
		s.tenantCache.Set(tenant)
	}
	return tenant, nil
}

func (s *TenantService) GetTenants(ctx context.Context, queryParams *data.QueryParams) ([]data.Tenant, int, error) {
	totalTenants, err := s.models.Tenants.Count(ctx, s.models.DBConnectionPool, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("counting tenants: %w", err)
	}

	if totalTenants == 0 {
		return []data.Tenant{}, 0, nil
	}

	tenants, err := s.models.Tenants.GetAll(ctx, s.models.DBConnectionPool, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("querying tenants: %w", err)
	}

	return tenants, totalTenants, nil
}

// UpdateTenant patches the tenant root and the sub-records present in params, all in one
// transaction.
func (s *TenantService) UpdateTenant(ctx context.Context, id string, params UpdateTenantParams) (*data.TenantAggregate, error) {
	var previousSlug string
	tenant, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.Tenant, error) {
		tenant, txErr := s.models.Tenants.Get(ctx, dbTx, id)
		if txErr != nil {
			return nil, txErr
		}
		previousSlug = tenant.Slug

		if params.Root != nil && params.Root.Slug != nil && *params.Root.Slug != tenant.Slug {
			slugExists, slugErr := s.models.Tenants.SlugExists(ctx, dbTx, *params.Root.Slug, id)
			if slugErr != nil {
				return nil, fmt.Errorf("checking tenant slug: %w", slugErr)
			}
			if slugExists {
				return nil, ErrTenantSlugInUse
			}
		}

		if params.ContactInfo != nil && params.ContactInfo.Email != "" {
			emailExists, emailErr := s.models.Tenants.ContactEmailExists(ctx, dbTx, params.ContactInfo.Email, id)
			if emailErr != nil {
				return nil, fmt.Errorf("checking tenant contact email: %w", emailErr)
			}
			if emailExists {
				return nil, ErrTenantEmailInUse
			}
		}

		if params.Root != nil && !params.Root.IsEmpty() {
			if tenant, txErr = s.models.Tenants.Update(ctx, dbTx, id, *params.Root); txErr != nil {
				return nil, fmt.Errorf("updating tenant: %w", txErr)
			}
		}
		if params.ContactInfo != nil {
			if _, txErr = s.models.Tenants.UpdateContactInfo(ctx, dbTx, id, *params.ContactInfo); txErr != nil {
				return nil, fmt.Errorf("updating tenant contact info: %w", txErr)
			}
		}
		if params.Location != nil {
			if _, txErr = s.models.Tenants.UpdateLocation(ctx, dbTx, id, *params.Location); txErr != nil {
				return nil, fmt.Errorf("updating tenant location: %w", txErr)
			}
		}
		if params.SchoolInfo != nil {
			if _, txErr = s.models.Tenants.UpdateSchoolInfo(ctx, dbTx, id, *params.SchoolInfo); txErr != nil {
				return nil, fmt.Errorf("updating tenant school info: %w", txErr)
			}
		}
		if params.Branding != nil {
			if _, txErr = s.models.Tenants.UpdateBranding(ctx, dbTx, id, *params.Branding); txErr != nil {
				return nil, fmt.Errorf("updating tenant branding: %w", txErr)
			}
		}
		if params.Compliance != nil {
			if _, txErr = s.models.Tenants.UpdateCompliance(ctx, dbTx, id, *params.Compliance); txErr != nil {
				return nil, fmt.Errorf("updating tenant compliance: %w", txErr)
			}
		}
		if params.Security != nil {
			if _, txErr = s.models.Tenants.UpdateSecurity(ctx, dbTx, id, *params.Security); txErr != nil {
				return nil, fmt.Errorf("updating tenant security: %w", txErr)
			}
		}
		if params.Usage != nil {
			if _, txErr = s.models.Tenants.UpdateUsage(ctx, dbTx, id, *params.Usage); txErr != nil {
				return nil, fmt.Errorf("updating tenant usage: %w", txErr)
			}
		}

		return tenant, nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(previousSlug)
	if tenant.Slug != previousSlug {
		s.invalidateCache(tenant.Slug)
	}
	return s.models.Tenants.GetAggregate(ctx, s.models.DBConnectionPool, id)
}

// ToggleTenantStatus flips a tenant between ACTIVE and INACTIVE, mirroring the change to
// the lifecycle stage. Tenants in any other status cannot be toggled.
func (s *TenantService) ToggleTenantStatus(ctx context.Context, id string) (*data.Tenant, error) {
	tenant, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.Tenant, error) {
		tenant, txErr := s.models.Tenants.Get(ctx, dbTx, id)
		if txErr != nil {
			return nil, txErr
		}

		var newStatus data.TenantStatus
		var newStage data.TenantLifecycleStage
		switch tenant.Status {
		case data.ActiveTenantStatus:
			newStatus, newStage = data.InactiveTenantStatus, data.AtRiskLifecycleStage
		case data.InactiveTenantStatus:
			newStatus, newStage = data.ActiveTenantStatus, data.ActiveLifecycleStage
		default:
			return nil, ErrTenantStatusNotToggable
		}

		return s.models.Tenants.Update(ctx, dbTx, id, data.TenantUpdate{
			Status:         &newStatus,
			LifecycleStage: &newStage,
		})
	})
	if err != nil {
		return nil, err
	}

	s.invalidateCache(tenant.Slug)
	return tenant, nil
}

// UpdateSubscription switches a tenant to another plan or billing cycle, re-deriving the
// plan-dependent values and the renewal date.
func (s *TenantService) UpdateSubscription(ctx context.Context, tenantID string, plan data.SubscriptionPlan, cycle data.BillingCycle, billingEmail *string) (*data.TenantSubscription, error) {
	defaults, err := data.DefaultsForPlan(plan)
	if err != nil {
		return nil, fmt.Errorf("resolving plan defaults: %w", err)
	}

	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.TenantSubscription, error) {
		if _, txErr := s.models.Tenants.Get(ctx, dbTx, tenantID); txErr != nil {
			return nil, txErr
		}

		renewsAt := cycle.NextRenewalDate(time.Now().UTC())
		subscription, txErr := s.models.Tenants.UpdateSubscription(ctx, dbTx, tenantID, data.TenantSubscription{
			Plan:         plan,
			Status:       activeSubscriptionStatus,
			BillingCycle: cycle,
			BasePrice:    defaults.BasePrice,
			PerUserPrice: defaults.PerUserPrice,
			MaxStudents:  defaults.MaxStudents,
			MaxStaff:     defaults.MaxStaff,
			MaxAdmins:    defaults.MaxAdmins,
			BillingEmail: billingEmail,
			RenewsAt:     &renewsAt,
		})
		if txErr != nil {
			return nil, fmt.Errorf("updating tenant subscription: %w", txErr)
		}

		_, txErr = s.models.Tenants.UpdateConfiguration(ctx, dbTx, tenantID, data.TenantConfiguration{
			FeatureFlags: featureFlagsToJSONMap(defaults.FeatureFlags),
			Limits: data.JSONMap{
				"max_students": defaults.MaxStudents,
				"max_staff":    defaults.MaxStaff,
				"max_admins":   defaults.MaxAdmins,
			},
		})
		if txErr != nil {
			return nil, fmt.Errorf("updating tenant configuration: %w", txErr)
		}

		return subscription, nil
	})
}

func (s *TenantService) AddIntegration(ctx context.Context, tenantID string, integration data.TenantIntegration) (*data.TenantIntegration, error) {
	if _, err := s.models.Tenants.Get(ctx, s.models.DBConnectionPool, tenantID); err != nil {
		return nil, err
	}
	integration.TenantID = tenantID
	return s.models.Tenants.InsertIntegration(ctx, s.models.DBConnectionPool, integration)
}

func (s *TenantService) RemoveIntegration(ctx context.Context, tenantID, integrationID string) error {
	return s.models.Tenants.DeleteIntegration(ctx, s.models.DBConnectionPool, tenantID, integrationID)
}

// SoftDeleteTenant tombstones a tenant, leaving its data recoverable through Restore.
func (s *TenantService) SoftDeleteTenant(ctx context.Context, id string) (*data.Tenant, error) {
	tenant, err := s.models.Tenants.SoftDelete(ctx, s.models.DBConnectionPool, id)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(tenant.Slug)
	return tenant, nil
}

// RestoreTenant clears the soft-delete tombstone, bringing the tenant back INACTIVE.
func (s *TenantService) RestoreTenant(ctx context.Context, id string) (*data.Tenant, error) {
	tenant, err := s.models.Tenants.Restore(ctx, s.models.DBConnectionPool, id)
	if err != nil {
		return nil, err
	}
	s.invalidateCache(tenant.Slug)
	return tenant, nil
}

// HardDeleteTenant permanently removes a soft-deleted tenant and its owned graph.
func (s *TenantService) HardDeleteTenant(ctx context.Context, id string) error {
	tenant, err := s.models.Tenants.GetIncludingDeleted(ctx, s.models.DBConnectionPool, id)
	if err != nil {
		return err
	}
	if tenant.DeletedAt == nil {
		return ErrTenantNotDeleted
	}

	if err = s.models.Tenants.HardDelete(ctx, s.models.DBConnectionPool, id); err != nil {
		return err
	}
	s.invalidateCache(tenant.Slug)
	return nil
}

func (s *TenantService) invalidateCache(slug string) {
	if s.tenantCache != nil {
		s.tenantCache.Invalidate(slug)
	}
}

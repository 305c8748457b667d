package httphandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/services"
)

func tenantsRouter(handler TenantsHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/tenants", func(r chi.Router) {
		r.Get("/", handler.GetTenants)
		r.Post("/", handler.CreateTenant)
		r.Post("/minimal", handler.CreateMinimalTenant)
		r.Get("/{id}", handler.GetTenant)
		r.Patch("/{id}", handler.PatchTenant)
		r.Patch("/{id}/status", handler.ToggleTenantStatus)
		r.Patch("/{id}/subscription", handler.UpdateSubscription)
		r.Post("/{id}/integrations", handler.AddIntegration)
		r.Delete("/{id}/integrations/{integrationID}", handler.RemoveIntegration)
		r.Delete("/{id}", handler.DeleteTenant)
		r.Post("/{id}/restore", handler.RestoreTenant)
		r.Delete("/{id}/permanent", handler.HardDeleteTenant)
	})
	return r
}

func Test_TenantsHandler_GetTenants(t *testing.T) {
	t.Run("returns a paginated list", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenants := []data.Tenant{{ID: "tenant-id", Name: "Springfield Elementary", Slug: "springfield-elementary"}}
		tenantServiceMock.
			On("GetTenants", mock.Anything, mock.Anything).
			Return(tenants, 1, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodGet, "/tenants", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"slug":"springfield-elementary"`)
		assert.Contains(t, rr.Body.String(), `"total":1`)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("invalid status filter is rejected", func(t *testing.T) {
		r := tenantsRouter(TenantsHandler{TenantService: &services.TenantServiceMock{}})

		req := httptest.NewRequest(http.MethodGet, "/tenants?status=FROZEN", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_TenantsHandler_GetTenant(t *testing.T) {
	tenantServiceMock := &services.TenantServiceMock{}
	r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

	t.Run("returns the tenant aggregate", func(t *testing.T) {
		aggregate := &data.TenantAggregate{
			Tenant:       data.Tenant{ID: "tenant-id", Name: "Springfield Elementary"},
			Subscription: &data.TenantSubscription{Plan: data.StarterSubscriptionPlan},
		}
		tenantServiceMock.
			On("GetTenant", mock.Anything, "tenant-id").
			Return(aggregate, nil).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/tenants/tenant-id", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"plan":"STARTER"`)
	})

	t.Run("unknown id returns 404", func(t *testing.T) {
		tenantServiceMock.
			On("GetTenant", mock.Anything, "missing-id").
			Return(nil, data.ErrRecordNotFound).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/tenants/missing-id", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error": "Tenant not found."}`, rr.Body.String())
	})
}

func Test_TenantsHandler_CreateTenant(t *testing.T) {
	t.Run("creates a tenant with plan defaults", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("CreateTenant", mock.Anything, mock.MatchedBy(func(params services.CreateTenantParams) bool {
				return params.Insert.Name == "Springfield Elementary" &&
					params.Insert.Slug == "springfield-elementary" &&
					params.ContactInfo.Email == "office@springfield.edu" &&
					params.Plan == data.StarterSubscriptionPlan &&
					params.BillingCycle == data.MonthlyBillingCycle &&
					params.Insert.CreatedBy != nil && *params.Insert.CreatedBy == "root-id"
			})).
			Return(&data.TenantAggregate{Tenant: data.Tenant{ID: "tenant-id"}}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"name": "Springfield Elementary", "contact_info": {"email": "office@springfield.edu"}}`
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "root-id", Role: "SUPER_ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("missing contact email is rejected", func(t *testing.T) {
		r := tenantsRouter(TenantsHandler{TenantService: &services.TenantServiceMock{}})

		body := `{"name": "Springfield Elementary"}`
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate slug returns 409", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("CreateTenant", mock.Anything, mock.Anything).
			Return(nil, services.ErrTenantSlugInUse).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"name": "Springfield Elementary", "contact_info": {"email": "office@springfield.edu"}}`
		req := httptest.NewRequest(http.MethodPost, "/tenants", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error": "tenant slug already in use"}`, rr.Body.String())
	})
}

func Test_TenantsHandler_CreateMinimalTenant(t *testing.T) {
	t.Run("creates a tenant owned by the authenticated user", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("CreateMinimalTenant", mock.Anything, "My School", "me@school.edu", "user-id").
			Return(&data.TenantAggregate{Tenant: data.Tenant{ID: "tenant-id"}}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"name": "My School", "email": "me@school.edu"}`
		req := httptest.NewRequest(http.MethodPost, "/tenants/minimal", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		r := tenantsRouter(TenantsHandler{TenantService: &services.TenantServiceMock{}})

		body := `{"name": "My School", "email": "me@school.edu"}`
		req := httptest.NewRequest(http.MethodPost, "/tenants/minimal", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("user who already owns a tenant gets 400", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("CreateMinimalTenant", mock.Anything, "My School", "me@school.edu", "user-id").
			Return(nil, services.ErrUserAlreadyHasTenant).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"name": "My School", "email": "me@school.edu"}`
		req := httptest.NewRequest(http.MethodPost, "/tenants/minimal", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error": "user already belongs to a tenant"}`, rr.Body.String())
	})
}

func Test_TenantsHandler_PatchTenant(t *testing.T) {
	t.Run("updates the tenant root record", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("UpdateTenant", mock.Anything, "tenant-id", mock.MatchedBy(func(params services.UpdateTenantParams) bool {
				return params.Root != nil &&
					params.Root.Name != nil && *params.Root.Name == "Renamed School" &&
					params.Root.UpdatedBy != nil && *params.Root.UpdatedBy == "root-id"
			})).
			Return(&data.TenantAggregate{Tenant: data.Tenant{ID: "tenant-id", Name: "Renamed School"}}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"name": "Renamed School"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "root-id", Role: "SUPER_ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("changes the slug", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("UpdateTenant", mock.Anything, "tenant-id", mock.MatchedBy(func(params services.UpdateTenantParams) bool {
				return params.Root != nil && params.Root.Slug != nil && *params.Root.Slug == "springfield-primary"
			})).
			Return(&data.TenantAggregate{Tenant: data.Tenant{ID: "tenant-id", Slug: "springfield-primary"}}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"slug": "springfield-primary"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "root-id", Role: "SUPER_ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"slug":"springfield-primary"`)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("slug already in use returns 409", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("UpdateTenant", mock.Anything, "tenant-id", mock.Anything).
			Return(nil, services.ErrTenantSlugInUse).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"slug": "shelbyville-high"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "root-id", Role: "SUPER_ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error": "tenant slug already in use"}`, rr.Body.String())
	})

	t.Run("empty body is rejected", func(t *testing.T) {
		r := tenantsRouter(TenantsHandler{TenantService: &services.TenantServiceMock{}})

		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id", strings.NewReader(`{}`))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "provide at least one field to update")
	})
}

func Test_TenantsHandler_ToggleTenantStatus(t *testing.T) {
	t.Run("toggles between active and inactive", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("ToggleTenantStatus", mock.Anything, "tenant-id").
			Return(&data.Tenant{ID: "tenant-id", Status: data.InactiveTenantStatus}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id/status", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"INACTIVE"`)
	})

	t.Run("suspended tenant cannot be toggled", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("ToggleTenantStatus", mock.Anything, "tenant-id").
			Return(nil, services.ErrTenantStatusNotToggable).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id/status", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_TenantsHandler_UpdateSubscription(t *testing.T) {
	t.Run("changes the plan and billing cycle", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		subscription := &data.TenantSubscription{Plan: data.PremiumSubscriptionPlan, BillingCycle: data.YearlyBillingCycle}
		tenantServiceMock.
			On("UpdateSubscription", mock.Anything, "tenant-id", data.PremiumSubscriptionPlan, data.YearlyBillingCycle, (*string)(nil)).
			Return(subscription, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"plan": "premium", "billing_cycle": "yearly"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id/subscription", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"plan":"PREMIUM"`)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("unknown plan is rejected", func(t *testing.T) {
		r := tenantsRouter(TenantsHandler{TenantService: &services.TenantServiceMock{}})

		body := `{"plan": "gold"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenants/tenant-id/subscription", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "invalid subscription plan")
	})
}

func Test_TenantsHandler_Integrations(t *testing.T) {
	t.Run("adds an integration", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("AddIntegration", mock.Anything, "tenant-id", mock.MatchedBy(func(integration data.TenantIntegration) bool {
				return integration.Kind == data.SSOIntegrationKind && integration.Name == "Google Workspace" && integration.Enabled
			})).
			Return(&data.TenantIntegration{ID: "integration-id", Name: "Google Workspace"}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		body := `{"kind": "SSO", "name": "Google Workspace", "enabled": true}`
		req := httptest.NewRequest(http.MethodPost, "/tenants/tenant-id/integrations", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		tenantServiceMock.AssertExpectations(t)
	})

	t.Run("rejects an unknown integration kind", func(t *testing.T) {
		r := tenantsRouter(TenantsHandler{TenantService: &services.TenantServiceMock{}})

		body := `{"kind": "FAX", "name": "Fax Machine"}`
		req := httptest.NewRequest(http.MethodPost, "/tenants/tenant-id/integrations", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("removes an integration", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("RemoveIntegration", mock.Anything, "tenant-id", "integration-id").
			Return(nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodDelete, "/tenants/tenant-id/integrations/integration-id", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		tenantServiceMock.AssertExpectations(t)
	})
}

func Test_TenantsHandler_DeleteAndRestore(t *testing.T) {
	t.Run("soft delete", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("SoftDeleteTenant", mock.Anything, "tenant-id").
			Return(&data.Tenant{ID: "tenant-id"}, nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodDelete, "/tenants/tenant-id", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
	})

	t.Run("restore a tenant that is not deleted", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("RestoreTenant", mock.Anything, "tenant-id").
			Return(nil, services.ErrTenantNotDeleted).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodPost, "/tenants/tenant-id/restore", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error": "tenant is not deleted"}`, rr.Body.String())
	})

	t.Run("hard delete", func(t *testing.T) {
		tenantServiceMock := &services.TenantServiceMock{}
		tenantServiceMock.
			On("HardDeleteTenant", mock.Anything, "tenant-id").
			Return(nil).
			Once()
		r := tenantsRouter(TenantsHandler{TenantService: tenantServiceMock})

		req := httptest.NewRequest(http.MethodDelete, "/tenants/tenant-id/permanent", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNoContent, rr.Code)
		tenantServiceMock.AssertExpectations(t)
	})
}

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

func accessRequestsRouter(handler AccessRequestsHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Route("/tenant-access", func(r chi.Router) {
		r.Post("/", handler.CreateAccessRequest)
		r.Get("/", handler.GetAccessRequests)
		r.Get("/mine", handler.GetMyAccessRequests)
		r.Patch("/{id}/review", handler.ReviewAccessRequest)
		r.Patch("/{id}/cancel", handler.CancelAccessRequest)
	})
	return r
}

func Test_AccessRequestsHandler_CreateAccessRequest(t *testing.T) {
	t.Run("creates a pending request", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("CreateAccessRequest", mock.Anything, "user-id", mock.MatchedBy(func(insert data.AccessRequestInsert) bool {
				return insert.TenantID == "tenant-id" &&
					insert.RequestedRole == data.TeacherUserRole &&
					insert.Message != nil && *insert.Message == "Please let me in"
			})).
			Return(&data.AccessRequest{ID: "request-id", Status: data.PendingAccessRequestStatus}, nil).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		body := `{"tenant_id": "tenant-id", "requested_role": "teacher", "message": "Please let me in"}`
		req := httptest.NewRequest(http.MethodPost, "/tenant-access", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "TEACHER"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"PENDING"`)
		accessRequestServiceMock.AssertExpectations(t)
	})

	t.Run("unauthenticated request is rejected", func(t *testing.T) {
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: &services.AccessRequestServiceMock{}})

		body := `{"tenant_id": "tenant-id"}`
		req := httptest.NewRequest(http.MethodPost, "/tenant-access", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("missing tenant_id is rejected", func(t *testing.T) {
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: &services.AccessRequestServiceMock{}})

		body := `{"requested_role": "teacher"}`
		req := httptest.NewRequest(http.MethodPost, "/tenant-access", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "TEACHER"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "tenant_id is required")
	})

	t.Run("duplicate pending request returns 409", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("CreateAccessRequest", mock.Anything, "user-id", mock.Anything).
			Return(nil, services.ErrPendingAccessRequestExists).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		body := `{"tenant_id": "tenant-id"}`
		req := httptest.NewRequest(http.MethodPost, "/tenant-access", strings.NewReader(body))
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "STAFF"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
	})
}

func Test_AccessRequestsHandler_GetAccessRequests(t *testing.T) {
	t.Run("tenant admin is scoped to their own tenant", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("GetAccessRequests", mock.Anything, mock.MatchedBy(func(queryParams *data.QueryParams) bool {
				return queryParams.Filters[data.FilterKeyTenantID] == "tenant-id"
			})).
			Return([]data.AccessRequest{{ID: "request-id"}}, 1, nil).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		tenantID := "tenant-id"
		req := httptest.NewRequest(http.MethodGet, "/tenant-access", nil)
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "admin-id", Role: "ADMIN", TenantID: &tenantID})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		accessRequestServiceMock.AssertExpectations(t)
	})

	t.Run("super admin sees all requests", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("GetAccessRequests", mock.Anything, mock.MatchedBy(func(queryParams *data.QueryParams) bool {
				_, scoped := queryParams.Filters[data.FilterKeyTenantID]
				return !scoped
			})).
			Return([]data.AccessRequest{}, 0, nil).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		req := httptest.NewRequest(http.MethodGet, "/tenant-access", nil)
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "root-id", Role: "SUPER_ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		accessRequestServiceMock.AssertExpectations(t)
	})

	t.Run("admin without a tenant is forbidden", func(t *testing.T) {
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: &services.AccessRequestServiceMock{}})

		req := httptest.NewRequest(http.MethodGet, "/tenant-access", nil)
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "admin-id", Role: "ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})
}

func Test_AccessRequestsHandler_GetMyAccessRequests(t *testing.T) {
	accessRequestServiceMock := &services.AccessRequestServiceMock{}
	accessRequestServiceMock.
		On("GetAccessRequests", mock.Anything, mock.MatchedBy(func(queryParams *data.QueryParams) bool {
			return queryParams.Filters[data.FilterKeyUserID] == "user-id"
		})).
		Return([]data.AccessRequest{{ID: "request-id", UserID: "user-id"}}, 1, nil).
		Once()
	r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

	req := httptest.NewRequest(http.MethodGet, "/tenant-access/mine", nil)
	req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "TEACHER"})
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"user_id":"user-id"`)
	accessRequestServiceMock.AssertExpectations(t)
}

func Test_AccessRequestsHandler_ReviewAccessRequest(t *testing.T) {
	tenantID := "tenant-id"
	reviewerTokenUser := &auth.TokenUser{ID: "admin-id", Email: "admin@school.edu", Role: "ADMIN", TenantID: &tenantID}

	t.Run("approves a request", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("ApproveAccessRequest", mock.Anything, "request-id", mock.MatchedBy(func(reviewer *data.User) bool {
				return reviewer.ID == "admin-id" && reviewer.Role == data.AdminUserRole
			})).
			Return(&data.AccessRequest{ID: "request-id", Status: data.ApprovedAccessRequestStatus}, nil).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		body := `{"action": "approve"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenant-access/request-id/review", strings.NewReader(body))
		req = requestWithTokenUser(req, reviewerTokenUser)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"APPROVED"`)
		accessRequestServiceMock.AssertExpectations(t)
	})

	t.Run("rejects a request with a reason", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("RejectAccessRequest", mock.Anything, "request-id", mock.Anything, "Role not needed").
			Return(&data.AccessRequest{ID: "request-id", Status: data.RejectedAccessRequestStatus}, nil).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		body := `{"action": "reject", "rejection_reason": "Role not needed"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenant-access/request-id/review", strings.NewReader(body))
		req = requestWithTokenUser(req, reviewerTokenUser)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"REJECTED"`)
		accessRequestServiceMock.AssertExpectations(t)
	})

	t.Run("rejecting without a reason is invalid", func(t *testing.T) {
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: &services.AccessRequestServiceMock{}})

		body := `{"action": "reject"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenant-access/request-id/review", strings.NewReader(body))
		req = requestWithTokenUser(req, reviewerTokenUser)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "rejection_reason is required when rejecting a request")
	})

	t.Run("reviewer from another tenant is forbidden", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("ApproveAccessRequest", mock.Anything, "request-id", mock.Anything).
			Return(nil, services.ErrNotTenantAdmin).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		body := `{"action": "approve"}`
		req := httptest.NewRequest(http.MethodPatch, "/tenant-access/request-id/review", strings.NewReader(body))
		req = requestWithTokenUser(req, reviewerTokenUser)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusForbidden, rr.Code)
	})

	t.Run("already-decided request returns 400 in either direction", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("ApproveAccessRequest", mock.Anything, "request-id", mock.Anything).
			Return(nil, services.ErrAccessRequestNotPending).
			Once()
		accessRequestServiceMock.
			On("RejectAccessRequest", mock.Anything, "request-id", mock.Anything, "Role not needed").
			Return(nil, services.ErrAccessRequestNotPending).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		for _, body := range []string{
			`{"action": "approve"}`,
			`{"action": "reject", "rejection_reason": "Role not needed"}`,
		} {
			req := httptest.NewRequest(http.MethodPatch, "/tenant-access/request-id/review", strings.NewReader(body))
			req = requestWithTokenUser(req, reviewerTokenUser)
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)

			assert.Equal(t, http.StatusBadRequest, rr.Code)
			assert.JSONEq(t, `{"error": "access request has already been decided"}`, rr.Body.String())
		}
		accessRequestServiceMock.AssertExpectations(t)
	})
}

func Test_AccessRequestsHandler_CancelAccessRequest(t *testing.T) {
	t.Run("cancels the user's own pending request", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("CancelAccessRequest", mock.Anything, "request-id", "user-id").
			Return(&data.AccessRequest{ID: "request-id", Status: data.CancelledAccessRequestStatus}, nil).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		req := httptest.NewRequest(http.MethodPatch, "/tenant-access/request-id/cancel", nil)
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "TEACHER"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"status":"CANCELLED"`)
		accessRequestServiceMock.AssertExpectations(t)
	})

	t.Run("unknown request returns 404", func(t *testing.T) {
		accessRequestServiceMock := &services.AccessRequestServiceMock{}
		accessRequestServiceMock.
			On("CancelAccessRequest", mock.Anything, "missing-id", "user-id").
			Return(nil, data.ErrRecordNotFound).
			Once()
		r := accessRequestsRouter(AccessRequestsHandler{AccessRequestService: accessRequestServiceMock})

		req := httptest.NewRequest(http.MethodPatch, "/tenant-access/missing-id/cancel", nil)
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Role: "TEACHER"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error": "Access request not found."}`, rr.Body.String())
	})
}

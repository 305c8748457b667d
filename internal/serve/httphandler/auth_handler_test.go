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

func Test_AuthHandler_Register(t *testing.T) {
	authServiceMock := &services.AuthServiceMock{}
	handler := AuthHandler{AuthService: authServiceMock}

	r := chi.NewRouter()
	r.Post("/auth/register", handler.Register)

	t.Run("successfully registers a user", func(t *testing.T) {
		user := &data.User{ID: "user-id", Email: "teacher@school.edu", Role: data.TeacherUserRole}
		authServiceMock.
			On("Register", mock.Anything, "teacher@school.edu", "s3cr3tpass", "Jane", "Doe", data.TeacherUserRole).
			Return(&services.RegisterResponse{Token: "jwt-token", User: user}, nil).
			Once()

		body := `{"email": "teacher@school.edu", "password": "s3cr3tpass", "first_name": "Jane", "last_name": "Doe", "role": "teacher"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"token":"jwt-token"`)
		assert.NotContains(t, rr.Body.String(), "pending_access_request", "a fresh account has no pending request")
		authServiceMock.AssertExpectations(t)
	})

	t.Run("carries a pending access request through when the service reports one", func(t *testing.T) {
		user := &data.User{ID: "user-id", Email: "teacher@school.edu", Role: data.TeacherUserRole}
		authServiceMock.
			On("Register", mock.Anything, "teacher@school.edu", "s3cr3tpass", "Jane", "Doe", data.TeacherUserRole).
			Return(&services.RegisterResponse{
				Token:                "jwt-token",
				User:                 user,
				PendingAccessRequest: &data.AccessRequest{ID: "request-id", Status: data.PendingAccessRequestStatus},
			}, nil).
			Once()

		body := `{"email": "teacher@school.edu", "password": "s3cr3tpass", "first_name": "Jane", "last_name": "Doe", "role": "teacher"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"pending_access_request"`)
		authServiceMock.AssertExpectations(t)
	})

	t.Run("returns 400 when the payload is invalid", func(t *testing.T) {
		body := `{"email": "not-an-email", "password": "short"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "password must have at least 8 characters")
	})

	t.Run("returns 409 when the email is taken", func(t *testing.T) {
		authServiceMock.
			On("Register", mock.Anything, "taken@school.edu", "s3cr3tpass", "Jane", "Doe", data.StaffUserRole).
			Return(nil, data.ErrRecordAlreadyExists).
			Once()

		body := `{"email": "taken@school.edu", "password": "s3cr3tpass", "first_name": "Jane", "last_name": "Doe"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error": "A user with this email already exists."}`, rr.Body.String())
		authServiceMock.AssertExpectations(t)
	})
}

func Test_AuthHandler_Login(t *testing.T) {
	authServiceMock := &services.AuthServiceMock{}
	handler := AuthHandler{AuthService: authServiceMock}

	r := chi.NewRouter()
	r.Post("/auth/login", handler.Login)

	doLogin := func(body string, headers map[string]string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(body))
		for k, v := range headers {
			req.Header.Set(k, v)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		return rr
	}

	t.Run("successful login forwards the client ip", func(t *testing.T) {
		response := &services.LoginResponse{Token: "jwt-token", User: &data.User{ID: "user-id"}}
		authServiceMock.
			On("Login", mock.Anything, "admin@school.edu", "s3cr3tpass", "203.0.113.9").
			Return(response, nil).
			Once()

		rr := doLogin(
			`{"email": "admin@school.edu", "password": "s3cr3tpass"}`,
			map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"},
		)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"token":"jwt-token"`)
		authServiceMock.AssertExpectations(t)
	})

	t.Run("invalid credentials", func(t *testing.T) {
		authServiceMock.
			On("Login", mock.Anything, "admin@school.edu", "wrongpass1", mock.Anything).
			Return(nil, auth.ErrInvalidCredentials).
			Once()

		rr := doLogin(`{"email": "admin@school.edu", "password": "wrongpass1"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error": "Invalid email or password."}`, rr.Body.String())
	})

	t.Run("locked account", func(t *testing.T) {
		authServiceMock.
			On("Login", mock.Anything, "locked@school.edu", "s3cr3tpass", mock.Anything).
			Return(nil, auth.ErrUserLocked).
			Once()

		rr := doLogin(`{"email": "locked@school.edu", "password": "s3cr3tpass"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error": "Account is temporarily locked. Try again later."}`, rr.Body.String())
	})

	t.Run("unverified email", func(t *testing.T) {
		authServiceMock.
			On("Login", mock.Anything, "new@school.edu", "s3cr3tpass", mock.Anything).
			Return(nil, services.ErrUserEmailNotVerified).
			Once()

		rr := doLogin(`{"email": "new@school.edu", "password": "s3cr3tpass"}`, nil)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		assert.JSONEq(t, `{"error": "Email not verified. A new verification code was sent."}`, rr.Body.String())
	})

	t.Run("missing password", func(t *testing.T) {
		rr := doLogin(`{"email": "admin@school.edu"}`, nil)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "password is required")
	})
}

func Test_AuthHandler_VerifyEmail(t *testing.T) {
	authServiceMock := &services.AuthServiceMock{}
	handler := AuthHandler{AuthService: authServiceMock}

	r := chi.NewRouter()
	r.Post("/auth/verify-email", handler.VerifyEmail)

	t.Run("verifies the email with a valid code", func(t *testing.T) {
		user := &data.User{ID: "user-id", Email: "new@school.edu", EmailVerified: true}
		authServiceMock.
			On("VerifyEmailWithCode", mock.Anything, "new@school.edu", "123456").
			Return(user, nil).
			Once()

		body := `{"email": "new@school.edu", "code": "123456"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"email_verified":true`)
		authServiceMock.AssertExpectations(t)
	})

	t.Run("rejects an invalid code", func(t *testing.T) {
		authServiceMock.
			On("VerifyEmailWithCode", mock.Anything, "new@school.edu", "654321").
			Return(nil, services.ErrInvalidVerificationCode).
			Once()

		body := `{"email": "new@school.edu", "code": "654321"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error": "Invalid or expired verification code."}`, rr.Body.String())
	})

	t.Run("rejects a code with the wrong length", func(t *testing.T) {
		body := `{"email": "new@school.edu", "code": "123"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/verify-email", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Contains(t, rr.Body.String(), "code must have 6 digits")
	})
}

func Test_AuthHandler_ForgotPassword(t *testing.T) {
	authServiceMock := &services.AuthServiceMock{}
	handler := AuthHandler{AuthService: authServiceMock}

	r := chi.NewRouter()
	r.Post("/auth/forgot-password", handler.ForgotPassword)

	t.Run("always responds with the same message", func(t *testing.T) {
		authServiceMock.
			On("ForgotPassword", mock.Anything, "someone@school.edu").
			Return(nil).
			Once()

		body := `{"email": "someone@school.edu"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message": "If the email exists, a reset link was sent."}`, rr.Body.String())
		authServiceMock.AssertExpectations(t)
	})

	t.Run("rejects an invalid email", func(t *testing.T) {
		body := `{"email": "not-an-email"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/forgot-password", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func Test_AuthHandler_ResetPassword(t *testing.T) {
	authServiceMock := &services.AuthServiceMock{}
	handler := AuthHandler{AuthService: authServiceMock}

	r := chi.NewRouter()
	r.Post("/auth/reset-password", handler.ResetPassword)

	t.Run("resets the password", func(t *testing.T) {
		authServiceMock.
			On("ResetPassword", mock.Anything, "reset-token", "newpassword1").
			Return(nil).
			Once()

		body := `{"token": "reset-token", "password": "newpassword1"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"message": "Password updated."}`, rr.Body.String())
		authServiceMock.AssertExpectations(t)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		authServiceMock.
			On("ResetPassword", mock.Anything, "stale-token", "newpassword1").
			Return(services.ErrInvalidResetToken).
			Once()

		body := `{"token": "stale-token", "password": "newpassword1"}`
		req := httptest.NewRequest(http.MethodPost, "/auth/reset-password", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error": "Invalid or expired reset token."}`, rr.Body.String())
	})
}

func Test_AuthHandler_Profile(t *testing.T) {
	authServiceMock := &services.AuthServiceMock{}
	handler := AuthHandler{AuthService: authServiceMock}

	r := chi.NewRouter()
	r.Get("/auth/me", handler.Profile)

	t.Run("returns the authenticated user's profile", func(t *testing.T) {
		user := &data.User{ID: "user-id", Email: "admin@school.edu", Role: data.AdminUserRole}
		authServiceMock.
			On("GetProfile", mock.Anything, "user-id").
			Return(user, nil).
			Once()

		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		req = requestWithTokenUser(req, &auth.TokenUser{ID: "user-id", Email: "admin@school.edu", Role: "ADMIN"})
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		assert.Contains(t, rr.Body.String(), `"email":"admin@school.edu"`)
		authServiceMock.AssertExpectations(t)
	})

	t.Run("returns 401 without an authenticated user", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusUnauthorized, rr.Code)
		authServiceMock.AssertNotCalled(t, "GetProfile")
	})
}

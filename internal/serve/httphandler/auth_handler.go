package httphandler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/go-chi/render"

	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
	"github.com/classterra/school-platform-backend/internal/serve/middleware"
	"github.com/classterra/school-platform-backend/internal/serve/validators"
	"github.com/classterra/school-platform-backend/internal/services"
)

type AuthHandler struct {
	AuthService services.AuthServiceInterface
}

func (h AuthHandler) Register(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.RegisterRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAuthValidator()
	validator.ValidateRegisterRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	response, err := h.AuthService.Register(ctx, reqBody.Email, reqBody.Password, reqBody.FirstName, reqBody.LastName, data.UserRole(reqBody.Role))
	if err != nil {
		if errors.Is(err, data.ErrRecordAlreadyExists) {
			httperror.Conflict("A user with this email already exists.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot register user", err, nil).Render(rw)
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, response)
}

func (h AuthHandler) Login(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.LoginRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAuthValidator()
	validator.ValidateLoginRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	response, err := h.AuthService.Login(ctx, reqBody.Email, reqBody.Password, clientIP(req))
	if err != nil {
		switch {
		case errors.Is(err, auth.ErrInvalidCredentials):
			httperror.Unauthorized("Invalid email or password.", err, nil).Render(rw)
		case errors.Is(err, auth.ErrUserLocked):
			httperror.Unauthorized("Account is temporarily locked. Try again later.", err, nil).Render(rw)
		case errors.Is(err, auth.ErrUserNotActive):
			httperror.Unauthorized("Account is not active.", err, nil).Render(rw)
		case errors.Is(err, services.ErrUserEmailNotVerified):
			httperror.Unauthorized("Email not verified. A new verification code was sent.", err, nil).Render(rw)
		default:
			httperror.InternalError(ctx, "Cannot authenticate user", err, nil).Render(rw)
		}
		return
	}

	render.JSON(rw, req, response)
}

func (h AuthHandler) VerifyEmail(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.VerifyEmailRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAuthValidator()
	validator.ValidateVerifyEmailRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	user, err := h.AuthService.VerifyEmailWithCode(ctx, reqBody.Email, reqBody.Code)
	if err != nil {
		if errors.Is(err, services.ErrInvalidVerificationCode) {
			httperror.BadRequest("Invalid or expired verification code.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot verify email", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, user)
}

func (h AuthHandler) SendVerificationCode(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.ResendVerificationRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAuthValidator()
	validator.ValidateForgotPasswordRequest(&validators.ForgotPasswordRequest{Email: reqBody.Email})
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	if err := h.AuthService.SendVerificationCode(ctx, strings.TrimSpace(reqBody.Email)); err != nil {
		httperror.InternalError(ctx, "Cannot send verification code", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, map[string]string{"message": "If the email exists, a verification code was sent."})
}

func (h AuthHandler) ForgotPassword(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.ForgotPasswordRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAuthValidator()
	validator.ValidateForgotPasswordRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	if err := h.AuthService.ForgotPassword(ctx, reqBody.Email); err != nil {
		httperror.InternalError(ctx, "Cannot process forgot password request", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, map[string]string{"message": "If the email exists, a reset link was sent."})
}

func (h AuthHandler) ResetPassword(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.ResetPasswordRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAuthValidator()
	validator.ValidateResetPasswordRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	if err := h.AuthService.ResetPassword(ctx, reqBody.Token, reqBody.Password); err != nil {
		if errors.Is(err, services.ErrInvalidResetToken) {
			httperror.BadRequest("Invalid or expired reset token.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot reset password", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, map[string]string{"message": "Password updated."})
}

func (h AuthHandler) Profile(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	user, err := h.AuthService.GetProfile(ctx, tokenUser.ID)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("User not found.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot fetch profile", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, user)
}

// clientIP returns the originating client address, honoring X-Forwarded-For when the
// request came through a proxy.
func clientIP(req *http.Request) string {
	if forwarded := req.Header.Get("X-Forwarded-For"); forwarded != "" {
		parts := strings.Split(forwarded, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(req.RemoteAddr)
	if err != nil {
		return req.RemoteAddr
	}
	return host
}

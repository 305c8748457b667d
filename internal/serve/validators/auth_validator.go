package validators

import (
	"strings"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/utils"
)

// RegisterRequest represents the request structure for creating a user account.
type RegisterRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Role      string `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type VerifyEmailRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

type ResendVerificationRequest struct {
	Email string `json:"email"`
}

type ForgotPasswordRequest struct {
	Email string `json:"email"`
}

type ResetPasswordRequest struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

type AuthValidator struct {
	*Validator
}

func NewAuthValidator() *AuthValidator {
	return &AuthValidator{
		Validator: NewValidator(),
	}
}

const minPasswordLength = 8

func (av *AuthValidator) ValidateRegisterRequest(req *RegisterRequest) {
	req.Email = strings.TrimSpace(req.Email)
	req.FirstName = strings.TrimSpace(req.FirstName)
	req.LastName = strings.TrimSpace(req.LastName)

	av.CheckError(utils.ValidateEmail(req.Email), "email", "")
	av.Check(len(req.Password) >= minPasswordLength, "password", "password must have at least 8 characters")
	av.Check(req.FirstName != "", "first_name", "first_name is required")
	av.Check(req.LastName != "", "last_name", "last_name is required")

	if req.Role == "" {
		req.Role = string(data.StaffUserRole)
	} else {
		role := data.UserRole(strings.ToUpper(req.Role))
		av.Check(role.IsValid() && role != data.SuperAdminUserRole, "role", "invalid role. valid values are: admin, teacher, staff, student")
		req.Role = string(role)
	}
}

func (av *AuthValidator) ValidateLoginRequest(req *LoginRequest) {
	req.Email = strings.TrimSpace(req.Email)
	av.CheckError(utils.ValidateEmail(req.Email), "email", "")
	av.Check(req.Password != "", "password", "password is required")
}

func (av *AuthValidator) ValidateVerifyEmailRequest(req *VerifyEmailRequest) {
	req.Email = strings.TrimSpace(req.Email)
	req.Code = strings.TrimSpace(req.Code)
	av.CheckError(utils.ValidateEmail(req.Email), "email", "")
	av.Check(len(req.Code) == 6, "code", "code must have 6 digits")
}

func (av *AuthValidator) ValidateForgotPasswordRequest(req *ForgotPasswordRequest) {
	req.Email = strings.TrimSpace(req.Email)
	av.CheckError(utils.ValidateEmail(req.Email), "email", "")
}

func (av *AuthValidator) ValidateResetPasswordRequest(req *ResetPasswordRequest) {
	req.Token = strings.TrimSpace(req.Token)
	av.Check(req.Token != "", "token", "token is required")
	av.Check(len(req.Password) >= minPasswordLength, "password", "password must have at least 8 characters")
}

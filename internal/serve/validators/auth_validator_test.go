package validators

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_AuthValidator_ValidateRegisterRequest(t *testing.T) {
	t.Run("valid request with explicit role", func(t *testing.T) {
		validator := NewAuthValidator()
		req := &RegisterRequest{
			Email:     "teacher@school.edu",
			Password:  "mysecurepassword",
			FirstName: "Jane",
			LastName:  "Smith",
			Role:      "teacher",
		}
		validator.ValidateRegisterRequest(req)

		assert.False(t, validator.HasErrors())
		assert.Equal(t, "TEACHER", req.Role)
	})

	t.Run("role defaults to STAFF", func(t *testing.T) {
		validator := NewAuthValidator()
		req := &RegisterRequest{
			Email:     "someone@school.edu",
			Password:  "mysecurepassword",
			FirstName: "Jane",
			LastName:  "Smith",
		}
		validator.ValidateRegisterRequest(req)

		assert.False(t, validator.HasErrors())
		assert.Equal(t, "STAFF", req.Role)
	})

	t.Run("super admin cannot be self-assigned", func(t *testing.T) {
		validator := NewAuthValidator()
		validator.ValidateRegisterRequest(&RegisterRequest{
			Email:     "someone@school.edu",
			Password:  "mysecurepassword",
			FirstName: "Jane",
			LastName:  "Smith",
			Role:      "super_admin",
		})

		assert.Equal(t, "invalid role. valid values are: admin, teacher, staff, student", validator.Errors["role"])
	})

	t.Run("missing fields", func(t *testing.T) {
		validator := NewAuthValidator()
		validator.ValidateRegisterRequest(&RegisterRequest{Password: "short"})

		assert.Equal(t, "email cannot be empty", validator.Errors["email"])
		assert.Equal(t, "password must have at least 8 characters", validator.Errors["password"])
		assert.Equal(t, "first_name is required", validator.Errors["first_name"])
		assert.Equal(t, "last_name is required", validator.Errors["last_name"])
	})
}

func Test_AuthValidator_ValidateLoginRequest(t *testing.T) {
	validator := NewAuthValidator()
	validator.ValidateLoginRequest(&LoginRequest{Email: "invalid", Password: ""})

	assert.Equal(t, "the provided email is not valid", validator.Errors["email"])
	assert.Equal(t, "password is required", validator.Errors["password"])

	validator = NewAuthValidator()
	validator.ValidateLoginRequest(&LoginRequest{Email: " user@school.edu ", Password: "mysecurepassword"})
	assert.False(t, validator.HasErrors())
}

func Test_AuthValidator_ValidateVerifyEmailRequest(t *testing.T) {
	validator := NewAuthValidator()
	validator.ValidateVerifyEmailRequest(&VerifyEmailRequest{Email: "user@school.edu", Code: "123"})
	assert.Equal(t, "code must have 6 digits", validator.Errors["code"])

	validator = NewAuthValidator()
	validator.ValidateVerifyEmailRequest(&VerifyEmailRequest{Email: "user@school.edu", Code: " 123456 "})
	assert.False(t, validator.HasErrors())
}

func Test_AuthValidator_ValidateResetPasswordRequest(t *testing.T) {
	validator := NewAuthValidator()
	validator.ValidateResetPasswordRequest(&ResetPasswordRequest{})

	assert.Equal(t, "token is required", validator.Errors["token"])
	assert.Equal(t, "password must have at least 8 characters", validator.Errors["password"])
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/htmltemplate"
	"github.com/classterra/school-platform-backend/internal/message"
	"github.com/classterra/school-platform-backend/internal/monitor"
)

var (
	ErrInvalidVerificationCode = errors.New("invalid or expired verification code")
	ErrInvalidResetToken       = errors.New("invalid or expired reset token")
)

const (
	verificationCodeLength     = 6
	verificationCodeExpiration = 24 * time.Hour
	resetTokenNumBytes         = 32
	resetTokenExpiration       = 10 * time.Minute
)

// LoginResponse is the outcome of a successful login. PendingAccessRequest is set when
// the user has an access request waiting for review.
type LoginResponse struct {
	Token                string              `json:"token"`
	User                 *data.User          `json:"user"`
	PendingAccessRequest *data.AccessRequest `json:"pending_access_request,omitempty"`
}

// RegisterResponse is the outcome of a successful registration. PendingAccessRequest
// mirrors the login contract; a freshly created account cannot have one yet.
type RegisterResponse struct {
	Token                string              `json:"token"`
	User                 *data.User          `json:"user"`
	PendingAccessRequest *data.AccessRequest `json:"pending_access_request,omitempty"`
}

type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, firstName, lastName string, role data.UserRole) (*RegisterResponse, error)
	Login(ctx context.Context, email, password, ip string) (*LoginResponse, error)
	VerifyEmailWithCode(ctx context.Context, email, code string) (*data.User, error)
	SendVerificationCode(ctx context.Context, email string) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, password string) error
	GetProfile(ctx context.Context, userID string) (*data.User, error)
}

type AuthService struct {
	models            *data.Models
	jwtManager        auth.JWTManager
	passwordEncrypter auth.PasswordEncrypter
	messengerClient   message.MessengerClient
	monitorService    monitor.MonitorServiceInterface
	frontendURL       string
	platformName      string
	tokenExpiration   time.Duration
}

var _ AuthServiceInterface = (*AuthService)(nil)

type AuthServiceOptions struct {
	Models            *data.Models
	JWTManager        auth.JWTManager
	PasswordEncrypter auth.PasswordEncrypter
	MessengerClient   message.MessengerClient
	MonitorService    monitor.MonitorServiceInterface
	FrontendURL       string
	PlatformName      string
	TokenExpiration   time.Duration
}

func NewAuthService(opts AuthServiceOptions) (*AuthService, error) {
	if opts.Models == nil {
		return nil, fmt.Errorf("models is required for AuthService")
	}
	if opts.JWTManager == nil {
		return nil, fmt.Errorf("jwtManager is required for AuthService")
	}
	if opts.PasswordEncrypter == nil {
		return nil, fmt.Errorf("passwordEncrypter is required for AuthService")
	}
	if opts.MessengerClient == nil {
		return nil, fmt.Errorf("messengerClient is required for AuthService")
	}
	if opts.TokenExpiration <= 0 {
		opts.TokenExpiration = 24 * time.Hour
	}
	if opts.PlatformName == "" {
		opts.PlatformName = "Classterra"
	}
	return &AuthService{
		models:            opts.Models,
		jwtManager:        opts.JWTManager,
		passwordEncrypter: opts.PasswordEncrypter,
		messengerClient:   opts.MessengerClient,
		monitorService:    opts.MonitorService,
		frontendURL:       opts.FrontendURL,
		platformName:      opts.PlatformName,
		tokenExpiration:   opts.TokenExpiration,
	}, nil
}

// Register creates a PENDING user, emails a 6-digit verification code and returns a JWT
// for the new account. A duplicate email surfaces as data.ErrRecordAlreadyExists.
func (s *AuthService) Register(ctx context.Context, email, password, firstName, lastName string, role data.UserRole) (*RegisterResponse, error) {
	encryptedPassword, err := s.passwordEncrypter.Encrypt(ctx, password)
	if err != nil {
		return nil, fmt.Errorf("encrypting password: %w", err)
	}

	code, err := auth.GenerateVerificationCode(verificationCodeLength)
	if err != nil {
		return nil, fmt.Errorf("generating verification code: %w", err)
	}

	user, err := s.models.Users.Insert(ctx, s.models.DBConnectionPool, data.UserInsert{
		Email:             email,
		EncryptedPassword: encryptedPassword,
		FirstName:         firstName,
		LastName:          lastName,
		Role:              role,
	}, code, time.Now().UTC().Add(verificationCodeExpiration))
	if err != nil {
		return nil, err
	}

	s.sendVerificationCodeEmail(ctx, user, code)

	token, err := s.generateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	return &RegisterResponse{Token: token, User: user}, nil
}

// Login authenticates a user. Failed attempts increment the lockout counter, locking the
// account at MaxLoginAttempts for LoginLockDuration. Login with an unverified email gets
// a fresh verification code emailed before being refused.
func (s *AuthService) Login(ctx context.Context, email, password, ip string) (*LoginResponse, error) {
	user, err := s.models.Users.GetByEmail(ctx, s.models.DBConnectionPool, email)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			s.monitorLoginFailure(ctx, "unknown_email")
			return nil, auth.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("querying user by email: %w", err)
	}

	if user.IsLocked(time.Now().UTC()) {
		s.monitorLoginFailure(ctx, "locked")
		return nil, auth.ErrUserLocked
	}

	if user.Status == data.SuspendedUserStatus || user.Status == data.InactiveUserStatus {
		s.monitorLoginFailure(ctx, "not_active")
		return nil, auth.ErrUserNotActive
	}

	matches, err := s.passwordEncrypter.ComparePassword(ctx, user.EncryptedPassword, password)
	if err != nil {
		return nil, fmt.Errorf("comparing password: %w", err)
	}
	if !matches {
		if _, failureErr := s.models.Users.RegisterLoginFailure(ctx, s.models.DBConnectionPool, user.ID); failureErr != nil {
			log.WithContext(ctx).Errorf("Error registering login failure for user %s: %s", user.ID, failureErr)
		}
		s.monitorLoginFailure(ctx, "bad_password")
		return nil, auth.ErrInvalidCredentials
	}

	if !user.EmailVerified {
		if sendErr := s.SendVerificationCode(ctx, user.Email); sendErr != nil {
			log.WithContext(ctx).Errorf("Error sending fresh verification code to user %s: %s", user.ID, sendErr)
		}
		s.monitorLoginFailure(ctx, "email_not_verified")
		return nil, ErrUserEmailNotVerified
	}

	if err = s.models.Users.RegisterLoginSuccess(ctx, s.models.DBConnectionPool, user.ID, ip); err != nil {
		return nil, fmt.Errorf("registering login success: %w", err)
	}

	token, err := s.generateToken(ctx, user)
	if err != nil {
		return nil, err
	}

	response := &LoginResponse{Token: token, User: user}

	pending, err := s.getPendingAccessRequest(ctx, user.ID)
	if err != nil {
		log.WithContext(ctx).Errorf("Error querying pending access request for user %s: %s", user.ID, err)
	} else {
		response.PendingAccessRequest = pending
	}

	return response, nil
}

// VerifyEmailWithCode confirms a user's email address, activating the account.
func (s *AuthService) VerifyEmailWithCode(ctx context.Context, email, code string) (*data.User, error) {
	return db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.User, error) {
		user, err := s.models.Users.GetByEmail(ctx, dbTx, email)
		if err != nil {
			if errors.Is(err, data.ErrRecordNotFound) {
				return nil, ErrInvalidVerificationCode
			}
			return nil, fmt.Errorf("querying user by email: %w", err)
		}

		if user.VerificationCode == nil || *user.VerificationCode != code ||
			user.VerificationExpiresAt == nil || user.VerificationExpiresAt.Before(time.Now().UTC()) {
			return nil, ErrInvalidVerificationCode
		}

		return s.models.Users.ConfirmEmail(ctx, dbTx, user.ID)
	})
}

// SendVerificationCode issues a fresh verification code and emails it. Unknown emails
// fail silently so the endpoint cannot be used to probe for accounts.
func (s *AuthService) SendVerificationCode(ctx context.Context, email string) error {
	user, err := s.models.Users.GetByEmail(ctx, s.models.DBConnectionPool, email)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("querying user by email: %w", err)
	}
	if user.EmailVerified {
		return nil
	}

	code, err := auth.GenerateVerificationCode(verificationCodeLength)
	if err != nil {
		return fmt.Errorf("generating verification code: %w", err)
	}

	err = s.models.Users.SetVerificationCode(ctx, s.models.DBConnectionPool, user.ID, code, time.Now().UTC().Add(verificationCodeExpiration))
	if err != nil {
		return fmt.Errorf("setting verification code: %w", err)
	}

	s.sendVerificationCodeEmail(ctx, user, code)
	return nil
}

// ForgotPassword issues a short-lived reset token and emails it. Unknown emails fail
// silently.
func (s *AuthService) ForgotPassword(ctx context.Context, email string) error {
	user, err := s.models.Users.GetByEmail(ctx, s.models.DBConnectionPool, email)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("querying user by email: %w", err)
	}

	resetToken, err := auth.GenerateResetToken(resetTokenNumBytes)
	if err != nil {
		return fmt.Errorf("generating reset token: %w", err)
	}

	err = s.models.Users.SetResetToken(ctx, s.models.DBConnectionPool, user.ID, resetToken, time.Now().UTC().Add(resetTokenExpiration))
	if err != nil {
		return fmt.Errorf("setting reset token: %w", err)
	}

	resetPasswordLink := fmt.Sprintf("%s/reset-password?token=%s", s.frontendURL, resetToken)
	body, err := htmltemplate.ExecuteHTMLTemplateForForgotPasswordEmail(htmltemplate.ForgotPasswordEmailTemplate{
		ResetToken:        resetToken,
		ResetPasswordLink: resetPasswordLink,
		PlatformName:      s.platformName,
	})
	if err != nil {
		return fmt.Errorf("executing forgot password email template: %w", err)
	}

	s.sendEmail(ctx, user.Email, "Reset your password", body)
	return nil
}

// ResetPassword sets a new password for the user holding a valid reset token, clearing
// the token and any login lockout.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	user, err := s.models.Users.GetByResetToken(ctx, s.models.DBConnectionPool, token)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("querying user by reset token: %w", err)
	}

	encryptedPassword, err := s.passwordEncrypter.Encrypt(ctx, password)
	if err != nil {
		return fmt.Errorf("encrypting password: %w", err)
	}

	return s.models.Users.UpdatePassword(ctx, s.models.DBConnectionPool, user.ID, encryptedPassword)
}

func (s *AuthService) GetProfile(ctx context.Context, userID string) (*data.User, error) {
	return s.models.Users.Get(ctx, s.models.DBConnectionPool, userID)
}

func (s *AuthService) generateToken(ctx context.Context, user *data.User) (string, error) {
	tokenUser := &auth.TokenUser{
		ID:       user.ID,
		Email:    user.Email,
		Role:     string(user.Role),
		TenantID: user.TenantID,
	}
	token, err := s.jwtManager.GenerateToken(ctx, tokenUser, time.Now().UTC().Add(s.tokenExpiration))
	if err != nil {
		return "", fmt.Errorf("generating token: %w", err)
	}
	return token, nil
}

func (s *AuthService) getPendingAccessRequest(ctx context.Context, userID string) (*data.AccessRequest, error) {
	requests, err := s.models.AccessRequests.GetAll(ctx, s.models.DBConnectionPool, &data.QueryParams{
		Page:      1,
		PageLimit: 1,
		SortBy:    data.SortFieldCreatedAt,
		SortOrder: data.SortOrderDESC,
		Filters: map[data.FilterKey]interface{}{
			data.FilterKeyUserID: userID,
			data.FilterKeyStatus: data.PendingAccessRequestStatus,
		},
	})
	if err != nil {
		return nil, err
	}
	if len(requests) == 0 {
		return nil, nil
	}
	return &requests[0], nil
}

func (s *AuthService) sendVerificationCodeEmail(ctx context.Context, user *data.User, code string) {
	body, err := htmltemplate.ExecuteHTMLTemplateForVerificationCodeEmail(htmltemplate.VerificationCodeEmailTemplate{
		FirstName:        user.FirstName,
		VerificationCode: code,
		PlatformName:     s.platformName,
	})
	if err != nil {
		log.WithContext(ctx).Errorf("Error executing verification code email template: %s", err)
		return
	}

	s.sendEmail(ctx, user.Email, "Verify your email address", body)
}

// sendEmail delivers a message on a best-effort basis. Email failures are logged and do
// not fail the surrounding operation.
func (s *AuthService) sendEmail(ctx context.Context, toEmail, title, body string) {
	msg := message.Message{ToEmail: toEmail, Title: title, Body: body}
	if err := s.messengerClient.SendMessage(ctx, msg); err != nil {
		log.WithContext(ctx).Errorf("Error sending email to %s: %s", toEmail, err)
	}
}

func (s *AuthService) monitorLoginFailure(ctx context.Context, reason string) {
	if s.monitorService == nil {
		return
	}
	if err := s.monitorService.MonitorCounters(monitor.LoginFailuresCounterTag, map[string]string{"reason": reason}); err != nil {
		log.WithContext(ctx).Errorf("Error monitoring login failures counter: %s", err)
	}
}

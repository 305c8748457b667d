package data

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/classterra/school-platform-backend/db"
)

type UserRole string

const (
	SuperAdminUserRole UserRole = "SUPER_ADMIN"
	AdminUserRole      UserRole = "ADMIN"
	TeacherUserRole    UserRole = "TEACHER"
	StaffUserRole      UserRole = "STAFF"
	StudentUserRole    UserRole = "STUDENT"
)

func (r UserRole) IsValid() bool {
	switch r {
	case SuperAdminUserRole, AdminUserRole, TeacherUserRole, StaffUserRole, StudentUserRole:
		return true
	}
	return false
}

// AllUserRoles returns the valid roles, used by validators and the role middleware.
func AllUserRoles() []UserRole {
	return []UserRole{SuperAdminUserRole, AdminUserRole, TeacherUserRole, StaffUserRole, StudentUserRole}
}

type UserStatus string

const (
	PendingUserStatus   UserStatus = "PENDING"
	ActiveUserStatus    UserStatus = "ACTIVE"
	SuspendedUserStatus UserStatus = "SUSPENDED"
	InactiveUserStatus  UserStatus = "INACTIVE"
)

func (s UserStatus) IsValid() bool {
	switch s {
	case PendingUserStatus, ActiveUserStatus, SuspendedUserStatus, InactiveUserStatus:
		return true
	}
	return false
}

const (
	// MaxLoginAttempts is the number of consecutive failed logins before the account locks.
	MaxLoginAttempts = 5
	// LoginLockDuration is how long an account stays locked after too many failed logins.
	LoginLockDuration = 15 * time.Minute
)

type User struct {
	ID                    string     `json:"id" db:"id"`
	Email                 string     `json:"email" db:"email"`
	EncryptedPassword     string     `json:"-" db:"encrypted_password"`
	FirstName             string     `json:"first_name" db:"first_name"`
	LastName              string     `json:"last_name" db:"last_name"`
	Role                  UserRole   `json:"role" db:"role"`
	Status                UserStatus `json:"status" db:"status"`
	TenantID              *string    `json:"tenant_id,omitempty" db:"tenant_id"`
	EmailVerified         bool       `json:"email_verified" db:"email_verified"`
	VerificationCode      *string    `json:"-" db:"verification_code"`
	VerificationExpiresAt *time.Time `json:"-" db:"verification_expires_at"`
	ResetToken            *string    `json:"-" db:"reset_token"`
	ResetTokenExpiresAt   *time.Time `json:"-" db:"reset_token_expires_at"`
	LoginAttempts         int        `json:"-" db:"login_attempts"`
	LockedUntil           *time.Time `json:"-" db:"locked_until"`
	LastLoginAt           *time.Time `json:"last_login_at,omitempty" db:"last_login_at"`
	LastLoginIP           *string    `json:"-" db:"last_login_ip"`
	CreatedAt             time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt             time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt             *time.Time `json:"-" db:"deleted_at"`
}

// IsLocked reports whether the account is currently locked out of login.
func (u *User) IsLocked(now time.Time) bool {
	return u.LockedUntil != nil && u.LockedUntil.After(now)
}

type UserInsert struct {
	Email             string
	EncryptedPassword string
	FirstName         string
	LastName          string
	Role              UserRole
	TenantID          *string
}

type UserModel struct {
	dbConnectionPool db.DBConnectionPool
}

const userEmailUniqueConstraint = "users_email_key"

// Get returns the user by id, excluding soft-deleted users.
func (m *UserModel) Get(ctx context.Context, sqlExec db.SQLExecuter, id string) (*User, error) {
	const query = `SELECT u.* FROM users u WHERE u.id = $1 AND u.deleted_at IS NULL`
	var user User
	err := sqlExec.GetContext(ctx, &user, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting user %s: %w", id, err)
	}
	return &user, nil
}

// GetByEmail returns the user for a (case-insensitive) email address.
func (m *UserModel) GetByEmail(ctx context.Context, sqlExec db.SQLExecuter, email string) (*User, error) {
	const query = `SELECT u.* FROM users u WHERE LOWER(u.email) = LOWER($1) AND u.deleted_at IS NULL`
	var user User
	err := sqlExec.GetContext(ctx, &user, query, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting user by email: %w", err)
	}
	return &user, nil
}

// GetByIDs returns the users for the given ids.
func (m *UserModel) GetByIDs(ctx context.Context, sqlExec db.SQLExecuter, ids []string) ([]User, error) {
	users := []User{}
	const query = `SELECT u.* FROM users u WHERE u.id = ANY($1) AND u.deleted_at IS NULL`
	err := sqlExec.SelectContext(ctx, &users, query, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("getting users by ids: %w", err)
	}
	return users, nil
}

// GetTenantAdmins returns the active admin users of a tenant, used to notify reviewers.
func (m *UserModel) GetTenantAdmins(ctx context.Context, sqlExec db.SQLExecuter, tenantID string) ([]User, error) {
	users := []User{}
	const query = `
		SELECT u.* FROM users u
		WHERE u.tenant_id = $1
		AND u.role IN ('ADMIN', 'SUPER_ADMIN')
		AND u.status = 'ACTIVE'
		AND u.deleted_at IS NULL
	`
	err := sqlExec.SelectContext(ctx, &users, query, tenantID)
	if err != nil {
		return nil, fmt.Errorf("getting admins for tenant %s: %w", tenantID, err)
	}
	return users, nil
}

// GetAll returns a page of users according to the query parameters.
func (m *UserModel) GetAll(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) ([]User, error) {
	users := []User{}
	qb := NewQueryBuilder("SELECT u.* FROM users u")
	m.applyFilters(qb, queryParams)
	qb.AddSorting(queryParams.SortBy, queryParams.SortOrder, "u")
	qb.AddPagination(queryParams.Page, queryParams.PageLimit)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.SelectContext(ctx, &users, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying users: %w", err)
	}
	return users, nil
}

// Count returns the number of users matching the query parameters, ignoring pagination.
func (m *UserModel) Count(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) (int, error) {
	var count int
	qb := NewQueryBuilder("SELECT COUNT(*) FROM users u")
	m.applyFilters(qb, queryParams)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.GetContext(ctx, &count, query, params...)
	if err != nil {
		return 0, fmt.Errorf("counting users: %w", err)
	}
	return count, nil
}

func (m *UserModel) applyFilters(qb *QueryBuilder, queryParams *QueryParams) {
	if !queryParams.IncludeDeleted {
		qb.AddCondition("u.deleted_at IS NULL")
	}
	if queryParams.Query != "" {
		q := "%" + queryParams.Query + "%"
		qb.AddCondition("(u.email ILIKE ? OR u.first_name ILIKE ? OR u.last_name ILIKE ?)", q, q, q)
	}
	if status, ok := queryParams.Filters[FilterKeyStatus]; ok {
		qb.AddCondition("u."+FilterKeyStatus.Equals(), status)
	}
	if role, ok := queryParams.Filters[FilterKeyRole]; ok {
		qb.AddCondition("u."+FilterKeyRole.Equals(), role)
	}
	if tenantID, ok := queryParams.Filters[FilterKeyTenantID]; ok {
		qb.AddCondition("u."+FilterKeyTenantID.Equals(), tenantID)
	}
}

// Insert creates a user in PENDING status with the given verification code.
func (m *UserModel) Insert(ctx context.Context, sqlExec db.SQLExecuter, insert UserInsert, verificationCode string, verificationExpiresAt time.Time) (*User, error) {
	const query = `
		INSERT INTO users (id, email, encrypted_password, first_name, last_name, role, tenant_id, verification_code, verification_expires_at)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, $8, $9)
		RETURNING *
	`
	var user User
	err := sqlExec.GetContext(ctx, &user, query,
		uuid.NewString(), insert.Email, insert.EncryptedPassword, insert.FirstName, insert.LastName,
		insert.Role, insert.TenantID, verificationCode, verificationExpiresAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == userEmailUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting user: %w", err)
	}
	return &user, nil
}

// RegisterLoginSuccess resets the failed-attempt counters and records the login timestamp and IP.
func (m *UserModel) RegisterLoginSuccess(ctx context.Context, sqlExec db.SQLExecuter, userID string, ip string) error {
	const query = `
		UPDATE users
		SET login_attempts = 0, locked_until = NULL, last_login_at = NOW(), last_login_ip = $2
		WHERE id = $1
	`
	_, err := sqlExec.ExecContext(ctx, query, userID, ip)
	if err != nil {
		return fmt.Errorf("registering login success for user %s: %w", userID, err)
	}
	return nil
}

// RegisterLoginFailure increments the failed-attempt counter and locks the account once
// the counter reaches MaxLoginAttempts. It returns the new attempt count.
func (m *UserModel) RegisterLoginFailure(ctx context.Context, sqlExec db.SQLExecuter, userID string) (int, error) {
	const query = `
		UPDATE users
		SET login_attempts = login_attempts + 1,
			locked_until = CASE WHEN login_attempts + 1 >= $2 THEN NOW() + $3::interval ELSE locked_until END
		WHERE id = $1
		RETURNING login_attempts
	`
	var attempts int
	err := sqlExec.GetContext(ctx, &attempts, query, userID, MaxLoginAttempts, LoginLockDuration.String())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrRecordNotFound
		}
		return 0, fmt.Errorf("registering login failure for user %s: %w", userID, err)
	}
	return attempts, nil
}

// SetVerificationCode stores a fresh email verification code.
func (m *UserModel) SetVerificationCode(ctx context.Context, sqlExec db.SQLExecuter, userID, code string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET verification_code = $2, verification_expires_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := sqlExec.ExecContext(ctx, query, userID, code, expiresAt)
	if err != nil {
		return fmt.Errorf("setting verification code for user %s: %w", userID, err)
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

// ConfirmEmail marks the user verified and activates the account, clearing the code.
func (m *UserModel) ConfirmEmail(ctx context.Context, sqlExec db.SQLExecuter, userID string) (*User, error) {
	const query = `
		UPDATE users
		SET email_verified = TRUE,
			status = 'ACTIVE',
			verification_code = NULL,
			verification_expires_at = NULL
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING *
	`
	var user User
	err := sqlExec.GetContext(ctx, &user, query, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("confirming email for user %s: %w", userID, err)
	}
	return &user, nil
}

// SetResetToken stores a password reset token.
func (m *UserModel) SetResetToken(ctx context.Context, sqlExec db.SQLExecuter, userID, token string, expiresAt time.Time) error {
	const query = `
		UPDATE users
		SET reset_token = $2, reset_token_expires_at = $3
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := sqlExec.ExecContext(ctx, query, userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("setting reset token for user %s: %w", userID, err)
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

// GetByResetToken returns the user holding an unexpired reset token.
func (m *UserModel) GetByResetToken(ctx context.Context, sqlExec db.SQLExecuter, token string) (*User, error) {
	const query = `
		SELECT u.* FROM users u
		WHERE u.reset_token = $1
		AND u.reset_token_expires_at > NOW()
		AND u.deleted_at IS NULL
	`
	var user User
	err := sqlExec.GetContext(ctx, &user, query, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting user by reset token: %w", err)
	}
	return &user, nil
}

// UpdatePassword replaces the password hash, clears the reset token, and unlocks the account.
func (m *UserModel) UpdatePassword(ctx context.Context, sqlExec db.SQLExecuter, userID, encryptedPassword string) error {
	const query = `
		UPDATE users
		SET encrypted_password = $2,
			reset_token = NULL,
			reset_token_expires_at = NULL,
			login_attempts = 0,
			locked_until = NULL
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := sqlExec.ExecContext(ctx, query, userID, encryptedPassword)
	if err != nil {
		return fmt.Errorf("updating password for user %s: %w", userID, err)
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

// AssignTenant attaches the user to a tenant with the given role and activates the
// account. Used when an access request is approved.
func (m *UserModel) AssignTenant(ctx context.Context, sqlExec db.SQLExecuter, userID, tenantID string, role UserRole) (*User, error) {
	const query = `
		UPDATE users
		SET tenant_id = $2, role = $3, status = 'ACTIVE'
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING *
	`
	var user User
	err := sqlExec.GetContext(ctx, &user, query, userID, tenantID, role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("assigning tenant %s to user %s: %w", tenantID, userID, err)
	}
	return &user, nil
}

// UpdateStatus changes the account status.
func (m *UserModel) UpdateStatus(ctx context.Context, sqlExec db.SQLExecuter, userID string, status UserStatus) (*User, error) {
	const query = `
		UPDATE users
		SET status = $2
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING *
	`
	var user User
	err := sqlExec.GetContext(ctx, &user, query, userID, status)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("updating status for user %s: %w", userID, err)
	}
	return &user, nil
}

// SoftDelete marks the user as deleted.
func (m *UserModel) SoftDelete(ctx context.Context, sqlExec db.SQLExecuter, userID string) error {
	const query = `
		UPDATE users
		SET deleted_at = NOW(), status = 'INACTIVE'
		WHERE id = $1 AND deleted_at IS NULL
	`
	res, err := sqlExec.ExecContext(ctx, query, userID)
	if err != nil {
		return fmt.Errorf("soft deleting user %s: %w", userID, err)
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

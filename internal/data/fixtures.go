package data

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/classterra/school-platform-backend/db"
)

func CreateTenantFixture(t *testing.T, ctx context.Context, sqlExec db.SQLExecuter, name, slug string) *Tenant {
	t.Helper()

	const query = `
		INSERT INTO tenants (id, name, slug, status, lifecycle_stage)
		VALUES ($1, $2, $3, 'ACTIVE', 'ACTIVE')
		RETURNING *
	`

	var tenant Tenant
	err := sqlExec.GetContext(ctx, &tenant, query, uuid.NewString(), name, slug)
	require.NoError(t, err)

	return &tenant
}

func CreateUserFixture(t *testing.T, ctx context.Context, sqlExec db.SQLExecuter, email string, role UserRole, status UserStatus, tenantID *string) *User {
	t.Helper()

	const query = `
		INSERT INTO users (id, email, encrypted_password, first_name, last_name, role, status, email_verified, tenant_id)
		VALUES ($1, LOWER($2), $3, $4, $5, $6, $7, TRUE, $8)
		RETURNING *
	`

	var user User
	err := sqlExec.GetContext(ctx, &user, query,
		uuid.NewString(), email, "$2a$04$fixturefixturefixturefix", "Edna", "Krabappel", role, status, tenantID)
	require.NoError(t, err)

	return &user
}

func CreateSchoolYearFixture(t *testing.T, ctx context.Context, sqlExec db.SQLExecuter, tenantID, name, code string, startDate, endDate time.Time, isDefault bool) *SchoolYear {
	t.Helper()

	sy, err := (&SchoolYearModel{}).Insert(ctx, sqlExec, SchoolYearInsert{
		TenantID:  tenantID,
		Name:      name,
		Code:      code,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    DraftSchoolYearStatus,
		IsDefault: isDefault,
		TermCount: 2,
	})
	require.NoError(t, err)

	return sy
}

func CreateAccessRequestFixture(t *testing.T, ctx context.Context, sqlExec db.SQLExecuter, userID, tenantID string, requestedRole UserRole) *AccessRequest {
	t.Helper()

	request, err := (&AccessRequestModel{}).Insert(ctx, sqlExec, AccessRequestInsert{
		UserID:        userID,
		TenantID:      tenantID,
		RequestedRole: requestedRole,
	})
	require.NoError(t, err)

	return request
}

package data

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/db/dbtest"
)

func Test_TenantModel_Update_slug(t *testing.T) {
	dbt := dbtest.Open(t)
	defer dbt.Close()
	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer dbConnectionPool.Close()

	ctx := context.Background()
	m := &TenantModel{dbConnectionPool: dbConnectionPool}

	tenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Springfield Elementary", "springfield-elementary")
	other := CreateTenantFixture(t, ctx, dbConnectionPool, "Shelbyville High", "shelbyville-high")

	newSlug := "springfield-primary"
	updated, err := m.Update(ctx, dbConnectionPool, tenant.ID, TenantUpdate{Slug: &newSlug})
	require.NoError(t, err)
	assert.Equal(t, newSlug, updated.Slug)

	// the old slug no longer resolves, the new one does
	_, err = m.GetBySlug(ctx, dbConnectionPool, "springfield-elementary")
	assert.ErrorIs(t, err, ErrRecordNotFound)
	bySlug, err := m.GetBySlug(ctx, dbConnectionPool, newSlug)
	require.NoError(t, err)
	assert.Equal(t, tenant.ID, bySlug.ID)

	// taking another tenant's slug trips the unique constraint
	takenSlug := other.Slug
	_, err = m.Update(ctx, dbConnectionPool, tenant.ID, TenantUpdate{Slug: &takenSlug})
	assert.ErrorIs(t, err, ErrRecordAlreadyExists)
}

func Test_TenantModel_SlugExists(t *testing.T) {
	dbt := dbtest.Open(t)
	defer dbt.Close()
	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer dbConnectionPool.Close()

	ctx := context.Background()
	m := &TenantModel{dbConnectionPool: dbConnectionPool}

	tenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Springfield Elementary", "springfield-elementary")

	exists, err := m.SlugExists(ctx, dbConnectionPool, "springfield-elementary", "")
	require.NoError(t, err)
	assert.True(t, exists)

	// the tenant's own row is ignored when excluded, so an unchanged slug passes
	exists, err = m.SlugExists(ctx, dbConnectionPool, "springfield-elementary", tenant.ID)
	require.NoError(t, err)
	assert.False(t, exists)

	exists, err = m.SlugExists(ctx, dbConnectionPool, "shelbyville-high", "")
	require.NoError(t, err)
	assert.False(t, exists)
}

package data

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/db/dbtest"
)

func Test_DurationDays(t *testing.T) {
	testCases := []struct {
		name     string
		start    time.Time
		end      time.Time
		expected int
	}{
		{
			name:     "regular school year",
			start:    time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC),
			expected: 302,
		},
		{
			name:     "same day",
			start:    time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			expected: 0,
		},
		{
			name:     "partial day rounds up",
			start:    time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			end:      time.Date(2025, 9, 2, 12, 0, 0, 0, time.UTC),
			expected: 2,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, DurationDays(tc.start, tc.end))

			sy := SchoolYear{StartDate: tc.start, EndDate: tc.end}
			assert.Equal(t, tc.expected, sy.DurationDays())
		})
	}
}

func Test_SchoolYearStatus_IsValid(t *testing.T) {
	assert.True(t, DraftSchoolYearStatus.IsValid())
	assert.True(t, ActiveSchoolYearStatus.IsValid())
	assert.True(t, ArchivedSchoolYearStatus.IsValid())
	assert.False(t, SchoolYearStatus("OPEN").IsValid())
}

func Test_SchoolYearUpdate_IsEmpty(t *testing.T) {
	assert.True(t, SchoolYearUpdate{}.IsEmpty())

	name := "2025/2026"
	assert.False(t, SchoolYearUpdate{Name: &name}.IsEmpty())

	termCount := 3
	assert.False(t, SchoolYearUpdate{TermCount: &termCount}.IsEmpty())

	// the updated-by audit field alone does not make an update non-empty
	updatedBy := "user-id"
	assert.True(t, SchoolYearUpdate{UpdatedBy: &updatedBy}.IsEmpty())
}

func Test_SchoolYearModel_ExistsOverlapping(t *testing.T) {
	dbt := dbtest.Open(t)
	defer dbt.Close()
	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer dbConnectionPool.Close()

	ctx := context.Background()
	m := &SchoolYearModel{dbConnectionPool: dbConnectionPool}

	tenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Springfield Elementary", "springfield-elementary")
	otherTenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Shelbyville High", "shelbyville-high")

	existing := CreateSchoolYearFixture(t, ctx, dbConnectionPool, tenant.ID, "2026/2027", "SY-2026",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), false)

	testCases := []struct {
		name      string
		tenantID  string
		startDate time.Time
		endDate   time.Time
		excludeID string
		expected  bool
	}{
		{
			name:      "range contained in an existing year overlaps",
			tenantID:  tenant.ID,
			startDate: time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC),
			expected:  true,
		},
		{
			name:      "range starting on the existing end date overlaps",
			tenantID:  tenant.ID,
			startDate: time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2028, 6, 30, 0, 0, 0, 0, time.UTC),
			expected:  true,
		},
		{
			name:      "range ending on the existing start date overlaps",
			tenantID:  tenant.ID,
			startDate: time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			expected:  true,
		},
		{
			name:      "disjoint later range does not overlap",
			tenantID:  tenant.ID,
			startDate: time.Date(2027, 7, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2028, 6, 30, 0, 0, 0, 0, time.UTC),
			expected:  false,
		},
		{
			name:      "excluding the existing year skips it",
			tenantID:  tenant.ID,
			startDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
			excludeID: existing.ID,
			expected:  false,
		},
		{
			name:      "another tenant's years are not considered",
			tenantID:  otherTenant.ID,
			startDate: time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC),
			endDate:   time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC),
			expected:  false,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			exists, existsErr := m.ExistsOverlapping(ctx, dbConnectionPool, tc.tenantID, tc.startDate, tc.endDate, tc.excludeID)
			require.NoError(t, existsErr)
			assert.Equal(t, tc.expected, exists)
		})
	}

	// soft-deleted years no longer block new ranges
	_, err = m.SoftDelete(ctx, dbConnectionPool, existing.ID)
	require.NoError(t, err)
	exists, err := m.ExistsOverlapping(ctx, dbConnectionPool, tenant.ID,
		time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 5, 31, 0, 0, 0, 0, time.UTC), "")
	require.NoError(t, err)
	assert.False(t, exists)
}

func Test_SchoolYearModel_SetDefault_atomicFlip(t *testing.T) {
	dbt := dbtest.Open(t)
	defer dbt.Close()
	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer dbConnectionPool.Close()

	ctx := context.Background()
	m := &SchoolYearModel{dbConnectionPool: dbConnectionPool}

	tenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Springfield Elementary", "springfield-elementary")
	first := CreateSchoolYearFixture(t, ctx, dbConnectionPool, tenant.ID, "2025/2026", "SY-2025",
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), true)
	second := CreateSchoolYearFixture(t, ctx, dbConnectionPool, tenant.ID, "2026/2027", "SY-2026",
		time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2027, 6, 30, 0, 0, 0, 0, time.UTC), false)

	// a second default cannot be written while the first still holds the flag
	_, err = m.SetDefault(ctx, dbConnectionPool, second.ID)
	require.Error(t, err)
	assert.ErrorContains(t, err, "idx_school_years_tenant_default")

	// clearing and setting inside one transaction flips the default atomically
	err = db.RunInTransaction(ctx, dbConnectionPool, nil, func(dbTx db.DBTransaction) error {
		if txErr := m.UnsetDefault(ctx, dbTx, tenant.ID); txErr != nil {
			return txErr
		}
		_, txErr := m.SetDefault(ctx, dbTx, second.ID)
		return txErr
	})
	require.NoError(t, err)

	defaultYear, err := m.GetDefault(ctx, dbConnectionPool, tenant.ID)
	require.NoError(t, err)
	assert.Equal(t, second.ID, defaultYear.ID)

	reloaded, err := m.Get(ctx, dbConnectionPool, first.ID)
	require.NoError(t, err)
	assert.False(t, reloaded.IsDefault)
}

func Test_SchoolYearModel_Insert_codeUniquePerTenant(t *testing.T) {
	dbt := dbtest.Open(t)
	defer dbt.Close()
	dbConnectionPool, err := db.OpenDBConnectionPool(dbt.DSN)
	require.NoError(t, err)
	defer dbConnectionPool.Close()

	ctx := context.Background()
	m := &SchoolYearModel{dbConnectionPool: dbConnectionPool}

	tenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Springfield Elementary", "springfield-elementary")
	otherTenant := CreateTenantFixture(t, ctx, dbConnectionPool, "Shelbyville High", "shelbyville-high")

	first := CreateSchoolYearFixture(t, ctx, dbConnectionPool, tenant.ID, "2025/2026", "SY-2025",
		time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC), time.Date(2026, 6, 30, 0, 0, 0, 0, time.UTC), false)

	duplicate := SchoolYearInsert{
		TenantID:  tenant.ID,
		Name:      "2025/2026 again",
		Code:      "SY-2025",
		StartDate: time.Date(2027, 9, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2028, 6, 30, 0, 0, 0, 0, time.UTC),
		Status:    DraftSchoolYearStatus,
		TermCount: 2,
	}
	_, err = m.Insert(ctx, dbConnectionPool, duplicate)
	assert.ErrorIs(t, err, ErrRecordAlreadyExists)

	// the same code is free under another tenant
	otherInsert := duplicate
	otherInsert.TenantID = otherTenant.ID
	_, err = m.Insert(ctx, dbConnectionPool, otherInsert)
	require.NoError(t, err)

	// soft-deleting the original frees the code for reuse
	_, err = m.SoftDelete(ctx, dbConnectionPool, first.ID)
	require.NoError(t, err)
	_, err = m.Insert(ctx, dbConnectionPool, duplicate)
	require.NoError(t, err)
}

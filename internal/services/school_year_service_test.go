package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/classterra/school-platform-backend/internal/data"
)

func Test_NewSchoolYearService(t *testing.T) {
	_, err := NewSchoolYearService(nil, nil)
	assert.EqualError(t, err, "models is required for SchoolYearService")

	svc, err := NewSchoolYearService(&data.Models{}, nil)
	require.NoError(t, err)
	assert.NotNil(t, svc)
}

func Test_SchoolYearService_CreateSchoolYear_dateRange(t *testing.T) {
	svc, err := NewSchoolYearService(&data.Models{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	date := func(value string) time.Time {
		parsed, parseErr := time.Parse("2006-01-02", value)
		require.NoError(t, parseErr)
		return parsed
	}

	testCases := []struct {
		name      string
		startDate time.Time
		endDate   time.Time
	}{
		{
			name:      "start date equal to end date",
			startDate: date("2025-09-01"),
			endDate:   date("2025-09-01"),
		},
		{
			name:      "start date after end date",
			startDate: date("2026-06-30"),
			endDate:   date("2025-09-01"),
		},
		{
			name:      "shorter than 30 days",
			startDate: date("2025-09-01"),
			endDate:   date("2025-09-15"),
		},
		{
			name:      "longer than 500 days",
			startDate: date("2025-09-01"),
			endDate:   date("2027-09-01"),
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, createErr := svc.CreateSchoolYear(ctx, "tenant-id", data.SchoolYearInsert{
				Name:      "2025-2026",
				Code:      "SY-2025",
				StartDate: tc.startDate,
				EndDate:   tc.endDate,
			})
			assert.ErrorIs(t, createErr, ErrSchoolYearInvalidDateRange)
		})
	}
}

func Test_SchoolYearService_UpdateSchoolYear_emptyUpdate(t *testing.T) {
	svc, err := NewSchoolYearService(&data.Models{}, nil)
	require.NoError(t, err)

	updatedBy := "admin-id"
	_, err = svc.UpdateSchoolYear(context.Background(), "tenant-id", "sy-1", data.SchoolYearUpdate{UpdatedBy: &updatedBy})
	assert.ErrorIs(t, err, data.ErrMissingInput)
}

func Test_SchoolYearService_BulkOperations_emptyIDs(t *testing.T) {
	svc, err := NewSchoolYearService(&data.Models{}, nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.BulkUpdateStatus(ctx, "tenant-id", nil, data.ArchivedSchoolYearStatus)
	assert.ErrorIs(t, err, data.ErrMissingInput)

	_, err = svc.BulkDelete(ctx, "tenant-id", []string{})
	assert.ErrorIs(t, err, data.ErrMissingInput)
}

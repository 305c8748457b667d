package validators

import (
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/classterra/school-platform-backend/internal/data"
)

func newTestQueryValidator() *QueryValidator {
	return &QueryValidator{
		DefaultSortField:  data.SortFieldCreatedAt,
		DefaultSortOrder:  data.SortOrderDESC,
		AllowedSortFields: []data.SortField{data.SortFieldName, data.SortFieldCreatedAt},
		AllowedFilters:    []data.FilterKey{data.FilterKeyStatus},
		Validator:         NewValidator(),
	}
}

func Test_QueryValidator_ParseParametersFromRequest(t *testing.T) {
	t.Run("defaults are applied", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources", nil)

		params := validator.ParseParametersFromRequest(req)

		assert.False(t, validator.HasErrors())
		assert.Equal(t, 1, params.Page)
		assert.Equal(t, 20, params.PageLimit)
		assert.Equal(t, data.SortFieldCreatedAt, params.SortBy)
		assert.Equal(t, data.SortOrderDESC, params.SortOrder)
		assert.False(t, params.IncludeDeleted)
		assert.Empty(t, params.Filters)
	})

	t.Run("explicit parameters", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?page=2&limit=50&sort=name&direction=asc&q=spring&status=active&include_deleted=true", nil)

		params := validator.ParseParametersFromRequest(req)

		assert.False(t, validator.HasErrors())
		assert.Equal(t, 2, params.Page)
		assert.Equal(t, 50, params.PageLimit)
		assert.Equal(t, data.SortFieldName, params.SortBy)
		assert.Equal(t, data.SortOrderASC, params.SortOrder)
		assert.Equal(t, "spring", params.Query)
		assert.True(t, params.IncludeDeleted)
		assert.Equal(t, "active", params.Filters[data.FilterKeyStatus])
	})

	t.Run("invalid page and limit", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?page=0&limit=500", nil)

		validator.ParseParametersFromRequest(req)

		assert.Equal(t, "parameter must be a positive integer", validator.Errors["page"])
		assert.Equal(t, "parameter must be between 1 and 100", validator.Errors["limit"])
	})

	t.Run("non-integer page", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?page=two", nil)

		validator.ParseParametersFromRequest(req)

		assert.Equal(t, "parameter must be an integer", validator.Errors["page"])
	})

	t.Run("disallowed sort field", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?sort=email", nil)

		validator.ParseParametersFromRequest(req)

		assert.Equal(t, "invalid sort field name", validator.Errors["sort"])
	})

	t.Run("invalid direction", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?direction=sideways", nil)

		validator.ParseParametersFromRequest(req)

		assert.Equal(t, "invalid sort order. valid values are 'asc' and 'desc'", validator.Errors["direction"])
	})

	t.Run("invalid include_deleted", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?include_deleted=maybe", nil)

		validator.ParseParametersFromRequest(req)

		assert.Equal(t, "parameter must be a boolean", validator.Errors["include_deleted"])
	})

	t.Run("filters not in the allow list are ignored", func(t *testing.T) {
		validator := newTestQueryValidator()
		req := httptest.NewRequest("GET", "/resources?tenant_id=tenant-id", nil)

		params := validator.ParseParametersFromRequest(req)

		assert.False(t, validator.HasErrors())
		assert.Empty(t, params.Filters)
	})
}

func Test_QueryValidator_ValidateAndGetDateParam(t *testing.T) {
	validator := newTestQueryValidator()

	assert.True(t, validator.ValidateAndGetDateParam("start_date_after", "").IsZero())
	assert.False(t, validator.HasErrors())

	parsed := validator.ValidateAndGetDateParam("start_date_after", "2025-09-01")
	assert.Equal(t, "2025-09-01", parsed.Format("2006-01-02"))
	assert.False(t, validator.HasErrors())

	validator.ValidateAndGetDateParam("start_date_after", "09/01/2025")
	assert.Equal(t, "invalid date format. valid format is 'YYYY-MM-DD'", validator.Errors["start_date_after"])
}

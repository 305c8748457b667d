package validators

import (
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/classterra/school-platform-backend/internal/data"
)

const maxPageLimit = 100

type QueryValidator struct {
	*Validator
	DefaultSortField  data.SortField
	DefaultSortOrder  data.SortOrder
	AllowedSortFields []data.SortField
	AllowedFilters    []data.FilterKey
}

// ParseParametersFromRequest parses query parameters from the request and returns a QueryParams struct.
func (qv *QueryValidator) ParseParametersFromRequest(r *http.Request) *data.QueryParams {
	page := qv.validateAndGetIntParams(r, "page", 1)
	pageLimit := qv.validateAndGetIntParams(r, "limit", 20)
	qv.Check(page > 0, "page", "parameter must be a positive integer")
	qv.Check(pageLimit > 0 && pageLimit <= maxPageLimit, "limit", "parameter must be between 1 and 100")

	query := r.URL.Query()
	sortBy := data.SortField(query.Get("sort"))
	if sortBy == "" {
		sortBy = qv.DefaultSortField
	} else if !slices.Contains(qv.AllowedSortFields, sortBy) {
		qv.AddError("sort", "invalid sort field name")
	}

	sortOrder := data.SortOrder(strings.ToUpper(query.Get("direction")))
	if sortOrder == "" {
		sortOrder = qv.DefaultSortOrder
	} else if sortOrder != data.SortOrderASC && sortOrder != data.SortOrderDESC {
		qv.AddError("direction", "invalid sort order. valid values are 'asc' and 'desc'")
	}

	filters := make(map[data.FilterKey]interface{})
	for _, fk := range qv.AllowedFilters {
		value := strings.TrimSpace(query.Get(string(fk)))
		if value != "" {
			filters[fk] = value
		}
	}

	includeDeleted := false
	if value := strings.TrimSpace(query.Get("include_deleted")); value != "" {
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			qv.AddError("include_deleted", "parameter must be a boolean")
		}
		includeDeleted = parsed
	}

	if qv.HasErrors() {
		return &data.QueryParams{}
	}

	return &data.QueryParams{
		Query:          strings.TrimSpace(query.Get("q")),
		Page:           page,
		PageLimit:      pageLimit,
		SortBy:         sortBy,
		SortOrder:      sortOrder,
		IncludeDeleted: includeDeleted,
		Filters:        filters,
	}
}

// validateAndGetIntParams validates the query parameter and returns the value as an integer.
func (qv *QueryValidator) validateAndGetIntParams(r *http.Request, param string, defaultValue int) int {
	value := r.URL.Query().Get(param)
	if value == "" {
		return defaultValue
	}

	intValue, err := strconv.Atoi(value)
	if err != nil {
		qv.CheckError(err, param, "parameter must be an integer")
		return defaultValue
	}

	return intValue
}

// ValidateAndGetDateParam validates a YYYY-MM-DD value and returns it as a time.Time.
func (qv *QueryValidator) ValidateAndGetDateParam(param, value string) time.Time {
	if value == "" {
		return time.Time{}
	}

	dateParam, err := time.Parse("2006-01-02", value)
	if err != nil {
		qv.Check(false, param, "invalid date format. valid format is 'YYYY-MM-DD'")
		return time.Time{}
	}

	return dateParam
}

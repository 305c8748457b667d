package httpresponse

import (
	"encoding/json"
)

// PaginatedResponse is the list-response envelope.
type PaginatedResponse struct {
	Data json.RawMessage `json:"data"`
	Meta PaginationMeta  `json:"meta"`
}

type PaginationMeta struct {
	Total       int  `json:"total"`
	Page        int  `json:"page"`
	Limit       int  `json:"limit"`
	TotalPages  int  `json:"total_pages"`
	HasNext     bool `json:"has_next"`
	HasPrevious bool `json:"has_previous"`
}

// NewEmptyPaginatedResponse returns a PaginatedResponse with an empty data list.
func NewEmptyPaginatedResponse(page, pageLimit int) PaginatedResponse {
	return PaginatedResponse{
		Data: json.RawMessage("[]"),
		Meta: PaginationMeta{
			Page:  page,
			Limit: pageLimit,
		},
	}
}

// NewPaginatedResponse returns a PaginatedResponse with pagination metadata computed from
// the total item count.
func NewPaginatedResponse(data interface{}, currentPage, pageLimit, totalItems int) (PaginatedResponse, error) {
	totalPages := 0
	if pageLimit > 0 {
		totalPages = (totalItems + pageLimit - 1) / pageLimit
	}

	dataBytes, err := json.Marshal(data)
	if err != nil {
		return PaginatedResponse{}, err
	}

	return PaginatedResponse{
		Data: dataBytes,
		Meta: PaginationMeta{
			Total:       totalItems,
			Page:        currentPage,
			Limit:       pageLimit,
			TotalPages:  totalPages,
			HasNext:     currentPage < totalPages,
			HasPrevious: currentPage > 1 && totalPages > 0,
		},
	}, nil
}

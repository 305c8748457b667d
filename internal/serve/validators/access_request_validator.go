package validators

import (
	"strings"

	"github.com/classterra/school-platform-backend/internal/data"
)

// CreateAccessRequestRequest represents a user's request to join a tenant.
type CreateAccessRequestRequest struct {
	TenantID      string `json:"tenant_id"`
	RequestedRole string `json:"requested_role"`
	Message       string `json:"message"`
}

// ReviewAccessRequestRequest approves or rejects a pending access request.
type ReviewAccessRequestRequest struct {
	Action          string `json:"action"`
	RejectionReason string `json:"rejection_reason"`
}

const (
	ReviewActionApprove = "approve"
	ReviewActionReject  = "reject"
)

type AccessRequestValidator struct {
	*Validator
}

func NewAccessRequestValidator() *AccessRequestValidator {
	return &AccessRequestValidator{
		Validator: NewValidator(),
	}
}

func (av *AccessRequestValidator) ValidateCreateAccessRequestRequest(req *CreateAccessRequestRequest) {
	req.TenantID = strings.TrimSpace(req.TenantID)
	req.Message = strings.TrimSpace(req.Message)

	av.Check(req.TenantID != "", "tenant_id", "tenant_id is required")

	if req.RequestedRole == "" {
		req.RequestedRole = string(data.StaffUserRole)
	} else {
		role := data.UserRole(strings.ToUpper(req.RequestedRole))
		av.Check(role.IsValid() && role != data.SuperAdminUserRole, "requested_role", "invalid role. valid values are: admin, teacher, staff, student")
		req.RequestedRole = string(role)
	}
}

func (av *AccessRequestValidator) ValidateReviewAccessRequestRequest(req *ReviewAccessRequestRequest) {
	req.Action = strings.ToLower(strings.TrimSpace(req.Action))
	req.RejectionReason = strings.TrimSpace(req.RejectionReason)

	av.Check(req.Action == ReviewActionApprove || req.Action == ReviewActionReject, "action", "invalid action. valid values are 'approve' and 'reject'")
	if req.Action == ReviewActionReject {
		av.Check(req.RejectionReason != "", "rejection_reason", "rejection_reason is required when rejecting a request")
	}
}

type AccessRequestQueryValidator struct {
	QueryValidator
}

func NewAccessRequestQueryValidator() *AccessRequestQueryValidator {
	return &AccessRequestQueryValidator{
		QueryValidator: QueryValidator{
			DefaultSortField:  data.SortFieldCreatedAt,
			DefaultSortOrder:  data.SortOrderDESC,
			AllowedSortFields: []data.SortField{data.SortFieldStatus, data.SortFieldCreatedAt, data.SortFieldUpdatedAt},
			AllowedFilters:    []data.FilterKey{data.FilterKeyStatus, data.FilterKeyTenantID, data.FilterKeyUserID},
			Validator:         NewValidator(),
		},
	}
}

// ValidateAndGetAccessRequestFilters validates the filter values and normalizes them.
func (qv *AccessRequestQueryValidator) ValidateAndGetAccessRequestFilters(filters map[data.FilterKey]interface{}) map[data.FilterKey]interface{} {
	validFilters := make(map[data.FilterKey]interface{})

	if value, ok := filters[data.FilterKeyStatus]; ok {
		status := data.AccessRequestStatus(strings.ToUpper(strings.TrimSpace(value.(string))))
		qv.Check(status.IsValid(), string(data.FilterKeyStatus), "invalid parameter. valid values are: pending, approved, rejected, cancelled")
		validFilters[data.FilterKeyStatus] = status
	}

	for _, fk := range []data.FilterKey{data.FilterKeyTenantID, data.FilterKeyUserID} {
		if value, ok := filters[fk]; ok {
			validFilters[fk] = value
		}
	}

	return validFilters
}

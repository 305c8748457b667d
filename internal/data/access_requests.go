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

type AccessRequestStatus string

const (
	PendingAccessRequestStatus   AccessRequestStatus = "PENDING"
	ApprovedAccessRequestStatus  AccessRequestStatus = "APPROVED"
	RejectedAccessRequestStatus  AccessRequestStatus = "REJECTED"
	CancelledAccessRequestStatus AccessRequestStatus = "CANCELLED"
)

func (s AccessRequestStatus) IsValid() bool {
	switch s {
	case PendingAccessRequestStatus, ApprovedAccessRequestStatus, RejectedAccessRequestStatus, CancelledAccessRequestStatus:
		return true
	}
	return false
}

// AccessRequest is a user's request to join a tenant, reviewed by a tenant admin.
type AccessRequest struct {
	ID              string              `json:"id" db:"id"`
	UserID          string              `json:"user_id" db:"user_id"`
	TenantID        string              `json:"tenant_id" db:"tenant_id"`
	RequestedRole   UserRole            `json:"requested_role" db:"requested_role"`
	Status          AccessRequestStatus `json:"status" db:"status"`
	Message         *string             `json:"message,omitempty" db:"message"`
	RejectionReason *string             `json:"rejection_reason,omitempty" db:"rejection_reason"`
	ReviewedBy      *string             `json:"reviewed_by,omitempty" db:"reviewed_by"`
	ReviewedAt      *time.Time          `json:"reviewed_at,omitempty" db:"reviewed_at"`
	CreatedAt       time.Time           `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at" db:"updated_at"`
}

type AccessRequestInsert struct {
	UserID        string
	TenantID      string
	RequestedRole UserRole
	Message       *string
}

type AccessRequestModel struct {
	dbConnectionPool db.DBConnectionPool
}

const accessRequestPendingUniqueConstraint = "idx_access_requests_pending"

// Get returns the access request by id.
func (m *AccessRequestModel) Get(ctx context.Context, sqlExec db.SQLExecuter, id string) (*AccessRequest, error) {
	const query = `SELECT ar.* FROM tenant_access_requests ar WHERE ar.id = $1`
	var request AccessRequest
	err := sqlExec.GetContext(ctx, &request, query, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("getting access request %s: %w", id, err)
	}
	return &request, nil
}

// GetAll returns a page of access requests according to the query parameters.
func (m *AccessRequestModel) GetAll(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) ([]AccessRequest, error) {
	requests := []AccessRequest{}
	qb := NewQueryBuilder("SELECT ar.* FROM tenant_access_requests ar")
	m.applyFilters(qb, queryParams)
	qb.AddSorting(queryParams.SortBy, queryParams.SortOrder, "ar")
	qb.AddPagination(queryParams.Page, queryParams.PageLimit)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.SelectContext(ctx, &requests, query, params...)
	if err != nil {
		return nil, fmt.Errorf("querying access requests: %w", err)
	}
	return requests, nil
}

// Count returns the number of access requests matching the query parameters.
func (m *AccessRequestModel) Count(ctx context.Context, sqlExec db.SQLExecuter, queryParams *QueryParams) (int, error) {
	var count int
	qb := NewQueryBuilder("SELECT COUNT(*) FROM tenant_access_requests ar")
	m.applyFilters(qb, queryParams)
	query, params := qb.BuildAndRebind(sqlExec)

	err := sqlExec.GetContext(ctx, &count, query, params...)
	if err != nil {
		return 0, fmt.Errorf("counting access requests: %w", err)
	}
	return count, nil
}

func (m *AccessRequestModel) applyFilters(qb *QueryBuilder, queryParams *QueryParams) {
	if status, ok := queryParams.Filters[FilterKeyStatus]; ok {
		qb.AddCondition("ar."+FilterKeyStatus.Equals(), status)
	}
	if tenantID, ok := queryParams.Filters[FilterKeyTenantID]; ok {
		qb.AddCondition("ar."+FilterKeyTenantID.Equals(), tenantID)
	}
	if userID, ok := queryParams.Filters[FilterKeyUserID]; ok {
		qb.AddCondition("ar."+FilterKeyUserID.Equals(), userID)
	}
}

// Insert creates a PENDING access request. The partial unique index guarantees at most one
// pending request per (user, tenant) pair, surfaced as ErrRecordAlreadyExists.
func (m *AccessRequestModel) Insert(ctx context.Context, sqlExec db.SQLExecuter, insert AccessRequestInsert) (*AccessRequest, error) {
	const query = `
		INSERT INTO tenant_access_requests (id, user_id, tenant_id, requested_role, message)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING *
	`
	var request AccessRequest
	err := sqlExec.GetContext(ctx, &request, query, uuid.NewString(), insert.UserID, insert.TenantID, insert.RequestedRole, insert.Message)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Constraint == accessRequestPendingUniqueConstraint {
			return nil, ErrRecordAlreadyExists
		}
		return nil, fmt.Errorf("inserting access request: %w", err)
	}
	return &request, nil
}

// Approve transitions a PENDING request to APPROVED and records the reviewer.
// Returns ErrRecordNotFound when the request does not exist or is not pending.
func (m *AccessRequestModel) Approve(ctx context.Context, sqlExec db.SQLExecuter, id, reviewerID string) (*AccessRequest, error) {
	const query = `
		UPDATE tenant_access_requests
		SET status = 'APPROVED', reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING *
	`
	var request AccessRequest
	err := sqlExec.GetContext(ctx, &request, query, id, reviewerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("approving access request %s: %w", id, err)
	}
	return &request, nil
}

// Reject transitions a PENDING request to REJECTED with a reason.
func (m *AccessRequestModel) Reject(ctx context.Context, sqlExec db.SQLExecuter, id, reviewerID, reason string) (*AccessRequest, error) {
	const query = `
		UPDATE tenant_access_requests
		SET status = 'REJECTED', rejection_reason = $3, reviewed_by = $2, reviewed_at = NOW()
		WHERE id = $1 AND status = 'PENDING'
		RETURNING *
	`
	var request AccessRequest
	err := sqlExec.GetContext(ctx, &request, query, id, reviewerID, reason)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("rejecting access request %s: %w", id, err)
	}
	return &request, nil
}

// Cancel lets the requesting user withdraw their own PENDING request.
func (m *AccessRequestModel) Cancel(ctx context.Context, sqlExec db.SQLExecuter, id, userID string) (*AccessRequest, error) {
	const query = `
		UPDATE tenant_access_requests
		SET status = 'CANCELLED'
		WHERE id = $1 AND user_id = $2 AND status = 'PENDING'
		RETURNING *
	`
	var request AccessRequest
	err := sqlExec.GetContext(ctx, &request, query, id, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRecordNotFound
		}
		return nil, fmt.Errorf("cancelling access request %s: %w", id, err)
	}
	return &request, nil
}

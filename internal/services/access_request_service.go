package services

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"

	"github.com/classterra/school-platform-backend/db"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/htmltemplate"
	"github.com/classterra/school-platform-backend/internal/message"
	"github.com/classterra/school-platform-backend/internal/monitor"
)

var (
	ErrPendingAccessRequestExists = errors.New("user already has a pending access request for this tenant")
	ErrNotTenantAdmin             = errors.New("user is not an admin of this tenant")
	ErrAccessRequestNotPending    = errors.New("access request has already been decided")
)

type AccessRequestServiceInterface interface {
	CreateAccessRequest(ctx context.Context, userID string, insert data.AccessRequestInsert) (*data.AccessRequest, error)
	GetAccessRequests(ctx context.Context, queryParams *data.QueryParams) ([]data.AccessRequest, int, error)
	ApproveAccessRequest(ctx context.Context, requestID string, reviewer *data.User) (*data.AccessRequest, error)
	RejectAccessRequest(ctx context.Context, requestID string, reviewer *data.User, reason string) (*data.AccessRequest, error)
	CancelAccessRequest(ctx context.Context, requestID, userID string) (*data.AccessRequest, error)
}

type AccessRequestService struct {
	models          *data.Models
	messengerClient message.MessengerClient
	monitorService  monitor.MonitorServiceInterface
	frontendURL     string
}

var _ AccessRequestServiceInterface = (*AccessRequestService)(nil)

func NewAccessRequestService(models *data.Models, messengerClient message.MessengerClient, monitorService monitor.MonitorServiceInterface, frontendURL string) (*AccessRequestService, error) {
	if models == nil {
		return nil, fmt.Errorf("models is required for AccessRequestService")
	}
	if messengerClient == nil {
		return nil, fmt.Errorf("messengerClient is required for AccessRequestService")
	}
	return &AccessRequestService{
		models:          models,
		messengerClient: messengerClient,
		monitorService:  monitorService,
		frontendURL:     frontendURL,
	}, nil
}

// CreateAccessRequest files a request for the user to join a tenant and notifies the
// tenant admins by email. The user must have a verified email, no tenant membership,
// and no other PENDING request for the same tenant.
func (s *AccessRequestService) CreateAccessRequest(ctx context.Context, userID string, insert data.AccessRequestInsert) (*data.AccessRequest, error) {
	insert.UserID = userID

	type creationResult struct {
		request *data.AccessRequest
		user    *data.User
		tenant  *data.Tenant
	}

	result, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (creationResult, error) {
		user, txErr := s.models.Users.Get(ctx, dbTx, userID)
		if txErr != nil {
			return creationResult{}, fmt.Errorf("querying user: %w", txErr)
		}
		if !user.EmailVerified {
			return creationResult{}, ErrUserEmailNotVerified
		}
		if user.TenantID != nil {
			return creationResult{}, ErrUserAlreadyHasTenant
		}

		tenant, txErr := s.models.Tenants.Get(ctx, dbTx, insert.TenantID)
		if txErr != nil {
			return creationResult{}, txErr
		}

		request, txErr := s.models.AccessRequests.Insert(ctx, dbTx, insert)
		if txErr != nil {
			if errors.Is(txErr, data.ErrRecordAlreadyExists) {
				return creationResult{}, ErrPendingAccessRequestExists
			}
			return creationResult{}, txErr
		}

		return creationResult{request: request, user: user, tenant: tenant}, nil
	})
	if err != nil {
		return nil, err
	}

	s.notifyTenantAdmins(ctx, result.tenant, result.user, result.request)

	return result.request, nil
}

func (s *AccessRequestService) GetAccessRequests(ctx context.Context, queryParams *data.QueryParams) ([]data.AccessRequest, int, error) {
	totalRequests, err := s.models.AccessRequests.Count(ctx, s.models.DBConnectionPool, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("counting access requests: %w", err)
	}

	if totalRequests == 0 {
		return []data.AccessRequest{}, 0, nil
	}

	requests, err := s.models.AccessRequests.GetAll(ctx, s.models.DBConnectionPool, queryParams)
	if err != nil {
		return nil, 0, fmt.Errorf("querying access requests: %w", err)
	}

	return requests, totalRequests, nil
}

// ApproveAccessRequest approves a pending request, assigning the requester to the tenant
// with the requested role, and emails the requester. The reviewer must be an ADMIN or
// SUPER_ADMIN of the request's tenant.
func (s *AccessRequestService) ApproveAccessRequest(ctx context.Context, requestID string, reviewer *data.User) (*data.AccessRequest, error) {
	request, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.AccessRequest, error) {
		request, txErr := s.models.AccessRequests.Get(ctx, dbTx, requestID)
		if txErr != nil {
			return nil, txErr
		}

		if txErr = s.checkReviewerCanReview(reviewer, request); txErr != nil {
			return nil, txErr
		}
		if request.Status != data.PendingAccessRequestStatus {
			return nil, ErrAccessRequestNotPending
		}

		request, txErr = s.models.AccessRequests.Approve(ctx, dbTx, requestID, reviewer.ID)
		if txErr != nil {
			return nil, txErr
		}

		if _, txErr = s.models.Users.AssignTenant(ctx, dbTx, request.UserID, request.TenantID, request.RequestedRole); txErr != nil {
			return nil, fmt.Errorf("assigning user to tenant: %w", txErr)
		}

		return request, nil
	})
	if err != nil {
		return nil, err
	}

	s.monitorReview(ctx, "approved")
	s.notifyRequester(ctx, request, true, "")

	return request, nil
}

// RejectAccessRequest rejects a pending request with a reason and emails the requester.
func (s *AccessRequestService) RejectAccessRequest(ctx context.Context, requestID string, reviewer *data.User, reason string) (*data.AccessRequest, error) {
	request, err := db.RunInTransactionWithResult(ctx, s.models.DBConnectionPool, nil, func(dbTx db.DBTransaction) (*data.AccessRequest, error) {
		request, txErr := s.models.AccessRequests.Get(ctx, dbTx, requestID)
		if txErr != nil {
			return nil, txErr
		}

		if txErr = s.checkReviewerCanReview(reviewer, request); txErr != nil {
			return nil, txErr
		}
		if request.Status != data.PendingAccessRequestStatus {
			return nil, ErrAccessRequestNotPending
		}

		return s.models.AccessRequests.Reject(ctx, dbTx, requestID, reviewer.ID, reason)
	})
	if err != nil {
		return nil, err
	}

	s.monitorReview(ctx, "rejected")
	s.notifyRequester(ctx, request, false, reason)

	return request, nil
}

// CancelAccessRequest lets the request's author withdraw it while still PENDING.
func (s *AccessRequestService) CancelAccessRequest(ctx context.Context, requestID, userID string) (*data.AccessRequest, error) {
	return s.models.AccessRequests.Cancel(ctx, s.models.DBConnectionPool, requestID, userID)
}

func (s *AccessRequestService) checkReviewerCanReview(reviewer *data.User, request *data.AccessRequest) error {
	if reviewer.Role != data.AdminUserRole && reviewer.Role != data.SuperAdminUserRole {
		return ErrNotTenantAdmin
	}
	if reviewer.Role != data.SuperAdminUserRole {
		if reviewer.TenantID == nil || *reviewer.TenantID != request.TenantID {
			return ErrNotTenantAdmin
		}
	}
	return nil
}

func (s *AccessRequestService) notifyTenantAdmins(ctx context.Context, tenant *data.Tenant, requester *data.User, request *data.AccessRequest) {
	admins, err := s.models.Users.GetTenantAdmins(ctx, s.models.DBConnectionPool, tenant.ID)
	if err != nil {
		log.WithContext(ctx).Errorf("Error querying tenant admins for tenant %s: %s", tenant.ID, err)
		return
	}

	reviewRequestsLink := fmt.Sprintf("%s/access-requests", s.frontendURL)
	for _, admin := range admins {
		body, tmplErr := htmltemplate.ExecuteHTMLTemplateForAccessRequestSubmittedEmail(htmltemplate.AccessRequestSubmittedEmailTemplate{
			AdminFirstName:     admin.FirstName,
			RequesterEmail:     requester.Email,
			TenantName:         tenant.Name,
			RequestedRole:      string(request.RequestedRole),
			ReviewRequestsLink: reviewRequestsLink,
		})
		if tmplErr != nil {
			log.WithContext(ctx).Errorf("Error executing access request submitted email template: %s", tmplErr)
			return
		}

		msg := message.Message{ToEmail: admin.Email, Title: "New access request", Body: body}
		if sendErr := s.messengerClient.SendMessage(ctx, msg); sendErr != nil {
			log.WithContext(ctx).Errorf("Error sending access request notification to %s: %s", admin.Email, sendErr)
		}
	}
}

func (s *AccessRequestService) notifyRequester(ctx context.Context, request *data.AccessRequest, approved bool, reason string) {
	user, err := s.models.Users.Get(ctx, s.models.DBConnectionPool, request.UserID)
	if err != nil {
		log.WithContext(ctx).Errorf("Error querying requester %s: %s", request.UserID, err)
		return
	}

	tenant, err := s.models.Tenants.Get(ctx, s.models.DBConnectionPool, request.TenantID)
	if err != nil {
		log.WithContext(ctx).Errorf("Error querying tenant %s: %s", request.TenantID, err)
		return
	}

	body, err := htmltemplate.ExecuteHTMLTemplateForAccessRequestReviewedEmail(htmltemplate.AccessRequestReviewedEmailTemplate{
		FirstName:       user.FirstName,
		TenantName:      tenant.Name,
		Approved:        approved,
		RejectionReason: reason,
		LoginLink:       fmt.Sprintf("%s/login", s.frontendURL),
	})
	if err != nil {
		log.WithContext(ctx).Errorf("Error executing access request reviewed email template: %s", err)
		return
	}

	title := "Your access request was approved"
	if !approved {
		title = "Your access request was rejected"
	}
	msg := message.Message{ToEmail: user.Email, Title: title, Body: body}
	if err = s.messengerClient.SendMessage(ctx, msg); err != nil {
		log.WithContext(ctx).Errorf("Error sending access request review notification to %s: %s", user.Email, err)
	}
}

func (s *AccessRequestService) monitorReview(ctx context.Context, outcome string) {
	if s.monitorService == nil {
		return
	}
	if err := s.monitorService.MonitorCounters(monitor.AccessRequestsReviewedCounterTag, map[string]string{"outcome": outcome}); err != nil {
		log.WithContext(ctx).Errorf("Error monitoring access requests reviewed counter: %s", err)
	}
}

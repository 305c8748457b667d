package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/classterra/school-platform-backend/internal/auth"
	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
	"github.com/classterra/school-platform-backend/internal/serve/httpresponse"
	"github.com/classterra/school-platform-backend/internal/serve/middleware"
	"github.com/classterra/school-platform-backend/internal/serve/validators"
	"github.com/classterra/school-platform-backend/internal/services"
)

type AccessRequestsHandler struct {
	AccessRequestService services.AccessRequestServiceInterface
}

func (h AccessRequestsHandler) CreateAccessRequest(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	var reqBody validators.CreateAccessRequestRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAccessRequestValidator()
	validator.ValidateCreateAccessRequestRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	insert := data.AccessRequestInsert{
		TenantID:      reqBody.TenantID,
		RequestedRole: data.UserRole(reqBody.RequestedRole),
	}
	if reqBody.Message != "" {
		insert.Message = &reqBody.Message
	}

	request, err := h.AccessRequestService.CreateAccessRequest(ctx, tokenUser.ID, insert)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot create access request")
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, request)
}

// GetAccessRequests lists access requests. Tenant admins are scoped to their own tenant;
// SUPER_ADMINs see all requests and may filter freely.
func (h AccessRequestsHandler) GetAccessRequests(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	validator := validators.NewAccessRequestQueryValidator()
	queryParams := validator.ParseParametersFromRequest(req)
	queryParams.Filters = validator.ValidateAndGetAccessRequestFilters(queryParams.Filters)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	if tokenUser.Role != string(data.SuperAdminUserRole) {
		if tokenUser.TenantID == nil {
			httperror.Forbidden("User does not belong to a tenant.", nil, nil).Render(rw)
			return
		}
		queryParams.Filters[data.FilterKeyTenantID] = *tokenUser.TenantID
	}

	h.renderList(rw, req, queryParams)
}

// GetMyAccessRequests lists the authenticated user's own access requests.
func (h AccessRequestsHandler) GetMyAccessRequests(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	validator := validators.NewAccessRequestQueryValidator()
	queryParams := validator.ParseParametersFromRequest(req)
	queryParams.Filters = validator.ValidateAndGetAccessRequestFilters(queryParams.Filters)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}
	queryParams.Filters[data.FilterKeyUserID] = tokenUser.ID

	h.renderList(rw, req, queryParams)
}

func (h AccessRequestsHandler) renderList(rw http.ResponseWriter, req *http.Request, queryParams *data.QueryParams) {
	ctx := req.Context()

	requests, total, err := h.AccessRequestService.GetAccessRequests(ctx, queryParams)
	if err != nil {
		httperror.InternalError(ctx, "Cannot retrieve access requests", err, nil).Render(rw)
		return
	}

	response, err := httpresponse.NewPaginatedResponse(requests, queryParams.Page, queryParams.PageLimit, total)
	if err != nil {
		httperror.InternalError(ctx, "Cannot build paginated response", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, response)
}

func (h AccessRequestsHandler) ReviewAccessRequest(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	var reqBody validators.ReviewAccessRequestRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewAccessRequestValidator()
	validator.ValidateReviewAccessRequestRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	reviewer := tokenUserToUser(tokenUser)
	requestID := chi.URLParam(req, "id")

	var request *data.AccessRequest
	var err error
	if reqBody.Action == validators.ReviewActionApprove {
		request, err = h.AccessRequestService.ApproveAccessRequest(ctx, requestID, reviewer)
	} else {
		request, err = h.AccessRequestService.RejectAccessRequest(ctx, requestID, reviewer, reqBody.RejectionReason)
	}
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot review access request")
		return
	}

	render.JSON(rw, req, request)
}

func (h AccessRequestsHandler) CancelAccessRequest(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	tokenUser, ok := middleware.GetTokenUserFromContext(ctx)
	if !ok {
		httperror.Unauthorized("", nil, nil).Render(rw)
		return
	}

	request, err := h.AccessRequestService.CancelAccessRequest(ctx, chi.URLParam(req, "id"), tokenUser.ID)
	if err != nil {
		h.renderServiceError(rw, req, err, "Cannot cancel access request")
		return
	}

	render.JSON(rw, req, request)
}

func (h AccessRequestsHandler) renderServiceError(rw http.ResponseWriter, req *http.Request, err error, internalMsg string) {
	ctx := req.Context()
	switch {
	case errors.Is(err, data.ErrRecordNotFound):
		httperror.NotFound("Access request not found.", err, nil).Render(rw)
	case errors.Is(err, services.ErrPendingAccessRequestExists):
		httperror.Conflict(err.Error(), err, nil).Render(rw)
	case errors.Is(err, services.ErrNotTenantAdmin):
		httperror.Forbidden(err.Error(), err, nil).Render(rw)
	case errors.Is(err, services.ErrUserAlreadyHasTenant),
		errors.Is(err, services.ErrUserEmailNotVerified),
		errors.Is(err, services.ErrAccessRequestNotPending):
		httperror.BadRequest(err.Error(), err, nil).Render(rw)
	default:
		httperror.InternalError(ctx, internalMsg, err, nil).Render(rw)
	}
}

// tokenUserToUser lifts the JWT claims into the user shape the review flow checks
// against.
func tokenUserToUser(tokenUser *auth.TokenUser) *data.User {
	return &data.User{
		ID:       tokenUser.ID,
		Email:    tokenUser.Email,
		Role:     data.UserRole(tokenUser.Role),
		TenantID: tokenUser.TenantID,
	}
}

package httphandler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/serve/httperror"
	"github.com/classterra/school-platform-backend/internal/serve/httpresponse"
	"github.com/classterra/school-platform-backend/internal/serve/validators"
	"github.com/classterra/school-platform-backend/internal/services"
	"github.com/classterra/school-platform-backend/internal/utils"
)

type WaitlistHandler struct {
	WaitlistService services.WaitlistServiceInterface
}

func (h WaitlistHandler) Subscribe(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	var reqBody validators.JoinWaitlistRequest
	if err := json.NewDecoder(req.Body).Decode(&reqBody); err != nil {
		httperror.BadRequest("The request was invalid in some way.", err, nil).Render(rw)
		return
	}

	validator := validators.NewWaitlistValidator()
	validator.ValidateJoinWaitlistRequest(&reqBody)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	insert := data.WaitlistInsert{
		Email:       reqBody.Email,
		Source:      optionalString(reqBody.Source),
		UTMSource:   optionalString(reqBody.UTMSource),
		UTMMedium:   optionalString(reqBody.UTMMedium),
		UTMCampaign: optionalString(reqBody.UTMCampaign),
	}

	subscriber, err := h.WaitlistService.Subscribe(ctx, insert)
	if err != nil {
		if errors.Is(err, services.ErrAlreadyOnWaitlist) {
			httperror.Conflict("This email is already on the waitlist.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot subscribe to waitlist", err, nil).Render(rw)
		return
	}

	render.Status(req, http.StatusCreated)
	render.JSON(rw, req, subscriber)
}

func (h WaitlistHandler) Unsubscribe(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	email := strings.TrimSpace(chi.URLParam(req, "email"))
	if err := utils.ValidateEmail(email); err != nil {
		httperror.BadRequest("Invalid email address.", err, nil).Render(rw)
		return
	}

	subscriber, err := h.WaitlistService.Unsubscribe(ctx, email)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			httperror.NotFound("Email is not on the waitlist.", err, nil).Render(rw)
			return
		}
		httperror.InternalError(ctx, "Cannot unsubscribe from waitlist", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, subscriber)
}

func (h WaitlistHandler) GetSubscribers(rw http.ResponseWriter, req *http.Request) {
	ctx := req.Context()

	validator := validators.NewWaitlistQueryValidator()
	queryParams := validator.ParseParametersFromRequest(req)
	if validator.HasErrors() {
		httperror.BadRequest("Request invalid", nil, validator.Errors).Render(rw)
		return
	}

	subscribers, total, err := h.WaitlistService.GetSubscribers(ctx, queryParams)
	if err != nil {
		httperror.InternalError(ctx, "Cannot retrieve waitlist subscribers", err, nil).Render(rw)
		return
	}

	response, err := httpresponse.NewPaginatedResponse(subscribers, queryParams.Page, queryParams.PageLimit, total)
	if err != nil {
		httperror.InternalError(ctx, "Cannot build paginated response", err, nil).Render(rw)
		return
	}

	render.JSON(rw, req, response)
}

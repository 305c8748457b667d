package validators

import (
	"strings"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/utils"
)

// JoinWaitlistRequest represents the public request to join the product waitlist.
type JoinWaitlistRequest struct {
	Email       string `json:"email"`
	Source      string `json:"source"`
	UTMSource   string `json:"utm_source"`
	UTMMedium   string `json:"utm_medium"`
	UTMCampaign string `json:"utm_campaign"`
}

type WaitlistValidator struct {
	*Validator
}

func NewWaitlistValidator() *WaitlistValidator {
	return &WaitlistValidator{
		Validator: NewValidator(),
	}
}

func (wv *WaitlistValidator) ValidateJoinWaitlistRequest(req *JoinWaitlistRequest) {
	req.Email = strings.TrimSpace(req.Email)
	req.Source = strings.TrimSpace(req.Source)

	wv.CheckError(utils.ValidateEmail(req.Email), "email", "")

	for _, field := range []struct {
		key   string
		value string
	}{
		{"source", req.Source},
		{"utm_source", req.UTMSource},
		{"utm_medium", req.UTMMedium},
		{"utm_campaign", req.UTMCampaign},
	} {
		wv.Check(len(field.value) <= 64, field.key, field.key+" must be at most 64 characters")
	}
}

type WaitlistQueryValidator struct {
	QueryValidator
}

func NewWaitlistQueryValidator() *WaitlistQueryValidator {
	return &WaitlistQueryValidator{
		QueryValidator: QueryValidator{
			DefaultSortField:  data.SortFieldCreatedAt,
			DefaultSortOrder:  data.SortOrderDESC,
			AllowedSortFields: []data.SortField{data.SortFieldEmail, data.SortFieldStatus, data.SortFieldCreatedAt},
			AllowedFilters:    []data.FilterKey{data.FilterKeyStatus},
			Validator:         NewValidator(),
		},
	}
}

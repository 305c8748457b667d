package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_ValidateEmail(t *testing.T) {
	testCases := []struct {
		email     string
		wantError string
	}{
		{email: "", wantError: "email cannot be empty"},
		{email: "notvalidemail", wantError: "the provided email is not valid"},
		{email: "valid@test", wantError: "the provided email is not valid"},
		{email: "valid@test.com", wantError: ""},
		{email: "valid+alias@test.com", wantError: ""},
	}

	for _, tc := range testCases {
		t.Run("validateEmail: "+tc.email, func(t *testing.T) {
			err := ValidateEmail(tc.email)
			if tc.wantError != "" {
				assert.EqualError(t, err, tc.wantError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func Test_ValidateSlug(t *testing.T) {
	testCases := []struct {
		slug      string
		wantError bool
	}{
		{slug: "", wantError: true},
		{slug: "UPPERCASE", wantError: true},
		{slug: "-leading-hyphen", wantError: true},
		{slug: "trailing-hyphen-", wantError: true},
		{slug: "double--hyphen", wantError: true},
		{slug: "with spaces", wantError: true},
		{slug: "valid-slug-123", wantError: false},
		{slug: "school42", wantError: false},
	}

	for _, tc := range testCases {
		t.Run("validateSlug: "+tc.slug, func(t *testing.T) {
			err := ValidateSlug(tc.slug)
			if tc.wantError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

package htmltemplate

import (
	"html/template"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ExecuteHTMLTemplate(t *testing.T) {
	t.Run("unknown template name errors", func(t *testing.T) {
		_, err := ExecuteHTMLTemplate("missing.tmpl", nil)
		assert.Error(t, err)
	})

	t.Run("empty body template renders html body unescaped", func(t *testing.T) {
		html, err := ExecuteHTMLTemplateForEmailEmptyBody(EmptyBodyEmailTemplate{Body: template.HTML("<p>hello</p>")})
		require.NoError(t, err)
		assert.Contains(t, html, "<p>hello</p>")
	})
}

func Test_ExecuteHTMLTemplateForVerificationCodeEmail(t *testing.T) {
	html, err := ExecuteHTMLTemplateForVerificationCodeEmail(VerificationCodeEmailTemplate{
		FirstName:        "Jane",
		VerificationCode: "123456",
		PlatformName:     "Classterra",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "Hello Jane,")
	assert.Contains(t, html, "123456")
	assert.Contains(t, html, "Classterra")

	t.Run("greeting without first name", func(t *testing.T) {
		html, err := ExecuteHTMLTemplateForVerificationCodeEmail(VerificationCodeEmailTemplate{
			VerificationCode: "123456",
			PlatformName:     "Classterra",
		})
		require.NoError(t, err)
		assert.Contains(t, html, "Hello,")
	})
}

func Test_ExecuteHTMLTemplateForForgotPasswordEmail(t *testing.T) {
	html, err := ExecuteHTMLTemplateForForgotPasswordEmail(ForgotPasswordEmailTemplate{
		ResetToken:        "abcdef123456",
		ResetPasswordLink: "https://app.classterra.com/reset-password?token=abcdef123456",
		PlatformName:      "Classterra",
	})
	require.NoError(t, err)

	assert.Contains(t, html, `href="https://app.classterra.com/reset-password?token=abcdef123456"`)
	assert.Contains(t, html, "abcdef123456")
}

func Test_ExecuteHTMLTemplateForAccessRequestSubmittedEmail(t *testing.T) {
	html, err := ExecuteHTMLTemplateForAccessRequestSubmittedEmail(AccessRequestSubmittedEmailTemplate{
		AdminFirstName:     "Marge",
		RequesterEmail:     "teacher@school.edu",
		TenantName:         "Springfield Elementary",
		RequestedRole:      "TEACHER",
		ReviewRequestsLink: "https://app.classterra.com/tenant-access",
	})
	require.NoError(t, err)

	assert.Contains(t, html, "teacher@school.edu")
	assert.Contains(t, html, "Springfield Elementary")
	assert.Contains(t, html, "TEACHER")
}

func Test_ExecuteHTMLTemplateForAccessRequestReviewedEmail(t *testing.T) {
	t.Run("approved", func(t *testing.T) {
		html, err := ExecuteHTMLTemplateForAccessRequestReviewedEmail(AccessRequestReviewedEmailTemplate{
			FirstName:  "Jane",
			TenantName: "Springfield Elementary",
			Approved:   true,
			LoginLink:  "https://app.classterra.com/login",
		})
		require.NoError(t, err)
		assert.Contains(t, html, "approved")
		assert.Contains(t, html, `href="https://app.classterra.com/login"`)
	})

	t.Run("rejected with reason", func(t *testing.T) {
		html, err := ExecuteHTMLTemplateForAccessRequestReviewedEmail(AccessRequestReviewedEmailTemplate{
			FirstName:       "Jane",
			TenantName:      "Springfield Elementary",
			Approved:        false,
			RejectionReason: "We could not verify your employment.",
		})
		require.NoError(t, err)
		assert.Contains(t, html, "rejected")
		assert.Contains(t, html, "We could not verify your employment.")
	})
}

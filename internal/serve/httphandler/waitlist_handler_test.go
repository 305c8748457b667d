package httphandler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/classterra/school-platform-backend/internal/data"
	"github.com/classterra/school-platform-backend/internal/services"
)

func waitlistRouter(handler WaitlistHandler) *chi.Mux {
	r := chi.NewRouter()
	r.Post("/waitlist", handler.Subscribe)
	r.Delete("/waitlist/{email}", handler.Unsubscribe)
	r.Get("/waitlist", handler.GetSubscribers)
	return r
}

func Test_WaitlistHandler_Subscribe(t *testing.T) {
	t.Run("subscribes with attribution fields", func(t *testing.T) {
		waitlistServiceMock := &services.WaitlistServiceMock{}
		waitlistServiceMock.
			On("Subscribe", mock.Anything, mock.MatchedBy(func(insert data.WaitlistInsert) bool {
				return insert.Email == "parent@example.com" &&
					insert.Source != nil && *insert.Source == "landing-page" &&
					insert.UTMCampaign != nil && *insert.UTMCampaign == "fall-launch"
			})).
			Return(&data.WaitlistSubscriber{ID: "subscriber-id", Email: "parent@example.com"}, nil).
			Once()
		r := waitlistRouter(WaitlistHandler{WaitlistService: waitlistServiceMock})

		body := `{"email": "parent@example.com", "source": "landing-page", "utm_campaign": "fall-launch"}`
		req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusCreated, rr.Code)
		assert.Contains(t, rr.Body.String(), `"email":"parent@example.com"`)
		waitlistServiceMock.AssertExpectations(t)
	})

	t.Run("invalid email is rejected", func(t *testing.T) {
		r := waitlistRouter(WaitlistHandler{WaitlistService: &services.WaitlistServiceMock{}})

		body := `{"email": "not-an-email"}`
		req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("duplicate subscription returns 409", func(t *testing.T) {
		waitlistServiceMock := &services.WaitlistServiceMock{}
		waitlistServiceMock.
			On("Subscribe", mock.Anything, mock.Anything).
			Return(nil, services.ErrAlreadyOnWaitlist).
			Once()
		r := waitlistRouter(WaitlistHandler{WaitlistService: waitlistServiceMock})

		body := `{"email": "parent@example.com"}`
		req := httptest.NewRequest(http.MethodPost, "/waitlist", strings.NewReader(body))
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusConflict, rr.Code)
		assert.JSONEq(t, `{"error": "This email is already on the waitlist."}`, rr.Body.String())
	})
}

func Test_WaitlistHandler_Unsubscribe(t *testing.T) {
	t.Run("unsubscribes an existing email", func(t *testing.T) {
		waitlistServiceMock := &services.WaitlistServiceMock{}
		waitlistServiceMock.
			On("Unsubscribe", mock.Anything, "parent@example.com").
			Return(&data.WaitlistSubscriber{ID: "subscriber-id", Email: "parent@example.com", Status: data.UnsubscribedWaitlistStatus}, nil).
			Once()
		r := waitlistRouter(WaitlistHandler{WaitlistService: waitlistServiceMock})

		req := httptest.NewRequest(http.MethodDelete, "/waitlist/parent@example.com", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		require.Equal(t, http.StatusOK, rr.Code)
		waitlistServiceMock.AssertExpectations(t)
	})

	t.Run("unknown email returns 404", func(t *testing.T) {
		waitlistServiceMock := &services.WaitlistServiceMock{}
		waitlistServiceMock.
			On("Unsubscribe", mock.Anything, "ghost@example.com").
			Return(nil, data.ErrRecordNotFound).
			Once()
		r := waitlistRouter(WaitlistHandler{WaitlistService: waitlistServiceMock})

		req := httptest.NewRequest(http.MethodDelete, "/waitlist/ghost@example.com", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.JSONEq(t, `{"error": "Email is not on the waitlist."}`, rr.Body.String())
	})

	t.Run("malformed email returns 400", func(t *testing.T) {
		r := waitlistRouter(WaitlistHandler{WaitlistService: &services.WaitlistServiceMock{}})

		req := httptest.NewRequest(http.MethodDelete, "/waitlist/not-an-email", nil)
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.JSONEq(t, `{"error": "Invalid email address."}`, rr.Body.String())
	})
}

func Test_WaitlistHandler_GetSubscribers(t *testing.T) {
	waitlistServiceMock := &services.WaitlistServiceMock{}
	subscribers := []data.WaitlistSubscriber{
		{ID: "subscriber-1", Email: "a@example.com"},
		{ID: "subscriber-2", Email: "b@example.com"},
	}
	waitlistServiceMock.
		On("GetSubscribers", mock.Anything, mock.Anything).
		Return(subscribers, 2, nil).
		Once()
	r := waitlistRouter(WaitlistHandler{WaitlistService: waitlistServiceMock})

	req := httptest.NewRequest(http.MethodGet, "/waitlist", nil)
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"total":2`)
	waitlistServiceMock.AssertExpectations(t)
}

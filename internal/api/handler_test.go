package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"member-lookup/internal/models"
	"member-lookup/internal/redisclient"
	"member-lookup/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	result *models.SearchResult
	err    error
	got    *models.SearchRequest
}

func (s *stubSearcher) Search(_ context.Context, req *models.SearchRequest) (*models.SearchResult, error) {
	s.got = req
	return s.result, s.err
}

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

type stubLimiter struct {
	decision redisclient.Decision
	err      error
	calls    int
}

func (l *stubLimiter) Allow(context.Context, string, int, time.Duration) (redisclient.Decision, error) {
	l.calls++
	return l.decision, l.err
}

func newRouter(h *Handler) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	h.SetupRoutes(router)
	return router
}

func post(router *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestSearchMemberStatusMapping(t *testing.T) {
	ref := "CUST1"
	found := &models.SearchResult{
		Member:        &models.ResolvedMember{Membership: models.Membership{CustomerRef: &ref}},
		Members:       []models.ResolvedMember{{Membership: models.Membership{CustomerRef: &ref}}},
		Bills:         []models.BillWithPromotions{},
		Coupons:       []models.Coupon{},
		Points:        []models.PointBalance{},
		TierMovements: []models.TierMovement{},
	}

	tests := []struct {
		name       string
		result     *models.SearchResult
		err        error
		wantStatus int
		wantError  string
	}{
		{"found", found, nil, http.StatusOK, ""},
		{"validation", nil, service.ErrValidation, http.StatusBadRequest, "at least one field required"},
		{"not found", nil, service.ErrMemberNotFound, http.StatusNotFound, "member not found"},
		{"primary failure", nil, fmt.Errorf("failed to search memberships: %w", errors.New("connection reset")), http.StatusInternalServerError, "failed to search member"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{result: tt.result, err: tt.err}
			router := newRouter(NewHandler(searcher, stubPinger{}, RateLimit{}))

			w := post(router, "/api/v1/members/search", `{"customer_ref":"CUST1"}`)

			assert.Equal(t, tt.wantStatus, w.Code)
			body := decode(t, w)
			if tt.wantError == "" {
				member := body["member"].(map[string]interface{})
				assert.Equal(t, "CUST1", member["customer_ref"])
				assert.Equal(t, false, member["isMigratedOnly"])
				assert.Equal(t, []interface{}{}, body["bills"])
				assert.Contains(t, body, "tierMovements")
				return
			}
			assert.Equal(t, tt.wantError, body["error"])
			if tt.wantStatus == http.StatusInternalServerError {
				assert.Contains(t, body["details"], "connection reset")
			}
		})
	}
}

func TestSearchMemberLegacyPath(t *testing.T) {
	searcher := &stubSearcher{err: service.ErrMemberNotFound}
	router := newRouter(NewHandler(searcher, stubPinger{}, RateLimit{}))

	w := post(router, "/api/search-member", `{"mobile":"0800000000","name":"Somchai"}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
	require.NotNil(t, searcher.got)
	assert.Equal(t, "0800000000", searcher.got.Mobile)
	assert.Equal(t, "Somchai", searcher.got.Name)
	assert.NotEmpty(t, searcher.got.ClientIP)
}

func TestSearchMemberMalformedBody(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		details string
	}{
		{"truncated json", `{"mobile":`, "unexpected EOF"},
		{"wrong field type", `{"mobile":812345678}`, "cannot unmarshal number"},
		{"empty body", ``, "EOF"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{}
			router := newRouter(NewHandler(searcher, stubPinger{}, RateLimit{}))

			w := post(router, "/api/search-member", tt.body)

			assert.Equal(t, http.StatusInternalServerError, w.Code)
			body := decode(t, w)
			assert.Equal(t, "failed to search member", body["error"])
			assert.Contains(t, body["details"], tt.details)
			assert.Nil(t, searcher.got)
		})
	}
}

func TestRateLimit(t *testing.T) {
	t.Run("rejects over quota", func(t *testing.T) {
		limiter := &stubLimiter{decision: redisclient.Decision{Allowed: false, RetryAfter: 1500 * time.Millisecond}}
		searcher := &stubSearcher{}
		router := newRouter(NewHandler(searcher, stubPinger{}, RateLimit{Limiter: limiter, Limit: 60}))

		w := post(router, "/api/v1/members/search", `{"mobile":"0812345678"}`)

		assert.Equal(t, http.StatusTooManyRequests, w.Code)
		assert.Equal(t, "2", w.Header().Get("Retry-After"))
		assert.Nil(t, searcher.got)
	})

	t.Run("fails open on limiter error", func(t *testing.T) {
		limiter := &stubLimiter{err: errors.New("redis: connection refused")}
		searcher := &stubSearcher{err: service.ErrMemberNotFound}
		router := newRouter(NewHandler(searcher, stubPinger{}, RateLimit{Limiter: limiter, Limit: 60}))

		w := post(router, "/api/v1/members/search", `{"mobile":"0812345678"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, 1, limiter.calls)
	})

	t.Run("health is not limited", func(t *testing.T) {
		limiter := &stubLimiter{decision: redisclient.Decision{Allowed: false}}
		router := newRouter(NewHandler(&stubSearcher{}, stubPinger{}, RateLimit{Limiter: limiter, Limit: 1}))

		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Zero(t, limiter.calls)
	})
}

func TestReadiness(t *testing.T) {
	t.Run("ready", func(t *testing.T) {
		router := newRouter(NewHandler(&stubSearcher{}, stubPinger{}, RateLimit{}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "ready", decode(t, w)["status"])
	})

	t.Run("database down", func(t *testing.T) {
		router := newRouter(NewHandler(&stubSearcher{}, stubPinger{err: errors.New("dial tcp: refused")}, RateLimit{}))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ready", nil))

		assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	})
}

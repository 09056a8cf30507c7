// internal/api/handler/respond_test.go
package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"communityledger/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondWithError_StatusMapping(t *testing.T) {
	cases := []struct {
		err  error
		code int
	}{
		{util.ErrInvalidInput, http.StatusBadRequest},
		{util.ErrInvalidAmount, http.StatusBadRequest},
		{fmt.Errorf("wrapped: %w", util.ErrInvalidAmount), http.StatusBadRequest},
		{util.ErrNotFound, http.StatusNotFound},
		{util.ErrWalletNotFound, http.StatusNotFound},
		{util.ErrInsufficientFunds, http.StatusPaymentRequired},
		{util.ErrUnauthorized, http.StatusUnauthorized},
		{util.ErrForbidden, http.StatusForbidden},
		{util.ErrCheckoutInFlight, http.StatusConflict},
		{util.ErrInvalidStatus, http.StatusConflict},
		{util.ErrWalletFrozen, http.StatusConflict},
		{util.ErrUpstreamUnavailable, http.StatusBadGateway},
		{fmt.Errorf("something unexpected"), http.StatusInternalServerError},
	}

	logger := testLogger()
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		respondWithError(logger, rr, tc.err)
		assert.Equal(t, tc.code, rr.Code, "error %v", tc.err)
		assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	}
}

func TestActorFromRequest(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-User-ID", "42")
	actorID, err := actorFromRequest(req)
	require.NoError(t, err)
	assert.Equal(t, int64(42), actorID)

	for _, raw := range []string{"", "abc", "0", "-5"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if raw != "" {
			req.Header.Set("X-User-ID", raw)
		}
		_, err := actorFromRequest(req)
		assert.ErrorIs(t, err, util.ErrUnauthorized, "header %q", raw)
	}
}

package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/mcdev12/survivor/go/internal/apperrors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestErrorMapsDomainErrors(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, "/leagues/l1/requests/u2/accept", nil)

	Error(rec, req, apperrors.Because(apperrors.ErrLeagueFull, "League has reached maximum capacity of 2 participants"))

	assert.Equal(t, http.StatusConflict, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "League has reached maximum capacity of 2 participants", body["message"])
	assert.Equal(t, "CONFLICT", body["code"])
}

func TestDecode(t *testing.T) {
	var dst struct {
		LeagueID string `json:"leagueId"`
	}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"leagueId":"l1"}`))
	require.NoError(t, Decode(req, &dst))
	assert.Equal(t, "l1", dst.LeagueID)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(``))
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(Decode(req, &dst)))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"leagueId":`))
	assert.Equal(t, apperrors.CodeValidation, apperrors.CodeOf(Decode(req, &dst)))
}

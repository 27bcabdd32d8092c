package httpx

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"voyago/internal/pkg/apperr"

	pkgerrors "github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{"validation", apperr.New(apperr.KindValidation, apperr.CodeValidation, "bad input"),
			http.StatusBadRequest, apperr.CodeValidation},
		{"not found", apperr.New(apperr.KindNotFound, apperr.CodeNotFound, "flight 1 not found"),
			http.StatusNotFound, apperr.CodeNotFound},
		{"business rejection", apperr.New(apperr.KindBusinessRejection, apperr.CodeInsufficientCapacity, "full"),
			http.StatusConflict, apperr.CodeInsufficientCapacity},
		{"state conflict", apperr.New(apperr.KindStateConflict, apperr.CodeStateConflict, "already cancelled"),
			http.StatusConflict, apperr.CodeStateConflict},
		{"upstream unavailable", apperr.New(apperr.KindUpstreamUnavailable, apperr.CodeUpstreamUnavailable, "down"),
			http.StatusServiceUnavailable, apperr.CodeUpstreamUnavailable},
		{"inconsistency", apperr.New(apperr.KindInconsistency, apperr.CodeCapacityOverflow, "overflow"),
			http.StatusInternalServerError, apperr.CodeCapacityOverflow},
		{"plain error", pkgerrors.New("boom"),
			http.StatusInternalServerError, apperr.CodeInconsistency},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			WriteError(rec, tc.err)

			assert.Equal(t, tc.wantStatus, rec.Code)
			assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

			var body ErrorBody
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Equal(t, tc.wantCode, body.Code)
		})
	}
}

func TestWriteJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteJSON(rec, http.StatusCreated, map[string]int{"remainingSeats": 6})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.JSONEq(t, `{"remainingSeats": 6}`, rec.Body.String())
}

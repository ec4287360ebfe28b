package response

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/tour-booking/internal/lib/apperr"
)

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestFail(t *testing.T) {
	tests := []struct {
		name        string
		err         error
		stack       bool
		wantCode    int
		wantStatus  string
		wantMessage string
	}{
		{
			name:        "operational client error",
			err:         apperr.NotFound("tour"),
			wantCode:    http.StatusNotFound,
			wantStatus:  StatusFail,
			wantMessage: "No tour found with that ID",
		},
		{
			name:        "wrapped operational error",
			err:         errors.Join(errors.New("context"), apperr.New(apperr.KindForbidden, "nope")),
			wantCode:    http.StatusForbidden,
			wantStatus:  StatusFail,
			wantMessage: "nope",
		},
		{
			name:        "operational server error",
			err:         apperr.New(apperr.KindDeliveryFailed, "There was an error sending the email. Try again later!"),
			wantCode:    http.StatusInternalServerError,
			wantStatus:  StatusError,
			wantMessage: "There was an error sending the email. Try again later!",
		},
		{
			name:        "unknown error is hidden",
			err:         errors.New("connection refused"),
			wantCode:    http.StatusInternalServerError,
			wantStatus:  StatusError,
			wantMessage: MsgInternal,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			rec := httptest.NewRecorder()

			Fail(rec, req, newNoopLogger(), tt.err)

			assert.Equal(t, tt.wantCode, rec.Code)
			body := decode(t, rec)
			assert.Equal(t, tt.wantStatus, body["status"])
			assert.Equal(t, tt.wantMessage, body["message"])
			assert.NotContains(t, body, "stack")
		})
	}
}

func TestFail_StackOutsideProduction(t *testing.T) {
	h := WithStack(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		Fail(w, r, newNoopLogger(), errors.New("connection refused"))
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	body := decode(t, rec)
	assert.Equal(t, MsgInternal, body["message"])
	assert.Equal(t, "connection refused", body["stack"])
}

func TestFail_ValidationFields(t *testing.T) {
	rec := httptest.NewRecorder()
	err := apperr.Validation([]apperr.FieldError{{Field: "name", Message: "A tour must have a name"}})

	Fail(rec, httptest.NewRequest(http.MethodPost, "/", nil), newNoopLogger(), err)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := decode(t, rec)
	assert.Contains(t, body["message"], "A tour must have a name")
	require.Len(t, body["errors"], 1)
}

func TestList(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, httptest.NewRequest(http.MethodGet, "/", nil), http.StatusOK, List("tour", []string{}, 0))

	body := decode(t, rec)
	assert.Equal(t, StatusSuccess, body["status"])
	assert.Equal(t, float64(0), body["results"])
	assert.Equal(t, map[string]any{"tour": []any{}}, body["data"])
}

func TestDecodeJSON(t *testing.T) {
	var v struct {
		Name string `json:"name"`
	}

	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"x"}`))
	require.NoError(t, DecodeJSON(req, &v))
	assert.Equal(t, "x", v.Name)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{`))
	err := DecodeJSON(req, &v)
	assert.Equal(t, apperr.KindBadRequest, apperr.KindOf(err))

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"`+strings.Repeat("a", 100)+`"}`))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	err = DecodeJSON(req, &v)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, "Request body is too large", e.Message)
}

func TestReadBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(`{"name":"x"}`))
	body, err := ReadBody(req)
	require.NoError(t, err)
	assert.Equal(t, `{"name":"x"}`, string(body))

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, "/", strings.NewReader(strings.Repeat("a", 100)))
	req.Body = http.MaxBytesReader(rec, req.Body, 16)
	_, err = ReadBody(req)
	e, ok := apperr.As(err)
	require.True(t, ok)
	assert.Equal(t, apperr.KindBadRequest, e.Kind)
	assert.Equal(t, MsgBodyTooLarge, e.Message)
}

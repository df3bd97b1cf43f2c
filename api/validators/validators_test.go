package validators

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/phoolcraft/phool-backend/pkg/errors"
)

type loginBody struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

func TestDecodeJSONBody(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.pk","password":"x"}`))
	var body loginBody
	require.NoError(t, DecodeJSONBody(r, &body))
	assert.Equal(t, "a@b.pk", body.Email)
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"a@b.pk","password":"x","admin":true}`))
	var body loginBody
	err := DecodeJSONBody(r, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"email":"nope"}`))
	var body loginBody
	err := DecodeJSONBody(r, &body)
	require.Error(t, err)

	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be a valid email", details["email"])
	assert.Equal(t, "is required", details["password"])
}

func TestDecodeJSONBodyEmpty(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(""))
	var body loginBody
	err := DecodeJSONBody(r, &body)
	require.Error(t, err)
	assert.Equal(t, "request body is required", pkgerrors.As(err).Message())
}

func TestParseQueryPrice(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?min=100&max=abc&zero=0", nil)

	v, err := ParseQueryPrice(r, "min")
	require.NoError(t, err)
	assert.EqualValues(t, 100, v)

	v, err = ParseQueryPrice(r, "max")
	require.NoError(t, err)
	assert.Zero(t, v)

	v, err = ParseQueryPrice(r, "zero")
	require.NoError(t, err)
	assert.Zero(t, v)
}

func TestParseQueryInt(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?qty=3&bad=x&big=99", nil)

	v, err := ParseQueryInt(r, "qty", 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 3, v)

	v, err = ParseQueryInt(r, "missing", 1, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, v)

	_, err = ParseQueryInt(r, "bad", 1, 1, 10)
	assert.Error(t, err)
	_, err = ParseQueryInt(r, "big", 1, 1, 10)
	assert.Error(t, err)
}

func TestParseIDParam(t *testing.T) {
	withParam := func(v string) *http.Request {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", v)
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParseIDParam(withParam("42"), "id")
	require.NoError(t, err)
	assert.EqualValues(t, 42, id)

	_, err = ParseIDParam(withParam("-1"), "id")
	assert.Error(t, err)
	_, err = ParseIDParam(withParam("abc"), "id")
	assert.Error(t, err)
}

func TestSanitizeStringCountsRunes(t *testing.T) {
	assert.Equal(t, "پھو", SanitizeString("  پھول  ", 3))
	assert.Equal(t, "abc", SanitizeString(" abc ", 0))
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	token, err = BearerToken("abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = BearerToken("Bearer ")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

package validators

import (
	"bytes"
	"context"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/bigbestmart/catalog-backend/pkg/errors"
)

func requireValidation(t *testing.T, err error) {
	t.Helper()
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
}

func TestDecodeJSONBodyRunsValidateTags(t *testing.T) {
	type payload struct {
		Names []string `json:"product_names" validate:"max=2"`
	}
	var ok payload
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_names":["a"],"extra":true}`))
	require.NoError(t, DecodeJSONBody(req, &ok))
	assert.Equal(t, []string{"a"}, ok.Names)

	var tooMany payload
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_names":["a","b","c"]}`))
	err := DecodeJSONBody(req, &tooMany)
	requireValidation(t, err)
	assert.Equal(t, map[string]string{"product_names": "must be at most 2"}, pkgerrors.As(err).Details())

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_names":`))
	requireValidation(t, DecodeJSONBody(req, &ok))
}

func TestIDFieldAcceptsNumbersAndNumericStrings(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"product_id": 12, "brand_id": "7", "blank": " ", "bad": "x", "neg": -1}`))
	body, err := DecodeJSONMap(req)
	require.NoError(t, err)

	id, present, err := IDField(body, "product_id")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, int64(12), id)

	id, present, err = IDField(body, "brand_id")
	require.NoError(t, err)
	assert.True(t, present)
	assert.Equal(t, int64(7), id)

	_, present, err = IDField(body, "blank")
	require.NoError(t, err)
	assert.False(t, present)

	_, present, err = IDField(body, "missing")
	require.NoError(t, err)
	assert.False(t, present)

	_, _, err = IDField(body, "bad")
	requireValidation(t, err)
	_, _, err = IDField(body, "neg")
	requireValidation(t, err)
}

func TestDecodeJSONMapEmptyBody(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", http.NoBody)
	body, err := DecodeJSONMap(req)
	require.NoError(t, err)
	assert.Empty(t, body)
}

func TestStringFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"brand_name":" Acme ","product_names":["Cola","Chips"],"mixed":["a",1],"obj":{}}`))
	body, err := DecodeJSONMap(req)
	require.NoError(t, err)

	name, err := StringField(body, "brand_name")
	require.NoError(t, err)
	assert.Equal(t, "Acme", name)

	names, err := StringSliceField(body, "product_names")
	require.NoError(t, err)
	assert.Equal(t, []string{"Cola", "Chips"}, names)

	_, err = StringSliceField(body, "mixed")
	requireValidation(t, err)
	_, err = StringField(body, "obj")
	requireValidation(t, err)
}

func TestParseEntityFormJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Acme","quick_pick_id":3,"link":null}`))
	req.Header.Set("Content-Type", "application/json")
	fields, file, err := ParseEntityForm(req, 1<<20)
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Equal(t, map[string]string{"name": "Acme", "quick_pick_id": "3"}, fields)

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":{"nested":true}}`))
	_, _, err = ParseEntityForm(req, 1<<20)
	requireValidation(t, err)
}

func TestParseEntityFormURLEncoded(t *testing.T) {
	form := url.Values{"name": {"Acme"}, "link": {"https://acme.test"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	fields, file, err := ParseEntityForm(req, 1<<20)
	require.NoError(t, err)
	assert.Nil(t, file)
	assert.Equal(t, "Acme", fields["name"])
	assert.Equal(t, "https://acme.test", fields["link"])
}

func multipartRequest(t *testing.T, fileField string, data []byte) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	require.NoError(t, mw.WriteField("name", "Acme"))
	part, err := mw.CreateFormFile(fileField, "logo.png")
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func TestParseEntityFormMultipart(t *testing.T) {
	for _, field := range []string{"image_url", "image"} {
		t.Run(field, func(t *testing.T) {
			fields, file, err := ParseEntityForm(multipartRequest(t, field, []byte("png-bytes")), 1<<20)
			require.NoError(t, err)
			require.NotNil(t, file)
			assert.Equal(t, "logo.png", file.Name)
			assert.Equal(t, []byte("png-bytes"), file.Data)
			assert.Equal(t, "Acme", fields["name"])
		})
	}
}

func TestParseEntityFormMultipartRejectsOversizedImage(t *testing.T) {
	_, _, err := ParseEntityForm(multipartRequest(t, "image", bytes.Repeat([]byte{1}, 2<<20)), 1<<20)
	requireValidation(t, err)
}

func TestParsePagination(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?limit=50&cursor=%20abc%20", nil)
	params, err := ParsePagination(req)
	require.NoError(t, err)
	assert.Equal(t, 50, params.Limit)
	assert.Equal(t, "abc", params.Cursor)

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	params, err = ParsePagination(req)
	require.NoError(t, err)
	assert.Zero(t, params.Limit)

	req = httptest.NewRequest(http.MethodGet, "/?limit=0", nil)
	_, err = ParsePagination(req)
	requireValidation(t, err)

	req = httptest.NewRequest(http.MethodGet, "/?limit=ten", nil)
	_, err = ParsePagination(req)
	requireValidation(t, err)
}

func TestParseIDParam(t *testing.T) {
	withParam := func(value string) *http.Request {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("id", value)
		return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	id, err := ParseIDParam(withParam("42"), "id")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"", "0", "-3", "abc"} {
		_, err := ParseIDParam(withParam(bad), "id")
		requireValidation(t, err)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abc", SanitizeString("abc", 0))
	assert.Equal(t, "héllo", SanitizeString("\thé\x00llo wörld", 5))
	assert.Equal(t, "日本", SanitizeString("日本語", 2))
}

package errors

import (
	stdErrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetadataForKnownCodes(t *testing.T) {
	tests := []struct {
		code       Code
		status     int
		publicMsg  string
		retryable  bool
		detailsOK  bool
		clientSafe bool
	}{
		{code: CodeValidation, status: http.StatusBadRequest, publicMsg: "validation failed", detailsOK: true, clientSafe: true},
		{code: CodeUnauthorized, status: http.StatusUnauthorized, publicMsg: "authentication required", clientSafe: true},
		{code: CodeForbidden, status: http.StatusForbidden, publicMsg: "access denied", clientSafe: true},
		{code: CodeNotFound, status: http.StatusNotFound, publicMsg: "resource not found", clientSafe: true},
		{code: CodeConflict, status: http.StatusConflict, publicMsg: "conflict detected", clientSafe: true},
		{code: CodeIdempotency, status: http.StatusConflict, publicMsg: "idempotency key reused", detailsOK: true, clientSafe: true},
		{code: CodeRateLimit, status: http.StatusTooManyRequests, publicMsg: "rate limit exceeded", retryable: true, clientSafe: true},
		{code: CodeUpload, status: http.StatusBadGateway, publicMsg: "image upload failed", retryable: true},
		{code: CodeInternal, status: http.StatusInternalServerError, publicMsg: "internal server error", retryable: true},
		{code: CodeDependency, status: http.StatusServiceUnavailable, publicMsg: "dependency unavailable", retryable: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			meta := MetadataFor(tt.code)
			assert.Equal(t, tt.status, meta.HTTPStatus)
			assert.Equal(t, tt.publicMsg, meta.PublicMessage)
			assert.Equal(t, tt.retryable, meta.Retryable)
			assert.Equal(t, tt.detailsOK, meta.DetailsAllowed)
			assert.Equal(t, tt.clientSafe, meta.ClientSafe)
		})
	}
}

func TestMetadataForUnknownCodeDefaultsToInternal(t *testing.T) {
	meta := MetadataFor("SOMETHING_UNKNOWN")
	assert.Equal(t, http.StatusInternalServerError, meta.HTTPStatus)
}

func TestErrorConstructors(t *testing.T) {
	base := New(CodeValidation, "missing name")
	assert.Equal(t, CodeValidation, base.Code())
	assert.Equal(t, "missing name", base.Message())
	assert.Nil(t, base.Details())

	base.WithDetails(map[string]any{"field": "name"})
	assert.NotNil(t, base.Details())

	cause := stdErrors.New("boom")
	wrapped := Wrap(CodeConflict, cause, "ctx")
	assert.True(t, stdErrors.Is(wrapped, cause))
	assert.Equal(t, CodeConflict, wrapped.Code())
	assert.Contains(t, wrapped.Error(), "boom")
}

func TestAsFindsTypedErrorThroughWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(CodeNotFound, "Brand not found."))
	typed := As(err)
	require.NotNil(t, typed)
	assert.Equal(t, CodeNotFound, typed.Code())
	assert.True(t, IsCode(err, CodeNotFound))
	assert.False(t, IsCode(err, CodeConflict))
	assert.Nil(t, As(nil))
	assert.Nil(t, As(stdErrors.New("plain")))
}

func TestDumpCollectsChain(t *testing.T) {
	err := Wrap(CodeDependency, stdErrors.New("connection refused"), "insert brand")
	dump := Dump(err)
	assert.Equal(t, CodeDependency, dump.Code)
	require.Len(t, dump.Chain, 2)
	assert.Contains(t, dump.Chain[1], "connection refused")
	assert.Empty(t, dump.PG)
	assert.Equal(t, ErrorDump{}, Dump(nil))
}

func TestDumpPostgresDiagnostics(t *testing.T) {
	pgErr := &pgconn.PgError{Code: "23505", ConstraintName: "product_brand_pkey", TableName: "product_brand"}
	err := Wrap(CodeConflict, fmt.Errorf("insert mapping: %w", pgErr), "Mapping already exists.")

	fields := Dump(err).Fields()
	assert.Equal(t, "23505", fields["pg_code"])
	assert.Equal(t, "product_brand_pkey", fields["pg_constraint"])
	assert.Equal(t, "product_brand", fields["pg_table"])
	assert.NotContains(t, fields, "pg_detail")
	assert.Equal(t, CodeConflict, fields["error_code"])

	pqFields := Dump(&pq.Error{Code: "23503", Table: "bnb_group"}).Fields()
	assert.Equal(t, "23503", pqFields["pg_code"])
	assert.Equal(t, "bnb_group", pqFields["pg_table"])
}

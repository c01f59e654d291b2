package types

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSuccessEnvelopeUsesEntityKey(t *testing.T) {
	raw, err := json.Marshal(SuccessEnvelope{Key: "brand", Data: map[string]any{"id": 1, "name": "Acme"}})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"brand":{"id":1,"name":"Acme"}}`, string(raw))
}

func TestSuccessEnvelopeOptionalMembers(t *testing.T) {
	raw, err := json.Marshal(SuccessEnvelope{
		Key:        "brands",
		Data:       []int{},
		NextCursor: "abc",
		Fields:     map[string]any{"mapped_count": 2, "success": false},
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"brands":[],"next_cursor":"abc","mapped_count":2}`, string(raw))

	raw, err = json.Marshal(SuccessEnvelope{Message: "Brand deleted successfully."})
	require.NoError(t, err)
	assert.JSONEq(t, `{"success":true,"message":"Brand deleted successfully."}`, string(raw))
}

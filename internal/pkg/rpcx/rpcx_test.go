package rpcx

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feriaviva/feria-backend/internal/pkg/apperr"
)

func TestRequestEnvelopeShape(t *testing.T) {
	data, err := json.Marshal(map[string]any{"productId": "taco", "quantity": 2})
	require.NoError(t, err)

	raw, err := json.Marshal(request{Pattern: "check_stock", Data: data})
	require.NoError(t, err)

	assert.JSONEq(t, `{"pattern":"check_stock","data":{"productId":"taco","quantity":2}}`, string(raw))
}

func TestResponseEnvelopeCarriesEitherDataOrError(t *testing.T) {
	ok, err := json.Marshal(response{Data: json.RawMessage(`{"stock":5}`)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"data":{"stock":5}}`, string(ok))

	failed, err := json.Marshal(response{Error: apperr.Unavailable("insufficient stock")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"error":{"code":"UNAVAILABLE","message":"insufficient stock"}}`, string(failed))
}

func TestErrorFromPreservesCodes(t *testing.T) {
	ae := errorFrom(apperr.NotFound("product taco not found"))
	assert.Equal(t, apperr.CodeNotFound, ae.Code)
	assert.Equal(t, "product taco not found", ae.Message)

	wrapped := errorFrom(fmt.Errorf("handler: %w", apperr.Forbidden("nope")))
	assert.Equal(t, apperr.CodeForbidden, wrapped.Code)

	plain := errorFrom(errors.New("disk full"))
	assert.Equal(t, apperr.CodeInternal, plain.Code)
	assert.Equal(t, "disk full", plain.Message)
}

func TestDomainErrorRoundTripsThroughEnvelope(t *testing.T) {
	raw, err := json.Marshal(response{Error: errorFrom(apperr.IllegalTransition("cannot move back from READY to PENDING"))})
	require.NoError(t, err)

	var decoded response
	require.NoError(t, json.Unmarshal(raw, &decoded))
	require.NotNil(t, decoded.Error)
	assert.Equal(t, apperr.CodeIllegalTransition, decoded.Error.Code)
	assert.Equal(t, apperr.CodeIllegalTransition, apperr.CodeOf(decoded.Error))
}

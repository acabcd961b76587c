package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Kind
	}{
		{"nil", nil, ""},
		{"validation", NewValidation("quantity", "must be positive"), KindValidation},
		{"wrapped transport", fmt.Errorf("list products: %w", &TransportError{Reason: ReasonNetwork}), KindTransport},
		{"format", &FormatError{Entity: "product", Field: "id"}, KindFormat},
		{"not found", &ErrNotFound{Resource: "operation", ID: "nope"}, KindNotFound},
		{"unauthorized", &ErrUnauthorized{Message: "invalid API key"}, KindUnauthorized},
		{"plain", stderrors.New("boom"), KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, KindOf(tt.err))
		})
	}
}

func TestTransportError_Temporary(t *testing.T) {
	assert.True(t, (&TransportError{Reason: ReasonNetwork}).Temporary())
	assert.True(t, (&TransportError{Reason: ReasonTimeout}).Temporary())
	assert.True(t, (&TransportError{Reason: ReasonStatus, StatusCode: 503}).Temporary())
	assert.True(t, (&TransportError{Reason: ReasonStatus, StatusCode: 429}).Temporary())
	assert.False(t, (&TransportError{Reason: ReasonStatus, StatusCode: 400}).Temporary())
	assert.False(t, (&TransportError{Reason: ReasonCancelled}).Temporary())
	assert.False(t, (&TransportError{Reason: ReasonDecode}).Temporary())
}

func TestTransportError_Message(t *testing.T) {
	err := &TransportError{Reason: ReasonStatus, Method: "GET", Path: "/cart", StatusCode: 404, Message: "cart not found"}
	assert.Equal(t, "upstream GET /cart failed with status 404: cart not found", err.Error())

	cause := stderrors.New("connection refused")
	err = &TransportError{Reason: ReasonNetwork, Method: "GET", Path: "/product", Message: cause.Error(), Err: cause}
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "(network)")
}

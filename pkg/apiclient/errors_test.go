package apiclient

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerationError_Messages(t *testing.T) {
	tests := []struct {
		name string
		err  *GenerationError
		want string
	}{
		{name: "validation", err: NewValidationError(), want: "Please enter a prompt before generating."},
		{name: "server", err: serverError(500, "Generation failed: oom"), want: "Server error: Generation failed: oom"},
		{name: "no response", err: noResponseError(errors.New("dial tcp: refused")), want: NoResponseMessage},
		{name: "request", err: requestError(errors.New("marshal payload: bad")), want: "Request failed: marshal payload: bad"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestGenerationError_Unwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := noResponseError(cause)

	assert.ErrorIs(t, err, cause)
}

func TestAsGenerationError(t *testing.T) {
	assert.Nil(t, AsGenerationError(nil))

	ge := serverError(502, "bad gateway")
	assert.Same(t, ge, AsGenerationError(ge))

	other := AsGenerationError(errors.New("weird"))
	assert.Equal(t, KindRequest, other.Kind)
	assert.Equal(t, "Request failed: weird", other.Error())
}

func TestErrorKind_String(t *testing.T) {
	assert.Equal(t, "validation", KindValidation.String())
	assert.Equal(t, "server", KindServer.String())
	assert.Equal(t, "no_response", KindNoResponse.String())
	assert.Equal(t, "request", KindRequest.String())
	assert.Equal(t, "ErrorKind(9)", ErrorKind(9).String())
}

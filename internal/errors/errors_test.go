package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewAppError_CreatesErrorWithCorrectFields(t *testing.T) {
	baseErr := errors.New("base error")
	appErr := NewAppError(baseErr, "custom message", CodeNotFound)

	assert.Equal(t, baseErr, appErr.Err)
	assert.Equal(t, "custom message", appErr.Message)
	assert.Equal(t, CodeNotFound, appErr.Code)
}

func TestAppError_Error_ReturnsMessage(t *testing.T) {
	appErr := NewAppError(errors.New("base error"), "custom message", CodeNotFound)
	assert.Equal(t, "custom message", appErr.Error())
}

func TestAppError_Error_ReturnsBaseErrorWhenNoMessage(t *testing.T) {
	appErr := NewAppError(errors.New("base error"), "", CodeNotFound)
	assert.Equal(t, "base error", appErr.Error())
}

func TestAppError_CanBeUnwrappedWithErrorsIs(t *testing.T) {
	appErr := NewAppError(ErrNotFound, "test", CodeNotFound)
	assert.True(t, errors.Is(appErr, ErrNotFound))
}

func TestNewProviderError_KeepsProviderDetail(t *testing.T) {
	cause := errors.New("550 mailbox unavailable")
	err := NewProviderError("resend", cause)

	assert.True(t, errors.Is(err, ErrProvider))
	assert.Contains(t, err.Error(), "resend")
	assert.Contains(t, err.Error(), "550 mailbox unavailable")
	assert.Equal(t, CodeProviderError, err.Code)
}

func TestWrap_WrapsErrorWithContext(t *testing.T) {
	baseErr := errors.New("base error")
	wrapped := Wrap(baseErr, "context")

	assert.Contains(t, wrapped.Error(), "context")
	assert.True(t, errors.Is(wrapped, baseErr))
}

func TestWrap_ReturnsNilForNilError(t *testing.T) {
	assert.Nil(t, Wrap(nil, "context"))
}

func TestIsNotFound(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrNotFound", ErrNotFound, true},
		{"ErrEmailNotFound", ErrEmailNotFound, true},
		{"ErrDraftNotFound", ErrDraftNotFound, true},
		{"ErrAttachmentNotFound", ErrAttachmentNotFound, true},
		{"wrapped ErrNotFound", Wrap(ErrNotFound, "context"), true},
		{"other error", errors.New("other"), false},
		{"ErrInvalidInput", ErrInvalidInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsNotFound(tt.err))
		})
	}
}

func TestIsInvalidInput(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"ErrInvalidInput", ErrInvalidInput, true},
		{"ErrInvalidFolder", ErrInvalidFolder, true},
		{"wrapped ErrInvalidInput", Wrap(ErrInvalidInput, "context"), true},
		{"other error", errors.New("other"), false},
		{"ErrNotFound", ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsInvalidInput(tt.err))
		})
	}
}

func TestIsProvider(t *testing.T) {
	assert.True(t, IsProvider(ErrProvider))
	assert.True(t, IsProvider(ErrProviderTimeout))
	assert.True(t, IsProvider(NewProviderError("resend", errors.New("boom"))))
	assert.False(t, IsProvider(ErrNotFound))
}

func TestGetErrorCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"ErrNotFound", ErrNotFound, CodeNotFound},
		{"ErrEmailNotFound", ErrEmailNotFound, CodeNotFound},
		{"ErrInvalidAction", ErrInvalidAction, CodeInvalidAction},
		{"ErrInvalidInput", ErrInvalidInput, CodeInvalidInput},
		{"ErrInvalidFolder", ErrInvalidFolder, CodeInvalidInput},
		{"ErrProvider", ErrProvider, CodeProviderError},
		{"ErrProviderTimeout", ErrProviderTimeout, CodeProviderTimeout},
		{"ErrPersistence", ErrPersistence, CodePersistenceError},
		{"ErrUnauthorized", ErrUnauthorized, CodeUnauthorized},
		{"ErrForbidden", ErrForbidden, CodeForbidden},
		{"unknown error", errors.New("unknown"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, GetErrorCode(tt.err))
		})
	}
}

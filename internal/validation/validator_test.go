package validation_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/bookshelf-server/internal/errors"
	"github.com/listenupapp/bookshelf-server/internal/validation"
)

type credentials struct {
	Username string `json:"username" validate:"notblank,max=64"`
	Password string `json:"password,omitempty" validate:"required,max=1024"`
}

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()
	assert.NoError(t, v.Validate(credentials{Username: "alice", Password: "secret"}))
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		req       credentials
		wantField string
	}{
		{"missing username", credentials{Password: "secret"}, "username"},
		{"blank username", credentials{Username: "   ", Password: "secret"}, "username"},
		{"missing password", credentials{Username: "alice"}, "password"},
		{"username too long", credentials{Username: strings.Repeat("a", 65), Password: "secret"}, "username"},
		{"password too long", credentials{Username: "alice", Password: strings.Repeat("a", 1025)}, "password"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.req)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())
			assert.Contains(t, domainErr.Message, tt.wantField)

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Contains(t, details, tt.wantField)
		})
	}
}

func TestValidator_JSONFieldNames(t *testing.T) {
	v := validation.New()

	err := v.Validate(credentials{Password: "secret"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "username")
	assert.NotContains(t, err.Error(), "Username")
}

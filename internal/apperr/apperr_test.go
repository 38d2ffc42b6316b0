package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, http.StatusOK},
		{ErrAuthenticationMissing, http.StatusUnauthorized},
		{fmt.Errorf("verify: %w", ErrAuthenticationExpired), http.StatusForbidden},
		{ErrAuthorizationDenied, http.StatusForbidden},
		{fmt.Errorf("asset 7: %w", ErrNotFound), http.StatusNotFound},
		{ErrValidation, http.StatusBadRequest},
		{ErrStorage, http.StatusInternalServerError},
		{ErrPersistence, http.StatusInternalServerError},
		{errors.New("unclassified"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Status(tt.err), "%v", tt.err)
	}
}

func TestInternal(t *testing.T) {
	assert.True(t, Internal(fmt.Errorf("insert: %w", ErrPersistence)))
	assert.False(t, Internal(ErrValidation))
}

package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"not found", NotFound("contract"), http.StatusNotFound},
		{"expired", Expired("sign link expired"), http.StatusGone},
		{"validation", Validation("name is required"), http.StatusBadRequest},
		{"conflict", Conflict("template in use"), http.StatusConflict},
		{"storage", Storage("upload failed", errors.New("boom")), http.StatusInternalServerError},
		{"plain", errors.New("boom"), http.StatusInternalServerError},
		{"wrapped", fmt.Errorf("load: %w", NotFound("sign link")), http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, HTTPStatus(tc.err))
		})
	}
}

func TestExpiredIsNotNotFound(t *testing.T) {
	err := Expired("sign link expired")
	assert.True(t, errors.Is(err, ErrExpired))
	assert.False(t, errors.Is(err, ErrNotFound))
}

func TestPublicMessageHidesInternalCause(t *testing.T) {
	err := Render("failed to generate document", errors.New("font table corrupt"))
	assert.True(t, errors.Is(err, ErrRender))
	assert.Equal(t, "Internal server error", PublicMessage(err))
	assert.Equal(t, "contract not found", PublicMessage(fmt.Errorf("x: %w", NotFound("contract"))))
}

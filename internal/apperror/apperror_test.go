package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatusByKind(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{NotFound("test %d not found", 1), http.StatusNotFound},
		{Forbidden("nope"), http.StatusForbidden},
		{Unauthenticated("login first"), http.StatusUnauthorized},
		{Conflict("email taken"), http.StatusConflict},
		{Validation("bad option"), http.StatusBadRequest},
		{Internal(errors.New("db down"), "load test"), http.StatusInternalServerError},
		{errors.New("plain"), http.StatusInternalServerError},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, HTTPStatus(c.err), c.err.Error())
	}
}

func TestKindSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("complete attempt: %w", Forbidden("not the owner"))
	assert.True(t, Is(err, KindForbidden))
	assert.Equal(t, "not the owner", PublicMessage(err))
}

func TestInternalMessageIsHidden(t *testing.T) {
	cause := errors.New("pq: relation does not exist")
	err := Internal(cause, "load attempt")
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "internal server error", PublicMessage(err))
	assert.Contains(t, err.Error(), "relation does not exist")
}

package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"recruit/tracker/app/internal/domain"

	"github.com/stretchr/testify/assert"
)

func TestMapError(t *testing.T) {
	cases := []struct {
		err  error
		http int
		code string
	}{
		{domain.NotFound("application", 3), http.StatusNotFound, "NOT_FOUND"},
		{domain.ValidationError("bad", map[string]string{"email": "invalid"}), http.StatusBadRequest, "VALIDATION"},
		{domain.Errorf(domain.ErrForbidden, "not yours"), http.StatusForbidden, "FORBIDDEN"},
		{fmt.Errorf("claim: %w", domain.Errorf(domain.ErrConflict, "taken")), http.StatusConflict, "CONFLICT"},
		{domain.Errorf(domain.ErrInvalidTransition, "terminal"), http.StatusConflict, "INVALID_TRANSITION"},
		{domain.ErrConflict, http.StatusConflict, "CONFLICT"},
		{errors.New("pq: connection reset"), http.StatusInternalServerError, "INTERNAL"},
	}
	for _, c := range cases {
		ae := mapError(c.err)
		assert.Equal(t, c.http, ae.HTTP, c.err.Error())
		assert.Equal(t, c.code, ae.Code, c.err.Error())
	}

	ae := mapError(domain.ValidationError("bad", map[string]string{"email": "invalid"}))
	assert.Equal(t, "bad", ae.Detail)
	assert.Equal(t, "invalid", ae.Fields["email"])
	assert.Equal(t, "internal error", mapError(errors.New("secret dsn")).Detail)
	assert.Equal(t, "conflict", mapError(domain.ErrConflict).Detail)
}

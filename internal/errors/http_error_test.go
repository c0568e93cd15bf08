package errors_test

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "autorenta/internal/errors"
)

func TestHTTPStatusMapping(t *testing.T) {
	cases := []struct {
		err    *apperrors.Error
		status int
	}{
		{apperrors.Validation("bad input"), http.StatusBadRequest},
		{apperrors.NotFound("missing"), http.StatusNotFound},
		{apperrors.Forbidden("nope"), http.StatusForbidden},
		{apperrors.Conflict("taken"), http.StatusConflict},
		{apperrors.Dependency("downstream", nil), http.StatusBadGateway},
	}
	for _, c := range cases {
		assert.Equal(t, c.status, c.err.HTTPStatus())
	}
}

func TestKindOfWrapped(t *testing.T) {
	err := fmt.Errorf("context: %w", apperrors.Conflict("taken"))
	assert.Equal(t, apperrors.KindConflict, apperrors.KindOf(err))
	assert.True(t, apperrors.IsKind(err, apperrors.KindConflict))
	assert.Equal(t, apperrors.Kind(0), apperrors.KindOf(fmt.Errorf("plain")))
}

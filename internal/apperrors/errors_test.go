package apperrors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSentinelMatching(t *testing.T) {
	err := PermissionDenied("not allowed")
	require.ErrorIs(t, err, ErrPermissionDenied)
	require.NotErrorIs(t, err, ErrNotFound)
	require.Equal(t, "not allowed", err.Error())
}

func TestSentinelMatchingThroughWrapping(t *testing.T) {
	err := fmt.Errorf("reviewing request: %w", Conflict("seat taken by %s", "alice"))
	require.ErrorIs(t, err, ErrConflict)
	require.Contains(t, err.Error(), "alice")
}

func TestHTTPStatus(t *testing.T) {
	require.Equal(t, http.StatusForbidden, HTTPStatus(PermissionDenied("x")))
	require.Equal(t, http.StatusNotFound, HTTPStatus(NotFound("x")))
	require.Equal(t, http.StatusBadRequest, HTTPStatus(InvalidState("x")))
	require.Equal(t, http.StatusBadRequest, HTTPStatus(Validation("x")))
	require.Equal(t, http.StatusConflict, HTTPStatus(Conflict("x")))
	require.Equal(t, http.StatusInternalServerError, HTTPStatus(errors.New("boom")))
}

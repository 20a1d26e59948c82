package apperr_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
)

func TestKindStatus(t *testing.T) {
	cases := map[apperr.Kind]int{
		apperr.KindValidation:     http.StatusBadRequest,
		apperr.KindAuth:           http.StatusUnauthorized,
		apperr.KindForbidden:      http.StatusForbidden,
		apperr.KindNotFound:       http.StatusNotFound,
		apperr.KindConflict:       http.StatusConflict,
		apperr.KindInfrastructure: http.StatusInternalServerError,
	}
	for kind, status := range cases {
		assert.Equal(t, status, kind.Status(), kind.String())
	}
}

func TestAsUnwrapsWrapped(t *testing.T) {
	err := fmt.Errorf("load order: %w", apperr.NotFound("Order not found"))

	e := apperr.As(err)
	assert.Equal(t, apperr.KindNotFound, e.Kind)
	assert.Equal(t, "Order not found", e.Message)
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	assert.False(t, apperr.Is(err, apperr.KindForbidden))
}

func TestAsClassifiesPlainErrors(t *testing.T) {
	cause := errors.New("connection reset")
	e := apperr.As(cause)

	assert.Equal(t, apperr.KindInfrastructure, e.Kind)
	assert.ErrorIs(t, e, cause)
}

// Package repositories holds the gorm-backed stores. Every method takes the
// request context and returns *apperr.Error values for not-found and
// uniqueness failures; anything else is an infrastructure error.
package repositories

import (
	"errors"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/brewhouse/pkg/apperr"
	"github.com/shashiranjanraj/brewhouse/pkg/database"
)

func translate(err error, notFound, conflict string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(notFound)
	case conflict != "" && database.IsUniqueViolation(err):
		return apperr.Conflict(conflict)
	default:
		return apperr.Infrastructure("store failure", err)
	}
}

func storeErr(err error) error { return translate(err, "", "") }

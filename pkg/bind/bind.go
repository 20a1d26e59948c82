// Package bind decodes and validates an HTTP request body into a struct.
package bind

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/shashiranjanraj/brewhouse/config"
	"github.com/shashiranjanraj/brewhouse/pkg/validate"
)

var (
	// ErrEmptyBody is returned when the request carries no JSON document.
	ErrEmptyBody = errors.New("request body is empty")
	// ErrTooLarge wraps bodies over MAX_BODY_BYTES.
	ErrTooLarge = errors.New("request body too large")
)

func maxBodyBytes() int64 {
	if n := config.Get().MaxBodyBytes; n > 0 {
		return n
	}
	return 4 << 20
}

// JSON decodes r.Body into dest and runs validation.
// Returns (errs, nil) when validation fails and (nil, err) when the body is
// empty, malformed or larger than MAX_BODY_BYTES.
func JSON(r *http.Request, dest interface{}) (errs map[string]string, err error) {
	if err := Decode(r, dest); err != nil {
		return nil, err
	}

	errs = validate.Struct(dest)
	if validate.HasErrors(errs) {
		return errs, nil
	}
	return nil, nil
}

// Decode decodes r.Body into dest without validating.
func Decode(r *http.Request, dest interface{}) error {
	if r.Body == nil {
		return ErrEmptyBody
	}
	r.Body = http.MaxBytesReader(nil, r.Body, maxBodyBytes())

	if err := json.NewDecoder(r.Body).Decode(dest); err != nil {
		var maxErr *http.MaxBytesError
		switch {
		case errors.As(err, &maxErr):
			return fmt.Errorf("%w (max %d bytes)", ErrTooLarge, maxErr.Limit)
		case errors.Is(err, io.EOF):
			return ErrEmptyBody
		}
		return fmt.Errorf("invalid JSON: %w", err)
	}
	return nil
}

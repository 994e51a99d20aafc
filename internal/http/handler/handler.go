// Package handler holds the HTTP controllers. Handlers decode, delegate to
// a service, and encode the envelope; they never touch storage directly.
package handler

import (
	"errors"

	"go-commerce-service/internal/apperror"
	"go-commerce-service/internal/service"
)

var errBadBody = apperror.BadRequest("invalid request body")

// mapStorageError turns the upload guard errors into client failures; other
// storage errors stay internal.
func mapStorageError(err error) error {
	if errors.Is(err, service.ErrFileTooBig) || errors.Is(err, service.ErrInvalidFileType) {
		return apperror.BadRequest(err.Error())
	}
	return err
}

package service

import (
	"errors"

	"impact-service/internal/repository"
)

// Service error taxonomy. Handlers translate these to HTTP statuses;
// nothing below is retried automatically.
var (
	// ErrNotFound covers both absent resources and access denial, so a
	// caller can never distinguish "exists but not yours" from "does not
	// exist".
	ErrNotFound = errors.New("not found")

	// ErrConversionFailed marks a terminal converter gateway failure
	ErrConversionFailed = errors.New("conversion failed")

	// ErrTemplateNotFound marks a missing base template, a fatal
	// precondition for PPT conversion and HTML rendering.
	ErrTemplateNotFound = errors.New("no base template available")

	// ErrValidation marks malformed input
	ErrValidation = errors.New("validation failed")

	// ErrForbidden marks a failed anti-abuse check on an anonymous
	// endpoint. Ownership violations use ErrNotFound instead.
	ErrForbidden = errors.New("forbidden")
)

// translateRepoErr maps storage lookup failures into the service taxonomy
func translateRepoErr(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

package service

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var (
	// ErrValidation marks a malformed request. The wrapped message is safe
	// to show to the caller.
	ErrValidation = errors.New("validation failed")

	ErrInvalidSize        = errors.New("size not available for product")
	ErrCommentingDisabled = errors.New("commenting is disabled for this account")
	ErrNotOrderOwner      = errors.New("order does not belong to this user")
	ErrProductNotInOrder  = errors.New("product is not part of this order")
)

func invalidf(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

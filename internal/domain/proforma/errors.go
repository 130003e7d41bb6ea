package proforma

import "errors"

var (
	ErrNotFound        = errors.New("proforma not found")
	ErrValidation      = errors.New("proforma validation failed")
	ErrInvalidDecision = errors.New("invalid decision")
)

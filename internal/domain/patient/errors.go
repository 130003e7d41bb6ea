package patient

import "errors"

var (
	ErrNotFound   = errors.New("patient not found")
	ErrMRNTaken   = errors.New("mrn already registered")
	ErrValidation = errors.New("validation failed")
)

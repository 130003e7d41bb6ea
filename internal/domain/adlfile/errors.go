package adlfile

import "errors"

var (
	ErrNotFound          = errors.New("adl file not found")
	ErrInvalidTransition = errors.New("invalid file transition")
	ErrAlreadyArchived   = errors.New("file already archived")
)

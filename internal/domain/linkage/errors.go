package linkage

import "errors"

var (
	// ErrSagaFailed is returned after a mid-saga step failed and
	// compensation has run.
	ErrSagaFailed = errors.New("linkage saga failed")
	// ErrCompensationFailed is returned when the rollback itself failed;
	// the store is inconsistent and needs manual reconciliation.
	ErrCompensationFailed = errors.New("linkage compensation failed")
)

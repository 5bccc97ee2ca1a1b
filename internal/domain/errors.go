package domain

import "errors"

// Sentinel errors for the failure taxonomy. Callers classify with errors.Is
// and wrap detail with fmt.Errorf("%w: ...").
var (
	ErrValidation        = errors.New("validation failed")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrConflict          = errors.New("conflict")
	ErrInProgress        = errors.New("request is already processing")
	ErrInsufficientFunds = errors.New("insufficient funds")
)

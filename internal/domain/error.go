package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound        = errors.New("entity not found")
	ErrAlreadyExists   = errors.New("entity already exists")
	ErrInvalidArgument = errors.New("invalid argument")
	ErrMalformedToken  = errors.New("malformed decision token")
	ErrSessionLocked   = errors.New("session is locked by another update")
	ErrAlreadyDecided  = errors.New("application already decided")
	ErrOperationFailed = errors.New("operation failed")
)

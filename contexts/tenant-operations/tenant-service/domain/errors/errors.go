package errors

import "errors"

var (
	ErrInvalidRequest = errors.New("invalid request")
	ErrNotFound       = errors.New("resource not found")
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantDeleted  = errors.New("tenant is deleted")
)

package errors

import "errors"

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrPermissionNotRegistered = errors.New("permission is not in the platform registry")
)

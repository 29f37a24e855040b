package errors

import "errors"

var (
	ErrInvalidRequest           = errors.New("invalid request")
	ErrNotFound                 = errors.New("resource not found")
	ErrPrincipalNotFound        = errors.New("principal not found")
	ErrRoleNotFound             = errors.New("role not found")
	ErrDuplicateEmail           = errors.New("email already registered")
	ErrDuplicateRole            = errors.New("role name already exists for guard")
	ErrPermissionNotRegistered  = errors.New("permission is not in the platform registry")
	ErrRoleAlreadyAssigned      = errors.New("role already assigned")
	ErrPermissionAlreadyGranted = errors.New("permission already granted")
)

package errors

import "errors"

var (
	ErrInvalidRequest     = errors.New("invalid request")
	ErrFeatureNotFound    = errors.New("feature definition not found")
	ErrDuplicateFeature   = errors.New("feature name already defined")
	ErrFeatureInactive    = errors.New("feature definition is inactive")
	ErrAssignmentNotFound = errors.New("feature assignment not found")
)

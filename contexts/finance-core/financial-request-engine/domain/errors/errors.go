package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrRequestNotFound   = errors.New("financial request not found")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrOverSettlement    = errors.New("settlement exceeds remaining amount")
	ErrPermissionDenied  = errors.New("permission denied")
	ErrRequestDeleted    = errors.New("financial request is deleted")
)

// FieldErrors collects per-field validation problems so a form caller can
// report every issue at once.
type FieldErrors map[string]string

func (e FieldErrors) Error() string {
	fields := make([]string, 0, len(e))
	for field := range e {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, e[field]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// IsValidation reports whether err carries field-level validation problems.
func IsValidation(err error) bool {
	var fieldErrors FieldErrors
	return errors.As(err, &fieldErrors)
}

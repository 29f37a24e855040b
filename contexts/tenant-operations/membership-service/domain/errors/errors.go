package errors

import "errors"

var (
	ErrInvalidRequest          = errors.New("invalid request")
	ErrNotFound                = errors.New("resource not found")
	ErrMembershipNotFound      = errors.New("membership not found")
	ErrDuplicateMembership     = errors.New("membership already exists for tenant and principal")
	ErrInvitationNotFound      = errors.New("invitation token not found")
	ErrInvitationAccepted      = errors.New("invitation already accepted")
	ErrMembershipTerminated    = errors.New("membership is terminated")
	ErrMembershipNotTerminated = errors.New("membership is not terminated")
	ErrInvalidStatus           = errors.New("invalid employment status")
	ErrPermissionNotRegistered = errors.New("permission is not in the platform registry")
)

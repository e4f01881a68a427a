package domain

import "errors"

var (
	ErrNotFound              = errors.New("not found")
	ErrValidation            = errors.New("validation failed")
	ErrConflict              = errors.New("conflict")
	ErrForbidden             = errors.New("forbidden")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrChecklistIncomplete   = errors.New("checklist is not complete")
	ErrApprovalPending       = errors.New("repairs cannot be completed in the current status")
	ErrRegistrationCompleted = errors.New("work registration is already completed")
	ErrAlreadyCompleted      = errors.New("work registration was completed concurrently")
	ErrTaskRejected          = errors.New("task has been rejected")
	ErrTaskCompleted         = errors.New("task is already completed")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrInactiveProfile       = errors.New("profile is inactive")
)

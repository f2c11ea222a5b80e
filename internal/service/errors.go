package service

import "errors"

var (
	ErrServiceNotFound  = errors.New("service type not found")
	ErrServiceInactive  = errors.New("service is not accepting new entries")
	ErrAlreadyQueued    = errors.New("user already has an active queue entry")
	ErrQueueFull        = errors.New("queue is at maximum capacity")
	ErrPriorityDisabled = errors.New("priority queuing is disabled")

	ErrInvalidTransition = errors.New("entry is not in a valid status for this action")
	ErrInvalidInput      = errors.New("invalid input")

	ErrTokenEmpty   = errors.New("admission token is empty")
	ErrTokenInvalid = errors.New("admission token is invalid")

	ErrServiceClosed = errors.New("queue service is shut down")
)

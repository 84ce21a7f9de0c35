package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidInput   = errors.New("invalid input")
	ErrForbidden      = errors.New("forbidden")
	ErrNoRooms        = errors.New("no active rooms")
	ErrRateOverlap    = errors.New("peak rate overlaps an existing rate")
	ErrNoAvailability = errors.New("not enough units available")
	ErrBadState       = errors.New("booking is not in a state that allows this")
)

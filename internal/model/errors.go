package model

import "errors"

// Common errors used across the application
var (
	// Room errors
	ErrRoomNotFound      = errors.New("room not found")
	ErrInvalidRoomUpdate = errors.New("invalid room update")

	// Group errors
	ErrGroupNotFound      = errors.New("group not found")
	ErrDuplicateGroupName = errors.New("group name already registered")

	// Registration errors
	ErrInvalidRegistration = errors.New("invalid registration")
)

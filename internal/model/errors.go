package model

import "errors"

// Common errors used across the application
var (
	// Session errors
	ErrSessionNotFound = errors.New("session not found")

	// Authorization errors
	ErrNotInSession = errors.New("participant has not joined a session")
	ErrNotHost      = errors.New("participant is not a host")
	ErrNotYourTurn  = errors.New("not this participant's turn")

	// Turn errors
	ErrAlreadyStarted    = errors.New("session has already started")
	ErrNotActive         = errors.New("session is not active")
	ErrInvalidTransition = errors.New("invalid session state transition")
	ErrInvalidTurnIndex  = errors.New("turn index out of range")

	// Card errors
	ErrCardNotFound = errors.New("card not found")
	ErrInvalidCard  = errors.New("invalid card")

	// Participant errors
	ErrInvalidParticipant = errors.New("invalid participant")
)

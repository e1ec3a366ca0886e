package service

import "errors"

// Common service errors
var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("resource not found")
)

// User service specific errors
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserAlreadyExists  = errors.New("user already exists")
)

// Player service specific errors
var (
	ErrPlayerNotFound = errors.New("player not found")
	ErrSamePlayer     = errors.New("battle references the same player twice")
)

// Rating service specific errors
var (
	ErrRecalcInProgress = errors.New("rating recalculation already in progress")
	ErrNoPlayers        = errors.New("no players to rate")
)

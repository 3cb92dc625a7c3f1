package common

import "errors"

// Business logic errors
var (
	// General errors
	ErrNotFound  = errors.New("resource not found")
	ErrForbidden = errors.New("forbidden")

	// Task errors
	ErrTaskNotFound     = errors.New("task not found")
	ErrQuestionNotFound = errors.New("question not found")
	ErrCourseNotFound   = errors.New("course not found")

	// Draft errors
	ErrDraftNotFound = errors.New("draft not found")
	ErrEmptyDraft    = errors.New("draft content is empty")

	// Integration errors
	ErrIntegrationNotFound = errors.New("integration not found")
	ErrIntegrationExists   = errors.New("integration already exists")
	ErrTokenExchange       = errors.New("token exchange failed")

	// Auth errors
	ErrUnauthorized = errors.New("unauthorized")
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("expired token")

	// Validation errors
	ErrInvalidInput = errors.New("invalid input")

	// Search errors
	ErrSearchUnavailable = errors.New("search unavailable")
)

package domain

import "errors"

// Auth errors. Credential and token failures are deliberately coarse:
// callers must not be able to distinguish "unknown user" from "wrong
// password", or "expired" from "tampered", from the error value or message.
var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Crypto primitive errors. Internal failures, logged with detail
// server-side and surfaced generically.
var (
	ErrHashingFailed      = errors.New("password hashing failed")
	ErrVerificationFailed = errors.New("password verification failed")
)

// Persistence errors.
var (
	ErrSessionCreation   = errors.New("failed to create user session")
	ErrLastLoginUpdate   = errors.New("failed to update last login")
	ErrPersistence       = errors.New("persistence error")
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("username or email already exists")
)

// Post errors.
var (
	ErrPostNotFound = errors.New("post not found")
	ErrNotAuthor    = errors.New("only the author can modify this post")
)

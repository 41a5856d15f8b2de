package service

import "errors"

var (
	ErrUsernameTaken            = errors.New("username already taken")
	ErrEmailTaken               = errors.New("email already registered")
	ErrInvalidCredentials       = errors.New("invalid username or password")
	ErrEmailNotVerified         = errors.New("email not verified")
	ErrInvalidVerificationToken = errors.New("invalid or expired verification token")
	ErrUserNotFound             = errors.New("user not found")
	ErrInvalidToken             = errors.New("invalid or expired token")

	ErrResumeNotFound    = errors.New("resume not found")
	ErrResumeFileMissing = errors.New("resume file not found on storage")
)

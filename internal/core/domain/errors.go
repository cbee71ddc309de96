package domain

import "errors"

// Login failures for a missing user and a wrong password share one sentinel
// so callers cannot distinguish which half was wrong.
var ErrInvalidCredentials = errors.New("invalid email or password")

var ErrTokenInvalid = errors.New("invalid or expired token")
var ErrForbidden = errors.New("insufficient permissions")
var ErrUserNotFound = errors.New("user not found")
var ErrEmailTaken = errors.New("email already registered")
var ErrPasswordUnchanged = errors.New("new password must differ from the current one")
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")
var ErrInvalidInput = errors.New("invalid input")
var ErrTooManyAttempts = errors.New("too many failed login attempts")

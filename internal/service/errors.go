package service

import "github.com/japama/watercontract/internal/apperr"

var (
	ErrInvalidCredentials = apperr.Authentication("INVALID_CREDENTIALS", "Invalid email or password")
	ErrNotVerified        = apperr.Authentication("EMAIL_NOT_VERIFIED", "Please verify your email before logging in")
	ErrSessionInvalid     = apperr.Authentication("SESSION_INVALID", "Invalid or expired token")
	ErrSessionRevoked     = apperr.Authentication("SESSION_REVOKED", "Session has been closed")
	ErrMissingCredentials = apperr.Validation("MISSING_CREDENTIALS", "Email and password are required")
	ErrEmailRequired      = apperr.Validation("EMAIL_REQUIRED", "Email is required")
	ErrEmptyUpdate        = apperr.Validation("EMPTY_UPDATE", "No updatable fields provided")
	ErrReadOnlyField      = apperr.Validation("READ_ONLY_FIELD", "Password, role and email cannot be changed here")
	ErrEmailTaken         = apperr.Conflict("EMAIL_TAKEN", "Email already registered")
	ErrUsernameTaken      = apperr.Conflict("USERNAME_TAKEN", "Username already taken")
	ErrAlreadyVerified    = apperr.Conflict("ALREADY_VERIFIED", "User already verified")
	ErrUserNotFound       = apperr.NotFound("USER_NOT_FOUND", "User not found")
	ErrModeDisabled       = apperr.NotFound("VERIFICATION_MODE_DISABLED", "verification mode not enabled")
	ErrResendTooSoon      = apperr.RateLimited("RESEND_COOLDOWN", "Please wait before requesting another verification email")
	ErrDelivery           = apperr.Dependency("DELIVERY_FAILURE", "Could not send verification email")
	ErrSessionStore       = apperr.Dependency("SESSION_STORE", "Session store unavailable")
	ErrForbidden          = apperr.Authorization("FORBIDDEN_ROLE", "Access denied: insufficient permissions")
)

package flightdeck

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/goliatone/go-errors"
)

// Failure taxonomy for the authentication core. Every variant is a
// tagged error value so callers branch on identity or text code, never
// on message content. All of them surface as 4xx.
var (
	// ErrMissingCredentials means the Authorization header had the
	// scheme keyword but no token segment.
	ErrMissingCredentials = errors.New("invalid token header: no credentials provided", errors.CategoryAuth).
				WithTextCode("MISSING_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	// ErrMalformedHeader means the header had more than two
	// space-separated segments.
	ErrMalformedHeader = errors.New("invalid token header: token string should not contain spaces", errors.CategoryAuth).
				WithTextCode("MALFORMED_HEADER").
				WithCode(errors.CodeUnauthorized)

	// ErrTokenBlacklisted rejects revoked tokens regardless of their
	// signature or expiry.
	ErrTokenBlacklisted = errors.New("token is blacklisted", errors.CategoryAuth).
				WithTextCode("TOKEN_BLACKLISTED").
				WithCode(errors.CodeUnauthorized)

	// ErrTokenMalformed covers invalid signatures and structurally
	// broken tokens.
	ErrTokenMalformed = errors.New("cannot decode token", errors.CategoryAuth).
				WithTextCode("TOKEN_MALFORMED").
				WithCode(errors.CodeUnauthorized)

	// ErrTokenExpired means the expiry claim is in the past.
	ErrTokenExpired = errors.New("token has expired", errors.CategoryAuth).
			WithTextCode("TOKEN_EXPIRED").
			WithCode(errors.CodeUnauthorized)

	// ErrIdentityNotFound means the decoded subject id has no matching
	// identity record.
	ErrIdentityNotFound = errors.New("no user found for token", errors.CategoryAuth).
				WithTextCode("IDENTITY_NOT_FOUND").
				WithCode(errors.CodeUnauthorized)

	// ErrIdentityDeactivated rejects tokens held by inactive accounts.
	ErrIdentityDeactivated = errors.New("user has been deactivated", errors.CategoryAuth).
				WithTextCode("IDENTITY_DEACTIVATED").
				WithCode(errors.CodeUnauthorized)

	// ErrInvalidCredentials is the generic login failure. It must not
	// leak whether the email exists.
	ErrInvalidCredentials = errors.New("a user with this email and password was not found", errors.CategoryAuth).
				WithTextCode("INVALID_CREDENTIALS").
				WithCode(errors.CodeUnauthorized)

	// ErrAlreadyLoggedOut is returned when logout presents a token that
	// is already blacklisted. Kept as a client error to preserve the
	// observed behavior; see DESIGN.md.
	ErrAlreadyLoggedOut = errors.New("you have already logged out", errors.CategoryBadInput).
				WithTextCode("ALREADY_LOGGED_OUT").
				WithCode(errors.CodeBadRequest)

	// ErrNoEmptyString rejects empty passwords before they reach bcrypt
	ErrNoEmptyString = errors.New("password must not be empty", errors.CategoryValidation).
				WithTextCode("EMPTY_PASSWORD")

	// ErrMismatchedHashAndPassword is the low-level hash comparison failure
	ErrMismatchedHashAndPassword = errors.New("password does not match", errors.CategoryAuth).
					WithTextCode("PASSWORD_MISMATCH")
)

// HasTextCode reports whether err carries the given machine code.
func HasTextCode(err error, code string) bool {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return false
	}
	return rich.TextCode == code
}

// WrapValidation converts an ozzo field-error map into a rich
// validation error that keeps the per-field messages as metadata.
func WrapValidation(verrs validation.Errors) error {
	if len(verrs) == 0 {
		return nil
	}

	fields := make(map[string]any, len(verrs))
	for field, ferr := range verrs {
		fields[field] = ferr.Error()
	}

	return errors.Wrap(verrs, errors.CategoryValidation, "registration validation failed").
		WithTextCode("VALIDATION_FAILED").
		WithMetadata(fields)
}

// FormatValidationErrorToMap flattens validation failures into a
// field-keyed message map for HTTP responses.
func FormatValidationErrorToMap(err error) map[string]string {
	out := map[string]string{}
	if err == nil {
		return out
	}

	var verrs validation.Errors
	if errors.As(err, &verrs) {
		for field, ferr := range verrs {
			out[field] = ferr.Error()
		}
		return out
	}

	var rich *errors.Error
	if errors.As(err, &rich) && len(rich.Metadata) > 0 {
		for field, msg := range rich.Metadata {
			if s, ok := msg.(string); ok {
				out[field] = s
			}
		}
		if len(out) > 0 {
			return out
		}
	}

	out["error"] = err.Error()
	return out
}

package flightdeck

import (
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// TokenContextKey is where the middleware stores the raw presented token.
const TokenContextKey = "auth_token"

// RequireAuth builds the fiber middleware that runs the Authenticate
// gate. Anonymous requests (no Authorization header, or a different
// scheme) pass through when optional is true and are rejected with 401
// otherwise. Any authentication failure terminates the request.
func (a *Auther) RequireAuth(contextKey string, optional bool) fiber.Handler {
	if contextKey == "" {
		contextKey = "user"
	}

	return func(c *fiber.Ctx) error {
		user, token, err := a.Authenticate(c.UserContext(), c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return WriteError(c, err)
		}

		if user == nil {
			if optional {
				return c.Next()
			}
			return WriteError(c, ErrMissingCredentials)
		}

		c.Locals(contextKey, user)
		c.Locals(TokenContextKey, token)

		return c.Next()
	}
}

// UserFromContext returns the authenticated identity the middleware
// stored, or nil for anonymous requests.
func UserFromContext(c *fiber.Ctx, contextKey string) *User {
	if contextKey == "" {
		contextKey = "user"
	}
	user, _ := c.Locals(contextKey).(*User)
	return user
}

// WriteError renders a failure as the JSON error envelope. Rich errors
// map through their category; plain validation errors become a
// field-keyed 400. Nothing from the auth core surfaces as a 5xx.
func WriteError(c *fiber.Ctx, err error) error {
	var verrs validation.Errors
	if errors.As(err, &verrs) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"errors": FormatValidationErrorToMap(verrs),
		})
	}

	var rich *errors.Error
	if errors.As(err, &rich) {
		body := fiber.Map{
			"error": fiber.Map{
				"message":   rich.Message,
				"text_code": rich.TextCode,
			},
		}
		if rich.Category == errors.CategoryValidation {
			body["errors"] = FormatValidationErrorToMap(rich)
		}
		return c.Status(statusForCategory(rich.Category)).JSON(body)
	}

	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": fiber.Map{"message": "internal error"},
	})
}

func statusForCategory(category errors.Category) int {
	switch category {
	case errors.CategoryAuth:
		return http.StatusUnauthorized
	case errors.CategoryAuthz:
		return http.StatusForbidden
	case errors.CategoryValidation, errors.CategoryBadInput:
		return http.StatusBadRequest
	case errors.CategoryConflict:
		return http.StatusConflict
	case errors.CategoryNotFound:
		return http.StatusNotFound
	case errors.CategoryRateLimit:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

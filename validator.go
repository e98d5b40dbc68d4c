package flightdeck

import (
	"context"
	"strings"
	"unicode"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-errors"
)

// PasswordSpecialChars is the set of symbols the strict password
// policy accepts as "special".
const PasswordSpecialChars = "!@#$%^&*()-_=+[]{};:,.<>?"

// CredentialValidator applies the registration credential policy. It
// never mutates state; it only inspects candidate values against the
// string rules and the existing identity set.
//
// The policy is the strict variant: passwords need a digit, an
// uppercase letter and a special character, and email domains must not
// be purely numeric. Field failures are aggregated into one field-keyed
// error per call. See DESIGN.md for the divergence notes.
type CredentialValidator struct {
	users Users
}

// NewCredentialValidator creates a validator backed by the given user
// directory for uniqueness probes.
func NewCredentialValidator(users Users) *CredentialValidator {
	return &CredentialValidator{users: users}
}

type credentialSet struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate runs the field string rules
func (c credentialSet) Validate() error {
	return validation.ValidateStruct(&c,
		validation.Field(&c.Username,
			validation.Required.Error("username is required"),
			validation.By(usernameNotOnlyDigits),
			validation.RuneLength(4, 128).Error("username must be between 4 and 128 characters"),
		),
		validation.Field(&c.Email,
			validation.Required.Error("email is required"),
			is.Email.Error("email is not a valid address"),
			validation.By(emailDomainNotNumeric),
		),
		validation.Field(&c.Password,
			validation.Required.Error("password is required"),
			validation.RuneLength(8, 128).Error("password must be between 8 and 128 characters"),
			validation.By(passwordComplexity),
		),
	)
}

// Validate checks the candidate credentials against the policy and the
// existing identity set. It returns a validation error carrying every
// failing field, or nil.
func (v *CredentialValidator) Validate(ctx context.Context, username, email, password string) error {
	fieldErrs := validation.Errors{}

	candidate := credentialSet{Username: username, Email: email, Password: password}
	if err := candidate.Validate(); err != nil {
		var verrs validation.Errors
		if !errors.As(err, &verrs) {
			return errors.Wrap(err, errors.CategoryInternal, "credential validation failed")
		}
		for field, ferr := range verrs {
			fieldErrs[field] = ferr
		}
	}

	// Uniqueness only makes sense for fields that passed the string rules.
	if _, seen := fieldErrs["username"]; !seen {
		taken, err := v.users.UsernameExists(ctx, username)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check username uniqueness")
		}
		if taken {
			fieldErrs["username"] = errors.New("username already exists", errors.CategoryConflict)
		}
	}

	if _, seen := fieldErrs["email"]; !seen {
		taken, err := v.users.EmailExists(ctx, email)
		if err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to check email uniqueness")
		}
		if taken {
			fieldErrs["email"] = errors.New("user with provided email exists, please login", errors.CategoryConflict)
		}
	}

	if len(fieldErrs) == 0 {
		return nil
	}

	return WrapValidation(fieldErrs)
}

func usernameNotOnlyDigits(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return nil
		}
	}
	return errors.New("username cannot be numbers only", errors.CategoryValidation)
}

// emailDomainNotNumeric enforces the strict shape: at least one letter
// in the domain label and in the TLD, so user@123.com is rejected.
func emailDomainNotNumeric(value any) error {
	s, _ := value.(string)
	if s == "" || !strings.Contains(s, "@") {
		return nil
	}

	domain := s[strings.LastIndex(s, "@")+1:]
	labels := strings.Split(domain, ".")
	if len(labels) < 2 {
		return errors.New("email domain must have a top-level label", errors.CategoryValidation)
	}

	if !containsLetter(labels[0]) {
		return errors.New("email domain cannot be numbers only", errors.CategoryValidation)
	}
	if !containsLetter(labels[len(labels)-1]) {
		return errors.New("email top-level domain cannot be numbers only", errors.CategoryValidation)
	}

	return nil
}

func passwordComplexity(value any) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}

	var hasDigit, hasUpper, hasSpecial bool
	for _, r := range s {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsUpper(r):
			hasUpper = true
		case strings.ContainsRune(PasswordSpecialChars, r):
			hasSpecial = true
		}
	}

	switch {
	case !hasDigit:
		return errors.New("password must contain at least one digit", errors.CategoryValidation)
	case !hasUpper:
		return errors.New("password must contain at least one uppercase letter", errors.CategoryValidation)
	case !hasSpecial:
		return errors.New("password must contain at least one special character", errors.CategoryValidation)
	}

	return nil
}

func containsLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}

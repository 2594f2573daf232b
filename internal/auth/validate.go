package auth

import (
	"errors"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// RegistrationInput is the raw registration form as posted by the client.
type RegistrationInput struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// LoginInput is the raw login form as posted by the client.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NormalizedRegistration is a registration that passed validation: fields
// trimmed, email lower-cased, role defaulted. The validate tags are the
// schema; fields are checked in declaration order and the first failing
// field's message is the one surfaced.
type NormalizedRegistration struct {
	Name     string `validate:"min=2,max=255"`
	Username string `validate:"min=3,max=255,username_charset"`
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"min=8,password_composition"`
	Role     string `validate:"oneof=applicant employer"`
}

// NormalizedLogin is a login that passed validation.
type NormalizedLogin struct {
	Email    string `validate:"required,email,max=255"`
	Password string `validate:"min=8"`
}

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// passwordSymbols is the fixed set of special characters a password may
// (and must, at least once) contain.
const passwordSymbols = "@$!%*?&"

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Panics only on a malformed registration, which would be a
	// programming error caught by any test run.
	if err := v.RegisterValidation("username_charset", func(fl validator.FieldLevel) bool {
		return usernameRe.MatchString(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	if err := v.RegisterValidation("password_composition", func(fl validator.FieldLevel) bool {
		return passwordComposed(fl.Field().String())
	}); err != nil {
		panic(err)
	}
	return v
}

// passwordComposed reports whether the password contains at least one
// lowercase letter, one uppercase letter, one digit, and one symbol from
// the fixed set, with no characters outside the allowed alphabet.
func passwordComposed(password string) bool {
	var lower, upper, digit, symbol bool
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z':
			lower = true
		case c >= 'A' && c <= 'Z':
			upper = true
		case c >= '0' && c <= '9':
			digit = true
		case strings.ContainsRune(passwordSymbols, c):
			symbol = true
		default:
			return false
		}
	}
	return lower && upper && digit && symbol
}

// ValidateRegistration checks raw against the registration schema and
// returns the normalized record, or the first failing rule's message.
func ValidateRegistration(raw RegistrationInput) (NormalizedRegistration, string) {
	var out NormalizedRegistration

	role := raw.Role
	if role == "" {
		// Admin accounts are seeded out of band, never self-registered.
		role = RoleApplicant
	}

	candidate := NormalizedRegistration{
		Name:     strings.TrimSpace(raw.Name),
		Username: strings.TrimSpace(raw.Username),
		Email:    strings.ToLower(strings.TrimSpace(raw.Email)),
		Password: raw.Password,
		Role:     role,
	}

	if err := validate.Struct(candidate); err != nil {
		return out, firstMessage(err)
	}
	return candidate, ""
}

// ValidateLogin checks raw against the login schema: same email rules as
// registration, password only required to meet the minimum length.
func ValidateLogin(raw LoginInput) (NormalizedLogin, string) {
	var out NormalizedLogin

	candidate := NormalizedLogin{
		Email:    strings.ToLower(strings.TrimSpace(raw.Email)),
		Password: raw.Password,
	}

	if err := validate.Struct(candidate); err != nil {
		return out, firstMessage(err)
	}
	return candidate, ""
}

// firstMessage maps the first failing field and tag to its user-facing
// message.
func firstMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return "Invalid input"
	}

	fe := verrs[0]
	switch fe.StructField() {
	case "Name":
		if fe.Tag() == "max" {
			return "Name must not exceed 255 characters"
		}
		return "Name must be at least two characters long"
	case "Username":
		switch fe.Tag() {
		case "max":
			return "Username must not exceed 255 characters"
		case "username_charset":
			return "Username can only contain letters, numbers, and underscores"
		}
		return "Username must be at least three characters long"
	case "Email":
		if fe.Tag() == "max" {
			return "Email must not exceed 255 characters"
		}
		return "Please enter a valid email address"
	case "Password":
		if fe.Tag() == "min" {
			return "Password must be at least 8 characters long"
		}
		return "Password must contain at least one uppercase letter, one lowercase letter, one number, and one special character"
	case "Role":
		return "Role must be either 'applicant' or 'employer'"
	}
	return "Invalid input"
}

package authsession

import (
	"strings"
	"unicode"

	"github.com/jrsteele09/circle-miniapp/circlemodel"
	"github.com/jrsteele09/circle-miniapp/internal/errors"
)

const minPasswordLength = 8

// ValidationError is a form problem detected before any request is sent.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return errors.ErrValidation
}

type CredentialsForm struct {
	Login    string
	Password string
}

func (f CredentialsForm) Validate() error {
	if strings.TrimSpace(f.Login) == "" || f.Password == "" {
		return &ValidationError{Field: "login", Message: "Enter your phone number or email and password"}
	}
	return nil
}

type RegisterForm struct {
	FirstName       string
	LastName        string
	PhoneNumber     string
	Email           string
	Password        string
	PasswordConfirm string
	AcceptTerms     bool
}

// Validate checks the form in a fixed order and reports the first problem.
func (f RegisterForm) Validate() error {
	switch {
	case f.Password != f.PasswordConfirm:
		return &ValidationError{Field: "password_confirm", Message: "Passwords do not match"}
	case !f.AcceptTerms:
		return &ValidationError{Field: "accept_terms", Message: "You must accept the terms of use"}
	case len(f.Password) < minPasswordLength:
		return &ValidationError{Field: "password", Message: "Password must be at least 8 characters"}
	case strings.TrimSpace(f.FirstName) == "" || strings.TrimSpace(f.LastName) == "" || strings.TrimSpace(f.PhoneNumber) == "":
		return &ValidationError{Field: "required", Message: "Please fill in all required fields"}
	}
	return nil
}

// RegisterData derives the username from the name and strips whitespace from
// the phone number.
func (f RegisterForm) RegisterData() circlemodel.RegisterData {
	return circlemodel.RegisterData{
		Username:        strings.ToLower(stripSpace(f.FirstName + f.LastName)),
		FirstName:       strings.TrimSpace(f.FirstName),
		LastName:        strings.TrimSpace(f.LastName),
		PhoneNumber:     stripSpace(f.PhoneNumber),
		Email:           strings.TrimSpace(f.Email),
		Password:        f.Password,
		PasswordConfirm: f.PasswordConfirm,
	}
}

func stripSpace(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

package domain

import (
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
)

const (
	maxNameLength     = 50
	maxBioLength      = 150
	minPasswordLength = 6
)

// FieldErrors maps field names to human-readable validation messages.
// It is surfaced per field by callers rather than as a single failure.
type FieldErrors map[string]string

var _ error = (FieldErrors)(nil)

func (fe FieldErrors) Error() string {
	fields := make([]string, 0, len(fe))
	for field := range fe {
		fields = append(fields, field)
	}

	sort.Strings(fields)

	parts := make([]string, 0, len(fe))
	for _, field := range fields {
		parts = append(parts, field+": "+fe[field])
	}

	return fmt.Sprintf("%v: %s", ErrInvalidField, strings.Join(parts, "; "))
}

// Is lets errors.Is match FieldErrors against ErrInvalidField.
func (fe FieldErrors) Is(target error) bool {
	return errors.Is(target, ErrInvalidField)
}

func (fe FieldErrors) orNil() error {
	if len(fe) == 0 {
		return nil
	}

	return fe
}

// ValidateLogin checks login form fields before submission.
func ValidateLogin(email, password string) error {
	fe := make(FieldErrors)

	checkEmail(fe, email)
	checkPassword(fe, password)

	return fe.orNil()
}

// ValidateRegistration checks signup form fields before submission.
func ValidateRegistration(username, email, phone, password string) error {
	fe := make(FieldErrors)

	checkName(fe, "username", username)
	checkEmail(fe, email)
	checkPassword(fe, password)

	if phone == "" {
		fe["phone"] = "Phone number is required"
	}

	return fe.orNil()
}

// ValidateProfile checks profile edit fields before submission.
// Social links may be empty; non-empty values must be absolute http(s) URLs.
func ValidateProfile(p Profile) error {
	fe := make(FieldErrors)

	checkName(fe, "name", p.Username)

	if len(p.Bio) > maxBioLength {
		fe["bio"] = fmt.Sprintf("Bio must be less than %d characters", maxBioLength)
	}

	links := map[string]string{
		"instagram": p.Instagram,
		"twitter":   p.Twitter,
		"facebook":  p.Facebook,
		"linkedin":  p.LinkedIn,
	}

	for field, link := range links {
		if link == "" {
			continue
		}

		if !isURL(link) {
			fe[field] = "Please enter a valid URL"
		}
	}

	return fe.orNil()
}

func checkName(fe FieldErrors, field, name string) {
	switch {
	case name == "":
		fe[field] = "Name is required"
	case len(name) > maxNameLength:
		fe[field] = fmt.Sprintf("Name must be less than %d characters", maxNameLength)
	}
}

func checkEmail(fe FieldErrors, email string) {
	at := strings.Index(email, "@")

	switch {
	case email == "":
		fe["email"] = "Email is required"
	case at <= 0 || !strings.Contains(email[at:], "."):
		fe["email"] = "Please enter a valid email"
	}
}

func checkPassword(fe FieldErrors, password string) {
	switch {
	case password == "":
		fe["password"] = "Password is required"
	case len(password) < minPasswordLength:
		fe["password"] = fmt.Sprintf("Password must be at least %d characters", minPasswordLength)
	}
}

func isURL(link string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}

	return (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

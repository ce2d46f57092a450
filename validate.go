package authgate

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
	"unicode"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9.!#$%&'*+/=?^_` + "`" + `{|}~-]+@[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?(?:\.[a-zA-Z0-9](?:[a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?)+$`)

// normalizeEmail lower-cases and trims an address. Identities are stored and
// looked up by the normalized form.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(email string) error {
	if email == "" || len(email) > 254 || !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}
	return nil
}

func (c Config) validatePassword(pw string) error {
	if len(pw) < c.Password.MinLength {
		return fmt.Errorf("%w: minimum length %d", ErrPasswordPolicy, c.Password.MinLength)
	}
	if len(pw) > 512 {
		return fmt.Errorf("%w: maximum length 512", ErrPasswordPolicy)
	}

	var hasDigit, hasLetter bool
	for _, r := range pw {
		switch {
		case unicode.IsDigit(r):
			hasDigit = true
		case unicode.IsLetter(r):
			hasLetter = true
		}
	}

	if c.Password.RequireDigit && !hasDigit {
		return fmt.Errorf("%w: at least one digit required", ErrPasswordPolicy)
	}
	if c.Password.RequireLetter && !hasLetter {
		return fmt.Errorf("%w: at least one letter required", ErrPasswordPolicy)
	}

	return nil
}

func (c Config) resolveRole(role string) (string, error) {
	if role == "" {
		return c.defaultRole(), nil
	}
	if !slices.Contains(c.Roles, role) {
		return "", ErrRoleInvalid
	}
	return role, nil
}

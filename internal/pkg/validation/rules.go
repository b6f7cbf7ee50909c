package validation

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// Validation rule patterns
var (
	// Username: letters, digits, dot, underscore and dash
	UsernamePattern = `^[a-zA-Z0-9._-]+$`

	UsernameMinLength = 3
	UsernameMaxLength = 30

	PasswordMinLength = 6
	PasswordMaxLength = 72 // bcrypt input limit

	NameMaxLength    = 100
	BioMaxLength     = 500
	ContentMaxLength = 5000
)

// CompiledPatterns caches compiled regex patterns
var CompiledPatterns = struct {
	Username *regexp.Regexp
}{
	Username: regexp.MustCompile(UsernamePattern),
}

// StringValidation describes the checks applied to a single string value
type StringValidation struct {
	Field    string
	Value    string
	MinLen   int
	MaxLen   int
	Required bool
	Pattern  *regexp.Regexp
}

// NewStringValidation creates a new string validation
func NewStringValidation(field, value string) *StringValidation {
	return &StringValidation{
		Field:    field,
		Value:    value,
		Required: true,
	}
}

// WithMinLength sets minimum length
func (v *StringValidation) WithMinLength(min int) *StringValidation {
	v.MinLen = min
	return v
}

// WithMaxLength sets maximum length
func (v *StringValidation) WithMaxLength(max int) *StringValidation {
	v.MaxLen = max
	return v
}

// WithPattern sets regex pattern
func (v *StringValidation) WithPattern(pattern *regexp.Regexp) *StringValidation {
	v.Pattern = pattern
	return v
}

// WithRequired sets if field is required
func (v *StringValidation) WithRequired(required bool) *StringValidation {
	v.Required = required
	return v
}

// Validate returns a descriptive error for the first failed rule
func (v *StringValidation) Validate() error {
	value := strings.TrimSpace(v.Value)
	if value == "" {
		if v.Required {
			return fmt.Errorf("%s is required", v.Field)
		}
		return nil
	}

	length := len([]rune(value))
	if v.MinLen > 0 && length < v.MinLen {
		return fmt.Errorf("%s must be at least %d characters", v.Field, v.MinLen)
	}
	if v.MaxLen > 0 && length > v.MaxLen {
		return fmt.Errorf("%s must be at most %d characters", v.Field, v.MaxLen)
	}
	if v.Pattern != nil && !v.Pattern.MatchString(value) {
		return fmt.Errorf("%s has an invalid format", v.Field)
	}
	return nil
}

// ValidateUsername applies the username rules
func ValidateUsername(username string) error {
	return NewStringValidation("username", username).
		WithMinLength(UsernameMinLength).
		WithMaxLength(UsernameMaxLength).
		WithPattern(CompiledPatterns.Username).
		Validate()
}

// ValidatePassword applies the password rules: length bounds and at least one letter and one digit
func ValidatePassword(password string) error {
	if len(password) < PasswordMinLength {
		return fmt.Errorf("password must be at least %d characters", PasswordMinLength)
	}
	if len(password) > PasswordMaxLength {
		return fmt.Errorf("password must be at most %d bytes", PasswordMaxLength)
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return fmt.Errorf("password must contain at least one letter and one digit")
	}
	return nil
}

// ValidateOptional checks an optional free-text field against a maximum length
func ValidateOptional(field string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return NewStringValidation(field, *value).WithRequired(false).WithMaxLength(max).Validate()
}

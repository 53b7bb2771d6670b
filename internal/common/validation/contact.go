// internal/common/validation/contact.go

// Package validation holds the contact field checks shared by the public
// submission endpoint and the pipeline workers. Structural payload
// validation is JSON-schema based and lives with each consumer.
package validation

import "regexp"

var (
	emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

	// Accepts the loose formats leads actually type: digits, spaces,
	// separators, an optional leading +.
	phonePattern = regexp.MustCompile(`^\+?[\d\s\-\(\)]{8,20}$`)
)

// ValidateEmail validates email format
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidatePhone validates basic phone number format. Empty phones are
// allowed; the questionnaire only requires an email.
func ValidatePhone(phone string) bool {
	if phone == "" {
		return true
	}
	return phonePattern.MatchString(phone)
}

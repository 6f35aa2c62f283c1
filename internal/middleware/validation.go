package middleware

import (
	"errors"
	"unicode"
	"unicode/utf8"
)

const (
	maxContentBytes = 100000
	maxNameBytes    = 256
	maxPersonaBytes = 50000
)

// ValidateMessageContent validates message content. Blank content is allowed
// here; sending it is a no-op.
func ValidateMessageContent(content string) error {
	if len(content) > maxContentBytes {
		return errors.New("content exceeds maximum length")
	}
	if !utf8.ValidString(content) {
		return errors.New("content must be valid UTF-8")
	}
	return nil
}

// ValidateName validates a conversation or persona name.
func ValidateName(name string) error {
	if len(name) > maxNameBytes {
		return errors.New("name exceeds maximum length")
	}
	if !utf8.ValidString(name) {
		return errors.New("name must be valid UTF-8")
	}
	for _, r := range name {
		if unicode.IsControl(r) {
			return errors.New("name must not contain control characters")
		}
	}
	return nil
}

// ValidatePersonaText validates a persona system prompt.
func ValidatePersonaText(text string) error {
	if len(text) > maxPersonaBytes {
		return errors.New("persona exceeds maximum length")
	}
	if !utf8.ValidString(text) {
		return errors.New("persona must be valid UTF-8")
	}
	return nil
}

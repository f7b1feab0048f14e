package processor

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// maxMessageLength bounds a single user turn. Longer input is rejected
// before any network call.
const maxMessageLength = 500

// validateMessage checks a user turn before it reaches the transport.
// Rejections come back assistant-voiced, not as system errors.
func validateMessage(text string) (string, bool) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return "Please type a message so I can help you.", false
	}
	if utf8.RuneCountInString(trimmed) > maxMessageLength {
		return fmt.Sprintf("That message is a bit long for me. Could you keep it under %d characters?", maxMessageLength), false
	}
	return "", true
}

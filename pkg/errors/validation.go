package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// ValidateID validates an identifier that is used as a storage key, such as
// a workflow id. It rejects ids that could escape a key namespace or a
// storage directory.
//
// The validation rules are intentionally conservative:
//   - No empty ids
//   - Maximum length of 128 characters
//   - No control characters or whitespace
//   - No path separators or traversal sequences
func ValidateID(id string) error {
	if id == "" {
		return New(ErrCodeInvalidID, "id cannot be empty")
	}

	if len(id) > 128 {
		return New(ErrCodeInvalidID, "id too long (max 128 characters)")
	}

	for _, r := range id {
		if unicode.IsControl(r) || unicode.IsSpace(r) {
			return New(ErrCodeInvalidID, "id contains invalid characters")
		}
	}

	dangerousPatterns := []string{
		"..", // Parent directory
		"/",  // Path separator
		"\\", // Backslash (Windows path)
	}

	for _, pattern := range dangerousPatterns {
		if strings.Contains(id, pattern) {
			return New(ErrCodeInvalidID, "id contains invalid characters: %q", pattern)
		}
	}

	return nil
}

// objectIDRegex matches the 24 hex digit ids used by the document catalog.
var objectIDRegex = regexp.MustCompile(`^[0-9a-fA-F]{24}$`)

// ValidateObjectID validates a catalog id in document-store form.
func ValidateObjectID(id string) error {
	if !objectIDRegex.MatchString(id) {
		return New(ErrCodeInvalidID, "invalid object id: %q", id)
	}
	return nil
}

package errors

import (
	"regexp"
	"strings"
	"unicode"
)

// maxIdentifierLength bounds resource, task and batch identifiers.
const maxIdentifierLength = 128

// ValidateIdentifier validates a resource, task or batch identifier.
// It performs structural checks only; uniqueness is the caller's concern.
//
// The validation rules:
//   - No empty identifiers
//   - No control characters
//   - No leading or trailing whitespace
//   - Maximum length of 128 characters
func ValidateIdentifier(kind, id string) error {
	if id == "" {
		return New(ErrCodeInvalidInput, "%s id cannot be empty", kind)
	}

	if len(id) > maxIdentifierLength {
		return New(ErrCodeInvalidInput, "%s id too long (max %d characters)", kind, maxIdentifierLength)
	}

	for _, r := range id {
		if unicode.IsControl(r) {
			return New(ErrCodeInvalidInput, "%s id contains invalid control characters", kind)
		}
	}

	if strings.TrimSpace(id) != id {
		return New(ErrCodeInvalidInput, "%s id %q has surrounding whitespace", kind, id)
	}

	return nil
}

// hexColorRegex matches #rgb, #rrggbb and #rrggbbaa colors.
var hexColorRegex = regexp.MustCompile(`^#([0-9a-fA-F]{3}|[0-9a-fA-F]{6}|[0-9a-fA-F]{8})$`)

// cssNameRegex matches plain CSS color keywords such as "steelblue".
var cssNameRegex = regexp.MustCompile(`^[a-zA-Z]{3,20}$`)

// ValidateColor validates an optional bar color.
// An empty color is valid and means "use the batch or renderer default".
func ValidateColor(color string) error {
	if color == "" {
		return nil
	}
	if hexColorRegex.MatchString(color) || cssNameRegex.MatchString(color) {
		return nil
	}
	return New(ErrCodeInvalidInput, "invalid color %q (want #rgb, #rrggbb, #rrggbbaa or a CSS color name)", color)
}

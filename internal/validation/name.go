package validation

import (
	"regexp"
	"strings"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidateName validates goal and activity names
func ValidateName(field, name string) error {
	trimmed := strings.TrimSpace(name)

	if trimmed == "" {
		return invalid(field, "%s is required", field)
	}

	if len(trimmed) > 200 {
		return invalid(field, "%s is too long (max 200 characters)", field)
	}

	return nil
}

// ValidateSlug validates url-safe identifiers such as "morning-walk"
func ValidateSlug(field, slug string) error {
	if slug == "" {
		return invalid(field, "%s is required", field)
	}

	if len(slug) > 120 {
		return invalid(field, "%s is too long (max 120 characters)", field)
	}

	if !slugPattern.MatchString(slug) {
		return invalid(field, "%s may only contain lowercase letters, digits and dashes", field)
	}

	return nil
}

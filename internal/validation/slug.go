package validation

import (
	"errors"
	"regexp"
)

const maxSlugLength = 200

var slugPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N}._~-]*$`)

// ValidateSlug checks a post uid or page slug taken from a URL path before it
// reaches the content API or the snapshot store.
func ValidateSlug(slug string) error {
	if slug == "" {
		return errors.New("slug is required")
	}

	if len(slug) > maxSlugLength {
		return errors.New("slug is too long (max 200 characters)")
	}

	if !slugPattern.MatchString(slug) {
		return errors.New("slug contains invalid characters")
	}

	return nil
}

package validation

import (
	"errors"
	"net/url"
)

// ValidateEvidenceURL accepts an empty value or an absolute http(s) URL.
func ValidateEvidenceURL(raw string) error {
	if raw == "" {
		return nil
	}

	if len(raw) > 2048 {
		return errors.New("evidence url is too long (max 2048 characters)")
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return errors.New("evidence url must be an absolute http(s) url")
	}

	return nil
}

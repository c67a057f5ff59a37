package feed

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrSourceNotAllowed marks a URL whose host is outside the allow-list.
// Validation failures are terminal and must never be retried.
var ErrSourceNotAllowed = errors.New("source host is not allow-listed")

// Validator rejects feed URLs whose host is not an allow-listed domain or a
// subdomain of one. It runs before any network call.
type Validator struct {
	allowedDomains []string
}

func NewValidator(allowedDomains []string) *Validator {
	domains := make([]string, 0, len(allowedDomains))
	for _, d := range allowedDomains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			domains = append(domains, d)
		}
	}
	return &Validator{allowedDomains: domains}
}

func (v *Validator) Validate(rawURL string) error {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("%w: %q is not a valid URL", ErrSourceNotAllowed, rawURL)
	}

	host := strings.ToLower(parsed.Hostname())
	if host == "" {
		return fmt.Errorf("%w: %q has no host", ErrSourceNotAllowed, rawURL)
	}

	for _, domain := range v.allowedDomains {
		if host == domain || strings.HasSuffix(host, "."+domain) {
			return nil
		}
	}

	return fmt.Errorf("%w: %s", ErrSourceNotAllowed, host)
}

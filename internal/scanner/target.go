package scanner

import (
	"fmt"
	"net/url"
	"strings"

	sgerrors "github.com/sitegrade/sitegrade/internal/shared/errors"
)

// Target identifies the origin a scan runs against. It is built once per
// scan by NormalizeTarget and immutable thereafter.
type Target struct {
	Origin   string `json:"origin"`
	Hostname string `json:"hostname"`
	Scheme   string `json:"scheme"`
}

// NormalizeTarget validates and canonicalizes user-supplied input.
// It accepts bare hosts ("example.com"), full URLs, and URLs with paths,
// always reducing to a scheme+host origin. Pure and idempotent: feeding
// the returned origin back in yields the same Target.
func NormalizeTarget(raw string) (Target, error) {
	trimmed := strings.ToLower(strings.TrimSpace(raw))
	trimmed = strings.TrimRight(trimmed, "/")
	if trimmed == "" {
		return Target{}, sgerrors.ErrEmptyTarget
	}
	// A bare scheme ("https://") reduces to "https:" after the slash trim.
	if strings.HasSuffix(trimmed, ":") {
		return Target{}, fmt.Errorf("%w: missing host", sgerrors.ErrInvalidTarget)
	}

	// Prepend a scheme when the input looks schemeless so url.Parse does
	// not treat "example.com:8080" as scheme "example.com".
	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	parsed, err := url.Parse(trimmed)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", sgerrors.ErrInvalidTarget, err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return Target{}, fmt.Errorf("%w: unsupported scheme %q", sgerrors.ErrInvalidTarget, parsed.Scheme)
	}
	if parsed.Hostname() == "" {
		return Target{}, fmt.Errorf("%w: missing host", sgerrors.ErrInvalidTarget)
	}
	if strings.ContainsAny(parsed.Hostname(), " _") {
		return Target{}, fmt.Errorf("%w: malformed host %q", sgerrors.ErrInvalidTarget, parsed.Hostname())
	}

	return Target{
		Origin:   parsed.Scheme + "://" + parsed.Host,
		Hostname: parsed.Hostname(),
		Scheme:   parsed.Scheme,
	}, nil
}

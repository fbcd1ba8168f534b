package utils

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

/*
   Endpoint parlance (see https://www.rfc-editor.org/rfc/rfc3986.html#section-3.2):

       https://play.min.io:9000
       \___/   \_________/ \__/
         |          |        |
       scheme      host     port

   Where:
     host        = IP-literal / IPv4address / reg-name
     port        = *DIGIT
     reg-name    = *( unreserved / pct-encoded / sub-delims )

   The scheme is optional; when present it decides TLS use and overrides any
   secure flag supplied by the caller.
*/

// Endpoint represents the scheme, host and port of an S3-compatible service.
type Endpoint struct {
	secure bool
	url    *url.URL
}

// regex to test whether a raw endpoint is a bare or scheme-qualified host[:port];
// the host may be a reg-name, an IPv4 address, or a bracketed IPv6 literal
var validEndpoint = regexp.MustCompile(`^(http(s)?://)?(\[[0-9A-Fa-f:.]+\]|[A-Za-z0-9_\-.]+)(:\d+)?$`)

// NewEndpoint parses an endpoint string of the form "[http(s)://]host[:port]".
// A scheme prefix wins over the secure argument.
func NewEndpoint(raw string, secure bool) (Endpoint, error) {
	if raw == "" {
		return Endpoint{}, errors.New("endpoint is required")
	}
	if !validEndpoint.MatchString(raw) {
		return Endpoint{}, fmt.Errorf("invalid endpoint %q", raw)
	}

	switch {
	case strings.HasPrefix(raw, "https://"):
		secure = true
	case strings.HasPrefix(raw, "http://"):
		secure = false
	default:
		scheme := "http"
		if secure {
			scheme = "https"
		}
		raw = scheme + "://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Endpoint{}, fmt.Errorf("invalid endpoint: %w", err)
	}
	return Endpoint{secure: secure, url: u}, nil
}

// Secure reports whether requests to the endpoint use TLS.
func (e Endpoint) Secure() bool {
	return e.secure
}

// Scheme returns "https" or "http".
func (e Endpoint) Scheme() string {
	return e.url.Scheme
}

// Host returns the host and, when present, the port ("play.min.io:9000").
func (e Endpoint) Host() string {
	return e.url.Host
}

// Hostname returns the host portion without the port.
func (e Endpoint) Hostname() string {
	return e.url.Hostname()
}

// String returns the endpoint as a base URL without a trailing slash.
func (e Endpoint) String() string {
	return e.url.Scheme + "://" + e.url.Host
}

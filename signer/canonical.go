package signer

import (
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/kilnland/s3kit/utils"
)

// Scope binds a signature to a date, region and service so it cannot be
// replayed elsewhere.
type Scope struct {
	Region  string
	Service string
	Time    time.Time
}

// Credential returns the date/region/service/terminator scope string.
func (s Scope) Credential() string {
	return strings.Join([]string{
		s.Time.UTC().Format(ShortTimeFormat),
		s.Region,
		s.Service,
		scopeTerminator,
	}, "/")
}

// headers never included in the canonical form. They are either added after
// signing or vary per hop.
var ignoredHeaders = map[string]struct{}{
	"authorization":   {},
	"user-agent":      {},
	"x-amzn-trace-id": {},
}

// CanonicalRequest builds the normalized string representation of a request
// that SigV4 uses as signature input, plus the semicolon-joined signed-headers
// list. The host falls back to the URL host when req.Host is empty.
func CanonicalRequest(req *http.Request, payloadHash string) (creq, signedHeaders string) {
	host := req.Host
	if host == "" {
		host = req.URL.Host
	}
	canonHeaders, signedHeaders := canonicalHeaders(req.Header, host)
	creq = strings.Join([]string{
		req.Method,
		canonicalURI(req.URL),
		CanonicalQuery(req.URL.Query()),
		canonHeaders,
		signedHeaders,
		payloadHash,
	}, "\n")
	return creq, signedHeaders
}

// canonicalURI returns the percent-encoded path. S3 paths are escaped exactly
// once, so the already-escaped form is used verbatim rather than re-encoded.
func canonicalURI(u *url.URL) string {
	p := u.EscapedPath()
	if p == "" {
		return "/"
	}
	return p
}

// CanonicalQuery renders query parameters percent-encoded and sorted by
// encoded name, then by encoded value for repeated names. Names sort
// independently of their values, so a name that is a prefix of another still
// orders correctly. Canonicalizing an already-canonical query string is a
// no-op.
func CanonicalQuery(q url.Values) string {
	if len(q) == 0 {
		return ""
	}
	byName := make(map[string][]string, len(q))
	for name, values := range q {
		en := utils.EncodeValue(name)
		for _, v := range values {
			byName[en] = append(byName[en], utils.EncodeValue(v))
		}
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	pairs := make([]string, 0, len(q))
	for _, name := range names {
		values := byName[name]
		sort.Strings(values)
		for _, v := range values {
			pairs = append(pairs, name+"="+v)
		}
	}
	return strings.Join(pairs, "&")
}

// canonicalHeaders lower-cases and sorts header names, trims values and
// collapses internal whitespace runs, and comma-joins repeated headers in
// their original order. The host header is always present and always signed.
func canonicalHeaders(h http.Header, host string) (canonical, signedList string) {
	byName := map[string][]string{"host": {host}}
	for name, values := range h {
		lower := strings.ToLower(name)
		if _, skip := ignoredHeaders[lower]; skip {
			continue
		}
		if lower == "host" {
			continue
		}
		byName[lower] = append(byName[lower], values...)
	}

	names := make([]string, 0, len(byName))
	for name := range byName {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		sb.WriteString(name)
		sb.WriteByte(':')
		for i, v := range byName[name] {
			if i > 0 {
				sb.WriteByte(',')
			}
			sb.WriteString(collapseSpaces(v))
		}
		sb.WriteByte('\n')
	}
	return sb.String(), strings.Join(names, ";")
}

// collapseSpaces trims a header value and folds internal whitespace runs to a
// single space.
func collapseSpaces(v string) string {
	if !strings.ContainsAny(v, " \t") {
		return v
	}
	return strings.Join(strings.Fields(v), " ")
}

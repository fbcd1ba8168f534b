package signer

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/kilnland/s3kit/credentials"
)

// Signer produces SigV4 signatures. It carries a derived-key cache keyed by
// credential scope, so repeated signings within one day reuse the HMAC chain.
// A Signer is safe for concurrent use.
type Signer struct {
	mu   sync.RWMutex
	keys map[string][]byte
}

// New returns a ready Signer.
func New() *Signer {
	return &Signer{keys: map[string][]byte{}}
}

// Sign canonicalizes req, signs it with creds, and sets the X-Amz-Date,
// X-Amz-Security-Token (when a session token is present) and Authorization
// headers. The hex signature is returned so streaming uploads can seed their
// chunk signature chain from it.
//
// Every header already present on req is bound into the signature; adding
// headers after Sign invalidates it.
func (s *Signer) Sign(req *http.Request, creds credentials.Value, scope Scope, payloadHash string) string {
	amzDate := scope.Time.UTC().Format(TimeFormat)
	req.Header.Set(AmzDateKey, amzDate)
	if creds.SessionToken != "" {
		req.Header.Set(AmzSecurityTokenKey, creds.SessionToken)
	}

	creq, signedHeaders := CanonicalRequest(req, payloadHash)
	sts := StringToSign(creq, scope)
	signature := SignatureHex(s.Key(creds, scope), sts)

	req.Header.Set("Authorization", strings.Join([]string{
		Algorithm + " Credential=" + creds.AccessKeyID + "/" + scope.Credential(),
		"SignedHeaders=" + signedHeaders,
		"Signature=" + signature,
	}, ", "))
	return signature
}

// Presign returns a copy of req.URL carrying the signature, algorithm,
// credential, date, expiry and signed-headers list as query parameters. The
// URL is usable by any HTTP client until the expiry elapses; no headers other
// than Host are bound into the signature.
func (s *Signer) Presign(req *http.Request, creds credentials.Value, scope Scope, expires time.Duration) (*url.URL, error) {
	if err := ValidateExpiry(expires); err != nil {
		return nil, err
	}

	host := req.Host
	if host == "" {
		host = req.URL.Host
	}

	query := req.URL.Query()
	query.Set(AmzAlgorithmKey, Algorithm)
	query.Set(AmzCredentialKey, creds.AccessKeyID+"/"+scope.Credential())
	query.Set(AmzDateKey, scope.Time.UTC().Format(TimeFormat))
	query.Set(AmzExpiresKey, strconv.FormatInt(int64(expires/time.Second), 10))
	query.Set(AmzSignedHeadersKey, "host")
	if creds.SessionToken != "" {
		query.Set(AmzSecurityTokenKey, creds.SessionToken)
	}

	canonQuery := CanonicalQuery(query)
	creq := strings.Join([]string{
		req.Method,
		canonicalURI(req.URL),
		canonQuery,
		"host:" + host + "\n",
		"host",
		UnsignedPayload,
	}, "\n")
	signature := SignatureHex(s.Key(creds, scope), StringToSign(creq, scope))

	signed := *req.URL
	signed.RawQuery = canonQuery + "&" + AmzSignatureKey + "=" + signature
	return &signed, nil
}

// ValidateExpiry checks a presign lifetime against the protocol bounds.
func ValidateExpiry(expires time.Duration) error {
	if expires < MinPresignExpires || expires > MaxPresignExpires {
		return fmt.Errorf("presign expiry %v out of range [%v, %v]", expires, MinPresignExpires, MaxPresignExpires)
	}
	return nil
}

// StringToSign concatenates the algorithm identifier, timestamp, credential
// scope and hashed canonical request.
func StringToSign(canonicalRequest string, scope Scope) string {
	return strings.Join([]string{
		Algorithm,
		scope.Time.UTC().Format(TimeFormat),
		scope.Credential(),
		SHA256Hex([]byte(canonicalRequest)),
	}, "\n")
}

// SigningKey derives the per-scope signing key by chaining HMAC-SHA256 from
// the secret through date, region and service to the fixed terminator.
func SigningKey(secret string, scope Scope) []byte {
	k := hmacSHA256([]byte("AWS4"+secret), scope.Time.UTC().Format(ShortTimeFormat))
	k = hmacSHA256(k, scope.Region)
	k = hmacSHA256(k, scope.Service)
	return hmacSHA256(k, scopeTerminator)
}

// SignatureHex returns the hex HMAC-SHA256 of stringToSign under key.
func SignatureHex(key []byte, stringToSign string) string {
	return hex.EncodeToString(hmacSHA256(key, stringToSign))
}

// SHA256Hex returns the hex sha256 digest of data.
func SHA256Hex(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Key returns the cached derived signing key for the snapshot and scope,
// deriving and caching it on first use. The cache id covers a digest of the
// secret, so rotating the secret under the same access key ID yields a fresh
// key. Entries from other days are evicted so the map stays one day wide.
func (s *Signer) Key(creds credentials.Value, scope Scope) []byte {
	date := scope.Time.UTC().Format(ShortTimeFormat)
	secretDigest := SHA256Hex([]byte(creds.SecretAccessKey))[:16]
	id := strings.Join([]string{creds.AccessKeyID, secretDigest, date, scope.Region, scope.Service}, "/")

	s.mu.RLock()
	key, ok := s.keys[id]
	s.mu.RUnlock()
	if ok {
		return key
	}

	key = SigningKey(creds.SecretAccessKey, scope)
	s.mu.Lock()
	for cached := range s.keys {
		if !strings.Contains(cached, "/"+date+"/") {
			delete(s.keys, cached)
		}
	}
	s.keys[id] = key
	s.mu.Unlock()
	return key
}

func hmacSHA256(key []byte, data string) []byte {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(data))
	return mac.Sum(nil)
}

// EncodeQuery renders query parameters in canonical order using the SigV4
// reserved-character rules, suitable for use as a request's RawQuery. The
// rendered form round-trips through CanonicalQuery unchanged.
func EncodeQuery(q url.Values) string {
	return CanonicalQuery(q)
}

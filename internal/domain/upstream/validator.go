// Package upstream validates admin-supplied route targets before they are
// persisted, closing off the SSRF surface a naive reverse proxy would open.
package upstream

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// ErrorKind classifies why an upstream or path failed validation.
type ErrorKind string

const (
	ErrParseError       ErrorKind = "ParseError"
	ErrSchemeNotAllowed ErrorKind = "SchemeNotAllowed"
	ErrHostMissing      ErrorKind = "HostMissing"
	ErrHostDenied       ErrorKind = "HostDenied"
	ErrPathInvalid      ErrorKind = "PathInvalid"
)

// ValidationError reports the classified reason an upstream or path was rejected.
type ValidationError struct {
	Kind   ErrorKind
	Detail string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func newErr(kind ErrorKind, detail string) *ValidationError {
	return &ValidationError{Kind: kind, Detail: detail}
}

// deniedHostSuffixes are hostnames (compared case-insensitively) that are
// never accepted as an upstream host, whether matched exactly or as the
// suffix following a ".".
var deniedHostSuffixes = []string{
	"localhost",
	"metadata.google.internal",
}

// deniedNetworks are IP ranges an upstream host must not resolve into as a
// literal. This is a superset of a typical forward-proxy SSRF CIDR table,
// expanded to cover loopback, link-local, and all private ranges.
var deniedNetworks []*net.IPNet

func init() {
	cidrs := []string{
		"127.0.0.0/8",    // IPv4 loopback
		"10.0.0.0/8",     // RFC1918 private
		"172.16.0.0/12",  // RFC1918 private
		"192.168.0.0/16", // RFC1918 private
		"169.254.0.0/16", // IPv4 link-local (cloud metadata endpoints live here)
		"224.0.0.0/4",    // IPv4 multicast
		"::1/128",        // IPv6 loopback
		"fc00::/7",       // IPv6 unique-local (ULA)
		"fe80::/10",      // IPv6 link-local
		"ff00::/8",       // IPv6 multicast
	}
	for _, cidr := range cidrs {
		_, n, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("upstream: invalid CIDR in deniedNetworks: " + cidr)
		}
		deniedNetworks = append(deniedNetworks, n)
	}
}

// isDeniedIP reports whether ip falls in a reserved/internal range, or is
// the IPv6 unspecified address ("::").
func isDeniedIP(ip net.IP) bool {
	if ip.IsUnspecified() {
		return true
	}
	for _, n := range deniedNetworks {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

// ValidateUpstream accepts only absolute http(s) URLs whose host is neither
// a denied IP literal nor a denied hostname. See spec for the exact rules.
func ValidateUpstream(rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil || !u.IsAbs() {
		return newErr(ErrParseError, "upstream is not a parseable absolute URL")
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return newErr(ErrSchemeNotAllowed, fmt.Sprintf("scheme %q is not http or https", u.Scheme))
	}

	host := u.Hostname()
	if host == "" {
		return newErr(ErrHostMissing, "upstream URL has no host")
	}

	if ip := net.ParseIP(host); ip != nil {
		if isDeniedIP(ip) {
			return newErr(ErrHostDenied, fmt.Sprintf("host %q resolves to a disallowed address range", host))
		}
		return nil
	}

	lower := strings.ToLower(host)
	for _, denied := range deniedHostSuffixes {
		if lower == denied || strings.HasSuffix(lower, "."+denied) {
			return newErr(ErrHostDenied, fmt.Sprintf("host %q is on the deny list", host))
		}
	}

	return nil
}

// ValidatePath rejects empty strings, non-absolute paths, traversal
// sequences, and embedded NUL bytes.
func ValidatePath(path string) error {
	if path == "" {
		return newErr(ErrPathInvalid, "path must not be empty")
	}
	if !strings.HasPrefix(path, "/") {
		return newErr(ErrPathInvalid, "path must start with /")
	}
	if strings.Contains(path, "..") {
		return newErr(ErrPathInvalid, "path must not contain \"..\"")
	}
	if strings.ContainsRune(path, 0) {
		return newErr(ErrPathInvalid, "path must not contain a NUL byte")
	}
	return nil
}

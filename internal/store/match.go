package store

import (
	"net"
	"strings"
)

// DomainMatch implements the domain-match of RFC 6265, section 5.1.3: the
// request host either equals the cookie domain or is a dot-separated suffix
// of it, and suffix matching never applies to IP literals.
func DomainMatch(cookieDomain, requestHost string) bool {
	if requestHost == cookieDomain {
		return true
	}
	return strings.HasSuffix(requestHost, "."+cookieDomain) && net.ParseIP(requestHost) == nil
}

// PathMatch implements the path-match of RFC 6265, section 5.1.4.
func PathMatch(requestPath, cookiePath string) bool {
	if requestPath == cookiePath {
		return true
	}
	if !strings.HasPrefix(requestPath, cookiePath) {
		return false
	}
	return strings.HasSuffix(cookiePath, "/") || requestPath[len(cookiePath)] == '/'
}

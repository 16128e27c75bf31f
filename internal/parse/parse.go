// Package parse turns raw Set-Cookie response header text into cookie drafts.
// It implements the set-cookie-string algorithm of RFC 6265, section 5.2,
// including its relaxations: unknown attributes are skipped, broken Expires
// and Max-Age values drop the attribute rather than the cookie, and only the
// first occurrence of each attribute kind is recorded.
package parse

import (
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/UnknownOlympus/pandora/internal/cookiedate"
)

var (
	// ErrMalformedCookie reports a Set-Cookie entry without a usable
	// name-value pair.
	ErrMalformedCookie = errors.New("malformed cookie")

	// ErrNoRequestHost reports a request URI that carries no host to scope
	// the cookie to.
	ErrNoRequestHost = errors.New("request URI has no host")
)

// maxAgeRe is the exact shape a Max-Age value must have; anything else drops
// the attribute.
var maxAgeRe = regexp.MustCompile(`^-?[0-9]+$`)

// maxAgeCap keeps now.Add(seconds) from overflowing time.Duration.
const maxAgeCap = int64((1<<63 - 1) / int64(time.Second))

// Draft is a parsed Set-Cookie entry before it is resolved against the store.
// Domain is empty when no Domain attribute was accepted; Path always holds a
// usable value (the explicit attribute or the request's default path).
type Draft struct {
	Name     string
	Value    string
	Path     string
	Domain   string
	Secure   bool
	HTTPOnly bool

	HasExpires bool
	Expires    time.Time
	HasMaxAge  bool
	MaxAgeEnd  time.Time

	Created time.Time
}

// SetCookie parses one Set-Cookie entry produced by a response to reqURL.
// Structural problems (no '=', empty name, no request host) fail the entry;
// broken attribute values are dropped silently.
func SetCookie(entry string, reqURL *url.URL, now time.Time) (Draft, error) {
	if reqURL == nil || reqURL.Hostname() == "" {
		return Draft{}, ErrNoRequestHost
	}

	nameValue, attrs, _ := strings.Cut(entry, ";")
	name, value, found := strings.Cut(nameValue, "=")
	if !found {
		return Draft{}, fmt.Errorf("%w: no '=' in name-value pair", ErrMalformedCookie)
	}

	draft := Draft{
		Name:    strings.TrimSpace(name),
		Value:   strings.TrimSpace(value),
		Path:    defaultPath(reqURL.Path),
		Created: now,
	}
	if draft.Name == "" {
		return Draft{}, fmt.Errorf("%w: empty cookie name", ErrMalformedCookie)
	}

	seen := make(map[string]bool)
	for _, part := range strings.Split(attrs, ";") {
		attrName, attrValue, _ := strings.Cut(part, "=")
		attrName = strings.ToLower(strings.TrimSpace(attrName))
		attrValue = strings.TrimSpace(attrValue)

		if attrName == "" || seen[attrName] {
			continue
		}
		seen[attrName] = true

		switch attrName {
		case "expires":
			if when, err := cookiedate.Parse(attrValue); err == nil {
				draft.HasExpires = true
				draft.Expires = when
			}
		case "max-age":
			draft.HasMaxAge, draft.MaxAgeEnd = parseMaxAge(attrValue, now)
		case "domain":
			if domain := strings.TrimPrefix(attrValue, "."); domain != "" {
				draft.Domain = strings.ToLower(domain)
			}
		case "path":
			if strings.HasPrefix(attrValue, "/") {
				draft.Path = attrValue
			}
		case "secure":
			draft.Secure = true
		case "httponly":
			draft.HTTPOnly = true
		}
	}

	return draft, nil
}

// parseMaxAge resolves a Max-Age value to the moment the cookie ends.
// Non-positive ages collapse to the epoch, which cleanup treats as already
// expired.
func parseMaxAge(value string, now time.Time) (bool, time.Time) {
	if !maxAgeRe.MatchString(value) {
		return false, time.Time{}
	}
	seconds, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return false, time.Time{}
	}
	if seconds <= 0 {
		return true, time.Unix(0, 0).UTC()
	}
	if seconds > maxAgeCap {
		seconds = maxAgeCap
	}
	return true, now.Add(time.Duration(seconds) * time.Second)
}

// defaultPath computes the default cookie path of RFC 6265, section 5.1.4:
// the request path up to but not including its last '/', or "/" when that
// leaves nothing.
func defaultPath(uriPath string) string {
	if !strings.HasPrefix(uriPath, "/") {
		return "/"
	}
	if idx := strings.LastIndex(uriPath, "/"); idx > 0 {
		return uriPath[:idx]
	}
	return "/"
}

// SplitHeader splits a combined Set-Cookie header value into its entries.
// A comma is an entry separator only when what follows looks like the start
// of a new cookie-pair, meaning an '=' appears before any ';' or ','; commas
// inside an Expires date never qualify.
func SplitHeader(header string) []string {
	var entries []string
	start := 0
	for i := 0; i < len(header); i++ {
		if header[i] != ',' {
			continue
		}
		next := i + 1
		for next < len(header) && (header[next] == ' ' || header[next] == '\t') {
			next++
		}
		end := next
		for end < len(header) && header[end] != ';' && header[end] != ',' && header[end] != '=' {
			end++
		}
		if end > next && end < len(header) && header[end] == '=' {
			entries = append(entries, header[start:i])
			start = i + 1
		}
	}
	return append(entries, header[start:])
}

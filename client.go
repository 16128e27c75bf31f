package pandora

import (
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/UnknownOlympus/pandora/internal/lib/logger/sl"
)

// SetCookies implements http.CookieJar: each cookie is serialized back to its
// Set-Cookie form and ingested under the usual scoping rules. Cookies the
// grammar rejects are dropped with a debug log, matching the silent-failure
// contract of the interface.
func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	for _, cookie := range cookies {
		line := cookie.String()
		if line == "" {
			continue
		}
		if err := j.Ingest(line, u); err != nil {
			j.log.Debug("Dropped cookie from response", sl.Err(err), sl.URL(u))
		}
	}
}

// Cookies implements http.CookieJar: it returns the name-value pairs that
// apply to a request for u, in Cookie-header order.
func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()

	selected := j.store.Select(u, time.Now())
	cookies := make([]*http.Cookie, 0, len(selected))
	for _, entry := range selected {
		cookies = append(cookies, &http.Cookie{Name: entry.Name, Value: entry.Value})
	}

	return cookies
}

// NewHTTPClient initializes an HTTP client with a jar installed, so cookies
// set by responses are replayed on subsequent requests and across redirects.
func NewHTTPClient(log *slog.Logger) *http.Client {
	jar := New(log, Options{})

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, _ []*http.Request) error {
			log.Debug("Redirected to URL", "URL", req.URL)

			return nil
		},
	}
}

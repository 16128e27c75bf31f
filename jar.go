// Package pandora implements an in-memory RFC 6265 cookie jar. It consumes
// raw Set-Cookie response header text together with the request URL that
// produced it, stores cookies under domain/path scoping rules with quota
// enforcement and expiry, and reconstructs the Cookie request header for
// subsequent requests.
package pandora

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/UnknownOlympus/pandora/internal/config"
	"github.com/UnknownOlympus/pandora/internal/lib/logger/sl"
	"github.com/UnknownOlympus/pandora/internal/metrics"
	"github.com/UnknownOlympus/pandora/internal/parse"
	"github.com/UnknownOlympus/pandora/internal/store"
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ErrMissingHeader is returned by Ingest when no Set-Cookie text is given.
	ErrMissingHeader = errors.New("missing Set-Cookie header")

	// ErrMalformedCookie is returned by Ingest when an entry has no usable
	// name-value pair. Entries added before the malformed one stay added.
	ErrMalformedCookie = parse.ErrMalformedCookie

	// ErrNoRequestHost is returned when the request URL carries no host.
	ErrNoRequestHost = parse.ErrNoRequestHost
)

// Options configures a Jar. Zero values select the defaults: a 3000-cookie
// hard cap, a per-domain cap of 50, and an unexported metrics registry.
type Options struct {
	MaxCookies   int
	MaxPerDomain int
	Registerer   prometheus.Registerer
}

// Jar is the orchestrator over the cookie store. A single mutex guards every
// public operation, so a Jar is safe for concurrent use.
type Jar struct {
	log     *slog.Logger
	metrics *metrics.Metrics

	mu    sync.Mutex
	store *store.Store
}

// New creates an empty cookie jar.
func New(log *slog.Logger, opts Options) *Jar {
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	mts := metrics.NewMetrics(reg)

	return &Jar{
		log:     log,
		metrics: mts,
		store:   store.New(log, mts, opts.MaxCookies, opts.MaxPerDomain),
	}
}

// MustNewFromEnv creates a jar configured through internal/config: the YAML
// file named by CONFIG_PATH plus PANDORA_* environment overrides. It panics
// the way config.MustLoad does when the file is unreadable.
func MustNewFromEnv(log *slog.Logger, reg prometheus.Registerer) *Jar {
	cfg := config.MustLoad()

	return New(log, Options{
		MaxCookies:   cfg.Jar.MaxCookies,
		MaxPerDomain: cfg.Jar.MaxPerDomain,
		Registerer:   reg,
	})
}

// Ingest parses a combined Set-Cookie header value received from a response
// to reqURL and stores every cookie it yields. The header is split on
// top-level commas only; commas inside an Expires date do not separate
// entries. Ingest fails fast on the first malformed entry, leaving the
// entries parsed before it in the store.
func (j *Jar) Ingest(header string, reqURL *url.URL) error {
	j.mu.Lock()
	defer j.mu.Unlock()

	if strings.TrimSpace(header) == "" {
		j.metrics.IngestErrors.WithLabelValues("missing_header").Inc()
		return ErrMissingHeader
	}
	if reqURL == nil || reqURL.Hostname() == "" {
		j.metrics.IngestErrors.WithLabelValues("no_request_host").Inc()
		return ErrNoRequestHost
	}

	now := time.Now()
	for _, entry := range parse.SplitHeader(header) {
		draft, err := parse.SetCookie(entry, reqURL, now)
		if err != nil {
			j.metrics.IngestErrors.WithLabelValues("malformed_cookie").Inc()
			j.log.Debug("Rejected Set-Cookie entry", sl.Err(err), sl.URL(reqURL))

			return fmt.Errorf("failed to parse Set-Cookie entry: %w", err)
		}

		j.store.Add(draft, reqURL, now)
	}

	j.log.Debug("Ingested Set-Cookie header", sl.URL(reqURL), "held", j.store.Len())

	return nil
}

// EndSession removes every non-persistent cookie and returns the number of
// cookies left. The jar stays usable afterwards.
func (j *Jar) EndSession() int {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.store.EndSession(time.Now())
}

// CookieHeader reconstructs the Cookie request header value for a request to
// reqURL: matching cookies joined as "name=value; name=value", longest path
// first, older cookies first among equal path lengths. Selection bumps each
// matched cookie's last-access time. An empty string means no cookie applies.
func (j *Jar) CookieHeader(reqURL *url.URL) string {
	j.mu.Lock()
	defer j.mu.Unlock()

	return j.cookieHeader(reqURL, time.Now())
}

// Header wraps CookieHeader into a single-key mapping ready to merge into
// outgoing request headers. The Cookie key is absent when nothing matches.
func (j *Jar) Header(reqURL *url.URL) http.Header {
	header := make(http.Header)
	if value := j.CookieHeader(reqURL); value != "" {
		header.Set("Cookie", value)
	}

	return header
}

// cookieHeader needs j.mu held.
func (j *Jar) cookieHeader(reqURL *url.URL, now time.Time) string {
	selected := j.store.Select(reqURL, now)
	if len(selected) == 0 {
		return ""
	}

	var builder strings.Builder
	for i, entry := range selected {
		if i > 0 {
			builder.WriteString("; ")
		}
		builder.WriteString(entry.Name)
		builder.WriteByte('=')
		builder.WriteString(entry.Value)
	}

	j.metrics.HeadersBuilt.Inc()

	return builder.String()
}

// Package store holds cookies under the scoping and quota rules of RFC 6265.
// The store is not safe for concurrent use; the jar serializes access to it.
package store

import (
	"log/slog"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/UnknownOlympus/pandora/internal/metrics"
	"github.com/UnknownOlympus/pandora/internal/parse"
)

// Default quota knobs, applied when the caller passes non-positive values.
const (
	DefaultMaxCookies   = 3000
	DefaultMaxPerDomain = 50
)

// Store is the bounded collection of cookie entries, keyed by the
// (name, domain, path) identity tuple.
type Store struct {
	log     *slog.Logger
	metrics *metrics.Metrics

	maxCookies   int // hard cap on the total number of entries
	maxPerDomain int // soft per-domain cap, enforced once the hard cap is exceeded

	entries map[id]*Entry
}

// New creates an empty store with the given quota knobs.
func New(log *slog.Logger, mts *metrics.Metrics, maxCookies, maxPerDomain int) *Store {
	if maxCookies <= 0 {
		maxCookies = DefaultMaxCookies
	}
	if maxPerDomain <= 0 {
		maxPerDomain = DefaultMaxPerDomain
	}

	return &Store{
		log:          log,
		metrics:      mts,
		maxCookies:   maxCookies,
		maxPerDomain: maxPerDomain,
		entries:      make(map[id]*Entry),
	}
}

// Len returns the number of entries currently held.
func (s *Store) Len() int {
	return len(s.entries)
}

// Cleanup restores the store invariants and runs before every read or write:
// expired persistent entries are removed first; if the total still exceeds
// the hard cap, each over-occupied domain is trimmed to the per-domain cap by
// least-recent access, and then the oldest-accessed entries overall are
// removed until the hard cap holds.
func (s *Store) Cleanup(now time.Time) {
	for entryID, entry := range s.entries {
		if entry.Persistent && !entry.Expires.After(now) {
			delete(s.entries, entryID)
			s.metrics.EvictedTotal.WithLabelValues(metrics.ReasonExpired).Inc()
		}
	}

	if len(s.entries) > s.maxCookies {
		s.trimDomains()
		s.trimGlobal()
	}

	s.metrics.StoreSize.Set(float64(len(s.entries)))
}

// trimDomains evicts the least-recently-accessed entries of every domain that
// holds more than the per-domain cap.
func (s *Store) trimDomains() {
	perDomain := make(map[string][]*Entry)
	for _, entry := range s.entries {
		perDomain[entry.Domain] = append(perDomain[entry.Domain], entry)
	}

	for _, held := range perDomain {
		if len(held) <= s.maxPerDomain {
			continue
		}
		sortByLastAccess(held)
		for _, entry := range held[:len(held)-s.maxPerDomain] {
			delete(s.entries, entry.id())
			s.metrics.EvictedTotal.WithLabelValues(metrics.ReasonDomainCap).Inc()
		}
	}
}

// trimGlobal evicts the least-recently-accessed entries overall until the
// hard cap holds.
func (s *Store) trimGlobal() {
	if len(s.entries) <= s.maxCookies {
		return
	}

	held := make([]*Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		held = append(held, entry)
	}
	sortByLastAccess(held)

	for _, entry := range held[:len(held)-s.maxCookies] {
		delete(s.entries, entry.id())
		s.metrics.EvictedTotal.WithLabelValues(metrics.ReasonStoreCap).Inc()
	}
}

// Add resolves a parsed draft against the request URL and inserts it,
// overwriting any entry with the same identity while preserving its creation
// time. It returns the stored entry.
func (s *Store) Add(draft parse.Draft, reqURL *url.URL, now time.Time) *Entry {
	s.Cleanup(now)

	host := strings.ToLower(reqURL.Hostname())
	entry := &Entry{
		Name:     draft.Name,
		Value:    draft.Value,
		Path:     draft.Path,
		Secure:   draft.Secure,
		HTTPOnly: draft.HTTPOnly,
	}

	if draft.Domain != "" {
		entry.Domain = draft.Domain
		if !DomainMatch(draft.Domain, host) {
			// Non-fatal per RFC relaxation: the cookie is stored under the
			// attribute domain and simply never matches this host.
			s.log.Warn("cookie domain does not cover request host",
				"cookie", draft.Name, "domain", draft.Domain, "host", host)
		}
	} else {
		entry.HostOnly = true
		entry.Domain = host
	}

	switch {
	case draft.HasMaxAge: // Max-Age wins over Expires when both are present
		entry.Persistent = true
		entry.Expires = draft.MaxAgeEnd
	case draft.HasExpires:
		entry.Persistent = true
		entry.Expires = draft.Expires
	default:
		entry.Expires = endOfTime
	}

	entry.Created = now
	entry.LastAccess = now
	if old, ok := s.entries[entry.id()]; ok {
		entry.Created = old.Created
	}
	s.entries[entry.id()] = entry

	kind := "session"
	if entry.Persistent {
		kind = "persistent"
	}
	s.metrics.StoredTotal.WithLabelValues(kind).Inc()
	s.metrics.StoreSize.Set(float64(len(s.entries)))

	return entry
}

// Select returns the entries applying to a request for reqURL, per RFC 6265,
// section 5.4: domain and path must match, host-only entries require the
// exact host, and Secure entries require an https request. Every selected
// entry has its last-access time bumped to now. The result is sorted with
// longer paths first and creation-time ascending among equal lengths.
func (s *Store) Select(reqURL *url.URL, now time.Time) []*Entry {
	s.Cleanup(now)

	host := strings.ToLower(reqURL.Hostname())
	path := reqURL.Path
	if path == "" {
		path = "/"
	}
	https := reqURL.Scheme == "https"

	var selected []*Entry
	for _, entry := range s.entries {
		if entry.HostOnly {
			if entry.Domain != host {
				continue
			}
		} else if !DomainMatch(entry.Domain, host) {
			continue
		}
		if !PathMatch(path, entry.Path) {
			continue
		}
		if entry.Secure && !https {
			continue
		}

		entry.LastAccess = now
		selected = append(selected, entry)
	}

	sort.Slice(selected, func(i, j int) bool {
		left, right := selected[i], selected[j]
		if len(left.Path) != len(right.Path) {
			return len(left.Path) > len(right.Path)
		}
		if !left.Created.Equal(right.Created) {
			return left.Created.Before(right.Created)
		}
		return left.Name < right.Name
	})

	return selected
}

// EndSession removes every non-persistent entry and returns the number of
// entries left.
func (s *Store) EndSession(now time.Time) int {
	s.Cleanup(now)

	for entryID, entry := range s.entries {
		if !entry.Persistent {
			delete(s.entries, entryID)
			s.metrics.EvictedTotal.WithLabelValues(metrics.ReasonSessionEnd).Inc()
		}
	}
	s.metrics.StoreSize.Set(float64(len(s.entries)))

	return len(s.entries)
}

// sortByLastAccess orders entries by ascending last access, oldest first.
// Creation time and name break ties so eviction is deterministic.
func sortByLastAccess(entries []*Entry) {
	sort.Slice(entries, func(i, j int) bool {
		left, right := entries[i], entries[j]
		if !left.LastAccess.Equal(right.LastAccess) {
			return left.LastAccess.Before(right.LastAccess)
		}
		if !left.Created.Equal(right.Created) {
			return left.Created.Before(right.Created)
		}
		return left.Name < right.Name
	})
}

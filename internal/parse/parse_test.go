package parse_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/UnknownOlympus/pandora/internal/parse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)

func mustURL(t *testing.T, raw string) *url.URL {
	t.Helper()

	u, err := url.Parse(raw)
	require.NoError(t, err)

	return u
}

func TestSetCookie_NameValue(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "http://example.com/foo/bar")

	draft, err := parse.SetCookie("  sid =  abc=def ", u, testNow)
	require.NoError(t, err)
	assert.Equal(t, "sid", draft.Name)
	assert.Equal(t, "abc=def", draft.Value, "value runs up to the first ';', '=' included")
	assert.Equal(t, "/foo", draft.Path)
	assert.Empty(t, draft.Domain)
	assert.False(t, draft.Secure)
	assert.False(t, draft.HTTPOnly)
	assert.Equal(t, testNow, draft.Created)
}

func TestSetCookie_Malformed(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "http://example.com/")

	_, err := parse.SetCookie("no equals sign", u, testNow)
	require.ErrorIs(t, err, parse.ErrMalformedCookie)

	_, err = parse.SetCookie("  =value", u, testNow)
	require.ErrorIs(t, err, parse.ErrMalformedCookie)

	_, err = parse.SetCookie("noequals; Path=/", u, testNow)
	require.ErrorIs(t, err, parse.ErrMalformedCookie, "an '=' after the first ';' does not count")
}

func TestSetCookie_NoRequestHost(t *testing.T) {
	t.Parallel()

	_, err := parse.SetCookie("a=1", nil, testNow)
	require.ErrorIs(t, err, parse.ErrNoRequestHost)

	_, err = parse.SetCookie("a=1", &url.URL{Path: "/"}, testNow)
	require.ErrorIs(t, err, parse.ErrNoRequestHost)
}

func TestSetCookie_Attributes(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "https://example.com/account/settings")

	draft, err := parse.SetCookie(
		"sid=abc; Domain=.Example.COM; Path=/account; Secure; HttpOnly; SameSite=Lax", u, testNow)
	require.NoError(t, err)
	assert.Equal(t, "example.com", draft.Domain, "leading dot stripped, rest lowercased")
	assert.Equal(t, "/account", draft.Path)
	assert.True(t, draft.Secure)
	assert.True(t, draft.HTTPOnly)
	assert.False(t, draft.HasExpires)
	assert.False(t, draft.HasMaxAge)
}

func TestSetCookie_Expires(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "http://example.com/")

	draft, err := parse.SetCookie("sid=abc; Expires=Wed, 09 Jun 2021 10:18:14 GMT", u, testNow)
	require.NoError(t, err)
	assert.True(t, draft.HasExpires)
	assert.Equal(t, time.Date(2021, time.June, 9, 10, 18, 14, 0, time.UTC), draft.Expires)

	// A broken date drops the attribute, never the cookie.
	draft, err = parse.SetCookie("sid=abc; Expires=tomorrow-ish", u, testNow)
	require.NoError(t, err)
	assert.False(t, draft.HasExpires)
}

func TestSetCookie_MaxAge(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "http://example.com/")

	tests := []struct {
		name    string
		value   string
		want    bool
		wantEnd time.Time
	}{
		{"positive", "3600", true, testNow.Add(time.Hour)},
		{"zero is already expired", "0", true, time.Unix(0, 0).UTC()},
		{"negative is already expired", "-5", true, time.Unix(0, 0).UTC()},
		{"not a number", "12x", false, time.Time{}},
		{"plus sign rejected", "+5", false, time.Time{}},
		{"empty", "", false, time.Time{}},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			draft, err := parse.SetCookie("sid=abc; Max-Age="+tc.value, u, testNow)
			require.NoError(t, err)
			assert.Equal(t, tc.want, draft.HasMaxAge)
			if tc.want {
				assert.Equal(t, tc.wantEnd, draft.MaxAgeEnd)
			}
		})
	}
}

func TestSetCookie_FirstSeenWins(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "http://example.com/")

	draft, err := parse.SetCookie("sid=abc; Path=/first; Path=/second", u, testNow)
	require.NoError(t, err)
	assert.Equal(t, "/first", draft.Path)

	// The first occurrence claims the attribute kind even when its value is
	// then dropped as unusable.
	draft, err = parse.SetCookie("sid=abc; Max-Age=bogus; Max-Age=60", u, testNow)
	require.NoError(t, err)
	assert.False(t, draft.HasMaxAge)
}

func TestSetCookie_DomainEdgeCases(t *testing.T) {
	t.Parallel()

	u := mustURL(t, "http://example.com/")

	draft, err := parse.SetCookie("sid=abc; Domain=", u, testNow)
	require.NoError(t, err)
	assert.Empty(t, draft.Domain, "empty Domain value is ignored")

	draft, err = parse.SetCookie("sid=abc; Domain=.", u, testNow)
	require.NoError(t, err)
	assert.Empty(t, draft.Domain)

	draft, err = parse.SetCookie("sid=abc; Path=relative", u, testNow)
	require.NoError(t, err)
	assert.Equal(t, "/", draft.Path, "a Path not starting with '/' falls back to the default")
}

func TestDefaultPath(t *testing.T) {
	t.Parallel()

	tests := []struct {
		uriPath string
		want    string
	}{
		{"/foo/bar/baz", "/foo/bar"},
		{"/foo/bar", "/foo"},
		{"/foo", "/"},
		{"/", "/"},
		{"", "/"},
		{"relative", "/"},
	}

	for _, tc := range tests {
		u := &url.URL{Scheme: "http", Host: "example.com", Path: tc.uriPath}

		draft, err := parse.SetCookie("a=1", u, testNow)
		require.NoError(t, err)
		assert.Equal(t, tc.want, draft.Path, "uri path %q", tc.uriPath)
	}
}

func TestSplitHeader(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		want   []string
	}{
		{
			"single entry",
			"a=1; Path=/",
			[]string{"a=1; Path=/"},
		},
		{
			"two entries",
			"a=1; Path=/, b=2; Secure",
			[]string{"a=1; Path=/", " b=2; Secure"},
		},
		{
			"comma inside expires date",
			"a=1; Expires=Wed, 09 Jun 2021 10:18:14 GMT; Path=/, b=2",
			[]string{"a=1; Expires=Wed, 09 Jun 2021 10:18:14 GMT; Path=/", " b=2"},
		},
		{
			"three bare pairs",
			"a=1, b=2, c=3",
			[]string{"a=1", " b=2", " c=3"},
		},
		{
			"comma not followed by a pair",
			"a=1, just text",
			[]string{"a=1, just text"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tc.want, parse.SplitHeader(tc.header))
		})
	}
}

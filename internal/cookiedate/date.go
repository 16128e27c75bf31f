// Package cookiedate parses the relaxed cookie-date grammar of RFC 6265,
// section 5.1.1. The grammar accepts far more than RFC 1123 dates: tokens may
// arrive in any order, unknown tokens (weekday names, "GMT") are skipped, and
// some out-of-range values are tolerated the way deployed servers emit them.
package cookiedate

import (
	"errors"
	"strings"
	"time"
)

// ErrNotADate is returned when a string cannot be interpreted as a cookie-date.
var ErrNotADate = errors.New("not a cookie date")

const minYear = 1601

// maxHour is intentionally above 23; the grammar historically tolerates it.
const maxHour = 32

var monthNames = [12]string{
	"jan", "feb", "mar", "apr", "may", "jun",
	"jul", "aug", "sep", "oct", "nov", "dec",
}

// delims marks the delimiter octets of the date grammar: HTAB plus the ranges
// 0x20-0x2F, 0x3B-0x40, 0x5B-0x60 and 0x7B-0x7E. Notably ':' (0x3A) is not a
// delimiter, so hh:mm:ss survives tokenization as a single token.
var delims = func() [256]bool {
	var tbl [256]bool
	tbl['\t'] = true
	for _, rng := range [4][2]byte{{0x20, 0x2F}, {0x3B, 0x40}, {0x5B, 0x60}, {0x7B, 0x7E}} {
		for c := rng[0]; c <= rng[1]; c++ {
			tbl[c] = true
		}
	}
	return tbl
}()

// Parse interprets text as an RFC 6265 cookie-date and returns the resulting
// UTC timestamp. Each token fills at most one of the four slots (time, day of
// month, month, year); the first token matching a still-empty slot wins and
// later lookalikes are ignored. Values that overflow the calendar (such as
// day 31 in February) are normalized by the time package.
func Parse(text string) (time.Time, error) {
	var (
		hour, minute, second int
		day, month, year     int

		haveTime, haveDay, haveMonth, haveYear bool
	)

	for _, token := range tokenize(text) {
		switch {
		case !haveTime && matchTime(token, &hour, &minute, &second):
			haveTime = true
		case !haveDay && matchDigits(token, 1, 2, &day):
			haveDay = true
		case !haveMonth && matchMonth(token, &month):
			haveMonth = true
		case !haveYear && matchDigits(token, 2, 4, &year):
			haveYear = true
		}
	}

	if !haveTime || !haveDay || !haveMonth || !haveYear {
		return time.Time{}, ErrNotADate
	}

	// Two-digit year normalization, RFC 6265 section 5.1.1 steps 3-4.
	switch {
	case year >= 70 && year <= 99:
		year += 1900
	case year >= 0 && year <= 69:
		year += 2000
	}

	if day < 1 || day > 31 || year < minYear ||
		hour > maxHour || minute > 59 || second > 59 {
		return time.Time{}, ErrNotADate
	}

	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

// tokenize splits text into maximal runs of non-delimiter octets, dropping
// empty runs.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r < 256 && delims[byte(r)]
	})
}

// matchTime reports whether token matches hh:mm:ss with 1-2 digits per field.
// Anything after the seconds is allowed as long as it starts with a non-digit.
func matchTime(token string, hour, minute, second *int) bool {
	rest := token
	var fields [3]int
	for i := range fields {
		var ok bool
		if fields[i], rest, ok = leadingDigits(rest, 1, 2); !ok {
			return false
		}
		if i < 2 {
			if len(rest) == 0 || rest[0] != ':' {
				return false
			}
			rest = rest[1:]
		}
	}
	if len(rest) > 0 && isDigit(rest[0]) {
		return false
	}
	*hour, *minute, *second = fields[0], fields[1], fields[2]
	return true
}

// matchDigits reports whether token starts with min..max digits followed by a
// non-digit or the end of the token.
func matchDigits(token string, minDigits, maxDigits int, out *int) bool {
	value, rest, ok := leadingDigits(token, minDigits, maxDigits)
	if !ok {
		return false
	}
	if len(rest) > 0 && isDigit(rest[0]) {
		return false
	}
	*out = value
	return true
}

// matchMonth reports whether the first three octets of token name a month,
// case-insensitively.
func matchMonth(token string, out *int) bool {
	if len(token) < 3 {
		return false
	}
	prefix := strings.ToLower(token[:3])
	for i, name := range monthNames {
		if prefix == name {
			*out = i + 1
			return true
		}
	}
	return false
}

// leadingDigits consumes between minDigits and maxDigits leading digits of
// token and returns their value plus the unconsumed remainder.
func leadingDigits(token string, minDigits, maxDigits int) (int, string, bool) {
	count := 0
	value := 0
	for count < len(token) && count < maxDigits && isDigit(token[count]) {
		value = value*10 + int(token[count]-'0')
		count++
	}
	if count < minDigits {
		return 0, "", false
	}
	return value, token[count:], true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

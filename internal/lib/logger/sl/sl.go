package sl

import (
	"log/slog"
	"net/url"
)

// Err creates a slog.Attr with the given error.
func Err(err error) slog.Attr {
	return slog.Attr{
		Key:   "error",
		Value: slog.StringValue(err.Error()),
	}
}

// URL creates a slog.Attr with the string form of the given URL.
func URL(u *url.URL) slog.Attr {
	return slog.Attr{
		Key:   "url",
		Value: slog.StringValue(u.String()),
	}
}

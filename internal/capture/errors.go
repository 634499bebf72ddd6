package capture

import "errors"

// Capture errors.
//
// Design decision: We define sentinel errors for input problems callers can
// detect before any network traffic happens. Transport and browser failures
// are wrapped with context instead, because their variety is open-ended.
var (
	// ErrEmptyURL is returned when the page URL is empty or whitespace.
	ErrEmptyURL = errors.New("page URL is empty")

	// ErrUnsupportedScheme is returned when the page URL uses a scheme
	// other than http or https.
	ErrUnsupportedScheme = errors.New("unsupported URL scheme: expected http or https")

	// ErrInvalidProxyAddress is returned when the SOCKS5 proxy address format
	// is invalid. Expected format is "host:port".
	ErrInvalidProxyAddress = errors.New("invalid proxy address format: expected host:port")
)

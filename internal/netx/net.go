// Package netx holds small network helpers.
package netx

import (
	"fmt"
	"net/url"
	"strings"
)

// BaseURL turns a server address into a base URL without a trailing slash.
// A bare host:port gets the http scheme. Only http and https are accepted.
func BaseURL(addr string) (string, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", fmt.Errorf("empty server address")
	}
	if !strings.Contains(addr, "://") {
		addr = "http://" + addr
	}

	u, err := url.Parse(addr)
	if err != nil {
		return "", fmt.Errorf("parse server address: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	if u.Host == "" {
		return "", fmt.Errorf("server address %q has no host", addr)
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// Package normalize provides URL canonicalization and address fingerprinting.
// Canonical forms are the deduplication keys for tournament sources and
// venues, so everything here must be deterministic and idempotent.
package normalize

import (
	"fmt"
	"net/url"
	"strings"

	apperrors "github.com/tournament-scout/internal/errors"
)

// NormalizedURL holds the derived forms of a raw source URL.
type NormalizedURL struct {
	// Canonical has the query stripped and is the dedup/equality key.
	Canonical string `json:"canonical"`
	// Normalized preserves the query for links where it carries routing
	// (e.g. a registration page). Callers pick the form to persist.
	Normalized string `json:"normalized"`
	// Domain is the lowercased host, used for grouping and analytics.
	Domain string `json:"domain"`
}

// URL canonicalizes a raw user- or crawler-submitted URL.
// A missing scheme is coerced to https and http is upgraded to https, so two
// listings of the same page never differ by scheme; non-web schemes are
// rejected. Normalizing an already-normalized URL yields the same result.
func URL(raw string) (*NormalizedURL, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return nil, apperrors.NewInvalidURLError(raw, "empty input")
	}

	u, err := url.Parse(trimmed)
	lowScheme := ""
	if err == nil {
		lowScheme = strings.ToLower(u.Scheme)
	}

	switch {
	case err == nil && (lowScheme == "http" || lowScheme == "https"):
		// Absolute web URL as given.
	case err == nil && u.Scheme != "" && !strings.Contains(u.Scheme, ".") && !looksLikeHostPort(u.Opaque):
		// A genuine non-web scheme (mailto:, tel:, ftp:, javascript:).
		// A dotted "scheme" is really a bare host with a port, e.g.
		// "example.com:8080/x", and a dotless one with a port-shaped opaque
		// part ("localhost:8080/x") is too; both fall through to coercion.
		return nil, apperrors.NewInvalidURLError(raw, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	default:
		// Bare domain, host:port, or unparseable as-is: retry with the
		// default scheme prepended.
		u, err = url.Parse("https://" + trimmed)
		if err != nil {
			return nil, apperrors.NewInvalidURLError(raw, err.Error())
		}
		lowScheme = "https"
	}

	// Scheme is always https after this point.
	lowScheme = "https"

	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, apperrors.NewInvalidURLError(raw, "missing host")
	}

	// Keep non-default ports only. Port 80 counts as default because it only
	// appears on http URLs whose scheme just got upgraded.
	if port := u.Port(); port != "" && !isDefaultPort(port) {
		host = host + ":" + port
	}

	base := lowScheme + "://" + host + normalizePath(u.EscapedPath())

	normalized := base
	if u.RawQuery != "" {
		normalized += "?" + u.RawQuery
	}
	// Fragment is always dropped.

	return &NormalizedURL{
		Canonical:  base,
		Normalized: normalized,
		Domain:     strings.ToLower(u.Hostname()),
	}, nil
}

// isDefaultPort reports whether the port is implied by a web scheme.
func isDefaultPort(port string) bool {
	return port == "80" || port == "443"
}

// looksLikeHostPort reports whether an opaque URL of the form "host:8080/x"
// was mis-parsed as scheme "host": the opaque part then starts with a port
// number, optionally followed by a path. mailto:, tel: (with its leading +),
// and javascript: opaque parts never match.
func looksLikeHostPort(opaque string) bool {
	i := 0
	for i < len(opaque) && opaque[i] >= '0' && opaque[i] <= '9' {
		i++
	}
	if i == 0 || i > 5 {
		return false
	}
	return i == len(opaque) || opaque[i] == '/'
}

// normalizePath lowercases the path, collapses duplicate slashes, and strips
// a single trailing slash unless the path is exactly "/". An empty path is
// represented as "/" so bare domains and explicit roots compare equal.
func normalizePath(path string) string {
	if path == "" {
		return "/"
	}

	p := strings.ToLower(path)
	for strings.Contains(p, "//") {
		p = strings.ReplaceAll(p, "//", "/")
	}
	if len(p) > 1 {
		p = strings.TrimSuffix(p, "/")
	}
	return p
}

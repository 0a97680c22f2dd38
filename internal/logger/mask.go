package logger

import (
	"net/http"
	"strings"
)

// MaskAuthorization keeps the scheme of an Authorization header and the last
// four characters of its credential.
func MaskAuthorization(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if scheme, cred, ok := strings.Cut(value, " "); ok {
		return scheme + " " + maskLast4(strings.TrimSpace(cred))
	}
	return maskLast4(value)
}

// MaskCookie keeps cookie names and masks every value to its last four
// characters. Values of four characters or fewer are fully masked.
func MaskCookie(value string) string {
	var out []string
	for _, part := range strings.Split(value, ";") {
		seg := strings.TrimSpace(part)
		if seg == "" {
			continue
		}
		if name, val, ok := strings.Cut(seg, "="); ok {
			seg = strings.TrimSpace(name) + "=" + maskLast4(strings.TrimSpace(val))
		} else {
			seg = maskLast4(seg)
		}
		out = append(out, seg)
	}
	return strings.Join(out, "; ")
}

// MaskHeaders flattens headers for logging with credentials masked.
func MaskHeaders(h http.Header) map[string]string {
	out := make(map[string]string, len(h))
	for key, values := range h {
		joined := strings.Join(values, ",")
		switch strings.ToLower(key) {
		case "authorization", "proxy-authorization":
			out[key] = MaskAuthorization(joined)
		case "cookie", "set-cookie":
			out[key] = MaskCookie(joined)
		default:
			out[key] = joined
		}
	}
	return out
}

func maskLast4(v string) string {
	if len(v) <= 4 {
		return strings.Repeat("*", len(v))
	}
	return strings.Repeat("*", len(v)-4) + v[len(v)-4:]
}

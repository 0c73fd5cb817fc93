package netutil

import (
	"context"
	"net"
	"net/http"
	"net/netip"
	"strings"
	"unicode/utf8"
)

const MaxUserAgentLength = 512

// NormalizeIP returns the canonical IP portion of raw, which may be a bare
// address or host:port ("192.0.2.4:1234", "[2001:db8::1]:443"). Zones are
// stripped. ok is false when no IP could be parsed; raw is then returned trimmed.
func NormalizeIP(raw string) (string, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", false
	}
	candidates := []string{raw}
	if host, _, err := net.SplitHostPort(raw); err == nil {
		candidates = append(candidates, host)
	}
	if strings.HasPrefix(raw, "[") {
		if end := strings.LastIndex(raw, "]"); end > 0 {
			candidates = append(candidates, raw[1:end])
		}
	}
	for _, c := range candidates {
		if addr, err := netip.ParseAddr(c); err == nil {
			return addr.WithZone("").Unmap().String(), true
		}
	}
	return raw, false
}

// TruncateUserAgent trims ua to MaxUserAgentLength runes.
func TruncateUserAgent(ua string) string {
	if utf8.RuneCountInString(ua) <= MaxUserAgentLength {
		return ua
	}
	n := 0
	for i := range ua {
		if n == MaxUserAgentLength {
			return ua[:i]
		}
		n++
	}
	return ua
}

// ClientIP picks the caller address: first X-Forwarded-For hop, then
// X-Real-IP, then the socket peer.
func ClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip, ok := NormalizeIP(first); ok {
			return ip
		}
	}
	if ip, ok := NormalizeIP(r.Header.Get("X-Real-IP")); ok {
		return ip
	}
	ip, _ := NormalizeIP(r.RemoteAddr)
	return ip
}

// Client describes who is calling; it ends up on audit rows.
type Client struct {
	IP        string
	UserAgent string
}

type clientKey struct{}

func WithClient(ctx context.Context, c Client) context.Context {
	c.UserAgent = TruncateUserAgent(c.UserAgent)
	return context.WithValue(ctx, clientKey{}, c)
}

func ClientFromContext(ctx context.Context) Client {
	c, _ := ctx.Value(clientKey{}).(Client)
	return c
}

package middleware

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/netip"
	"strings"
)

const (
	// ClientIPContextKey is the context key for storing the client IP address
	ClientIPContextKey contextKey = "client_ip"
)

// ClientIPResolver finds the client address of a request. Forwarding headers
// are only honoured when the direct peer is a trusted proxy.
type ClientIPResolver struct {
	trusted []netip.Prefix
}

// NewClientIPResolver parses trustedProxies, each a CIDR ("10.0.0.0/8") or a
// single address.
func NewClientIPResolver(trustedProxies []string) (*ClientIPResolver, error) {
	cr := &ClientIPResolver{}
	for _, p := range trustedProxies {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if strings.Contains(p, "/") {
			prefix, err := netip.ParsePrefix(p)
			if err != nil {
				return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
			}
			cr.trusted = append(cr.trusted, prefix.Masked())
			continue
		}
		addr, err := netip.ParseAddr(p)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", p, err)
		}
		addr = addr.Unmap()
		cr.trusted = append(cr.trusted, netip.PrefixFrom(addr, addr.BitLen()))
	}
	return cr, nil
}

// ClientIP returns the client address. Behind trusted proxies it is the
// right-most X-Forwarded-For hop that is not itself a trusted proxy.
func (cr *ClientIPResolver) ClientIP(r *http.Request) string {
	remote := remoteIP(r)
	if !cr.isTrusted(remote) {
		return remote
	}

	if xff := r.Header.Values("X-Forwarded-For"); len(xff) > 0 {
		hops := strings.Split(strings.Join(xff, ","), ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if hop == "" {
				continue
			}
			if !cr.isTrusted(hop) || i == 0 {
				return hop
			}
		}
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		return xri
	}
	return remote
}

func (cr *ClientIPResolver) isTrusted(ip string) bool {
	if cr == nil || len(cr.trusted) == 0 {
		return false
	}
	addr, err := netip.ParseAddr(ip)
	if err != nil {
		return false
	}
	addr = addr.Unmap()
	for _, p := range cr.trusted {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

func remoteIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// WithClientIP stores the client address in the context. A nil resolver
// trusts no proxy.
func WithClientIP(resolver *ClientIPResolver) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), ClientIPContextKey, resolver.ClientIP(r))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetClientIPFromContext retrieves the client IP address from the context.
// Returns an empty string if not found (middleware not applied).
func GetClientIPFromContext(ctx context.Context) string {
	if ip, ok := ctx.Value(ClientIPContextKey).(string); ok {
		return ip
	}
	return ""
}

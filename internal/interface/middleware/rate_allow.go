package middleware

import (
	"fmt"
	"net/netip"
	"strings"

	"github.com/gin-gonic/gin"
)

// AllowPrivateIP bypasses rate limiting for loopback and private-range clients
// (10/8, 172.16/12, 192.168/16, fc00::/7).
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		addr, ok := clientAddr(c)
		return ok && (addr.IsLoopback() || addr.IsPrivate())
	}
}

// AllowNetworks bypasses rate limiting for clients inside any of nets.
func AllowNetworks(nets []netip.Prefix) AllowFunc {
	if len(nets) == 0 {
		return nil
	}
	return func(c *gin.Context) bool {
		addr, ok := clientAddr(c)
		if !ok {
			return false
		}
		for _, n := range nets {
			if n.Contains(addr) {
				return true
			}
		}
		return false
	}
}

// AnyOf combines allow funcs; nil entries are skipped.
func AnyOf(fns ...AllowFunc) AllowFunc {
	var set []AllowFunc
	for _, fn := range fns {
		if fn != nil {
			set = append(set, fn)
		}
	}
	if len(set) == 0 {
		return nil
	}
	return func(c *gin.Context) bool {
		for _, fn := range set {
			if fn(c) {
				return true
			}
		}
		return false
	}
}

// ParseNetworks parses CIDR strings such as "203.0.113.0/24".
func ParseNetworks(cidrs []string) ([]netip.Prefix, error) {
	out := make([]netip.Prefix, 0, len(cidrs))
	for _, s := range cidrs {
		p, err := netip.ParsePrefix(strings.TrimSpace(s))
		if err != nil {
			return nil, fmt.Errorf("invalid network %q: %w", s, err)
		}
		out = append(out, p.Masked())
	}
	return out, nil
}

func clientAddr(c *gin.Context) (netip.Addr, bool) {
	addr, err := netip.ParseAddr(ipFromCtx(c))
	if err != nil {
		return netip.Addr{}, false
	}
	return addr.Unmap(), true
}

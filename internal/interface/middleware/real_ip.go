package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const realIPKey = "real_ip"

// RealIP stores the client IP under "real_ip". With trustProxy set it prefers
// CF-Connecting-IP, then the left-most X-Forwarded-For entry; otherwise, and
// when neither parses, it uses c.ClientIP().
func RealIP(trustProxy bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := ""
		if trustProxy {
			ip = firstIP(c.GetHeader("CF-Connecting-IP"))
			if ip == "" {
				ip = firstIP(c.GetHeader("X-Forwarded-For"))
			}
		}
		if ip == "" {
			ip = c.ClientIP()
		}
		c.Set(realIPKey, ip)
		c.Next()
	}
}

func firstIP(header string) string {
	first, _, _ := strings.Cut(header, ",")
	if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
		return ip.String()
	}
	return ""
}

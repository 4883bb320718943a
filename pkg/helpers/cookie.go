package helpers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	AccessCookie  = "access_token"
	RefreshCookie = "refresh_token"
)

// Manager writes the session cookie pair. Both cookies are HttpOnly, SameSite
// Lax and scoped to Domain.
type Manager struct {
	Domain string
	Secure bool
}

func NewCookie(domain string, secure bool) *Manager {
	return &Manager{Domain: domain, Secure: secure}
}

func (m *Manager) SetPair(c *gin.Context, access string, aexp time.Time, refresh string, rexp time.Time) {
	http.SetCookie(c.Writer, m.cookie(AccessCookie, access, aexp))
	http.SetCookie(c.Writer, m.cookie(RefreshCookie, refresh, rexp))
}

// Clear expires both cookies. Browsers only drop a cookie whose attributes
// match the ones it was set with.
func (m *Manager) Clear(c *gin.Context) {
	for _, name := range []string{AccessCookie, RefreshCookie} {
		ck := m.cookie(name, "", time.Unix(0, 0))
		ck.MaxAge = -1
		http.SetCookie(c.Writer, ck)
	}
}

func (m *Manager) cookie(name, value string, exp time.Time) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		Domain:   m.Domain,
		Expires:  exp.UTC(),
		MaxAge:   maxAgeFrom(exp),
		Secure:   m.Secure,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func maxAgeFrom(exp time.Time) int {
	sec := int(time.Until(exp).Seconds())
	if sec <= 0 {
		return -1
	}
	return sec
}

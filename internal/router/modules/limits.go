package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/container"
	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
)

// Limits holds the per-route request budgets. A zero budget disables the
// limiter for that route.
type Limits struct {
	Window   time.Duration
	Register int
	Login    int
	Refresh  int
	User     int
	Follow   int
	Admin    int
	Ops      int
}

func DefaultLimits() Limits {
	return Limits{Window: time.Minute, Register: 5, Login: 10, Refresh: 60, User: 120, Follow: 30, Admin: 60, Ops: 120}
}

func LimitsFromConfig(cfg *config.Config) Limits {
	l := DefaultLimits()
	if cfg == nil {
		return l
	}
	if cfg.RateLimitWindow > 0 {
		l.Window = cfg.RateLimitWindow
	}
	l.Register = cfg.RateLimitRegister
	l.Login = cfg.RateLimitLogin
	l.Refresh = cfg.RateLimitRefresh
	l.User = cfg.RateLimitUser
	l.Follow = cfg.RateLimitFollow
	l.Admin = cfg.RateLimitAdmin
	return l
}

func (l Limits) limit(n int, key middleware.KeyFunc) gin.HandlerFunc {
	return middleware.RateLimit(container.GetRedis(), n, l.Window, key, bypass())
}

// bypass returns the rate-limit allowlist configured for this deployment.
// Invalid CIDRs are rejected by config.Load, so a parse error here only drops
// the network list.
func bypass() middleware.AllowFunc {
	cfg := container.GetConfig()
	if cfg == nil {
		return nil
	}
	var private middleware.AllowFunc
	if cfg.RateLimitBypassPrivate {
		private = middleware.AllowPrivateIP()
	}
	nets, _ := middleware.ParseNetworks(cfg.RateLimitBypassCIDRs)
	return middleware.AnyOf(private, middleware.AllowNetworks(nets))
}

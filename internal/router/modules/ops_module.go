package modules

import (
	"context"
	"expvar"
	"net/http"
	"runtime"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-social-graph/internal/interface/middleware"
	"github.com/oksasatya/go-social-graph/pkg/response"
)

// Check reports whether one dependency is reachable.
type Check func(ctx context.Context) error

// OpsModule serves GET /healthz and, when vars is set, the expvar counters
// (follow graph compensations and repairs, memstats, goroutines, uptime) at
// GET /debug/vars.
type OpsModule struct {
	checks  map[string]Check
	vars    bool
	timeout time.Duration
	limits  Limits
}

func NewOpsModule(checks map[string]Check, exposeVars bool, limits Limits) *OpsModule {
	return &OpsModule{checks: checks, vars: exposeVars, timeout: 2 * time.Second, limits: limits}
}

var publishRuntimeVars = sync.OnceFunc(func() {
	started := time.Now()
	expvar.Publish("goroutines", expvar.Func(func() any { return runtime.NumGoroutine() }))
	expvar.Publish("uptime_seconds", expvar.Func(func() any { return int64(time.Since(started).Seconds()) }))
})

func (m *OpsModule) Register(rg *gin.RouterGroup) {
	rl := m.limits.limit(m.limits.Ops, middleware.KeyByIP())
	rg.GET("/healthz", rl, m.health)
	if m.vars {
		publishRuntimeVars()
		rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
	}
}

func (m *OpsModule) health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), m.timeout)
	defer cancel()

	status := make(map[string]string, len(m.checks))
	failed := false
	for name, check := range m.checks {
		if err := check(ctx); err != nil {
			status[name] = err.Error()
			failed = true
			continue
		}
		status[name] = "ok"
	}
	if failed {
		response.Error(c, http.StatusServiceUnavailable, "unhealthy", status)
		return
	}
	response.Success(c, http.StatusOK, status, "healthy", nil)
}

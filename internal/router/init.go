package router

import (
	"context"

	"github.com/oksasatya/go-social-graph/config"
	"github.com/oksasatya/go-social-graph/internal/application"
	"github.com/oksasatya/go-social-graph/internal/container"
	pginfra "github.com/oksasatya/go-social-graph/internal/infrastructure/postgres"
	"github.com/oksasatya/go-social-graph/internal/infrastructure/redisstore"
	handlers "github.com/oksasatya/go-social-graph/internal/interface/http"
	"github.com/oksasatya/go-social-graph/internal/router/modules"
)

type Deps struct {
	Auth    *application.AuthService
	Profile *application.ProfileService
	Follow  *application.FollowService
	Admin   *application.AdminService

	AuthHandler  *handlers.AuthHandler
	UserHandler  *handlers.UserHandler
	AdminHandler *handlers.AdminHandler
}

func retryPolicy(cfg *config.Config) application.RetryPolicy {
	return application.RetryPolicy{Attempts: cfg.GraphRetryAttempts, Backoff: cfg.GraphRetryBackoff}
}

func buildDeps() Deps {
	cfg := container.GetConfig()
	logger := container.GetLogger()

	users := pginfra.NewUserRepository(container.GetPGPool())
	sessions := redisstore.NewSessionStore(container.GetRedis())

	// A nil *RabbitPublisher must stay a nil interface.
	var emails, repairs application.JobPublisher
	if p := container.GetEmailPub(); p != nil {
		emails = p
	}
	if p := container.GetRepairPub(); p != nil {
		repairs = p
	}

	notifier := &application.Notifier{
		Pub:         emails,
		Enabled:     cfg.MailSendEnabled,
		CompanyName: cfg.CompanyName,
		SupportURL:  cfg.SupportURL,
		Logger:      logger,
	}
	retry := retryPolicy(cfg)

	d := Deps{
		Auth:    application.NewAuthService(users, sessions, container.GetJWT(), notifier, logger),
		Profile: application.NewProfileService(users, container.GetMedia(), cfg.MediaMaxBytes, logger),
		Follow:  application.NewFollowService(users, repairs, retry, cfg.SuggestedLimit, logger),
		Admin:   application.NewAdminService(users, sessions, repairs, notifier, retry, logger),
	}
	d.AuthHandler = handlers.NewAuthHandler(d.Auth, logger, cfg.CookieDomain, cfg.CookieSecure)
	d.UserHandler = handlers.NewUserHandler(d.Profile, d.Follow, logger)
	d.AdminHandler = handlers.NewAdminHandler(d.Admin, logger)
	return d
}

// InitModules wires every module into the registry. Call once at startup,
// after the container is populated.
func InitModules(r *Registry) {
	d := buildDeps()
	cfg := container.GetConfig()
	limits := modules.LimitsFromConfig(cfg)

	r.Add(
		modules.NewAuthModule(d.AuthHandler, limits),
		modules.NewUserModule(d.UserHandler, d.Auth, limits),
		modules.NewAdminModule(d.AdminHandler, d.Auth, limits),
		modules.NewOpsModule(healthChecks(), cfg.DebugMetricsEnabled, limits),
	)
}

func healthChecks() map[string]modules.Check {
	checks := map[string]modules.Check{}
	if pool := container.GetPGPool(); pool != nil {
		checks["postgres"] = pool.Ping
	}
	if rdb := container.GetRedis(); rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}
	return checks
}

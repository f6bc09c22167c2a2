// internal/app/bootstrap/routes.go
package bootstrap

import (
	"net/http"

	groupsfeature "github.com/studycove/studyhub/internal/app/features/groups"
	healthfeature "github.com/studycove/studyhub/internal/app/features/health"
	invitelinksfeature "github.com/studycove/studyhub/internal/app/features/invitelinks"
	"github.com/studycove/studyhub/internal/app/system/access"
	"github.com/studycove/studyhub/internal/app/system/auditlog"
	"github.com/studycove/studyhub/internal/app/system/confirm"
	"github.com/studycove/studyhub/internal/app/system/groupops"
	"github.com/studycove/studyhub/internal/app/system/identity"
	"github.com/studycove/studyhub/internal/app/system/invites"
	"github.com/studycove/studyhub/internal/app/system/ratelimit"
	"github.com/dalemusser/waffle/config"
	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// limiter is the shared per-user rate limiter. Kept at package level so
// Shutdown can stop its window sweeper.
var limiter *ratelimit.Limiter

// BuildHandler constructs the root HTTP handler (router) for this WAFFLE app.
//
// WAFFLE calls this after configuration, DB connections, schema setup,
// and any Startup hooks have completed. StudyHub builds the access
// stack (permission checks, rate limiting, invites, confirmation gate)
// over the stores in deps and mounts the API routes behind the identity
// middleware. /health and /metrics stay outside it for probes and
// scrapers.
func BuildHandler(coreCfg *config.CoreConfig, appCfg AppConfig, deps DBDeps, logger *zap.Logger) (http.Handler, error) {
	policies := ratelimit.DefaultPolicies()
	if appCfg.RateLimitPolicyFile != "" {
		loaded, err := ratelimit.LoadPolicies(appCfg.RateLimitPolicyFile)
		if err != nil {
			logger.Error("rate limit policy file failed to load", zap.Error(err))
			return nil, err
		}
		policies = loaded
	}
	limiter = ratelimit.New(policies)
	limiter.StartSweeper(appCfg.CleanupInterval)

	registry := invites.NewRegistry(deps.Invites, deps.Memberships, deps.Groups, logger,
		invites.WithTTL(appCfg.InviteTTL))
	gate := confirm.NewGate(deps.Confirmations, logger,
		confirm.WithTTL(appCfg.ConfirmTTL))
	ops := groupops.New(deps.Groups, deps.Memberships, deps.Invites, deps.Contents, logger)
	svc := access.New(deps.Memberships, deps.Contents, limiter, registry, gate, ops, logger)

	auditLog := auditlog.New(deps.Audit, logger, auditlog.Config{
		Access: appCfg.AuditLogAccess,
		Invite: appCfg.AuditLogInvite,
		Admin:  appCfg.AuditLogAdmin,
	})

	r := chi.NewRouter()

	// Health check endpoint for load balancers and orchestrators
	healthHandler := healthfeature.NewHandler(deps.MongoClient, logger)
	r.Mount("/health", healthfeature.Routes(healthHandler))

	// Prometheus metrics
	r.Handle("/metrics", promhttp.Handler())

	// API routes: everything below requires an authenticated identity.
	r.Group(func(pr chi.Router) {
		pr.Use(identity.RequireUser)

		groupsHandler := groupsfeature.NewHandler(svc, ops, deps.Memberships, deps.Contents, auditLog, logger)
		pr.Mount("/groups", groupsfeature.Routes(groupsHandler))

		invitesHandler := invitelinksfeature.NewHandler(svc, auditLog, logger)
		pr.Mount("/invites", invitelinksfeature.Routes(invitesHandler))
	})

	return r, nil
}

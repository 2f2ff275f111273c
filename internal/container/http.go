package container

import (
	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	_ "github.com/danielgtaylor/huma/v2/formats/cbor" // CBOR format support for huma
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	"github.com/scavin/discourse-bilibili-onebox/internal/handlers"
	"github.com/scavin/discourse-bilibili-onebox/internal/health"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"github.com/scavin/discourse-bilibili-onebox/internal/middleware"
	"github.com/scavin/discourse-bilibili-onebox/internal/ratelimit"
	"github.com/scavin/discourse-bilibili-onebox/internal/revision"
	"github.com/scavin/discourse-bilibili-onebox/internal/rewrite"
	"go.uber.org/zap"
)

// HTTPPackage provides the router and the huma API with every route
// registered.
func HTTPPackage(injector *do.Injector) {
	do.Provide(injector, func(_ *do.Injector) (*chi.Mux, error) {
		return chi.NewMux(), nil
	})

	do.Provide(injector, func(i *do.Injector) (huma.API, error) {
		router := do.MustInvoke[*chi.Mux](i)
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		api := humachi.New(router, huma.DefaultConfig("Bilibili Onebox", "1.0.0"))
		api.UseMiddleware(middleware.RequestMeta(api))

		if opts.RateLimited() {
			api.UseMiddleware(middleware.RateLimiter(
				api,
				do.MustInvoke[*ratelimit.PolicyLimiter](i),
				logger.Named("ratelimit"),
			))
		}

		handlers.RegisterRoutes(api, handlers.NewOneboxHandler(
			do.MustInvoke[*revision.Chain](i),
			do.MustInvoke[*rewrite.Tree](i),
			do.MustInvoke[*rewrite.Onebox](i),
			do.MustInvoke[*linkid.Matcher](i),
			logger.Named("http"),
		))

		handlers.RegisterAnalyticsRoutes(api, handlers.NewAnalyticsHandler(
			do.MustInvoke[analytics.Reporter](i),
			logger.Named("http"),
		))

		checks := map[string]health.Checker{
			"cache": do.MustInvoke[health.Checker](i),
		}

		if opts.UsesRedis() {
			checks["redis"] = health.NewRedisChecker(do.MustInvoke[*RedisClient](i).Client)
		}

		health.RegisterRoutes(api, health.NewHandler(checks))

		return api, nil
	})
}

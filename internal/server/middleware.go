package server

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bizzy604/HIS-sub000/internal/authctx"
	"github.com/bizzy604/HIS-sub000/internal/authorization"
	"github.com/bizzy604/HIS-sub000/internal/observability/metrics"
	providerdomain "github.com/bizzy604/HIS-sub000/internal/provider/domain"
	"github.com/bizzy604/HIS-sub000/internal/ratelimit"
)

// AuthRequired resolves the bearer token to a provider and stores the
// resulting identity in the request context. Requests without a valid
// token never reach the handlers.
func AuthRequired(providerSvc providerdomain.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		provider, err := providerSvc.ResolveToken(c.Request.Context(), token)
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := authctx.WithIdentity(c.Request.Context(), authctx.Identity{
			ProviderID: provider.ID,
			Role:       provider.Role,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		return ""
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}

// authorize guards a route with a role policy check. Object and action
// names match the policies seeded into the enforcer.
func authorize(authzSvc authorization.Service, object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := authzSvc.Authorize(c.Request.Context(), object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

// RateLimitMiddleware applies a per-provider token bucket. The limiter is
// nil when redis is not configured, in which case requests pass through.
func RateLimitMiddleware(limiter *ratelimit.RequestLimiter, m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		if limiter == nil || !limiter.Enabled() {
			c.Next()
			return
		}

		providerID, ok := authctx.ProviderIDFromContext(c.Request.Context())
		if !ok {
			c.Next()
			return
		}

		allowed, retryAfter, err := limiter.Allow(c.Request.Context(), providerID.String())
		if err != nil || allowed {
			c.Next()
			return
		}

		if m != nil {
			m.RateLimitRejected.Inc()
		}
		if retryAfter > 0 {
			c.Header("Retry-After", fmt.Sprintf("%d", int(retryAfter.Seconds())+1))
		}
		AbortWithError(c, ErrTooManyRequest)
	}
}

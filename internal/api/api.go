// Package api contains the gin handlers of the recipe gateway.
package api

import (
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/pageza/recipehub/backend/internal/middleware"
	"github.com/pageza/recipehub/backend/internal/service"
)

// Services are the dependencies of the /api/v1 handlers
type Services struct {
	Auth        service.IAuthService
	Aggregation service.IAggregationService
	Recipes     service.IRecipeService
	Moderation  service.IModerationService
	Images      service.IImageService
	Audit       service.IAuditService
	RateLimiter *middleware.RateLimiter
}

// SetupAPI registers every /api/v1 route on router
func SetupAPI(router gin.IRouter, svc Services, log logrus.FieldLogger) {
	v1 := router.Group("/api/v1")
	{
		NewAuthHandler(svc.Auth, log).RegisterRoutes(v1)
		NewRecipeHandler(svc.Aggregation, svc.Recipes, svc.Auth, svc.RateLimiter, log).RegisterRoutes(v1)
		NewImageHandler(svc.Images, svc.Auth, svc.RateLimiter, log).RegisterRoutes(v1)
		NewAdminHandler(svc.Moderation, svc.Audit, svc.Auth, log).RegisterRoutes(v1)
	}
}

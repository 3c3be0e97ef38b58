package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/constants"
	"github.com/rotina-app/rotina-api/internal/database"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/models"
)

// RequireTenant pins the active tenant for the request. The actor's own
// tenant is the default; a platform administrator may target another tenant
// by slug via the X-Tenant header. Everyone else sending a foreign X-Tenant
// is rejected outright. Inactive or unknown tenants read as not found so
// their existence does not leak.
func RequireTenant() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var tenant models.Tenant
		if err := database.GetDB().First(&tenant, actor.TenantID).Error; err != nil || !tenant.Active {
			apierrors.NotFound(c, "")
			c.Abort()
			return
		}

		if slug := c.GetHeader(constants.HeaderTenant); slug != "" && slug != tenant.Slug {
			if !isPlatformAdmin(actor, tenant) {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}

			var target models.Tenant
			if err := database.GetDB().Where("slug = ?", slug).First(&target).Error; err != nil || !target.Active {
				apierrors.NotFound(c, "")
				c.Abort()
				return
			}

			// Re-pin the actor to the target tenant; every downstream query
			// filters by this id.
			actor.TenantID = target.ID
			c.Set(constants.ContextKeyActor, actor)
			tenant = target
		}

		c.Set(constants.ContextKeyTenant, tenant)
		c.Next()
	}
}

// BlockImpersonatedWrites enforces read-only view-as sessions: any non-read
// request under impersonation is rejected before business logic runs.
func BlockImpersonatedWrites() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		if actor.Impersonating && c.Request.Method != "GET" && c.Request.Method != "HEAD" {
			apierrors.Forbidden(c, "view-as sessions are read-only")
			c.Abort()
			return
		}

		c.Next()
	}
}

// GetTenant retrieves the pinned tenant from context.
func GetTenant(c *gin.Context) (models.Tenant, bool) {
	value, exists := c.Get(constants.ContextKeyTenant)
	if !exists {
		return models.Tenant{}, false
	}
	tenant, ok := value.(models.Tenant)
	return tenant, ok
}

// isPlatformAdmin reports whether the actor is an ADMIN of the reserved
// platform tenant.
func isPlatformAdmin(actor access.Actor, homeTenant models.Tenant) bool {
	return actor.Role == models.RoleAdmin && homeTenant.Slug == constants.PlatformTenantSlug
}

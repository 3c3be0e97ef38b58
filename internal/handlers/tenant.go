package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/constants"
	"github.com/rotina-app/rotina-api/internal/database"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/middleware"
	"github.com/rotina-app/rotina-api/internal/models"
	"github.com/rotina-app/rotina-api/internal/repository"
)

// TenantHandler exposes the platform-administration tenant views. Tenant
// onboarding and branding live elsewhere; only resolution-related reads are
// served here.
type TenantHandler struct {
	tenantRepo repository.TenantRepository
}

func NewTenantHandler(tenantRepo repository.TenantRepository) *TenantHandler {
	return &TenantHandler{tenantRepo: tenantRepo}
}

// CurrentTenant returns the tenant pinned for this request, after any
// X-Tenant targeting has been applied.
func (h *TenantHandler) CurrentTenant(c *gin.Context) {
	tenant, ok := middleware.GetTenant(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":   tenant.ID,
		"slug": tenant.Slug,
		"name": tenant.Name,
	})
}

// ListTenants lists active tenants. Platform administrators only.
func (h *TenantHandler) ListTenants(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apierrors.Unauthorized(c, "")
		return
	}

	var homeTenant models.Tenant
	if err := database.GetDB().First(&homeTenant, actor.TenantID).Error; err != nil ||
		actor.Role != models.RoleAdmin || homeTenant.Slug != constants.PlatformTenantSlug {
		apierrors.Forbidden(c, "")
		return
	}

	tenants, err := h.tenantRepo.ListActive()
	if err != nil {
		apierrors.InternalError(c, "")
		return
	}

	c.JSON(http.StatusOK, gin.H{"tenants": tenants})
}

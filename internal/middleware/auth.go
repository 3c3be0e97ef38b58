package middleware

import (
	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/constants"
	"github.com/rotina-app/rotina-api/internal/database"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/models"
)

// RequireAuth checks the session and resolves the acting identity. Under a
// view-as session the actor carries the impersonated user's identity with
// the Impersonating flag raised.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)

		userID, ok := toUint64(session.Get(constants.SessionKeyUserID))
		if !ok {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		var user models.User
		if err := database.GetDB().First(&user, userID).Error; err != nil || !user.Active {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		// A session whose embedded tenant disagrees with the user's tenant is
		// rejected outright.
		if sessionTenant, ok := toUint64(session.Get(constants.SessionKeyTenantID)); !ok || sessionTenant != user.TenantID {
			apierrors.Unauthorized(c, "")
			c.Abort()
			return
		}

		actor := access.Actor{
			ID:        user.ID,
			TenantID:  user.TenantID,
			Email:     user.Email,
			Name:      user.Name,
			Role:      user.Role,
			Area:      user.Area,
			CanDelete: user.CanDelete,
		}

		if impersonating, _ := session.Get(constants.SessionKeyImpersonating).(bool); impersonating {
			targetID, ok := toUint64(session.Get(constants.SessionKeyImpersonated))
			if !ok {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}

			var target models.User
			if err := database.GetDB().First(&target, targetID).Error; err != nil || !target.Active {
				apierrors.Unauthorized(c, "")
				c.Abort()
				return
			}

			actor = access.Actor{
				ID:            target.ID,
				TenantID:      target.TenantID,
				Email:         target.Email,
				Name:          target.Name,
				Role:          target.Role,
				Area:          target.Area,
				CanDelete:     target.CanDelete,
				Impersonating: true,
			}
		}

		c.Set(constants.ContextKeyUserID, user.ID)
		c.Set(constants.ContextKeyActor, actor)
		c.Next()
	}
}

// GetActor retrieves the resolved actor from context.
func GetActor(c *gin.Context) (access.Actor, bool) {
	value, exists := c.Get(constants.ContextKeyActor)
	if !exists {
		return access.Actor{}, false
	}
	actor, ok := value.(access.Actor)
	return actor, ok
}

// GetUserID retrieves the authenticated user ID from context. Under an
// impersonation session this is the real user, not the impersonated one.
func GetUserID(c *gin.Context) (uint64, bool) {
	value, exists := c.Get(constants.ContextKeyUserID)
	if !exists {
		return 0, false
	}
	return toUint64(value)
}

func toUint64(value interface{}) (uint64, bool) {
	switch v := value.(type) {
	case uint64:
		return v, true
	case uint:
		return uint64(v), true
	case int64:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	case int:
		if v < 0 {
			return 0, false
		}
		return uint64(v), true
	default:
		return 0, false
	}
}

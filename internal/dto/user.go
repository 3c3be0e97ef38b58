package dto

import (
	"github.com/rotina-app/rotina-api/internal/access"
	"github.com/rotina-app/rotina-api/internal/models"
)

// ActorDTO represents the acting identity in API responses
type ActorDTO struct {
	ID            uint64      `json:"id"`
	TenantID      uint64      `json:"tenant_id"`
	Email         string      `json:"email"`
	Name          string      `json:"name"`
	Role          models.Role `json:"role"`
	Area          string      `json:"area"`
	CanDelete     bool        `json:"can_delete"`
	Impersonating bool        `json:"impersonating"`
}

// ToActorDTO converts an Actor to ActorDTO
func ToActorDTO(actor access.Actor) ActorDTO {
	return ActorDTO{
		ID:            actor.ID,
		TenantID:      actor.TenantID,
		Email:         actor.Email,
		Name:          actor.Name,
		Role:          actor.Role,
		Area:          actor.Area,
		CanDelete:     actor.CanDelete,
		Impersonating: actor.Impersonating,
	}
}

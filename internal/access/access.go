// Package access holds the pure predicates that gate every task read and
// write. They are side-effect-free and decided entirely from an
// (Actor, Task, TaskPatch) triple.
package access

import (
	"time"

	"github.com/rotina-app/rotina-api/internal/models"
)

// Actor is the authenticated identity attached to a request.
type Actor struct {
	ID            uint64
	TenantID      uint64
	Email         string
	Name          string
	Role          models.Role
	Area          string
	CanDelete     bool
	Impersonating bool
}

// TaskPatch enumerates exactly the fields a mutation may set. Status is
// deliberately absent: it is always recomputed from the dates. Clear flags
// are explicit sentinels so "unset" and "leave alone" stay distinct.
type TaskPatch struct {
	Titulo           *string
	Area             *string
	ResponsibleEmail *string
	ResponsibleName  *string
	Recurrence       *string
	Observations     *string
	Prazo            *time.Time
	ClearPrazo       bool
	Realizado        *time.Time
	ClearRealizado   bool
}

// TouchesResponsible reports whether the patch moves the responsible actor.
func (p TaskPatch) TouchesResponsible() bool {
	return p.ResponsibleEmail != nil || p.ResponsibleName != nil
}

// TouchesArea reports whether the patch moves the task's area.
func (p TaskPatch) TouchesArea() bool {
	return p.Area != nil
}

// CanSee reports whether the actor may read the task at all.
func CanSee(actor Actor, task *models.Task) bool {
	if actor.TenantID != task.TenantID {
		return false
	}

	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleLeader:
		return task.Area == actor.Area
	case models.RoleUser:
		return task.ResponsibleEmail == actor.Email
	default:
		return false
	}
}

// CanEdit reports whether the actor may apply the patch to the task.
// A USER's stricter self-edit surface (observations/realizado only) is
// enforced at the call site so this predicate stays composable.
func CanEdit(actor Actor, task *models.Task, patch TaskPatch) bool {
	if !CanSee(actor, task) {
		return false
	}

	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleLeader:
		// A leader may not move a task out of their own area.
		if patch.Area != nil && *patch.Area != actor.Area {
			return false
		}
		return true
	case models.RoleUser:
		return !patch.TouchesResponsible() && !patch.TouchesArea()
	default:
		return false
	}
}

// CanDelete reports whether the actor may delete the task.
func CanDelete(actor Actor, task *models.Task) bool {
	if actor.TenantID != task.TenantID {
		return false
	}

	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleLeader:
		return actor.CanDelete && task.Area == actor.Area
	case models.RoleUser:
		return actor.CanDelete && task.ResponsibleEmail == actor.Email
	default:
		return false
	}
}

// CanReviewJustification reports whether the actor may review or unblock
// justifications for the given task: an ADMIN, or a LEADER of its area.
func CanReviewJustification(actor Actor, task *models.Task) bool {
	if actor.TenantID != task.TenantID {
		return false
	}

	switch actor.Role {
	case models.RoleAdmin:
		return true
	case models.RoleLeader:
		return task.Area == actor.Area
	default:
		return false
	}
}

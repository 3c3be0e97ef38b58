package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	apierrors "github.com/rotina-app/rotina-api/internal/errors"
	"github.com/rotina-app/rotina-api/internal/services"
)

// respondServiceError translates service sentinel errors into the typed
// error taxonomy. Callers always get a machine-readable kind, never a bare
// failure.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrTaskNotFound),
		errors.Is(err, services.ErrJustificationNotFound),
		errors.Is(err, services.ErrEvidenceNotFound),
		errors.Is(err, services.ErrParentTaskNotFound),
		errors.Is(err, services.ErrTenantNotFound),
		errors.Is(err, services.ErrUserNotFound):
		apierrors.RespondWithCode(c, apierrors.ErrCodeNotFound, err.Error())

	case errors.Is(err, services.ErrTaskForbidden),
		errors.Is(err, services.ErrNotResponsible),
		errors.Is(err, services.ErrReviewForbidden),
		errors.Is(err, services.ErrNotEvidenceOwner),
		errors.Is(err, services.ErrAreaOutsideScope),
		errors.Is(err, services.ErrSelfEditSurface):
		apierrors.RespondWithCode(c, apierrors.ErrCodeForbidden, err.Error())

	case errors.Is(err, services.ErrTaskBlocked):
		apierrors.RespondWithCode(c, apierrors.ErrCodeBlocked, err.Error())

	case errors.Is(err, services.ErrPendingExists):
		apierrors.RespondWithCode(c, apierrors.ErrCodePendingExists, err.Error())

	case errors.Is(err, services.ErrAlreadyReviewed):
		apierrors.RespondWithCode(c, apierrors.ErrCodeAlreadyReviewed, err.Error())

	case errors.Is(err, services.ErrEvidenceTooLarge):
		apierrors.RespondWithCode(c, apierrors.ErrCodeFileTooLarge, err.Error())

	case errors.Is(err, services.ErrEvidenceMimeNotAllowed):
		apierrors.RespondWithCode(c, apierrors.ErrCodeInvalidMime, err.Error())

	case errors.Is(err, services.ErrNoRule):
		apierrors.RespondWithCode(c, apierrors.ErrCodeNoRule, err.Error())

	case errors.Is(err, services.ErrRecurrenceNotAllowed):
		apierrors.RespondWithCode(c, apierrors.ErrCodeRecorrenciaNotAllowed, err.Error())

	case errors.Is(err, services.ErrTituloRequired),
		errors.Is(err, services.ErrAreaRequired),
		errors.Is(err, services.ErrResponsibleRequired),
		errors.Is(err, services.ErrTaskNotLate),
		errors.Is(err, services.ErrDescriptionRequired),
		errors.Is(err, services.ErrDescriptionTooLong),
		errors.Is(err, services.ErrCommentTooLong),
		errors.Is(err, services.ErrInvalidReviewAction),
		errors.Is(err, services.ErrEvidenceExists),
		errors.Is(err, services.ErrInvalidEvidencePayload):
		apierrors.RespondWithCode(c, apierrors.ErrCodeValidation, err.Error())

	default:
		apierrors.InternalError(c, "")
	}
}

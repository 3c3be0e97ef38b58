package constants

// Session keys
const (
	SessionKeyUserID        = "user_id"
	SessionKeyTenantID      = "tenant_id"
	SessionKeyImpersonating = "impersonating"
	SessionKeyImpersonated  = "impersonated_user_id"
)

// Context keys
const (
	ContextKeyUserID = "user_id"
	ContextKeyActor  = "actor"
	ContextKeyTenant = "tenant"
)

// HeaderTenant lets a platform administrator target another tenant by slug.
const HeaderTenant = "X-Tenant"

// PlatformTenantSlug is the reserved tenant hosting platform administrators.
const PlatformTenantSlug = "plataforma"

// Authentication
const (
	MinPasswordLength = 8
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// Justification limits
const (
	MaxEvidenceSize              = 10 << 20 // 10 MiB, decoded
	MaxEvidencesPerJustification = 1
	MaxReviewCommentLength       = 2000
	MaxDescriptionLength         = 2000
)

// AllowedEvidenceMimeTypes is the evidence upload allow-list.
var AllowedEvidenceMimeTypes = map[string]bool{
	"application/pdf": true,
	"image/jpeg":      true,
	"image/png":       true,
	"image/webp":      true,
}

package models

// AnonymousUserID is recorded when no identity token could be resolved.
const AnonymousUserID = "anonymous"

// Role is the caller's role inside a tenant.
type Role string

const (
	RoleParent  Role = "parent"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole maps s onto a known role. Unknown roles resolve to parent, the
// least privileged role.
func ParseRole(s string) Role {
	switch Role(s) {
	case RoleTeacher:
		return RoleTeacher
	case RoleAdmin:
		return RoleAdmin
	default:
		return RoleParent
	}
}

// Principal identifies the caller of a gateway operation.
type Principal struct {
	UserID string `json:"userId"`
	Role   Role   `json:"role"`
}

// AnonymousPrincipal is used whenever identity resolution fails.
func AnonymousPrincipal() Principal {
	return Principal{UserID: AnonymousUserID, Role: RoleParent}
}

// IsAdmin reports whether the principal may use the audit review surface.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsAnonymous reports whether no identity token was resolved for p.
func (p Principal) IsAnonymous() bool {
	return p.UserID == "" || p.UserID == AnonymousUserID
}

// Owner keys per-caller state such as conversation history and rate limits.
// Authenticated callers are keyed by user id, anonymous callers by client IP.
func (p Principal) Owner(clientIP string) string {
	if p.IsAnonymous() {
		return "ip:" + clientIP
	}
	return "user:" + p.UserID
}

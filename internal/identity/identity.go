package identity

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	dErrors "shopkeep/pkg/domain-errors"
)

// Role is the closed set of roles a principal may carry. The role on the
// principal is authoritative for every gate check.
type Role string

const (
	RoleAdmin    Role = "ADMIN"
	RoleSeller   Role = "SELLER"
	RoleCustomer Role = "CUSTOMER"
)

// Valid reports whether r is one of the known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleAdmin, RoleSeller, RoleCustomer:
		return true
	}
	return false
}

// Principal is the role-bearing identity resolved once per request at the
// boundary and passed explicitly to every service method. It is never
// persisted by this subsystem.
type Principal struct {
	ID    uuid.UUID
	Role  Role
	Name  string
	Email string
}

// Require allows the call to proceed only if the principal is present and its
// role matches one of the given roles. It runs before any store access.
func Require(p *Principal, roles ...Role) error {
	if p == nil {
		return dErrors.New(dErrors.CodeUnauthorized, "unauthorized: no authenticated user")
	}
	for _, role := range roles {
		if p.Role == role {
			return nil
		}
	}
	return dErrors.New(dErrors.CodeUnauthorized, fmt.Sprintf("unauthorized: requires role %s", rolesLabel(roles)))
}

func rolesLabel(roles []Role) string {
	if len(roles) == 1 {
		return string(roles[0])
	}
	label := ""
	for i, r := range roles {
		if i > 0 {
			label += " or "
		}
		label += string(r)
	}
	return label
}

type principalKey struct{}

// ContextWithPrincipal returns a context carrying the authenticated principal.
func ContextWithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext retrieves the authenticated principal from the
// context, or nil when the request is unauthenticated or system-initiated.
func PrincipalFromContext(ctx context.Context) *Principal {
	if p, ok := ctx.Value(principalKey{}).(*Principal); ok {
		return p
	}
	return nil
}

package domain

import "context"

type CtxKey string

const (
	KeyUserID   CtxKey = "UserID"
	KeyUserRole CtxKey = "Role"
)

// ActorFrom extracts the authenticated actor id placed on the request
// context by the auth middleware.
func ActorFrom(ctx context.Context) (int64, bool) {
	id, ok := ctx.Value(KeyUserID).(int64)
	return id, ok
}

// RoleFrom extracts the authenticated actor role, if any.
func RoleFrom(ctx context.Context) (string, bool) {
	role, ok := ctx.Value(KeyUserRole).(string)
	return role, ok
}

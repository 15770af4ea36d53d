package middlewarex

import (
	"context"

	"taskhub/internal/domain/user"
)

type ctxKey string

const (
	ctxUserID ctxKey = "user_id"
	ctxRole   ctxKey = "role"
)

func WithUser(ctx context.Context, userID int64, role user.Role) context.Context {
	ctx = context.WithValue(ctx, ctxUserID, userID)
	return context.WithValue(ctx, ctxRole, role)
}

func UserID(ctx context.Context) (int64, bool) {
	v, ok := ctx.Value(ctxUserID).(int64)
	return v, ok
}

func Role(ctx context.Context) (user.Role, bool) {
	v, ok := ctx.Value(ctxRole).(user.Role)
	return v, ok
}

package handler

import "context"

type ContextKey string

var (
	RequestIDCtxKey ContextKey = "requestID"
	SubCtxKey       ContextKey = "sub"
	UserCtx         ContextKey = "user"
	TeamMemberCtx   ContextKey = "teamMember"
	ShiftTypeCtx    ContextKey = "shiftType"
	ShiftCtx        ContextKey = "shift"
)

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(RequestIDCtxKey).(string)
	return id
}

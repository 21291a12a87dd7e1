package handler

type ContextKey string

var (
	RoleCtxKey      ContextKey = "role"
	SubCtxKey       ContextKey = "sub"
	ClaimsCtxKey    ContextKey = "claims"
	MyInfoCtx       ContextKey = "myInfo"
	CategoryCtx     ContextKey = "category"
	MenuItemCtx     ContextKey = "menuItem"
	RequestIDCtxKey ContextKey = "requestID"
)

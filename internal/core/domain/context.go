package domain

import "context"

type contextKey string

const (
	ctxKeyIdentity   contextKey = "identity"
	ctxKeyClientInfo contextKey = "client_info"
)

// ClientInfo describes the caller of a request, for auditing.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// WithIdentity stores the authenticated identity in ctx.
func WithIdentity(ctx context.Context, id *Identity) context.Context {
	return context.WithValue(ctx, ctxKeyIdentity, id)
}

// IdentityFrom returns the identity stored by WithIdentity, or nil.
func IdentityFrom(ctx context.Context) *Identity {
	id, _ := ctx.Value(ctxKeyIdentity).(*Identity)
	return id
}

// WithClientInfo stores the caller description in ctx.
func WithClientInfo(ctx context.Context, info ClientInfo) context.Context {
	return context.WithValue(ctx, ctxKeyClientInfo, info)
}

// ClientInfoFrom returns the caller description, zero-valued when absent.
func ClientInfoFrom(ctx context.Context) ClientInfo {
	info, _ := ctx.Value(ctxKeyClientInfo).(ClientInfo)
	return info
}

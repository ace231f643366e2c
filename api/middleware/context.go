package middleware

import (
	"context"

	"github.com/goldstore/storefront/internal/session"
)

type contextKey string

const (
	ctxClientID contextKey = "client_id"
)

// ClientIDHeader names the header every data route is scoped by.
const ClientIDHeader = "X-Client-Id"

func ClientIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(ctxClientID).(string); ok {
		return v
	}
	return ""
}

// WithClientID injects the client identifier into the context.
func WithClientID(ctx context.Context, clientID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxClientID, clientID)
}

// SessionFromContext returns the client session resolved by ClientSession.
func SessionFromContext(ctx context.Context) *session.Session {
	if ctx == nil {
		return nil
	}
	s, _ := session.FromContext(ctx)
	return s
}

package tenant

import (
	"context"
	"errors"
)

// Key for tenant values in context
type contextKey string

const (
	principalKey contextKey = "principal"
	requestIDKey contextKey = "requestID"
)

// Principal is the authenticated actor issuing a request.
type Principal struct {
	UserID   int64
	Username string
	IsStaff  bool
}

// ErrNoPrincipalInContext is returned when no authenticated principal is found in context
var ErrNoPrincipalInContext = errors.New("no principal found in context")

// WithPrincipal adds the authenticated principal to the context
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// PrincipalFromContext extracts the principal from the context
func PrincipalFromContext(ctx context.Context) (Principal, error) {
	p, ok := ctx.Value(principalKey).(Principal)
	if !ok || p.UserID == 0 {
		return Principal{}, ErrNoPrincipalInContext
	}
	return p, nil
}

// MustPrincipalFromContext extracts the principal from the context or panics
func MustPrincipalFromContext(ctx context.Context) Principal {
	p, err := PrincipalFromContext(ctx)
	if err != nil {
		panic(err)
	}
	return p
}

// ErrNoRequestIDInContext is returned when no request ID is found in context
var ErrNoRequestIDInContext = errors.New("no request ID found in context")

// WithRequestID adds a request ID to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// FromRequestIDContext extracts the request ID from the context
func FromRequestIDContext(ctx context.Context) (string, error) {
	requestID, ok := ctx.Value(requestIDKey).(string)
	if !ok || requestID == "" {
		return "", ErrNoRequestIDInContext
	}
	return requestID, nil
}

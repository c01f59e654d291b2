package middleware

import "context"

type (
	adminKey     struct{}
	requestIDKey struct{}
)

// admin is the identity AdminAuth attaches to a request.
type admin struct {
	subject string
	role    string
}

func withAdmin(ctx context.Context, subject, role string) context.Context {
	return context.WithValue(ctx, adminKey{}, admin{subject: subject, role: role})
}

func adminFrom(ctx context.Context) admin {
	if ctx == nil {
		return admin{}
	}
	a, _ := ctx.Value(adminKey{}).(admin)
	return a
}

// SubjectFromContext returns the authenticated admin's token subject.
func SubjectFromContext(ctx context.Context) string { return adminFrom(ctx).subject }

func RoleFromContext(ctx context.Context) string { return adminFrom(ctx).role }

// RequestIDFromContext returns the id assigned by RequestID, if any.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

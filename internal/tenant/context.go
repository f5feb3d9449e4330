// Package tenant carries the ambient tenant of one logical operation through
// context.Context. Each Change shadows the outer value instead of mutating
// shared state, so concurrent operations on different tenants never observe
// each other, and ending a nested scope restores exactly the outer tenant.
package tenant

import "context"

type ctxKey struct{}

// Info identifies the active tenant. A nil Info (absent value) means the
// host/global tenant.
type Info struct {
	ID   string
	Name string
}

// Change returns a derived context whose ambient tenant is id. The caller's
// context is untouched; using it again after the inner operation completes
// is the scope restoration.
func Change(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Info{ID: id})
}

// ChangeTo is Change with a display name attached.
func ChangeTo(ctx context.Context, id, name string) context.Context {
	return context.WithValue(ctx, ctxKey{}, &Info{ID: id, Name: name})
}

// ChangeToHost returns a derived context scoped to the host tenant, even when
// the outer context carries a tenant.
func ChangeToHost(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKey{}, (*Info)(nil))
}

// FromContext returns the ambient tenant info, or nil for the host tenant.
func FromContext(ctx context.Context) *Info {
	info, _ := ctx.Value(ctxKey{}).(*Info)
	return info
}

// CurrentID returns the ambient tenant id, empty for the host tenant.
func CurrentID(ctx context.Context) string {
	if info := FromContext(ctx); info != nil {
		return info.ID
	}
	return ""
}

// Use runs fn under the given tenant. The changed tenant cannot leak past
// the call on any exit path because only the derived context sees it.
func Use(ctx context.Context, id string, fn func(ctx context.Context) error) error {
	return fn(Change(ctx, id))
}

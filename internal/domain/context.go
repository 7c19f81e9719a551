package domain

import "context"

type ctxKey string

const searchCtxKey ctxKey = "search_id"

// ContextWithSearchID returns a new context carrying the search invocation ID (ULID).
func ContextWithSearchID(ctx context.Context, searchID string) context.Context {
	return context.WithValue(ctx, searchCtxKey, searchID)
}

// SearchIDFromContext extracts the search invocation ID from the context.
// Returns empty string if not set.
func SearchIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(searchCtxKey).(string); ok {
		return v
	}
	return ""
}

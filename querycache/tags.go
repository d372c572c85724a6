package querycache

import "context"

type tagsContextKey struct{}

// WithTags attaches invalidation tags to the context. Reads served through
// GetOrFetch under this context register their keys under each tag, so a
// later InvalidateTag drops them regardless of resource namespace.
func WithTags(ctx context.Context, tags ...string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if len(tags) == 0 {
		return ctx
	}
	combined := dedupe(append(TagsFrom(ctx), tags...))
	return context.WithValue(ctx, tagsContextKey{}, combined)
}

// TagsFrom returns the tags attached to the context, if any.
func TagsFrom(ctx context.Context) []string {
	if ctx == nil {
		return nil
	}
	if tags, ok := ctx.Value(tagsContextKey{}).([]string); ok {
		return append([]string(nil), tags...)
	}
	return nil
}

func dedupe(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		if t == "" {
			continue
		}
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}

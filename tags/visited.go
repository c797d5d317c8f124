package tags

import "context"

type visitedKey struct{}

// WithVisited marks a collection as being resolved on the current call chain.
// The set is copied so sibling calls do not see each other's marks.
func WithVisited(ctx context.Context, name string) context.Context {
	prev := visitedFrom(ctx)
	next := make(map[string]struct{}, len(prev)+1)
	for k := range prev {
		next[k] = struct{}{}
	}
	next[name] = struct{}{}
	return context.WithValue(ctx, visitedKey{}, next)
}

func visitedFrom(ctx context.Context) map[string]struct{} {
	set, _ := ctx.Value(visitedKey{}).(map[string]struct{})
	return set
}

// IsVisited reports whether name is already being resolved up the call chain
func IsVisited(ctx context.Context, name string) bool {
	_, ok := visitedFrom(ctx)[name]
	return ok
}

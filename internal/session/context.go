package session

import "context"

// unexported, collision-proof context key
type stateContextKey struct{}

// NewContext returns a copy of ctx carrying s.
func NewContext(ctx context.Context, s State) context.Context {
	return context.WithValue(ctx, stateContextKey{}, s)
}

// FromContext returns the request's session, or the zero State.
func FromContext(ctx context.Context) State {
	s, _ := ctx.Value(stateContextKey{}).(State)
	return s
}

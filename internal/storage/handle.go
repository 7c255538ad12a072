package storage

import "context"

// Handle is a live connection to a storage backend. Implementations are
// safe for concurrent use.
type Handle interface {
	// Driver names the backend ("mongodb", "badger").
	Driver() string

	// Ping checks the backend is still reachable.
	Ping(ctx context.Context) error

	// Close releases the connection.
	Close(ctx context.Context) error
}

// Connector opens a Handle. Connect is called at most once per Gate.
type Connector interface {
	Connect(ctx context.Context) (Handle, error)
}

// ConnectorFunc adapts a function to the Connector interface.
type ConnectorFunc func(ctx context.Context) (Handle, error)

// Connect calls f(ctx).
func (f ConnectorFunc) Connect(ctx context.Context) (Handle, error) {
	return f(ctx)
}

type handleKey struct{}

// WithHandle returns a context carrying h.
func WithHandle(ctx context.Context, h Handle) context.Context {
	return context.WithValue(ctx, handleKey{}, h)
}

// HandleFromContext returns the handle stored by WithHandle.
func HandleFromContext(ctx context.Context) (Handle, bool) {
	h, ok := ctx.Value(handleKey{}).(Handle)
	return h, ok && h != nil
}

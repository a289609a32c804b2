package ports

import (
	"context"
	"io"
)

// Telemetry records progress vertices for long-running store operations
// such as clean and verify.
//
//go:generate mockgen -source=telemetry.go -destination=mocks/mock_telemetry.go -package=mocks
type Telemetry interface {
	// Record starts a new vertex with the given display name.
	Record(ctx context.Context, name string) (context.Context, Vertex)
	// Close flushes and closes the recording session.
	Close() error
}

// Vertex is one recorded unit of work.
type Vertex interface {
	// Stdout returns a writer for progress output attached to the vertex.
	Stdout() io.Writer
	// Complete marks the vertex as finished, with err non-nil on failure.
	Complete(err error)
	// Cached marks the vertex as skipped because nothing had to be done.
	Cached()
}

type vertexContextKey struct{}

// ContextWithVertex attaches a vertex to the context.
func ContextWithVertex(ctx context.Context, v Vertex) context.Context {
	return context.WithValue(ctx, vertexContextKey{}, v)
}

// VertexFromContext returns the vertex attached to the context, or nil.
func VertexFromContext(ctx context.Context) Vertex {
	v, _ := ctx.Value(vertexContextKey{}).(Vertex)
	return v
}

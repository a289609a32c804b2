package telemetry

import (
	"context"
	"io"

	"go.trai.ch/depot/internal/core/ports"
)

// NoOp is a no-op implementation of ports.Telemetry for library embedding.
type NoOp struct{}

// NewNoOp creates a new NoOp telemetry.
func NewNoOp() *NoOp {
	return &NoOp{}
}

// Record returns a vertex that does nothing.
func (n *NoOp) Record(ctx context.Context, _ string) (context.Context, ports.Vertex) {
	return ctx, noopVertex{}
}

// Close does nothing.
func (n *NoOp) Close() error { return nil }

type noopVertex struct{}

func (noopVertex) Stdout() io.Writer { return io.Discard }
func (noopVertex) Complete(error)    {}
func (noopVertex) Cached()           {}

package telemetry_test

import (
	"context"
	"testing"

	"github.com/vito/progrock"
	"go.trai.ch/depot/internal/adapters/telemetry"
	"go.trai.ch/depot/internal/core/ports"
)

func TestRecorder_RecordAttachesVertexToContext(t *testing.T) {
	rec := telemetry.NewRecorder(progrock.NewTape())

	ctx, v := rec.Record(context.Background(), "clean build data")
	if v == nil {
		t.Fatal("expected a vertex")
	}
	if ports.VertexFromContext(ctx) != v {
		t.Error("expected the vertex to be attached to the returned context")
	}

	v.Complete(nil)
	if err := rec.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

func TestNoOp(t *testing.T) {
	n := telemetry.NewNoOp()

	ctx, v := n.Record(context.Background(), "anything")
	if _, err := v.Stdout().Write([]byte("discarded")); err != nil {
		t.Fatalf("noop stdout write failed: %v", err)
	}
	v.Complete(nil)
	v.Cached()
	_ = ctx

	if err := n.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
}

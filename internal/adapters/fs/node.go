package fs

import (
	"context"

	"github.com/grindlemire/graft"
	"go.trai.ch/depot/internal/core/ports"
)

const HasherNodeID graft.ID = "adapter.fs.hasher"

func init() {
	graft.Register(graft.Node[ports.FileHasher]{
		ID:        HasherNodeID,
		Cacheable: true,
		Run: func(ctx context.Context) (ports.FileHasher, error) {
			return NewHasher(), nil
		},
	})
}

package ports

import "go.trai.ch/depot/internal/core/domain"

// DependencyGraph records symbol-level dependencies between compilation
// units. CreateDelta and Differentiate may run concurrently with other
// readers; Integrate requires exclusive access. Implementations enforce the
// locking discipline internally.
//
//go:generate mockgen -source=graph.go -destination=mocks/mock_graph.go -package=mocks
type DependencyGraph interface {
	// CreateDelta opens a change set for the given relativized sources,
	// snapshotting their current definitions.
	CreateDelta(changed, deleted []string) (*domain.Delta, error)
	// Differentiate computes which additional sources are affected by the
	// definition changes carried in the delta.
	Differentiate(delta *domain.Delta) (*domain.DiffResult, error)
	// Integrate applies the differentiated change set to the persisted graph.
	Integrate(diff *domain.DiffResult) error
	// DependingSources returns the relativized sources that use the symbol.
	DependingSources(symbol string) ([]string, error)
	// Close releases the graph's storage.
	Close() error
}

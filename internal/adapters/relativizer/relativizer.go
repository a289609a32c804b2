// Package relativizer rewrites absolute paths into storage-relative keys.
package relativizer

import (
	"path/filepath"
	"sort"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/depot/internal/core/ports"
)

// ProjectDirMacro is the key prefix substituted for the project root.
const ProjectDirMacro = "$PROJECT_DIR$"

const cacheSize = 4096

var _ ports.Relativizer = (*Service)(nil)

// Service implements ports.Relativizer over a fixed prefix table.
// The table is built once at construction; the same absolute path always
// relativizes to the same key, which keeps persisted mappings valid across
// process restarts.
type Service struct {
	// prefixes sorted by descending path length so the most specific root
	// wins when roots nest.
	prefixes []prefix

	cache *lru.Cache[string, string]

	mu        sync.Mutex
	unhandled map[string]struct{}
	reported  map[string]struct{}
}

type prefix struct {
	macro string
	root  string
}

// New creates a relativizer for the given project root and extra roots.
func New(settings *domain.Settings) *Service {
	prefixes := make([]prefix, 0, len(settings.ExtraRoots)+1)
	prefixes = append(prefixes, prefix{macro: ProjectDirMacro, root: normalize(settings.ProjectRoot)})
	for macro, root := range settings.ExtraRoots {
		prefixes = append(prefixes, prefix{macro: "$" + macro + "$", root: normalize(root)})
	}
	sort.Slice(prefixes, func(i, j int) bool {
		return len(prefixes[i].root) > len(prefixes[j].root)
	})

	// Size is fixed, the constructor only fails on non-positive sizes.
	cache, _ := lru.New[string, string](cacheSize)

	return &Service{
		prefixes:  prefixes,
		cache:     cache,
		unhandled: make(map[string]struct{}),
		reported:  make(map[string]struct{}),
	}
}

// ToRelative converts an absolute path to its storage key. Paths outside all
// known roots pass through unchanged and are recorded for diagnostics.
func (s *Service) ToRelative(path string) string {
	if cached, ok := s.cache.Get(path); ok {
		return cached
	}

	normalized := normalize(path)
	for _, p := range s.prefixes {
		if rest, ok := strings.CutPrefix(normalized, p.root); ok && (rest == "" || rest[0] == '/') {
			key := p.macro + rest
			s.cache.Add(path, key)
			return key
		}
	}

	s.mu.Lock()
	s.unhandled[normalized] = struct{}{}
	s.mu.Unlock()
	return normalized
}

// ToFull converts a storage key back to an absolute path.
func (s *Service) ToFull(key string) string {
	for _, p := range s.prefixes {
		if rest, ok := strings.CutPrefix(key, p.macro); ok {
			return filepath.FromSlash(p.root + rest)
		}
	}
	return filepath.FromSlash(key)
}

// ReportUnhandledPaths logs every path that could not be shortened, once.
func (s *Service) ReportUnhandledPaths(log ports.Logger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for path := range s.unhandled {
		if _, done := s.reported[path]; done {
			continue
		}
		s.reported[path] = struct{}{}
		log.Warn("path could not be relativized: " + path)
	}
}

// normalize brings a path to the on-disk key form: cleaned, forward slashes,
// no trailing separator.
func normalize(path string) string {
	cleaned := filepath.ToSlash(filepath.Clean(path))
	return strings.TrimSuffix(cleaned, "/")
}

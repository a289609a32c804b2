package relativizer_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.trai.ch/depot/internal/adapters/logger"
	"go.trai.ch/depot/internal/adapters/relativizer"
	"go.trai.ch/depot/internal/core/domain"
)

func newService() *relativizer.Service {
	return relativizer.New(&domain.Settings{
		ProjectRoot: "/home/ci/project",
		ExtraRoots: map[string]string{
			"MAVEN_REPOSITORY": "/home/ci/.m2",
		},
	})
}

func TestToRelative_ProjectRoot(t *testing.T) {
	s := newService()

	key := s.ToRelative("/home/ci/project/src/Foo.java")
	assert.Equal(t, "$PROJECT_DIR$/src/Foo.java", key)
}

func TestToRelative_ExtraRoot(t *testing.T) {
	s := newService()

	key := s.ToRelative("/home/ci/.m2/junit/junit.jar")
	assert.Equal(t, "$MAVEN_REPOSITORY$/junit/junit.jar", key)
}

func TestToRelative_NoPartialComponentMatch(t *testing.T) {
	s := newService()

	// "/home/ci/project-old" shares a string prefix with the project root but
	// is a different directory and must pass through unchanged.
	key := s.ToRelative("/home/ci/project-old/Foo.java")
	assert.Equal(t, "/home/ci/project-old/Foo.java", key)
}

func TestRoundTrip_Stable(t *testing.T) {
	s := newService()

	abs := "/home/ci/project/out/Foo.class"
	key := s.ToRelative(abs)
	assert.Equal(t, abs, s.ToFull(key))

	// Relativizing again (now served from the cache) yields the same key.
	assert.Equal(t, key, s.ToRelative(abs))
}

func TestToFull_UnknownKeyPassesThrough(t *testing.T) {
	s := newService()

	assert.Equal(t, "/tmp/other.txt", s.ToFull("/tmp/other.txt"))
}

func TestReportUnhandledPaths_Once(t *testing.T) {
	s := newService()
	s.ToRelative("/opt/outside/lib.jar")

	lg := logger.New().(*logger.Logger)
	var buf bytes.Buffer
	lg.SetOutput(&buf)

	s.ReportUnhandledPaths(lg)
	first := buf.String()
	assert.True(t, strings.Contains(first, "/opt/outside/lib.jar"))

	buf.Reset()
	s.ReportUnhandledPaths(lg)
	assert.Empty(t, buf.String(), "already reported paths must not repeat")
}

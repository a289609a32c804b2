package fs_test

import (
	"os"
	"path/filepath"
	"testing"

	"go.trai.ch/depot/internal/adapters/fs"
)

func TestHasher_HashFile(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(tmpFile, []byte("hello world"), 0o600); err != nil {
		t.Fatal(err)
	}

	hasher := fs.NewHasher()

	hash1, err := hasher.HashFile(tmpFile)
	if err != nil {
		t.Fatalf("HashFile failed: %v", err)
	}
	if hash1 == 0 {
		t.Error("expected non-zero hash")
	}

	// Verify determinism
	hash2, err := hasher.HashFile(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	if hash1 != hash2 {
		t.Error("expected deterministic hash")
	}
}

func TestHasher_HashFile_ContentSensitive(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	b := filepath.Join(dir, "b.txt")
	if err := os.WriteFile(a, []byte("content A"), 0o600); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(b, []byte("content B"), 0o600); err != nil {
		t.Fatal(err)
	}

	hasher := fs.NewHasher()
	hashA, err := hasher.HashFile(a)
	if err != nil {
		t.Fatal(err)
	}
	hashB, err := hasher.HashFile(b)
	if err != nil {
		t.Fatal(err)
	}
	if hashA == hashB {
		t.Error("expected different hashes for different content")
	}
}

func TestHasher_StampOf(t *testing.T) {
	tmpFile := filepath.Join(t.TempDir(), "input.txt")
	if err := os.WriteFile(tmpFile, []byte("stamped"), 0o600); err != nil {
		t.Fatal(err)
	}

	hasher := fs.NewHasher()
	stamp, err := hasher.StampOf(tmpFile)
	if err != nil {
		t.Fatalf("StampOf failed: %v", err)
	}

	info, err := os.Stat(tmpFile)
	if err != nil {
		t.Fatal(err)
	}
	if stamp.ModTime != info.ModTime().UnixNano() {
		t.Errorf("expected mtime %d, got %d", info.ModTime().UnixNano(), stamp.ModTime)
	}
	if stamp.Hash == 0 {
		t.Error("expected non-zero content hash")
	}
}

func TestHasher_StampOf_MissingFile(t *testing.T) {
	hasher := fs.NewHasher()
	if _, err := hasher.StampOf(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

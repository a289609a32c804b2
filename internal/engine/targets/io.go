package targets

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"

	"go.trai.ch/zerr"

	"go.trai.ch/depot/internal/core/domain"
)

// typeFileVersion is the on-disk format version of targets.dat files.
const typeFileVersion = 1

type targetEntry struct {
	stringID string
	intID    int
}

// readRootFile reads targetTypes.dat: int32 max id, int64 last rebuild
// duration in milliseconds, big-endian.
func readRootFile(path string) (int32, int64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is under the data root
	if err != nil {
		return 0, 0, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	r := bufio.NewReader(f)
	maxID, err := readInt32(r)
	if err != nil {
		return 0, 0, corrupted(path, err)
	}
	lastRebuildMs, err := readInt64(r)
	if err != nil {
		return 0, 0, corrupted(path, err)
	}
	return maxID, lastRebuildMs, nil
}

func writeRootFile(path string, maxID int32, lastRebuildMs int64) error {
	buf := make([]byte, 0, 12)
	buf = binary.BigEndian.AppendUint32(buf, uint32(maxID))
	buf = binary.BigEndian.AppendUint64(buf, uint64(lastRebuildMs))
	return writeFileAtomic(path, buf)
}

// readTypeFile reads a per-type targets.dat: int32 version, int32 count,
// count x (length-prefixed string id, int32 id), int64 average build time.
func readTypeFile(path string) ([]targetEntry, int64, error) {
	f, err := os.Open(path) //nolint:gosec // Path is under the data root
	if err != nil {
		return nil, 0, err
	}
	defer f.Close() //nolint:errcheck // Read-only file

	r := bufio.NewReader(f)
	version, err := readInt32(r)
	if err != nil || version != typeFileVersion {
		return nil, 0, corrupted(path, err)
	}
	count, err := readInt32(r)
	if err != nil || count < 0 {
		return nil, 0, corrupted(path, err)
	}

	entries := make([]targetEntry, 0, count)
	for range count {
		stringID, err := readString(r)
		if err != nil {
			return nil, 0, corrupted(path, err)
		}
		intID, err := readInt32(r)
		if err != nil {
			return nil, 0, corrupted(path, err)
		}
		entries = append(entries, targetEntry{stringID: stringID, intID: int(intID)})
	}

	avgMs, err := readInt64(r)
	if err != nil {
		return nil, 0, corrupted(path, err)
	}
	return entries, avgMs, nil
}

func writeTypeFile(path string, entries []targetEntry, avgMs int64) error {
	buf := make([]byte, 0, 16+len(entries)*16)
	buf = binary.BigEndian.AppendUint32(buf, uint32(typeFileVersion))
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(entries)))
	for _, e := range entries {
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(e.stringID)))
		buf = append(buf, e.stringID...)
		buf = binary.BigEndian.AppendUint32(buf, uint32(e.intID))
	}
	buf = binary.BigEndian.AppendUint64(buf, uint64(avgMs))
	return writeFileAtomic(path, buf)
}

// writeFileAtomic writes via a temp file and rename so readers never observe
// a half-written state file.
func writeFileAtomic(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return zerr.Wrap(err, "failed to create state directory")
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return zerr.Wrap(err, "failed to write state file")
	}
	if err := os.Rename(tmp, path); err != nil {
		return zerr.Wrap(err, "failed to replace state file")
	}
	return nil
}

func readInt32(r io.Reader) (int32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int32(binary.BigEndian.Uint32(buf[:])), nil
}

func readInt64(r io.Reader) (int64, error) {
	var buf [8]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return int64(binary.BigEndian.Uint64(buf[:])), nil
}

func readString(r *bufio.Reader) (string, error) {
	n, err := readInt32(r)
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", io.ErrUnexpectedEOF
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return "", err
	}
	return string(buf), nil
}

func corrupted(path string, cause error) error {
	err := zerr.With(zerr.Wrap(domain.ErrDataCorrupted, "malformed targets state file"), "path", path)
	if cause != nil {
		err = zerr.With(err, "cause", cause.Error())
	}
	return err
}

package mapping

import (
	"encoding/binary"

	"go.trai.ch/depot/internal/core/domain"
	"go.trai.ch/zerr"
)

// EncodeList encodes an ordered list of UTF-8 strings as a uvarint count
// followed by uvarint length-prefixed entries. The empty list still encodes
// to one byte, so a stored-but-empty entry stays distinguishable from an
// absent key on every backend.
func EncodeList(values []string) []byte {
	size := binary.MaxVarintLen32
	for _, v := range values {
		size += binary.MaxVarintLen32 + len(v)
	}
	buf := make([]byte, 0, size)
	buf = binary.AppendUvarint(buf, uint64(len(values)))
	for _, v := range values {
		buf = binary.AppendUvarint(buf, uint64(len(v)))
		buf = append(buf, v...)
	}
	return buf
}

// DecodeList decodes a length-prefixed string list, preserving order.
// A guard set drops any repeated string seen during decode: writers merging
// entries concurrently may have stored duplicates. The result is non-nil
// even when empty, so callers can distinguish "entry with nothing" from
// "no entry".
func DecodeList(data []byte) ([]string, error) {
	count, read := binary.Uvarint(data)
	if read <= 0 {
		return nil, zerr.Wrap(domain.ErrDataCorrupted, "truncated path list")
	}
	data = data[read:]

	result := []string{}
	guard := make(map[string]struct{})
	for range count {
		n, read := binary.Uvarint(data)
		if read <= 0 || uint64(len(data)-read) < n {
			return nil, zerr.Wrap(domain.ErrDataCorrupted, "truncated path list")
		}
		s := string(data[read : read+int(n)])
		data = data[read+int(n):]
		if _, dup := guard[s]; dup {
			continue
		}
		guard[s] = struct{}{}
		result = append(result, s)
	}
	return result, nil
}

// EncodeIDs encodes a sorted set of target ids as uvarint deltas.
func EncodeIDs(ids []int) []byte {
	buf := make([]byte, 0, len(ids)*binary.MaxVarintLen32)
	prev := 0
	for _, id := range ids {
		buf = binary.AppendUvarint(buf, uint64(id-prev))
		prev = id
	}
	return buf
}

// DecodeIDs decodes a delta-encoded sorted id set.
func DecodeIDs(data []byte) ([]int, error) {
	ids := []int{}
	prev := 0
	for len(data) > 0 {
		d, read := binary.Uvarint(data)
		if read <= 0 {
			return nil, zerr.Wrap(domain.ErrDataCorrupted, "truncated id set")
		}
		prev += int(d)
		ids = append(ids, prev)
		data = data[read:]
	}
	return ids, nil
}

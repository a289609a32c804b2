package domain

// Stamp captures a file's identity at a point in time: the xxhash of its
// content plus its modification time in nanoseconds.
//
// A file is considered up to date when either the stored modification time
// matches exactly, or (on a timestamp mismatch) the recomputed content hash
// matches the stored hash. The fast path avoids hashing entirely; the hash
// check catches same-timestamp content swaps such as VCS checkouts.
type Stamp struct {
	Hash    uint64
	ModTime int64
}

// IsZero reports whether the stamp carries no recorded state.
func (s Stamp) IsZero() bool {
	return s.Hash == 0 && s.ModTime == 0
}

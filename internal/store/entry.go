package store

import "time"

// Entry is one identifier-to-content association held by the store.
//
// Content is treated as immutable once stored: neither the store nor its
// callers may modify the slice after Put.
type Entry struct {
	ID       string
	Content  []byte
	StoredAt time.Time
}

// Size returns the content length in bytes.
func (e Entry) Size() int {
	return len(e.Content)
}

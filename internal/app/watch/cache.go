package watch

import (
	"time"
)

// Entry is what was last seen of a file.
type Entry struct {
	ModifiedAt  time.Time
	Fingerprint uint32
}

// Cache remembers, per file name, the last seen modification time and
// content fingerprint. It only short-circuits parsing; it never decides
// flight identity. It is owned by the reconciliation cycle and is not safe
// for concurrent use.
type Cache struct {
	entries map[string]Entry
}

func NewCache() *Cache {
	return &Cache{entries: map[string]Entry{}}
}

func (c *Cache) Get(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

func (c *Cache) Put(name string, e Entry) {
	c.entries[name] = e
}

// SameModTime reports whether name is cached with exactly modifiedAt.
func (c *Cache) SameModTime(name string, modifiedAt time.Time) bool {
	e, ok := c.entries[name]
	return ok && e.ModifiedAt.Equal(modifiedAt)
}

func (c *Cache) Len() int {
	return len(c.entries)
}

func (c *Cache) Reset() {
	c.entries = map[string]Entry{}
}

// Changed decides whether a re-read file carries new content for a flight
// that already exists. prevCount and newCount are the sample counts of the
// stored flight and of the candidate. A growing sample count counts as a
// change even when the fingerprints collide.
func Changed(prev Entry, known bool, cur Entry, prevCount, newCount int) bool {
	if !known {
		return true
	}
	if prev.Fingerprint != cur.Fingerprint {
		return true
	}
	return newCount > prevCount
}

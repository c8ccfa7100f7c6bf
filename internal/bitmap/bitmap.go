// Package bitmap provides a growable bitset for non-negative integer keys,
// used to spot repeated numeric identifiers without hashing them.
package bitmap

// MaxID is the largest id a Bitmap accepts (16M ids, 2 MiB of words).
const MaxID = 1<<24 - 1

// Bitmap is a set of ids in [0, MaxID] backed by 64-bit words. The zero
// value is an empty set ready to use.
type Bitmap struct {
	data []uint64
	n    int
}

// New returns a bitmap pre-sized for ids up to hint.
func New(hint int) *Bitmap {
	if hint <= 0 {
		return &Bitmap{}
	}
	if hint > MaxID {
		hint = MaxID
	}
	return &Bitmap{data: make([]uint64, hint/64+1)}
}

// Fits reports whether id can be stored.
func Fits(id int) bool { return id >= 0 && id <= MaxID }

// Add sets id and reports whether it was newly added. Ids outside
// [0, MaxID] are ignored and report false.
func (b *Bitmap) Add(id int) bool {
	if !Fits(id) {
		return false
	}
	word := id / 64
	if word >= len(b.data) {
		grown := make([]uint64, max(word+1, 2*len(b.data)))
		copy(grown, b.data)
		b.data = grown
	}
	mask := uint64(1) << uint(id%64)
	if b.data[word]&mask != 0 {
		return false
	}
	b.data[word] |= mask
	b.n++
	return true
}

// Has reports whether id is in the set.
func (b *Bitmap) Has(id int) bool {
	if !Fits(id) {
		return false
	}
	word := id / 64
	if word >= len(b.data) {
		return false
	}
	return b.data[word]&(uint64(1)<<uint(id%64)) != 0
}

// Len returns the number of ids in the set.
func (b *Bitmap) Len() int { return b.n }

package bitmap

import (
	"strconv"
	"testing"
)

// TestNew checks pre-sizing: ids up to hint fit without growing.
func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		hint    int
		wantLen int
	}{
		{name: "non-positive hint allocates nothing", hint: 0, wantLen: 0},
		{name: "small hint", hint: 1, wantLen: 1},
		{name: "last bit of first word", hint: 63, wantLen: 1},
		{name: "first bit of second word", hint: 64, wantLen: 2},
		{name: "hint clamped to MaxID", hint: MaxID * 4, wantLen: MaxID/64 + 1},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			bm := New(tt.hint)
			if got := len(bm.data); got != tt.wantLen {
				t.Fatalf("New(%d) data length = %d, want %d", tt.hint, got, tt.wantLen)
			}
		})
	}
}

// TestAddAndHas covers word boundaries, growth past the hint and ids that
// cannot be stored.
func TestAddAndHas(t *testing.T) {
	t.Parallel()

	bm := New(100)
	if bm.Has(0) || bm.Has(99) {
		t.Fatalf("bitmap should start empty")
	}

	adds := []struct {
		id   int
		want bool
	}{
		{-1, false},
		{0, true},
		{63, true},
		{64, true},
		{64, false}, // repeat
		{5000, true},
		{MaxID, true},
		{MaxID + 1, false},
	}
	for _, a := range adds {
		if got := bm.Add(a.id); got != a.want {
			t.Fatalf("Add(%d) = %v, want %v", a.id, got, a.want)
		}
	}

	tests := []struct {
		id   int
		want bool
	}{
		{-1, false},
		{0, true},
		{1, false},
		{63, true},
		{64, true},
		{5000, true},
		{4999, false},
		{MaxID, true},
		{MaxID + 1, false},
	}
	for _, tt := range tests {
		tt := tt
		t.Run("id="+strconv.Itoa(tt.id), func(t *testing.T) {
			t.Parallel()
			if got := bm.Has(tt.id); got != tt.want {
				t.Fatalf("Has(%d) = %v, want %v", tt.id, got, tt.want)
			}
		})
	}

	if got := bm.Len(); got != 5 {
		t.Fatalf("Len() = %d, want 5", got)
	}
}

func TestZeroValue(t *testing.T) {
	t.Parallel()

	var bm Bitmap
	if !bm.Add(41188) || bm.Add(41188) || !bm.Has(41188) {
		t.Fatalf("zero-value bitmap did not grow on Add")
	}
}

func BenchmarkAdd(b *testing.B) {
	bm := New(1_000_000)

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		bm.Add(i % 1_000_000)
	}
}

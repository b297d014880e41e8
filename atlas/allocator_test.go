package atlas

import (
	"math/rand"
	"testing"

	"github.com/gogpu/glade"
)

func tilesOverlap(a, b glade.AtlasTile) bool {
	return a.X < b.X+b.Width && b.X < a.X+a.Width &&
		a.Y < b.Y+b.Height && b.Y < a.Y+a.Height
}

func TestAllocateNoOverlap(t *testing.T) {
	a := NewAllocator(256, 256, 2)
	rng := rand.New(rand.NewSource(1))

	var tiles []glade.AtlasTile
	for i := 0; i < 1000; i++ {
		w := 1 + rng.Intn(48)
		h := 1 + rng.Intn(48)
		tile, ok := a.Allocate(w, h)
		if !ok {
			break
		}
		if tile.Width != w || tile.Height != h {
			t.Fatalf("allocation %d returned %dx%d, want %dx%d",
				i, tile.Width, tile.Height, w, h)
		}
		if tile.X < 0 || tile.Y < 0 || tile.X+w > 256 || tile.Y+h > 256 {
			t.Fatalf("allocation %d out of bounds: %+v", i, tile)
		}
		tiles = append(tiles, tile)
	}

	if len(tiles) == 0 {
		t.Fatal("no allocations succeeded")
	}
	for i := range tiles {
		for j := i + 1; j < len(tiles); j++ {
			if tilesOverlap(tiles[i], tiles[j]) {
				t.Fatalf("tiles %d and %d overlap: %+v %+v",
					i, j, tiles[i], tiles[j])
			}
		}
	}
}

func TestAllocateRejectsInvalid(t *testing.T) {
	a := NewAllocator(64, 64, 2)

	tests := []struct {
		name string
		w, h int
	}{
		{"zero width", 0, 10},
		{"zero height", 10, 0},
		{"negative", -1, -1},
		{"too wide", 65, 10},
		{"too tall", 10, 65},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := a.Allocate(tt.w, tt.h); ok {
				t.Errorf("Allocate(%d, %d) succeeded", tt.w, tt.h)
			}
		})
	}

	// Exactly atlas-sized is allowed.
	if _, ok := a.Allocate(64, 64); !ok {
		t.Error("Allocate(64, 64) on empty 64x64 atlas failed")
	}
}

func TestAllocateRowWrap(t *testing.T) {
	a := NewAllocator(100, 100, 2)

	t1, _ := a.Allocate(60, 10)
	t2, _ := a.Allocate(60, 20) // doesn't fit on row, wraps
	if t1.Y != 0 {
		t.Errorf("first tile y = %d, want 0", t1.Y)
	}
	if t2.X != 0 {
		t.Errorf("wrapped tile x = %d, want 0", t2.X)
	}
	// New row starts below the previous row's tallest item plus padding.
	if t2.Y != 12 {
		t.Errorf("wrapped tile y = %d, want 12", t2.Y)
	}
}

func TestRowHeightTracksTallest(t *testing.T) {
	a := NewAllocator(100, 100, 2)

	a.Allocate(30, 10)
	a.Allocate(30, 25) // tallest in row
	a.Allocate(30, 5)
	wrapped, _ := a.Allocate(50, 10) // wraps

	if wrapped.Y != 27 {
		t.Errorf("next row y = %d, want 27 (25 + padding)", wrapped.Y)
	}
}

func TestFullThenClear(t *testing.T) {
	a := NewAllocator(64, 64, 0)

	// Fill the atlas with 64-wide rows.
	n := 0
	for {
		if _, ok := a.Allocate(64, 16); !ok {
			break
		}
		n++
	}
	if n != 4 {
		t.Fatalf("filled %d rows, want 4", n)
	}

	a.Clear()

	// The full area is reusable and the cursor is back at the origin.
	tile, ok := a.Allocate(64, 64)
	if !ok {
		t.Fatal("allocation after Clear failed")
	}
	if tile.X != 0 || tile.Y != 0 {
		t.Errorf("post-Clear tile at (%d, %d), want origin", tile.X, tile.Y)
	}
	if a.AllocCount() != 1 {
		t.Errorf("AllocCount after Clear = %d, want 1", a.AllocCount())
	}
}

func TestUtilization(t *testing.T) {
	a := NewAllocator(100, 100, 0)
	a.Allocate(50, 100)

	if got := a.Utilization(); got < 0.49 || got > 0.51 {
		t.Errorf("Utilization = %v, want 0.5", got)
	}
}
